package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsprofile"
	qb "github.com/riskibarqy/gps-gamemodel/internal/platform/querybuilder"
)

type GPSProfileRepository struct {
	db *sqlx.DB
}

func NewGPSProfileRepository(db *sqlx.DB) *GPSProfileRepository {
	return &GPSProfileRepository{db: db}
}

var gpsProfileColumns = []string{"id", "club_id", "vendor_name", "name", "columns", "formulas", "created_at", "updated_at"}

func (r *GPSProfileRepository) GetByID(ctx context.Context, clubID, profileID string) (gpsprofile.Profile, bool, error) {
	query, args, err := qb.Select(gpsProfileColumns...).From("gps_profiles").
		Where(
			qb.Eq("club_id", clubID),
			qb.Eq("id", profileID),
		).
		ToSQL()
	if err != nil {
		return gpsprofile.Profile{}, false, fmt.Errorf("build get gps profile query: %w", err)
	}

	var row gpsProfileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gpsprofile.Profile{}, false, nil
		}
		return gpsprofile.Profile{}, false, fmt.Errorf("get gps profile: %w", err)
	}

	profile, err := gpsProfileFromRow(row)
	if err != nil {
		return gpsprofile.Profile{}, false, err
	}
	return profile, true, nil
}

func (r *GPSProfileRepository) ListByClub(ctx context.Context, clubID string) ([]gpsprofile.Profile, error) {
	query, args, err := qb.Select(gpsProfileColumns...).From("gps_profiles").
		Where(qb.Eq("club_id", clubID)).
		OrderBy("vendor_name", "name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list gps profiles query: %w", err)
	}

	var rows []gpsProfileTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list gps profiles: %w", err)
	}

	out := make([]gpsprofile.Profile, 0, len(rows))
	for _, row := range rows {
		profile, err := gpsProfileFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, profile)
	}
	return out, nil
}

func (r *GPSProfileRepository) Upsert(ctx context.Context, profile gpsprofile.Profile) error {
	columns, err := encodeJSON(profile.Columns, "[]")
	if err != nil {
		return fmt.Errorf("encode gps profile columns: %w", err)
	}
	formulas, err := encodeJSON(profile.Formulas, "[]")
	if err != nil {
		return fmt.Errorf("encode gps profile formulas: %w", err)
	}

	insertModel := gpsProfileUpsertModel{
		ID:         profile.ID,
		ClubID:     profile.ClubID,
		VendorName: profile.VendorName,
		Name:       profile.Name,
		Columns:    columns,
		Formulas:   formulas,
		UpdatedAt:  profile.UpdatedAt,
	}
	query, args, err := qb.InsertModel("gps_profiles", insertModel, qb.OnConflict("id").
		UpdateExcluded("vendor_name", "name", "columns", "formulas", "updated_at").
		Where("gps_profiles.club_id = EXCLUDED.club_id").
		String())
	if err != nil {
		return fmt.Errorf("build upsert gps profile query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert gps profile: %w", err)
	}

	return nil
}

func gpsProfileFromRow(row gpsProfileTableModel) (gpsprofile.Profile, error) {
	profile := gpsprofile.Profile{
		ID:         row.ID,
		ClubID:     row.ClubID,
		VendorName: row.VendorName,
		Name:       row.Name,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if err := decodeJSON(row.Columns, &profile.Columns); err != nil {
		return gpsprofile.Profile{}, fmt.Errorf("decode gps profile columns id=%s: %w", row.ID, err)
	}
	if err := decodeJSON(row.Formulas, &profile.Formulas); err != nil {
		return gpsprofile.Profile{}, fmt.Errorf("decode gps profile formulas id=%s: %w", row.ID, err)
	}
	return profile, nil
}
