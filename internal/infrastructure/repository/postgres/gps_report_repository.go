package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsreport"
	qb "github.com/riskibarqy/gps-gamemodel/internal/platform/querybuilder"
)

type GPSReportRepository struct {
	db *sqlx.DB
}

func NewGPSReportRepository(db *sqlx.DB) *GPSReportRepository {
	return &GPSReportRepository{db: db}
}

var (
	gpsReportColumns = []string{
		"id", "club_id", "team_id", "profile_id", "event_type", "event_id", "event_date", "file_name",
		"raw_data", "processed_data", "skipped_rows", "profile_snapshot", "is_processed", "created_at", "updated_at",
	}
	gpsPlayerMappingColumns = []string{
		"report_id", "row_index", "source_name", "player_id", "is_manual", "similarity", "candidates", "updated_at",
	}
)

func (r *GPSReportRepository) Save(ctx context.Context, report gpsreport.Report, mappings []gpsreport.PlayerMapping) error {
	insertModel, err := gpsReportUpsertModelFrom(report)
	if err != nil {
		return err
	}
	mappingRows := make([]gpsPlayerMappingTableModel, 0, len(mappings))
	for _, m := range mappings {
		m.ReportID = report.ID
		row, err := gpsPlayerMappingRowFrom(m, report.UpdatedAt)
		if err != nil {
			return err
		}
		mappingRows = append(mappingRows, row)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save gps report: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("gps_reports", insertModel, qb.OnConflict("id").
		UpdateExcluded(
			"team_id", "profile_id", "event_type", "event_id", "event_date", "file_name",
			"raw_data", "processed_data", "skipped_rows", "profile_snapshot", "is_processed", "updated_at",
		).
		Where("gps_reports.club_id = EXCLUDED.club_id").
		String())
	if err != nil {
		return fmt.Errorf("build upsert gps report query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert gps report: %w", err)
	}

	deleteQuery, deleteArgs, err := staleMappingsDeleteQuery(report.ID, mappingRows)
	if err != nil {
		return fmt.Errorf("build delete gps player mappings query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete gps player mappings: %w", err)
	}

	if len(mappingRows) > 0 {
		insertQuery, insertArgs, err := mappingsUpsertQuery(mappingRows)
		if err != nil {
			return fmt.Errorf("build upsert gps player mappings query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("upsert gps player mappings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save gps report tx: %w", err)
	}
	return nil
}

func (r *GPSReportRepository) GetByID(ctx context.Context, clubID, reportID string) (gpsreport.Report, bool, error) {
	query, args, err := qb.Select(gpsReportColumns...).From("gps_reports").
		Where(
			qb.Eq("club_id", clubID),
			qb.Eq("id", reportID),
		).
		ToSQL()
	if err != nil {
		return gpsreport.Report{}, false, fmt.Errorf("build get gps report query: %w", err)
	}

	var row gpsReportTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gpsreport.Report{}, false, nil
		}
		return gpsreport.Report{}, false, fmt.Errorf("get gps report: %w", err)
	}

	report, err := gpsReportFromRow(row)
	if err != nil {
		return gpsreport.Report{}, false, err
	}
	return report, true, nil
}

func (r *GPSReportRepository) ListMappings(ctx context.Context, reportID string) ([]gpsreport.PlayerMapping, error) {
	query, args, err := qb.Select(gpsPlayerMappingColumns...).From("gps_player_mappings").
		Where(qb.Eq("report_id", reportID)).
		OrderBy("row_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list gps player mappings query: %w", err)
	}

	var rows []gpsPlayerMappingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list gps player mappings: %w", err)
	}

	out := make([]gpsreport.PlayerMapping, 0, len(rows))
	for _, row := range rows {
		m, err := gpsPlayerMappingFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *GPSReportRepository) GetMapping(ctx context.Context, reportID string, rowIndex int) (gpsreport.PlayerMapping, bool, error) {
	query, args, err := qb.Select(gpsPlayerMappingColumns...).From("gps_player_mappings").
		Where(
			qb.Eq("report_id", reportID),
			qb.Eq("row_index", rowIndex),
		).
		ToSQL()
	if err != nil {
		return gpsreport.PlayerMapping{}, false, fmt.Errorf("build get gps player mapping query: %w", err)
	}

	var row gpsPlayerMappingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gpsreport.PlayerMapping{}, false, nil
		}
		return gpsreport.PlayerMapping{}, false, fmt.Errorf("get gps player mapping: %w", err)
	}

	m, err := gpsPlayerMappingFromRow(row)
	if err != nil {
		return gpsreport.PlayerMapping{}, false, err
	}
	return m, true, nil
}

func (r *GPSReportRepository) UpdateMapping(ctx context.Context, mapping gpsreport.PlayerMapping) error {
	candidates, err := encodeJSON(mapping.Candidates, "[]")
	if err != nil {
		return fmt.Errorf("encode gps player mapping candidates: %w", err)
	}
	similarity := sql.NullInt64{}
	if mapping.Similarity != nil {
		similarity = sql.NullInt64{Int64: int64(*mapping.Similarity), Valid: true}
	}

	query, args, err := qb.Update("gps_player_mappings").
		Set("player_id", nullString(mapping.PlayerID)).
		Set("is_manual", mapping.IsManual).
		Set("similarity", similarity).
		Set("candidates", candidates).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("report_id", mapping.ReportID),
			qb.Eq("row_index", mapping.RowIndex),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update gps player mapping query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update gps player mapping: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update gps player mapping: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update gps player mapping: not found")
	}
	return nil
}

// staleMappingsDeleteQuery drops automatic mappings of rows the new result
// no longer produces. Manual rows are never deleted here.
func staleMappingsDeleteQuery(reportID string, rows []gpsPlayerMappingTableModel) (string, []any, error) {
	indexes := make([]int64, 0, len(rows))
	for _, row := range rows {
		indexes = append(indexes, int64(row.RowIndex))
	}
	return qb.DeleteFrom("gps_player_mappings").
		Where(
			qb.Eq("report_id", reportID),
			qb.Eq("is_manual", false),
			qb.Expr("NOT (row_index = ANY(?::int[]))", pq.Array(indexes)),
		).
		ToSQL()
}

// mappingsUpsertQuery writes rows in place. A row that is manual in the
// table keeps its values, even if it turned manual after the caller read it.
func mappingsUpsertQuery(rows []gpsPlayerMappingTableModel) (string, []any, error) {
	return qb.InsertModels("gps_player_mappings", rows, qb.OnConflict("report_id", "row_index").
		UpdateExcluded("source_name", "player_id", "is_manual", "similarity", "candidates", "updated_at").
		Where("NOT gps_player_mappings.is_manual").
		String())
}

func gpsReportUpsertModelFrom(report gpsreport.Report) (gpsReportUpsertModel, error) {
	raw, err := encodeJSON(report.RawData, "{}")
	if err != nil {
		return gpsReportUpsertModel{}, fmt.Errorf("encode gps report raw data: %w", err)
	}
	processed, err := encodeJSON(report.ProcessedData, "[]")
	if err != nil {
		return gpsReportUpsertModel{}, fmt.Errorf("encode gps report processed data: %w", err)
	}
	skipped, err := encodeJSON(report.SkippedRows, "[]")
	if err != nil {
		return gpsReportUpsertModel{}, fmt.Errorf("encode gps report skipped rows: %w", err)
	}
	snapshot, err := encodeJSON(report.ProfileSnapshot, "{}")
	if err != nil {
		return gpsReportUpsertModel{}, fmt.Errorf("encode gps report profile snapshot: %w", err)
	}

	return gpsReportUpsertModel{
		ID:              report.ID,
		ClubID:          report.ClubID,
		TeamID:          report.TeamID,
		ProfileID:       report.ProfileID,
		EventType:       string(report.EventType),
		EventID:         report.EventID,
		EventDate:       report.EventDate,
		FileName:        report.FileName,
		RawData:         raw,
		ProcessedData:   processed,
		SkippedRows:     skipped,
		ProfileSnapshot: snapshot,
		IsProcessed:     report.IsProcessed,
		UpdatedAt:       report.UpdatedAt,
	}, nil
}

func gpsReportFromRow(row gpsReportTableModel) (gpsreport.Report, error) {
	report := gpsreport.Report{
		ID:          row.ID,
		ClubID:      row.ClubID,
		TeamID:      row.TeamID,
		ProfileID:   row.ProfileID,
		EventType:   gpsreport.EventType(row.EventType),
		EventID:     row.EventID,
		EventDate:   row.EventDate,
		FileName:    row.FileName,
		IsProcessed: row.IsProcessed,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := decodeJSON(row.RawData, &report.RawData); err != nil {
		return gpsreport.Report{}, fmt.Errorf("decode gps report raw data id=%s: %w", row.ID, err)
	}
	if err := decodeJSON(row.ProcessedData, &report.ProcessedData); err != nil {
		return gpsreport.Report{}, fmt.Errorf("decode gps report processed data id=%s: %w", row.ID, err)
	}
	if err := decodeJSON(row.SkippedRows, &report.SkippedRows); err != nil {
		return gpsreport.Report{}, fmt.Errorf("decode gps report skipped rows id=%s: %w", row.ID, err)
	}
	if err := decodeJSON(row.ProfileSnapshot, &report.ProfileSnapshot); err != nil {
		return gpsreport.Report{}, fmt.Errorf("decode gps report profile snapshot id=%s: %w", row.ID, err)
	}
	return report, nil
}

func gpsPlayerMappingRowFrom(m gpsreport.PlayerMapping, updatedAt time.Time) (gpsPlayerMappingTableModel, error) {
	candidates, err := encodeJSON(m.Candidates, "[]")
	if err != nil {
		return gpsPlayerMappingTableModel{}, fmt.Errorf("encode gps player mapping candidates row=%d: %w", m.RowIndex, err)
	}
	row := gpsPlayerMappingTableModel{
		ReportID:   m.ReportID,
		RowIndex:   m.RowIndex,
		SourceName: m.SourceName,
		PlayerID:   nullString(m.PlayerID),
		IsManual:   m.IsManual,
		Candidates: candidates,
		UpdatedAt:  updatedAt,
	}
	if m.Similarity != nil {
		row.Similarity = sql.NullInt64{Int64: int64(*m.Similarity), Valid: true}
	}
	return row, nil
}

func gpsPlayerMappingFromRow(row gpsPlayerMappingTableModel) (gpsreport.PlayerMapping, error) {
	m := gpsreport.PlayerMapping{
		ReportID:   row.ReportID,
		RowIndex:   row.RowIndex,
		SourceName: row.SourceName,
		PlayerID:   stringPtr(row.PlayerID),
		IsManual:   row.IsManual,
		UpdatedAt:  row.UpdatedAt,
	}
	if row.Similarity.Valid {
		s := int(row.Similarity.Int64)
		m.Similarity = &s
	}
	if err := decodeJSON(row.Candidates, &m.Candidates); err != nil {
		return gpsreport.PlayerMapping{}, fmt.Errorf("decode gps player mapping candidates report=%s row=%d: %w", row.ReportID, row.RowIndex, err)
	}
	return m, nil
}
