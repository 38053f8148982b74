package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gamemodel"
	qb "github.com/riskibarqy/gps-gamemodel/internal/platform/querybuilder"
)

type playerGameModelTableModel struct {
	ID           int64          `db:"id"`
	PlayerID     string         `db:"player_id"`
	ClubID       string         `db:"club_id"`
	MatchesCount int            `db:"matches_count"`
	TotalMinutes float64        `db:"total_minutes"`
	Metrics      string         `db:"metrics"`
	MatchIDs     pq.StringArray `db:"match_ids"`
	Version      int64          `db:"version"`
	CalculatedAt time.Time      `db:"calculated_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type playerGameModelUpsertModel struct {
	PlayerID     string         `db:"player_id"`
	ClubID       string         `db:"club_id"`
	MatchesCount int            `db:"matches_count"`
	TotalMinutes float64        `db:"total_minutes"`
	Metrics      string         `db:"metrics"`
	MatchIDs     pq.StringArray `db:"match_ids"`
	CalculatedAt time.Time      `db:"calculated_at"`
}

var playerGameModelColumns = []string{
	"id", "player_id", "club_id", "matches_count", "total_minutes", "metrics", "match_ids",
	"version", "calculated_at", "created_at", "updated_at",
}

type GameModelRepository struct {
	db *sqlx.DB
}

func NewGameModelRepository(db *sqlx.DB) *GameModelRepository {
	return &GameModelRepository{db: db}
}

func (r *GameModelRepository) Get(ctx context.Context, clubID, playerID string) (gamemodel.PlayerGameModel, bool, error) {
	query, args, err := qb.Select(playerGameModelColumns...).From("player_game_models").
		Where(
			qb.Eq("club_id", clubID),
			qb.Eq("player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return gamemodel.PlayerGameModel{}, false, fmt.Errorf("build get game model query: %w", err)
	}

	var row playerGameModelTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gamemodel.PlayerGameModel{}, false, nil
		}
		return gamemodel.PlayerGameModel{}, false, fmt.Errorf("get game model: %w", err)
	}

	model, err := gameModelFromRow(row)
	if err != nil {
		return gamemodel.PlayerGameModel{}, false, err
	}
	return model, true, nil
}

func (r *GameModelRepository) ListByClub(ctx context.Context, clubID string) ([]gamemodel.PlayerGameModel, error) {
	query, args, err := qb.Select(playerGameModelColumns...).From("player_game_models").
		Where(qb.Eq("club_id", clubID)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list game models query: %w", err)
	}

	var rows []playerGameModelTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list game models: %w", err)
	}

	out := make([]gamemodel.PlayerGameModel, 0, len(rows))
	for _, row := range rows {
		model, err := gameModelFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, model)
	}
	return out, nil
}

// Upsert replaces the (player, club) row in place and bumps its version.
func (r *GameModelRepository) Upsert(ctx context.Context, model gamemodel.PlayerGameModel) (gamemodel.PlayerGameModel, error) {
	metrics, err := encodeJSON(model.Metrics, "{}")
	if err != nil {
		return gamemodel.PlayerGameModel{}, fmt.Errorf("encode game model metrics: %w", err)
	}
	matchIDs := model.MatchIDs
	if matchIDs == nil {
		matchIDs = []string{}
	}

	insertModel := playerGameModelUpsertModel{
		PlayerID:     model.PlayerID,
		ClubID:       model.ClubID,
		MatchesCount: model.MatchesCount,
		TotalMinutes: model.TotalMinutes,
		Metrics:      metrics,
		MatchIDs:     pq.StringArray(matchIDs),
		CalculatedAt: model.CalculatedAt,
	}
	query, args, err := qb.InsertModel("player_game_models", insertModel, qb.OnConflict("player_id", "club_id").
		UpdateExcluded("matches_count", "total_minutes", "metrics", "match_ids", "calculated_at").
		UpdateExpr("version", "player_game_models.version + 1").
		UpdateExpr("updated_at", "NOW()").
		Returning(playerGameModelColumns...).
		String())
	if err != nil {
		return gamemodel.PlayerGameModel{}, fmt.Errorf("build upsert game model query: %w", err)
	}

	var row playerGameModelTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isWriteConflict(err) {
			return gamemodel.PlayerGameModel{}, errors.Mark(
				errors.Wrapf(err, "upsert game model player=%s club=%s", model.PlayerID, model.ClubID),
				gamemodel.ErrPersistenceConflict,
			)
		}
		return gamemodel.PlayerGameModel{}, fmt.Errorf("upsert game model: %w", err)
	}

	return gameModelFromRow(row)
}

func (r *GameModelRepository) Delete(ctx context.Context, clubID, playerID string) (bool, error) {
	query, args, err := qb.DeleteFrom("player_game_models").
		Where(
			qb.Eq("club_id", clubID),
			qb.Eq("player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete game model query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete game model: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected delete game model: %w", err)
	}
	return affected > 0, nil
}

func gameModelFromRow(row playerGameModelTableModel) (gamemodel.PlayerGameModel, error) {
	model := gamemodel.PlayerGameModel{
		PlayerID:     row.PlayerID,
		ClubID:       row.ClubID,
		MatchesCount: row.MatchesCount,
		TotalMinutes: row.TotalMinutes,
		Metrics:      map[string]float64{},
		MatchIDs:     []string(row.MatchIDs),
		Version:      row.Version,
		CalculatedAt: row.CalculatedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if err := decodeJSON(row.Metrics, &model.Metrics); err != nil {
		return gamemodel.PlayerGameModel{}, fmt.Errorf("decode game model metrics player=%s: %w", row.PlayerID, err)
	}
	return model, nil
}
