package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsprofile"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsreport"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/matchstats"
	qb "github.com/riskibarqy/gps-gamemodel/internal/platform/querybuilder"
)

type playerMatchRow struct {
	MatchID       string          `db:"match_id"`
	ReportID      string          `db:"report_id"`
	RowIndex      int             `db:"row_index"`
	EventDate     time.Time       `db:"event_date"`
	IsProcessed   bool            `db:"is_processed"`
	MinutesPlayed sql.NullFloat64 `db:"minutes_played"`
	ProcessedRow  sql.NullString  `db:"processed_row"`
}

type matchPlayerStatsUpsertModel struct {
	ClubID        string    `db:"club_id"`
	MatchID       string    `db:"match_id"`
	PlayerID      string    `db:"player_id"`
	MinutesPlayed float64   `db:"minutes_played"`
	UpdatedAt     time.Time `db:"updated_at"`
}

const listMatchPlayersQuery = `SELECT m.player_id
FROM gps_player_mappings m
JOIN gps_reports r ON r.id = m.report_id
WHERE r.club_id = $1 AND r.event_type = $2 AND r.event_id = $3 AND m.player_id IS NOT NULL
UNION
SELECT mps.player_id
FROM match_player_stats mps
WHERE mps.club_id = $1 AND mps.match_id = $3
ORDER BY 1`

type MatchStatsRepository struct {
	db *sqlx.DB
}

func NewMatchStatsRepository(db *sqlx.DB) *MatchStatsRepository {
	return &MatchStatsRepository{db: db}
}

// ListPlayerMatches reads the player's row from the latest report of each
// match. The row is looked up inside processed_data by its source index.
func (r *MatchStatsRepository) ListPlayerMatches(ctx context.Context, clubID, playerID string) ([]matchstats.PlayerMatch, error) {
	query, args, err := qb.Select(
		"DISTINCT ON (r.event_id) r.event_id AS match_id",
		"r.id AS report_id",
		"m.row_index",
		"r.event_date",
		"r.is_processed",
		"mps.minutes_played",
		`jsonb_path_query_first(r.processed_data, '$[*] ? (@.rowIndex == $idx)', jsonb_build_object('idx', m.row_index))::text AS processed_row`,
	).From(`gps_player_mappings m
JOIN gps_reports r ON r.id = m.report_id
LEFT JOIN match_player_stats mps ON mps.club_id = r.club_id AND mps.match_id = r.event_id AND mps.player_id = m.player_id`).
		Where(
			qb.Eq("r.club_id", clubID),
			qb.Eq("m.player_id", playerID),
			qb.Eq("r.event_type", string(gpsreport.EventMatch)),
		).
		OrderBy("r.event_id", "r.updated_at DESC", "r.id DESC", "m.row_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player matches query: %w", err)
	}

	var rows []playerMatchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player matches: %w", err)
	}

	out := make([]matchstats.PlayerMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerMatchFromRow(row))
	}
	return out, nil
}

func (r *MatchStatsRepository) ListMatchPlayers(ctx context.Context, clubID, matchID string) ([]string, error) {
	var out []string
	if err := r.db.SelectContext(ctx, &out, listMatchPlayersQuery, clubID, string(gpsreport.EventMatch), matchID); err != nil {
		return nil, fmt.Errorf("list match players: %w", err)
	}
	return out, nil
}

func (r *MatchStatsRepository) UpsertMinutes(ctx context.Context, entry matchstats.MinutesEntry) error {
	insertModel := matchPlayerStatsUpsertModel{
		ClubID:        entry.ClubID,
		MatchID:       entry.MatchID,
		PlayerID:      entry.PlayerID,
		MinutesPlayed: entry.MinutesPlayed,
		UpdatedAt:     entry.UpdatedAt,
	}
	query, args, err := qb.InsertModel("match_player_stats", insertModel, qb.OnConflict("match_id", "player_id").
		UpdateExcluded("minutes_played", "updated_at").
		Where("match_player_stats.club_id = EXCLUDED.club_id").
		String())
	if err != nil {
		return fmt.Errorf("build upsert match player stats query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match player stats: %w", err)
	}
	return nil
}

func (r *MatchStatsRepository) DeleteMatch(ctx context.Context, clubID, matchID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx delete match: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	statsQuery, statsArgs, err := qb.DeleteFrom("match_player_stats").
		Where(
			qb.Eq("club_id", clubID),
			qb.Eq("match_id", matchID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match player stats query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, statsQuery, statsArgs...); err != nil {
		return fmt.Errorf("delete match player stats: %w", err)
	}

	reportsQuery, reportsArgs, err := qb.DeleteFrom("gps_reports").
		Where(
			qb.Eq("club_id", clubID),
			qb.Eq("event_type", string(gpsreport.EventMatch)),
			qb.Eq("event_id", matchID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match gps reports query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, reportsQuery, reportsArgs...); err != nil {
		return fmt.Errorf("delete match gps reports: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete match tx: %w", err)
	}
	return nil
}

func playerMatchFromRow(row playerMatchRow) matchstats.PlayerMatch {
	pm := matchstats.PlayerMatch{
		MatchID:   row.MatchID,
		ReportID:  row.ReportID,
		Date:      row.EventDate,
		Processed: row.IsProcessed,
	}
	if row.MinutesPlayed.Valid {
		minutes := row.MinutesPlayed.Float64
		pm.MinutesPlayed = &minutes
	}
	if !row.ProcessedRow.Valid {
		pm.Corrupt = fmt.Sprintf("processed row %d missing", row.RowIndex)
		return pm
	}

	var canonicalRow gpsprofile.CanonicalRow
	if err := decodeJSON(row.ProcessedRow.String, &canonicalRow); err != nil {
		pm.Corrupt = fmt.Sprintf("decode processed row %d: %v", row.RowIndex, err)
		return pm
	}
	pm.Metrics = canonicalRow.Values
	return pm
}
