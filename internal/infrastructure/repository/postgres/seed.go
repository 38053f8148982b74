package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/roster"
)

// SeedRoster inserts players and their aliases, leaving existing rows alone.
// It returns the number of players that were newly inserted.
func SeedRoster(ctx context.Context, db *sqlx.DB, players []roster.Player) (int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	inserted := 0
	for _, p := range players {
		res, err := tx.NamedExecContext(ctx, `
INSERT INTO players (id, club_id, team_id, full_name)
VALUES (:id, :club_id, :team_id, :full_name)
ON CONFLICT (id) DO NOTHING`, playerTableModel{
			ID:       p.ID,
			ClubID:   p.ClubID,
			TeamID:   p.TeamID,
			FullName: p.FullName,
		})
		if err != nil {
			return 0, fmt.Errorf("seed player %s: %w", p.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}

		for _, alias := range p.Aliases {
			if _, err := tx.NamedExecContext(ctx, `
INSERT INTO player_aliases (player_id, club_id, alias)
VALUES (:player_id, :club_id, :alias)
ON CONFLICT (player_id, alias) DO NOTHING`, playerAliasInsertModel{
				PlayerID: p.ID,
				ClubID:   p.ClubID,
				Alias:    alias,
			}); err != nil {
				return 0, fmt.Errorf("seed alias %q of player %s: %w", alias, p.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed tx: %w", err)
	}

	return inserted, nil
}
