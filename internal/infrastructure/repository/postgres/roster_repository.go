package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/roster"
	qb "github.com/riskibarqy/gps-gamemodel/internal/platform/querybuilder"
)

type playerTableModel struct {
	ID       string `db:"id"`
	ClubID   string `db:"club_id"`
	TeamID   string `db:"team_id"`
	FullName string `db:"full_name"`
}

type playerAliasTableModel struct {
	PlayerID string `db:"player_id"`
	Alias    string `db:"alias"`
}

type playerAliasInsertModel struct {
	PlayerID string `db:"player_id"`
	ClubID   string `db:"club_id"`
	Alias    string `db:"alias"`
}

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) ListByTeam(ctx context.Context, clubID, teamID string) ([]roster.Player, error) {
	return r.list(ctx, "list players by team",
		qb.Eq("club_id", clubID),
		qb.Eq("team_id", teamID),
		qb.IsNull("deleted_at"),
	)
}

func (r *RosterRepository) ListByClub(ctx context.Context, clubID string) ([]roster.Player, error) {
	return r.list(ctx, "list players by club",
		qb.Eq("club_id", clubID),
		qb.IsNull("deleted_at"),
	)
}

func (r *RosterRepository) GetByID(ctx context.Context, clubID, playerID string) (roster.Player, bool, error) {
	players, err := r.list(ctx, "get player by id",
		qb.Eq("club_id", clubID),
		qb.Eq("id", playerID),
		qb.IsNull("deleted_at"),
	)
	if err != nil {
		return roster.Player{}, false, err
	}
	if len(players) == 0 {
		return roster.Player{}, false, nil
	}
	return players[0], true, nil
}

func (r *RosterRepository) AddAlias(ctx context.Context, clubID, playerID, alias string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil
	}

	insertModel := playerAliasInsertModel{PlayerID: playerID, ClubID: clubID, Alias: alias}
	query, args, err := qb.InsertModel("player_aliases", insertModel, qb.OnConflict("player_id", "alias").DoNothing().String())
	if err != nil {
		return fmt.Errorf("build insert player alias query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert player alias: %w", err)
	}
	return nil
}

func (r *RosterRepository) list(ctx context.Context, op string, conditions ...qb.Condition) ([]roster.Player, error) {
	query, args, err := qb.Select("id", "club_id", "team_id", "full_name").From("players").
		Where(conditions...).
		OrderBy("full_name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		return []roster.Player{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	aliasQuery, aliasArgs, err := qb.Select("player_id", "alias").From("player_aliases").
		Where(qb.In("player_id", ids)).
		OrderBy("player_id", "created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player aliases query: %w", err)
	}
	var aliasRows []playerAliasTableModel
	if err := r.db.SelectContext(ctx, &aliasRows, aliasQuery, aliasArgs...); err != nil {
		return nil, fmt.Errorf("list player aliases: %w", err)
	}

	aliases := make(map[string][]string, len(rows))
	for _, a := range aliasRows {
		aliases[a.PlayerID] = append(aliases[a.PlayerID], a.Alias)
	}

	out := make([]roster.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Player{
			ID:       row.ID,
			ClubID:   row.ClubID,
			TeamID:   row.TeamID,
			FullName: row.FullName,
			Aliases:  aliases[row.ID],
		})
	}
	return out, nil
}
