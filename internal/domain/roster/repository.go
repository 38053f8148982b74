package roster

import "context"

// Repository describes roster lookups needed by identity resolution.
type Repository interface {
	ListByTeam(ctx context.Context, clubID, teamID string) ([]Player, error)
	ListByClub(ctx context.Context, clubID string) ([]Player, error)
	GetByID(ctx context.Context, clubID, playerID string) (Player, bool, error)
	// AddAlias records an alternative spelling learned from a manual mapping.
	AddAlias(ctx context.Context, clubID, playerID, alias string) error
}
