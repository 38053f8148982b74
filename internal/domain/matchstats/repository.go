package matchstats

import "context"

// Repository is the match stats store the game model reads from.
type Repository interface {
	// ListPlayerMatches returns every MATCH event with a GPS row mapped to
	// the player, qualifying or not.
	ListPlayerMatches(ctx context.Context, clubID, playerID string) ([]PlayerMatch, error)
	// ListMatchPlayers returns players with GPS rows or minutes in the match.
	ListMatchPlayers(ctx context.Context, clubID, matchID string) ([]string, error)
	UpsertMinutes(ctx context.Context, entry MinutesEntry) error
	// DeleteMatch removes minutes and GPS reports of the match.
	DeleteMatch(ctx context.Context, clubID, matchID string) error
}
