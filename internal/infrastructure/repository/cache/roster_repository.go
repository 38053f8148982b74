package cache

import (
	"context"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/roster"
	basecache "github.com/riskibarqy/gps-gamemodel/internal/platform/cache"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/resilience"
)

// RosterRepository caches roster reads for the duration of an import burst
// and stops hammering the upstream store while its breaker is open.
type RosterRepository struct {
	next    roster.Repository
	cache   *basecache.Store[[]roster.Player]
	breaker *resilience.CircuitBreaker
}

func NewRosterRepository(next roster.Repository, cache *basecache.Store[[]roster.Player], breaker *resilience.CircuitBreaker) *RosterRepository {
	return &RosterRepository{next: next, cache: cache, breaker: breaker}
}

func (r *RosterRepository) ListByTeam(ctx context.Context, clubID, teamID string) ([]roster.Player, error) {
	key := "roster:" + clubID + ":team:" + teamID
	return r.load(ctx, key, func(ctx context.Context) ([]roster.Player, error) {
		return r.next.ListByTeam(ctx, clubID, teamID)
	})
}

func (r *RosterRepository) ListByClub(ctx context.Context, clubID string) ([]roster.Player, error) {
	key := "roster:" + clubID + ":all"
	return r.load(ctx, key, func(ctx context.Context) ([]roster.Player, error) {
		return r.next.ListByClub(ctx, clubID)
	})
}

func (r *RosterRepository) GetByID(ctx context.Context, clubID, playerID string) (roster.Player, bool, error) {
	players, err := r.ListByClub(ctx, clubID)
	if err != nil {
		return roster.Player{}, false, err
	}
	for _, p := range players {
		if p.ID == playerID {
			return p, true, nil
		}
	}
	return roster.Player{}, false, nil
}

// AddAlias writes through and drops every cached roster of the club.
func (r *RosterRepository) AddAlias(ctx context.Context, clubID, playerID, alias string) error {
	err := r.guard(ctx, func(ctx context.Context) error {
		return r.next.AddAlias(ctx, clubID, playerID, alias)
	})
	if err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "roster:"+clubID+":")
	return nil
}

func (r *RosterRepository) load(ctx context.Context, key string, fetch func(context.Context) ([]roster.Player, error)) ([]roster.Player, error) {
	players, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]roster.Player, error) {
		var items []roster.Player
		err := r.guard(ctx, func(ctx context.Context) error {
			var err error
			items, err = fetch(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		return clonePlayers(items), nil
	})
	if err != nil {
		return nil, err
	}
	return clonePlayers(players), nil
}

// guard runs fn through the breaker when one is configured.
func (r *RosterRepository) guard(ctx context.Context, fn func(context.Context) error) error {
	if r.breaker == nil {
		return fn(ctx)
	}
	return r.breaker.Do(ctx, fn)
}

func clonePlayers(players []roster.Player) []roster.Player {
	out := make([]roster.Player, 0, len(players))
	for _, p := range players {
		p.Aliases = append([]string(nil), p.Aliases...)
		out = append(out, p)
	}
	return out
}
