package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/roster"
	basecache "github.com/riskibarqy/gps-gamemodel/internal/platform/cache"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/resilience"
)

type countingRoster struct {
	players []roster.Player
	calls   int
	err     error
}

func (c *countingRoster) ListByTeam(_ context.Context, clubID, teamID string) ([]roster.Player, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	out := make([]roster.Player, 0)
	for _, p := range c.players {
		if p.ClubID == clubID && p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *countingRoster) ListByClub(_ context.Context, clubID string) ([]roster.Player, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return append([]roster.Player(nil), c.players...), nil
}

func (c *countingRoster) GetByID(context.Context, string, string) (roster.Player, bool, error) {
	return roster.Player{}, false, errors.New("not used")
}

func (c *countingRoster) AddAlias(_ context.Context, _, playerID, alias string) error {
	for i := range c.players {
		if c.players[i].ID == playerID {
			c.players[i].Aliases = append(c.players[i].Aliases, alias)
		}
	}
	return nil
}

func newRoster(next roster.Repository) *RosterRepository {
	return NewRosterRepository(
		next,
		basecache.NewStore[[]roster.Player](time.Minute),
		resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute}),
	)
}

func TestRosterRepository_CachesAndInvalidatesOnAlias(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	upstream := &countingRoster{players: []roster.Player{
		{ID: "p1", ClubID: "c1", TeamID: "t1", FullName: "Ivan Petrov"},
	}}
	repo := newRoster(upstream)

	for i := 0; i < 3; i++ {
		if _, err := repo.ListByTeam(ctx, "c1", "t1"); err != nil {
			t.Fatalf("list by team: %v", err)
		}
	}
	if upstream.calls != 1 {
		t.Fatalf("unexpected upstream calls: got=%d want=1", upstream.calls)
	}

	if err := repo.AddAlias(ctx, "c1", "p1", "Vanya Petrov"); err != nil {
		t.Fatalf("add alias: %v", err)
	}
	players, err := repo.ListByTeam(ctx, "c1", "t1")
	if err != nil {
		t.Fatalf("list by team: %v", err)
	}
	if upstream.calls != 2 {
		t.Fatalf("expected reload after alias, calls=%d", upstream.calls)
	}
	if len(players) != 1 || len(players[0].Aliases) != 1 {
		t.Fatalf("expected learned alias to be visible, got %+v", players)
	}
}

func TestRosterRepository_BreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	upstream := &countingRoster{err: errors.New("connection refused")}
	repo := newRoster(upstream)

	for i := 0; i < 2; i++ {
		if _, err := repo.ListByClub(ctx, "c1"); err == nil {
			t.Fatalf("expected upstream error")
		}
	}
	_, err := repo.ListByClub(ctx, "c1")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if upstream.calls != 2 {
		t.Fatalf("unexpected upstream calls: got=%d want=2", upstream.calls)
	}
}
