package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/roster"
)

type RosterRepository struct {
	mu      sync.RWMutex
	players map[string]roster.Player
}

func NewRosterRepository(players []roster.Player) *RosterRepository {
	index := make(map[string]roster.Player, len(players))
	for _, p := range players {
		p.Aliases = append([]string(nil), p.Aliases...)
		index[p.ID] = p
	}
	return &RosterRepository{players: index}
}

func (r *RosterRepository) ListByTeam(_ context.Context, clubID, teamID string) ([]roster.Player, error) {
	return r.list(func(p roster.Player) bool {
		return p.ClubID == clubID && p.TeamID == teamID
	}), nil
}

func (r *RosterRepository) ListByClub(_ context.Context, clubID string) ([]roster.Player, error) {
	return r.list(func(p roster.Player) bool {
		return p.ClubID == clubID
	}), nil
}

func (r *RosterRepository) GetByID(_ context.Context, clubID, playerID string) (roster.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[playerID]
	if !ok || p.ClubID != clubID {
		return roster.Player{}, false, nil
	}
	p.Aliases = append([]string(nil), p.Aliases...)
	return p, true, nil
}

func (r *RosterRepository) AddAlias(_ context.Context, clubID, playerID, alias string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok || p.ClubID != clubID {
		return nil
	}
	if strings.EqualFold(p.FullName, alias) {
		return nil
	}
	for _, existing := range p.Aliases {
		if strings.EqualFold(existing, alias) {
			return nil
		}
	}
	p.Aliases = append(append([]string(nil), p.Aliases...), alias)
	r.players[playerID] = p
	return nil
}

func (r *RosterRepository) list(keep func(roster.Player) bool) []roster.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Player, 0)
	for _, p := range r.players {
		if !keep(p) {
			continue
		}
		p.Aliases = append([]string(nil), p.Aliases...)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
