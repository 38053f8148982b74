package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/gamemodel"
)

type gameModelKey struct {
	clubID   string
	playerID string
}

type GameModelRepository struct {
	mu     sync.RWMutex
	models map[gameModelKey]gamemodel.PlayerGameModel
	now    func() time.Time
}

func NewGameModelRepository() *GameModelRepository {
	return &GameModelRepository{
		models: make(map[gameModelKey]gamemodel.PlayerGameModel),
		now:    time.Now,
	}
}

func (r *GameModelRepository) Get(_ context.Context, clubID, playerID string) (gamemodel.PlayerGameModel, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[gameModelKey{clubID: clubID, playerID: playerID}]
	if !ok {
		return gamemodel.PlayerGameModel{}, false, nil
	}
	return cloneGameModel(m), true, nil
}

func (r *GameModelRepository) ListByClub(_ context.Context, clubID string) ([]gamemodel.PlayerGameModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]gamemodel.PlayerGameModel, 0)
	for key, m := range r.models {
		if key.clubID == clubID {
			out = append(out, cloneGameModel(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *GameModelRepository) Upsert(_ context.Context, model gamemodel.PlayerGameModel) (gamemodel.PlayerGameModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := gameModelKey{clubID: model.ClubID, playerID: model.PlayerID}
	now := r.now().UTC()
	stored := cloneGameModel(model)
	stored.UpdatedAt = now
	if existing, ok := r.models[key]; ok {
		stored.CreatedAt = existing.CreatedAt
		stored.Version = existing.Version + 1
	} else {
		stored.CreatedAt = now
		stored.Version = 1
	}
	r.models[key] = stored
	return cloneGameModel(stored), nil
}

func (r *GameModelRepository) Delete(_ context.Context, clubID, playerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := gameModelKey{clubID: clubID, playerID: playerID}
	if _, ok := r.models[key]; !ok {
		return false, nil
	}
	delete(r.models, key)
	return true, nil
}

func cloneGameModel(m gamemodel.PlayerGameModel) gamemodel.PlayerGameModel {
	m.Metrics = maps.Clone(m.Metrics)
	m.MatchIDs = append([]string(nil), m.MatchIDs...)
	return m
}
