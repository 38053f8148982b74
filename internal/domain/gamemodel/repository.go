package gamemodel

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrPersistenceConflict is returned when the (club, player) uniqueness
// constraint rejects a write.
var ErrPersistenceConflict = errors.New("game model persistence conflict")

// Repository persists game models keyed by (club, player).
type Repository interface {
	Get(ctx context.Context, clubID, playerID string) (PlayerGameModel, bool, error)
	ListByClub(ctx context.Context, clubID string) ([]PlayerGameModel, error)
	// Upsert inserts or replaces the model in place, incrementing Version,
	// and returns the stored row.
	Upsert(ctx context.Context, model PlayerGameModel) (PlayerGameModel, error)
	Delete(ctx context.Context, clubID, playerID string) (bool, error)
}
