package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/matchstats"
	"github.com/riskibarqy/gps-gamemodel/internal/infrastructure/repository/memory"
	matchstatsmock "github.com/riskibarqy/gps-gamemodel/internal/mocks/domain/matchstats"
	"github.com/stretchr/testify/mock"
)

func TestMatchStatsService_UpdateMinutes_RejectsInvalidMinutes(t *testing.T) {
	t.Parallel()

	repo := matchstatsmock.NewRepository(t)
	svc := NewMatchStatsService(repo, nil, nil)

	for _, minutes := range []float64{-1, 241, math.NaN(), math.Inf(1)} {
		_, err := svc.UpdateMinutes(context.Background(), UpdateMinutesInput{
			ClubID:        "club-1",
			MatchID:       "match-1",
			PlayerID:      "player-1",
			MinutesPlayed: minutes,
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("unexpected error for minutes=%v: %v", minutes, err)
		}
	}
}

func TestMatchStatsService_UpdateMinutes_PropagatesStoreError(t *testing.T) {
	t.Parallel()

	repo := matchstatsmock.NewRepository(t)
	svc := NewMatchStatsService(repo, nil, nil)
	storeErr := errors.New("write failed")

	repo.On("UpsertMinutes", mock.Anything, mock.MatchedBy(func(e matchstats.MinutesEntry) bool {
		return e.MatchID == "match-1" && e.PlayerID == "player-1" && e.MinutesPlayed == 75
	})).
		Return(storeErr).
		Once()

	_, err := svc.UpdateMinutes(context.Background(), UpdateMinutesInput{
		ClubID:        "club-1",
		MatchID:       "match-1",
		PlayerID:      "player-1",
		MinutesPlayed: 75,
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("unexpected error: got=%v want=%v", err, storeErr)
	}
}

func TestMatchStatsService_UpdateMinutes_OverridesGPSDuration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestServices(t)
	profile := saveCatapultProfile(t, svc)
	importMatch(t, svc, profile.ID, "match-1", time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC))

	result, err := svc.matchStats.UpdateMinutes(ctx, UpdateMinutesInput{
		ClubID:        memory.DemoClubID,
		MatchID:       "match-1",
		PlayerID:      "player-01",
		MinutesPlayed: 60,
	})
	if err != nil {
		t.Fatalf("update minutes: %v", err)
	}
	if result.Model == nil {
		t.Fatalf("expected recomputed model")
	}
	if got := result.Model.Metrics["total_distance"]; math.Abs(got-150) > 1e-9 {
		t.Fatalf("unexpected distance per minute: got=%v want=150", got)
	}
	if result.Model.Version != 2 {
		t.Fatalf("unexpected version: got=%d want=2", result.Model.Version)
	}

	zero, err := svc.matchStats.UpdateMinutes(ctx, UpdateMinutesInput{
		ClubID:   memory.DemoClubID,
		MatchID:  "match-1",
		PlayerID: "player-01",
	})
	if err != nil {
		t.Fatalf("update minutes to zero: %v", err)
	}
	if zero.Model != nil || !zero.Deleted {
		t.Fatalf("zero minutes must remove the only match, got=%+v", zero)
	}
}

func TestMatchStatsService_DeleteMatch_RecomputesPlayers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestServices(t)
	profile := saveCatapultProfile(t, svc)
	importMatch(t, svc, profile.ID, "match-1", time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC))
	importMatch(t, svc, profile.ID, "match-2", time.Date(2026, time.February, 21, 0, 0, 0, 0, time.UTC))

	summary, err := svc.matchStats.DeleteMatch(ctx, memory.DemoClubID, "match-2")
	if err != nil {
		t.Fatalf("delete match: %v", err)
	}
	if summary.Recomputed != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	model, err := svc.gameModels.GetGameModel(ctx, memory.DemoClubID, "player-01")
	if err != nil {
		t.Fatalf("get game model: %v", err)
	}
	if len(model.MatchIDs) != 1 || model.MatchIDs[0] != "match-1" {
		t.Fatalf("unexpected match ids after delete: %v", model.MatchIDs)
	}

	if _, err := svc.matchStats.DeleteMatch(ctx, memory.DemoClubID, "match-1"); err != nil {
		t.Fatalf("delete last match: %v", err)
	}
	if _, err := svc.gameModels.GetGameModel(ctx, memory.DemoClubID, "player-01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected model removed with last match, got=%v", err)
	}
}
