package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gamemodel"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/matchstats"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/roster"
	"github.com/riskibarqy/gps-gamemodel/internal/infrastructure/repository/memory"
	gamemodelmock "github.com/riskibarqy/gps-gamemodel/internal/mocks/domain/gamemodel"
	matchstatsmock "github.com/riskibarqy/gps-gamemodel/internal/mocks/domain/matchstats"
	rostermock "github.com/riskibarqy/gps-gamemodel/internal/mocks/domain/roster"
	"github.com/stretchr/testify/mock"
)

func floatPtr(v float64) *float64 {
	return &v
}

func playedMatch(id string, daysAgo int, minutes, distance float64) matchstats.PlayerMatch {
	return matchstats.PlayerMatch{
		MatchID:       id,
		ReportID:      "report-" + id,
		Date:          time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo),
		MinutesPlayed: floatPtr(minutes),
		Metrics:       map[string]float64{"total_distance": distance},
		Processed:     true,
	}
}

func newMockedGameModelService(t *testing.T) (*GameModelService, *matchstatsmock.Repository, *gamemodelmock.Repository, *rostermock.Repository) {
	t.Helper()

	matchRepo := matchstatsmock.NewRepository(t)
	modelRepo := gamemodelmock.NewRepository(t)
	rosterRepo := rostermock.NewRepository(t)
	aggregator := gamemodel.NewAggregator(canonical.MustLoadDefault(), gamemodel.DefaultWindow, true)

	svc := NewGameModelService(matchRepo, modelRepo, rosterRepo, aggregator, GameModelConfig{Workers: 2}, nil)
	svc.now = func() time.Time { return time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC) }
	return svc, matchRepo, modelRepo, rosterRepo
}

func TestGameModelService_RecomputeGameModel_UpsertsMinuteWeightedModel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, matchRepo, modelRepo, _ := newMockedGameModelService(t)

	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "player-1").
		Return([]matchstats.PlayerMatch{
			playedMatch("m1", 7, 60, 6000),
			playedMatch("m2", 3, 30, 2400),
		}, nil).
		Once()
	modelRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(m gamemodel.PlayerGameModel) bool {
		return m.PlayerID == "player-1" && m.ClubID == "club-1" && m.MatchesCount == 2
	})).
		Return(func(_ context.Context, m gamemodel.PlayerGameModel) (gamemodel.PlayerGameModel, error) {
			m.Version = 1
			return m, nil
		}).
		Once()

	result, err := svc.RecomputeGameModel(ctx, "club-1", "player-1")
	if err != nil {
		t.Fatalf("recompute game model: %v", err)
	}
	if result.Model == nil || result.Deleted {
		t.Fatalf("expected stored model, got=%+v", result)
	}
	if got, want := result.Model.Metrics["total_distance"], 8400.0/90; math.Abs(got-want) > 1e-9 {
		t.Fatalf("unexpected total_distance: got=%v want=%v", got, want)
	}
	if got := result.Model.MatchIDs; len(got) != 2 || got[0] != "m2" || got[1] != "m1" {
		t.Fatalf("unexpected match ids: %v", got)
	}
	if result.Model.TotalMinutes != 90 {
		t.Fatalf("unexpected total minutes: got=%v want=90", result.Model.TotalMinutes)
	}
}

func TestGameModelService_RecomputeGameModel_DeletesWhenNothingQualifies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, matchRepo, modelRepo, _ := newMockedGameModelService(t)

	unprocessed := playedMatch("m1", 1, 90, 9000)
	unprocessed.Processed = false
	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "player-1").
		Return([]matchstats.PlayerMatch{unprocessed, playedMatch("m2", 2, 0, 100)}, nil).
		Once()
	modelRepo.On("Delete", mock.Anything, "club-1", "player-1").Return(true, nil).Once()

	result, err := svc.RecomputeGameModel(ctx, "club-1", "player-1")
	if err != nil {
		t.Fatalf("recompute game model: %v", err)
	}
	if result.Model != nil || !result.Deleted {
		t.Fatalf("expected deletion, got=%+v", result)
	}
	if len(result.Skipped) != 2 {
		t.Fatalf("unexpected skips: %+v", result.Skipped)
	}
}

func TestGameModelService_RecomputeGameModel_RetriesConflictWithFreshMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, matchRepo, modelRepo, _ := newMockedGameModelService(t)

	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "player-1").
		Return([]matchstats.PlayerMatch{playedMatch("m1", 1, 90, 9000)}, nil).
		Once()
	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "player-1").
		Return([]matchstats.PlayerMatch{
			playedMatch("m1", 1, 90, 9000),
			playedMatch("m2", 5, 60, 6000),
		}, nil).
		Once()
	modelRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(m gamemodel.PlayerGameModel) bool {
		return m.MatchesCount == 1
	})).
		Return(gamemodel.PlayerGameModel{}, gamemodel.ErrPersistenceConflict).
		Once()
	modelRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(m gamemodel.PlayerGameModel) bool {
		return m.MatchesCount == 2
	})).
		Return(func(_ context.Context, m gamemodel.PlayerGameModel) (gamemodel.PlayerGameModel, error) {
			m.Version = 4
			return m, nil
		}).
		Once()

	result, err := svc.RecomputeGameModel(ctx, "club-1", "player-1")
	if err != nil {
		t.Fatalf("recompute game model: %v", err)
	}
	if result.Model == nil || result.Model.Version != 4 {
		t.Fatalf("unexpected model: %+v", result.Model)
	}
	if result.Model.MatchesCount != 2 || result.Model.TotalMinutes != 150 {
		t.Fatalf("retry must use re-read matches: %+v", result.Model)
	}
}

func TestGameModelService_RecomputeGameModel_ConflictTwiceIsReported(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, matchRepo, modelRepo, _ := newMockedGameModelService(t)

	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "player-1").
		Return([]matchstats.PlayerMatch{playedMatch("m1", 1, 90, 9000)}, nil).
		Twice()
	modelRepo.On("Upsert", mock.Anything, mock.Anything).
		Return(gamemodel.PlayerGameModel{}, gamemodel.ErrPersistenceConflict).
		Twice()

	_, err := svc.RecomputeGameModel(ctx, "club-1", "player-1")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got=%v", err)
	}
	if !errors.Is(err, gamemodel.ErrPersistenceConflict) {
		t.Fatalf("expected persistence conflict in chain, got=%v", err)
	}
}

func TestGameModelService_RecomputeGameModel_RequiresKeys(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newMockedGameModelService(t)

	if _, err := svc.RecomputeGameModel(context.Background(), "club-1", " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}

func TestGameModelService_GetGameModel_NotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, modelRepo, _ := newMockedGameModelService(t)

	modelRepo.On("Get", mock.Anything, "club-1", "player-9").
		Return(gamemodel.PlayerGameModel{}, false, nil).
		Once()

	if _, err := svc.GetGameModel(ctx, "club-1", "player-9"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestGameModelService_CleanupInvalidModels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, matchRepo, modelRepo, _ := newMockedGameModelService(t)

	modelRepo.On("ListByClub", mock.Anything, "club-1").
		Return([]gamemodel.PlayerGameModel{
			{PlayerID: "fresh", ClubID: "club-1", MatchIDs: []string{"m1"}},
			{PlayerID: "stale", ClubID: "club-1", MatchIDs: []string{"m1", "gone"}},
			{PlayerID: "orphan", ClubID: "club-1", MatchIDs: []string{"gone"}},
			{PlayerID: "broken", ClubID: "club-1"},
		}, nil).
		Once()

	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "fresh").
		Return([]matchstats.PlayerMatch{playedMatch("m1", 1, 90, 9000)}, nil).Once()
	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "stale").
		Return([]matchstats.PlayerMatch{playedMatch("m1", 1, 90, 9000)}, nil).Once()
	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "orphan").
		Return([]matchstats.PlayerMatch{}, nil).Once()
	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "broken").
		Return(nil, errors.New("connection reset")).Once()

	modelRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(m gamemodel.PlayerGameModel) bool {
		return m.PlayerID == "stale"
	})).
		Return(func(_ context.Context, m gamemodel.PlayerGameModel) (gamemodel.PlayerGameModel, error) {
			return m, nil
		}).
		Once()
	modelRepo.On("Delete", mock.Anything, "club-1", "orphan").Return(true, nil).Once()

	result, err := svc.CleanupInvalidModels(ctx, "club-1")
	if err != nil {
		t.Fatalf("cleanup invalid models: %v", err)
	}
	if result.Scanned != 4 || result.Recomputed != 1 || result.Deleted != 1 || result.Failed != 1 {
		t.Fatalf("unexpected cleanup result: %+v", result)
	}
	if len(result.FailedIDs) != 1 || result.FailedIDs[0] != "broken" {
		t.Fatalf("unexpected failed ids: %v", result.FailedIDs)
	}
}

func TestGameModelService_RecomputeTeam(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, matchRepo, modelRepo, rosterRepo := newMockedGameModelService(t)

	rosterRepo.On("ListByTeam", mock.Anything, "club-1", "team-1").
		Return([]roster.Player{
			{ID: "p1", ClubID: "club-1", TeamID: "team-1", FullName: "Ivan Petrov"},
			{ID: "p2", ClubID: "club-1", TeamID: "team-1", FullName: "Alexei Smirnov"},
			{ID: "p3", ClubID: "club-1", TeamID: "team-1", FullName: "Dmitri Sokolov"},
		}, nil).
		Once()

	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "p1").
		Return([]matchstats.PlayerMatch{playedMatch("m1", 1, 90, 9000)}, nil).Once()
	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "p2").
		Return([]matchstats.PlayerMatch{playedMatch("m1", 1, 45, 5000)}, nil).Once()
	matchRepo.On("ListPlayerMatches", mock.Anything, "club-1", "p3").
		Return(nil, nil).Once()

	modelRepo.On("Upsert", mock.Anything, mock.Anything).
		Return(func(_ context.Context, m gamemodel.PlayerGameModel) (gamemodel.PlayerGameModel, error) {
			return m, nil
		}).
		Twice()
	modelRepo.On("Delete", mock.Anything, "club-1", "p3").Return(false, nil).Once()

	result, err := svc.RecomputeTeam(ctx, "club-1", "team-1")
	if err != nil {
		t.Fatalf("recompute team: %v", err)
	}
	if result.Players != 3 || result.Recomputed != 2 || result.Deleted != 0 || result.Failed != 0 {
		t.Fatalf("unexpected team result: %+v", result)
	}
}

func TestStaleModel(t *testing.T) {
	t.Parallel()

	comp := gamemodel.Computation{MatchIDs: []string{"m1", "m2"}}
	cases := []struct {
		name  string
		model gamemodel.PlayerGameModel
		want  bool
	}{
		{name: "subset of current window", model: gamemodel.PlayerGameModel{MatchIDs: []string{"m2"}}, want: false},
		{name: "same window", model: gamemodel.PlayerGameModel{MatchIDs: []string{"m1", "m2"}}, want: false},
		{name: "references removed match", model: gamemodel.PlayerGameModel{MatchIDs: []string{"m3"}}, want: true},
		{name: "empty match list", model: gamemodel.PlayerGameModel{}, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := staleModel(tc.model, comp); got != tc.want {
				t.Fatalf("unexpected stale flag: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestGameModelService_RecomputeGameModel_IsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestServices(t)
	profile := saveCatapultProfile(t, svc)
	importMatch(t, svc, profile.ID, "match-1", time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC))
	importMatch(t, svc, profile.ID, "match-2", time.Date(2026, time.February, 21, 0, 0, 0, 0, time.UTC))

	first, err := svc.gameModels.RecomputeGameModel(ctx, memory.DemoClubID, "player-01")
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	second, err := svc.gameModels.RecomputeGameModel(ctx, memory.DemoClubID, "player-01")
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if first.Model == nil || second.Model == nil {
		t.Fatalf("expected stored models, got first=%+v second=%+v", first, second)
	}

	if got, want := second.Model.Version, first.Model.Version+1; got != want {
		t.Fatalf("unexpected version step: got=%d want=%d", got, want)
	}
	if len(first.Model.Metrics) == 0 || len(first.Model.Metrics) != len(second.Model.Metrics) {
		t.Fatalf("metric sets differ: first=%v second=%v", first.Model.Metrics, second.Model.Metrics)
	}
	for key, v := range first.Model.Metrics {
		if second.Model.Metrics[key] != v {
			t.Fatalf("metric %s changed: got=%v want=%v", key, second.Model.Metrics[key], v)
		}
	}
	if first.Model.TotalMinutes != second.Model.TotalMinutes || first.Model.MatchesCount != second.Model.MatchesCount {
		t.Fatalf("model content changed: first=%+v second=%+v", first.Model, second.Model)
	}

	stored, err := svc.gameModels.GetGameModel(ctx, memory.DemoClubID, "player-01")
	if err != nil {
		t.Fatalf("get game model: %v", err)
	}
	if stored.Version != second.Model.Version {
		t.Fatalf("unexpected stored version: got=%d want=%d", stored.Version, second.Model.Version)
	}
}
