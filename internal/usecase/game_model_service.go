package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gamemodel"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/matchstats"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/roster"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultRecomputeWorkers = 4

type GameModelConfig struct {
	Workers int
}

// RecomputeResult is the outcome of one player recompute. Model is nil when
// no match qualified and any stored model was removed.
type RecomputeResult struct {
	Model   *gamemodel.PlayerGameModel
	Deleted bool
	Skipped []gamemodel.Skip
}

// RecomputeSummary counts a batch of player recomputes.
type RecomputeSummary struct {
	Recomputed int      `json:"recomputed"`
	Deleted    int      `json:"deleted"`
	Failed     int      `json:"failed"`
	FailedIDs  []string `json:"failedPlayerIds,omitempty"`
}

type TeamRecomputeResult struct {
	TeamID  string `json:"teamId"`
	Players int    `json:"players"`
	RecomputeSummary
}

type CleanupResult struct {
	Scanned    int      `json:"scanned"`
	Recomputed int      `json:"recomputed"`
	Deleted    int      `json:"deleted"`
	Failed     int      `json:"failed"`
	FailedIDs  []string `json:"failedPlayerIds,omitempty"`
}

type GameModelService struct {
	matchRepo  matchstats.Repository
	modelRepo  gamemodel.Repository
	rosterRepo roster.Repository
	aggregator *gamemodel.Aggregator
	workers    int
	logger     *logging.Logger
	now        func() time.Time
}

func NewGameModelService(
	matchRepo matchstats.Repository,
	modelRepo gamemodel.Repository,
	rosterRepo roster.Repository,
	aggregator *gamemodel.Aggregator,
	cfg GameModelConfig,
	logger *logging.Logger,
) *GameModelService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = defaultRecomputeWorkers
	}
	return &GameModelService{
		matchRepo:  matchRepo,
		modelRepo:  modelRepo,
		rosterRepo: rosterRepo,
		aggregator: aggregator,
		workers:    cfg.Workers,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *GameModelService) GetGameModel(ctx context.Context, clubID, playerID string) (gamemodel.PlayerGameModel, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameModelService.GetGameModel", clubAttr(clubID), playerAttr(playerID))
	defer span.End()

	clubID, playerID, err := requirePlayerKey(clubID, playerID)
	if err != nil {
		return gamemodel.PlayerGameModel{}, err
	}

	model, exists, err := s.modelRepo.Get(ctx, clubID, playerID)
	if err != nil {
		return gamemodel.PlayerGameModel{}, fmt.Errorf("get game model: %w", err)
	}
	if !exists {
		return gamemodel.PlayerGameModel{}, fmt.Errorf("%w: game model player=%s club=%s", ErrNotFound, playerID, clubID)
	}
	return model, nil
}

// RecomputeGameModel rebuilds the player's model from their qualifying
// matches. With nothing qualifying the stored model is deleted and no error
// is returned.
func (s *GameModelService) RecomputeGameModel(ctx context.Context, clubID, playerID string) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameModelService.RecomputeGameModel", clubAttr(clubID), playerAttr(playerID))
	defer span.End()

	clubID, playerID, err := requirePlayerKey(clubID, playerID)
	if err != nil {
		return RecomputeResult{}, err
	}

	comp, skips, err := s.compute(ctx, clubID, playerID)
	if err != nil {
		return RecomputeResult{}, err
	}
	return s.applyWithRetry(ctx, clubID, playerID, comp, skips)
}

// RecomputePlayers recomputes each player in turn. Failures are logged and
// counted; they never abort the batch.
func (s *GameModelService) RecomputePlayers(ctx context.Context, clubID string, playerIDs []string) RecomputeSummary {
	var summary RecomputeSummary
	for _, playerID := range playerIDs {
		result, err := s.RecomputeGameModel(ctx, clubID, playerID)
		summary.add(playerID, result, err)
		if err != nil {
			s.logger.ErrorContext(ctx, "game model recompute failed",
				"club_id", clubID,
				"player_id", playerID,
				"error", err,
			)
		}
	}
	sort.Strings(summary.FailedIDs)
	return summary
}

// RecomputeTeam recomputes every roster player of the team on a bounded
// worker pool.
func (s *GameModelService) RecomputeTeam(ctx context.Context, clubID, teamID string) (TeamRecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameModelService.RecomputeTeam", clubAttr(clubID), attribute.String("gps.team_id", teamID))
	defer span.End()

	clubID = strings.TrimSpace(clubID)
	teamID = strings.TrimSpace(teamID)
	if clubID == "" || teamID == "" {
		return TeamRecomputeResult{}, fmt.Errorf("%w: club id and team id are required", ErrInvalidInput)
	}

	players, err := s.rosterRepo.ListByTeam(ctx, clubID, teamID)
	if err != nil {
		return TeamRecomputeResult{}, fmt.Errorf("list team roster: %w", err)
	}

	result := TeamRecomputeResult{TeamID: teamID, Players: len(players)}
	if len(players) == 0 {
		return result, nil
	}

	workerPool, err := ants.NewPool(s.workers)
	if err != nil {
		return TeamRecomputeResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
	)
	for _, p := range players {
		playerID := p.ID
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			res, err := s.RecomputeGameModel(ctx, clubID, playerID)
			if err != nil {
				s.logger.ErrorContext(ctx, "team game model recompute failed",
					"club_id", clubID,
					"team_id", teamID,
					"player_id", playerID,
					"error", err,
				)
			}
			mu.Lock()
			result.add(playerID, res, err)
			mu.Unlock()
		}); err != nil {
			workers.Done()
			workers.Wait()
			return TeamRecomputeResult{}, fmt.Errorf("submit recompute to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.Strings(result.FailedIDs)
	s.logger.InfoContext(ctx, "team game models recomputed",
		"club_id", clubID,
		"team_id", teamID,
		"players", result.Players,
		"recomputed", result.Recomputed,
		"deleted", result.Deleted,
		"failed", result.Failed,
	)
	return result, nil
}

// CleanupInvalidModels recomputes every stored model of the club whose
// match list is empty or references a match that no longer qualifies.
// Recomputing deletes models left with no qualifying matches.
func (s *GameModelService) CleanupInvalidModels(ctx context.Context, clubID string) (CleanupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameModelService.CleanupInvalidModels", clubAttr(clubID))
	defer span.End()

	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return CleanupResult{}, fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}

	models, err := s.modelRepo.ListByClub(ctx, clubID)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("list game models: %w", err)
	}

	var (
		recomputed atomic.Int32
		deleted    atomic.Int32
		mu         sync.Mutex
		failedIDs  []string
	)
	p := pool.New().WithMaxGoroutines(s.workers)
	for _, model := range models {
		model := model
		p.Go(func() {
			outcome, err := s.cleanupOne(ctx, model)
			switch {
			case err != nil:
				s.logger.ErrorContext(ctx, "game model cleanup failed",
					"club_id", clubID,
					"player_id", model.PlayerID,
					"error", err,
				)
				mu.Lock()
				failedIDs = append(failedIDs, model.PlayerID)
				mu.Unlock()
			case outcome == cleanupDeleted:
				deleted.Add(1)
			case outcome == cleanupRecomputed:
				recomputed.Add(1)
			}
		})
	}
	p.Wait()

	sort.Strings(failedIDs)
	result := CleanupResult{
		Scanned:    len(models),
		Recomputed: int(recomputed.Load()),
		Deleted:    int(deleted.Load()),
		Failed:     len(failedIDs),
		FailedIDs:  failedIDs,
	}
	s.logger.InfoContext(ctx, "game model cleanup finished",
		"club_id", clubID,
		"scanned", result.Scanned,
		"recomputed", result.Recomputed,
		"deleted", result.Deleted,
		"failed", result.Failed,
	)
	return result, nil
}

type cleanupOutcome int

const (
	cleanupUnchanged cleanupOutcome = iota
	cleanupRecomputed
	cleanupDeleted
)

func (s *GameModelService) cleanupOne(ctx context.Context, model gamemodel.PlayerGameModel) (cleanupOutcome, error) {
	comp, skips, err := s.compute(ctx, model.ClubID, model.PlayerID)
	if err != nil {
		return cleanupUnchanged, err
	}
	if !staleModel(model, comp) {
		return cleanupUnchanged, nil
	}

	res, err := s.applyWithRetry(ctx, model.ClubID, model.PlayerID, comp, skips)
	if err != nil {
		return cleanupUnchanged, err
	}
	if res.Model == nil {
		return cleanupDeleted, nil
	}
	return cleanupRecomputed, nil
}

// staleModel reports whether the stored model references matches outside
// the current qualifying window.
func staleModel(model gamemodel.PlayerGameModel, comp gamemodel.Computation) bool {
	if len(model.MatchIDs) == 0 {
		return true
	}
	current := make(map[string]struct{}, len(comp.MatchIDs))
	for _, id := range comp.MatchIDs {
		current[id] = struct{}{}
	}
	for _, id := range model.MatchIDs {
		if _, ok := current[id]; !ok {
			return true
		}
	}
	return false
}

func (s *GameModelService) compute(ctx context.Context, clubID, playerID string) (gamemodel.Computation, []gamemodel.Skip, error) {
	matches, err := s.matchRepo.ListPlayerMatches(ctx, clubID, playerID)
	if err != nil {
		return gamemodel.Computation{}, nil, fmt.Errorf("list player matches: %w", err)
	}

	comp, skips := s.aggregator.Aggregate(matches)
	for _, skip := range skips {
		if skip.Reason == gamemodel.SkipOutOfWindow {
			continue
		}
		s.logger.WarnContext(ctx, "match excluded from game model",
			"club_id", clubID,
			"player_id", playerID,
			"match_id", skip.MatchID,
			"reason", string(skip.Reason),
			"detail", skip.Detail,
		)
	}
	return comp, skips, nil
}

func (s *GameModelService) apply(ctx context.Context, clubID, playerID string, comp gamemodel.Computation, skips []gamemodel.Skip) (RecomputeResult, error) {
	if comp.Empty() {
		deleted, err := s.modelRepo.Delete(ctx, clubID, playerID)
		if err != nil {
			return RecomputeResult{}, fmt.Errorf("delete game model: %w", err)
		}
		if deleted {
			s.logger.InfoContext(ctx, "game model deleted, no qualifying matches",
				"club_id", clubID,
				"player_id", playerID,
			)
		}
		return RecomputeResult{Deleted: deleted, Skipped: skips}, nil
	}

	model := gamemodel.PlayerGameModel{
		PlayerID:     playerID,
		ClubID:       clubID,
		MatchesCount: comp.MatchesCount,
		TotalMinutes: comp.TotalMinutes,
		Metrics:      comp.Metrics,
		MatchIDs:     comp.MatchIDs,
		CalculatedAt: s.now().UTC(),
	}
	stored, err := s.modelRepo.Upsert(ctx, model)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("upsert game model: %w", err)
	}
	return RecomputeResult{Model: &stored, Skipped: skips}, nil
}

// applyWithRetry persists comp. On a persistence conflict the matches are
// read again and the fresh result is written once more; the second writer's
// values replace the first.
func (s *GameModelService) applyWithRetry(ctx context.Context, clubID, playerID string, comp gamemodel.Computation, skips []gamemodel.Skip) (RecomputeResult, error) {
	res, err := s.apply(ctx, clubID, playerID, comp, skips)
	if !errors.Is(err, gamemodel.ErrPersistenceConflict) {
		return res, err
	}

	s.logger.WarnContext(ctx, "game model write conflict, recomputing",
		"club_id", clubID,
		"player_id", playerID,
		"error", err,
	)
	comp, skips, err = s.compute(ctx, clubID, playerID)
	if err != nil {
		return RecomputeResult{}, err
	}
	res, err = s.apply(ctx, clubID, playerID, comp, skips)
	if errors.Is(err, gamemodel.ErrPersistenceConflict) {
		return RecomputeResult{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return res, err
}

func (r *RecomputeSummary) add(playerID string, res RecomputeResult, err error) {
	switch {
	case err != nil:
		r.Failed++
		r.FailedIDs = append(r.FailedIDs, playerID)
	case res.Model != nil:
		r.Recomputed++
	case res.Deleted:
		r.Deleted++
	}
}

func requirePlayerKey(clubID, playerID string) (string, string, error) {
	clubID = strings.TrimSpace(clubID)
	playerID = strings.TrimSpace(playerID)
	if clubID == "" {
		return "", "", fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}
	if playerID == "" {
		return "", "", fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	return clubID, playerID, nil
}
