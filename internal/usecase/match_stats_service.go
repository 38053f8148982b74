package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/matchstats"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/logging"
)

const maxMatchMinutes = 240

type UpdateMinutesInput struct {
	ClubID        string
	MatchID       string
	PlayerID      string
	MinutesPlayed float64
}

type MatchStatsService struct {
	repo       matchstats.Repository
	gameModels *GameModelService
	logger     *logging.Logger
	now        func() time.Time
}

func NewMatchStatsService(repo matchstats.Repository, gameModels *GameModelService, logger *logging.Logger) *MatchStatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchStatsService{
		repo:       repo,
		gameModels: gameModels,
		logger:     logger,
		now:        time.Now,
	}
}

// UpdateMinutes stores the player's playing time for the match and
// recomputes their game model.
func (s *MatchStatsService) UpdateMinutes(ctx context.Context, input UpdateMinutesInput) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatsService.UpdateMinutes", clubAttr(input.ClubID), playerAttr(input.PlayerID))
	defer span.End()

	input.ClubID = strings.TrimSpace(input.ClubID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	switch {
	case input.ClubID == "" || input.MatchID == "" || input.PlayerID == "":
		return RecomputeResult{}, fmt.Errorf("%w: club id, match id and player id are required", ErrInvalidInput)
	case math.IsNaN(input.MinutesPlayed) || math.IsInf(input.MinutesPlayed, 0):
		return RecomputeResult{}, fmt.Errorf("%w: minutes played must be finite", ErrInvalidInput)
	case input.MinutesPlayed < 0 || input.MinutesPlayed > maxMatchMinutes:
		return RecomputeResult{}, fmt.Errorf("%w: minutes played must be between 0 and %d", ErrInvalidInput, maxMatchMinutes)
	}

	entry := matchstats.MinutesEntry{
		ClubID:        input.ClubID,
		MatchID:       input.MatchID,
		PlayerID:      input.PlayerID,
		MinutesPlayed: input.MinutesPlayed,
		UpdatedAt:     s.now().UTC(),
	}
	if err := s.repo.UpsertMinutes(ctx, entry); err != nil {
		return RecomputeResult{}, fmt.Errorf("upsert match minutes: %w", err)
	}

	return s.gameModels.RecomputeGameModel(ctx, input.ClubID, input.PlayerID)
}

// DeleteMatch removes the match's minutes and GPS reports, then recomputes
// every player that had data in it.
func (s *MatchStatsService) DeleteMatch(ctx context.Context, clubID, matchID string) (RecomputeSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatsService.DeleteMatch", clubAttr(clubID))
	defer span.End()

	clubID = strings.TrimSpace(clubID)
	matchID = strings.TrimSpace(matchID)
	if clubID == "" || matchID == "" {
		return RecomputeSummary{}, fmt.Errorf("%w: club id and match id are required", ErrInvalidInput)
	}

	playerIDs, err := s.repo.ListMatchPlayers(ctx, clubID, matchID)
	if err != nil {
		return RecomputeSummary{}, fmt.Errorf("list match players: %w", err)
	}
	if err := s.repo.DeleteMatch(ctx, clubID, matchID); err != nil {
		return RecomputeSummary{}, fmt.Errorf("delete match: %w", err)
	}

	summary := s.gameModels.RecomputePlayers(ctx, clubID, playerIDs)
	s.logger.InfoContext(ctx, "match deleted",
		"club_id", clubID,
		"match_id", matchID,
		"players", len(playerIDs),
		"recomputed", summary.Recomputed,
		"deleted", summary.Deleted,
		"failed", summary.Failed,
	)
	return summary, nil
}
