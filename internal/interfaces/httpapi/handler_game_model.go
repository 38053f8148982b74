package httpapi

import (
	"net/http"

	"github.com/riskibarqy/gps-gamemodel/internal/usecase"
)

func (h *Handler) GetGameModel(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameModel")
	defer span.End()

	model, err := h.gameModelService.GetGameModel(ctx, r.PathValue("clubID"), r.PathValue("playerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, gameModelToDTO(model))
}

func (h *Handler) RecomputeGameModel(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeGameModel")
	defer span.End()

	clubID := r.PathValue("clubID")
	playerID := r.PathValue("playerID")
	result, err := h.gameModelService.RecomputeGameModel(ctx, clubID, playerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "recompute game model failed",
			"club_id", clubID,
			"player_id", playerID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, recomputeResultToDTO(result))
}

func (h *Handler) RecomputeTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeTeam")
	defer span.End()

	clubID := r.PathValue("clubID")
	teamID := r.PathValue("teamID")
	result, err := h.gameModelService.RecomputeTeam(ctx, clubID, teamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "recompute team game models failed",
			"club_id", clubID,
			"team_id", teamID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) CleanupInvalidModels(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CleanupInvalidModels")
	defer span.End()

	clubID := r.PathValue("clubID")
	result, err := h.gameModelService.CleanupInvalidModels(ctx, clubID)
	if err != nil {
		h.logger.ErrorContext(ctx, "cleanup game models failed", "club_id", clubID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) UpdateMinutes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMinutes")
	defer span.End()

	var req updateMinutesRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.matchStatsService.UpdateMinutes(ctx, usecase.UpdateMinutesInput{
		ClubID:        r.PathValue("clubID"),
		MatchID:       r.PathValue("matchID"),
		PlayerID:      r.PathValue("playerID"),
		MinutesPlayed: *req.MinutesPlayed,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update match minutes failed",
			"match_id", r.PathValue("matchID"),
			"player_id", r.PathValue("playerID"),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, recomputeResultToDTO(result))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	clubID := r.PathValue("clubID")
	matchID := r.PathValue("matchID")
	summary, err := h.matchStatsService.DeleteMatch(ctx, clubID, matchID)
	if err != nil {
		h.logger.ErrorContext(ctx, "delete match failed", "club_id", clubID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, summary)
}
