package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/gps-gamemodel/internal/usecase"
)

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListProfiles")
	defer span.End()

	clubID := r.PathValue("clubID")
	profiles, err := h.profileService.ListProfiles(ctx, clubID)
	if err != nil {
		h.logger.WarnContext(ctx, "list gps profiles failed", "club_id", clubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]profileDTO, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, profileToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateProfile")
	defer span.End()

	var req upsertProfileRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	clubID := r.PathValue("clubID")
	profile, err := h.profileService.UpsertProfile(ctx, req.toInput(clubID, ""))
	if err != nil {
		h.logger.WarnContext(ctx, "create gps profile failed", "club_id", clubID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, profileToDTO(profile))
}

func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertProfile")
	defer span.End()

	var req upsertProfileRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	clubID := r.PathValue("clubID")
	profileID := r.PathValue("profileID")
	profile, err := h.profileService.UpsertProfile(ctx, req.toInput(clubID, profileID))
	if err != nil {
		h.logger.WarnContext(ctx, "upsert gps profile failed", "club_id", clubID, "profile_id", profileID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, profileToDTO(profile))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProfile")
	defer span.End()

	clubID := r.PathValue("clubID")
	profileID := r.PathValue("profileID")
	profile, err := h.profileService.GetProfile(ctx, clubID, profileID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, profileToDTO(profile))
}

func (h *Handler) ImportReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportReport")
	defer span.End()

	var req importReportRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	clubID := r.PathValue("clubID")
	input, err := req.toInput(clubID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.reportService.ImportReport(ctx, input)
	if err != nil {
		h.logger.ErrorContext(ctx, "import gps report failed",
			"club_id", clubID,
			"event_id", req.EventID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, importResultDTO{
		Report:  reportToDTO(result.Report, result.Mappings),
		Summary: result.Summary,
	})
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetReport")
	defer span.End()

	details, err := h.reportService.GetReport(ctx, r.PathValue("clubID"), r.PathValue("reportID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, reportToDTO(details.Report, details.Mappings))
}

func (h *Handler) ReprocessReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReprocessReport")
	defer span.End()

	refresh := false
	if raw := strings.TrimSpace(r.URL.Query().Get("refresh_snapshot")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: refresh_snapshot must be a boolean", usecase.ErrInvalidInput))
			return
		}
		refresh = v
	}

	clubID := r.PathValue("clubID")
	reportID := r.PathValue("reportID")
	result, err := h.reportService.ReprocessReport(ctx, clubID, reportID, refresh)
	if err != nil {
		h.logger.ErrorContext(ctx, "reprocess gps report failed",
			"club_id", clubID,
			"report_id", reportID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, importResultDTO{
		Report:  reportToDTO(result.Report, result.Mappings),
		Summary: result.Summary,
	})
}

func (h *Handler) ConfirmMapping(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ConfirmMapping")
	defer span.End()

	rowIndex, err := strconv.Atoi(strings.TrimSpace(r.PathValue("rowIndex")))
	if err != nil || rowIndex < 0 {
		writeError(ctx, w, fmt.Errorf("%w: rowIndex must be a non-negative integer", usecase.ErrInvalidInput))
		return
	}

	var req confirmMappingRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.reportService.ConfirmMapping(ctx, usecase.ConfirmMappingInput{
		ClubID:   r.PathValue("clubID"),
		ReportID: r.PathValue("reportID"),
		RowIndex: rowIndex,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "confirm gps mapping failed",
			"report_id", r.PathValue("reportID"),
			"row_index", rowIndex,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, confirmMappingDTO{
		Mapping:   mappingToDTO(result.Mapping),
		Recompute: result.Recompute,
	})
}
