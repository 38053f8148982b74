package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/logging"
	"github.com/riskibarqy/gps-gamemodel/internal/usecase"
)

const maxRequestBodyBytes = 16 << 20

type Handler struct {
	profileService    *usecase.ProfileService
	reportService     *usecase.ReportService
	gameModelService  *usecase.GameModelService
	matchStatsService *usecase.MatchStatsService
	registry          *canonical.Registry
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	profileService *usecase.ProfileService,
	reportService *usecase.ReportService,
	gameModelService *usecase.GameModelService,
	matchStatsService *usecase.MatchStatsService,
	registry *canonical.Registry,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		profileService:    profileService,
		reportService:     reportService,
		gameModelService:  gameModelService,
		matchStatsService: matchStatsService,
		registry:          registry,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"status":          "ok",
		"registryVersion": h.registry.Version(),
	})
}

func (h *Handler) ListCanonicalMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCanonicalMetrics")
	defer span.End()

	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if lang == "" {
		lang = "en"
	}

	metrics := h.registry.Metrics()
	items := make([]canonicalMetricDTO, 0, len(metrics))
	for _, m := range metrics {
		items = append(items, canonicalMetricToDTO(m, lang))
	}

	writeSuccess(ctx, w, http.StatusOK, canonicalRegistryDTO{
		Version: h.registry.Version(),
		Metrics: items,
	})
}

func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.decodeRequest")
	defer span.End()

	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
