package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	handle(mux, "GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	handle(mux, "GET "+openAPIPath, handler.OpenAPI)
	handle(mux, "GET /docs", handler.SwaggerUI)
	handle(mux, "GET /docs/", handler.SwaggerUI)
}

func registerCanonicalRoutes(mux *http.ServeMux, handler *Handler) {
	handle(mux, "GET /v1/canonical/metrics", handler.ListCanonicalMetrics)
}

func registerClubRoutes(mux *http.ServeMux, handler *Handler) {
	handle(mux, "GET /v1/clubs/{clubID}/gps/profiles", handler.ListProfiles)
	handle(mux, "POST /v1/clubs/{clubID}/gps/profiles", handler.CreateProfile)
	handle(mux, "PUT /v1/clubs/{clubID}/gps/profiles/{profileID}", handler.UpsertProfile)
	handle(mux, "GET /v1/clubs/{clubID}/gps/profiles/{profileID}", handler.GetProfile)

	handle(mux, "POST /v1/clubs/{clubID}/gps/reports", handler.ImportReport)
	handle(mux, "GET /v1/clubs/{clubID}/gps/reports/{reportID}", handler.GetReport)
	handle(mux, "POST /v1/clubs/{clubID}/gps/reports/{reportID}/reprocess", handler.ReprocessReport)
	handle(mux, "PUT /v1/clubs/{clubID}/gps/reports/{reportID}/mappings/{rowIndex}", handler.ConfirmMapping)

	handle(mux, "PUT /v1/clubs/{clubID}/matches/{matchID}/players/{playerID}/minutes", handler.UpdateMinutes)
	handle(mux, "DELETE /v1/clubs/{clubID}/matches/{matchID}", handler.DeleteMatch)

	handle(mux, "GET /v1/clubs/{clubID}/players/{playerID}/game-model", handler.GetGameModel)
	handle(mux, "POST /v1/clubs/{clubID}/players/{playerID}/game-model/recompute", handler.RecomputeGameModel)
	handle(mux, "POST /v1/clubs/{clubID}/teams/{teamID}/game-models/recompute", handler.RecomputeTeam)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	const cleanup = "POST /v1/internal/clubs/{clubID}/game-models/cleanup"
	mux.Handle(cleanup, RequireInternalJobToken(internalJobToken, routeSpan(cleanup, handler.CleanupInvalidModels)))
}

func handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, routeSpan(pattern, h))
}
