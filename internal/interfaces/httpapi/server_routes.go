package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerCalendarRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/calendar", handler.GetCalendar)
	mux.HandleFunc("GET /v1/calendar/games", handler.GetCalendarGames)
	mux.HandleFunc("GET /v1/prospects/{publicID}/games", handler.GetProspectGames)
	mux.HandleFunc("GET /v1/teams/resolve", handler.ResolveTeam)
	mux.HandleFunc("GET /v1/overrides", handler.ListOverrides)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/overrides", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.UpsertOverride)))
	mux.Handle("POST /v1/internal/cache/invalidate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.InvalidateCache)))
	mux.Handle("POST /v1/internal/jobs/refresh-schedule", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RefreshSchedule)))
	mux.Handle("POST /v1/internal/jobs/enrich-scores", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.EnrichScores)))
	mux.Handle("POST /v1/internal/jobs/sync-directory", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SyncDirectory)))
}
