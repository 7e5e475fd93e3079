package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hoopsight/prospect-calendar/internal/usecase"
)

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCalendar")
	defer span.End()

	source := strings.TrimSpace(r.URL.Query().Get("source"))
	if source == "" {
		writeError(ctx, w, fmt.Errorf("%w: source query parameter is required", usecase.ErrInvalidInput))
		return
	}

	result, err := h.scheduleService.GetCalendar(ctx, usecase.CalendarQuery{
		Source:  source,
		UserID:  requestUserID(r),
		FromDay: strings.TrimSpace(r.URL.Query().Get("from")),
		ToDay:   strings.TrimSpace(r.URL.Query().Get("to")),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get calendar failed", "source", source, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, calendarToDTO(result))
}

func (h *Handler) GetCalendarGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCalendarGames")
	defer span.End()

	source := strings.TrimSpace(r.URL.Query().Get("source"))
	if source == "" {
		writeError(ctx, w, fmt.Errorf("%w: source query parameter is required", usecase.ErrInvalidInput))
		return
	}

	rawKeys := strings.TrimSpace(r.URL.Query().Get("keys"))
	if rawKeys == "" {
		writeError(ctx, w, fmt.Errorf("%w: keys query parameter is required", usecase.ErrInvalidInput))
		return
	}
	keys := make([]string, 0, 8)
	for _, key := range strings.Split(rawKeys, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}

	games, err := h.scheduleService.GetGames(ctx, source, requestUserID(r), keys)
	if err != nil {
		h.logger.WarnContext(ctx, "get calendar games failed", "source", source, "keys", len(keys), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameToDTO(g))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

// GetProspectGames returns the slice of the calendar involving one
// prospect's resolved team, for attaching games to a prospect card.
func (h *Handler) GetProspectGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProspectGames")
	defer span.End()

	publicID := strings.TrimSpace(r.PathValue("publicID"))
	source := strings.TrimSpace(r.URL.Query().Get("source"))
	if source == "" {
		writeError(ctx, w, fmt.Errorf("%w: source query parameter is required", usecase.ErrInvalidInput))
		return
	}

	games, err := h.scheduleService.GamesForProspect(ctx, source, requestUserID(r), publicID)
	if err != nil {
		h.logger.WarnContext(ctx, "get prospect games failed", "source", source, "prospect_id", publicID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameToDTO(g))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ResolveTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveTeam")
	defer span.End()

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(ctx, w, fmt.Errorf("%w: name query parameter is required", usecase.ErrInvalidInput))
		return
	}

	countryHint := strings.TrimSpace(r.URL.Query().Get("country"))
	if countryHint == "" {
		countryHint = resolveCountryCode(ctx, r)
	}

	resolved, err := h.resolverService.Resolve(ctx, name, countryHint)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve team failed", "name", name, "country_hint", countryHint, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]resolvedTeamDTO, 0, len(resolved))
	for _, item := range resolved {
		items = append(items, resolvedTeamToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
