package httpapi

import (
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	"github.com/hoopsight/prospect-calendar/internal/usecase"
)

func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListOverrides")
	defer span.End()

	overrides, err := h.overrides.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list overrides failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]overrideDTO, 0, len(overrides))
	for _, item := range overrides {
		items = append(items, overrideDTO{
			RawName:        item.RawName,
			ProviderID:     item.ProviderID,
			ProviderTeamID: item.ProviderTeamID,
			LeagueID:       item.LeagueID,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertOverride")
	defer span.End()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err))
		return
	}

	var req overrideDTO
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode override payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	override := team.Override{
		RawName:        req.RawName,
		ProviderID:     req.ProviderID,
		ProviderTeamID: req.ProviderTeamID,
		LeagueID:       req.LeagueID,
	}
	if err := h.overrides.Upsert(ctx, override); err != nil {
		h.logger.ErrorContext(ctx, "upsert override failed", "raw_name", req.RawName, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "override saved",
		"raw_name", req.RawName,
		"provider_id", req.ProviderID,
		"provider_team_id", req.ProviderTeamID,
	)
	writeSuccess(ctx, w, http.StatusOK, req)
}
