package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/hoopsight/prospect-calendar/internal/usecase"
)

const refreshScheduleJobPath = "/v1/internal/jobs/refresh-schedule"

type cacheInvalidateRequest struct {
	Source string `json:"source" validate:"required,min=1"`
}

type refreshScheduleRequest struct {
	Source       string `json:"source" validate:"required,min=1"`
	Enqueue      bool   `json:"enqueue"`
	DelaySeconds int    `json:"delay_seconds" validate:"gte=0,lte=86400"`
}

type enrichScoresRequest struct {
	Source string `json:"source" validate:"required,min=1"`
}

type directorySyncRequest struct {
	ProviderIDs []string `json:"provider_ids"`
	MaxWorkers  int      `json:"max_workers" validate:"gte=0,lte=16"`
	DryRun      bool     `json:"dry_run"`
}

func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InvalidateCache")
	defer span.End()

	var req cacheInvalidateRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	removed := h.scheduleService.Invalidate(ctx, req.Source)
	h.logger.InfoContext(ctx, "schedule cache invalidated", "source", req.Source, "removed", removed)

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"source":  req.Source,
		"removed": removed,
	})
}

// RefreshSchedule rebuilds one source's calendar. With enqueue=true the work
// is deferred to the job queue instead of running inline.
func (h *Handler) RefreshSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshSchedule")
	defer span.End()

	var req refreshScheduleRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if req.Enqueue {
		if h.jobPublisher == nil {
			writeError(ctx, w, fmt.Errorf("%w: job publisher is not configured", usecase.ErrDependencyUnavailable))
			return
		}
		delay := time.Duration(req.DelaySeconds) * time.Second
		payload := refreshScheduleRequest{Source: req.Source}
		dedupID := "refresh-schedule-" + strings.ToLower(req.Source)
		if err := h.jobPublisher.Enqueue(ctx, refreshScheduleJobPath, payload, delay, dedupID); err != nil {
			h.logger.WarnContext(ctx, "enqueue schedule refresh failed", "source", req.Source, "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusAccepted, map[string]any{
			"source":   req.Source,
			"enqueued": true,
		})
		return
	}

	result, err := h.scheduleService.Refresh(ctx, req.Source, requestUserID(r))
	if err != nil {
		h.logger.WarnContext(ctx, "schedule refresh failed", "source", req.Source, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, calendarToDTO(result))
}

// EnrichScores re-applies live scoreboard data to a cached schedule
// without rebuilding it. Meant to run on a short interval during game days.
func (h *Handler) EnrichScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EnrichScores")
	defer span.End()

	var req enrichScoresRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scheduleService.EnrichCached(ctx, req.Source)
	if err != nil {
		h.logger.WarnContext(ctx, "score enrichment failed", "source", req.Source, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, calendarToDTO(result))
}

func (h *Handler) SyncDirectory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncDirectory")
	defer span.End()

	var req directorySyncRequest
	if err := h.decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.syncService.Sync(ctx, usecase.DirectorySyncInput{
		ProviderIDs: req.ProviderIDs,
		MaxWorkers:  req.MaxWorkers,
		DryRun:      req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "directory sync failed", "providers", req.ProviderIDs, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) decodeJSON(r *http.Request, target any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	if err := sonic.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: decode request payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
