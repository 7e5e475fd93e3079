package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
)

const (
	directorySyncStatusSuccess = "success"
	directorySyncStatusFailed  = "failed"
	directorySyncStatusSkipped = "skipped"
)

type DirectorySyncInput struct {
	// ProviderIDs narrows the sync to specific providers. Empty means all.
	ProviderIDs []string
	MaxWorkers  int
	// DryRun fetches and counts without writing the directory.
	DryRun bool
}

type DirectorySyncResult struct {
	ProviderCount int                       `json:"provider_count"`
	SuccessCount  int                       `json:"success_count"`
	FailedCount   int                       `json:"failed_count"`
	SkippedCount  int                       `json:"skipped_count"`
	WorkerCount   int                       `json:"worker_count"`
	Providers     []DirectorySyncTaskResult `json:"providers"`
}

type DirectorySyncTaskResult struct {
	ProviderID string `json:"provider_id"`
	Status     string `json:"status"`
	TeamCount  int    `json:"team_count"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// DirectorySyncService refreshes provider team directory snapshots. Each
// provider syncs independently on a bounded worker pool so one slow or
// broken upstream cannot stall the rest.
type DirectorySyncService struct {
	providers []ScheduleProvider
	directory team.DirectoryRepository
	logger    *logging.Logger

	now func() time.Time
}

func NewDirectorySyncService(
	providers []ScheduleProvider,
	directory team.DirectoryRepository,
	logger *logging.Logger,
) *DirectorySyncService {
	if logger == nil {
		logger = logging.Default()
	}

	return &DirectorySyncService{
		providers: providers,
		directory: directory,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *DirectorySyncService) Sync(ctx context.Context, input DirectorySyncInput) (DirectorySyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DirectorySyncService.Sync")
	defer span.End()

	if len(s.providers) == 0 || s.directory == nil {
		return DirectorySyncResult{}, fmt.Errorf("%w: directory sync is not fully configured", ErrDependencyUnavailable)
	}

	targets, err := s.resolveTargets(input.ProviderIDs)
	if err != nil {
		return DirectorySyncResult{}, err
	}

	workerCount := normalizeDirectorySyncWorkerCount(input.MaxWorkers, len(targets))
	result := DirectorySyncResult{
		ProviderCount: len(targets),
		WorkerCount:   workerCount,
		Providers:     make([]DirectorySyncTaskResult, 0, len(targets)),
	}
	if len(targets) == 0 {
		return result, nil
	}

	results := make(chan DirectorySyncTaskResult, len(targets))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return DirectorySyncResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, provider := range targets {
		provider := provider
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := s.syncProvider(ctx, provider, input.DryRun)
			row.DurationMs = time.Since(start).Milliseconds()

			switch row.Status {
			case directorySyncStatusSuccess:
				successCount.Add(1)
			case directorySyncStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return DirectorySyncResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Providers = append(result.Providers, row)
	}
	sort.SliceStable(result.Providers, func(i, j int) bool {
		return result.Providers[i].ProviderID < result.Providers[j].ProviderID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	return result, nil
}

func (s *DirectorySyncService) syncProvider(ctx context.Context, provider ScheduleProvider, dryRun bool) DirectorySyncTaskResult {
	row := DirectorySyncTaskResult{ProviderID: provider.ID()}

	seasonLabel := team.SeasonLabel(provider.SeasonFormat(), team.SeasonStartYear(s.now()))
	entries, err := provider.ListTeams(ctx, seasonLabel)
	if err != nil {
		row.Status = directorySyncStatusFailed
		row.Message = err.Error()
		s.logger.WarnContext(ctx,
			"provider directory fetch failed",
			"provider_id", provider.ID(),
			"season", seasonLabel,
			"error", err.Error(),
		)
		return row
	}
	if len(entries) == 0 {
		row.Status = directorySyncStatusSkipped
		row.Message = "provider returned an empty directory, keeping previous snapshot"
		return row
	}

	synced := s.now().UTC()
	for i := range entries {
		entries[i].ProviderID = provider.ID()
		entries[i].SeasonFormat = team.NormalizeSeasonFormat(entries[i].SeasonFormat)
		entries[i].LastSynced = synced
	}

	row.TeamCount = len(entries)
	if dryRun {
		row.Status = directorySyncStatusSuccess
		return row
	}

	if err := s.directory.ReplaceProvider(ctx, provider.ID(), entries); err != nil {
		row.Status = directorySyncStatusFailed
		row.Message = err.Error()
		return row
	}
	row.Status = directorySyncStatusSuccess
	return row
}

func (s *DirectorySyncService) resolveTargets(providerIDs []string) ([]ScheduleProvider, error) {
	if len(providerIDs) == 0 {
		return s.providers, nil
	}

	byID := make(map[string]ScheduleProvider, len(s.providers))
	for _, provider := range s.providers {
		byID[provider.ID()] = provider
	}

	seen := make(map[string]struct{}, len(providerIDs))
	out := make([]ScheduleProvider, 0, len(providerIDs))
	for _, id := range providerIDs {
		id = strings.TrimSpace(strings.ToLower(id))
		if id == "" {
			continue
		}
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		provider, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown provider_id=%s", ErrInvalidInput, id)
		}
		out = append(out, provider)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: provider_ids is empty after normalization", ErrInvalidInput)
	}
	return out, nil
}

func normalizeDirectorySyncWorkerCount(value, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 2
	}
	if value > 4 {
		value = 4
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
