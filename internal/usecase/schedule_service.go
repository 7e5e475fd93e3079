package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/hoopsight/prospect-calendar/internal/domain/game"
	"github.com/hoopsight/prospect-calendar/internal/domain/prospect"
	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	"github.com/hoopsight/prospect-calendar/internal/platform/cache"
	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
	"github.com/hoopsight/prospect-calendar/internal/platform/normalize"
)

type ScheduleConfig struct {
	// CacheTTL bounds freshness, not retention: expired entries stay
	// servable as stale fallbacks until explicitly invalidated.
	CacheTTL time.Duration
	// BatchSize caps concurrent provider fetches per wave.
	BatchSize int
	// BatchDelay is the pause between waves, to stay under provider rate
	// limits.
	BatchDelay time.Duration
	// PipelineTimeout bounds the whole live fetch. On expiry the service
	// returns whatever it has gathered.
	PipelineTimeout time.Duration
}

func NormalizeScheduleConfig(cfg ScheduleConfig) ScheduleConfig {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if cfg.PipelineTimeout <= 0 {
		cfg.PipelineTimeout = 10 * time.Second
	}
	return cfg
}

type CalendarQuery struct {
	Source  string
	UserID  string
	FromDay string
	ToDay   string
}

type CalendarResult struct {
	Source      string                 `json:"source"`
	Days        map[string][]game.Game `json:"days"`
	GameCount   int                    `json:"game_count"`
	Cached      bool                   `json:"cached"`
	Stale       bool                   `json:"stale"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// ScheduleService builds the merged game calendar for one prospect source.
// Lookup order: fresh cache, stale entry for the same source (served while
// a detached rebuild runs), the source's wildcard entry, then the live
// provider pipeline. Liveboard sources skip the cache entirely in both
// directions. Score enrichment runs detached, never on the request path.
type ScheduleService struct {
	prospects  prospect.Repository
	resolver   *ResolverService
	providers  []ScheduleProvider
	store      *cache.Store
	enricher   *EnricherService
	background *BackgroundRunner
	cfg        ScheduleConfig
	logger     *logging.Logger

	now func() time.Time
}

func NewScheduleService(
	prospects prospect.Repository,
	resolver *ResolverService,
	providers []ScheduleProvider,
	store *cache.Store,
	enricher *EnricherService,
	background *BackgroundRunner,
	cfg ScheduleConfig,
	logger *logging.Logger,
) *ScheduleService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScheduleService{
		prospects:  prospects,
		resolver:   resolver,
		providers:  providers,
		store:      store,
		enricher:   enricher,
		background: background,
		cfg:        NormalizeScheduleConfig(cfg),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *ScheduleService) GetCalendar(ctx context.Context, query CalendarQuery) (CalendarResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetCalendar")
	defer span.End()

	source := strings.TrimSpace(query.Source)
	if source == "" {
		return CalendarResult{}, fmt.Errorf("%w: source is required", ErrInvalidInput)
	}
	if err := validateDayRange(query.FromDay, query.ToDay); err != nil {
		return CalendarResult{}, err
	}
	if s.prospects == nil || s.resolver == nil || len(s.providers) == 0 {
		return CalendarResult{}, fmt.Errorf("%w: schedule service is not fully configured", ErrDependencyUnavailable)
	}

	cacheable := prospect.IsCacheable(source) && s.store != nil
	cacheKey := scheduleCacheKey(source)

	if cacheable {
		if games, ok := cachedGames(s.store.Get(ctx, cacheKey)); ok {
			return s.buildResult(query, source, games, true, false), nil
		}
		// A stale entry beats blocking the caller on a full rebuild.
		// The rebuild runs detached; the next request picks it up.
		if lookup, ok := s.store.GetStale(ctx, cacheKey); ok {
			if games, valid := lookup.Value.([]game.Game); valid {
				s.scheduleRefresh(source, query.UserID)
				return s.buildResult(query, source, games, true, lookup.Stale), nil
			}
		}
		if lookup, ok := s.store.GetStale(ctx, scheduleWildcardKey(source)); ok {
			if games, valid := lookup.Value.([]game.Game); valid {
				s.logger.WarnContext(ctx, "serving wildcard schedule entry", "source", source)
				s.scheduleRefresh(source, query.UserID)
				return s.buildResult(query, source, games, true, lookup.Stale), nil
			}
		}
	}

	games, err := s.buildSchedule(ctx, source, query.UserID)
	if err != nil {
		return CalendarResult{}, err
	}
	if cacheable {
		s.store.Set(ctx, cacheKey, games)
		s.store.Set(ctx, scheduleWildcardKey(source), games)
		s.scheduleEnrichment(source)
	}
	return s.buildResult(query, source, games, false, false), nil
}

// GetGames returns the subset of the source's calendar matching the given
// game keys, in the order requested. Unknown keys are skipped.
func (s *ScheduleService) GetGames(ctx context.Context, source, userID string, gameKeys []string) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetGames")
	defer span.End()

	if len(gameKeys) == 0 {
		return nil, fmt.Errorf("%w: at least one game key is required", ErrInvalidInput)
	}

	result, err := s.GetCalendar(ctx, CalendarQuery{Source: source, UserID: userID})
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]game.Game, result.GameCount)
	for _, day := range result.Days {
		for _, g := range day {
			byKey[g.GameKey] = g
		}
	}

	out := make([]game.Game, 0, len(gameKeys))
	for _, key := range gameKeys {
		if g, ok := byKey[strings.TrimSpace(key)]; ok {
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no games matched the requested keys", ErrNotFound)
	}
	return out, nil
}

// Invalidate drops cached schedules. An empty source drops everything.
func (s *ScheduleService) Invalidate(ctx context.Context, source string) int {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.Invalidate")
	defer span.End()

	if s.store == nil {
		return 0
	}

	source = strings.TrimSpace(source)
	if source == "" {
		return s.store.DeletePrefix(ctx, "schedule|")
	}
	// Removes both the source entry and its wildcard sibling.
	return s.store.DeletePrefix(ctx, scheduleCacheKey(source))
}

// Refresh rebuilds the cache for one source regardless of freshness.
func (s *ScheduleService) Refresh(ctx context.Context, source, userID string) (CalendarResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.Refresh")
	defer span.End()

	source = strings.TrimSpace(source)
	if source == "" {
		return CalendarResult{}, fmt.Errorf("%w: source is required", ErrInvalidInput)
	}

	games, err := s.buildSchedule(ctx, source, userID)
	if err != nil {
		return CalendarResult{}, err
	}
	if prospect.IsCacheable(source) && s.store != nil {
		s.store.Set(ctx, scheduleCacheKey(source), games)
		s.store.Set(ctx, scheduleWildcardKey(source), games)
		s.scheduleEnrichment(source)
	}
	return s.buildResult(CalendarQuery{Source: source}, source, games, false, false), nil
}

// scheduleRefresh rebuilds one source's cache off the request path.
func (s *ScheduleService) scheduleRefresh(source, userID string) {
	if s.background == nil {
		return
	}
	s.background.Submit("refresh schedule source="+source, func() error {
		_, err := s.Refresh(context.Background(), source, userID)
		return err
	})
}

// scheduleEnrichment overlays live scores onto the cached payload off the
// request path. Uncached sources are served as built; enrichment has
// nowhere to land for them.
func (s *ScheduleService) scheduleEnrichment(source string) {
	if s.background == nil || s.enricher == nil || s.store == nil {
		return
	}
	s.background.Submit("enrich schedule source="+source, func() error {
		_, err := s.EnrichCached(context.Background(), source)
		return err
	})
}

// EnrichCached re-runs live score enrichment over an already cached
// schedule and writes the result back in place. Freshness is untouched:
// score updates never postpone the next full rebuild.
func (s *ScheduleService) EnrichCached(ctx context.Context, source string) (CalendarResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.EnrichCached")
	defer span.End()

	source = strings.TrimSpace(source)
	if source == "" {
		return CalendarResult{}, fmt.Errorf("%w: source is required", ErrInvalidInput)
	}
	if !prospect.IsCacheable(source) {
		return CalendarResult{}, fmt.Errorf("%w: source=%s is never cached", ErrInvalidInput, source)
	}
	if s.store == nil || s.enricher == nil {
		return CalendarResult{}, fmt.Errorf("%w: cache or live scoreboard is not configured", ErrDependencyUnavailable)
	}

	cacheKey := scheduleCacheKey(source)
	lookup, ok := s.store.GetStale(ctx, cacheKey)
	if !ok {
		return CalendarResult{}, fmt.Errorf("%w: no cached schedule for source=%s", ErrNotFound, source)
	}
	games, valid := lookup.Value.([]game.Game)
	if !valid {
		return CalendarResult{}, fmt.Errorf("%w: no cached schedule for source=%s", ErrNotFound, source)
	}

	enriched := s.enricher.Enrich(ctx, games)
	s.store.Update(ctx, cacheKey, enriched)
	s.store.Update(ctx, scheduleWildcardKey(source), enriched)
	return s.buildResult(CalendarQuery{Source: source}, source, enriched, true, lookup.Stale), nil
}

// GamesForProspect filters the source's calendar down to the games of one
// prospect's resolved team.
func (s *ScheduleService) GamesForProspect(ctx context.Context, source, userID, publicID string) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GamesForProspect")
	defer span.End()

	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil, fmt.Errorf("%w: prospect id is required", ErrInvalidInput)
	}

	result, err := s.GetCalendar(ctx, CalendarQuery{Source: source, UserID: userID})
	if err != nil {
		return nil, err
	}

	items, err := s.prospects.ListBySource(ctx, strings.TrimSpace(source), userID)
	if err != nil {
		return nil, fmt.Errorf("list prospects source=%s: %w", source, err)
	}
	var found *prospect.Prospect
	for i := range items {
		if items[i].ID == publicID {
			found = &items[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: prospect id=%s not in source=%s", ErrNotFound, publicID, source)
	}

	resolvedTeams, err := s.resolver.Resolve(ctx, found.TeamName, found.Country)
	if err != nil {
		return nil, fmt.Errorf("resolve team for prospect id=%s: %w", publicID, err)
	}
	teamKeys := make([]string, 0, len(resolvedTeams))
	for _, resolved := range resolvedTeams {
		teamKeys = append(teamKeys, normalize.Key(resolved.CanonicalName))
	}

	out := make([]game.Game, 0, 16)
	for _, day := range result.Days {
		for _, g := range day {
			if gameInvolvesAnyTeam(g, teamKeys) {
				out = append(out, g)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Tipoff.Equal(out[j].Tipoff) {
			return out[i].Tipoff.Before(out[j].Tipoff)
		}
		return out[i].GameKey < out[j].GameKey
	})
	return out, nil
}

func gameInvolvesAnyTeam(g game.Game, teamKeys []string) bool {
	for _, key := range teamKeys {
		if gameInvolvesTeam(g, key) {
			return true
		}
	}
	return false
}

// gameInvolvesTeam matches on normalized keys, falling back to containment
// for feeds that merge under a longer or shorter spelling of the same club.
func gameInvolvesTeam(g game.Game, teamKey string) bool {
	if teamKey == "" {
		return false
	}
	homeKey := normalize.Key(g.HomeTeam)
	awayKey := normalize.Key(g.AwayTeam)
	if homeKey == teamKey || awayKey == teamKey {
		return true
	}
	if len(teamKey) < minPartialMatchKeyLen {
		return false
	}
	return containsEither(homeKey, teamKey) || containsEither(awayKey, teamKey)
}

type fetchTarget struct {
	resolved team.ResolvedTeam
}

// buildSchedule runs the live pipeline: resolve every prospect's team,
// fetch each resolved team's season schedule in bounded waves, then merge.
// Individual failures degrade the result instead of aborting it; the only
// hard failure is ending up with zero games after at least one error.
func (s *ScheduleService) buildSchedule(ctx context.Context, source, userID string) ([]game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PipelineTimeout)
	defer cancel()

	items, err := s.prospects.ListBySource(ctx, source, userID)
	if err != nil {
		return nil, fmt.Errorf("list prospects source=%s: %w", source, err)
	}
	if len(items) == 0 {
		// An empty ranking list is a valid state, not a failure.
		s.logger.InfoContext(ctx, "ranking source has no prospects", "source", source)
		return []game.Game{}, nil
	}

	targets, unresolved := s.resolveTargets(ctx, items)
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: none of %d prospect teams resolved for source=%s", ErrResolutionMiss, len(items), source)
	}
	if unresolved > 0 {
		s.logger.WarnContext(ctx,
			"some prospect teams did not resolve, schedule will be partial",
			"source", source,
			"unresolved_count", unresolved,
			"resolved_count", len(targets),
		)
	}

	rows, fetchErrs := s.fetchAll(ctx, targets)
	if len(rows) == 0 {
		if len(fetchErrs) > 0 {
			return nil, fmt.Errorf("%w: %d of %d team fetches failed, first: %v", ErrProviderUnavailable, len(fetchErrs), len(targets), fetchErrs[0])
		}
		return []game.Game{}, nil
	}
	if len(fetchErrs) > 0 {
		s.logger.WarnContext(ctx,
			"some team schedule fetches failed, returning best available",
			"source", source,
			"failed_count", len(fetchErrs),
			"target_count", len(targets),
			"first_error", fetchErrs[0].Error(),
		)
	}

	return mergeGames(ctx, s.logger, s.providerRank, rows), nil
}

// resolveTargets maps prospects to resolved teams, one fetch target per
// provider namespace, deduplicating prospects that share a club.
func (s *ScheduleService) resolveTargets(ctx context.Context, items []prospect.Prospect) ([]fetchTarget, int) {
	seen := make(map[string]struct{}, len(items))
	targets := make([]fetchTarget, 0, len(items))
	unresolved := 0

	for _, item := range items {
		resolvedTeams, err := s.resolver.Resolve(ctx, item.TeamName, item.Country)
		if err != nil {
			unresolved++
			s.logger.WarnContext(ctx,
				"prospect team did not resolve, skipping",
				"prospect_id", item.ID,
				"prospect_name", item.Name,
				"team_name", item.TeamName,
				"error", err.Error(),
			)
			continue
		}
		for _, resolved := range resolvedTeams {
			dedupKey := resolved.ProviderID + "|" + resolved.ProviderTeamID
			if _, exists := seen[dedupKey]; exists {
				continue
			}
			seen[dedupKey] = struct{}{}
			targets = append(targets, fetchTarget{resolved: resolved})
		}
	}

	return targets, unresolved
}

// fetchAll pulls every target's schedule in waves of cfg.BatchSize with
// cfg.BatchDelay between waves. All targets are attempted even when some
// fail; the context deadline is the only thing that cuts a wave short.
func (s *ScheduleService) fetchAll(ctx context.Context, targets []fetchTarget) ([]game.Game, []error) {
	var mu sync.Mutex
	rows := make([]game.Game, 0, len(targets)*16)
	errs := make([]error, 0)

	for start := 0; start < len(targets); start += s.cfg.BatchSize {
		if ctx.Err() != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("schedule pipeline cut short: %w", ctx.Err()))
			mu.Unlock()
			break
		}

		end := start + s.cfg.BatchSize
		if end > len(targets) {
			end = len(targets)
		}

		var wg conc.WaitGroup
		for _, target := range targets[start:end] {
			target := target
			wg.Go(func() {
				fetched, err := s.fetchTeamGames(ctx, target.resolved)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				rows = append(rows, fetched...)
			})
		}
		wg.Wait()

		if end < len(targets) && s.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.cfg.BatchDelay):
			}
		}
	}

	return rows, errs
}

// fetchTeamGames fetches one team's schedule for the current season,
// falling back to the previous season when the current one is still empty
// (early offseason, provider has not published fixtures yet).
func (s *ScheduleService) fetchTeamGames(ctx context.Context, resolved team.ResolvedTeam) ([]game.Game, error) {
	provider := s.providerByID(resolved.ProviderID)
	if provider == nil {
		return nil, fmt.Errorf("%w: no provider registered for id=%s", ErrDependencyUnavailable, resolved.ProviderID)
	}

	startYear := team.SeasonStartYear(s.now())
	label := team.SeasonLabel(resolved.SeasonFormat, startYear)
	rows, err := provider.FetchTeamSchedule(ctx, resolved.ProviderTeamID, label)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule provider=%s team=%s season=%s: %w", resolved.ProviderID, resolved.ProviderTeamID, label, err)
	}
	if len(rows) == 0 {
		previous := team.SeasonLabel(resolved.SeasonFormat, startYear-1)
		s.logger.WarnContext(ctx,
			"current season is empty, trying previous season",
			"provider_id", resolved.ProviderID,
			"provider_team_id", resolved.ProviderTeamID,
			"season", label,
			"previous_season", previous,
		)
		rows, err = provider.FetchTeamSchedule(ctx, resolved.ProviderTeamID, previous)
		if err != nil {
			return nil, fmt.Errorf("fetch schedule provider=%s team=%s season=%s: %w", resolved.ProviderID, resolved.ProviderTeamID, previous, err)
		}
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, buildGame(resolved.ProviderID, row))
	}
	return out, nil
}

func (s *ScheduleService) providerByID(providerID string) ScheduleProvider {
	for _, provider := range s.providers {
		if provider.ID() == providerID {
			return provider
		}
	}
	return nil
}

func (s *ScheduleService) providerRank(providerID string) int {
	for i, provider := range s.providers {
		if provider.ID() == providerID {
			return i
		}
	}
	return len(s.providers)
}

func cachedGames(value any, ok bool) ([]game.Game, bool) {
	if !ok {
		return nil, false
	}
	games, valid := value.([]game.Game)
	return games, valid
}

func (s *ScheduleService) buildResult(query CalendarQuery, source string, games []game.Game, cached, stale bool) CalendarResult {
	filtered := filterDayRange(games, query.FromDay, query.ToDay)
	return CalendarResult{
		Source:      source,
		Days:        game.ByDate(filtered),
		GameCount:   len(filtered),
		Cached:      cached,
		Stale:       stale,
		GeneratedAt: s.now().UTC(),
	}
}

func scheduleCacheKey(source string) string {
	return "schedule|" + strings.ToLower(strings.TrimSpace(source))
}

// scheduleWildcardKey is the per-source "all games" fallback entry.
// Wildcards stay scoped to their source: one ranking's games must never be
// served under another.
func scheduleWildcardKey(source string) string {
	return scheduleCacheKey(source) + "|*"
}

func validateDayRange(fromDay, toDay string) error {
	for _, day := range []string{fromDay, toDay} {
		if day == "" {
			continue
		}
		if _, err := time.Parse(game.DateKeyLayout, day); err != nil {
			return fmt.Errorf("%w: day %q must use %s", ErrInvalidInput, day, game.DateKeyLayout)
		}
	}
	if fromDay != "" && toDay != "" && fromDay > toDay {
		return fmt.Errorf("%w: from=%s is after to=%s", ErrInvalidInput, fromDay, toDay)
	}
	return nil
}

// filterDayRange keeps games whose venue-local day falls inside the
// inclusive range. Date keys are ISO formatted so string comparison is
// chronological.
func filterDayRange(games []game.Game, fromDay, toDay string) []game.Game {
	if fromDay == "" && toDay == "" {
		return games
	}
	out := make([]game.Game, 0, len(games))
	for _, g := range games {
		if fromDay != "" && g.DateKey < fromDay {
			continue
		}
		if toDay != "" && g.DateKey > toDay {
			continue
		}
		out = append(out, g)
	}
	return out
}
