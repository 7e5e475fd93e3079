package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
	"github.com/hoopsight/prospect-calendar/internal/platform/normalize"
)

// minPartialMatchKeyLen guards substring matching: keys shorter than this
// match too many directory rows to be trusted.
const minPartialMatchKeyLen = 4

// ResolverService maps a prospect's free-text team name to provider teams,
// one per provider namespace. Each provider runs its own ladder: manual
// override, exact normalized match, partial normalized match, provider
// search. The first layer producing a single candidate wins for that
// provider; an ambiguous layer aborts the whole resolution rather than
// guessing. A name may resolve in zero, one, or several providers.
type ResolverService struct {
	overrides team.OverrideRepository
	directory team.DirectoryRepository
	// providers in priority order. The returned slice keeps this order so
	// the merge engine can rank duplicate games.
	providers []ScheduleProvider
	logger    *logging.Logger
}

func NewResolverService(
	overrides team.OverrideRepository,
	directory team.DirectoryRepository,
	providers []ScheduleProvider,
	logger *logging.Logger,
) *ResolverService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ResolverService{
		overrides: overrides,
		directory: directory,
		providers: providers,
		logger:    logger,
	}
}

// Resolve maps rawName to one team per provider that covers it, in provider
// priority order. countryHint, when known, breaks ties between same-named
// clubs in different countries; it never widens a candidate set. An empty
// result for one provider is not an error; no result in any provider is.
func (s *ResolverService) Resolve(ctx context.Context, rawName, countryHint string) ([]team.ResolvedTeam, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.Resolve")
	defer span.End()

	rawName = strings.TrimSpace(rawName)
	if rawName == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}
	if s.overrides == nil || s.directory == nil {
		return nil, fmt.Errorf("%w: resolver repositories are not configured", ErrDependencyUnavailable)
	}

	override, err := s.overrides.GetByRawName(ctx, rawName)
	if err != nil {
		return nil, fmt.Errorf("lookup override for name=%q: %w", rawName, err)
	}

	entries, err := s.directory.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list team directory for name=%q: %w", rawName, err)
	}

	key := normalize.Key(rawName)
	if key == "" {
		return nil, fmt.Errorf("%w: team name %q normalizes to nothing", ErrInvalidInput, rawName)
	}

	byProvider := groupByProvider(entries)
	resolved := make([]team.ResolvedTeam, 0, len(s.providers))
	for _, providerID := range s.providerOrder(entries) {
		one, err := s.resolveInProvider(ctx, providerID, rawName, key, countryHint, override, byProvider[providerID])
		if err != nil {
			return nil, err
		}
		if one != nil {
			resolved = append(resolved, *one)
		}
	}
	if len(resolved) > 0 {
		return resolved, nil
	}

	s.logger.WarnContext(ctx, "team resolution miss", "team_name", rawName, "normalized_key", key)
	return nil, fmt.Errorf("%w: name=%q", ErrResolutionMiss, rawName)
}

// resolveInProvider runs one provider's resolution ladder.
func (s *ResolverService) resolveInProvider(
	ctx context.Context,
	providerID, rawName, key, countryHint string,
	override *team.Override,
	entries []team.DirectoryEntry,
) (*team.ResolvedTeam, error) {
	if override != nil && override.ProviderID == providerID {
		return s.resolveFromOverride(ctx, rawName, *override, entries), nil
	}

	if resolved, err := s.pickCandidate(ctx, rawName, countryHint, exactMatches(entries, key)); err != nil || resolved != nil {
		return resolved, err
	}

	if len(key) >= minPartialMatchKeyLen {
		if resolved, err := s.pickCandidate(ctx, rawName, countryHint, partialMatches(entries, key)); err != nil || resolved != nil {
			return resolved, err
		}
	}

	return s.resolveFromProviderSearch(ctx, providerID, rawName, key), nil
}

// resolveFromOverride turns an override pin into a resolved team. The
// directory row, when present, carries the authoritative canonical name and
// season format. A missing row still resolves: the pin is trusted even when
// the directory snapshot lags behind.
func (s *ResolverService) resolveFromOverride(ctx context.Context, rawName string, override team.Override, entries []team.DirectoryEntry) *team.ResolvedTeam {
	for _, entry := range entries {
		if entry.ProviderTeamID == override.ProviderTeamID {
			resolved := entry.Resolved()
			return &resolved
		}
	}

	s.logger.WarnContext(ctx,
		"override points at a team missing from the directory snapshot",
		"team_name", rawName,
		"provider_id", override.ProviderID,
		"provider_team_id", override.ProviderTeamID,
	)
	return &team.ResolvedTeam{
		ProviderID:     override.ProviderID,
		ProviderTeamID: override.ProviderTeamID,
		CanonicalName:  rawName,
		LeagueID:       override.LeagueID,
		SeasonFormat:   s.providerSeasonFormat(override.ProviderID),
	}
}

// pickCandidate reduces one provider's candidate set to one team or fails
// loudly. Returns (nil, nil) on an empty set so the caller can fall through
// to the next matching layer.
func (s *ResolverService) pickCandidate(
	ctx context.Context,
	rawName, countryHint string,
	candidates []team.DirectoryEntry,
) (*team.ResolvedTeam, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	distinct := distinctTeams(candidates)
	if len(distinct) > 1 && countryHint != "" {
		byCountry := filterByCountry(distinct, countryHint)
		if len(byCountry) > 0 {
			distinct = byCountry
		}
	}
	if len(distinct) > 1 {
		s.logger.WarnContext(ctx,
			"team name matches several distinct teams, refusing to guess",
			"team_name", rawName,
			"country_hint", countryHint,
			"provider_id", distinct[0].ProviderID,
			"candidate_count", len(distinct),
			"first_candidate", distinct[0].CanonicalName,
			"second_candidate", distinct[1].CanonicalName,
		)
		return nil, fmt.Errorf("%w: name=%q matched %d teams", ErrAmbiguousMatch, rawName, len(distinct))
	}

	resolved := distinct[0].Resolved()
	return &resolved, nil
}

func (s *ResolverService) resolveFromProviderSearch(ctx context.Context, providerID, rawName, key string) *team.ResolvedTeam {
	provider := s.providerByID(providerID)
	if provider == nil {
		return nil
	}

	results, err := provider.SearchTeams(ctx, rawName)
	if err != nil {
		s.logger.WarnContext(ctx,
			"provider team search failed",
			"provider_id", providerID,
			"team_name", rawName,
			"error", err.Error(),
		)
		return nil
	}
	for _, entry := range results {
		if normalize.Key(entry.CanonicalName) == key {
			resolved := entry.Resolved()
			return &resolved
		}
	}
	return nil
}

// providerOrder lists provider namespaces to resolve against: configured
// providers first in priority order, then any directory-only providers in
// snapshot order.
func (s *ResolverService) providerOrder(entries []team.DirectoryEntry) []string {
	seen := make(map[string]struct{}, len(s.providers)+1)
	order := make([]string, 0, len(s.providers)+1)
	for _, provider := range s.providers {
		if _, exists := seen[provider.ID()]; exists {
			continue
		}
		seen[provider.ID()] = struct{}{}
		order = append(order, provider.ID())
	}
	for _, entry := range entries {
		if _, exists := seen[entry.ProviderID]; exists {
			continue
		}
		seen[entry.ProviderID] = struct{}{}
		order = append(order, entry.ProviderID)
	}
	return order
}

func (s *ResolverService) providerByID(providerID string) ScheduleProvider {
	for _, provider := range s.providers {
		if provider.ID() == providerID {
			return provider
		}
	}
	return nil
}

func (s *ResolverService) providerSeasonFormat(providerID string) string {
	if provider := s.providerByID(providerID); provider != nil {
		return provider.SeasonFormat()
	}
	return team.SeasonFormatSingleYear
}

func groupByProvider(entries []team.DirectoryEntry) map[string][]team.DirectoryEntry {
	out := make(map[string][]team.DirectoryEntry, 4)
	for _, entry := range entries {
		out[entry.ProviderID] = append(out[entry.ProviderID], entry)
	}
	return out
}

func exactMatches(entries []team.DirectoryEntry, key string) []team.DirectoryEntry {
	out := make([]team.DirectoryEntry, 0, 2)
	for _, entry := range entries {
		if normalize.Key(entry.CanonicalName) == key {
			out = append(out, entry)
		}
	}
	return out
}

func partialMatches(entries []team.DirectoryEntry, key string) []team.DirectoryEntry {
	out := make([]team.DirectoryEntry, 0, 2)
	for _, entry := range entries {
		entryKey := normalize.Key(entry.CanonicalName)
		if len(entryKey) < minPartialMatchKeyLen {
			continue
		}
		if strings.Contains(entryKey, key) || strings.Contains(key, entryKey) {
			out = append(out, entry)
		}
	}
	return out
}

// distinctTeams collapses directory rows that describe the same club under
// slightly different spellings. Rows count as the same team when their
// normalized canonical names agree.
func distinctTeams(entries []team.DirectoryEntry) []team.DirectoryEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]team.DirectoryEntry, 0, len(entries))
	for _, entry := range entries {
		key := normalize.Key(entry.CanonicalName)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entry)
	}
	return out
}

func filterByCountry(entries []team.DirectoryEntry, countryHint string) []team.DirectoryEntry {
	hint := strings.ToLower(strings.TrimSpace(countryHint))
	out := make([]team.DirectoryEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.ToLower(strings.TrimSpace(entry.Country)) == hint {
			out = append(out, entry)
		}
	}
	return out
}
