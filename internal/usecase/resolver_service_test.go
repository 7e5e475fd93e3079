package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
)

type fakeOverrideRepo struct {
	overrides map[string]team.Override
}

func (r *fakeOverrideRepo) GetByRawName(_ context.Context, rawName string) (*team.Override, error) {
	if r.overrides == nil {
		return nil, nil
	}
	if item, ok := r.overrides[rawName]; ok {
		return &item, nil
	}
	return nil, nil
}

func (r *fakeOverrideRepo) List(_ context.Context) ([]team.Override, error) {
	out := make([]team.Override, 0, len(r.overrides))
	for _, item := range r.overrides {
		out = append(out, item)
	}
	return out, nil
}

func (r *fakeOverrideRepo) Upsert(_ context.Context, override team.Override) error {
	if r.overrides == nil {
		r.overrides = make(map[string]team.Override)
	}
	r.overrides[override.RawName] = override
	return nil
}

type fakeDirectoryRepo struct {
	entries []team.DirectoryEntry
}

func (r *fakeDirectoryRepo) ListByProvider(_ context.Context, providerID string) ([]team.DirectoryEntry, error) {
	out := make([]team.DirectoryEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		if entry.ProviderID == providerID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *fakeDirectoryRepo) ListAll(_ context.Context) ([]team.DirectoryEntry, error) {
	return r.entries, nil
}

func (r *fakeDirectoryRepo) ReplaceProvider(_ context.Context, providerID string, entries []team.DirectoryEntry) error {
	kept := make([]team.DirectoryEntry, 0, len(r.entries)+len(entries))
	for _, entry := range r.entries {
		if entry.ProviderID != providerID {
			kept = append(kept, entry)
		}
	}
	r.entries = append(kept, entries...)
	return nil
}

type fakeSearchProvider struct {
	id           string
	seasonFormat string
	searchByName map[string][]team.DirectoryEntry
	searchErr    error
	searchCalls  int
}

func (p *fakeSearchProvider) ID() string           { return p.id }
func (p *fakeSearchProvider) SeasonFormat() string { return p.seasonFormat }

func (p *fakeSearchProvider) ListTeams(_ context.Context, _ string) ([]team.DirectoryEntry, error) {
	return nil, nil
}

func (p *fakeSearchProvider) SearchTeams(_ context.Context, query string) ([]team.DirectoryEntry, error) {
	p.searchCalls++
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.searchByName[query], nil
}

func (p *fakeSearchProvider) FetchTeamSchedule(_ context.Context, _, _ string) ([]ProviderGame, error) {
	return nil, nil
}

func resolverDirectory() *fakeDirectoryRepo {
	return &fakeDirectoryRepo{entries: []team.DirectoryEntry{
		{ProviderID: "hoopdata", ProviderTeamID: "hd-1", CanonicalName: "Partizan", LeagueID: "aba", SeasonFormat: team.SeasonFormatYearRange, Country: "Serbia"},
		{ProviderID: "intlbasket", ProviderTeamID: "ib-9", CanonicalName: "KK Partizan", LeagueID: "aba", SeasonFormat: team.SeasonFormatYearRange, Country: "Serbia"},
		{ProviderID: "intlbasket", ProviderTeamID: "ib-4", CanonicalName: "Real Madrid Baloncesto", LeagueID: "acb", SeasonFormat: team.SeasonFormatYearRange, Country: "Spain"},
		{ProviderID: "intlbasket", ProviderTeamID: "ib-7", CanonicalName: "Benfica Lisboa", LeagueID: "lpb", SeasonFormat: team.SeasonFormatYearRange, Country: "Portugal"},
		{ProviderID: "intlbasket", ProviderTeamID: "ib-8", CanonicalName: "Benfica Macau", LeagueID: "mo", SeasonFormat: team.SeasonFormatYearRange, Country: "Macau"},
	}}
}

func newTestResolver(overrides *fakeOverrideRepo, directory *fakeDirectoryRepo, providers ...ScheduleProvider) *ResolverService {
	if overrides == nil {
		overrides = &fakeOverrideRepo{}
	}
	if directory == nil {
		directory = resolverDirectory()
	}
	return NewResolverService(overrides, directory, providers, nil)
}

func TestResolverService_OverrideWins(t *testing.T) {
	// The raw name matches nothing in the directory, and the pin carries a
	// team id the name ladder would never reach.
	overrides := &fakeOverrideRepo{overrides: map[string]team.Override{
		"Mozzart Bet Belgrade": {RawName: "Mozzart Bet Belgrade", ProviderID: "intlbasket", ProviderTeamID: "ib-9", LeagueID: "aba"},
	}}
	service := newTestResolver(overrides, nil)

	resolved, err := service.Resolve(t.Context(), "Mozzart Bet Belgrade", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved team, got %d", len(resolved))
	}
	if resolved[0].ProviderTeamID != "ib-9" {
		t.Fatalf("expected override team ib-9, got %s", resolved[0].ProviderTeamID)
	}
	if resolved[0].CanonicalName != "KK Partizan" {
		t.Fatalf("expected directory canonical name, got %s", resolved[0].CanonicalName)
	}
}

func TestResolverService_OverrideBeatsNameLadder(t *testing.T) {
	// "Benfica" alone would abort as ambiguous; the pin settles it.
	overrides := &fakeOverrideRepo{overrides: map[string]team.Override{
		"Benfica": {RawName: "Benfica", ProviderID: "intlbasket", ProviderTeamID: "ib-8", LeagueID: "mo"},
	}}
	service := newTestResolver(overrides, nil)

	resolved, err := service.Resolve(t.Context(), "Benfica", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ProviderTeamID != "ib-8" {
		t.Fatalf("expected the pinned ib-8, got %+v", resolved)
	}
}

func TestResolverService_ResolvesOncePerProvider(t *testing.T) {
	// Both providers list Partizan under normalized key "partizan"; the
	// result carries one team per provider, priority order preserved.
	hoopdata := &fakeSearchProvider{id: "hoopdata", seasonFormat: team.SeasonFormatSingleYear}
	intlbasket := &fakeSearchProvider{id: "intlbasket", seasonFormat: team.SeasonFormatYearRange}
	service := newTestResolver(nil, nil, hoopdata, intlbasket)

	resolved, err := service.Resolve(t.Context(), "KK Partizan", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("expected a team per provider, got %d", len(resolved))
	}
	if resolved[0].ProviderID != "hoopdata" || resolved[0].ProviderTeamID != "hd-1" {
		t.Fatalf("unexpected first team: %+v", resolved[0])
	}
	if resolved[1].ProviderID != "intlbasket" || resolved[1].ProviderTeamID != "ib-9" {
		t.Fatalf("unexpected second team: %+v", resolved[1])
	}
}

func TestResolverService_PartialMatch(t *testing.T) {
	service := newTestResolver(nil, nil)

	resolved, err := service.Resolve(t.Context(), "Real Madrid", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved team, got %d", len(resolved))
	}
	if resolved[0].ProviderTeamID != "ib-4" {
		t.Fatalf("expected ib-4 via partial match, got %s", resolved[0].ProviderTeamID)
	}
}

func TestResolverService_AmbiguousWithoutHint(t *testing.T) {
	service := newTestResolver(nil, nil)

	_, err := service.Resolve(t.Context(), "Benfica", "")
	if !errors.Is(err, ErrAmbiguousMatch) {
		t.Fatalf("expected ErrAmbiguousMatch, got %v", err)
	}
}

func TestResolverService_CountryHintBreaksTie(t *testing.T) {
	service := newTestResolver(nil, nil)

	resolved, err := service.Resolve(t.Context(), "Benfica", "Portugal")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ProviderTeamID != "ib-7" {
		t.Fatalf("expected Portuguese Benfica, got %+v", resolved)
	}
}

func TestResolverService_SearchFallback(t *testing.T) {
	broken := &fakeSearchProvider{id: "hoopdata", seasonFormat: team.SeasonFormatSingleYear, searchErr: errors.New("search endpoint down")}
	searcher := &fakeSearchProvider{
		id:           "intlbasket",
		seasonFormat: team.SeasonFormatYearRange,
		searchByName: map[string][]team.DirectoryEntry{
			"Cedevita Olimpija": {{ProviderID: "intlbasket", ProviderTeamID: "ib-12", CanonicalName: "Cedevita Olimpija", LeagueID: "aba", Country: "Slovenia"}},
		},
	}
	service := newTestResolver(nil, nil, broken, searcher)

	resolved, err := service.Resolve(t.Context(), "Cedevita Olimpija", "")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ProviderTeamID != "ib-12" {
		t.Fatalf("expected search fallback hit, got %+v", resolved)
	}
	if broken.searchCalls != 1 {
		t.Fatalf("broken provider should still have been tried once, got %d calls", broken.searchCalls)
	}
}

func TestResolverService_Miss(t *testing.T) {
	service := newTestResolver(nil, nil, &fakeSearchProvider{id: "intlbasket", seasonFormat: team.SeasonFormatYearRange})

	_, err := service.Resolve(t.Context(), "Nonexistent Hoopers", "")
	if !errors.Is(err, ErrResolutionMiss) {
		t.Fatalf("expected ErrResolutionMiss, got %v", err)
	}
}

func TestResolverService_EmptyName(t *testing.T) {
	service := newTestResolver(nil, nil)

	_, err := service.Resolve(t.Context(), "   ", "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
