package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
)

type fakeDirectoryProvider struct {
	id       string
	format   string
	teams    []team.DirectoryEntry
	listErr  error
	listDone int
}

func (p *fakeDirectoryProvider) ID() string           { return p.id }
func (p *fakeDirectoryProvider) SeasonFormat() string { return p.format }

func (p *fakeDirectoryProvider) ListTeams(_ context.Context, _ string) ([]team.DirectoryEntry, error) {
	p.listDone++
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.teams, nil
}

func (p *fakeDirectoryProvider) SearchTeams(_ context.Context, _ string) ([]team.DirectoryEntry, error) {
	return nil, nil
}

func (p *fakeDirectoryProvider) FetchTeamSchedule(_ context.Context, _, _ string) ([]ProviderGame, error) {
	return nil, nil
}

func TestDirectorySyncService_SyncAllProviders(t *testing.T) {
	healthy := &fakeDirectoryProvider{
		id:     "hoopdata",
		format: team.SeasonFormatSingleYear,
		teams: []team.DirectoryEntry{
			{ProviderTeamID: "hd-1", CanonicalName: "Duke", LeagueID: "ncaa", Country: "USA"},
			{ProviderTeamID: "hd-2", CanonicalName: "Kansas", LeagueID: "ncaa", Country: "USA"},
		},
	}
	broken := &fakeDirectoryProvider{
		id:      "intlbasket",
		format:  team.SeasonFormatYearRange,
		listErr: errors.New("directory endpoint down"),
	}
	directory := &fakeDirectoryRepo{}
	service := NewDirectorySyncService([]ScheduleProvider{healthy, broken}, directory, nil)

	result, err := service.Sync(t.Context(), DirectorySyncInput{})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if result.ProviderCount != 2 || result.SuccessCount != 1 || result.FailedCount != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Providers[0].ProviderID != "hoopdata" || result.Providers[0].TeamCount != 2 {
		t.Fatalf("unexpected hoopdata row: %+v", result.Providers[0])
	}
	if result.Providers[1].Status != directorySyncStatusFailed {
		t.Fatalf("expected intlbasket failure recorded, got %+v", result.Providers[1])
	}

	entries, err := directory.ListByProvider(t.Context(), "hoopdata")
	if err != nil {
		t.Fatalf("list directory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 stored entries, got %d", len(entries))
	}
	if entries[0].ProviderID != "hoopdata" {
		t.Fatal("provider id must be stamped onto stored entries")
	}
	if entries[0].LastSynced.IsZero() {
		t.Fatal("last synced timestamp must be set")
	}
}

func TestDirectorySyncService_EmptyDirectoryKeepsSnapshot(t *testing.T) {
	provider := &fakeDirectoryProvider{id: "hoopdata", format: team.SeasonFormatSingleYear}
	directory := &fakeDirectoryRepo{entries: []team.DirectoryEntry{
		{ProviderID: "hoopdata", ProviderTeamID: "hd-1", CanonicalName: "Duke"},
	}}
	service := NewDirectorySyncService([]ScheduleProvider{provider}, directory, nil)

	result, err := service.Sync(t.Context(), DirectorySyncInput{})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if result.SkippedCount != 1 {
		t.Fatalf("expected skip for empty directory, got %+v", result)
	}

	entries, _ := directory.ListByProvider(t.Context(), "hoopdata")
	if len(entries) != 1 {
		t.Fatal("previous snapshot must survive an empty provider response")
	}
}

func TestDirectorySyncService_DryRun(t *testing.T) {
	provider := &fakeDirectoryProvider{
		id:     "hoopdata",
		format: team.SeasonFormatSingleYear,
		teams:  []team.DirectoryEntry{{ProviderTeamID: "hd-1", CanonicalName: "Duke"}},
	}
	directory := &fakeDirectoryRepo{}
	service := NewDirectorySyncService([]ScheduleProvider{provider}, directory, nil)

	result, err := service.Sync(t.Context(), DirectorySyncInput{DryRun: true})
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if result.SuccessCount != 1 {
		t.Fatalf("expected success, got %+v", result)
	}

	entries, _ := directory.ListByProvider(t.Context(), "hoopdata")
	if len(entries) != 0 {
		t.Fatal("dry run must not write the directory")
	}
}

func TestDirectorySyncService_UnknownProvider(t *testing.T) {
	service := NewDirectorySyncService([]ScheduleProvider{
		&fakeDirectoryProvider{id: "hoopdata", format: team.SeasonFormatSingleYear},
	}, &fakeDirectoryRepo{}, nil)

	_, err := service.Sync(t.Context(), DirectorySyncInput{ProviderIDs: []string{"nope"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
