package usecase

import (
	"context"
	"time"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
)

// ScheduleProvider is one upstream basketball data source. Adapters live
// under external/ and normalize provider payloads into these shapes.
type ScheduleProvider interface {
	// ID is the stable provider identifier used in game keys, cache keys
	// and the override table.
	ID() string
	// SeasonFormat is the season label convention this provider uses for
	// all of its leagues.
	SeasonFormat() string
	// ListTeams returns the provider's full team directory for the given
	// season label.
	ListTeams(ctx context.Context, seasonLabel string) ([]team.DirectoryEntry, error)
	// SearchTeams queries the provider's team search endpoint. Providers
	// without a search API return ErrDependencyUnavailable.
	SearchTeams(ctx context.Context, query string) ([]team.DirectoryEntry, error)
	// FetchTeamSchedule returns every game the provider knows for one team
	// in one season.
	FetchTeamSchedule(ctx context.Context, providerTeamID, seasonLabel string) ([]ProviderGame, error)
}

// ProviderGame is a single game as reported by one provider, before
// cross-provider merging. Tipoff carries the venue-local timezone so the
// calendar-day key and the Eastern tipoff can both be derived from it.
type ProviderGame struct {
	ProviderGameID string
	HomeTeam       string
	AwayTeam       string
	Tipoff         time.Time
	LeagueLabel    string
	Status         string
	HomeScore      *int
	AwayScore      *int
	Venue          string
	HomeLogoURL    string
	AwayLogoURL    string
}

// LiveBoardProvider is the scoreboard feed used by the enricher. Liveboard
// data is volatile and is never written to the schedule cache.
type LiveBoardProvider interface {
	// FetchScoreboard returns all games on the provider's scoreboard for
	// one calendar day.
	FetchScoreboard(ctx context.Context, dateKey string) ([]LiveScore, error)
	// FetchGameDetail resolves clock and period detail for a single game.
	FetchGameDetail(ctx context.Context, providerGameID string) (*LiveScore, error)
}

// LiveScore is one scoreboard row.
type LiveScore struct {
	ProviderGameID string
	HomeTeam       string
	AwayTeam       string
	HomeScore      *int
	AwayScore      *int
	Status         string
	Clock          string
}
