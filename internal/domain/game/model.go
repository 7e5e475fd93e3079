package game

import (
	"fmt"
	"time"

	"github.com/hoopsight/prospect-calendar/internal/platform/normalize"
)

// Game statuses as exposed to clients. Providers use their own vocabularies;
// adapters map everything into this set.
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinal     = "final"
	StatusPostponed = "postponed"
	StatusCanceled  = "canceled"
)

// DateKeyLayout is the layout of a calendar-day key in the venue's local
// timezone. Tipoff itself is stored in America/New_York.
const DateKeyLayout = "2006-01-02"

// ambiguityMinKeyLen is the shortest normalized team key we trust to be
// unique across leagues. Shorter keys get the league label folded into the
// identity so "Roma" the Italian club never merges with "Roma" the Spanish
// youth side.
const ambiguityMinKeyLen = 4

// Game is a single scheduled or played game after cross-provider merging.
type Game struct {
	GameKey     string
	DateKey     string
	Tipoff      time.Time
	HomeTeam    string
	AwayTeam    string
	HomeScore   *int
	AwayScore   *int
	Status      string
	LeagueLabel string
	Venue       string
	Clock       string
	HomeLogoURL string
	AwayLogoURL string

	// ProviderGameID is the reporting provider's own id for this game,
	// from the highest-priority provider that carried one. Used for
	// per-event detail lookups when the game is missing from the live feed.
	ProviderGameID string

	// SourceProviderIDs lists every provider that reported this game, in
	// the order they were merged.
	SourceProviderIDs []string
}

// Key builds the cross-provider identity of a game. Equal keys from
// different providers describe the same physical game and get merged.
func Key(dateKey, homeTeam, awayTeam, leagueLabel string) string {
	home := normalize.Key(homeTeam)
	away := normalize.Key(awayTeam)
	key := fmt.Sprintf("%s|%s|%s", dateKey, home, away)
	if len(home) < ambiguityMinKeyLen || len(away) < ambiguityMinKeyLen {
		key += "|" + normalize.Key(leagueLabel)
	}
	return key
}

// FormatDateKey renders the calendar-day key for a tipoff already converted
// to the venue's local timezone.
func FormatDateKey(local time.Time) string {
	return local.Format(DateKeyLayout)
}

// Reported returns true when both scores are present.
func (g Game) Reported() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Finished returns true for terminal statuses.
func (g Game) Finished() bool {
	return g.Status == StatusFinal || g.Status == StatusCanceled
}

// ByDate groups games under their venue-local calendar day, preserving the
// given slice order within each day.
func ByDate(games []Game) map[string][]Game {
	out := make(map[string][]Game, len(games))
	for _, g := range games {
		out[g.DateKey] = append(out[g.DateKey], g)
	}
	return out
}
