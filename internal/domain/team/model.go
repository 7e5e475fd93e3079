package team

import (
	"fmt"
	"strings"
	"time"
)

// Season label conventions. The format is a property of the league, not the
// team: a provider labels every season in a league the same way.
const (
	SeasonFormatSingleYear = "single_year"
	SeasonFormatYearRange  = "year_range"
)

// ResolvedTeam maps a prospect's free-text team name to one provider's
// canonical team identity. Immutable once created; many prospects may share
// the same resolved team.
type ResolvedTeam struct {
	ProviderID     string
	ProviderTeamID string
	CanonicalName  string
	LeagueID       string
	SeasonFormat   string
	Country        string
}

func (t ResolvedTeam) Validate() error {
	if t.ProviderID == "" {
		return fmt.Errorf("resolved team provider id is required")
	}
	if t.ProviderTeamID == "" {
		return fmt.Errorf("resolved team provider team id is required")
	}
	if t.CanonicalName == "" {
		return fmt.Errorf("resolved team canonical name is required")
	}
	return nil
}

// DirectoryEntry is one row of a provider's team directory snapshot.
type DirectoryEntry struct {
	ProviderID     string
	ProviderTeamID string
	CanonicalName  string
	LeagueID       string
	SeasonFormat   string
	Country        string
	LastSynced     time.Time
}

func (e DirectoryEntry) Resolved() ResolvedTeam {
	return ResolvedTeam{
		ProviderID:     e.ProviderID,
		ProviderTeamID: e.ProviderTeamID,
		CanonicalName:  e.CanonicalName,
		LeagueID:       e.LeagueID,
		SeasonFormat:   e.SeasonFormat,
		Country:        e.Country,
	}
}

// Override pins a raw team name to a fixed provider team id. The table
// exists because automated matching over-generalizes short or heavily
// sponsored club names ("Partizan Mozzart Bet" and friends).
type Override struct {
	RawName        string
	ProviderID     string
	ProviderTeamID string
	LeagueID       string
}

// SeasonLabel renders the provider-facing season label for a season that
// starts in startYear.
func SeasonLabel(format string, startYear int) string {
	if format == SeasonFormatYearRange {
		return fmt.Sprintf("%d-%d", startYear, startYear+1)
	}
	return fmt.Sprintf("%d", startYear)
}

// SeasonStartYear maps a calendar instant to the start year of the season
// it falls in. Basketball seasons roll over in late summer.
func SeasonStartYear(now time.Time) int {
	if now.Month() >= time.August {
		return now.Year()
	}
	return now.Year() - 1
}

// NormalizeSeasonFormat maps free-form provider metadata to one of the two
// supported conventions, defaulting to single-year.
func NormalizeSeasonFormat(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case SeasonFormatYearRange, "range", "cross_year", "split":
		return SeasonFormatYearRange
	default:
		return SeasonFormatSingleYear
	}
}
