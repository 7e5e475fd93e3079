package memory

import (
	"time"

	"github.com/hoopsight/prospect-calendar/internal/domain/prospect"
	"github.com/hoopsight/prospect-calendar/internal/domain/team"
)

const (
	SourceTop100    = "top100"
	SourceIntlWatch = "intl-watch"
)

func SeedProspects() []prospect.Prospect {
	return []prospect.Prospect{
		{ID: "pr-001", Name: "Nikola Radanov", Rank: 1, TeamName: "KK Partizan", League: "ABA League", Country: "Serbia", Source: SourceTop100},
		{ID: "pr-002", Name: "Luka Petric", Rank: 2, TeamName: "Crvena Zvezda", League: "ABA League", Country: "Serbia", Source: SourceTop100},
		{ID: "pr-003", Name: "Mateo Sanz", Rank: 3, TeamName: "Real Madrid Baloncesto", League: "Liga ACB", Country: "Spain", Source: SourceTop100},
		{ID: "pr-004", Name: "Jalen Brooks", Rank: 4, TeamName: "Duke Blue Devils", League: "NCAA", Country: "USA", Source: SourceTop100},
		{ID: "pr-005", Name: "Marcus Hale", Rank: 5, TeamName: "Kentucky Wildcats", League: "NCAA", Country: "USA", Source: SourceTop100},
		{ID: "pr-101", Name: "Emil Kovac", Rank: 1, TeamName: "Cedevita Olimpija", League: "ABA League", Country: "Slovenia", Source: SourceIntlWatch},
		{ID: "pr-102", Name: "Tiago Ferreira", Rank: 2, TeamName: "Benfica", League: "LPB", Country: "Portugal", Source: SourceIntlWatch},
	}
}

func SeedDirectory() []team.DirectoryEntry {
	synced := time.Date(2026, 1, 2, 6, 0, 0, 0, time.UTC)
	return []team.DirectoryEntry{
		{ProviderID: "hoopdata", ProviderTeamID: "hd-1", CanonicalName: "Duke Blue Devils", LeagueID: "ncaa", SeasonFormat: team.SeasonFormatSingleYear, Country: "USA", LastSynced: synced},
		{ProviderID: "hoopdata", ProviderTeamID: "hd-2", CanonicalName: "Kentucky Wildcats", LeagueID: "ncaa", SeasonFormat: team.SeasonFormatSingleYear, Country: "USA", LastSynced: synced},
		{ProviderID: "intlbasket", ProviderTeamID: "ib-9", CanonicalName: "KK Partizan", LeagueID: "aba", SeasonFormat: team.SeasonFormatYearRange, Country: "Serbia", LastSynced: synced},
		{ProviderID: "intlbasket", ProviderTeamID: "ib-10", CanonicalName: "Crvena Zvezda", LeagueID: "aba", SeasonFormat: team.SeasonFormatYearRange, Country: "Serbia", LastSynced: synced},
		{ProviderID: "intlbasket", ProviderTeamID: "ib-4", CanonicalName: "Real Madrid Baloncesto", LeagueID: "acb", SeasonFormat: team.SeasonFormatYearRange, Country: "Spain", LastSynced: synced},
		{ProviderID: "intlbasket", ProviderTeamID: "ib-12", CanonicalName: "Cedevita Olimpija", LeagueID: "aba", SeasonFormat: team.SeasonFormatYearRange, Country: "Slovenia", LastSynced: synced},
		{ProviderID: "intlbasket", ProviderTeamID: "ib-7", CanonicalName: "Benfica", LeagueID: "lpb", SeasonFormat: team.SeasonFormatYearRange, Country: "Portugal", LastSynced: synced},
	}
}

func SeedOverrides() []team.Override {
	return []team.Override{
		// "Partizan Mozzart Bet" is the sponsored name some ranking feeds use.
		{RawName: "Partizan Mozzart Bet", ProviderID: "intlbasket", ProviderTeamID: "ib-9", LeagueID: "aba"},
	}
}
