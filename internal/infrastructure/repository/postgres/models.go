package postgres

import (
	"database/sql"
	"time"
)

type directoryTableModel struct {
	ID             int64      `db:"id"`
	ProviderID     string     `db:"provider_id"`
	ProviderTeamID string     `db:"provider_team_id"`
	CanonicalName  string     `db:"canonical_name"`
	LeagueID       string     `db:"league_id"`
	SeasonFormat   string     `db:"season_format"`
	Country        string     `db:"country"`
	LastSynced     time.Time  `db:"last_synced"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

type directoryInsertModel struct {
	ProviderID     string    `db:"provider_id"`
	ProviderTeamID string    `db:"provider_team_id"`
	CanonicalName  string    `db:"canonical_name"`
	LeagueID       string    `db:"league_id"`
	SeasonFormat   string    `db:"season_format"`
	Country        string    `db:"country"`
	LastSynced     time.Time `db:"last_synced"`
}

type overrideTableModel struct {
	ID             int64          `db:"id"`
	NormalizedName string         `db:"normalized_name"`
	RawName        string         `db:"raw_name"`
	ProviderID     string         `db:"provider_id"`
	ProviderTeamID string         `db:"provider_team_id"`
	LeagueID       sql.NullString `db:"league_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type overrideInsertModel struct {
	NormalizedName string         `db:"normalized_name"`
	RawName        string         `db:"raw_name"`
	ProviderID     string         `db:"provider_id"`
	ProviderTeamID string         `db:"provider_team_id"`
	LeagueID       sql.NullString `db:"league_id"`
}

type prospectTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	Source    string    `db:"source"`
	UserID    string    `db:"user_id"`
	Rank      int       `db:"rank"`
	Name      string    `db:"name"`
	TeamName  string    `db:"team_name"`
	League    string    `db:"league"`
	Country   string    `db:"country"`
	CreatedAt time.Time `db:"created_at"`
}
