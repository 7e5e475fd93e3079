package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hoopsight/prospect-calendar/internal/domain/prospect"
	"github.com/hoopsight/prospect-calendar/internal/infrastructure/repository/memory"
	"github.com/hoopsight/prospect-calendar/internal/platform/normalize"
)

// BootstrapSeed loads the dev dataset into an empty database. Populated
// databases are left untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM prospects`); err != nil {
		return fmt.Errorf("count prospects for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := seedProspects(ctx, tx, memory.SeedProspects()); err != nil {
		return err
	}

	for _, entry := range memory.SeedDirectory() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO provider_team_directory (provider_id, provider_team_id, canonical_name, league_id, season_format, country, last_synced)
VALUES (:provider_id, :provider_team_id, :canonical_name, :league_id, :season_format, :country, :last_synced)
ON CONFLICT (provider_id, provider_team_id) WHERE deleted_at IS NULL DO NOTHING`, map[string]any{
			"provider_id":      entry.ProviderID,
			"provider_team_id": entry.ProviderTeamID,
			"canonical_name":   entry.CanonicalName,
			"league_id":        entry.LeagueID,
			"season_format":    entry.SeasonFormat,
			"country":          entry.Country,
			"last_synced":      entry.LastSynced,
		})
		if err != nil {
			return fmt.Errorf("bind seed directory %s query: %w", entry.ProviderTeamID, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
			return fmt.Errorf("seed directory entry %s: %w", entry.ProviderTeamID, err)
		}
	}

	for _, override := range memory.SeedOverrides() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO team_overrides (normalized_name, raw_name, provider_id, provider_team_id, league_id)
VALUES (:normalized_name, :raw_name, :provider_id, :provider_team_id, :league_id)
ON CONFLICT (normalized_name) DO NOTHING`, map[string]any{
			"normalized_name":  normalize.Key(override.RawName),
			"raw_name":         override.RawName,
			"provider_id":      override.ProviderID,
			"provider_team_id": override.ProviderTeamID,
			"league_id":        optionalString(override.LeagueID),
		})
		if err != nil {
			return fmt.Errorf("bind seed override %q query: %w", override.RawName, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
			return fmt.Errorf("seed override %q: %w", override.RawName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func seedProspects(ctx context.Context, tx *sqlx.Tx, entries []prospect.Prospect) error {
	for _, item := range entries {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO prospects (public_id, source, user_id, rank, name, team_name, league, country)
VALUES (:public_id, :source, :user_id, :rank, :name, :team_name, :league, :country)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id": item.ID,
			"source":    item.Source,
			"user_id":   "",
			"rank":      item.Rank,
			"name":      item.Name,
			"team_name": item.TeamName,
			"league":    item.League,
			"country":   item.Country,
		})
		if err != nil {
			return fmt.Errorf("bind seed prospect %s query: %w", item.ID, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
			return fmt.Errorf("seed prospect %s: %w", item.ID, err)
		}
	}
	return nil
}
