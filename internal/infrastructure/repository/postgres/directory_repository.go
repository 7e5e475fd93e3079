package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	qb "github.com/hoopsight/prospect-calendar/internal/platform/querybuilder"
)

type DirectoryRepository struct {
	db *sqlx.DB
}

func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) ListByProvider(ctx context.Context, providerID string) ([]team.DirectoryEntry, error) {
	query, args, err := qb.Select("*").From("provider_team_directory").
		Where(
			qb.Eq("provider_id", providerID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("canonical_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select directory by provider query: %w", err)
	}

	var rows []directoryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select directory by provider: %w", err)
	}

	return directoryRowsToEntries(rows), nil
}

func (r *DirectoryRepository) ListAll(ctx context.Context) ([]team.DirectoryEntry, error) {
	query, args, err := qb.Select("*").From("provider_team_directory").
		Where(qb.IsNull("deleted_at")).
		OrderBy("provider_id", "canonical_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select directory query: %w", err)
	}

	var rows []directoryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select directory: %w", err)
	}

	return directoryRowsToEntries(rows), nil
}

// ReplaceProvider swaps one provider's snapshot in a single transaction.
// Old rows are soft deleted so a broken sync can be audited afterwards.
func (r *DirectoryRepository) ReplaceProvider(ctx context.Context, providerID string, entries []team.DirectoryEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace directory snapshot: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.Update("provider_team_directory").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("provider_id", providerID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear directory snapshot query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear directory snapshot: %w", err)
	}

	for _, entry := range entries {
		lastSynced := entry.LastSynced
		if lastSynced.IsZero() {
			lastSynced = time.Now().UTC()
		}
		insertModel := directoryInsertModel{
			ProviderID:     providerID,
			ProviderTeamID: entry.ProviderTeamID,
			CanonicalName:  entry.CanonicalName,
			LeagueID:       entry.LeagueID,
			SeasonFormat:   entry.SeasonFormat,
			Country:        entry.Country,
			LastSynced:     lastSynced,
		}
		query, args, err := qb.InsertModel("provider_team_directory", insertModel, `ON CONFLICT (provider_id, provider_team_id) WHERE deleted_at IS NULL
DO UPDATE SET
    canonical_name = EXCLUDED.canonical_name,
    league_id = EXCLUDED.league_id,
    season_format = EXCLUDED.season_format,
    country = EXCLUDED.country,
    last_synced = EXCLUDED.last_synced,
    updated_at = NOW(),
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert directory entry query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert directory entry provider=%s team=%s: %w", providerID, entry.ProviderTeamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace directory snapshot tx: %w", err)
	}
	return nil
}

func directoryRowsToEntries(rows []directoryTableModel) []team.DirectoryEntry {
	out := make([]team.DirectoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.DirectoryEntry{
			ProviderID:     row.ProviderID,
			ProviderTeamID: row.ProviderTeamID,
			CanonicalName:  row.CanonicalName,
			LeagueID:       row.LeagueID,
			SeasonFormat:   row.SeasonFormat,
			Country:        row.Country,
			LastSynced:     row.LastSynced,
		})
	}
	return out
}
