package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	"github.com/hoopsight/prospect-calendar/internal/platform/normalize"
	qb "github.com/hoopsight/prospect-calendar/internal/platform/querybuilder"
)

// OverrideRepository stores manual pins keyed by the normalized raw name,
// so feeds that differ only in casing or punctuation hit the same row.
type OverrideRepository struct {
	db *sqlx.DB
}

func NewOverrideRepository(db *sqlx.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

func (r *OverrideRepository) GetByRawName(ctx context.Context, rawName string) (*team.Override, error) {
	key := normalize.Key(rawName)
	if key == "" {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("team_overrides").
		Where(qb.Eq("normalized_name", key)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select override query: %w", err)
	}

	var row overrideTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select override name=%q: %w", rawName, err)
	}

	override := overrideRowToDomain(row)
	return &override, nil
}

func (r *OverrideRepository) List(ctx context.Context) ([]team.Override, error) {
	query, args, err := qb.Select("*").From("team_overrides").
		OrderBy("raw_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select overrides query: %w", err)
	}

	var rows []overrideTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select overrides: %w", err)
	}

	out := make([]team.Override, 0, len(rows))
	for _, row := range rows {
		out = append(out, overrideRowToDomain(row))
	}

	return out, nil
}

func (r *OverrideRepository) Upsert(ctx context.Context, override team.Override) error {
	rawName := strings.TrimSpace(override.RawName)
	key := normalize.Key(rawName)
	if key == "" {
		return fmt.Errorf("override raw name is required")
	}

	insertModel := overrideInsertModel{
		NormalizedName: key,
		RawName:        rawName,
		ProviderID:     strings.TrimSpace(override.ProviderID),
		ProviderTeamID: strings.TrimSpace(override.ProviderTeamID),
		LeagueID:       optionalString(strings.TrimSpace(override.LeagueID)),
	}
	query, args, err := qb.InsertModel("team_overrides", insertModel, `ON CONFLICT (normalized_name)
DO UPDATE SET
    raw_name = EXCLUDED.raw_name,
    provider_id = EXCLUDED.provider_id,
    provider_team_id = EXCLUDED.provider_team_id,
    league_id = EXCLUDED.league_id,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert override query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert override name=%q: %w", rawName, err)
	}

	return nil
}

func overrideRowToDomain(row overrideTableModel) team.Override {
	return team.Override{
		RawName:        row.RawName,
		ProviderID:     row.ProviderID,
		ProviderTeamID: row.ProviderTeamID,
		LeagueID:       nullStringToString(row.LeagueID),
	}
}
