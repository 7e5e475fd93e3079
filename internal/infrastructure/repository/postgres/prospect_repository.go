package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hoopsight/prospect-calendar/internal/domain/prospect"
	qb "github.com/hoopsight/prospect-calendar/internal/platform/querybuilder"
)

type ProspectRepository struct {
	db *sqlx.DB
}

func NewProspectRepository(db *sqlx.DB) *ProspectRepository {
	return &ProspectRepository{db: db}
}

func (r *ProspectRepository) ListBySource(ctx context.Context, source, userID string) ([]prospect.Prospect, error) {
	source = strings.ToLower(strings.TrimSpace(source))

	conditions := []qb.Condition{qb.Eq("source", source)}
	if source == prospect.SourceLiveBoard {
		// Live boards are per user; shared sources keep user_id empty.
		conditions = append(conditions, qb.Eq("user_id", strings.TrimSpace(userID)))
	}

	query, args, err := qb.Select("*").From("prospects").
		Where(conditions...).
		OrderBy("rank", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select prospects query: %w", err)
	}

	var rows []prospectTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select prospects source=%s: %w", source, err)
	}

	out := make([]prospect.Prospect, 0, len(rows))
	for _, row := range rows {
		out = append(out, prospect.Prospect{
			ID:       row.PublicID,
			Name:     row.Name,
			Rank:     row.Rank,
			TeamName: row.TeamName,
			League:   row.League,
			Country:  row.Country,
			Source:   row.Source,
		})
	}

	return out, nil
}

// ReplaceSource swaps a ranking snapshot wholesale. Snapshots are immutable
// rows, so the old ones are hard deleted rather than soft deleted.
func (r *ProspectRepository) ReplaceSource(ctx context.Context, source, userID string, entries []prospect.Prospect) error {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		return fmt.Errorf("prospect source is required")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace prospect snapshot: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	conditions := []qb.Condition{qb.Eq("source", source)}
	if source == prospect.SourceLiveBoard {
		conditions = append(conditions, qb.Eq("user_id", strings.TrimSpace(userID)))
	}
	clearQuery, clearArgs, err := qb.DeleteFrom("prospects").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear prospect snapshot query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear prospect snapshot: %w", err)
	}

	if len(entries) > 0 {
		builder := qb.InsertInto("prospects").
			Columns("public_id", "source", "user_id", "rank", "name", "team_name", "league", "country")
		for _, item := range entries {
			rowUserID := ""
			if source == prospect.SourceLiveBoard {
				rowUserID = strings.TrimSpace(userID)
			}
			builder.Values(item.ID, source, rowUserID, item.Rank, item.Name, item.TeamName, item.League, item.Country)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert prospect snapshot query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert prospect snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace prospect snapshot tx: %w", err)
	}
	return nil
}
