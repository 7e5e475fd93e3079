package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hoopsight/prospect-calendar/internal/domain/prospect"
)

type ProspectRepository struct {
	mu              sync.RWMutex
	entriesBySource map[string][]prospect.Prospect
}

func NewProspectRepository(entries []prospect.Prospect) *ProspectRepository {
	entriesBySource := make(map[string][]prospect.Prospect)
	for _, item := range entries {
		source := strings.ToLower(strings.TrimSpace(item.Source))
		entriesBySource[source] = append(entriesBySource[source], item)
	}

	return &ProspectRepository{entriesBySource: entriesBySource}
}

// ListBySource ignores userID; the seeded dev dataset is shared. The
// postgres repository applies the per-user filter for liveboard rows.
func (r *ProspectRepository) ListBySource(_ context.Context, source, _ string) ([]prospect.Prospect, error) {
	source = strings.ToLower(strings.TrimSpace(source))

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entriesBySource[source]
	out := make([]prospect.Prospect, 0, len(entries))
	out = append(out, entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })

	return out, nil
}

// ReplaceSource swaps a whole ranking snapshot atomically.
func (r *ProspectRepository) ReplaceSource(_ context.Context, source string, entries []prospect.Prospect) error {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		return nil
	}

	snapshot := make([]prospect.Prospect, 0, len(entries))
	snapshot = append(snapshot, entries...)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entriesBySource[source] = snapshot

	return nil
}
