package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	"github.com/hoopsight/prospect-calendar/internal/platform/normalize"
)

// OverrideRepository keys pins by the normalized raw name, so lookups
// tolerate casing, punctuation, and diacritic differences.
type OverrideRepository struct {
	mu        sync.RWMutex
	overrides map[string]team.Override
}

func NewOverrideRepository(overrides []team.Override) *OverrideRepository {
	byKey := make(map[string]team.Override, len(overrides))
	for _, item := range overrides {
		key := normalize.Key(item.RawName)
		if key == "" {
			continue
		}
		byKey[key] = item
	}

	return &OverrideRepository{overrides: byKey}
}

func (r *OverrideRepository) GetByRawName(_ context.Context, rawName string) (*team.Override, error) {
	key := normalize.Key(rawName)
	if key == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if item, ok := r.overrides[key]; ok {
		return &item, nil
	}

	return nil, nil
}

func (r *OverrideRepository) List(_ context.Context) ([]team.Override, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Override, 0, len(r.overrides))
	for _, item := range r.overrides {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RawName < out[j].RawName })

	return out, nil
}

func (r *OverrideRepository) Upsert(_ context.Context, override team.Override) error {
	key := normalize.Key(override.RawName)
	if key == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.overrides[key] = override

	return nil
}
