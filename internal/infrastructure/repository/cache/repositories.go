// Package cache decorates repositories with read-through caching. The
// directory and override tables change only on sync or admin writes, so
// short TTLs keep resolver lookups off the database.
package cache

import (
	"context"

	"github.com/hoopsight/prospect-calendar/internal/domain/prospect"
	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	basecache "github.com/hoopsight/prospect-calendar/internal/platform/cache"
	"github.com/hoopsight/prospect-calendar/internal/platform/normalize"
)

type DirectoryRepository struct {
	next  team.DirectoryRepository
	cache *basecache.Store
}

func NewDirectoryRepository(next team.DirectoryRepository, cache *basecache.Store) *DirectoryRepository {
	return &DirectoryRepository{next: next, cache: cache}
}

func (r *DirectoryRepository) ListByProvider(ctx context.Context, providerID string) ([]team.DirectoryEntry, error) {
	key := "directory:provider:" + providerID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByProvider(ctx, providerID)
		if err != nil {
			return nil, err
		}
		return append([]team.DirectoryEntry(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.DirectoryEntry)
	return append([]team.DirectoryEntry(nil), items...), nil
}

func (r *DirectoryRepository) ListAll(ctx context.Context) ([]team.DirectoryEntry, error) {
	v, err := r.cache.GetOrLoad(ctx, "directory:all", func(ctx context.Context) (any, error) {
		items, err := r.next.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.DirectoryEntry(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.DirectoryEntry)
	return append([]team.DirectoryEntry(nil), items...), nil
}

func (r *DirectoryRepository) ReplaceProvider(ctx context.Context, providerID string, entries []team.DirectoryEntry) error {
	if err := r.next.ReplaceProvider(ctx, providerID, entries); err != nil {
		return err
	}
	r.cache.Delete(ctx, "directory:provider:"+providerID)
	r.cache.Delete(ctx, "directory:all")
	return nil
}

type OverrideRepository struct {
	next  team.OverrideRepository
	cache *basecache.Store
}

func NewOverrideRepository(next team.OverrideRepository, cache *basecache.Store) *OverrideRepository {
	return &OverrideRepository{next: next, cache: cache}
}

func (r *OverrideRepository) GetByRawName(ctx context.Context, rawName string) (*team.Override, error) {
	key := "override:name:" + normalize.Key(rawName)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, err := r.next.GetByRawName(ctx, rawName)
		if err != nil {
			return nil, err
		}
		return cachedOverride{value: item}, nil
	})
	if err != nil {
		return nil, err
	}

	cached, _ := v.(cachedOverride)
	if cached.value == nil {
		return nil, nil
	}
	out := *cached.value
	return &out, nil
}

func (r *OverrideRepository) List(ctx context.Context) ([]team.Override, error) {
	v, err := r.cache.GetOrLoad(ctx, "override:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Override(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Override)
	return append([]team.Override(nil), items...), nil
}

func (r *OverrideRepository) Upsert(ctx context.Context, override team.Override) error {
	if err := r.next.Upsert(ctx, override); err != nil {
		return err
	}
	r.cache.Delete(ctx, "override:name:"+normalize.Key(override.RawName))
	r.cache.Delete(ctx, "override:list")
	return nil
}

type cachedOverride struct {
	value *team.Override
}

type ProspectRepository struct {
	next  prospect.Repository
	cache *basecache.Store
}

func NewProspectRepository(next prospect.Repository, cache *basecache.Store) *ProspectRepository {
	return &ProspectRepository{next: next, cache: cache}
}

// ListBySource caches shared ranking sources only. Live boards are edited
// constantly and must always read through.
func (r *ProspectRepository) ListBySource(ctx context.Context, source, userID string) ([]prospect.Prospect, error) {
	if !prospect.IsCacheable(source) {
		return r.next.ListBySource(ctx, source, userID)
	}

	key := "prospects:source:" + source
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySource(ctx, source, userID)
		if err != nil {
			return nil, err
		}
		return append([]prospect.Prospect(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]prospect.Prospect)
	return append([]prospect.Prospect(nil), items...), nil
}
