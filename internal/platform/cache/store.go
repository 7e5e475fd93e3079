// Package cache implements the keyed store behind the schedule cache:
// TTL-bounded freshness, stale reads for fallback, prefix invalidation,
// and singleflight-protected loads.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hoopsight/prospect-calendar/internal/platform/resilience"
)

type entry struct {
	value     any
	writtenAt time.Time
}

// Lookup is the result of a staleness-aware read.
type Lookup struct {
	Value     any
	WrittenAt time.Time
	Stale     bool
}

// Store is an in-process keyed store. Entries past their TTL are kept and
// served as stale until explicitly invalidated; callers decide whether
// stale data is acceptable.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	flight  resilience.SingleFlight
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value for key only if it is still fresh.
func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		return nil, false
	}

	return e.value, true
}

// GetStale returns the value for key regardless of freshness, with a flag
// telling the caller whether the entry is past its TTL.
func (s *Store) GetStale(_ context.Context, key string) (Lookup, bool) {
	if key == "" {
		return Lookup{}, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Lookup{}, false
	}

	return Lookup{
		Value:     e.value,
		WrittenAt: e.writtenAt,
		Stale:     s.expired(e),
	}, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:     value,
		writtenAt: s.now(),
	}
	s.mu.Unlock()
}

// Update replaces the value for an existing key without touching its write
// time, so in-place edits never extend freshness. Returns false when the
// key is absent.
func (s *Store) Update(_ context.Context, key string, value any) bool {
	if key == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.value = value
	s.entries[key] = e
	return true
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// DeletePrefix removes every entry whose key starts with prefix and
// reports how many were removed.
func (s *Store) DeletePrefix(_ context.Context, prefix string) int {
	if prefix == "" {
		return 0
	}

	removed := 0
	s.mu.Lock()
	for key := range s.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.entries, key)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}

// GetOrLoad returns a fresh value for key, running loader at most once per
// key across concurrent callers.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Store) expired(e entry) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(e.writtenAt) > s.ttl
}
