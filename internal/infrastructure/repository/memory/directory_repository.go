package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
)

type DirectoryRepository struct {
	mu                sync.RWMutex
	entriesByProvider map[string][]team.DirectoryEntry
}

func NewDirectoryRepository(entries []team.DirectoryEntry) *DirectoryRepository {
	entriesByProvider := make(map[string][]team.DirectoryEntry)
	for _, item := range entries {
		entriesByProvider[item.ProviderID] = append(entriesByProvider[item.ProviderID], item)
	}

	return &DirectoryRepository{entriesByProvider: entriesByProvider}
}

func (r *DirectoryRepository) ListByProvider(_ context.Context, providerID string) ([]team.DirectoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entriesByProvider[providerID]
	out := make([]team.DirectoryEntry, 0, len(entries))
	out = append(out, entries...)

	return out, nil
}

func (r *DirectoryRepository) ListAll(_ context.Context) ([]team.DirectoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.entriesByProvider))
	for providerID := range r.entriesByProvider {
		providers = append(providers, providerID)
	}
	sort.Strings(providers)

	var out []team.DirectoryEntry
	for _, providerID := range providers {
		out = append(out, r.entriesByProvider[providerID]...)
	}

	return out, nil
}

func (r *DirectoryRepository) ReplaceProvider(_ context.Context, providerID string, entries []team.DirectoryEntry) error {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil
	}

	snapshot := make([]team.DirectoryEntry, 0, len(entries))
	snapshot = append(snapshot, entries...)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entriesByProvider[providerID] = snapshot

	return nil
}
