package team

import "context"

// DirectoryRepository stores provider team directory snapshots used by the
// resolver for exact and partial name matching.
type DirectoryRepository interface {
	ListByProvider(ctx context.Context, providerID string) ([]DirectoryEntry, error)
	ListAll(ctx context.Context) ([]DirectoryEntry, error)
	ReplaceProvider(ctx context.Context, providerID string, entries []DirectoryEntry) error
}

// OverrideRepository stores manual raw-name pins consulted before any
// automated matching.
type OverrideRepository interface {
	GetByRawName(ctx context.Context, rawName string) (*Override, error)
	List(ctx context.Context) ([]Override, error)
	Upsert(ctx context.Context, override Override) error
}
