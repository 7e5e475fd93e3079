package prospect

import (
	"context"
	"errors"
)

var (
	errMissingName   = errors.New("prospect name is required")
	errMissingSource = errors.New("prospect source is required")
)

// Repository exposes read access to ranking list snapshots. An empty list
// is a valid answer; callers must tolerate it.
type Repository interface {
	ListBySource(ctx context.Context, source, userID string) ([]Prospect, error)
}
