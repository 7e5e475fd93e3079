package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrResolutionMiss means a prospect's team name matched nothing in any
	// provider directory, overrides included.
	ErrResolutionMiss = errors.New("team resolution miss")
	// ErrAmbiguousMatch means partial matching found several distinct teams
	// and no disambiguation signal settled it.
	ErrAmbiguousMatch = errors.New("ambiguous team match")
	// ErrProviderUnavailable means every upstream source failed and no
	// cached schedule, stale or otherwise, could stand in.
	ErrProviderUnavailable = errors.New("schedule providers unavailable")
	// ErrKeyCollision means two provider games produced the same game key
	// with irreconcilable data.
	ErrKeyCollision = errors.New("game key collision")
)
