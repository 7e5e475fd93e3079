package prospect

import "strings"

// SourceLiveBoard is the per-user, frequently edited ranking. Schedules for
// it are always recomputed live and never touch the cache.
const SourceLiveBoard = "liveboard"

// Prospect is one entry of a ranking list snapshot. Snapshots are immutable;
// the list owner recreates them whenever rankings are reloaded.
type Prospect struct {
	ID       string
	Name     string
	Rank     int
	TeamName string
	League   string
	Country  string
	Source   string
}

func (p Prospect) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errMissingName
	}
	if strings.TrimSpace(p.Source) == "" {
		return errMissingSource
	}
	return nil
}

// IsCacheable reports whether schedules for a ranking source may be cached.
func IsCacheable(source string) bool {
	return strings.TrimSpace(strings.ToLower(source)) != SourceLiveBoard
}
