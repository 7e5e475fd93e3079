package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hoopsight/prospect-calendar/internal/domain/game"
	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
)

// Tipoffs for the same game key may drift between providers by a round of
// timezone sloppiness. Beyond this window the rows are treated as a
// collision rather than the same game.
const mergeTipoffTolerance = 3 * time.Hour

// easternTime is the canonical display timezone for tipoffs. Date keys stay
// venue-local; tipoff instants are rendered Eastern.
var easternTime = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// buildGame converts one provider row into the merged-game shape. The row's
// Tipoff must carry the venue-local timezone.
func buildGame(providerID string, row ProviderGame) game.Game {
	dateKey := game.FormatDateKey(row.Tipoff)
	return game.Game{
		GameKey:           game.Key(dateKey, row.HomeTeam, row.AwayTeam, row.LeagueLabel),
		DateKey:           dateKey,
		ProviderGameID:    strings.TrimSpace(row.ProviderGameID),
		Tipoff:            row.Tipoff.In(easternTime),
		HomeTeam:          strings.TrimSpace(row.HomeTeam),
		AwayTeam:          strings.TrimSpace(row.AwayTeam),
		HomeScore:         cloneIntPtr(row.HomeScore),
		AwayScore:         cloneIntPtr(row.AwayScore),
		Status:            normalizeGameStatus(row.Status),
		LeagueLabel:       strings.TrimSpace(row.LeagueLabel),
		Venue:             strings.TrimSpace(row.Venue),
		HomeLogoURL:       strings.TrimSpace(row.HomeLogoURL),
		AwayLogoURL:       strings.TrimSpace(row.AwayLogoURL),
		SourceProviderIDs: []string{providerID},
	}
}

// mergeGames folds rows from all providers by game key. The first row per
// key, in provider priority order, is the base; later rows only fill fields
// the base left empty. Rows that share a key but disagree on the facts are
// collisions: the base wins and the conflict is logged, never guessed away.
func mergeGames(ctx context.Context, logger *logging.Logger, rank func(providerID string) int, rows []game.Game) []game.Game {
	if logger == nil {
		logger = logging.Default()
	}
	if len(rows) == 0 {
		return nil
	}

	ordered := make([]game.Game, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return mergeRank(rank, ordered[i]) < mergeRank(rank, ordered[j])
	})

	byKey := make(map[string]*game.Game, len(ordered))
	keys := make([]string, 0, len(ordered))
	for _, row := range ordered {
		base, exists := byKey[row.GameKey]
		if !exists {
			copied := row
			copied.SourceProviderIDs = append([]string(nil), row.SourceProviderIDs...)
			byKey[row.GameKey] = &copied
			keys = append(keys, row.GameKey)
			continue
		}

		if collides(*base, row) {
			logger.ErrorContext(ctx,
				"game key collision, keeping higher-priority row",
				"game_key", row.GameKey,
				"kept_providers", strings.Join(base.SourceProviderIDs, ","),
				"dropped_provider", firstProvider(row),
				"kept_tipoff", base.Tipoff.Format(time.RFC3339),
				"dropped_tipoff", row.Tipoff.Format(time.RFC3339),
			)
		}
		absorb(base, row)
	}

	out := make([]game.Game, 0, len(keys))
	for _, key := range keys {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Tipoff.Equal(out[j].Tipoff) {
			return out[i].Tipoff.Before(out[j].Tipoff)
		}
		return out[i].GameKey < out[j].GameKey
	})
	return out
}

// absorb fills the base row's gaps from a lower-priority duplicate and
// records the duplicate's provider.
func absorb(base *game.Game, row game.Game) {
	for _, providerID := range row.SourceProviderIDs {
		if !containsString(base.SourceProviderIDs, providerID) {
			base.SourceProviderIDs = append(base.SourceProviderIDs, providerID)
		}
	}

	if base.HomeScore == nil && base.AwayScore == nil && row.Reported() {
		base.HomeScore = cloneIntPtr(row.HomeScore)
		base.AwayScore = cloneIntPtr(row.AwayScore)
	}
	if base.Venue == "" {
		base.Venue = row.Venue
	}
	if base.ProviderGameID == "" {
		base.ProviderGameID = row.ProviderGameID
	}
	if base.LeagueLabel == "" {
		base.LeagueLabel = row.LeagueLabel
	}
	if base.HomeLogoURL == "" {
		base.HomeLogoURL = row.HomeLogoURL
	}
	if base.AwayLogoURL == "" {
		base.AwayLogoURL = row.AwayLogoURL
	}
	if base.Status == game.StatusScheduled && row.Status != game.StatusScheduled && row.Status != "" {
		base.Status = row.Status
	}
}

func collides(base, row game.Game) bool {
	if !base.Tipoff.IsZero() && !row.Tipoff.IsZero() {
		drift := base.Tipoff.Sub(row.Tipoff)
		if drift < 0 {
			drift = -drift
		}
		if drift > mergeTipoffTolerance {
			return true
		}
	}
	if base.Reported() && row.Reported() {
		if *base.HomeScore != *row.HomeScore || *base.AwayScore != *row.AwayScore {
			return true
		}
	}
	return false
}

func mergeRank(rank func(providerID string) int, row game.Game) int {
	if rank == nil {
		return 0
	}
	return rank(firstProvider(row))
}

func firstProvider(row game.Game) string {
	if len(row.SourceProviderIDs) == 0 {
		return ""
	}
	return row.SourceProviderIDs[0]
}

func normalizeGameStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "scheduled", "upcoming", "ns", "not started", "fixture":
		return game.StatusScheduled
	case "live", "inprogress", "in progress", "playing", "halftime", "ht":
		return game.StatusLive
	case "final", "finished", "ft", "aot", "closed", "complete", "ended":
		return game.StatusFinal
	case "postponed", "delayed", "susp", "suspended":
		return game.StatusPostponed
	case "canceled", "cancelled", "abandoned", "walkover":
		return game.StatusCanceled
	default:
		return game.StatusScheduled
	}
}

func cloneIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
