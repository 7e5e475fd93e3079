package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/hoopsight/prospect-calendar/internal/domain/game"
	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
	"github.com/hoopsight/prospect-calendar/internal/platform/normalize"
)

// EnricherService overlays today's scoreboard onto merged schedule games.
// Enrichment is strictly best effort: a dead scoreboard feed degrades to
// the unenriched schedule and never fails a calendar request.
type EnricherService struct {
	live   LiveBoardProvider
	logger *logging.Logger

	now func() time.Time
}

func NewEnricherService(live LiveBoardProvider, logger *logging.Logger) *EnricherService {
	if logger == nil {
		logger = logging.Default()
	}

	return &EnricherService{
		live:   live,
		logger: logger,
		now:    time.Now,
	}
}

// Enrich copies live scores, status and clock onto games played today.
// Matching goes by normalized home/away pair first, then by one-sided
// containment for scoreboards that abbreviate names.
func (s *EnricherService) Enrich(ctx context.Context, games []game.Game) []game.Game {
	ctx, span := startUsecaseSpan(ctx, "usecase.EnricherService.Enrich")
	defer span.End()

	if s.live == nil || len(games) == 0 {
		return games
	}

	today := game.FormatDateKey(s.now().In(easternTime))
	hasToday := false
	for _, g := range games {
		if g.DateKey == today {
			hasToday = true
			break
		}
	}
	if !hasToday {
		return games
	}

	board, err := s.live.FetchScoreboard(ctx, today)
	if err != nil {
		s.logger.WarnContext(ctx, "scoreboard fetch failed, serving unenriched schedule", "date_key", today, "error", err.Error())
		return games
	}
	if len(board) == 0 {
		return games
	}

	byPair := make(map[string]LiveScore, len(board))
	for _, row := range board {
		byPair[normalize.TeamPair(row.HomeTeam, row.AwayTeam)] = row
	}

	out := make([]game.Game, len(games))
	copy(out, games)

	for i := range out {
		if out[i].DateKey != today || out[i].Finished() {
			continue
		}

		row, ok := byPair[normalize.TeamPair(out[i].HomeTeam, out[i].AwayTeam)]
		if !ok {
			row, ok = matchLoose(board, out[i])
		}
		if !ok {
			// An in-progress game missing from the lightweight feed gets
			// one per-event detail fetch before we give up on it.
			if out[i].Status == game.StatusLive && out[i].ProviderGameID != "" {
				s.applyDetail(ctx, &out[i], out[i].ProviderGameID)
			}
			continue
		}

		applyLiveScore(&out[i], row)

		// Clock detail sits behind a separate endpoint on most feeds.
		if out[i].Status == game.StatusLive && out[i].Clock == "" && row.ProviderGameID != "" {
			s.applyDetail(ctx, &out[i], row.ProviderGameID)
		}
	}

	return out
}

// applyDetail fetches one game's detail row and overlays it. Attempted at
// most once per game per pass; failures degrade silently to the coarse row.
func (s *EnricherService) applyDetail(ctx context.Context, g *game.Game, providerGameID string) {
	detail, err := s.live.FetchGameDetail(ctx, providerGameID)
	if err != nil {
		s.logger.WarnContext(ctx, "scoreboard detail fetch failed", "provider_game_id", providerGameID, "error", err.Error())
		return
	}
	if detail != nil {
		applyLiveScore(g, *detail)
	}
}

func applyLiveScore(g *game.Game, row LiveScore) {
	if row.HomeScore != nil && row.AwayScore != nil {
		g.HomeScore = cloneIntPtr(row.HomeScore)
		g.AwayScore = cloneIntPtr(row.AwayScore)
	}
	if status := normalizeGameStatus(row.Status); status != game.StatusScheduled {
		g.Status = status
	}
	if row.Clock != "" {
		g.Clock = row.Clock
	}
}

// matchLoose handles scoreboards that shorten names ("R. Madrid"). Both
// sides must match by containment in the same direction.
func matchLoose(board []LiveScore, g game.Game) (LiveScore, bool) {
	homeKey := normalize.Key(g.HomeTeam)
	awayKey := normalize.Key(g.AwayTeam)
	if len(homeKey) < minPartialMatchKeyLen || len(awayKey) < minPartialMatchKeyLen {
		return LiveScore{}, false
	}

	for _, row := range board {
		rowHome := normalize.Key(row.HomeTeam)
		rowAway := normalize.Key(row.AwayTeam)
		if containsEither(homeKey, rowHome) && containsEither(awayKey, rowAway) {
			return row, true
		}
	}
	return LiveScore{}, false
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
