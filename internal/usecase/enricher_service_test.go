package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hoopsight/prospect-calendar/internal/domain/game"
)

type fakeLiveBoard struct {
	board       []LiveScore
	boardErr    error
	detail      map[string]LiveScore
	detailCalls int
}

func (p *fakeLiveBoard) FetchScoreboard(_ context.Context, _ string) ([]LiveScore, error) {
	if p.boardErr != nil {
		return nil, p.boardErr
	}
	return p.board, nil
}

func (p *fakeLiveBoard) FetchGameDetail(_ context.Context, providerGameID string) (*LiveScore, error) {
	p.detailCalls++
	if row, ok := p.detail[providerGameID]; ok {
		return &row, nil
	}
	return nil, nil
}

func newEnricherFixture(live LiveBoardProvider) *EnricherService {
	service := NewEnricherService(live, nil)
	service.now = func() time.Time {
		return time.Date(2026, time.January, 10, 19, 0, 0, 0, easternTime)
	}
	return service
}

func todayGame(home, away string) game.Game {
	return game.Game{
		GameKey:  game.Key("2026-01-10", home, away, "ABA League"),
		DateKey:  "2026-01-10",
		HomeTeam: home,
		AwayTeam: away,
		Status:   game.StatusScheduled,
	}
}

func TestEnricherService_AppliesLiveScores(t *testing.T) {
	home, away := 55, 51
	live := &fakeLiveBoard{
		board: []LiveScore{{
			ProviderGameID: "lv-1",
			HomeTeam:       "KK Partizan", AwayTeam: "Crvena Zvezda",
			HomeScore: &home, AwayScore: &away,
			Status: "live",
		}},
		detail: map[string]LiveScore{
			"lv-1": {ProviderGameID: "lv-1", Status: "live", Clock: "Q3 04:12"},
		},
	}
	service := newEnricherFixture(live)

	games := service.Enrich(t.Context(), []game.Game{todayGame("KK Partizan", "Crvena Zvezda")})
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
	g := games[0]
	if g.Status != game.StatusLive {
		t.Fatalf("expected live status, got %s", g.Status)
	}
	if g.HomeScore == nil || *g.HomeScore != 55 || *g.AwayScore != 51 {
		t.Fatalf("scores not applied: %+v", g)
	}
	if g.Clock != "Q3 04:12" {
		t.Fatalf("expected clock from detail fetch, got %q", g.Clock)
	}
	if live.detailCalls != 1 {
		t.Fatalf("expected exactly one detail fetch, got %d", live.detailCalls)
	}
}

func TestEnricherService_LooseMatchOnAbbreviatedNames(t *testing.T) {
	home, away := 70, 68
	live := &fakeLiveBoard{
		board: []LiveScore{{
			ProviderGameID: "lv-2",
			HomeTeam:       "Madrid Baloncesto", AwayTeam: "Baskonia Vitoria",
			HomeScore: &home, AwayScore: &away,
			Status: "final",
		}},
	}
	service := newEnricherFixture(live)

	games := service.Enrich(t.Context(), []game.Game{todayGame("Real Madrid Baloncesto", "Baskonia")})
	if games[0].HomeScore == nil || *games[0].HomeScore != 70 {
		t.Fatalf("loose match did not apply scores: %+v", games[0])
	}
	if games[0].Status != game.StatusFinal {
		t.Fatalf("expected final status, got %s", games[0].Status)
	}
}

func TestEnricherService_FetchesDetailForLiveGameMissingFromFeed(t *testing.T) {
	sc := 77
	live := &fakeLiveBoard{
		board: []LiveScore{{
			ProviderGameID: "lv-5",
			HomeTeam:       "Olympiacos", AwayTeam: "Panathinaikos",
			Status: "live",
		}},
		detail: map[string]LiveScore{
			"g-44": {ProviderGameID: "g-44", HomeScore: &sc, AwayScore: &sc, Status: "live", Clock: "Q4 01:30"},
		},
	}
	service := newEnricherFixture(live)

	g := todayGame("KK Partizan", "Crvena Zvezda")
	g.Status = game.StatusLive
	g.ProviderGameID = "g-44"

	games := service.Enrich(t.Context(), []game.Game{g})
	if games[0].Clock != "Q4 01:30" || games[0].HomeScore == nil {
		t.Fatalf("absent-from-feed live game got no detail overlay: %+v", games[0])
	}
	if live.detailCalls != 1 {
		t.Fatalf("expected one detail fetch, got %d", live.detailCalls)
	}
}

func TestEnricherService_DetailFetchPerQualifyingGame(t *testing.T) {
	a, b := 40, 38
	live := &fakeLiveBoard{
		board: []LiveScore{
			{ProviderGameID: "lv-1", HomeTeam: "KK Partizan", AwayTeam: "Crvena Zvezda", HomeScore: &a, AwayScore: &b, Status: "live"},
			{ProviderGameID: "lv-2", HomeTeam: "Olympiacos", AwayTeam: "Panathinaikos", HomeScore: &a, AwayScore: &b, Status: "live"},
		},
		detail: map[string]LiveScore{
			"lv-1": {ProviderGameID: "lv-1", Status: "live", Clock: "Q2 06:00"},
			"lv-2": {ProviderGameID: "lv-2", Status: "live", Clock: "Q2 05:10"},
		},
	}
	service := newEnricherFixture(live)

	games := service.Enrich(t.Context(), []game.Game{
		todayGame("KK Partizan", "Crvena Zvezda"),
		todayGame("Olympiacos", "Panathinaikos"),
	})
	if games[0].Clock != "Q2 06:00" || games[1].Clock != "Q2 05:10" {
		t.Fatalf("every qualifying game gets its own detail fetch: %+v", games)
	}
	if live.detailCalls != 2 {
		t.Fatalf("expected a detail fetch per game, got %d", live.detailCalls)
	}
}

func TestEnricherService_ScoreboardFailureDegrades(t *testing.T) {
	live := &fakeLiveBoard{boardErr: errors.New("feed down")}
	service := newEnricherFixture(live)

	input := []game.Game{todayGame("KK Partizan", "Crvena Zvezda")}
	games := service.Enrich(t.Context(), input)
	if games[0].Status != game.StatusScheduled {
		t.Fatalf("failed enrichment must not mutate games, got %s", games[0].Status)
	}
	if games[0].HomeScore != nil {
		t.Fatal("failed enrichment must not invent scores")
	}
}

func TestEnricherService_SkipsOtherDays(t *testing.T) {
	live := &fakeLiveBoard{board: []LiveScore{{HomeTeam: "KK Partizan", AwayTeam: "Crvena Zvezda", Status: "live"}}}
	service := newEnricherFixture(live)

	g := todayGame("KK Partizan", "Crvena Zvezda")
	g.DateKey = "2026-01-11"
	games := service.Enrich(t.Context(), []game.Game{g})
	if games[0].Status != game.StatusScheduled {
		t.Fatal("games outside today must stay untouched")
	}
}

func TestEnricherService_FinishedGamesUntouched(t *testing.T) {
	stale := 1
	live := &fakeLiveBoard{board: []LiveScore{{
		HomeTeam: "KK Partizan", AwayTeam: "Crvena Zvezda",
		HomeScore: &stale, AwayScore: &stale, Status: "live",
	}}}
	service := newEnricherFixture(live)

	home, away := 92, 88
	g := todayGame("KK Partizan", "Crvena Zvezda")
	g.Status = game.StatusFinal
	g.HomeScore, g.AwayScore = &home, &away

	games := service.Enrich(t.Context(), []game.Game{g})
	if *games[0].HomeScore != 92 || games[0].Status != game.StatusFinal {
		t.Fatalf("final game was overwritten: %+v", games[0])
	}
}
