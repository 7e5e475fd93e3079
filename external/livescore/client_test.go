package livescore

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hoopsight/prospect-calendar/internal/platform/resilience"
	"github.com/hoopsight/prospect-calendar/internal/usecase"
)

func TestClient_FetchScoreboard(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scoreboard" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("date") != "2026-01-10" {
			t.Errorf("unexpected date: %s", r.URL.Query().Get("date"))
		}
		if r.Header.Get("Authorization") != "Bearer feed-token" {
			t.Errorf("unexpected authorization header: %s", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"games":[
			{"id":"ls-1","home_team":"KK Partizan","away_team":"Crvena Zvezda","home_score":54,"away_score":51,"status":"live","clock":"Q3 04:12"},
			{"id":"ls-2","home_team":"Real Madrid","away_team":"Baskonia","status":"scheduled"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "feed-token"})
	scores, err := client.FetchScoreboard(t.Context(), "2026-01-10")
	if err != nil {
		t.Fatalf("fetch scoreboard failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(scores))
	}
	if scores[0].ProviderGameID != "ls-1" || scores[0].Clock != "Q3 04:12" {
		t.Fatalf("unexpected first row: %+v", scores[0])
	}
	if scores[0].HomeScore == nil || *scores[0].HomeScore != 54 {
		t.Fatalf("expected home score 54, got %v", scores[0].HomeScore)
	}
	if scores[1].HomeScore != nil {
		t.Fatal("expected nil score for a scheduled game")
	}
}

func TestClient_FetchGameDetail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games/ls-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"ls-1","home_team":"KK Partizan","away_team":"Crvena Zvezda","home_score":61,"away_score":58,"status":"live","clock":"Q4 07:45"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	detail, err := client.FetchGameDetail(t.Context(), "ls-1")
	if err != nil {
		t.Fatalf("fetch detail failed: %v", err)
	}
	if detail.Clock != "Q4 07:45" {
		t.Fatalf("unexpected clock: %s", detail.Clock)
	}
	if detail.AwayScore == nil || *detail.AwayScore != 58 {
		t.Fatalf("unexpected away score: %v", detail.AwayScore)
	}
}

func TestClient_FetchScoreboard_FeedOutage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	_, err := client.FetchScoreboard(t.Context(), "2026-01-10")
	if err == nil {
		t.Fatal("expected an error from a 503 feed")
	}
	if !errors.Is(err, errLiveScoreTransient) {
		t.Fatalf("expected transient classification, got %v", err)
	}
}

func TestClient_CircuitBreakerRejectsWhenOpen(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
		},
	})

	for range 2 {
		if _, err := client.FetchScoreboard(t.Context(), "2026-01-10"); err == nil {
			t.Fatal("expected failure while tripping the breaker")
		}
	}

	_, err := client.FetchScoreboard(t.Context(), "2026-01-10")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected breaker rejection, got %v", err)
	}
}
