package hoopdata

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hoopsight/prospect-calendar/internal/usecase"
)

func TestClient_ListTeams(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/teams" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("season") != "2026" {
			t.Errorf("unexpected season: %s", r.URL.Query().Get("season"))
		}
		if r.URL.Query().Get("api_key") != "secret" {
			t.Errorf("api key missing from query")
		}
		_, _ = w.Write([]byte(`{"data":[
			{"id":"hd-1","name":"Duke Blue Devils","league":"ncaa","country":"USA"},
			{"id":"hd-2","name":"Ignite","league":"gleague"},
			{"id":"","name":"Broken Row"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "secret"})
	entries, err := client.ListTeams(t.Context(), "2026")
	if err != nil {
		t.Fatalf("list teams failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ProviderID != ProviderID || entries[0].ProviderTeamID != "hd-1" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Country != "USA" {
		t.Fatalf("expected USA default country, got %q", entries[1].Country)
	}
}

func TestClient_FetchTeamSchedule_VenueLocalTime(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/teams/hd-1/schedule" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{
			"id":"g-1",
			"date":"2026-01-10T19:00:00",
			"home_team":{"name":"Duke Blue Devils","logo_url":"https://cdn/duke.png"},
			"away_team":{"name":"North Carolina"},
			"status":"scheduled",
			"league":"NCAA",
			"venue":{"name":"Cameron Indoor Stadium","timezone":"America/New_York"}
		},{
			"id":"g-2",
			"date":"not-a-date",
			"home_team":{"name":"Duke Blue Devils"},
			"away_team":{"name":"Kansas"}
		}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "secret"})
	games, err := client.FetchTeamSchedule(t.Context(), "hd-1", "2026")
	if err != nil {
		t.Fatalf("fetch schedule failed: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected unparseable game skipped, got %d games", len(games))
	}

	g := games[0]
	if g.HomeTeam != "Duke Blue Devils" || g.AwayTeam != "North Carolina" {
		t.Fatalf("unexpected teams: %+v", g)
	}
	if g.Tipoff.Location().String() != "America/New_York" {
		t.Fatalf("expected venue timezone, got %s", g.Tipoff.Location())
	}
	if g.Tipoff.Hour() != 19 {
		t.Fatalf("expected 19:00 local tipoff, got %d", g.Tipoff.Hour())
	}
	if g.Venue != "Cameron Indoor Stadium" {
		t.Fatalf("unexpected venue: %q", g.Venue)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "secret", MaxRetries: 1})
	if _, err := client.ListTeams(t.Context(), "2026"); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestClient_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "secret", MaxRetries: 3})
	if _, err := client.ListTeams(t.Context(), "2026"); err == nil {
		t.Fatal("expected error for 401")
	}
	if calls.Load() != 1 {
		t.Fatalf("401 must not be retried, got %d attempts", calls.Load())
	}
}

func TestClient_SearchTeamsUnsupported(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://localhost:0", Token: "secret"})
	if _, err := client.SearchTeams(t.Context(), "Duke"); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	out := sanitizeSensitiveText(`Get "https://api.hoopdata.io/v2/teams?api_key=secret-token": dial tcp: timeout`, "secret-token")
	if out != `Get "https://api.hoopdata.io/v2/teams?api_key=REDACTED": dial tcp: timeout` {
		t.Fatalf("token leaked: %s", out)
	}
}
