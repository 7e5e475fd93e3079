// Package intlbasket adapts the IntlBasket API, the international provider
// covering European and other overseas leagues. IntlBasket labels seasons
// as a cross-year range ("2025-2026") and exposes a team search endpoint.
package intlbasket

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
	"github.com/hoopsight/prospect-calendar/internal/platform/resilience"
	"github.com/hoopsight/prospect-calendar/internal/usecase"
)

const (
	ProviderID = "intlbasket"

	defaultBaseURL  = "https://api.intlbasket.com/v1"
	maxResponseSize = 6 << 20
)

var tokenParamRegex = regexp.MustCompile(`token=[^&\s"']+`)
var errIntlBasketTransient = crerr.New("intlbasket transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight

	// leagueFormats caches each league's season-label convention, learned
	// once from the league directory.
	formatMu      sync.RWMutex
	leagueFormats map[string]string
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		leagueFormats:  make(map[string]string),
	}
}

func (c *Client) ID() string { return ProviderID }

func (c *Client) SeasonFormat() string { return team.SeasonFormatYearRange }

// ListTeams walks the provider's league directory and flattens every
// league's teams into one snapshot. A league that fails to list degrades
// the snapshot instead of failing it.
func (c *Client) ListTeams(ctx context.Context, seasonLabel string) ([]team.DirectoryEntry, error) {
	seasonLabel = strings.TrimSpace(seasonLabel)
	if seasonLabel == "" {
		return nil, fmt.Errorf("season label is required")
	}

	var leagues leaguesEnvelope
	if _, err := c.doJSON(ctx, "/leagues", nil, &leagues); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	out := make([]team.DirectoryEntry, 0, len(leagues.Data)*16)
	failed := 0
	for _, league := range leagues.Data {
		if league.ID == "" {
			continue
		}
		format := classifySeasonFormat(league.CurrentSeason)
		c.rememberLeagueFormat(league.ID, format)

		var teams teamsEnvelope
		path := fmt.Sprintf("/leagues/%s/teams", url.PathEscape(league.ID))
		if _, err := c.doJSON(ctx, path, map[string]string{"season": seasonLabel}, &teams); err != nil {
			failed++
			c.logger.WarnContext(ctx, "league team listing failed, skipping league", "league_id", league.ID, "error", err.Error())
			continue
		}
		for _, item := range teams.Data {
			entry, ok := mapTeamItem(item, league, format)
			if !ok {
				continue
			}
			out = append(out, entry)
		}
	}

	if len(out) == 0 && failed > 0 {
		return nil, fmt.Errorf("%w: all %d league listings failed", usecase.ErrDependencyUnavailable, failed)
	}
	return out, nil
}

func (c *Client) SearchTeams(ctx context.Context, query string) ([]team.DirectoryEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}

	var envelope teamsEnvelope
	if _, err := c.doJSON(ctx, "/teams/search", map[string]string{"q": query}, &envelope); err != nil {
		return nil, fmt.Errorf("search teams q=%q: %w", query, err)
	}

	out := make([]team.DirectoryEntry, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		entry, ok := mapTeamItem(item, leagueItem{ID: item.LeagueID, Name: item.LeagueName}, c.leagueFormat(item.LeagueID))
		if !ok {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (c *Client) FetchTeamSchedule(ctx context.Context, providerTeamID, seasonLabel string) ([]usecase.ProviderGame, error) {
	providerTeamID = strings.TrimSpace(providerTeamID)
	if providerTeamID == "" {
		return nil, fmt.Errorf("provider team id is required")
	}

	path := fmt.Sprintf("/teams/%s/games", url.PathEscape(providerTeamID))
	var envelope gamesEnvelope
	if _, err := c.doJSON(ctx, path, map[string]string{"season": strings.TrimSpace(seasonLabel)}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch games team=%s season=%s: %w", providerTeamID, seasonLabel, err)
	}

	out := make([]usecase.ProviderGame, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		tipoff, ok := parseLocalTipoff(item.LocalTime, item.Timezone)
		if !ok {
			c.logger.WarnContext(ctx, "intlbasket game has unparseable local time, skipping", "game_id", item.ID, "local_time", item.LocalTime, "timezone", item.Timezone)
			continue
		}
		out = append(out, usecase.ProviderGame{
			ProviderGameID: item.ID,
			HomeTeam:       strings.TrimSpace(item.Home.Name),
			AwayTeam:       strings.TrimSpace(item.Away.Name),
			Tipoff:         tipoff,
			LeagueLabel:    strings.TrimSpace(item.LeagueName),
			Status:         item.Status,
			HomeScore:      item.Home.Score,
			AwayScore:      item.Away.Score,
			Venue:          strings.TrimSpace(item.Arena),
			HomeLogoURL:    strings.TrimSpace(item.Home.LogoURL),
			AwayLogoURL:    strings.TrimSpace(item.Away.LogoURL),
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "intlbasket circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: intlbasket is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		if value != "" {
			values.Set(key, value)
		}
	}
	values.Set("token", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errIntlBasketTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode intlbasket payload: %w", err)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errIntlBasketTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errIntlBasketTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errIntlBasketTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "intlbasket request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

type leaguesEnvelope struct {
	Data []leagueItem `json:"data"`
}

type leagueItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Country       string `json:"country"`
	CurrentSeason string `json:"current_season"`
}

type teamsEnvelope struct {
	Data []teamItem `json:"data"`
}

type teamItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	LeagueID   string `json:"league_id"`
	LeagueName string `json:"league_name"`
}

type gamesEnvelope struct {
	Data []gameItem `json:"data"`
}

type gameItem struct {
	ID         string   `json:"id"`
	LocalTime  string   `json:"local_time"`
	Timezone   string   `json:"timezone"`
	LeagueName string   `json:"league_name"`
	Arena      string   `json:"arena"`
	Status     string   `json:"status"`
	Home       gameSide `json:"home"`
	Away       gameSide `json:"away"`
}

type gameSide struct {
	Name    string `json:"name"`
	Score   *int   `json:"score"`
	LogoURL string `json:"logo_url"`
}

func mapTeamItem(item teamItem, league leagueItem, seasonFormat string) (team.DirectoryEntry, bool) {
	name := strings.TrimSpace(item.Name)
	if item.ID == "" || name == "" {
		return team.DirectoryEntry{}, false
	}

	country := strings.TrimSpace(item.Country)
	if country == "" {
		country = strings.TrimSpace(league.Country)
	}
	return team.DirectoryEntry{
		ProviderID:     ProviderID,
		ProviderTeamID: item.ID,
		CanonicalName:  name,
		LeagueID:       strings.TrimSpace(league.ID),
		SeasonFormat:   seasonFormat,
		Country:        country,
	}, true
}

// classifySeasonFormat reads a league's season-label convention off the
// directory's current_season value. Cross-year labels like "2025-2026" mark
// a year-range league; a bare year marks a single-year league. Unknown or
// missing labels fall back to the provider-wide year-range default.
func classifySeasonFormat(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return team.SeasonFormatYearRange
	}
	if strings.Contains(label, "-") || strings.Contains(label, "/") {
		return team.SeasonFormatYearRange
	}
	if len(label) == 4 {
		if _, err := strconv.Atoi(label); err == nil {
			return team.SeasonFormatSingleYear
		}
	}
	return team.SeasonFormatYearRange
}

func (c *Client) rememberLeagueFormat(leagueID, format string) {
	if leagueID == "" {
		return
	}
	c.formatMu.Lock()
	c.leagueFormats[leagueID] = format
	c.formatMu.Unlock()
}

func (c *Client) leagueFormat(leagueID string) string {
	c.formatMu.RLock()
	format, ok := c.leagueFormats[leagueID]
	c.formatMu.RUnlock()
	if !ok || format == "" {
		return team.SeasonFormatYearRange
	}
	return format
}

// parseLocalTipoff interprets the provider's wall-clock time in the game's
// own timezone. Games missing a timezone fall back to UTC rather than being
// dropped.
func parseLocalTipoff(raw, timezone string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	loc := time.UTC
	if timezone = strings.TrimSpace(timezone); timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			loc = parsed
		}
	}

	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return tokenParamRegex.ReplaceAllString(value, "token=REDACTED")
}

func redactAPIURL(fullURL string) string {
	return tokenParamRegex.ReplaceAllString(fullURL, "token=REDACTED")
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
