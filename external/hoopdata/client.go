// Package hoopdata adapts the HoopData API, the domestic provider covering
// NCAA and G League schedules. HoopData labels seasons with a single year
// and has no team search endpoint.
package hoopdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/hoopsight/prospect-calendar/internal/domain/team"
	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
	"github.com/hoopsight/prospect-calendar/internal/platform/resilience"
	"github.com/hoopsight/prospect-calendar/internal/usecase"
)

const (
	ProviderID = "hoopdata"

	defaultBaseURL  = "https://api.hoopdata.io/v2"
	maxResponseSize = 6 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)
var errHoopDataTransient = crerr.New("hoopdata transient failure")

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
	}
}

func (c *Client) ID() string { return ProviderID }

func (c *Client) SeasonFormat() string { return team.SeasonFormatSingleYear }

func (c *Client) ListTeams(ctx context.Context, seasonLabel string) ([]team.DirectoryEntry, error) {
	seasonLabel = strings.TrimSpace(seasonLabel)
	if seasonLabel == "" {
		return nil, fmt.Errorf("season label is required")
	}

	var envelope teamsEnvelope
	if _, err := c.doJSON(ctx, "/teams", map[string]string{"season": seasonLabel}, &envelope); err != nil {
		return nil, fmt.Errorf("list teams season=%s: %w", seasonLabel, err)
	}

	out := make([]team.DirectoryEntry, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if item.ID == "" || strings.TrimSpace(item.Name) == "" {
			continue
		}
		out = append(out, team.DirectoryEntry{
			ProviderID:     ProviderID,
			ProviderTeamID: item.ID,
			CanonicalName:  strings.TrimSpace(item.Name),
			LeagueID:       strings.TrimSpace(item.League),
			SeasonFormat:   team.SeasonFormatSingleYear,
			Country:        defaultString(item.Country, "USA"),
		})
	}
	return out, nil
}

// SearchTeams is unsupported: HoopData publishes no search endpoint, the
// resolver lists the full directory instead.
func (c *Client) SearchTeams(_ context.Context, _ string) ([]team.DirectoryEntry, error) {
	return nil, fmt.Errorf("%w: hoopdata has no team search endpoint", usecase.ErrDependencyUnavailable)
}

func (c *Client) FetchTeamSchedule(ctx context.Context, providerTeamID, seasonLabel string) ([]usecase.ProviderGame, error) {
	providerTeamID = strings.TrimSpace(providerTeamID)
	if providerTeamID == "" {
		return nil, fmt.Errorf("provider team id is required")
	}

	path := fmt.Sprintf("/teams/%s/schedule", url.PathEscape(providerTeamID))
	var envelope scheduleEnvelope
	if _, err := c.doJSON(ctx, path, map[string]string{"season": strings.TrimSpace(seasonLabel)}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch schedule team=%s season=%s: %w", providerTeamID, seasonLabel, err)
	}

	out := make([]usecase.ProviderGame, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		tipoff, ok := parseTipoff(item.Date, item.Venue.Timezone)
		if !ok {
			c.logger.WarnContext(ctx, "hoopdata game has unparseable date, skipping", "game_id", item.ID, "date", item.Date)
			continue
		}
		out = append(out, usecase.ProviderGame{
			ProviderGameID: item.ID,
			HomeTeam:       strings.TrimSpace(item.HomeTeam.Name),
			AwayTeam:       strings.TrimSpace(item.AwayTeam.Name),
			Tipoff:         tipoff,
			LeagueLabel:    strings.TrimSpace(item.League),
			Status:         item.Status,
			HomeScore:      item.HomeScore,
			AwayScore:      item.AwayScore,
			Venue:          strings.TrimSpace(item.Venue.Name),
			HomeLogoURL:    strings.TrimSpace(item.HomeTeam.LogoURL),
			AwayLogoURL:    strings.TrimSpace(item.AwayTeam.LogoURL),
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "hoopdata circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: hoopdata is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		if value != "" {
			values.Set(key, value)
		}
	}
	values.Set("api_key", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errHoopDataTransient) {
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
		return nil, fmt.Errorf("decode hoopdata payload: %w", err)
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
			lastErr = fmt.Errorf("%w: send request: %s", errHoopDataTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errHoopDataTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errHoopDataTransient, resp.StatusCode, abbreviateBody(raw))
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
	c.logger.WarnContext(ctx, "hoopdata request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

type teamsEnvelope struct {
	Data []teamItem `json:"data"`
}

type teamItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	League  string `json:"league"`
	Country string `json:"country"`
}

type scheduleEnvelope struct {
	Data []gameItem `json:"data"`
}

type gameItem struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	HomeTeam  gameSide  `json:"home_team"`
	AwayTeam  gameSide  `json:"away_team"`
	HomeScore *int      `json:"home_score"`
	AwayScore *int      `json:"away_score"`
	Status    string    `json:"status"`
	League    string    `json:"league"`
	Venue     gameVenue `json:"venue"`
}

type gameSide struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

type gameVenue struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// parseTipoff interprets the provider timestamp in the venue's timezone.
// HoopData dates come either as RFC3339 with offset or as a bare local
// "2006-01-02T15:04:05" paired with the venue timezone field.
func parseTipoff(raw, timezone string) (time.Time, bool) {
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

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, loc); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, loc); err == nil {
		return t, true
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
	return apiKeyParamRegex.ReplaceAllString(value, "api_key=REDACTED")
}

func redactAPIURL(fullURL string) string {
	return apiKeyParamRegex.ReplaceAllString(fullURL, "api_key=REDACTED")
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

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
