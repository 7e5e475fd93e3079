// Package livescore adapts the live scoreboard feed. The feed is polled on
// every enrichment pass during game windows, so the client rides fasthttp
// and pooled buffers instead of net/http.
package livescore

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
	"github.com/hoopsight/prospect-calendar/internal/platform/resilience"
	"github.com/hoopsight/prospect-calendar/internal/usecase"
)

const (
	defaultBaseURL = "https://feed.courtside-live.com/v1"
	defaultTimeout = 5 * time.Second
)

var errLiveScoreTransient = crerr.New("livescore transient failure")

type ClientConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	token          string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchScoreboard(ctx context.Context, dateKey string) ([]usecase.LiveScore, error) {
	dateKey = strings.TrimSpace(dateKey)
	if dateKey == "" {
		return nil, fmt.Errorf("date key is required")
	}

	var envelope scoreboardEnvelope
	if err := c.doJSON(ctx, "/scoreboard", map[string]string{"date": dateKey}, &envelope); err != nil {
		return nil, fmt.Errorf("fetch scoreboard date=%s: %w", dateKey, err)
	}

	out := make([]usecase.LiveScore, 0, len(envelope.Games))
	for _, item := range envelope.Games {
		out = append(out, mapScoreRow(item))
	}
	return out, nil
}

func (c *Client) FetchGameDetail(ctx context.Context, providerGameID string) (*usecase.LiveScore, error) {
	providerGameID = strings.TrimSpace(providerGameID)
	if providerGameID == "" {
		return nil, fmt.Errorf("provider game id is required")
	}

	var item scoreRow
	path := "/games/" + url.PathEscape(providerGameID)
	if err := c.doJSON(ctx, path, nil, &item); err != nil {
		return nil, fmt.Errorf("fetch game detail id=%s: %w", providerGameID, err)
	}

	row := mapScoreRow(item)
	return &row, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "livescore circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: livescore feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullURL := c.buildURL(path, query)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")
	if c.token != "" {
		req.Header.Set("authorization", "Bearer "+c.token)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	err := c.httpClient.DoTimeout(req, resp, timeout)
	if err != nil {
		callErr := fmt.Errorf("%w: fetch %s: %v", errLiveScoreTransient, path, err)
		c.recordCircuitResult(callErr)
		return callErr
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		if isRetryableStatus(status) {
			callErr := fmt.Errorf("%w: feed status=%d path=%s", errLiveScoreTransient, status, path)
			c.recordCircuitResult(callErr)
			return callErr
		}
		callErr := fmt.Errorf("feed status=%d path=%s", status, path)
		c.recordCircuitResult(callErr)
		return callErr
	}

	if err := sonic.Unmarshal(resp.Body(), target); err != nil {
		c.recordCircuitResult(nil)
		return fmt.Errorf("decode livescore payload: %w", err)
	}
	c.recordCircuitResult(nil)
	return nil
}

func (c *Client) buildURL(path string, query map[string]string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	_, _ = buf.WriteString(path)
	values := url.Values{}
	for key, value := range query {
		if value != "" {
			values.Set(key, value)
		}
	}
	if encoded := values.Encode(); encoded != "" {
		_ = buf.WriteByte('?')
		_, _ = buf.WriteString(encoded)
	}
	return buf.String()
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled || c.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errLiveScoreTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

type scoreboardEnvelope struct {
	Games []scoreRow `json:"games"`
}

type scoreRow struct {
	ID        string `json:"id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
	Status    string `json:"status"`
	Clock     string `json:"clock"`
}

func mapScoreRow(item scoreRow) usecase.LiveScore {
	return usecase.LiveScore{
		ProviderGameID: item.ID,
		HomeTeam:       strings.TrimSpace(item.HomeTeam),
		AwayTeam:       strings.TrimSpace(item.AwayTeam),
		HomeScore:      item.HomeScore,
		AwayScore:      item.AwayScore,
		Status:         item.Status,
		Clock:          item.Clock,
	}
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError
}
