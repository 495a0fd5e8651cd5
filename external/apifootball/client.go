package apifootball

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/oddsmith/matchfeed/internal/platform/logging"
	"github.com/oddsmith/matchfeed/internal/platform/resilience"
	"github.com/oddsmith/matchfeed/internal/usecase"
)

const (
	defaultBaseURL = "https://api.football-feed.example/v2"
	maxBodyBytes   = 6 << 20
	maxPages       = 50
)

// feedHeader is the tabular shape the paginated match objects flatten into.
// Column names match the bulk-CSV provider so one normalizer serves both.
var feedHeader = []string{
	"Date", "Time", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "HTHG", "HTAG",
	"AvgH", "AvgD", "AvgA", "HY", "AY", "HR", "AR", "Matchday", "Venue", "Referee",
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig

	// Pacer, when set, enforces the minimum inter-request interval on every
	// page request. Share one instance with the orchestrator so page-level
	// and unit-level calls honor the same floor.
	Pacer *resilience.Pacer
}

// Client fetches match pages from the JSON REST provider and flattens them
// to the canonical tabular feed.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	retry          resilience.RetryPolicy
	pacer          *resilience.Pacer
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		retry:          resilience.NewRetryPolicy(maxRetries, time.Second, 60*time.Second),
		pacer:          cfg.Pacer,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Code() string { return "apifootball" }

// Fetch walks the provider's pages for one league season and flattens every
// match object into a row. Raw page payloads are kept newline-joined for the
// verbatim snapshot.
func (c *Client) Fetch(ctx context.Context, leagueCode, seasonCode string) (usecase.Feed, error) {
	feed := usecase.Feed{
		Provider:   c.Code(),
		LeagueCode: leagueCode,
		SeasonCode: seasonCode,
		Header:     feedHeader,
	}

	var rawPages [][]byte
	for page := 1; page <= maxPages; page++ {
		env, raw, err := c.fetchPage(ctx, leagueCode, seasonCode, page)
		if err != nil {
			return usecase.Feed{}, err
		}
		rawPages = append(rawPages, raw)

		for _, m := range env.Matches {
			feed.Rows = append(feed.Rows, flattenMatch(m))
		}

		if env.Paging.TotalPages <= 0 || page >= env.Paging.TotalPages {
			break
		}
	}

	feed.RawBytes = bytes.Join(rawPages, []byte("\n"))
	return feed, nil
}

func (c *Client) fetchPage(ctx context.Context, leagueCode, seasonCode string, page int) (pageEnvelope, []byte, error) {
	var env pageEnvelope

	// The request floor applies between pages too, not just between units.
	if err := c.pacer.Wait(ctx); err != nil {
		return env, nil, fmt.Errorf("rate pacing interrupted: %w", err)
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "match feed circuit breaker rejected request", "state", c.breaker.State())
			return env, nil, fmt.Errorf("%w: match feed provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := fmt.Sprintf("%s/matches?league=%s&season=%s&page=%d", c.baseURL, leagueCode, seasonCode, page)

	var raw []byte
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var attemptErr error
		raw, attemptErr = c.getPage(ctx, fullURL)
		return attemptErr
	})
	if c.circuitEnabled {
		if err != nil && resilience.IsTransient(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		if resilience.IsTransient(err) {
			err = fmt.Errorf("%w: %s: %v", usecase.ErrSourceUnavailable, fullURL, err)
		}
		c.logger.WarnContext(ctx, "match page fetch failed", "url", fullURL, "page", page, "error", c.redact(err.Error()))
		return env, nil, err
	}

	if looksLikeHTML(raw) {
		return env, nil, fmt.Errorf("%w: %s returned HTML instead of JSON", usecase.ErrInvalidContent, fullURL)
	}
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return env, nil, fmt.Errorf("%w: decode page %d: %v", usecase.ErrInvalidContent, page, err)
	}
	return env, raw, nil
}

func (c *Client) getPage(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Auth-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.Transient(fmt.Errorf("send request: %s", c.redact(err.Error())))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resilience.Transient(fmt.Errorf("read response body: %v", err))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden ||
		resp.StatusCode == http.StatusPaymentRequired:
		return nil, fmt.Errorf("%w: status=%d", usecase.ErrAccessDenied, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: status=%d", usecase.ErrNotFound, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, resilience.Transient(fmt.Errorf("provider status=%d", resp.StatusCode))
	default:
		return nil, fmt.Errorf("%w: unexpected status=%d", usecase.ErrInvalidContent, resp.StatusCode)
	}
}

// redact strips the API token from any operator-visible text.
func (c *Client) redact(text string) string {
	if c.token == "" {
		return text
	}
	return strings.ReplaceAll(text, c.token, "REDACTED")
}

func looksLikeHTML(raw []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(raw)))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

type pageEnvelope struct {
	Paging struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	} `json:"paging"`
	Matches []matchObject `json:"matches"`
}

type matchObject struct {
	UTCDate  string  `json:"utc_date"`
	Kickoff  string  `json:"kickoff"`
	Matchday *int    `json:"matchday"`
	Venue    *string `json:"venue"`
	Referee  *string `json:"referee"`

	HomeTeam struct {
		Name string `json:"name"`
	} `json:"home_team"`
	AwayTeam struct {
		Name string `json:"name"`
	} `json:"away_team"`

	Score struct {
		FullTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"full_time"`
		HalfTime struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"half_time"`
	} `json:"score"`

	Odds struct {
		Home *float64 `json:"home"`
		Draw *float64 `json:"draw"`
		Away *float64 `json:"away"`
	} `json:"odds"`

	Cards struct {
		HomeYellow *int `json:"home_yellow"`
		AwayYellow *int `json:"away_yellow"`
		HomeRed    *int `json:"home_red"`
		AwayRed    *int `json:"away_red"`
	} `json:"cards"`
}

// flattenMatch maps one nested match object onto the tabular header. Absent
// values become empty cells, matching how the CSV provider encodes them.
func flattenMatch(m matchObject) []string {
	return []string{
		m.UTCDate,
		m.Kickoff,
		m.HomeTeam.Name,
		m.AwayTeam.Name,
		intCell(m.Score.FullTime.Home),
		intCell(m.Score.FullTime.Away),
		intCell(m.Score.HalfTime.Home),
		intCell(m.Score.HalfTime.Away),
		floatCell(m.Odds.Home),
		floatCell(m.Odds.Draw),
		floatCell(m.Odds.Away),
		intCell(m.Cards.HomeYellow),
		intCell(m.Cards.AwayYellow),
		intCell(m.Cards.HomeRed),
		intCell(m.Cards.AwayRed),
		intCell(m.Matchday),
		stringCell(m.Venue),
		stringCell(m.Referee),
	}
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func stringCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
