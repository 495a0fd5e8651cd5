package footcsv

import (
	"context"
	"crypto/tls"
	"encoding/csv"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/oddsmith/matchfeed/internal/platform/charset"
	"github.com/oddsmith/matchfeed/internal/platform/logging"
	"github.com/oddsmith/matchfeed/internal/platform/resilience"
	"github.com/oddsmith/matchfeed/internal/usecase"
)

const (
	defaultBaseURL = "https://www.football-data.co.uk/mmz4281"
	maxBodyBytes   = 8 << 20
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	VerifyTLS  bool
	Logger     *logging.Logger
}

// Client fetches season archives as CSV over plain HTTP. The provider hosts
// one file per (season, league) and answers 404 for unpublished seasons.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      resilience.RetryPolicy
	logger     *logging.Logger
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
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
		if !cfg.VerifyTLS {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		retry:      resilience.NewRetryPolicy(maxRetries, time.Second, 60*time.Second),
		logger:     logger,
	}
}

func (c *Client) Code() string { return "footcsv" }

// Fetch downloads and parses one season archive. Transient transport
// failures retry with backoff and surface as ErrSourceUnavailable once the
// budget is spent; a 404 is permanent and fails fast as ErrNotFound.
func (c *Client) Fetch(ctx context.Context, leagueCode, seasonCode string) (usecase.Feed, error) {
	fullURL := fmt.Sprintf("%s/%s/%s.csv", c.baseURL, seasonCode, strings.ToUpper(leagueCode))

	var raw []byte
	var declaredEncoding string
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var attemptErr error
		raw, declaredEncoding, attemptErr = c.download(ctx, fullURL)
		return attemptErr
	})
	if err != nil {
		if resilience.IsTransient(err) {
			err = fmt.Errorf("%w: %s: %v", usecase.ErrSourceUnavailable, fullURL, err)
		}
		c.logger.WarnContext(ctx, "season archive fetch failed", "url", fullURL, "error", err)
		return usecase.Feed{}, err
	}

	decoded, usedEncoding, err := charset.Decode(raw, declaredEncoding)
	if err != nil {
		return usecase.Feed{}, fmt.Errorf("%w: decode %s: %v", usecase.ErrInvalidContent, fullURL, err)
	}
	fallback := ""
	if usedEncoding != declaredEncoding && !(declaredEncoding == "" && usedEncoding == "utf-8") {
		fallback = usedEncoding
		c.logger.InfoContext(ctx, "season archive used fallback encoding",
			"url", fullURL, "declared", declaredEncoding, "used", usedEncoding)
	}

	if looksLikeHTML(decoded) {
		return usecase.Feed{}, fmt.Errorf("%w: %s returned an HTML page instead of CSV", usecase.ErrInvalidContent, fullURL)
	}

	header, rows, err := parseCSV(decoded)
	if err != nil {
		return usecase.Feed{}, fmt.Errorf("%w: parse %s: %v", usecase.ErrInvalidContent, fullURL, err)
	}

	return usecase.Feed{
		Provider:         c.Code(),
		LeagueCode:       leagueCode,
		SeasonCode:       seasonCode,
		RawBytes:         raw,
		Header:           header,
		Rows:             rows,
		FallbackEncoding: fallback,
	}, nil
}

func (c *Client) download(ctx context.Context, fullURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", resilience.Transient(fmt.Errorf("send request: %v", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, "", fmt.Errorf("%w: %s", usecase.ErrNotFound, fullURL)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden ||
		resp.StatusCode == http.StatusPaymentRequired:
		return nil, "", fmt.Errorf("%w: status=%d", usecase.ErrAccessDenied, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, "", resilience.Transient(fmt.Errorf("provider status=%d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, "", fmt.Errorf("%w: unexpected status=%d", usecase.ErrInvalidContent, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", resilience.Transient(fmt.Errorf("read response body: %v", err))
	}

	return raw, declaredCharset(resp.Header.Get("Content-Type")), nil
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}

// looksLikeHTML detects error/placeholder pages served with HTTP 200.
func looksLikeHTML(body string) bool {
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<head>") ||
		strings.Contains(head, "<body")
}

// parseCSV tolerates the ragged trailing columns older archives carry.
func parseCSV(content string) ([]string, [][]string, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlankRow(record) {
			continue
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
