package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oddsmith/matchfeed/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "staging"
	EnvProd  = "prod"
)

const (
	PhaseStructural = "structural"
	PhaseEnriched   = "enriched"
)

// Config stores runtime configuration for the ingestion pipeline. Everything
// the orchestrator needs arrives through this struct; nothing reads process
// globals after Load.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	DBURL string

	// Ingestion targets: every league in Leagues is fetched for every
	// season in Seasons.
	Leagues []string
	Seasons []string

	// Routing maps a league code to its ordered provider chain. Leagues
	// without an entry use DefaultProviders.
	Routing          map[string][]string
	DefaultProviders []string

	VerifyTLS         bool
	RetryBudget       int
	RateLimitInterval time.Duration
	FlushEvery        int

	CleaningPhase       string
	MissingColThreshold float64

	RawDataRoot   string
	CleanDataRoot string
	LogsRoot      string

	FootCSVBaseURL string
	FootCSVTimeout time.Duration

	APIFootballEnabled         bool
	APIFootballBaseURL         string
	APIFootballToken           string
	APIFootballTimeout         time.Duration
	APIFootballCircuitEnabled  bool
	APIFootballCircuitFailures int
	APIFootballCircuitOpenFor  time.Duration
	APIFootballCircuitHalfOpen int
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	dbURL := strings.TrimSpace(getEnv("DATABASE_URL", ""))
	if dbURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	leagues := parseList(getEnv("INGEST_LEAGUES", "E0"))
	if len(leagues) == 0 {
		return Config{}, fmt.Errorf("INGEST_LEAGUES cannot be empty")
	}
	seasons := parseList(getEnv("INGEST_SEASONS", ""))
	if len(seasons) == 0 {
		return Config{}, fmt.Errorf("INGEST_SEASONS is required, e.g. 2324,2425")
	}

	routing, err := parseRouting(getEnv("SOURCE_ROUTING", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse SOURCE_ROUTING: %w", err)
	}
	defaultProviders := parseList(getEnv("SOURCE_DEFAULT_CHAIN", "footcsv,apifootball"))

	verifyTLS, err := strconv.ParseBool(getEnv("VERIFY_TLS", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse VERIFY_TLS: %w", err)
	}

	retryBudget, err := getEnvAsInt("FETCH_RETRY_BUDGET", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_RETRY_BUDGET: %w", err)
	}
	if retryBudget < 1 || retryBudget > 10 {
		return Config{}, fmt.Errorf("FETCH_RETRY_BUDGET must be in [1, 10]")
	}

	rateInterval, err := time.ParseDuration(getEnv("RATE_LIMIT_INTERVAL", "6s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_INTERVAL: %w", err)
	}
	if rateInterval < 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_INTERVAL cannot be negative")
	}

	flushEvery, err := getEnvAsInt("UPSERT_FLUSH_EVERY", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPSERT_FLUSH_EVERY: %w", err)
	}
	if flushEvery < 1 {
		return Config{}, fmt.Errorf("UPSERT_FLUSH_EVERY must be > 0")
	}

	cleaningPhase := strings.ToLower(strings.TrimSpace(getEnv("CLEANING_PHASE", PhaseEnriched)))
	if cleaningPhase != PhaseStructural && cleaningPhase != PhaseEnriched {
		return Config{}, fmt.Errorf("CLEANING_PHASE must be %q or %q", PhaseStructural, PhaseEnriched)
	}

	missingColThreshold, err := getEnvAsFloat("CLEAN_MISSING_COL_THRESHOLD", 0.5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLEAN_MISSING_COL_THRESHOLD: %w", err)
	}
	if missingColThreshold <= 0 || missingColThreshold > 1 {
		return Config{}, fmt.Errorf("CLEAN_MISSING_COL_THRESHOLD must be in (0, 1]")
	}

	footCSVTimeout, err := time.ParseDuration(getEnv("FOOTCSV_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTCSV_TIMEOUT: %w", err)
	}

	apiEnabled, err := strconv.ParseBool(getEnv("APIFOOTBALL_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_ENABLED: %w", err)
	}
	apiToken := strings.TrimSpace(getEnv("APIFOOTBALL_TOKEN", ""))
	if apiEnabled && apiToken == "" {
		return Config{}, fmt.Errorf("APIFOOTBALL_TOKEN is required when APIFOOTBALL_ENABLED=true")
	}
	apiTimeout, err := time.ParseDuration(getEnv("APIFOOTBALL_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_TIMEOUT: %w", err)
	}
	apiCircuitEnabled, err := strconv.ParseBool(getEnv("APIFOOTBALL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_CIRCUIT_ENABLED: %w", err)
	}
	apiCircuitFailures, err := getEnvAsInt("APIFOOTBALL_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	apiCircuitOpenFor, err := time.ParseDuration(getEnv("APIFOOTBALL_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	apiCircuitHalfOpen, err := getEnvAsInt("APIFOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	if !apiEnabled {
		defaultProviders = dropProvider(defaultProviders, "apifootball")
		for code, chain := range routing {
			routing[code] = dropProvider(chain, "apifootball")
		}
	}

	return Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("SERVICE_NAME", "matchfeed"),
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DBURL: dbURL,

		Leagues: leagues,
		Seasons: seasons,

		Routing:          routing,
		DefaultProviders: defaultProviders,

		VerifyTLS:         verifyTLS,
		RetryBudget:       retryBudget,
		RateLimitInterval: rateInterval,
		FlushEvery:        flushEvery,

		CleaningPhase:       cleaningPhase,
		MissingColThreshold: missingColThreshold,

		RawDataRoot:   getEnv("RAW_DATA_ROOT", "data/raw"),
		CleanDataRoot: getEnv("CLEAN_DATA_ROOT", "data/clean"),
		LogsRoot:      getEnv("LOGS_ROOT", "data/logs"),

		FootCSVBaseURL: strings.TrimSpace(getEnv("FOOTCSV_BASE_URL", "")),
		FootCSVTimeout: footCSVTimeout,

		APIFootballEnabled:         apiEnabled,
		APIFootballBaseURL:         strings.TrimSpace(getEnv("APIFOOTBALL_BASE_URL", "")),
		APIFootballToken:           apiToken,
		APIFootballTimeout:         apiTimeout,
		APIFootballCircuitEnabled:  apiCircuitEnabled,
		APIFootballCircuitFailures: apiCircuitFailures,
		APIFootballCircuitOpenFor:  apiCircuitOpenFor,
		APIFootballCircuitHalfOpen: apiCircuitHalfOpen,
	}, nil
}

// parseRouting reads "E0:footcsv>apifootball,SP1:apifootball" into the
// per-league provider chains.
func parseRouting(raw string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 || strings.TrimSpace(segments[0]) == "" {
			return nil, fmt.Errorf("invalid routing item %q, expected league:provider[>provider]", item)
		}
		var chain []string
		for _, provider := range strings.Split(segments[1], ">") {
			provider = strings.ToLower(strings.TrimSpace(provider))
			if provider == "" {
				return nil, fmt.Errorf("invalid routing item %q: empty provider", item)
			}
			chain = append(chain, provider)
		}
		out[strings.ToUpper(strings.TrimSpace(segments[0]))] = chain
	}
	return out, nil
}

func dropProvider(chain []string, code string) []string {
	out := chain[:0]
	for _, c := range chain {
		if c != code {
			out = append(out, c)
		}
	}
	return out
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseAppEnv(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case EnvDev:
		return EnvDev, nil
	case EnvStage, "stage":
		return EnvStage, nil
	case EnvProd, "production":
		return EnvProd, nil
	default:
		return "", fmt.Errorf("unknown APP_ENV %q", v)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}
