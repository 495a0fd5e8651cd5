package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/matchfeed?sslmode=disable")
	t.Setenv("INGEST_SEASONS", "2324,2425")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppEnv != EnvDev {
		t.Fatalf("app env=%q", cfg.AppEnv)
	}
	if len(cfg.Leagues) != 1 || cfg.Leagues[0] != "E0" {
		t.Fatalf("leagues=%v", cfg.Leagues)
	}
	if len(cfg.Seasons) != 2 {
		t.Fatalf("seasons=%v", cfg.Seasons)
	}
	if cfg.RetryBudget != 3 || cfg.FlushEvery != 50 {
		t.Fatalf("retry=%d flush=%d", cfg.RetryBudget, cfg.FlushEvery)
	}
	if cfg.RateLimitInterval != 6*time.Second {
		t.Fatalf("rate interval=%v", cfg.RateLimitInterval)
	}
	if cfg.CleaningPhase != PhaseEnriched {
		t.Fatalf("phase=%q", cfg.CleaningPhase)
	}
	if cfg.MissingColThreshold != 0.5 {
		t.Fatalf("threshold=%v", cfg.MissingColThreshold)
	}
	// The JSON provider is disabled by default, so it drops out of the
	// default chain.
	if len(cfg.DefaultProviders) != 1 || cfg.DefaultProviders[0] != "footcsv" {
		t.Fatalf("default providers=%v", cfg.DefaultProviders)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("INGEST_SEASONS", "2324")

	if _, err := Load(); err == nil {
		t.Fatal("missing DATABASE_URL must fail")
	}
}

func TestLoad_RequiresSeasons(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/matchfeed")
	t.Setenv("INGEST_SEASONS", "")

	if _, err := Load(); err == nil {
		t.Fatal("missing INGEST_SEASONS must fail")
	}
}

func TestLoad_Routing(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APIFOOTBALL_ENABLED", "true")
	t.Setenv("APIFOOTBALL_TOKEN", "token")
	t.Setenv("SOURCE_ROUTING", "E0:footcsv>apifootball, sp1:apifootball")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if chain := cfg.Routing["E0"]; len(chain) != 2 || chain[0] != "footcsv" || chain[1] != "apifootball" {
		t.Fatalf("E0 chain=%v", chain)
	}
	if chain := cfg.Routing["SP1"]; len(chain) != 1 || chain[0] != "apifootball" {
		t.Fatalf("SP1 chain=%v", chain)
	}
}

func TestLoad_InvalidRouting(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SOURCE_ROUTING", "E0")

	if _, err := Load(); err == nil {
		t.Fatal("routing without a provider chain must fail")
	}
}

func TestLoad_APITokenRequiredWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APIFOOTBALL_ENABLED", "true")
	t.Setenv("APIFOOTBALL_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("enabled JSON provider without a token must fail")
	}
}

func TestLoad_BoundsChecks(t *testing.T) {
	cases := map[string]string{
		"FETCH_RETRY_BUDGET":          "0",
		"UPSERT_FLUSH_EVERY":          "0",
		"CLEANING_PHASE":              "aggressive",
		"CLEAN_MISSING_COL_THRESHOLD": "1.5",
		"RATE_LIMIT_INTERVAL":         "-2s",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s must fail validation", key, value)
			}
		})
	}
}
