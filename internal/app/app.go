package app

import (
	"fmt"

	"github.com/oddsmith/matchfeed/external/apifootball"
	"github.com/oddsmith/matchfeed/external/footcsv"
	"github.com/oddsmith/matchfeed/internal/config"
	"github.com/oddsmith/matchfeed/internal/infrastructure/repository/cache"
	"github.com/oddsmith/matchfeed/internal/infrastructure/repository/postgres"
	"github.com/oddsmith/matchfeed/internal/infrastructure/snapshot"
	"github.com/oddsmith/matchfeed/internal/platform/id"
	"github.com/oddsmith/matchfeed/internal/platform/logging"
	"github.com/oddsmith/matchfeed/internal/platform/resilience"
	"github.com/oddsmith/matchfeed/internal/usecase"
)

// Pipeline bundles the wired orchestrator with the run targets derived from
// configuration and the database handle's close function.
type Pipeline struct {
	Service *usecase.PipelineService
	Units   []usecase.Unit
	Close   func() error
}

// NewPipeline wires the full ingestion stack: providers behind the router,
// cleaning, the upsert engine over postgres, snapshots and run bookkeeping.
func NewPipeline(cfg config.Config, logger *logging.Logger) (*Pipeline, error) {
	db, err := openDB(cfg.DBURL)
	if err != nil {
		return nil, err
	}

	// One pacer across the orchestrator and the paginated adapter: every
	// external request, page or unit, honors the same interval floor.
	pacer := resilience.NewPacer(cfg.RateLimitInterval)

	adapters := []usecase.SourceAdapter{
		footcsv.NewClient(footcsv.ClientConfig{
			BaseURL:    cfg.FootCSVBaseURL,
			Timeout:    cfg.FootCSVTimeout,
			MaxRetries: cfg.RetryBudget,
			VerifyTLS:  cfg.VerifyTLS,
			Logger:     logger,
		}),
	}
	if cfg.APIFootballEnabled {
		adapters = append(adapters, apifootball.NewClient(apifootball.ClientConfig{
			BaseURL:    cfg.APIFootballBaseURL,
			Token:      cfg.APIFootballToken,
			Timeout:    cfg.APIFootballTimeout,
			MaxRetries: cfg.RetryBudget,
			Logger:     logger,
			Pacer:      pacer,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.APIFootballCircuitEnabled,
				FailureThreshold: cfg.APIFootballCircuitFailures,
				OpenTimeout:      cfg.APIFootballCircuitOpenFor,
				HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpen,
			},
		}))
	}

	router, err := usecase.NewSourceRouter(adapters, cfg.Routing, cfg.DefaultProviders, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build source router: %w", err)
	}

	cleaner := usecase.NewCleaningService(
		usecase.CleaningPhase(cfg.CleaningPhase),
		cfg.MissingColThreshold,
		logger,
	)
	upserter := usecase.NewUpsertService(
		postgres.NewMatchRepository(db),
		cache.NewTeamResolver(postgres.NewTeamRepository(db)),
		cfg.FlushEvery,
		logger,
	)

	service := usecase.NewPipelineService(
		router,
		cleaner,
		upserter,
		postgres.NewLeagueRepository(db),
		postgres.NewSourceRepository(db),
		postgres.NewIngestLogRepository(db),
		snapshot.NewWriter(cfg.RawDataRoot, cfg.CleanDataRoot, cfg.LogsRoot),
		pacer,
		id.NewRandomGenerator(),
		logger,
	)

	return &Pipeline{
		Service: service,
		Units:   buildUnits(cfg.Leagues, cfg.Seasons),
		Close:   db.Close,
	}, nil
}

// buildUnits orders targets league-major so one league's seasons land
// together in the run report.
func buildUnits(leagues, seasons []string) []usecase.Unit {
	units := make([]usecase.Unit, 0, len(leagues)*len(seasons))
	for _, leagueCode := range leagues {
		for _, seasonCode := range seasons {
			units = append(units, usecase.Unit{LeagueCode: leagueCode, SeasonCode: seasonCode})
		}
	}
	return units
}
