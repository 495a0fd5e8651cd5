package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oddsmith/matchfeed/internal/app"
	"github.com/oddsmith/matchfeed/internal/config"
	"github.com/oddsmith/matchfeed/internal/domain/ingestlog"
	"github.com/oddsmith/matchfeed/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
	)
	logging.SetDefault(logger)
	defer logger.Sync()

	pipeline, err := app.NewPipeline(cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	label := "manual"
	if len(os.Args) > 1 {
		label = os.Args[1]
	}

	run, err := pipeline.Service.Run(ctx, label, pipeline.Units)
	if err != nil {
		logger.Error("ingestion run failed", "run_id", run.ID, "error", err)
		os.Exit(1)
	}
	if run.Status == ingestlog.StatusFailed {
		logger.Error("ingestion run failed", "run_id", run.ID)
		os.Exit(1)
	}
}
