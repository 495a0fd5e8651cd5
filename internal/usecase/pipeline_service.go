package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oddsmith/matchfeed/internal/domain/ingestlog"
	"github.com/oddsmith/matchfeed/internal/domain/league"
	"github.com/oddsmith/matchfeed/internal/domain/source"
	"github.com/oddsmith/matchfeed/internal/platform/id"
	"github.com/oddsmith/matchfeed/internal/platform/logging"
	"github.com/oddsmith/matchfeed/internal/platform/resilience"
)

// maxUnitErrorSamples caps how many row failure messages one unit keeps.
const maxUnitErrorSamples = 5

// Unit is one (league, season) ingestion target.
type Unit struct {
	LeagueCode string
	SeasonCode string
}

// SnapshotWriter persists payload snapshots and the run log. Raw snapshots
// are written verbatim before cleaning so a broken cleaning stage never
// loses upstream bytes.
type SnapshotWriter interface {
	WriteRaw(runID, leagueCode, seasonCode string, data []byte) error
	WriteCleaned(runID, leagueCode, seasonCode string, data []byte) error
	WriteRunLog(run ingestlog.Run) error
}

// PipelineService orchestrates one ingestion run: sequential units, each
// walking fetch, clean, persist, with counters aggregated additively.
type PipelineService struct {
	router   *SourceRouter
	cleaner  *CleaningService
	upserter *UpsertService
	leagues  league.Repository
	sources  source.Repository
	runs     ingestlog.Repository
	snapshot SnapshotWriter
	pacer    *resilience.Pacer
	ids      id.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewPipelineService(
	router *SourceRouter,
	cleaner *CleaningService,
	upserter *UpsertService,
	leagues league.Repository,
	sources source.Repository,
	runs ingestlog.Repository,
	snapshot SnapshotWriter,
	pacer *resilience.Pacer,
	ids id.Generator,
	logger *logging.Logger,
) *PipelineService {
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineService{
		router:   router,
		cleaner:  cleaner,
		upserter: upserter,
		leagues:  leagues,
		sources:  sources,
		runs:     runs,
		snapshot: snapshot,
		pacer:    pacer,
		ids:      ids,
		logger:   logger,
		now:      time.Now,
	}
}

// Run ingests the units in order. Unit failures are absorbed into the run
// report; only run-level problems (no units, bookkeeping store unreachable,
// cancellation) surface as an error. The returned run is always populated
// with whatever progress was made.
func (s *PipelineService) Run(ctx context.Context, sourceLabel string, units []Unit) (ingestlog.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "PipelineService.Run")
	defer span.End()

	if len(units) == 0 {
		return ingestlog.Run{}, fmt.Errorf("%w: no units to ingest", ErrInvalidInput)
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return ingestlog.Run{}, fmt.Errorf("generate run id: %w", err)
	}

	run := ingestlog.Run{
		ID:        runID,
		Source:    sourceLabel,
		Status:    ingestlog.StatusPending,
		StartedAt: s.now(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return run, fmt.Errorf("%w: create run record: %v", ErrDependencyUnavailable, err)
	}
	run.Status = ingestlog.StatusRunning

	s.ensureSources(ctx)

	cancelled := false
	for _, unit := range units {
		// Cancellation granularity is between units, never mid-unit.
		if err := ctx.Err(); err != nil {
			cancelled = true
			run.RecordError(fmt.Sprintf("run cancelled before %s/%s: %v", unit.LeagueCode, unit.SeasonCode, err))
			break
		}
		result := s.runUnit(ctx, run.ID, unit)
		run.Units = append(run.Units, result)
		run.Counters.Add(result.Counters)
		if result.Error != "" {
			run.RecordError(fmt.Sprintf("%s/%s: %s", unit.LeagueCode, unit.SeasonCode, result.Error))
		}
	}

	run.Status = s.classifyRun(run, cancelled)
	completed := s.now()
	run.CompletedAt = &completed

	if err := s.runs.Update(ctx, run); err != nil {
		s.logger.ErrorContext(ctx, "run record update failed", "run_id", run.ID, "error", err)
	}
	if s.snapshot != nil {
		if err := s.snapshot.WriteRunLog(run); err != nil {
			s.logger.ErrorContext(ctx, "run log snapshot failed", "run_id", run.ID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "ingestion run finished",
		"run_id", run.ID, "status", string(run.Status),
		"units", len(run.Units),
		"processed", run.Counters.Processed, "inserted", run.Counters.Inserted,
		"updated", run.Counters.Updated, "skipped", run.Counters.Skipped,
		"errors", run.Counters.Errors)

	if cancelled {
		return run, ctx.Err()
	}
	return run, nil
}

// runUnit walks one unit through fetch, clean and persist. Every failure mode
// collapses into the unit result; nothing escapes to abort the run.
func (s *PipelineService) runUnit(ctx context.Context, runID string, unit Unit) ingestlog.UnitResult {
	result := ingestlog.UnitResult{LeagueCode: unit.LeagueCode, SeasonCode: unit.SeasonCode}
	log := s.logger.With("run_id", runID, "league", unit.LeagueCode, "season", unit.SeasonCode)

	if err := s.pacer.Wait(ctx); err != nil {
		result.Outcome = ingestlog.UnitFailed
		result.Error = fmt.Sprintf("rate pacing interrupted: %v", err)
		return result
	}

	feed, err := s.router.Fetch(ctx, unit.LeagueCode, unit.SeasonCode)
	if err != nil {
		return s.classifyFetchFailure(log, result, err)
	}
	result.Provider = feed.Provider

	if s.snapshot != nil && len(feed.RawBytes) > 0 {
		if err := s.snapshot.WriteRaw(runID, unit.LeagueCode, unit.SeasonCode, feed.RawBytes); err != nil {
			log.Warn("raw snapshot write failed", "error", err)
		}
	}

	if len(feed.Rows) == 0 {
		result.Outcome = ingestlog.UnitEmpty
		log.Info("unit had no rows")
		return result
	}

	candidates, cleaning, err := s.cleaner.Clean(ctx, feed)
	result.Cleaning = cleaning
	if err != nil {
		result.Outcome = ingestlog.UnitFailed
		result.Error = err.Error()
		log.Error("cleaning rejected feed", "error", err)
		return result
	}
	rejected := cleaning.RowsBefore - cleaning.RowsAfter

	if s.snapshot != nil && len(candidates) > 0 {
		if err := s.snapshot.WriteCleaned(runID, unit.LeagueCode, unit.SeasonCode, RenderCleanedCSV(candidates)); err != nil {
			log.Warn("cleaned snapshot write failed", "error", err)
		}
	}

	if len(candidates) == 0 {
		result.Counters = ingestlog.Counters{Processed: rejected, Skipped: rejected}
		result.Outcome = ingestlog.UnitRejected
		log.Warn("cleaning removed every row", "rows_before", cleaning.RowsBefore)
		return result
	}

	lg, err := s.ensureLeague(ctx, unit.LeagueCode)
	if err != nil {
		result.Outcome = ingestlog.UnitFailed
		result.Error = fmt.Sprintf("league lookup: %v", err)
		log.Error("league lookup failed", "error", err)
		return result
	}

	upserted, err := s.upserter.Upsert(ctx, lg.ID, runID, candidates)
	result.Counters = upserted.Counters
	// Cleaning rejections count as processed-and-skipped rows so the unit's
	// counters cover every upstream row.
	result.Counters.Processed += rejected
	result.Counters.Skipped += rejected
	// Keep a sample of row failures, not the whole list.
	for i, msg := range upserted.RowErrors {
		if i == maxUnitErrorSamples {
			result.Error = appendUnitError(result.Error, fmt.Sprintf("and %d more", len(upserted.RowErrors)-i))
			break
		}
		result.Error = appendUnitError(result.Error, msg)
	}
	if err != nil {
		result.Outcome = ingestlog.UnitFailed
		result.Error = appendUnitError(result.Error, err.Error())
		log.Error("persistence aborted", "error", err)
		return result
	}

	switch {
	case result.Counters.Inserted+result.Counters.Updated == 0 && result.Counters.Errors == 0:
		result.Outcome = ingestlog.UnitEmpty
	case result.Counters.Errors > 0:
		result.Outcome = ingestlog.UnitPartial
	default:
		result.Outcome = ingestlog.UnitSuccess
	}

	log.Info("unit finished",
		"outcome", string(result.Outcome),
		"processed", result.Counters.Processed,
		"inserted", result.Counters.Inserted,
		"updated", result.Counters.Updated,
		"skipped", result.Counters.Skipped,
		"errors", result.Counters.Errors)
	return result
}

func (s *PipelineService) classifyFetchFailure(log *logging.Logger, result ingestlog.UnitResult, err error) ingestlog.UnitResult {
	if errors.Is(err, ErrNotFound) {
		result.Outcome = ingestlog.UnitEmpty
		log.Info("no data published for unit", "error", err)
		return result
	}
	result.Outcome = ingestlog.UnitFailed
	result.Error = err.Error()
	log.Error("unit fetch failed", "error", err)
	return result
}

func (s *PipelineService) classifyRun(run ingestlog.Run, cancelled bool) ingestlog.Status {
	if cancelled {
		return ingestlog.StatusFailed
	}
	// A run completes as long as at least one unit produced a usable
	// outcome; a run where every unit hard-failed is itself a failure.
	for _, u := range run.Units {
		if u.Outcome != ingestlog.UnitFailed {
			return ingestlog.StatusCompleted
		}
	}
	return ingestlog.StatusFailed
}

// ensureLeague loads the league row, creating it from static metadata on
// first sight of the code.
func (s *PipelineService) ensureLeague(ctx context.Context, code string) (league.League, error) {
	code = league.NormalizeCode(code)
	lg, found, err := s.leagues.GetByCode(ctx, code)
	if err != nil {
		return league.League{}, err
	}
	if found {
		return lg, nil
	}
	return s.leagues.Create(ctx, league.FromMeta(code))
}

// ensureSources seeds provider metadata rows for the configured adapters.
// Best effort; ingestion does not depend on the rows existing.
func (s *PipelineService) ensureSources(ctx context.Context) {
	if s.sources == nil || s.router == nil {
		return
	}
	for code := range s.router.adapters {
		ds := source.DataSource{Code: code, Name: code, Enabled: true}
		if _, err := s.sources.Ensure(ctx, ds); err != nil {
			s.logger.WarnContext(ctx, "provider metadata row not ensured", "provider", code, "error", err)
		}
	}
}

func appendUnitError(existing, msg string) string {
	if existing == "" {
		return msg
	}
	return existing + "; " + msg
}
