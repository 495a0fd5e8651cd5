package usecase

import (
	"context"
	"fmt"

	"github.com/oddsmith/matchfeed/internal/domain/ingestlog"
	"github.com/oddsmith/matchfeed/internal/domain/match"
	"github.com/oddsmith/matchfeed/internal/domain/team"
	"github.com/oddsmith/matchfeed/internal/platform/logging"
)

// DefaultFlushEvery flushes the write batch after this many persisted rows.
const DefaultFlushEvery = 50

// SkipReasonUnresolvedTeam marks rows dropped because a side could not be
// resolved or created.
const SkipReasonUnresolvedTeam = "unresolved_team"

// UpsertService persists candidates with natural-key deduplication. Rows for
// a (home, away, date) key that already exists are merged into the stored
// record instead of duplicated, so re-running a season is idempotent.
type UpsertService struct {
	matches    match.Repository
	teams      team.Resolver
	flushEvery int
	logger     *logging.Logger
}

func NewUpsertService(matches match.Repository, teams team.Resolver, flushEvery int, logger *logging.Logger) *UpsertService {
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &UpsertService{matches: matches, teams: teams, flushEvery: flushEvery, logger: logger}
}

// UpsertResult is what one persisted unit reports back to the orchestrator.
type UpsertResult struct {
	Counters ingestlog.Counters
	// RowErrors carries the individual row failure messages, capped by the
	// run log when recorded.
	RowErrors []string
	// SkipReasons counts skipped rows by reason.
	SkipReasons map[string]int
}

// Upsert writes candidates in flush-sized sub-batches. A row failure is
// counted and skipped over, never aborts the unit; a failed flush converts
// the sub-batch's in-flight inserted and updated counts into errors so the
// counter identity still holds.
func (s *UpsertService) Upsert(ctx context.Context, leagueID int64, batchID string, candidates []match.Candidate) (UpsertResult, error) {
	ctx, span := startUsecaseSpan(ctx, "UpsertService.Upsert")
	defer span.End()

	res := UpsertResult{SkipReasons: map[string]int{}}
	res.Counters.Processed = len(candidates)

	batch, err := s.matches.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("%w: begin batch: %v", ErrDependencyUnavailable, err)
	}
	inFlightInserted, inFlightUpdated := 0, 0

	flush := func() error {
		if inFlightInserted+inFlightUpdated == 0 {
			return batch.Commit()
		}
		if err := batch.Commit(); err != nil {
			res.Counters.Errors += inFlightInserted + inFlightUpdated
			res.Counters.Inserted -= inFlightInserted
			res.Counters.Updated -= inFlightUpdated
			res.RowErrors = append(res.RowErrors, fmt.Sprintf("flush failed, %d rows lost: %v", inFlightInserted+inFlightUpdated, err))
			return err
		}
		return nil
	}

	for i := range candidates {
		if err := ctx.Err(); err != nil {
			if rbErr := batch.Rollback(); rbErr != nil {
				s.logger.WarnContext(ctx, "rollback after cancellation failed", "error", rbErr)
			}
			res.Counters.Errors += inFlightInserted + inFlightUpdated
			res.Counters.Inserted -= inFlightInserted
			res.Counters.Updated -= inFlightUpdated
			remaining := len(candidates) - i
			res.Counters.Skipped += remaining
			res.SkipReasons["cancelled"] += remaining
			return res, err
		}

		outcome, err := s.upsertOne(ctx, batch, leagueID, batchID, candidates[i])
		switch {
		case err != nil:
			res.Counters.Errors++
			res.RowErrors = append(res.RowErrors, err.Error())
		case outcome == rowSkipped:
			res.Counters.Skipped++
			res.SkipReasons[SkipReasonUnresolvedTeam]++
		case outcome == rowInserted:
			res.Counters.Inserted++
			inFlightInserted++
		case outcome == rowUpdated:
			res.Counters.Updated++
			inFlightUpdated++
		}

		if inFlightInserted+inFlightUpdated >= s.flushEvery {
			if err := flush(); err != nil {
				s.logger.ErrorContext(ctx, "batch flush failed", "error", err)
			}
			inFlightInserted, inFlightUpdated = 0, 0
			if batch, err = s.matches.Begin(ctx); err != nil {
				remaining := len(candidates) - i - 1
				res.Counters.Skipped += remaining
				res.SkipReasons["batch_unavailable"] += remaining
				return res, fmt.Errorf("%w: reopen batch: %v", ErrDependencyUnavailable, err)
			}
		}
	}

	if err := flush(); err != nil {
		s.logger.ErrorContext(ctx, "final batch flush failed", "error", err)
	}
	return res, nil
}

type rowOutcome int

const (
	rowSkipped rowOutcome = iota
	rowInserted
	rowUpdated
)

func (s *UpsertService) upsertOne(ctx context.Context, batch match.Batch, leagueID int64, batchID string, c match.Candidate) (rowOutcome, error) {
	homeID, ok := s.resolveTeam(ctx, c.HomeTeam, leagueID)
	if !ok {
		return rowSkipped, nil
	}
	awayID, ok := s.resolveTeam(ctx, c.AwayTeam, leagueID)
	if !ok {
		return rowSkipped, nil
	}

	incoming := c.ToMatch(leagueID, homeID, awayID, batchID)
	stored, found, err := batch.FindByKey(ctx, incoming.Key())
	if err != nil {
		return rowSkipped, fmt.Errorf("lookup %s vs %s on %s: %v", c.HomeTeam, c.AwayTeam, incoming.MatchDate.Format("2006-01-02"), err)
	}

	if !found {
		if err := batch.Insert(ctx, &incoming); err != nil {
			return rowSkipped, fmt.Errorf("insert %s vs %s on %s: %v", c.HomeTeam, c.AwayTeam, incoming.MatchDate.Format("2006-01-02"), err)
		}
		return rowInserted, nil
	}

	merged := match.Merge(stored, incoming)
	if err := batch.Update(ctx, merged); err != nil {
		return rowSkipped, fmt.Errorf("update %s vs %s on %s: %v", c.HomeTeam, c.AwayTeam, incoming.MatchDate.Format("2006-01-02"), err)
	}
	return rowUpdated, nil
}

// resolveTeam looks a side up and lazily creates it when unresolved. A
// creation failure leaves the row skippable instead of failing the unit.
func (s *UpsertService) resolveTeam(ctx context.Context, name string, leagueID int64) (int64, bool) {
	t, ok, err := s.teams.Resolve(ctx, name, leagueID)
	if err == nil && ok {
		return t.ID, true
	}
	if err != nil {
		s.logger.WarnContext(ctx, "team resolution errored", "team", name, "league_id", leagueID, "error", err)
	}

	created, err := s.teams.CreateIfNotExists(ctx, name, leagueID)
	if err != nil {
		s.logger.WarnContext(ctx, "team creation failed, skipping row", "team", name, "league_id", leagueID, "error", err)
		return 0, false
	}
	return created.ID, true
}
