package postgres

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/oddsmith/matchfeed/internal/domain/ingestlog"
	"github.com/oddsmith/matchfeed/internal/domain/match"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatal("sql.ErrNoRows must classify as not found")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatal("arbitrary errors are not not-found")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatal("23505 must classify as unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatal("foreign key violation is not a unique violation")
	}
}

func TestMatchModelRoundTrip(t *testing.T) {
	odds := 2.0
	ht := 1
	m := match.Match{
		ID:                7,
		LeagueID:          1,
		HomeTeamID:        10,
		AwayTeamID:        11,
		MatchDate:         time.Date(2023, time.August, 1, 19, 45, 0, 0, time.UTC),
		HomeGoals:         2,
		AwayGoals:         1,
		Result:            match.ResultHome,
		HalfTimeHomeGoals: &ht,
		OddsHome:          &odds,
		BatchID:           "batch-1",
	}

	got := toMatchModel(m).toDomain()
	if !got.MatchDate.Equal(match.DateOnly(m.MatchDate)) {
		t.Fatalf("date=%v, want date-only", got.MatchDate)
	}
	if got.Result != match.ResultHome || got.HomeGoals != 2 {
		t.Fatalf("round trip lost required fields: %+v", got)
	}
	if got.OddsHome == nil || *got.OddsHome != odds {
		t.Fatal("round trip lost odds")
	}
	if got.OddsDraw != nil {
		t.Fatal("nil optional became non-nil")
	}
	if got.BatchID != "batch-1" {
		t.Fatalf("batch id=%q", got.BatchID)
	}
}

func TestIngestLogModelEncodesJSON(t *testing.T) {
	completed := time.Date(2023, time.August, 1, 3, 0, 0, 0, time.UTC)
	run := ingestlog.Run{
		ID:          "run-1",
		Source:      "nightly",
		Status:      ingestlog.StatusCompleted,
		StartedAt:   completed.Add(-time.Hour),
		CompletedAt: &completed,
		Counters:    ingestlog.Counters{Processed: 3, Inserted: 2, Skipped: 1},
		Units: []ingestlog.UnitResult{
			{LeagueCode: "E0", SeasonCode: "2324", Outcome: ingestlog.UnitSuccess},
		},
		Errors: []string{"E0/2223: gone"},
	}

	row, err := toIngestLogModel(run)
	if err != nil {
		t.Fatalf("to model: %v", err)
	}
	if row.Processed != 3 || row.Inserted != 2 || row.Skipped != 1 {
		t.Fatalf("counters: %+v", row)
	}
	if len(row.Units) == 0 || len(row.ErrorMessages) == 0 {
		t.Fatal("JSON columns empty")
	}
}
