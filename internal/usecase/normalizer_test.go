package usecase

import (
	"errors"
	"testing"
	"time"
)

func TestResolveSchema(t *testing.T) {
	t.Run("first alias wins", func(t *testing.T) {
		header := []string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "B365H", "AvgH"}
		schema := ResolveSchema(header)

		pos, ok := schema.index[FieldOddsHome]
		if !ok {
			t.Fatal("odds_home not resolved")
		}
		// AvgH precedes B365H in the alias table even though B365H comes
		// first in the header.
		if pos != 6 {
			t.Fatalf("odds_home resolved to column %d, want 6 (AvgH)", pos)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		schema := ResolveSchema([]string{"date", "hometeam", "AWAYTEAM", "fthg", "ftag"})
		if missing := schema.MissingRequired(); len(missing) != 0 {
			t.Fatalf("unexpected missing fields: %v", missing)
		}
	})

	t.Run("reports missing required columns", func(t *testing.T) {
		schema := ResolveSchema([]string{"Date", "HomeTeam", "AwayTeam"})
		missing := schema.MissingRequired()
		if len(missing) != 2 {
			t.Fatalf("missing=%v, want home and away goals", missing)
		}
	})
}

func fullSchema() Schema {
	return ResolveSchema([]string{"Date", "Time", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "HTHG", "HTAG", "AvgH", "AvgD", "AvgA", "HY", "AY", "HR", "AR"})
}

func TestNormalize(t *testing.T) {
	schema := fullSchema()

	t.Run("full row", func(t *testing.T) {
		row := []string{"01/08/2023", "15:00", "Alpha FC", "Beta FC", "2", "1", "1", "0", "2.0", "3.5", "4.0", "2", "3", "0", "1"}
		c, err := Normalize(row, schema)
		if err != nil {
			t.Fatalf("normalize: %v", err)
		}
		if !c.MatchDate.Equal(time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected date: %v", c.MatchDate)
		}
		if c.HomeTeam != "Alpha FC" || c.AwayTeam != "Beta FC" {
			t.Fatalf("unexpected teams: %q vs %q", c.HomeTeam, c.AwayTeam)
		}
		if c.HomeGoals != 2 || c.AwayGoals != 1 || c.Result != "H" {
			t.Fatalf("unexpected score: %d-%d %s", c.HomeGoals, c.AwayGoals, c.Result)
		}
		if !c.HasOddsTriple() || *c.OddsHome != 2.0 {
			t.Fatal("odds triple not parsed")
		}
		if c.HalfTimeHomeGoals == nil || *c.HalfTimeHomeGoals != 1 {
			t.Fatal("half-time goals not parsed")
		}
		if c.KickoffTime == nil || *c.KickoffTime != "15:00" {
			t.Fatal("kickoff time not parsed")
		}
	})

	t.Run("zero goals are not absence", func(t *testing.T) {
		row := []string{"02/08/2023", "", "Gamma", "Delta", "0", "0", "", "", "", "", "", "", "", "", ""}
		c, err := Normalize(row, schema)
		if err != nil {
			t.Fatalf("normalize: %v", err)
		}
		if c.HomeGoals != 0 || c.AwayGoals != 0 || c.Result != "D" {
			t.Fatalf("unexpected score: %d-%d %s", c.HomeGoals, c.AwayGoals, c.Result)
		}
		if c.OddsHome != nil || c.HalfTimeHomeGoals != nil || c.KickoffTime != nil {
			t.Fatal("absent optionals must stay nil")
		}
	})

	t.Run("bad date rejects with invalid_date", func(t *testing.T) {
		row := []string{"bad-date", "", "Epsilon", "Zeta", "1", "1", "", "", "", "", "", "", "", "", ""}
		_, err := Normalize(row, schema)
		rowErr, ok := AsRowError(err)
		if !ok || rowErr.Reason != ReasonInvalidDate {
			t.Fatalf("err=%v, want invalid_date rejection", err)
		}
	})

	t.Run("implausible year rejects", func(t *testing.T) {
		row := []string{"01/08/1850", "", "Epsilon", "Zeta", "1", "1", "", "", "", "", "", "", "", "", ""}
		_, err := Normalize(row, schema)
		rowErr, ok := AsRowError(err)
		if !ok || rowErr.Reason != ReasonInvalidDate {
			t.Fatalf("err=%v, want invalid_date rejection", err)
		}
	})

	t.Run("missing team rejects with missing_critical_field", func(t *testing.T) {
		row := []string{"01/08/2023", "", "", "Zeta", "1", "1", "", "", "", "", "", "", "", "", ""}
		_, err := Normalize(row, schema)
		rowErr, ok := AsRowError(err)
		if !ok || rowErr.Reason != ReasonMissingField {
			t.Fatalf("err=%v, want missing_critical_field rejection", err)
		}
	})

	t.Run("non-numeric goals reject with unparsable_number", func(t *testing.T) {
		row := []string{"01/08/2023", "", "Epsilon", "Zeta", "two", "1", "", "", "", "", "", "", "", "", ""}
		_, err := Normalize(row, schema)
		rowErr, ok := AsRowError(err)
		if !ok || rowErr.Reason != ReasonUnparsableNumber {
			t.Fatalf("err=%v, want unparsable_number rejection", err)
		}
	})

	t.Run("partial half-time pair nulls both", func(t *testing.T) {
		row := []string{"01/08/2023", "", "Epsilon", "Zeta", "1", "1", "1", "", "", "", "", "", "", "", ""}
		c, err := Normalize(row, schema)
		if err != nil {
			t.Fatalf("normalize: %v", err)
		}
		if c.HalfTimeHomeGoals != nil || c.HalfTimeAwayGoals != nil {
			t.Fatal("partial half-time pair must null both sides")
		}
	})

	t.Run("odds at or below 1 stay nil", func(t *testing.T) {
		row := []string{"01/08/2023", "", "Epsilon", "Zeta", "1", "1", "", "", "1.0", "0.5", "-2", "", "", "", ""}
		c, err := Normalize(row, schema)
		if err != nil {
			t.Fatalf("normalize: %v", err)
		}
		if c.OddsHome != nil || c.OddsDraw != nil || c.OddsAway != nil {
			t.Fatal("invalid prices must stay nil")
		}
	})
}

func TestParseFeedDate_Formats(t *testing.T) {
	want := time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"01/08/2023", "01/08/23", "2023-08-01", "01-08-2023", "2023/08/01"} {
		got, err := parseFeedDate(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q: got %v, want %v", raw, got, want)
		}
	}
}

func TestAsRowError_ForeignError(t *testing.T) {
	if _, ok := AsRowError(errors.New("boom")); ok {
		t.Fatal("plain error must not match RowError")
	}
}
