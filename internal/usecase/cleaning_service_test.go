package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/oddsmith/matchfeed/internal/platform/logging"
)

func testFeed(header []string, rows [][]string) Feed {
	return Feed{
		Provider:   "footcsv",
		LeagueCode: "E0",
		SeasonCode: "2324",
		Header:     header,
		Rows:       rows,
	}
}

func TestCleaningService_Structural(t *testing.T) {
	svc := NewCleaningService(PhaseStructural, 0.5, logging.NewNop())

	t.Run("rejects rows and keeps the stats consistent", func(t *testing.T) {
		feed := testFeed(
			[]string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG"},
			[][]string{
				{"01/08/2023", "Alpha FC", "Beta FC", "2", "1"},
				{"bad-date", "Gamma", "Delta", "0", "0"},
				{"02/08/2023", "", "Zeta", "1", "1"},
				{"03/08/2023", "Eta", "Theta", "x", "1"},
			},
		)

		candidates, stats, err := svc.Clean(context.Background(), feed)
		if err != nil {
			t.Fatalf("clean: %v", err)
		}
		if len(candidates) != 1 {
			t.Fatalf("candidates=%d, want 1", len(candidates))
		}
		if stats.RemovedInvalidDate != 1 || stats.RemovedMissingField != 1 || stats.RemovedUnparsable != 1 {
			t.Fatalf("unexpected rejection stats: %+v", stats)
		}
		if !stats.Consistent() {
			t.Fatalf("inconsistent cleaning stats: %+v", stats)
		}
	})

	t.Run("header without required columns is invalid content", func(t *testing.T) {
		feed := testFeed([]string{"Date", "HomeTeam"}, [][]string{{"01/08/2023", "Alpha"}})
		_, _, err := svc.Clean(context.Background(), feed)
		if !errors.Is(err, ErrInvalidContent) {
			t.Fatalf("err=%v, want ErrInvalidContent", err)
		}
	})

	t.Run("structural phase skips enrichment", func(t *testing.T) {
		feed := testFeed(
			[]string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "AvgH", "AvgD", "AvgA"},
			[][]string{{"01/08/2023", "Alpha FC", "Beta FC", "2", "1", "2.0", "3.5", "4.0"}},
		)
		candidates, stats, err := svc.Clean(context.Background(), feed)
		if err != nil {
			t.Fatalf("clean: %v", err)
		}
		if candidates[0].ProbHome != nil || candidates[0].TotalGoals != nil {
			t.Fatal("structural phase must not derive features")
		}
		if len(stats.FeaturesCreated) != 0 {
			t.Fatalf("features=%v, want none", stats.FeaturesCreated)
		}
	})
}

func TestCleaningService_DropsSparseColumns(t *testing.T) {
	svc := NewCleaningService(PhaseStructural, 0.5, logging.NewNop())

	rows := make([][]string, 0, 12)
	rows = append(rows, []string{"01/08/2023", "A0", "B0", "1", "0", "2.5"})
	for i := 1; i < 12; i++ {
		day := fmt.Sprintf("%02d/08/2023", i+1)
		rows = append(rows, []string{day, fmt.Sprintf("A%d", i), fmt.Sprintf("B%d", i), "1", "0", ""})
	}
	feed := testFeed([]string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "AvgH"}, rows)

	candidates, stats, err := svc.Clean(context.Background(), feed)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if len(stats.ColumnsDropped) != 1 || stats.ColumnsDropped[0] != FieldOddsHome {
		t.Fatalf("dropped=%v, want [odds_home]", stats.ColumnsDropped)
	}
	// The one populated cell must not survive a dropped column.
	if candidates[0].OddsHome != nil {
		t.Fatal("value leaked through a dropped column")
	}
}

func TestCleaningService_NoColumnStatsOnTinyBatches(t *testing.T) {
	svc := NewCleaningService(PhaseStructural, 0.5, logging.NewNop())
	feed := testFeed(
		[]string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "AvgH"},
		[][]string{
			{"01/08/2023", "A", "B", "1", "0", "2.5"},
			{"02/08/2023", "C", "D", "1", "0", ""},
			{"03/08/2023", "E", "F", "1", "0", ""},
		},
	)

	candidates, stats, err := svc.Clean(context.Background(), feed)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if len(stats.ColumnsDropped) != 0 {
		t.Fatalf("dropped=%v, want none on a tiny batch", stats.ColumnsDropped)
	}
	if candidates[0].OddsHome == nil {
		t.Fatal("populated value lost without a column drop")
	}
}

func TestCleaningService_Enriched(t *testing.T) {
	svc := NewCleaningService(PhaseEnriched, 0.5, logging.NewNop())

	t.Run("derives probabilities and goal features", func(t *testing.T) {
		feed := testFeed(
			[]string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "AvgH", "AvgD", "AvgA"},
			[][]string{
				{"01/08/2023", "Alpha FC", "Beta FC", "2", "1", "2.0", "3.5", "4.0"},
				{"02/08/2023", "Gamma", "Delta", "0", "0", "", "", ""},
			},
		)

		candidates, stats, err := svc.Clean(context.Background(), feed)
		if err != nil {
			t.Fatalf("clean: %v", err)
		}

		first := candidates[0]
		if first.ProbHome == nil || first.ProbDraw == nil || first.ProbAway == nil {
			t.Fatal("probabilities not derived for full odds triple")
		}
		sum := *first.ProbHome + *first.ProbDraw + *first.ProbAway
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("probabilities sum to %v, want 1", sum)
		}
		if math.Abs(*first.ProbHome-0.482759) > 5e-4 {
			t.Fatalf("home probability %v, want ~0.482759", *first.ProbHome)
		}
		if *first.TotalGoals != 3 || *first.GoalDifference != 1 {
			t.Fatalf("goal features: total=%d diff=%d", *first.TotalGoals, *first.GoalDifference)
		}

		second := candidates[1]
		if second.ProbHome != nil {
			t.Fatal("probabilities must stay nil without an odds triple")
		}
		if *second.TotalGoals != 0 || *second.GoalDifference != 0 {
			t.Fatal("goal features missing on odds-free row")
		}

		if len(stats.FeaturesCreated) == 0 {
			t.Fatal("feature list empty")
		}
	})

	t.Run("imputes cards from the feed median at four samples", func(t *testing.T) {
		feed := testFeed(
			[]string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "HY"},
			[][]string{
				{"01/08/2023", "A", "B", "1", "0", "1"},
				{"02/08/2023", "C", "D", "1", "0", "2"},
				{"03/08/2023", "E", "F", "1", "0", "2"},
				{"04/08/2023", "G", "H", "1", "0", "5"},
				{"05/08/2023", "I", "J", "1", "0", ""},
			},
		)

		candidates, stats, err := svc.Clean(context.Background(), feed)
		if err != nil {
			t.Fatalf("clean: %v", err)
		}
		last := candidates[4]
		if last.HomeYellowCards == nil || *last.HomeYellowCards != 2 {
			t.Fatalf("imputed cards=%v, want median 2", last.HomeYellowCards)
		}
		if stats.ValuesImputed != 1 {
			t.Fatalf("values_imputed=%d, want 1", stats.ValuesImputed)
		}
	})

	t.Run("too few samples means no imputation", func(t *testing.T) {
		feed := testFeed(
			[]string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "HY"},
			[][]string{
				{"01/08/2023", "A", "B", "1", "0", "1"},
				{"02/08/2023", "C", "D", "1", "0", "2"},
				{"03/08/2023", "E", "F", "1", "0", "2"},
				{"04/08/2023", "G", "H", "1", "0", ""},
				{"05/08/2023", "I", "J", "1", "0", ""},
			},
		)

		candidates, stats, err := svc.Clean(context.Background(), feed)
		if err != nil {
			t.Fatalf("clean: %v", err)
		}
		if candidates[3].HomeYellowCards != nil {
			t.Fatal("imputed from too small a population")
		}
		if stats.ValuesImputed != 0 {
			t.Fatalf("values_imputed=%d, want 0", stats.ValuesImputed)
		}
	})

	t.Run("odds are never imputed", func(t *testing.T) {
		feed := testFeed(
			[]string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "AvgH", "AvgD", "AvgA"},
			[][]string{
				{"01/08/2023", "A", "B", "1", "0", "2.0", "3.5", "4.0"},
				{"02/08/2023", "C", "D", "1", "0", "2.1", "3.4", "3.9"},
				{"03/08/2023", "E", "F", "1", "0", "2.2", "3.3", "3.8"},
				{"04/08/2023", "G", "H", "1", "0", "2.3", "3.2", "3.7"},
				{"05/08/2023", "I", "J", "1", "0", "", "", ""},
			},
		)

		candidates, _, err := svc.Clean(context.Background(), feed)
		if err != nil {
			t.Fatalf("clean: %v", err)
		}
		if candidates[4].OddsHome != nil || candidates[4].ProbHome != nil {
			t.Fatal("odds must never be imputed")
		}
	})
}

func TestRenderCleanedCSV(t *testing.T) {
	feed := testFeed(
		[]string{"Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG"},
		[][]string{{"01/08/2023", "Alpha, FC", "Beta FC", "2", "1"}},
	)
	svc := NewCleaningService(PhaseStructural, 0.5, logging.NewNop())
	candidates, _, err := svc.Clean(context.Background(), feed)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}

	out := string(RenderCleanedCSV(candidates))
	wantLine := `2023-08-01,"Alpha, FC",Beta FC,2,1,H,,,,,,,,,,,,,,`
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines=%d, want header plus one row", len(lines))
	}
	if lines[1] != wantLine {
		t.Fatalf("row=%q, want %q", lines[1], wantLine)
	}
}
