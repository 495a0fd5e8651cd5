package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oddsmith/matchfeed/internal/domain/ingestlog"
)

func TestWriter_PayloadPartitioning(t *testing.T) {
	rawRoot := t.TempDir()
	cleanRoot := t.TempDir()
	w := NewWriter(rawRoot, cleanRoot, t.TempDir())

	if err := w.WriteRaw("run-1", "E0", "2324", []byte("raw,csv\n")); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	if err := w.WriteCleaned("run-1", "E0", "2324", []byte("clean,csv\n")); err != nil {
		t.Fatalf("write cleaned: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(rawRoot, "run-1", "E0", "E0_2324.csv"))
	if err != nil {
		t.Fatalf("read raw snapshot: %v", err)
	}
	if string(raw) != "raw,csv\n" {
		t.Fatalf("raw snapshot=%q", raw)
	}

	// Cleaned tree mirrors the raw partitioning.
	if _, err := os.Stat(filepath.Join(cleanRoot, "run-1", "E0", "E0_2324.csv")); err != nil {
		t.Fatalf("cleaned snapshot: %v", err)
	}
}

func TestWriter_RawJSONGetsJSONExtension(t *testing.T) {
	rawRoot := t.TempDir()
	w := NewWriter(rawRoot, t.TempDir(), t.TempDir())

	if err := w.WriteRaw("run-1", "SP1", "2324", []byte(`{"matches":[]}`)); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	if _, err := os.Stat(filepath.Join(rawRoot, "run-1", "SP1", "SP1_2324.json")); err != nil {
		t.Fatalf("json snapshot: %v", err)
	}
}

func TestWriter_RunLogGoesToAllThreeTargets(t *testing.T) {
	rawRoot := t.TempDir()
	cleanRoot := t.TempDir()
	logsRoot := t.TempDir()
	w := NewWriter(rawRoot, cleanRoot, logsRoot)

	completed := time.Date(2023, time.August, 2, 3, 0, 0, 0, time.UTC)
	run := ingestlog.Run{
		ID:          "run-1",
		Source:      "nightly",
		Status:      ingestlog.StatusCompleted,
		StartedAt:   completed.Add(-time.Hour),
		CompletedAt: &completed,
		Counters:    ingestlog.Counters{Processed: 3, Inserted: 2, Skipped: 1},
		Units: []ingestlog.UnitResult{
			{LeagueCode: "E0", SeasonCode: "2324", Outcome: ingestlog.UnitSuccess,
				Counters: ingestlog.Counters{Processed: 3, Inserted: 2, Skipped: 1}},
		},
		Errors: []string{"E1/2223: gone"},
	}

	if err := w.WriteRunLog(run); err != nil {
		t.Fatalf("write run log: %v", err)
	}

	for _, dir := range []string{
		filepath.Join(rawRoot, "run-1"),
		filepath.Join(cleanRoot, "run-1"),
		logsRoot,
	} {
		if _, err := os.Stat(filepath.Join(dir, "run_run-1.json")); err != nil {
			t.Fatalf("json log missing in %s: %v", dir, err)
		}
		if _, err := os.Stat(filepath.Join(dir, "run_run-1.log")); err != nil {
			t.Fatalf("text log missing in %s: %v", dir, err)
		}
	}

	text, err := os.ReadFile(filepath.Join(logsRoot, "run_run-1.log"))
	if err != nil {
		t.Fatalf("read text log: %v", err)
	}
	for _, want := range []string{"status=completed", "E0/2324 success", "processed=3", "E1/2223: gone"} {
		if !strings.Contains(string(text), want) {
			t.Fatalf("text log missing %q:\n%s", want, text)
		}
	}
}
