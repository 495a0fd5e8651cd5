package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/oddsmith/matchfeed/internal/domain/ingestlog"
)

const dirPerm = 0o755

// Writer persists payload snapshots and run logs on the local filesystem.
// Raw and cleaned payloads partition the same way, one file per
// (run, league, season), so the cleaned tree mirrors the raw tree.
type Writer struct {
	rawRoot   string
	cleanRoot string
	logsRoot  string
}

func NewWriter(rawRoot, cleanRoot, logsRoot string) *Writer {
	return &Writer{rawRoot: rawRoot, cleanRoot: cleanRoot, logsRoot: logsRoot}
}

// WriteRaw keeps the provider payload verbatim. JSON page sets get a .json
// extension so operators can tell the source format apart.
func (w *Writer) WriteRaw(runID, leagueCode, seasonCode string, data []byte) error {
	return writeFile(payloadPath(w.rawRoot, runID, leagueCode, seasonCode, rawExtension(data)), data)
}

func (w *Writer) WriteCleaned(runID, leagueCode, seasonCode string, data []byte) error {
	return writeFile(payloadPath(w.cleanRoot, runID, leagueCode, seasonCode, "csv"), data)
}

// WriteRunLog writes the structured summary as JSON plus a human-readable
// text rendering, next to the raw data, mirrored next to the cleaned data,
// and into the dedicated logs directory.
func (w *Writer) WriteRunLog(run ingestlog.Run) error {
	encoded, err := sonic.MarshalIndent(runLogDocument(run), "", "  ")
	if err != nil {
		return fmt.Errorf("encode run log: %w", err)
	}
	text := []byte(renderRunLogText(run))

	targets := []string{
		filepath.Join(w.rawRoot, run.ID),
		filepath.Join(w.cleanRoot, run.ID),
		w.logsRoot,
	}
	name := "run_" + run.ID
	for _, dir := range targets {
		if dir == "" || dir == run.ID {
			continue
		}
		if err := writeFile(filepath.Join(dir, name+".json"), encoded); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dir, name+".log"), text); err != nil {
			return err
		}
	}
	return nil
}

func payloadPath(root, runID, leagueCode, seasonCode, ext string) string {
	return filepath.Join(root, runID, leagueCode, fmt.Sprintf("%s_%s.%s", leagueCode, seasonCode, ext))
}

func rawExtension(data []byte) string {
	trimmed := strings.TrimLeft(string(data[:min(len(data), 16)]), " \t\r\n")
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return "json"
	}
	return "csv"
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

type runLogJSON struct {
	ID          string                 `json:"id"`
	Source      string                 `json:"source"`
	Status      string                 `json:"status"`
	StartedAt   string                 `json:"started_at"`
	CompletedAt string                 `json:"completed_at,omitempty"`
	Counters    ingestlog.Counters     `json:"counters"`
	Units       []ingestlog.UnitResult `json:"units"`
	Errors      []string               `json:"errors,omitempty"`
}

func runLogDocument(run ingestlog.Run) runLogJSON {
	doc := runLogJSON{
		ID:        run.ID,
		Source:    run.Source,
		Status:    string(run.Status),
		StartedAt: run.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Counters:  run.Counters,
		Units:     run.Units,
		Errors:    run.Errors,
	}
	if run.CompletedAt != nil {
		doc.CompletedAt = run.CompletedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return doc
}

func renderRunLogText(run ingestlog.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s source=%s status=%s\n", run.ID, run.Source, run.Status)
	fmt.Fprintf(&b, "started %s", run.StartedAt.UTC().Format("2006-01-02 15:04:05"))
	if run.CompletedAt != nil {
		fmt.Fprintf(&b, " completed %s", run.CompletedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "totals processed=%d inserted=%d updated=%d skipped=%d errors=%d\n",
		run.Counters.Processed, run.Counters.Inserted, run.Counters.Updated,
		run.Counters.Skipped, run.Counters.Errors)

	b.WriteString("units:\n")
	for _, u := range run.Units {
		fmt.Fprintf(&b, "  %s/%s %s processed=%d inserted=%d updated=%d skipped=%d errors=%d",
			u.LeagueCode, u.SeasonCode, u.Outcome,
			u.Counters.Processed, u.Counters.Inserted, u.Counters.Updated,
			u.Counters.Skipped, u.Counters.Errors)
		if u.Cleaning.FallbackEncodingUsed != "" {
			fmt.Fprintf(&b, " encoding=%s", u.Cleaning.FallbackEncodingUsed)
		}
		if u.Error != "" {
			fmt.Fprintf(&b, " error=%q", u.Error)
		}
		b.WriteByte('\n')
	}

	if len(run.Errors) > 0 {
		fmt.Fprintf(&b, "first %d errors:\n", len(run.Errors))
		for _, msg := range run.Errors {
			fmt.Fprintf(&b, "  %s\n", msg)
		}
	}
	return b.String()
}
