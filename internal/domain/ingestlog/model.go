package ingestlog

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type UnitOutcome string

const (
	// UnitSuccess: rows saved with zero errors.
	UnitSuccess UnitOutcome = "success"
	// UnitPartial: rows saved but some errored.
	UnitPartial UnitOutcome = "partial"
	// UnitEmpty: the source had no data for this unit. Benign.
	UnitEmpty UnitOutcome = "empty"
	// UnitRejected: the source had rows but cleaning removed every one of
	// them. Distinct from empty so "no data published" and "data fetched
	// but unusable" stay tellable apart in the run report.
	UnitRejected UnitOutcome = "rejected"
	// UnitFailed: the unit could not be ingested at all.
	UnitFailed UnitOutcome = "failed"
)

// Counters accumulate row outcomes. The invariant
// Processed == Inserted + Updated + Skipped + Errors holds per unit and,
// by additivity, per run.
type Counters struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

func (c *Counters) Add(other Counters) {
	c.Processed += other.Processed
	c.Inserted += other.Inserted
	c.Updated += other.Updated
	c.Skipped += other.Skipped
	c.Errors += other.Errors
}

func (c Counters) Consistent() bool {
	return c.Processed == c.Inserted+c.Updated+c.Skipped+c.Errors
}

// CleaningStats is the per-unit cleaning report folded into the run log.
type CleaningStats struct {
	RowsBefore           int      `json:"rows_before"`
	RowsAfter            int      `json:"rows_after"`
	RemovedInvalidDate   int      `json:"removed_invalid_date"`
	RemovedMissingField  int      `json:"removed_missing_field"`
	RemovedUnparsable    int      `json:"removed_unparsable"`
	ColumnsDropped       []string `json:"columns_dropped,omitempty"`
	ValuesImputed        int      `json:"values_imputed"`
	FeaturesCreated      []string `json:"features_created,omitempty"`
	FallbackEncodingUsed string   `json:"fallback_encoding_used,omitempty"`
}

// Consistent checks that the removal reasons account for every dropped row.
func (s CleaningStats) Consistent() bool {
	return s.RowsBefore == s.RowsAfter+s.RemovedInvalidDate+s.RemovedMissingField+s.RemovedUnparsable
}

// UnitResult records how one (league, season) unit ended.
type UnitResult struct {
	LeagueCode string        `json:"league"`
	SeasonCode string        `json:"season"`
	Provider   string        `json:"provider,omitempty"`
	Outcome    UnitOutcome   `json:"outcome"`
	Counters   Counters      `json:"counters"`
	Cleaning   CleaningStats `json:"cleaning"`
	Error      string        `json:"error,omitempty"`
}

// Run is one orchestrated ingestion batch.
type Run struct {
	ID          string
	Source      string
	Status      Status
	StartedAt   time.Time
	CompletedAt *time.Time
	Counters    Counters
	Units       []UnitResult
	// Errors keeps the first K row/unit error strings for operator review.
	Errors []string
}

// MaxRetainedErrors caps how many error strings a run log keeps.
const MaxRetainedErrors = 50

func (r *Run) RecordError(msg string) {
	if msg == "" || len(r.Errors) >= MaxRetainedErrors {
		return
	}
	r.Errors = append(r.Errors, msg)
}
