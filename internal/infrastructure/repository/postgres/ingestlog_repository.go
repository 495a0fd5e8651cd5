package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/oddsmith/matchfeed/internal/domain/ingestlog"
	qb "github.com/oddsmith/matchfeed/internal/platform/querybuilder"
)

type ingestLogTableModel struct {
	ID          string     `db:"id"`
	Source      string     `db:"source"`
	Status      string     `db:"status"`
	StartedAt   time.Time  `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`

	Processed int `db:"processed"`
	Inserted  int `db:"inserted"`
	Updated   int `db:"updated"`
	Skipped   int `db:"skipped"`
	Errors    int `db:"errors"`

	// Per-unit outcomes and retained error strings serialize to JSON
	// columns; the relational counters above stay queryable.
	Units         []byte `db:"units"`
	ErrorMessages []byte `db:"error_messages"`
}

type IngestLogRepository struct {
	db *sqlx.DB
}

func NewIngestLogRepository(db *sqlx.DB) *IngestLogRepository {
	return &IngestLogRepository{db: db}
}

func (r *IngestLogRepository) Create(ctx context.Context, run ingestlog.Run) error {
	row, err := toIngestLogModel(run)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertInto("ingestion_logs").
		Columns("id", "source", "status", "started_at", "completed_at",
			"processed", "inserted", "updated", "skipped", "errors",
			"units", "error_messages").
		Values(row.ID, row.Source, row.Status, row.StartedAt, row.CompletedAt,
			row.Processed, row.Inserted, row.Updated, row.Skipped, row.Errors,
			row.Units, row.ErrorMessages).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert ingestion log query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert ingestion log %s: %w", run.ID, err)
	}
	return nil
}

func (r *IngestLogRepository) Update(ctx context.Context, run ingestlog.Run) error {
	row, err := toIngestLogModel(run)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("ingestion_logs").
		Set("status", row.Status).
		Set("completed_at", row.CompletedAt).
		Set("processed", row.Processed).
		Set("inserted", row.Inserted).
		Set("updated", row.Updated).
		Set("skipped", row.Skipped).
		Set("errors", row.Errors).
		Set("units", row.Units).
		Set("error_messages", row.ErrorMessages).
		Where(qb.Eq("id", row.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update ingestion log query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update ingestion log %s: %w", run.ID, err)
	}
	return nil
}

func toIngestLogModel(run ingestlog.Run) (ingestLogTableModel, error) {
	units, err := sonic.Marshal(run.Units)
	if err != nil {
		return ingestLogTableModel{}, fmt.Errorf("encode run units: %w", err)
	}
	messages, err := sonic.Marshal(run.Errors)
	if err != nil {
		return ingestLogTableModel{}, fmt.Errorf("encode run errors: %w", err)
	}

	return ingestLogTableModel{
		ID:            run.ID,
		Source:        run.Source,
		Status:        string(run.Status),
		StartedAt:     run.StartedAt,
		CompletedAt:   run.CompletedAt,
		Processed:     run.Counters.Processed,
		Inserted:      run.Counters.Inserted,
		Updated:       run.Counters.Updated,
		Skipped:       run.Counters.Skipped,
		Errors:        run.Counters.Errors,
		Units:         units,
		ErrorMessages: messages,
	}, nil
}
