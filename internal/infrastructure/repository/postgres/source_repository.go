package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oddsmith/matchfeed/internal/domain/source"
	qb "github.com/oddsmith/matchfeed/internal/platform/querybuilder"
)

type sourceTableModel struct {
	ID      int64  `db:"id"`
	Code    string `db:"code"`
	Name    string `db:"name"`
	BaseURL string `db:"base_url"`
	Enabled bool   `db:"enabled"`
}

type SourceRepository struct {
	db *sqlx.DB
}

func NewSourceRepository(db *sqlx.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

func (r *SourceRepository) GetByCode(ctx context.Context, code string) (source.DataSource, bool, error) {
	query, args, err := qb.Select("*").From("data_sources").
		Where(qb.Eq("code", code)).
		ToSQL()
	if err != nil {
		return source.DataSource{}, false, fmt.Errorf("build get data source query: %w", err)
	}

	var row sourceTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return source.DataSource{}, false, nil
		}
		return source.DataSource{}, false, fmt.Errorf("get data source by code: %w", err)
	}
	return source.DataSource{ID: row.ID, Code: row.Code, Name: row.Name, BaseURL: row.BaseURL, Enabled: row.Enabled}, true, nil
}

func (r *SourceRepository) Ensure(ctx context.Context, ds source.DataSource) (source.DataSource, error) {
	query, args, err := qb.InsertInto("data_sources").
		Columns("code", "name", "base_url", "enabled").
		Values(ds.Code, ds.Name, ds.BaseURL, ds.Enabled).
		Suffix("ON CONFLICT (code) DO UPDATE SET enabled = EXCLUDED.enabled RETURNING id").
		ToSQL()
	if err != nil {
		return source.DataSource{}, fmt.Errorf("build ensure data source query: %w", err)
	}

	if err := r.db.GetContext(ctx, &ds.ID, query, args...); err != nil {
		return source.DataSource{}, fmt.Errorf("ensure data source %s: %w", ds.Code, err)
	}
	return ds, nil
}
