package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oddsmith/matchfeed/internal/domain/league"
	qb "github.com/oddsmith/matchfeed/internal/platform/querybuilder"
)

type leagueTableModel struct {
	ID      int64  `db:"id"`
	Code    string `db:"code"`
	Name    string `db:"name"`
	Country string `db:"country"`
	Tier    int    `db:"tier"`
	Active  bool   `db:"active"`
}

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByCode(ctx context.Context, code string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("code", league.NormalizeCode(code))).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by code: %w", err)
	}
	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) Create(ctx context.Context, lg league.League) (league.League, error) {
	query, args, err := qb.InsertInto("leagues").
		Columns("code", "name", "country", "tier", "active").
		Values(league.NormalizeCode(lg.Code), lg.Name, lg.Country, lg.Tier, lg.Active).
		Suffix("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSQL()
	if err != nil {
		return league.League{}, fmt.Errorf("build insert league query: %w", err)
	}

	if err := r.db.GetContext(ctx, &lg.ID, query, args...); err != nil {
		return league.League{}, fmt.Errorf("insert league %s: %w", lg.Code, err)
	}
	return lg, nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:      row.ID,
		Code:    row.Code,
		Name:    row.Name,
		Country: row.Country,
		Tier:    row.Tier,
		Active:  row.Active,
	}
}
