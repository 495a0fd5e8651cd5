package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/oddsmith/matchfeed/internal/domain/team"
	qb "github.com/oddsmith/matchfeed/internal/platform/querybuilder"
)

type teamTableModel struct {
	ID       int64  `db:"id"`
	LeagueID int64  `db:"league_id"`
	Name     string `db:"name"`
}

// TeamRepository is the exact-match half of team resolution. The fuzzy
// matcher is an external collaborator; when it is not deployed this
// repository serves the full resolver contract over stored names.
type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Resolve(ctx context.Context, name string, leagueID int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Expr("lower(name) = lower(?)", strings.TrimSpace(name)),
			qb.Eq("league_id", leagueID),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build resolve team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("resolve team %q: %w", name, err)
	}
	return team.Team{ID: row.ID, LeagueID: row.LeagueID, Name: row.Name}, true, nil
}

func (r *TeamRepository) CreateIfNotExists(ctx context.Context, name string, leagueID int64) (team.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return team.Team{}, fmt.Errorf("team name is empty")
	}

	query, args, err := qb.InsertInto("teams").
		Columns("league_id", "name").
		Values(leagueID, name).
		Suffix("ON CONFLICT (league_id, name) DO UPDATE SET name = EXCLUDED.name RETURNING id").
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return team.Team{}, fmt.Errorf("insert team %q: %w", name, err)
	}
	return team.Team{ID: id, LeagueID: leagueID, Name: name}, nil
}
