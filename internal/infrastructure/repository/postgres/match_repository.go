package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oddsmith/matchfeed/internal/domain/match"
	qb "github.com/oddsmith/matchfeed/internal/platform/querybuilder"
)

var matchColumns = []string{
	"league_id", "home_team_id", "away_team_id", "match_date",
	"home_goals", "away_goals", "result",
	"ht_home_goals", "ht_away_goals",
	"odds_home", "odds_draw", "odds_away",
	"prob_home", "prob_draw", "prob_away",
	"home_yellow_cards", "away_yellow_cards", "home_red_cards", "away_red_cards",
	"matchday", "kickoff_time", "venue", "referee", "batch_id",
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Begin opens one transaction per write sub-batch. The caller commits every
// flush interval and rolls back on failure.
func (r *MatchRepository) Begin(ctx context.Context) (match.Batch, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin match batch: %w", err)
	}
	return &matchTxBatch{tx: tx}, nil
}

type matchTxBatch struct {
	tx *sqlx.Tx
}

func (b *matchTxBatch) FindByKey(ctx context.Context, key match.NaturalKey) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("home_team_id", key.HomeTeamID),
			qb.Eq("away_team_id", key.AwayTeamID),
			qb.Eq("match_date", key.MatchDate),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build find match query: %w", err)
	}

	var row matchTableModel
	if err := b.tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("find match by key: %w", err)
	}
	return row.toDomain(), true, nil
}

func (b *matchTxBatch) Insert(ctx context.Context, m *match.Match) error {
	row := toMatchModel(*m)
	query, args, err := qb.InsertInto("matches").
		Columns(matchColumns...).
		Values(
			row.LeagueID, row.HomeTeamID, row.AwayTeamID, row.MatchDate,
			row.HomeGoals, row.AwayGoals, row.Result,
			row.HalfTimeHomeGoals, row.HalfTimeAwayGoals,
			row.OddsHome, row.OddsDraw, row.OddsAway,
			row.ProbHome, row.ProbDraw, row.ProbAway,
			row.HomeYellowCards, row.AwayYellowCards, row.HomeRedCards, row.AwayRedCards,
			row.Matchday, row.KickoffTime, row.Venue, row.Referee, row.BatchID,
		).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}

	if err := b.tx.GetContext(ctx, &m.ID, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("match already exists for key: %w", err)
		}
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (b *matchTxBatch) Update(ctx context.Context, m match.Match) error {
	row := toMatchModel(m)
	query, args, err := qb.Update("matches").
		Set("home_goals", row.HomeGoals).
		Set("away_goals", row.AwayGoals).
		Set("result", row.Result).
		Set("ht_home_goals", row.HalfTimeHomeGoals).
		Set("ht_away_goals", row.HalfTimeAwayGoals).
		Set("odds_home", row.OddsHome).
		Set("odds_draw", row.OddsDraw).
		Set("odds_away", row.OddsAway).
		Set("prob_home", row.ProbHome).
		Set("prob_draw", row.ProbDraw).
		Set("prob_away", row.ProbAway).
		Set("home_yellow_cards", row.HomeYellowCards).
		Set("away_yellow_cards", row.AwayYellowCards).
		Set("home_red_cards", row.HomeRedCards).
		Set("away_red_cards", row.AwayRedCards).
		Set("matchday", row.Matchday).
		Set("kickoff_time", row.KickoffTime).
		Set("venue", row.Venue).
		Set("referee", row.Referee).
		Set("batch_id", row.BatchID).
		Where(qb.Eq("id", row.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	if _, err := b.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update match id=%d: %w", row.ID, err)
	}
	return nil
}

func (b *matchTxBatch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("commit match batch: %w", err)
	}
	return nil
}

func (b *matchTxBatch) Rollback() error {
	if err := b.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback match batch: %w", err)
	}
	return nil
}
