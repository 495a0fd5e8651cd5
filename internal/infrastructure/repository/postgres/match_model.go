package postgres

import (
	"time"

	"github.com/oddsmith/matchfeed/internal/domain/match"
)

type matchTableModel struct {
	ID         int64     `db:"id"`
	LeagueID   int64     `db:"league_id"`
	HomeTeamID int64     `db:"home_team_id"`
	AwayTeamID int64     `db:"away_team_id"`
	MatchDate  time.Time `db:"match_date"`

	HomeGoals int    `db:"home_goals"`
	AwayGoals int    `db:"away_goals"`
	Result    string `db:"result"`

	HalfTimeHomeGoals *int `db:"ht_home_goals"`
	HalfTimeAwayGoals *int `db:"ht_away_goals"`

	OddsHome *float64 `db:"odds_home"`
	OddsDraw *float64 `db:"odds_draw"`
	OddsAway *float64 `db:"odds_away"`

	ProbHome *float64 `db:"prob_home"`
	ProbDraw *float64 `db:"prob_draw"`
	ProbAway *float64 `db:"prob_away"`

	HomeYellowCards *int `db:"home_yellow_cards"`
	AwayYellowCards *int `db:"away_yellow_cards"`
	HomeRedCards    *int `db:"home_red_cards"`
	AwayRedCards    *int `db:"away_red_cards"`

	Matchday    *int    `db:"matchday"`
	KickoffTime *string `db:"kickoff_time"`
	Venue       *string `db:"venue"`
	Referee     *string `db:"referee"`

	BatchID string `db:"batch_id"`
}

func toMatchModel(m match.Match) matchTableModel {
	return matchTableModel{
		ID:                m.ID,
		LeagueID:          m.LeagueID,
		HomeTeamID:        m.HomeTeamID,
		AwayTeamID:        m.AwayTeamID,
		MatchDate:         match.DateOnly(m.MatchDate),
		HomeGoals:         m.HomeGoals,
		AwayGoals:         m.AwayGoals,
		Result:            string(m.Result),
		HalfTimeHomeGoals: m.HalfTimeHomeGoals,
		HalfTimeAwayGoals: m.HalfTimeAwayGoals,
		OddsHome:          m.OddsHome,
		OddsDraw:          m.OddsDraw,
		OddsAway:          m.OddsAway,
		ProbHome:          m.ProbHome,
		ProbDraw:          m.ProbDraw,
		ProbAway:          m.ProbAway,
		HomeYellowCards:   m.HomeYellowCards,
		AwayYellowCards:   m.AwayYellowCards,
		HomeRedCards:      m.HomeRedCards,
		AwayRedCards:      m.AwayRedCards,
		Matchday:          m.Matchday,
		KickoffTime:       m.KickoffTime,
		Venue:             m.Venue,
		Referee:           m.Referee,
		BatchID:           m.BatchID,
	}
}

func (row matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:                row.ID,
		LeagueID:          row.LeagueID,
		HomeTeamID:        row.HomeTeamID,
		AwayTeamID:        row.AwayTeamID,
		MatchDate:         match.DateOnly(row.MatchDate),
		HomeGoals:         row.HomeGoals,
		AwayGoals:         row.AwayGoals,
		Result:            match.Result(row.Result),
		HalfTimeHomeGoals: row.HalfTimeHomeGoals,
		HalfTimeAwayGoals: row.HalfTimeAwayGoals,
		OddsHome:          row.OddsHome,
		OddsDraw:          row.OddsDraw,
		OddsAway:          row.OddsAway,
		ProbHome:          row.ProbHome,
		ProbDraw:          row.ProbDraw,
		ProbAway:          row.ProbAway,
		HomeYellowCards:   row.HomeYellowCards,
		AwayYellowCards:   row.AwayYellowCards,
		HomeRedCards:      row.HomeRedCards,
		AwayRedCards:      row.AwayRedCards,
		Matchday:          row.Matchday,
		KickoffTime:       row.KickoffTime,
		Venue:             row.Venue,
		Referee:           row.Referee,
		BatchID:           row.BatchID,
	}
}
