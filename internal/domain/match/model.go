package match

import (
	"math"
	"time"
)

type Result string

const (
	ResultHome Result = "H"
	ResultDraw Result = "D"
	ResultAway Result = "A"
)

// Match is one stored fixture result with market odds. Optional attributes
// are pointers: nil means the upstream feed never carried the value, which
// is distinct from zero (a valid goal count).
type Match struct {
	ID         int64
	LeagueID   int64
	HomeTeamID int64
	AwayTeamID int64
	MatchDate  time.Time

	HomeGoals int
	AwayGoals int
	Result    Result

	HalfTimeHomeGoals *int
	HalfTimeAwayGoals *int

	OddsHome *float64
	OddsDraw *float64
	OddsAway *float64

	ProbHome *float64
	ProbDraw *float64
	ProbAway *float64

	HomeYellowCards *int
	AwayYellowCards *int
	HomeRedCards    *int
	AwayRedCards    *int

	Matchday    *int
	KickoffTime *string
	Venue       *string
	Referee     *string

	BatchID string
}

// NaturalKey identifies a fixture for upsert purposes.
type NaturalKey struct {
	HomeTeamID int64
	AwayTeamID int64
	MatchDate  time.Time
}

func (m Match) Key() NaturalKey {
	return NaturalKey{
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		MatchDate:  DateOnly(m.MatchDate),
	}
}

// DateOnly strips the clock so the natural key compares calendar dates.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DeriveResult is a pure function of the full-time goals.
func DeriveResult(homeGoals, awayGoals int) Result {
	switch {
	case homeGoals > awayGoals:
		return ResultHome
	case homeGoals < awayGoals:
		return ResultAway
	default:
		return ResultDraw
	}
}

// ImpliedProbabilities converts a decimal odds triple into outcome
// probabilities, normalized away from the bookmaker overround so the three
// always sum to exactly 1. Returns false when any odds value is unusable.
func ImpliedProbabilities(oddsHome, oddsDraw, oddsAway float64) (home, draw, away float64, ok bool) {
	if oddsHome <= 1 || oddsDraw <= 1 || oddsAway <= 1 {
		return 0, 0, 0, false
	}
	if math.IsNaN(oddsHome) || math.IsNaN(oddsDraw) || math.IsNaN(oddsAway) {
		return 0, 0, 0, false
	}

	invHome := 1 / oddsHome
	invDraw := 1 / oddsDraw
	invAway := 1 / oddsAway
	total := invHome + invDraw + invAway

	home = invHome / total
	draw = invDraw / total
	// Close the triple exactly so downstream sums never drift.
	away = 1 - home - draw
	return home, draw, away, true
}

// Merge applies incoming onto stored: every non-nil incoming field overwrites,
// nil fields leave the stored value untouched. Required fields always come
// from incoming since a row cannot normalize without them.
func Merge(stored, incoming Match) Match {
	out := stored
	out.HomeGoals = incoming.HomeGoals
	out.AwayGoals = incoming.AwayGoals
	out.Result = DeriveResult(incoming.HomeGoals, incoming.AwayGoals)

	// Half-time goals travel as a pair; a partial pair was nulled upstream.
	if incoming.HalfTimeHomeGoals != nil && incoming.HalfTimeAwayGoals != nil {
		out.HalfTimeHomeGoals = incoming.HalfTimeHomeGoals
		out.HalfTimeAwayGoals = incoming.HalfTimeAwayGoals
	}
	if incoming.OddsHome != nil {
		out.OddsHome = incoming.OddsHome
	}
	if incoming.OddsDraw != nil {
		out.OddsDraw = incoming.OddsDraw
	}
	if incoming.OddsAway != nil {
		out.OddsAway = incoming.OddsAway
	}
	if incoming.ProbHome != nil {
		out.ProbHome = incoming.ProbHome
	}
	if incoming.ProbDraw != nil {
		out.ProbDraw = incoming.ProbDraw
	}
	if incoming.ProbAway != nil {
		out.ProbAway = incoming.ProbAway
	}
	if incoming.HomeYellowCards != nil {
		out.HomeYellowCards = incoming.HomeYellowCards
	}
	if incoming.AwayYellowCards != nil {
		out.AwayYellowCards = incoming.AwayYellowCards
	}
	if incoming.HomeRedCards != nil {
		out.HomeRedCards = incoming.HomeRedCards
	}
	if incoming.AwayRedCards != nil {
		out.AwayRedCards = incoming.AwayRedCards
	}
	if incoming.Matchday != nil {
		out.Matchday = incoming.Matchday
	}
	if incoming.KickoffTime != nil {
		out.KickoffTime = incoming.KickoffTime
	}
	if incoming.Venue != nil {
		out.Venue = incoming.Venue
	}
	if incoming.Referee != nil {
		out.Referee = incoming.Referee
	}
	if incoming.BatchID != "" {
		out.BatchID = incoming.BatchID
	}

	return out
}
