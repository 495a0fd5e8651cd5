package match

import "time"

// Candidate is a normalized upstream row before team resolution. Team sides
// are still free-text names; everything else is already typed.
type Candidate struct {
	MatchDate time.Time
	HomeTeam  string
	AwayTeam  string

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

	TotalGoals     *int
	GoalDifference *int
}

// EnforceHalfTimePair nulls both half-time goals when either is missing.
// A partial pair is upstream corruption, never a meaningful value.
func (c *Candidate) EnforceHalfTimePair() {
	if c.HalfTimeHomeGoals == nil || c.HalfTimeAwayGoals == nil {
		c.HalfTimeHomeGoals = nil
		c.HalfTimeAwayGoals = nil
	}
}

// HasOddsTriple reports whether all three market odds are present.
func (c Candidate) HasOddsTriple() bool {
	return c.OddsHome != nil && c.OddsDraw != nil && c.OddsAway != nil
}

// ToMatch builds the storable record once both teams are resolved.
func (c Candidate) ToMatch(leagueID, homeTeamID, awayTeamID int64, batchID string) Match {
	return Match{
		LeagueID:          leagueID,
		HomeTeamID:        homeTeamID,
		AwayTeamID:        awayTeamID,
		MatchDate:         DateOnly(c.MatchDate),
		HomeGoals:         c.HomeGoals,
		AwayGoals:         c.AwayGoals,
		Result:            DeriveResult(c.HomeGoals, c.AwayGoals),
		HalfTimeHomeGoals: c.HalfTimeHomeGoals,
		HalfTimeAwayGoals: c.HalfTimeAwayGoals,
		OddsHome:          c.OddsHome,
		OddsDraw:          c.OddsDraw,
		OddsAway:          c.OddsAway,
		ProbHome:          c.ProbHome,
		ProbDraw:          c.ProbDraw,
		ProbAway:          c.ProbAway,
		HomeYellowCards:   c.HomeYellowCards,
		AwayYellowCards:   c.AwayYellowCards,
		HomeRedCards:      c.HomeRedCards,
		AwayRedCards:      c.AwayRedCards,
		Matchday:          c.Matchday,
		KickoffTime:       c.KickoffTime,
		Venue:             c.Venue,
		Referee:           c.Referee,
		BatchID:           batchID,
	}
}
