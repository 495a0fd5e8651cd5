package match

import (
	"math"
	"testing"
	"time"
)

func TestDeriveResult(t *testing.T) {
	t.Parallel()

	cases := []struct {
		home, away int
		want       Result
	}{
		{2, 1, ResultHome},
		{0, 0, ResultDraw},
		{1, 3, ResultAway},
	}
	for _, tc := range cases {
		if got := DeriveResult(tc.home, tc.away); got != tc.want {
			t.Fatalf("DeriveResult(%d, %d) = %s, want %s", tc.home, tc.away, got, tc.want)
		}
	}
}

func TestImpliedProbabilities_SumToOne(t *testing.T) {
	t.Parallel()

	triples := [][3]float64{
		{2.0, 3.5, 4.0},
		{1.05, 15.0, 40.0},
		{3.3, 3.3, 3.3},
		{1.5, 4.0, 7.5},
	}
	for _, odds := range triples {
		home, draw, away, ok := ImpliedProbabilities(odds[0], odds[1], odds[2])
		if !ok {
			t.Fatalf("odds %v rejected", odds)
		}
		sum := home + draw + away
		if math.Abs(sum-1.0) > 1e-9 {
			t.Fatalf("odds %v: probabilities sum to %v", odds, sum)
		}
		for _, p := range []float64{home, draw, away} {
			if p <= 0 || p >= 1 {
				t.Fatalf("odds %v: probability %v out of (0,1)", odds, p)
			}
		}
	}
}

func TestImpliedProbabilities_RejectsBadOdds(t *testing.T) {
	t.Parallel()

	for _, odds := range [][3]float64{
		{1.0, 3.5, 4.0},
		{0, 3.5, 4.0},
		{-2.0, 3.5, 4.0},
		{math.NaN(), 3.5, 4.0},
	} {
		if _, _, _, ok := ImpliedProbabilities(odds[0], odds[1], odds[2]); ok {
			t.Fatalf("odds %v accepted", odds)
		}
	}
}

func TestImpliedProbabilities_SpecScenario(t *testing.T) {
	t.Parallel()

	// Odds 2.0/3.5/4.0 carry raw inverses 0.50/0.2857/0.25.
	home, draw, away, ok := ImpliedProbabilities(2.0, 3.5, 4.0)
	if !ok {
		t.Fatal("triple rejected")
	}
	if math.Abs(home-0.482759) > 5e-4 || math.Abs(draw-0.275862) > 5e-4 || math.Abs(away-0.241379) > 5e-4 {
		t.Fatalf("unexpected normalized triple: %v %v %v", home, draw, away)
	}
}

func TestCandidate_EnforceHalfTimePair(t *testing.T) {
	t.Parallel()

	one := 1
	c := Candidate{HalfTimeHomeGoals: &one}
	c.EnforceHalfTimePair()
	if c.HalfTimeHomeGoals != nil || c.HalfTimeAwayGoals != nil {
		t.Fatal("partial half-time pair must be nulled")
	}

	c = Candidate{HalfTimeHomeGoals: &one, HalfTimeAwayGoals: &one}
	c.EnforceHalfTimePair()
	if c.HalfTimeHomeGoals == nil || c.HalfTimeAwayGoals == nil {
		t.Fatal("full pair must survive")
	}
}

func TestMerge_NeverClobbersWithNil(t *testing.T) {
	t.Parallel()

	odds := 2.5
	venue := "Estadio Uno"
	stored := Match{
		ID:        9,
		HomeGoals: 1,
		AwayGoals: 1,
		Result:    ResultDraw,
		OddsHome:  &odds,
		Venue:     &venue,
	}
	incoming := Match{HomeGoals: 2, AwayGoals: 1}

	merged := Merge(stored, incoming)
	if merged.ID != 9 {
		t.Fatalf("merge must keep identity, got %d", merged.ID)
	}
	if merged.HomeGoals != 2 || merged.AwayGoals != 1 {
		t.Fatal("incoming goals must overwrite")
	}
	if merged.Result != ResultHome {
		t.Fatalf("result must re-derive from new goals, got %s", merged.Result)
	}
	if merged.OddsHome == nil || *merged.OddsHome != 2.5 {
		t.Fatal("nil incoming odds must not clobber stored odds")
	}
	if merged.Venue == nil || *merged.Venue != "Estadio Uno" {
		t.Fatal("nil incoming venue must not clobber stored venue")
	}
}

func TestNaturalKeyIgnoresClock(t *testing.T) {
	t.Parallel()

	m1 := Match{HomeTeamID: 1, AwayTeamID: 2, MatchDate: time.Date(2023, 8, 1, 15, 30, 0, 0, time.UTC)}
	m2 := Match{HomeTeamID: 1, AwayTeamID: 2, MatchDate: time.Date(2023, 8, 1, 20, 0, 0, 0, time.UTC)}
	if m1.Key() != m2.Key() {
		t.Fatal("natural key must compare calendar dates only")
	}
}
