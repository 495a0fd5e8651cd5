package team

// Team is a club within one league.
type Team struct {
	ID       int64
	LeagueID int64
	Name     string
}
