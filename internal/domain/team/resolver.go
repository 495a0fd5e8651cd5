package team

import "context"

// Resolver maps free-text team names onto stored teams. The fuzzy-matching
// implementation lives outside this pipeline; the ingestion core only
// consumes the contract.
type Resolver interface {
	// Resolve returns the team for a name within a league, or ok=false when
	// no confident match exists.
	Resolve(ctx context.Context, name string, leagueID int64) (Team, bool, error)
	// CreateIfNotExists registers a new team for an unresolvable name.
	CreateIfNotExists(ctx context.Context, name string, leagueID int64) (Team, error)
}
