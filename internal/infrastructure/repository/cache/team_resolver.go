package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/oddsmith/matchfeed/internal/domain/team"
)

// TeamResolver memoizes successful resolutions in front of another resolver.
// Feed files repeat the same handful of club names for hundreds of rows, so
// one database round-trip per distinct name is enough.
type TeamResolver struct {
	next team.Resolver

	mu      sync.RWMutex
	entries map[string]team.Team
}

func NewTeamResolver(next team.Resolver) *TeamResolver {
	return &TeamResolver{
		next:    next,
		entries: make(map[string]team.Team),
	}
}

func (r *TeamResolver) Resolve(ctx context.Context, name string, leagueID int64) (team.Team, bool, error) {
	key := cacheKey(name, leagueID)

	r.mu.RLock()
	cached, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return cached, true, nil
	}

	resolved, ok, err := r.next.Resolve(ctx, name, leagueID)
	if err != nil || !ok {
		return team.Team{}, false, err
	}

	r.store(key, resolved)
	return resolved, true, nil
}

func (r *TeamResolver) CreateIfNotExists(ctx context.Context, name string, leagueID int64) (team.Team, error) {
	created, err := r.next.CreateIfNotExists(ctx, name, leagueID)
	if err != nil {
		return team.Team{}, err
	}

	r.store(cacheKey(name, leagueID), created)
	return created, nil
}

func (r *TeamResolver) store(key string, t team.Team) {
	r.mu.Lock()
	r.entries[key] = t
	r.mu.Unlock()
}

func cacheKey(name string, leagueID int64) string {
	return strconv.FormatInt(leagueID, 10) + ":" + strings.ToLower(strings.TrimSpace(name))
}
