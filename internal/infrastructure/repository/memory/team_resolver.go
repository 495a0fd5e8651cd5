package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/oddsmith/matchfeed/internal/domain/team"
)

// TeamResolver is an exact-name stand-in for the external fuzzy resolver.
type TeamResolver struct {
	mu     sync.RWMutex
	byName map[string]team.Team
	nextID int64

	// CreateErr, when set, fails every CreateIfNotExists. Test hook.
	CreateErr error
}

func NewTeamResolver(teams ...team.Team) *TeamResolver {
	r := &TeamResolver{byName: make(map[string]team.Team, len(teams)), nextID: 1}
	for _, t := range teams {
		if t.ID == 0 {
			t.ID = r.nextID
		}
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
		r.byName[teamKey(t.Name, t.LeagueID)] = t
	}
	return r
}

func (r *TeamResolver) Resolve(_ context.Context, name string, leagueID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byName[teamKey(name, leagueID)]
	return t, ok, nil
}

func (r *TeamResolver) CreateIfNotExists(_ context.Context, name string, leagueID int64) (team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.CreateErr; err != nil {
		return team.Team{}, err
	}
	key := teamKey(name, leagueID)
	if t, ok := r.byName[key]; ok {
		return t, nil
	}
	t := team.Team{ID: r.nextID, LeagueID: leagueID, Name: name}
	r.nextID++
	r.byName[key] = t
	return t, nil
}

func teamKey(name string, leagueID int64) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strconv.FormatInt(leagueID, 10)
}
