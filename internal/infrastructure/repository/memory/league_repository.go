package memory

import (
	"context"
	"sync"

	"github.com/oddsmith/matchfeed/internal/domain/league"
)

type LeagueRepository struct {
	mu     sync.RWMutex
	byCode map[string]league.League
	nextID int64
}

func NewLeagueRepository(leagues ...league.League) *LeagueRepository {
	repo := &LeagueRepository{byCode: make(map[string]league.League, len(leagues)), nextID: 1}
	for _, lg := range leagues {
		if lg.ID == 0 {
			lg.ID = repo.nextID
		}
		if lg.ID >= repo.nextID {
			repo.nextID = lg.ID + 1
		}
		repo.byCode[lg.Code] = lg
	}
	return repo
}

func (r *LeagueRepository) GetByCode(_ context.Context, code string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lg, ok := r.byCode[league.NormalizeCode(code)]
	return lg, ok, nil
}

func (r *LeagueRepository) Create(_ context.Context, lg league.League) (league.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byCode[lg.Code]; ok {
		return existing, nil
	}
	lg.ID = r.nextID
	r.nextID++
	r.byCode[lg.Code] = lg
	return lg, nil
}
