package memory

import (
	"context"
	"sync"

	"github.com/oddsmith/matchfeed/internal/domain/match"
)

// MatchRepository is the in-memory match store. Batches stage writes and
// apply them on Commit, mirroring the transactional postgres behavior.
type MatchRepository struct {
	mu     sync.RWMutex
	items  map[match.NaturalKey]match.Match
	nextID int64

	// CommitErr, when set, fails the next Commit once. Test hook.
	CommitErr error
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{items: make(map[match.NaturalKey]match.Match), nextID: 1}
}

func (r *MatchRepository) Begin(_ context.Context) (match.Batch, error) {
	return &matchBatch{repo: r, staged: make(map[match.NaturalKey]match.Match)}, nil
}

// All returns every stored match, for test assertions.
func (r *MatchRepository) All() []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, m)
	}
	return out
}

// GetByKey returns a committed match by its natural key.
func (r *MatchRepository) GetByKey(key match.NaturalKey) (match.Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[key]
	return m, ok
}

type matchBatch struct {
	repo   *MatchRepository
	staged map[match.NaturalKey]match.Match
	done   bool
}

func (b *matchBatch) FindByKey(_ context.Context, key match.NaturalKey) (match.Match, bool, error) {
	if m, ok := b.staged[key]; ok {
		return m, true, nil
	}

	b.repo.mu.RLock()
	defer b.repo.mu.RUnlock()

	m, ok := b.repo.items[key]
	return m, ok, nil
}

func (b *matchBatch) Insert(_ context.Context, m *match.Match) error {
	b.repo.mu.Lock()
	m.ID = b.repo.nextID
	b.repo.nextID++
	b.repo.mu.Unlock()

	b.staged[m.Key()] = *m
	return nil
}

func (b *matchBatch) Update(_ context.Context, m match.Match) error {
	b.staged[m.Key()] = m
	return nil
}

func (b *matchBatch) Commit() error {
	if b.done {
		return nil
	}
	b.done = true

	b.repo.mu.Lock()
	defer b.repo.mu.Unlock()

	if err := b.repo.CommitErr; err != nil {
		b.repo.CommitErr = nil
		return err
	}
	for key, m := range b.staged {
		b.repo.items[key] = m
	}
	b.staged = make(map[match.NaturalKey]match.Match)
	return nil
}

func (b *matchBatch) Rollback() error {
	b.done = true
	b.staged = make(map[match.NaturalKey]match.Match)
	return nil
}
