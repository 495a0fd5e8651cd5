package memory

import (
	"context"
	"sync"

	"github.com/oddsmith/matchfeed/internal/domain/source"
)

type SourceRepository struct {
	mu     sync.RWMutex
	byCode map[string]source.DataSource
	nextID int64
}

func NewSourceRepository() *SourceRepository {
	return &SourceRepository{byCode: make(map[string]source.DataSource), nextID: 1}
}

func (r *SourceRepository) GetByCode(_ context.Context, code string) (source.DataSource, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.byCode[code]
	return ds, ok, nil
}

func (r *SourceRepository) Ensure(_ context.Context, ds source.DataSource) (source.DataSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byCode[ds.Code]; ok {
		return existing, nil
	}
	ds.ID = r.nextID
	r.nextID++
	r.byCode[ds.Code] = ds
	return ds, nil
}
