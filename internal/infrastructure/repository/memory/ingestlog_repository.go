package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/oddsmith/matchfeed/internal/domain/ingestlog"
)

type IngestLogRepository struct {
	mu   sync.RWMutex
	runs map[string]ingestlog.Run
}

func NewIngestLogRepository() *IngestLogRepository {
	return &IngestLogRepository{runs: make(map[string]ingestlog.Run)}
}

func (r *IngestLogRepository) Create(_ context.Context, run ingestlog.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	r.runs[run.ID] = run
	return nil
}

func (r *IngestLogRepository) Update(_ context.Context, run ingestlog.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; !exists {
		return fmt.Errorf("run %s not found", run.ID)
	}
	r.runs[run.ID] = run
	return nil
}

// Get returns a stored run, for test assertions.
func (r *IngestLogRepository) Get(id string) (ingestlog.Run, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	return run, ok
}
