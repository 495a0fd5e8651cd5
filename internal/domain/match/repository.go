package match

import "context"

// Repository opens write batches against the match store.
type Repository interface {
	Begin(ctx context.Context) (Batch, error)
}

// Batch is one in-flight sub-batch of writes. Commit makes the writes
// durable; Rollback discards everything uncommitted after a failure.
type Batch interface {
	FindByKey(ctx context.Context, key NaturalKey) (Match, bool, error)
	Insert(ctx context.Context, m *Match) error
	Update(ctx context.Context, m Match) error
	Commit() error
	Rollback() error
}
