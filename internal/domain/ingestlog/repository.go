package ingestlog

import "context"

// Repository persists run bookkeeping rows.
type Repository interface {
	Create(ctx context.Context, run Run) error
	Update(ctx context.Context, run Run) error
}
