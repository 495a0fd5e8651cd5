package source

import "context"

// Repository stores provider metadata rows.
type Repository interface {
	GetByCode(ctx context.Context, code string) (DataSource, bool, error)
	Ensure(ctx context.Context, ds DataSource) (DataSource, error)
}
