package league

import "context"

// Repository exposes league lookup and lazy creation.
type Repository interface {
	GetByCode(ctx context.Context, code string) (League, bool, error)
	Create(ctx context.Context, lg League) (League, error)
}
