package drug

import "context"

type Repository interface {
	Create(ctx context.Context, d *Drug) error
	GetByID(ctx context.Context, id int64) (*Drug, error)
	Update(ctx context.Context, id int64, patch *Patch) (*Drug, error)
	List(ctx context.Context, q *ListQuery) ([]*Drug, error)
}
