package prescription

import "context"

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id int64) (*Prescription, error)
	Update(ctx context.Context, id int64, patch *Patch) (*Prescription, error)
	List(ctx context.Context, q *ListQuery) ([]*Prescription, error)
}
