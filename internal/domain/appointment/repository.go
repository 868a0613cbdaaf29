package appointment

import "context"

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Update(ctx context.Context, id int64, patch *Patch) (*Appointment, error)
	List(ctx context.Context, q *ListQuery) ([]*Appointment, error)
}
