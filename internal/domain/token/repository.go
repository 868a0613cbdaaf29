package token

import "context"

type Repository interface {
	Create(ctx context.Context, t *Token) error
	GetByID(ctx context.Context, id int64) (*Token, error)
	GetByAppointmentID(ctx context.Context, appointmentID int64) (*Token, error)
	Update(ctx context.Context, id int64, patch *Patch) (*Token, error)
	List(ctx context.Context, q *ListQuery) ([]*Token, error)
}
