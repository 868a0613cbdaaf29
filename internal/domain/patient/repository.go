package patient

import "context"

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByUserID(ctx context.Context, userID int64) (*Patient, error)
	Update(ctx context.Context, id int64, patch *Patch) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
}
