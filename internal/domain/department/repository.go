package department

import "context"

type Repository interface {
	Create(ctx context.Context, d *Department) error
	// GetByID returns ErrDepartmentNotFound if no department has the id.
	GetByID(ctx context.Context, id int64) (*Department, error)
	Update(ctx context.Context, id int64, patch *Patch) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
}
