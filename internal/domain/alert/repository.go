package alert

import "context"

type Repository interface {
	Create(ctx context.Context, a *EmergencyAlert) error
	GetByID(ctx context.Context, id int64) (*EmergencyAlert, error)
	Update(ctx context.Context, id int64, patch *Patch) (*EmergencyAlert, error)
	List(ctx context.Context, q *ListQuery) ([]*EmergencyAlert, error)
}
