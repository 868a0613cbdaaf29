package theatre

import "context"

type TheatreRepository interface {
	Create(ctx context.Context, t *OperationTheatre) error
	GetByID(ctx context.Context, id int64) (*OperationTheatre, error)
	Update(ctx context.Context, id int64, patch *TheatrePatch) (*OperationTheatre, error)
	List(ctx context.Context) ([]*OperationTheatre, error)
}

type SurgeryRepository interface {
	Create(ctx context.Context, s *Surgery) error
	GetByID(ctx context.Context, id int64) (*Surgery, error)
	Update(ctx context.Context, id int64, patch *SurgeryPatch) (*Surgery, error)
	List(ctx context.Context, q *SurgeryQuery) ([]*Surgery, error)
}
