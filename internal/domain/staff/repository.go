package staff

import "context"

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	GetByUserID(ctx context.Context, userID int64) (*Doctor, error)
	Update(ctx context.Context, id int64, patch *DoctorPatch) (*Doctor, error)
	List(ctx context.Context, q *DoctorQuery) ([]*Doctor, error)
}

type NurseRepository interface {
	Create(ctx context.Context, n *Nurse) error
	GetByID(ctx context.Context, id int64) (*Nurse, error)
	GetByUserID(ctx context.Context, userID int64) (*Nurse, error)
	Update(ctx context.Context, id int64, patch *NursePatch) (*Nurse, error)
	List(ctx context.Context) ([]*Nurse, error)
}

type PharmacistRepository interface {
	Create(ctx context.Context, p *Pharmacist) error
	GetByID(ctx context.Context, id int64) (*Pharmacist, error)
	GetByUserID(ctx context.Context, userID int64) (*Pharmacist, error)
	Update(ctx context.Context, id int64, patch *PharmacistPatch) (*Pharmacist, error)
	List(ctx context.Context) ([]*Pharmacist, error)
}
