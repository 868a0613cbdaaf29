package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/alert"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/drug"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/theatre"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/token"
)

type userRepo struct{ db *gorm.DB }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	u.Username = domain.NormalizeUsername(u.Username)
	return create(ctx, r.db, u, domain.ErrUsernameTaken)
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return getByID[domain.User](ctx, r.db, id, domain.ErrUserNotFound)
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	q := r.db.WithContext(ctx).Where("username = ?", domain.NormalizeUsername(username))
	return first[domain.User](q, domain.ErrUserNotFound)
}

func (r userRepo) Update(ctx context.Context, id int64, p *domain.UserPatch) (*domain.User, error) {
	return patch(ctx, r.db, id, domain.ErrUserNotFound, p.Apply)
}

func (r userRepo) List(ctx context.Context) ([]*domain.User, error) {
	return findAll[domain.User](r.db.WithContext(ctx))
}

type departmentRepo struct{ db *gorm.DB }

func (r departmentRepo) Create(ctx context.Context, d *department.Department) error {
	return create(ctx, r.db, d, department.ErrNameTaken)
}

func (r departmentRepo) GetByID(ctx context.Context, id int64) (*department.Department, error) {
	return getByID[department.Department](ctx, r.db, id, department.ErrDepartmentNotFound)
}

func (r departmentRepo) Update(ctx context.Context, id int64, p *department.Patch) (*department.Department, error) {
	return patch(ctx, r.db, id, department.ErrDepartmentNotFound, p.Apply)
}

func (r departmentRepo) List(ctx context.Context) ([]*department.Department, error) {
	return findAll[department.Department](r.db.WithContext(ctx))
}

type doctorRepo struct{ db *gorm.DB }

func (r doctorRepo) Create(ctx context.Context, d *staff.Doctor) error {
	return create(ctx, r.db, d, staff.ErrProfileExists)
}

func (r doctorRepo) GetByID(ctx context.Context, id int64) (*staff.Doctor, error) {
	return getByID[staff.Doctor](ctx, r.db, id, staff.ErrDoctorNotFound)
}

func (r doctorRepo) GetByUserID(ctx context.Context, userID int64) (*staff.Doctor, error) {
	return first[staff.Doctor](r.db.WithContext(ctx).Where("user_id = ?", userID), staff.ErrDoctorNotFound)
}

func (r doctorRepo) Update(ctx context.Context, id int64, p *staff.DoctorPatch) (*staff.Doctor, error) {
	return patch(ctx, r.db, id, staff.ErrDoctorNotFound, p.Apply)
}

func (r doctorRepo) List(ctx context.Context, q *staff.DoctorQuery) ([]*staff.Doctor, error) {
	db := r.db.WithContext(ctx)
	if q != nil {
		if q.DepartmentID != nil {
			db = db.Where("department_id = ?", *q.DepartmentID)
		}
		if q.Available != nil {
			db = db.Where("is_available = ?", *q.Available)
		}
	}
	return findAll[staff.Doctor](db)
}

type nurseRepo struct{ db *gorm.DB }

func (r nurseRepo) Create(ctx context.Context, n *staff.Nurse) error {
	return create(ctx, r.db, n, staff.ErrProfileExists)
}

func (r nurseRepo) GetByID(ctx context.Context, id int64) (*staff.Nurse, error) {
	return getByID[staff.Nurse](ctx, r.db, id, staff.ErrNurseNotFound)
}

func (r nurseRepo) GetByUserID(ctx context.Context, userID int64) (*staff.Nurse, error) {
	return first[staff.Nurse](r.db.WithContext(ctx).Where("user_id = ?", userID), staff.ErrNurseNotFound)
}

func (r nurseRepo) Update(ctx context.Context, id int64, p *staff.NursePatch) (*staff.Nurse, error) {
	return patch(ctx, r.db, id, staff.ErrNurseNotFound, p.Apply)
}

func (r nurseRepo) List(ctx context.Context) ([]*staff.Nurse, error) {
	return findAll[staff.Nurse](r.db.WithContext(ctx))
}

type pharmacistRepo struct{ db *gorm.DB }

func (r pharmacistRepo) Create(ctx context.Context, p *staff.Pharmacist) error {
	return create(ctx, r.db, p, staff.ErrProfileExists)
}

func (r pharmacistRepo) GetByID(ctx context.Context, id int64) (*staff.Pharmacist, error) {
	return getByID[staff.Pharmacist](ctx, r.db, id, staff.ErrPharmacistNotFound)
}

func (r pharmacistRepo) GetByUserID(ctx context.Context, userID int64) (*staff.Pharmacist, error) {
	return first[staff.Pharmacist](r.db.WithContext(ctx).Where("user_id = ?", userID), staff.ErrPharmacistNotFound)
}

func (r pharmacistRepo) Update(ctx context.Context, id int64, p *staff.PharmacistPatch) (*staff.Pharmacist, error) {
	return patch(ctx, r.db, id, staff.ErrPharmacistNotFound, p.Apply)
}

func (r pharmacistRepo) List(ctx context.Context) ([]*staff.Pharmacist, error) {
	return findAll[staff.Pharmacist](r.db.WithContext(ctx))
}

type patientRepo struct{ db *gorm.DB }

func (r patientRepo) Create(ctx context.Context, p *patient.Patient) error {
	return create(ctx, r.db, p, patient.ErrPatientAlreadyExists)
}

func (r patientRepo) GetByID(ctx context.Context, id int64) (*patient.Patient, error) {
	return getByID[patient.Patient](ctx, r.db, id, patient.ErrPatientNotFound)
}

func (r patientRepo) GetByUserID(ctx context.Context, userID int64) (*patient.Patient, error) {
	return first[patient.Patient](r.db.WithContext(ctx).Where("user_id = ?", userID), patient.ErrPatientNotFound)
}

func (r patientRepo) Update(ctx context.Context, id int64, p *patient.Patch) (*patient.Patient, error) {
	return patch(ctx, r.db, id, patient.ErrPatientNotFound, p.Apply)
}

func (r patientRepo) List(ctx context.Context) ([]*patient.Patient, error) {
	return findAll[patient.Patient](r.db.WithContext(ctx))
}

type appointmentRepo struct{ db *gorm.DB }

func (r appointmentRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	return create(ctx, r.db, a, nil)
}

func (r appointmentRepo) GetByID(ctx context.Context, id int64) (*appointment.Appointment, error) {
	return getByID[appointment.Appointment](ctx, r.db, id, appointment.ErrAppointmentNotFound)
}

func (r appointmentRepo) Update(ctx context.Context, id int64, p *appointment.Patch) (*appointment.Appointment, error) {
	return patch(ctx, r.db, id, appointment.ErrAppointmentNotFound, p.Apply)
}

func (r appointmentRepo) List(ctx context.Context, q *appointment.ListQuery) ([]*appointment.Appointment, error) {
	db := r.db.WithContext(ctx)
	if q != nil {
		if q.PatientID != nil {
			db = db.Where("patient_id = ?", *q.PatientID)
		}
		if q.DoctorID != nil {
			db = db.Where("doctor_id = ?", *q.DoctorID)
		}
		if q.DepartmentID != nil {
			db = db.Where("department_id = ?", *q.DepartmentID)
		}
		if q.Status != nil {
			db = db.Where("status = ?", *q.Status)
		}
		if q.Day != nil {
			start := startOfDay(*q.Day)
			db = db.Where("appointment_date >= ? AND appointment_date < ?", start, start.AddDate(0, 0, 1))
		}
	}
	return findAll[appointment.Appointment](db)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type tokenRepo struct{ db *gorm.DB }

func (r tokenRepo) Create(ctx context.Context, t *token.Token) error {
	return create(ctx, r.db, t, nil)
}

func (r tokenRepo) GetByID(ctx context.Context, id int64) (*token.Token, error) {
	return getByID[token.Token](ctx, r.db, id, token.ErrTokenNotFound)
}

func (r tokenRepo) GetByAppointmentID(ctx context.Context, appointmentID int64) (*token.Token, error) {
	return first[token.Token](r.db.WithContext(ctx).Where("appointment_id = ?", appointmentID), token.ErrTokenNotFound)
}

func (r tokenRepo) Update(ctx context.Context, id int64, p *token.Patch) (*token.Token, error) {
	return patch(ctx, r.db, id, token.ErrTokenNotFound, p.Apply)
}

func (r tokenRepo) List(ctx context.Context, q *token.ListQuery) ([]*token.Token, error) {
	db := r.db.WithContext(ctx)
	if q != nil {
		if q.DepartmentID != nil {
			db = db.Where("department_id = ?", *q.DepartmentID)
		}
		if len(q.AppointmentIDs) > 0 {
			db = db.Where("appointment_id IN ?", q.AppointmentIDs)
		}
		if len(q.Statuses) > 0 {
			db = db.Where("status IN ?", q.Statuses)
		}
		if q.TokenNumber != nil {
			db = db.Where("token_number = ?", *q.TokenNumber)
		}
	}
	return findAll[token.Token](db)
}

type prescriptionRepo struct{ db *gorm.DB }

func (r prescriptionRepo) Create(ctx context.Context, p *prescription.Prescription) error {
	return create(ctx, r.db, p, nil)
}

func (r prescriptionRepo) GetByID(ctx context.Context, id int64) (*prescription.Prescription, error) {
	return getByID[prescription.Prescription](ctx, r.db, id, prescription.ErrPrescriptionNotFound)
}

func (r prescriptionRepo) Update(ctx context.Context, id int64, p *prescription.Patch) (*prescription.Prescription, error) {
	return patch(ctx, r.db, id, prescription.ErrPrescriptionNotFound, p.Apply)
}

func (r prescriptionRepo) List(ctx context.Context, q *prescription.ListQuery) ([]*prescription.Prescription, error) {
	db := r.db.WithContext(ctx)
	if q != nil {
		if q.PatientID != nil {
			db = db.Where("patient_id = ?", *q.PatientID)
		}
		if q.DoctorID != nil {
			db = db.Where("doctor_id = ?", *q.DoctorID)
		}
		if q.AppointmentID != nil {
			db = db.Where("appointment_id = ?", *q.AppointmentID)
		}
		if q.Status != nil {
			db = db.Where("status = ?", *q.Status)
		}
	}
	return findAll[prescription.Prescription](db)
}

type drugRepo struct{ db *gorm.DB }

func (r drugRepo) Create(ctx context.Context, d *drug.Drug) error {
	return create(ctx, r.db, d, nil)
}

func (r drugRepo) GetByID(ctx context.Context, id int64) (*drug.Drug, error) {
	return getByID[drug.Drug](ctx, r.db, id, drug.ErrDrugNotFound)
}

func (r drugRepo) Update(ctx context.Context, id int64, p *drug.Patch) (*drug.Drug, error) {
	return patch(ctx, r.db, id, drug.ErrDrugNotFound, p.Apply)
}

func (r drugRepo) List(ctx context.Context, q *drug.ListQuery) ([]*drug.Drug, error) {
	db := r.db.WithContext(ctx)
	if q != nil {
		if q.ActiveOnly {
			db = db.Where("is_active = ?", true)
		}
		if q.LowStock {
			db = db.Where("quantity <= min_stock_level")
		}
	}
	return findAll[drug.Drug](db)
}

type theatreRepo struct{ db *gorm.DB }

func (r theatreRepo) Create(ctx context.Context, t *theatre.OperationTheatre) error {
	return create(ctx, r.db, t, nil)
}

func (r theatreRepo) GetByID(ctx context.Context, id int64) (*theatre.OperationTheatre, error) {
	return getByID[theatre.OperationTheatre](ctx, r.db, id, theatre.ErrTheatreNotFound)
}

func (r theatreRepo) Update(ctx context.Context, id int64, p *theatre.TheatrePatch) (*theatre.OperationTheatre, error) {
	return patch(ctx, r.db, id, theatre.ErrTheatreNotFound, p.Apply)
}

func (r theatreRepo) List(ctx context.Context) ([]*theatre.OperationTheatre, error) {
	return findAll[theatre.OperationTheatre](r.db.WithContext(ctx))
}

type surgeryRepo struct{ db *gorm.DB }

func (r surgeryRepo) Create(ctx context.Context, s *theatre.Surgery) error {
	return create(ctx, r.db, s, nil)
}

func (r surgeryRepo) GetByID(ctx context.Context, id int64) (*theatre.Surgery, error) {
	return getByID[theatre.Surgery](ctx, r.db, id, theatre.ErrSurgeryNotFound)
}

func (r surgeryRepo) Update(ctx context.Context, id int64, p *theatre.SurgeryPatch) (*theatre.Surgery, error) {
	return patch(ctx, r.db, id, theatre.ErrSurgeryNotFound, p.Apply)
}

func (r surgeryRepo) List(ctx context.Context, q *theatre.SurgeryQuery) ([]*theatre.Surgery, error) {
	db := r.db.WithContext(ctx)
	if q != nil {
		if q.TheatreID != nil {
			db = db.Where("theatre_id = ?", *q.TheatreID)
		}
		if q.SurgeonID != nil {
			db = db.Where("surgeon_id = ?", *q.SurgeonID)
		}
		if q.PatientID != nil {
			db = db.Where("patient_id = ?", *q.PatientID)
		}
	}
	return findAll[theatre.Surgery](db)
}

type alertRepo struct{ db *gorm.DB }

func (r alertRepo) Create(ctx context.Context, a *alert.EmergencyAlert) error {
	return create(ctx, r.db, a, nil)
}

func (r alertRepo) GetByID(ctx context.Context, id int64) (*alert.EmergencyAlert, error) {
	return getByID[alert.EmergencyAlert](ctx, r.db, id, alert.ErrAlertNotFound)
}

func (r alertRepo) Update(ctx context.Context, id int64, p *alert.Patch) (*alert.EmergencyAlert, error) {
	return patch(ctx, r.db, id, alert.ErrAlertNotFound, p.Apply)
}

func (r alertRepo) List(ctx context.Context, q *alert.ListQuery) ([]*alert.EmergencyAlert, error) {
	db := r.db.WithContext(ctx)
	if q != nil && q.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	return findAll[alert.EmergencyAlert](db)
}

type auditLogRepo struct{ db *gorm.DB }

func (r auditLogRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	return create(ctx, r.db, entry, nil)
}
