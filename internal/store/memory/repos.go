package memory

import (
	"context"
	"strings"
	"time"

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

type repos struct {
	db  db
	now func() time.Time
}

func (r repos) Users() domain.UserRepository { return userRepo{r} }
func (r repos) Departments() department.Repository { return departmentRepo{r} }
func (r repos) Doctors() staff.DoctorRepository { return doctorRepo{r} }
func (r repos) Nurses() staff.NurseRepository { return nurseRepo{r} }
func (r repos) Pharmacists() staff.PharmacistRepository { return pharmacistRepo{r} }
func (r repos) Patients() patient.Repository { return patientRepo{r} }
func (r repos) Appointments() appointment.Repository { return appointmentRepo{r} }
func (r repos) Tokens() token.Repository { return tokenRepo{r} }
func (r repos) Prescriptions() prescription.Repository { return prescriptionRepo{r} }
func (r repos) Drugs() drug.Repository { return drugRepo{r} }
func (r repos) Theatres() theatre.TheatreRepository { return theatreRepo{r} }
func (r repos) Surgeries() theatre.SurgeryRepository { return surgeryRepo{r} }
func (r repos) Alerts() alert.Repository { return alertRepo{r} }
func (r repos) AuditLogs() domain.AuditLogRepository { return auditLogRepo{r} }

// stamp fills a zero CreatedAt the way the database default would.
func (r repos) stamp(t *time.Time) {
	if t.IsZero() {
		*t = r.now()
	}
}

// get and list are the shared read paths.
func get[T any](ctx context.Context, r repos, c func(*state) *collection[T], id int64) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *T
	err := r.db.read(func(st *state) error {
		v, err := c(st).get(id)
		out = v
		return err
	})
	return out, err
}

func list[T any](ctx context.Context, r repos, c func(*state) *collection[T], match func(*T) bool) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*T
	err := r.db.read(func(st *state) error {
		out = c(st).list(match)
		return nil
	})
	return out, err
}

func find[T any](ctx context.Context, r repos, c func(*state) *collection[T], match func(*T) bool) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *T
	err := r.db.read(func(st *state) error {
		col := c(st)
		v, ok := col.find(match)
		if !ok {
			return col.notFound
		}
		out = v
		return nil
	})
	return out, err
}

func update[T any](ctx context.Context, r repos, c func(*state) *collection[T], id int64, apply func(*T)) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *T
	err := r.db.write(func(st *state) error {
		v, err := c(st).update(id, apply)
		out = v
		return err
	})
	return out, err
}

func insert[T any](ctx context.Context, r repos, c func(*state) *collection[T], v *T, check func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.write(func(st *state) error {
		if check != nil {
			if err := check(st); err != nil {
				return err
			}
		}
		c(st).insert(v)
		return nil
	})
}

func usersOf(st *state) *collection[domain.User] { return st.users }

type userRepo struct{ repos }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	u.Username = domain.NormalizeUsername(u.Username)
	r.stamp(&u.CreatedAt)
	return insert(ctx, r.repos, usersOf, u, func(st *state) error {
		if _, taken := st.users.find(func(v *domain.User) bool { return v.Username == u.Username }); taken {
			return domain.ErrUsernameTaken
		}
		return nil
	})
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return get(ctx, r.repos, usersOf, id)
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)
	return find(ctx, r.repos, usersOf, func(v *domain.User) bool { return v.Username == username })
}

func (r userRepo) Update(ctx context.Context, id int64, patch *domain.UserPatch) (*domain.User, error) {
	return update(ctx, r.repos, usersOf, id, patch.Apply)
}

func (r userRepo) List(ctx context.Context) ([]*domain.User, error) {
	return list(ctx, r.repos, usersOf, nil)
}

func departmentsOf(st *state) *collection[department.Department] { return st.departments }

type departmentRepo struct{ repos }

func (r departmentRepo) Create(ctx context.Context, d *department.Department) error {
	r.stamp(&d.CreatedAt)
	return insert(ctx, r.repos, departmentsOf, d, func(st *state) error {
		if _, taken := st.departments.find(func(v *department.Department) bool { return strings.EqualFold(v.Name, d.Name) }); taken {
			return department.ErrNameTaken
		}
		return nil
	})
}

func (r departmentRepo) GetByID(ctx context.Context, id int64) (*department.Department, error) {
	return get(ctx, r.repos, departmentsOf, id)
}

func (r departmentRepo) Update(ctx context.Context, id int64, patch *department.Patch) (*department.Department, error) {
	return update(ctx, r.repos, departmentsOf, id, patch.Apply)
}

func (r departmentRepo) List(ctx context.Context) ([]*department.Department, error) {
	return list(ctx, r.repos, departmentsOf, nil)
}

func doctorsOf(st *state) *collection[staff.Doctor] { return st.doctors }

type doctorRepo struct{ repos }

func (r doctorRepo) Create(ctx context.Context, d *staff.Doctor) error {
	return insert(ctx, r.repos, doctorsOf, d, func(st *state) error {
		if _, exists := st.doctors.find(func(v *staff.Doctor) bool { return v.UserID == d.UserID }); exists {
			return staff.ErrProfileExists
		}
		return nil
	})
}

func (r doctorRepo) GetByID(ctx context.Context, id int64) (*staff.Doctor, error) {
	return get(ctx, r.repos, doctorsOf, id)
}

func (r doctorRepo) GetByUserID(ctx context.Context, userID int64) (*staff.Doctor, error) {
	return find(ctx, r.repos, doctorsOf, func(v *staff.Doctor) bool { return v.UserID == userID })
}

func (r doctorRepo) Update(ctx context.Context, id int64, patch *staff.DoctorPatch) (*staff.Doctor, error) {
	return update(ctx, r.repos, doctorsOf, id, patch.Apply)
}

func (r doctorRepo) List(ctx context.Context, q *staff.DoctorQuery) ([]*staff.Doctor, error) {
	return list(ctx, r.repos, doctorsOf, q.Matches)
}

func nursesOf(st *state) *collection[staff.Nurse] { return st.nurses }

type nurseRepo struct{ repos }

func (r nurseRepo) Create(ctx context.Context, n *staff.Nurse) error {
	return insert(ctx, r.repos, nursesOf, n, func(st *state) error {
		if _, exists := st.nurses.find(func(v *staff.Nurse) bool { return v.UserID == n.UserID }); exists {
			return staff.ErrProfileExists
		}
		return nil
	})
}

func (r nurseRepo) GetByID(ctx context.Context, id int64) (*staff.Nurse, error) {
	return get(ctx, r.repos, nursesOf, id)
}

func (r nurseRepo) GetByUserID(ctx context.Context, userID int64) (*staff.Nurse, error) {
	return find(ctx, r.repos, nursesOf, func(v *staff.Nurse) bool { return v.UserID == userID })
}

func (r nurseRepo) Update(ctx context.Context, id int64, patch *staff.NursePatch) (*staff.Nurse, error) {
	return update(ctx, r.repos, nursesOf, id, patch.Apply)
}

func (r nurseRepo) List(ctx context.Context) ([]*staff.Nurse, error) {
	return list(ctx, r.repos, nursesOf, nil)
}

func pharmacistsOf(st *state) *collection[staff.Pharmacist] { return st.pharmacists }

type pharmacistRepo struct{ repos }

func (r pharmacistRepo) Create(ctx context.Context, p *staff.Pharmacist) error {
	return insert(ctx, r.repos, pharmacistsOf, p, func(st *state) error {
		if _, exists := st.pharmacists.find(func(v *staff.Pharmacist) bool { return v.UserID == p.UserID }); exists {
			return staff.ErrProfileExists
		}
		return nil
	})
}

func (r pharmacistRepo) GetByID(ctx context.Context, id int64) (*staff.Pharmacist, error) {
	return get(ctx, r.repos, pharmacistsOf, id)
}

func (r pharmacistRepo) GetByUserID(ctx context.Context, userID int64) (*staff.Pharmacist, error) {
	return find(ctx, r.repos, pharmacistsOf, func(v *staff.Pharmacist) bool { return v.UserID == userID })
}

func (r pharmacistRepo) Update(ctx context.Context, id int64, patch *staff.PharmacistPatch) (*staff.Pharmacist, error) {
	return update(ctx, r.repos, pharmacistsOf, id, patch.Apply)
}

func (r pharmacistRepo) List(ctx context.Context) ([]*staff.Pharmacist, error) {
	return list(ctx, r.repos, pharmacistsOf, nil)
}

func patientsOf(st *state) *collection[patient.Patient] { return st.patients }

type patientRepo struct{ repos }

func (r patientRepo) Create(ctx context.Context, p *patient.Patient) error {
	r.stamp(&p.CreatedAt)
	return insert(ctx, r.repos, patientsOf, p, func(st *state) error {
		if _, exists := st.patients.find(func(v *patient.Patient) bool { return v.UserID == p.UserID }); exists {
			return patient.ErrPatientAlreadyExists
		}
		return nil
	})
}

func (r patientRepo) GetByID(ctx context.Context, id int64) (*patient.Patient, error) {
	return get(ctx, r.repos, patientsOf, id)
}

func (r patientRepo) GetByUserID(ctx context.Context, userID int64) (*patient.Patient, error) {
	return find(ctx, r.repos, patientsOf, func(v *patient.Patient) bool { return v.UserID == userID })
}

func (r patientRepo) Update(ctx context.Context, id int64, patch *patient.Patch) (*patient.Patient, error) {
	return update(ctx, r.repos, patientsOf, id, patch.Apply)
}

func (r patientRepo) List(ctx context.Context) ([]*patient.Patient, error) {
	return list(ctx, r.repos, patientsOf, nil)
}

func appointmentsOf(st *state) *collection[appointment.Appointment] { return st.appointments }

type appointmentRepo struct{ repos }

func (r appointmentRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	r.stamp(&a.CreatedAt)
	return insert(ctx, r.repos, appointmentsOf, a, nil)
}

func (r appointmentRepo) GetByID(ctx context.Context, id int64) (*appointment.Appointment, error) {
	return get(ctx, r.repos, appointmentsOf, id)
}

func (r appointmentRepo) Update(ctx context.Context, id int64, patch *appointment.Patch) (*appointment.Appointment, error) {
	return update(ctx, r.repos, appointmentsOf, id, patch.Apply)
}

func (r appointmentRepo) List(ctx context.Context, q *appointment.ListQuery) ([]*appointment.Appointment, error) {
	return list(ctx, r.repos, appointmentsOf, q.Matches)
}

func tokensOf(st *state) *collection[token.Token] { return st.tokens }

type tokenRepo struct{ repos }

func (r tokenRepo) Create(ctx context.Context, t *token.Token) error {
	r.stamp(&t.CreatedAt)
	return insert(ctx, r.repos, tokensOf, t, nil)
}

func (r tokenRepo) GetByID(ctx context.Context, id int64) (*token.Token, error) {
	return get(ctx, r.repos, tokensOf, id)
}

func (r tokenRepo) GetByAppointmentID(ctx context.Context, appointmentID int64) (*token.Token, error) {
	return find(ctx, r.repos, tokensOf, func(v *token.Token) bool { return v.AppointmentID == appointmentID })
}

func (r tokenRepo) Update(ctx context.Context, id int64, patch *token.Patch) (*token.Token, error) {
	return update(ctx, r.repos, tokensOf, id, patch.Apply)
}

func (r tokenRepo) List(ctx context.Context, q *token.ListQuery) ([]*token.Token, error) {
	return list(ctx, r.repos, tokensOf, q.Matches)
}

func prescriptionsOf(st *state) *collection[prescription.Prescription] { return st.prescriptions }

type prescriptionRepo struct{ repos }

func (r prescriptionRepo) Create(ctx context.Context, p *prescription.Prescription) error {
	r.stamp(&p.CreatedAt)
	return insert(ctx, r.repos, prescriptionsOf, p, nil)
}

func (r prescriptionRepo) GetByID(ctx context.Context, id int64) (*prescription.Prescription, error) {
	return get(ctx, r.repos, prescriptionsOf, id)
}

func (r prescriptionRepo) Update(ctx context.Context, id int64, patch *prescription.Patch) (*prescription.Prescription, error) {
	return update(ctx, r.repos, prescriptionsOf, id, patch.Apply)
}

func (r prescriptionRepo) List(ctx context.Context, q *prescription.ListQuery) ([]*prescription.Prescription, error) {
	return list(ctx, r.repos, prescriptionsOf, q.Matches)
}

func drugsOf(st *state) *collection[drug.Drug] { return st.drugs }

type drugRepo struct{ repos }

func (r drugRepo) Create(ctx context.Context, d *drug.Drug) error {
	r.stamp(&d.CreatedAt)
	return insert(ctx, r.repos, drugsOf, d, nil)
}

func (r drugRepo) GetByID(ctx context.Context, id int64) (*drug.Drug, error) {
	return get(ctx, r.repos, drugsOf, id)
}

func (r drugRepo) Update(ctx context.Context, id int64, patch *drug.Patch) (*drug.Drug, error) {
	return update(ctx, r.repos, drugsOf, id, patch.Apply)
}

func (r drugRepo) List(ctx context.Context, q *drug.ListQuery) ([]*drug.Drug, error) {
	return list(ctx, r.repos, drugsOf, q.Matches)
}

func theatresOf(st *state) *collection[theatre.OperationTheatre] { return st.theatres }

type theatreRepo struct{ repos }

func (r theatreRepo) Create(ctx context.Context, t *theatre.OperationTheatre) error {
	r.stamp(&t.CreatedAt)
	return insert(ctx, r.repos, theatresOf, t, nil)
}

func (r theatreRepo) GetByID(ctx context.Context, id int64) (*theatre.OperationTheatre, error) {
	return get(ctx, r.repos, theatresOf, id)
}

func (r theatreRepo) Update(ctx context.Context, id int64, patch *theatre.TheatrePatch) (*theatre.OperationTheatre, error) {
	return update(ctx, r.repos, theatresOf, id, patch.Apply)
}

func (r theatreRepo) List(ctx context.Context) ([]*theatre.OperationTheatre, error) {
	return list(ctx, r.repos, theatresOf, nil)
}

func surgeriesOf(st *state) *collection[theatre.Surgery] { return st.surgeries }

type surgeryRepo struct{ repos }

func (r surgeryRepo) Create(ctx context.Context, s *theatre.Surgery) error {
	r.stamp(&s.CreatedAt)
	return insert(ctx, r.repos, surgeriesOf, s, nil)
}

func (r surgeryRepo) GetByID(ctx context.Context, id int64) (*theatre.Surgery, error) {
	return get(ctx, r.repos, surgeriesOf, id)
}

func (r surgeryRepo) Update(ctx context.Context, id int64, patch *theatre.SurgeryPatch) (*theatre.Surgery, error) {
	return update(ctx, r.repos, surgeriesOf, id, patch.Apply)
}

func (r surgeryRepo) List(ctx context.Context, q *theatre.SurgeryQuery) ([]*theatre.Surgery, error) {
	return list(ctx, r.repos, surgeriesOf, q.Matches)
}

func alertsOf(st *state) *collection[alert.EmergencyAlert] { return st.alerts }

type alertRepo struct{ repos }

func (r alertRepo) Create(ctx context.Context, a *alert.EmergencyAlert) error {
	r.stamp(&a.CreatedAt)
	return insert(ctx, r.repos, alertsOf, a, nil)
}

func (r alertRepo) GetByID(ctx context.Context, id int64) (*alert.EmergencyAlert, error) {
	return get(ctx, r.repos, alertsOf, id)
}

func (r alertRepo) Update(ctx context.Context, id int64, patch *alert.Patch) (*alert.EmergencyAlert, error) {
	return update(ctx, r.repos, alertsOf, id, patch.Apply)
}

func (r alertRepo) List(ctx context.Context, q *alert.ListQuery) ([]*alert.EmergencyAlert, error) {
	return list(ctx, r.repos, alertsOf, q.Matches)
}

type auditLogRepo struct{ repos }

func (r auditLogRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.stamp(&entry.OccurredAt)
	return insert(ctx, r.repos, func(st *state) *collection[domain.AuditLog] { return st.auditLogs }, entry, nil)
}
