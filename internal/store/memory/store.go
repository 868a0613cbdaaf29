// Package memory is the reference record store: per-entity maps behind a
// single read/write lock.
package memory

import (
	"context"
	"sync"
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
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

type state struct {
	users         *collection[domain.User]
	departments   *collection[department.Department]
	doctors       *collection[staff.Doctor]
	nurses        *collection[staff.Nurse]
	pharmacists   *collection[staff.Pharmacist]
	patients      *collection[patient.Patient]
	appointments  *collection[appointment.Appointment]
	tokens        *collection[token.Token]
	prescriptions *collection[prescription.Prescription]
	drugs         *collection[drug.Drug]
	theatres      *collection[theatre.OperationTheatre]
	surgeries     *collection[theatre.Surgery]
	alerts        *collection[alert.EmergencyAlert]
	auditLogs     *collection[domain.AuditLog]
}

func newState() *state {
	return &state{
		users:         newCollection(domain.ErrUserNotFound, func(v *domain.User, id int64) { v.ID = id }, shallow[domain.User]),
		departments:   newCollection(department.ErrDepartmentNotFound, func(v *department.Department, id int64) { v.ID = id }, shallow[department.Department]),
		doctors:       newCollection(staff.ErrDoctorNotFound, func(v *staff.Doctor, id int64) { v.ID = id }, shallow[staff.Doctor]),
		nurses:        newCollection(staff.ErrNurseNotFound, func(v *staff.Nurse, id int64) { v.ID = id }, shallow[staff.Nurse]),
		pharmacists:   newCollection(staff.ErrPharmacistNotFound, func(v *staff.Pharmacist, id int64) { v.ID = id }, shallow[staff.Pharmacist]),
		patients:      newCollection(patient.ErrPatientNotFound, func(v *patient.Patient, id int64) { v.ID = id }, clonePatient),
		appointments:  newCollection(appointment.ErrAppointmentNotFound, func(v *appointment.Appointment, id int64) { v.ID = id }, cloneAppointment),
		tokens:        newCollection(token.ErrTokenNotFound, func(v *token.Token, id int64) { v.ID = id }, cloneToken),
		prescriptions: newCollection(prescription.ErrPrescriptionNotFound, func(v *prescription.Prescription, id int64) { v.ID = id }, clonePrescription),
		drugs:         newCollection(drug.ErrDrugNotFound, func(v *drug.Drug, id int64) { v.ID = id }, cloneDrug),
		theatres:      newCollection(theatre.ErrTheatreNotFound, func(v *theatre.OperationTheatre, id int64) { v.ID = id }, cloneTheatre),
		surgeries:     newCollection(theatre.ErrSurgeryNotFound, func(v *theatre.Surgery, id int64) { v.ID = id }, shallow[theatre.Surgery]),
		alerts:        newCollection(alert.ErrAlertNotFound, func(v *alert.EmergencyAlert, id int64) { v.ID = id }, cloneAlert),
		auditLogs:     newCollection(nil, func(v *domain.AuditLog, id int64) { v.ID = id }, shallow[domain.AuditLog]),
	}
}

// copy clones every collection except the append-only audit log, which is
// shared and rolled back by id instead.
func (s *state) copy() *state {
	return &state{
		users:         s.users.copy(),
		departments:   s.departments.copy(),
		doctors:       s.doctors.copy(),
		nurses:        s.nurses.copy(),
		pharmacists:   s.pharmacists.copy(),
		patients:      s.patients.copy(),
		appointments:  s.appointments.copy(),
		tokens:        s.tokens.copy(),
		prescriptions: s.prescriptions.copy(),
		drugs:         s.drugs.copy(),
		theatres:      s.theatres.copy(),
		surgeries:     s.surgeries.copy(),
		alerts:        s.alerts.copy(),
		auditLogs:     s.auditLogs,
	}
}

// keepCounters copies id counters from a discarded state so ids handed out
// inside a rolled back transaction are not issued again.
func (s *state) keepCounters(from *state) {
	s.users.nextID = from.users.nextID
	s.departments.nextID = from.departments.nextID
	s.doctors.nextID = from.doctors.nextID
	s.nurses.nextID = from.nurses.nextID
	s.pharmacists.nextID = from.pharmacists.nextID
	s.patients.nextID = from.patients.nextID
	s.appointments.nextID = from.appointments.nextID
	s.tokens.nextID = from.tokens.nextID
	s.prescriptions.nextID = from.prescriptions.nextID
	s.drugs.nextID = from.drugs.nextID
	s.theatres.nextID = from.theatres.nextID
	s.surgeries.nextID = from.surgeries.nextID
	s.alerts.nextID = from.alerts.nextID
}

// db is how repositories reach the state: through the store lock, or
// directly when a transaction already holds it.
type db interface {
	read(fn func(*state) error) error
	write(fn func(*state) error) error
}

type Option func(*Store)

// WithClock overrides the clock used to stamp CreatedAt on new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is safe for concurrent use. All writes are serialized by one lock.
type Store struct {
	repos

	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

func New(opts ...Option) *Store {
	s := &Store{state: newState(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.repos = repos{db: s, now: s.now}
	return s
}

func (s *Store) read(fn func(*state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *Store) write(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// InTx holds the writer lock for the whole of fn. fn must only use the
// store it is given; calling back into s would deadlock.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.copy()
	auditMark := s.state.auditLogs.nextID
	committed := false
	defer func() {
		if !committed {
			backup.keepCounters(s.state)
			backup.auditLogs.dropAfter(auditMark)
			s.state = backup
		}
	}()

	if err := fn(&txStore{repos{db: txDB{st: s.state}, now: s.now}}); err != nil {
		return err
	}
	committed = true
	return nil
}

type txDB struct {
	st *state
}

func (t txDB) read(fn func(*state) error) error { return fn(t.st) }
func (t txDB) write(fn func(*state) error) error { return fn(t.st) }

type txStore struct {
	repos
}

// InTx inside a transaction joins the outer one.
func (t *txStore) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t)
}

// Snapshot is the serialisable representation of the store contents,
// including id counters.
type Snapshot struct {
	Users         map[int64]domain.User               `json:"users"`
	Departments   map[int64]department.Department     `json:"departments"`
	Doctors       map[int64]staff.Doctor              `json:"doctors"`
	Nurses        map[int64]staff.Nurse               `json:"nurses"`
	Pharmacists   map[int64]staff.Pharmacist          `json:"pharmacists"`
	Patients      map[int64]patient.Patient           `json:"patients"`
	Appointments  map[int64]appointment.Appointment   `json:"appointments"`
	Tokens        map[int64]token.Token               `json:"tokens"`
	Prescriptions map[int64]prescription.Prescription `json:"prescriptions"`
	Drugs         map[int64]drug.Drug                 `json:"drugs"`
	Theatres      map[int64]theatre.OperationTheatre  `json:"theatres"`
	Surgeries     map[int64]theatre.Surgery           `json:"surgeries"`
	Alerts        map[int64]alert.EmergencyAlert      `json:"alerts"`
	AuditLogs     map[int64]domain.AuditLog           `json:"auditLogs"`
	NextIDs       map[string]int64                    `json:"nextIds"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	return Snapshot{
		Users:         st.users.values(),
		Departments:   st.departments.values(),
		Doctors:       st.doctors.values(),
		Nurses:        st.nurses.values(),
		Pharmacists:   st.pharmacists.values(),
		Patients:      st.patients.values(),
		Appointments:  st.appointments.values(),
		Tokens:        st.tokens.values(),
		Prescriptions: st.prescriptions.values(),
		Drugs:         st.drugs.values(),
		Theatres:      st.theatres.values(),
		Surgeries:     st.surgeries.values(),
		Alerts:        st.alerts.values(),
		AuditLogs:     st.auditLogs.values(),
		NextIDs: map[string]int64{
			"users":         st.users.nextID,
			"departments":   st.departments.nextID,
			"doctors":       st.doctors.nextID,
			"nurses":        st.nurses.nextID,
			"pharmacists":   st.pharmacists.nextID,
			"patients":      st.patients.nextID,
			"appointments":  st.appointments.nextID,
			"tokens":        st.tokens.nextID,
			"prescriptions": st.prescriptions.nextID,
			"drugs":         st.drugs.nextID,
			"theatres":      st.theatres.nextID,
			"surgeries":     st.surgeries.nextID,
			"alerts":        st.alerts.nextID,
			"auditLogs":     st.auditLogs.nextID,
		},
	}
}

func clonePatient(v *patient.Patient) *patient.Patient {
	c := *v
	c.DateOfBirth = clonePtr(v.DateOfBirth)
	c.EmergencyContact = clonePtr(v.EmergencyContact)
	if v.Allergies != nil {
		c.Allergies = append([]string(nil), v.Allergies...)
	}
	return &c
}

func cloneAppointment(v *appointment.Appointment) *appointment.Appointment {
	c := *v
	c.CancelledAt = clonePtr(v.CancelledAt)
	c.CompletedAt = clonePtr(v.CompletedAt)
	return &c
}

func cloneToken(v *token.Token) *token.Token {
	c := *v
	c.CalledAt = clonePtr(v.CalledAt)
	c.CompletedAt = clonePtr(v.CompletedAt)
	return &c
}

func clonePrescription(v *prescription.Prescription) *prescription.Prescription {
	c := *v
	if v.Medications != nil {
		c.Medications = append([]prescription.Medication(nil), v.Medications...)
	}
	c.DispensedAt = clonePtr(v.DispensedAt)
	c.DispensedBy = clonePtr(v.DispensedBy)
	return &c
}

func cloneDrug(v *drug.Drug) *drug.Drug {
	c := *v
	c.ExpiryDate = clonePtr(v.ExpiryDate)
	return &c
}

func cloneTheatre(v *theatre.OperationTheatre) *theatre.OperationTheatre {
	c := *v
	c.CurrentSurgeryID = clonePtr(v.CurrentSurgeryID)
	c.NextAvailable = clonePtr(v.NextAvailable)
	return &c
}

func cloneAlert(v *alert.EmergencyAlert) *alert.EmergencyAlert {
	c := *v
	c.ResolvedAt = clonePtr(v.ResolvedAt)
	return &c
}
