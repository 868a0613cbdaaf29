package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store/memory"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/metrics"
)

// clinicDay is 2024-03-01 09:00 UTC, whose epoch milliseconds end in 0000.
var clinicDay = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type clock struct {
	mu   sync.Mutex
	at   time.Time
	step time.Duration
}

// now returns the current instant and then advances by step.
func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	at := c.at
	c.at = c.at.Add(c.step)
	return at
}

type published struct {
	Type   realtime.EventType
	Origin string
	Data   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (r *recordingPublisher) Publish(ctx context.Context, t realtime.EventType, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{Type: t, Origin: realtime.OriginFrom(ctx), Data: data})
}

func (r *recordingPublisher) ofType(t realtime.EventType) []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []published
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type hospital struct {
	store *memory.Store
	pub   *recordingPublisher
	clock *clock
	deps  service.Deps

	cardiology *department.Department
	emergency  *department.Department
	smith      *staff.Doctor // Cardiology
	jones      *staff.Doctor // Emergency
	mary       *staff.Nurse
	bob        *staff.Pharmacist
	alice      *patient.Patient
	carl       *patient.Patient

	admin, doctor, otherDoctor, nurse, pharmacy, patient, otherPatient *access.Principal
}

// newHospital seeds two departments with one doctor each, a nurse, a
// pharmacist and two patients. The clock advances one second per reading.
func newHospital(t *testing.T) *hospital {
	t.Helper()
	return newHospitalAt(t, &clock{at: clinicDay, step: time.Second})
}

func newHospitalAt(t *testing.T, c *clock) *hospital {
	t.Helper()
	ctx := context.Background()
	s := memory.New(memory.WithClock(c.now))
	pub := &recordingPublisher{}

	h := &hospital{
		store: s,
		pub:   pub,
		clock: c,
		deps: service.Deps{
			Store:     s,
			Publisher: pub,
			Metrics:   metrics.NewCollector("test", prometheus.NewRegistry()),
			Log:       zap.NewNop(),
			Now:       c.now,
		},
	}

	h.cardiology = &department.Department{Name: "Cardiology", IsActive: true}
	require.NoError(t, s.Departments().Create(ctx, h.cardiology))
	h.emergency = &department.Department{Name: "Emergency", IsActive: true}
	require.NoError(t, s.Departments().Create(ctx, h.emergency))

	user := func(username string, role domain.Role, name string) *domain.User {
		u := &domain.User{Username: username, Role: role, FullName: name, IsActive: true}
		require.NoError(t, s.Users().Create(ctx, u))
		return u
	}

	adminUser := user("admin", domain.RoleAdmin, "Admin")
	smithUser := user("dr.smith", domain.RoleDoctor, "Dr. John Smith")
	jonesUser := user("dr.jones", domain.RoleDoctor, "Dr. Sarah Jones")
	maryUser := user("nurse.mary", domain.RoleNurse, "Mary Johnson")
	bobUser := user("pharmacy.bob", domain.RolePharmacy, "Bob Wilson")
	aliceUser := user("alice", domain.RolePatient, "Alice Doe")
	carlUser := user("carl", domain.RolePatient, "Carl Roe")

	h.smith = &staff.Doctor{UserID: smithUser.ID, DepartmentID: h.cardiology.ID, Specialization: "Cardiology", Type: staff.DoctorSpecialist, LicenseNumber: "DOC-1", IsAvailable: true}
	require.NoError(t, s.Doctors().Create(ctx, h.smith))
	h.jones = &staff.Doctor{UserID: jonesUser.ID, DepartmentID: h.emergency.ID, Specialization: "Emergency Medicine", Type: staff.DoctorConsultant, LicenseNumber: "DOC-2", IsAvailable: true}
	require.NoError(t, s.Doctors().Create(ctx, h.jones))
	h.mary = &staff.Nurse{UserID: maryUser.ID, DepartmentID: h.cardiology.ID, Shift: staff.ShiftDay, IsOnDuty: true}
	require.NoError(t, s.Nurses().Create(ctx, h.mary))
	h.bob = &staff.Pharmacist{UserID: bobUser.ID, Position: staff.PositionPharmacist, IsOnDuty: true}
	require.NoError(t, s.Pharmacists().Create(ctx, h.bob))
	h.alice = &patient.Patient{UserID: aliceUser.ID}
	require.NoError(t, s.Patients().Create(ctx, h.alice))
	h.carl = &patient.Patient{UserID: carlUser.ID}
	require.NoError(t, s.Patients().Create(ctx, h.carl))

	h.admin = &access.Principal{UserID: adminUser.ID, Role: domain.RoleAdmin}
	h.doctor = &access.Principal{UserID: smithUser.ID, Role: domain.RoleDoctor, ProfileID: &h.smith.ID}
	h.otherDoctor = &access.Principal{UserID: jonesUser.ID, Role: domain.RoleDoctor, ProfileID: &h.jones.ID}
	h.nurse = &access.Principal{UserID: maryUser.ID, Role: domain.RoleNurse, ProfileID: &h.mary.ID}
	h.pharmacy = &access.Principal{UserID: bobUser.ID, Role: domain.RolePharmacy, ProfileID: &h.bob.ID}
	h.patient = &access.Principal{UserID: aliceUser.ID, Role: domain.RolePatient, ProfileID: &h.alice.ID}
	h.otherPatient = &access.Principal{UserID: carlUser.ID, Role: domain.RolePatient, ProfileID: &h.carl.ID}
	return h
}

func (h *hospital) queue() *service.QueueService {
	return service.NewQueueService(h.deps)
}

func (h *hospital) appointments() *service.AppointmentService {
	return service.NewAppointmentService(h.deps, h.queue())
}

// booking is Alice's request to see Dr. Smith in Cardiology today.
func (h *hospital) booking() *appointment.CreateAppointmentCommand {
	return &appointment.CreateAppointmentCommand{
		PatientID:       h.alice.ID,
		DoctorID:        h.smith.ID,
		DepartmentID:    h.cardiology.ID,
		AppointmentDate: clinicDay.Add(time.Hour),
	}
}

func (h *hospital) book(t *testing.T, cmd *appointment.CreateAppointmentCommand) int64 {
	t.Helper()
	v, err := h.queue().Book(context.Background(), h.admin, cmd)
	require.NoError(t, err)
	return v.ID
}
