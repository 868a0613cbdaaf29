package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store/memory"
)

type fixture struct {
	s       *memory.Store
	dept    *department.Department
	doctor  *staff.Doctor
	patient *patient.Patient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	dept := &department.Department{Name: "Cardiology", IsActive: true}
	require.NoError(t, s.Departments().Create(ctx, dept))

	du := &domain.User{Username: "dr.smith", Role: domain.RoleDoctor, FullName: "Dr. John Smith"}
	require.NoError(t, s.Users().Create(ctx, du))
	doc := &staff.Doctor{UserID: du.ID, DepartmentID: dept.ID, Specialization: "Cardiology", IsAvailable: true}
	require.NoError(t, s.Doctors().Create(ctx, doc))

	pu := &domain.User{Username: "pat", Role: domain.RolePatient, FullName: "Pat Doe"}
	require.NoError(t, s.Users().Create(ctx, pu))
	p := &patient.Patient{UserID: pu.ID}
	require.NoError(t, s.Patients().Create(ctx, p))

	return &fixture{s: s, dept: dept, doctor: doc, patient: p}
}

func (f *fixture) appointment(t *testing.T, doctorID int64) *appointment.Appointment {
	t.Helper()
	a := &appointment.Appointment{
		PatientID:       f.patient.ID,
		DoctorID:        doctorID,
		DepartmentID:    f.dept.ID,
		AppointmentDate: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		TokenNumber:     "CAR-0001",
		Status:          appointment.StatusScheduled,
	}
	require.NoError(t, f.s.Appointments().Create(context.Background(), a))
	return a
}

func TestReader_AppointmentInlinesRelations(t *testing.T) {
	f := newFixture(t)
	a := f.appointment(t, f.doctor.ID)

	r := store.NewReader(f.s, zap.NewNop())
	v, err := r.Appointment(context.Background(), a.ID)
	require.NoError(t, err)

	assert.Equal(t, a.ID, v.ID)
	assert.Equal(t, "Pat Doe", v.Patient.User.FullName)
	assert.Equal(t, "Dr. John Smith", v.Doctor.User.FullName)
	assert.Equal(t, "Cardiology", v.Doctor.Department.Name)
	assert.Equal(t, "Cardiology", v.Department.Name)
}

func TestReader_SingleReadFailsOnMissingRelation(t *testing.T) {
	f := newFixture(t)
	a := f.appointment(t, 999)

	r := store.NewReader(f.s, zap.NewNop())
	_, err := r.Appointment(context.Background(), a.ID)
	assert.ErrorIs(t, err, staff.ErrDoctorNotFound)
}

func TestReader_ListOmitsRecordsWithMissingRelations(t *testing.T) {
	f := newFixture(t)
	good := f.appointment(t, f.doctor.ID)
	f.appointment(t, 999)

	core, logs := observer.New(zapcore.WarnLevel)
	r := store.NewReader(f.s, zap.New(core))

	views, err := r.Appointments(context.Background(), &appointment.ListQuery{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, good.ID, views[0].ID)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "omitting record with missing relation", logs.All()[0].Message)
}
