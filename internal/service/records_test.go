package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/alert"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/drug"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/theatre"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
)

func TestAlerts_RaiseAndResolve(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	alerts := service.NewAlertService(h.deps)

	_, err := alerts.Create(ctx, h.nurse, &alert.CreateAlertCommand{Type: "code-purple", Location: "Ward 3"})
	assert.ErrorIs(t, err, alert.ErrInvalidType)
	_, err = alerts.Create(ctx, h.nurse, &alert.CreateAlertCommand{Type: alert.TypeCodeBlue, Location: "  "})
	assert.ErrorIs(t, err, alert.ErrLocationRequired)
	_, err = alerts.Create(ctx, nil, &alert.CreateAlertCommand{Type: alert.TypeCodeBlue, Location: "Ward 3"})
	assert.ErrorIs(t, err, access.ErrUnauthenticated)

	a, err := alerts.Create(ctx, h.nurse, &alert.CreateAlertCommand{Type: alert.TypeCodeBlue, Location: " ICU Bed 4 "})
	require.NoError(t, err)
	assert.True(t, a.IsActive)
	assert.Equal(t, "ICU Bed 4", a.Location)
	assert.Equal(t, h.nurse.UserID, a.CreatedBy)

	active, err := alerts.List(ctx, h.patient, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Mary Johnson", active[0].Creator.FullName)

	resolved, err := alerts.Resolve(ctx, h.doctor, a.ID)
	require.NoError(t, err)
	assert.False(t, resolved.IsActive)
	require.NotNil(t, resolved.ResolvedAt)
	first := *resolved.ResolvedAt

	again, err := alerts.Resolve(ctx, h.doctor, a.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *again.ResolvedAt)

	active, err = alerts.List(ctx, h.patient, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := alerts.List(ctx, h.patient, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.Len(t, h.pub.ofType(realtime.EventEmergencyAlert), 3)
}

func TestDrugs_StockKeeping(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	drugs := service.NewDrugService(h.deps)

	_, err := drugs.Create(ctx, h.nurse, &drug.CreateDrugCommand{Name: "Paracetamol"})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = drugs.Create(ctx, h.pharmacy, &drug.CreateDrugCommand{Quantity: -1, UnitPriceCents: -5})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)

	para, err := drugs.Create(ctx, h.pharmacy, &drug.CreateDrugCommand{Name: "Paracetamol", Quantity: 50, UnitPriceCents: 120})
	require.NoError(t, err)
	assert.Equal(t, drug.DefaultMinStockLevel, para.MinStockLevel)

	ibu, err := drugs.Create(ctx, h.admin, &drug.CreateDrugCommand{Name: "Ibuprofen", Quantity: 5, MinStockLevel: ptr(20)})
	require.NoError(t, err)

	low, err := drugs.LowStock(ctx, h.pharmacy)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, ibu.ID, low[0].ID)

	_, err = drugs.AdjustStock(ctx, h.pharmacy, para.ID, -51)
	assert.ErrorIs(t, err, drug.ErrInsufficientStock)

	para, err = drugs.AdjustStock(ctx, h.pharmacy, para.ID, -45)
	require.NoError(t, err)
	assert.Equal(t, 5, para.Quantity)

	low, err = drugs.LowStock(ctx, h.pharmacy)
	require.NoError(t, err)
	assert.Len(t, low, 2)

	_, err = drugs.List(ctx, h.doctor, nil)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestTheatres_SurgeryOccupiesTheatre(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	theatres := service.NewTheatreService(h.deps)

	ot, err := theatres.CreateTheatre(ctx, h.admin, &theatre.CreateTheatreCommand{Name: "OT-1"})
	require.NoError(t, err)
	assert.True(t, ot.IsAvailable)

	schedule := func() *theatre.CreateSurgeryCommand {
		return &theatre.CreateSurgeryCommand{
			PatientID:     h.alice.ID,
			TheatreID:     ot.ID,
			SurgeryType:   "Angioplasty",
			ScheduledDate: clinicDay.Add(2 * time.Hour),
			DurationMins:  90,
		}
	}

	_, err = theatres.CreateSurgery(ctx, h.nurse, schedule())
	assert.ErrorIs(t, err, access.ErrForbidden)

	short := schedule()
	short.DurationMins = 5
	_, err = theatres.CreateSurgery(ctx, h.doctor, short)
	assert.ErrorIs(t, err, theatre.ErrInvalidDuration)

	first, err := theatres.CreateSurgery(ctx, h.doctor, schedule())
	require.NoError(t, err)
	assert.Equal(t, h.smith.ID, first.SurgeonID)
	assert.Equal(t, "OT-1", first.Theatre.Name)

	second, err := theatres.CreateSurgery(ctx, h.doctor, schedule())
	require.NoError(t, err)

	_, err = theatres.UpdateSurgery(ctx, h.doctor, first.ID, &theatre.SurgeryPatch{Status: ptr(theatre.SurgeryCompleted)})
	assert.ErrorIs(t, err, theatre.ErrInvalidStatusTransition)

	started, err := theatres.UpdateSurgery(ctx, h.doctor, first.ID, &theatre.SurgeryPatch{Status: ptr(theatre.SurgeryInProgress)})
	require.NoError(t, err)
	assert.Equal(t, theatre.SurgeryInProgress, started.Status)
	assert.False(t, started.Theatre.IsAvailable)
	require.NotNil(t, started.Theatre.CurrentSurgeryID)
	assert.Equal(t, first.ID, *started.Theatre.CurrentSurgeryID)
	require.NotNil(t, started.Theatre.NextAvailable)

	_, err = theatres.UpdateSurgery(ctx, h.doctor, second.ID, &theatre.SurgeryPatch{Status: ptr(theatre.SurgeryInProgress)})
	assert.ErrorIs(t, err, theatre.ErrTheatreUnavailable)

	// cancelling a surgery that is not running leaves the theatre busy
	_, err = theatres.UpdateSurgery(ctx, h.doctor, second.ID, &theatre.SurgeryPatch{Status: ptr(theatre.SurgeryCancelled)})
	require.NoError(t, err)
	busy, err := h.store.Theatres().GetByID(ctx, ot.ID)
	require.NoError(t, err)
	assert.False(t, busy.IsAvailable)

	done, err := theatres.UpdateSurgery(ctx, h.doctor, first.ID, &theatre.SurgeryPatch{Status: ptr(theatre.SurgeryCompleted)})
	require.NoError(t, err)
	assert.True(t, done.Theatre.IsAvailable)
}

func TestDepartments(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	depts := service.NewDepartmentService(h.deps)

	_, err := depts.Create(ctx, h.doctor, &department.CreateDepartmentCommand{Name: "Neurology"})
	assert.ErrorIs(t, err, access.ErrForbidden)
	_, err = depts.Create(ctx, h.admin, &department.CreateDepartmentCommand{Name: "   "})
	assert.ErrorIs(t, err, department.ErrNameRequired)

	d, err := depts.Create(ctx, h.admin, &department.CreateDepartmentCommand{Name: " Neurology ", Description: "Brain and nerves"})
	require.NoError(t, err)
	assert.Equal(t, "Neurology", d.Name)
	assert.True(t, d.IsActive)

	d, err = depts.Update(ctx, h.admin, d.ID, &department.Patch{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, d.IsActive)

	all, err := depts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = depts.Get(ctx, 999)
	assert.ErrorIs(t, err, department.ErrDepartmentNotFound)
}

func TestStaff_CreateProfiles(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	staffSvc := service.NewStaffService(h.deps)

	u := &domain.User{Username: "dr.new", Role: domain.RoleDoctor, FullName: "Dr. New", IsActive: true}
	require.NoError(t, h.store.Users().Create(ctx, u))

	_, err := staffSvc.CreateDoctor(ctx, h.nurse, &staff.CreateDoctorCommand{UserID: u.ID})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = staffSvc.CreateNurse(ctx, h.admin, &staff.CreateNurseCommand{UserID: u.ID, DepartmentID: h.cardiology.ID})
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)

	doc, err := staffSvc.CreateDoctor(ctx, h.admin, &staff.CreateDoctorCommand{
		UserID:         u.ID,
		DepartmentID:   h.emergency.ID,
		Specialization: "Trauma",
		LicenseNumber:  "DOC-77",
	})
	require.NoError(t, err)
	assert.Equal(t, staff.DoctorConsultant, doc.Type)
	assert.Equal(t, "Emergency", doc.Department.Name)

	_, err = staffSvc.CreateDoctor(ctx, h.admin, &staff.CreateDoctorCommand{
		UserID:         u.ID,
		DepartmentID:   h.emergency.ID,
		Specialization: "Trauma",
		LicenseNumber:  "DOC-78",
	})
	assert.ErrorIs(t, err, staff.ErrProfileExists)

	emergency := h.emergency.ID
	docs, err := staffSvc.Doctors(ctx, &staff.DoctorQuery{DepartmentID: &emergency})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	off, err := staffSvc.SetDoctorAvailability(ctx, h.doctor, h.smith.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsAvailable)
}

func TestPatients(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	patients := service.NewPatientService(h.deps)

	u := &domain.User{Username: "dana", Role: domain.RolePatient, FullName: "Dana Poe", IsActive: true}
	require.NoError(t, h.store.Users().Create(ctx, u))
	self := &access.Principal{UserID: u.ID, Role: domain.RolePatient}

	_, err := patients.Create(ctx, h.patient, &patient.CreatePatientCommand{UserID: u.ID})
	assert.ErrorIs(t, err, access.ErrForbidden)

	future := clinicDay.AddDate(1, 0, 0)
	_, err = patients.Create(ctx, self, &patient.CreatePatientCommand{UserID: u.ID, DateOfBirth: &future, BloodGroup: "C+"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	v, err := patients.Create(ctx, self, &patient.CreatePatientCommand{
		UserID:     u.ID,
		BloodGroup: patient.BloodGroupONeg,
		Allergies:  []string{" penicillin ", "", "penicillin", "latex"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dana Poe", v.User.FullName)
	assert.Equal(t, patient.GenderUnknown, v.Gender)
	assert.Equal(t, []string{"penicillin", "latex"}, v.Allergies)

	_, err = patients.Create(ctx, h.admin, &patient.CreatePatientCommand{UserID: u.ID})
	assert.ErrorIs(t, err, patient.ErrPatientAlreadyExists)

	_, err = patients.Get(ctx, h.patient, v.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)
	got, err := patients.Get(ctx, h.patient, h.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", got.User.FullName)

	me, err := patients.Me(ctx, h.patient)
	require.NoError(t, err)
	assert.Equal(t, h.alice.ID, me.ID)
	_, err = patients.Me(ctx, h.doctor)
	assert.ErrorIs(t, err, access.ErrForbidden)

	updated, err := patients.Update(ctx, h.patient, h.alice.ID, &patient.Patch{Address: ptr("12 Elm Street")})
	require.NoError(t, err)
	assert.Equal(t, "12 Elm Street", updated.Address)
	_, err = patients.Update(ctx, h.nurse, h.alice.ID, &patient.Patch{Address: ptr("x")})
	assert.ErrorIs(t, err, access.ErrForbidden)

	all, err := patients.List(ctx, h.nurse)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
