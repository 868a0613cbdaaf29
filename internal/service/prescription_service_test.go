package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
)

func prescriptionFor(appointmentID int64) *prescription.CreatePrescriptionCommand {
	return &prescription.CreatePrescriptionCommand{
		AppointmentID: appointmentID,
		Medications: []prescription.Medication{
			{Name: "Aspirin", Dosage: "75mg", Frequency: "once daily", Duration: "30 days"},
			{Name: "Atorvastatin", Dosage: "20mg", Frequency: "at night", Duration: "30 days", Instructions: "after food"},
		},
		Instructions: "review in a month",
	}
}

func TestCreatePrescription_ByDoctor(t *testing.T) {
	h := newHospital(t)
	apptID := h.book(t, h.booking())
	ctx := realtime.WithOrigin(context.Background(), "session-a")

	v, err := service.NewPrescriptionService(h.deps).Create(ctx, h.doctor, prescriptionFor(apptID))
	require.NoError(t, err)

	assert.Equal(t, prescription.StatusPending, v.Status)
	assert.Equal(t, h.smith.ID, v.DoctorID)
	assert.Equal(t, h.alice.ID, v.PatientID)
	require.Len(t, v.Medications, 2)
	assert.Equal(t, "Aspirin", v.Medications[0].Name)
	assert.Equal(t, "Atorvastatin", v.Medications[1].Name)
	assert.Equal(t, "Alice Doe", v.Patient.User.FullName)

	events := h.pub.ofType(realtime.EventPrescriptionCreated)
	require.Len(t, events, 1)
	assert.Equal(t, "session-a", events[0].Origin)
}

func TestCreatePrescription_NurseIsForbidden(t *testing.T) {
	h := newHospital(t)
	apptID := h.book(t, h.booking())

	_, err := service.NewPrescriptionService(h.deps).Create(context.Background(), h.nurse, prescriptionFor(apptID))
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Empty(t, h.store.Snapshot().Prescriptions)
	assert.Empty(t, h.pub.ofType(realtime.EventPrescriptionCreated))
}

func TestCreatePrescription_OnlyAssignedDoctor(t *testing.T) {
	h := newHospital(t)
	apptID := h.book(t, h.booking())
	before := h.store.Snapshot()

	_, err := service.NewPrescriptionService(h.deps).Create(context.Background(), h.otherDoctor, prescriptionFor(apptID))
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Equal(t, before, h.store.Snapshot())
	assert.Empty(t, h.pub.ofType(realtime.EventPrescriptionCreated))
}

func TestCreatePrescription_Validation(t *testing.T) {
	h := newHospital(t)
	apptID := h.book(t, h.booking())
	rx := service.NewPrescriptionService(h.deps)
	ctx := context.Background()

	_, err := rx.Create(ctx, h.doctor, &prescription.CreatePrescriptionCommand{AppointmentID: apptID})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, prescription.ErrNoMedications.Error())

	_, err = rx.Create(ctx, h.doctor, &prescription.CreatePrescriptionCommand{
		AppointmentID: apptID,
		Medications:   []prescription.Medication{{Name: "Aspirin", Dosage: " "}},
	})
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{
		"medications[0].dosage is required",
		"medications[0].frequency is required",
		"medications[0].duration is required",
	}, verr.Fields)

	_, err = rx.Create(ctx, h.doctor, prescriptionFor(999))
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	assert.Empty(t, h.store.Snapshot().Prescriptions)
}

func TestDispense(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	apptID := h.book(t, h.booking())
	rx := service.NewPrescriptionService(h.deps)

	v, err := rx.Create(ctx, h.doctor, prescriptionFor(apptID))
	require.NoError(t, err)

	pending, err := rx.Pending(ctx, h.pharmacy)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = rx.Dispense(ctx, h.doctor, v.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)

	pr, err := rx.Dispense(ctx, h.pharmacy, v.ID)
	require.NoError(t, err)
	assert.Equal(t, prescription.StatusDispensed, pr.Status)
	require.NotNil(t, pr.DispensedBy)
	assert.Equal(t, h.bob.ID, *pr.DispensedBy)
	assert.NotNil(t, pr.DispensedAt)

	_, err = rx.Dispense(ctx, h.pharmacy, v.ID)
	assert.ErrorIs(t, err, prescription.ErrAlreadyDispensed)

	pending, err = rx.Pending(ctx, h.pharmacy)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestListPrescriptions_PatientSeesOwnOnly(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	rx := service.NewPrescriptionService(h.deps)

	aliceAppt := h.book(t, h.booking())
	carlBooking := h.booking()
	carlBooking.PatientID = h.carl.ID
	carlAppt := h.book(t, carlBooking)

	_, err := rx.Create(ctx, h.doctor, prescriptionFor(aliceAppt))
	require.NoError(t, err)
	_, err = rx.Create(ctx, h.doctor, prescriptionFor(carlAppt))
	require.NoError(t, err)

	got, err := rx.List(ctx, h.patient, &prescription.ListQuery{PatientID: &h.carl.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, h.alice.ID, got[0].PatientID)

	got, err = rx.List(ctx, h.nurse, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
