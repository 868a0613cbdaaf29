package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/token"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
)

func TestMine_ReturnsOnlyOwnAppointments(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()

	alice := h.book(t, h.booking())
	carlBooking := h.booking()
	carlBooking.PatientID = h.carl.ID
	carl := h.book(t, carlBooking)
	jonesBooking := h.booking()
	jonesBooking.DoctorID = h.jones.ID
	jonesBooking.DepartmentID = h.emergency.ID
	h.book(t, jonesBooking)

	appts := h.appointments()

	mine, err := appts.Mine(ctx, h.patient)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice, mine[0].ID)

	mine, err = appts.Mine(ctx, h.otherPatient)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, carl, mine[0].ID)

	mine, err = appts.Mine(ctx, h.doctor)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = appts.Mine(ctx, h.nurse)
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestGet_PatientSeesOnlyOwnAppointment(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	id := h.book(t, h.booking())
	appts := h.appointments()

	v, err := appts.Get(ctx, h.patient, id)
	require.NoError(t, err)
	assert.Equal(t, id, v.ID)

	_, err = appts.Get(ctx, h.otherPatient, id)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = appts.Get(ctx, h.nurse, id)
	assert.NoError(t, err)

	_, err = appts.Get(ctx, h.admin, 999)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
}

func TestForPatient(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	h.book(t, h.booking())
	appts := h.appointments()

	got, err := appts.ForPatient(ctx, h.patient, h.alice.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = appts.ForPatient(ctx, h.otherPatient, h.alice.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)

	got, err = appts.ForPatient(ctx, h.doctor, h.alice.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCancel(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	appts := h.appointments()

	id := h.book(t, h.booking())

	a, err := appts.Cancel(ctx, h.patient, id)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCancelled, a.Status)
	require.NotNil(t, a.CancelledAt)

	_, err = appts.Cancel(ctx, h.admin, id)
	assert.ErrorIs(t, err, appointment.ErrAlreadyCancelled)

	tok, err := h.store.Tokens().GetByAppointmentID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, token.StatusWaiting, tok.Status, "token keeps its status")

	entries, err := h.queue().DoctorQueue(ctx, h.admin, h.smith.ID, clinicDay)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCancel_CompletedVisit(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	q := h.queue()

	id := h.book(t, h.booking())
	tok, err := h.store.Tokens().GetByAppointmentID(ctx, id)
	require.NoError(t, err)
	_, err = q.Call(ctx, h.nurse, tok.ID)
	require.NoError(t, err)
	_, err = q.Start(ctx, h.doctor, tok.ID)
	require.NoError(t, err)

	// in-progress can still be cancelled by an admin; a completed visit cannot.
	other := h.book(t, h.booking())
	otherTok, err := h.store.Tokens().GetByAppointmentID(ctx, other)
	require.NoError(t, err)
	_, err = q.Call(ctx, h.nurse, otherTok.ID)
	require.NoError(t, err)
	_, err = q.Start(ctx, h.doctor, otherTok.ID)
	require.NoError(t, err)
	_, err = h.appointments().Cancel(ctx, h.admin, other)
	require.NoError(t, err)

	_, err = q.Complete(ctx, h.doctor, otherTok.ID)
	assert.ErrorIs(t, err, appointment.ErrAlreadyCancelled)

	_, err = q.Complete(ctx, h.doctor, tok.ID)
	require.NoError(t, err)
	_, err = h.appointments().Cancel(ctx, h.patient, id)
	assert.ErrorIs(t, err, appointment.ErrAlreadyCompleted)
}

func TestUpdate_RoutesStatusThroughTriggers(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	appts := h.appointments()

	id := h.book(t, h.booking())
	tok, err := h.store.Tokens().GetByAppointmentID(ctx, id)
	require.NoError(t, err)

	_, err = appts.Update(ctx, h.doctor, id, service.AppointmentUpdate{Status: ptr(appointment.StatusInProgress)})
	assert.ErrorIs(t, err, token.ErrNotCalled)

	_, err = h.queue().Call(ctx, h.nurse, tok.ID)
	require.NoError(t, err)

	a, err := appts.Update(ctx, h.doctor, id, service.AppointmentUpdate{Status: ptr(appointment.StatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusInProgress, a.Status)

	tok, err = h.store.Tokens().GetByID(ctx, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, token.StatusServing, tok.Status)

	_, err = appts.Update(ctx, h.doctor, id, service.AppointmentUpdate{Status: ptr(appointment.StatusScheduled)})
	assert.ErrorIs(t, err, appointment.ErrInvalidStatusTransition)

	a, err = appts.Update(ctx, h.doctor, id, service.AppointmentUpdate{Status: ptr(appointment.StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCompleted, a.Status)
}

func TestUpdate_Details(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	appts := h.appointments()
	id := h.book(t, h.booking())

	_, err := appts.Update(ctx, h.patient, id, service.AppointmentUpdate{})
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)

	later := clinicDay.Add(3 * time.Hour)
	a, err := appts.Update(ctx, h.patient, id, service.AppointmentUpdate{
		Notes:           ptr("  bring previous ECG  "),
		AppointmentDate: &later,
	})
	require.NoError(t, err)
	assert.Equal(t, "bring previous ECG", a.Notes)
	assert.Equal(t, later, a.AppointmentDate)

	_, err = appts.Update(ctx, h.otherPatient, id, service.AppointmentUpdate{Notes: ptr("x")})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = appts.Update(ctx, h.patient, id, service.AppointmentUpdate{AppointmentDate: &time.Time{}})
	assert.ErrorIs(t, err, appointment.ErrDateRequired)
}

func TestUpdate_RejectedChangeLeavesStoreUntouched(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	appts := h.appointments()
	id := h.book(t, h.booking())

	cases := []struct {
		name    string
		caller  *access.Principal
		update  service.AppointmentUpdate
		wantErr error
	}{
		{
			name:    "patient cannot start the consultation",
			caller:  h.patient,
			update:  service.AppointmentUpdate{Notes: ptr("changed"), Status: ptr(appointment.StatusInProgress)},
			wantErr: access.ErrForbidden,
		},
		{
			name:    "scheduled is not a target",
			caller:  h.admin,
			update:  service.AppointmentUpdate{Notes: ptr("changed"), Status: ptr(appointment.StatusScheduled)},
			wantErr: appointment.ErrInvalidStatusTransition,
		},
		{
			name:    "token not called yet",
			caller:  h.doctor,
			update:  service.AppointmentUpdate{Notes: ptr("changed"), Status: ptr(appointment.StatusInProgress)},
			wantErr: token.ErrNotCalled,
		},
		{
			name:    "other doctor",
			caller:  h.otherDoctor,
			update:  service.AppointmentUpdate{Notes: ptr("changed"), Status: ptr(appointment.StatusCompleted)},
			wantErr: access.ErrForbidden,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := h.store.Snapshot()
			_, err := appts.Update(ctx, tc.caller, id, tc.update)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, before, h.store.Snapshot())
		})
	}

	t.Run("unknown status", func(t *testing.T) {
		before := h.store.Snapshot()
		_, err := appts.Update(ctx, h.admin, id, service.AppointmentUpdate{
			Notes:  ptr("again"),
			Status: ptr(appointment.Status("bogus")),
		})
		var verr *service.ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, before, h.store.Snapshot())
	})

	assert.Len(t, h.pub.ofType(realtime.EventAppointmentUpdate), 1, "only the booking was published")
}

func TestUpdate_NotesAndStatusTogether(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	appts := h.appointments()
	id := h.book(t, h.booking())
	tok, err := h.store.Tokens().GetByAppointmentID(ctx, id)
	require.NoError(t, err)
	_, err = h.queue().Call(ctx, h.nurse, tok.ID)
	require.NoError(t, err)

	a, err := appts.Update(ctx, h.doctor, id, service.AppointmentUpdate{
		Notes:  ptr("chest pain since monday"),
		Status: ptr(appointment.StatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusInProgress, a.Status)
	assert.Equal(t, "chest pain since monday", a.Notes)

	stored, err := h.store.Appointments().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "chest pain since monday", stored.Notes)
	assert.Equal(t, appointment.StatusInProgress, stored.Status)

	tok, err = h.store.Tokens().GetByID(ctx, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, token.StatusServing, tok.Status)
}
