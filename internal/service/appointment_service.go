package service

import (
	"context"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

type AppointmentService struct {
	base
	queue *QueueService
}

func NewAppointmentService(d Deps, queue *QueueService) *AppointmentService {
	return &AppointmentService{base: newBase(d), queue: queue}
}

// AppointmentUpdate is a partial update. Status changes are routed to the
// matching queue trigger; notes and date are plain field updates.
type AppointmentUpdate struct {
	Status          *appointment.Status
	Notes           *string
	AppointmentDate *time.Time
}

func (s *AppointmentService) Get(ctx context.Context, p *access.Principal, id int64) (*store.AppointmentView, error) {
	if err := access.Authorize(p, access.OpReadAppointment); err != nil {
		return nil, err
	}
	a, err := s.store.Appointments().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeOwner(p, access.OpReadAppointment, a.PatientID); err != nil {
		return nil, err
	}
	return s.reader.AppointmentOf(ctx, a)
}

func (s *AppointmentService) List(ctx context.Context, p *access.Principal, q *appointment.ListQuery) ([]*store.AppointmentView, error) {
	if err := access.Authorize(p, access.OpListAppointments); err != nil {
		return nil, err
	}
	return s.reader.Appointments(ctx, q)
}

// Mine lists the caller's own appointments: by patient profile for patients
// and by doctor profile for doctors.
func (s *AppointmentService) Mine(ctx context.Context, p *access.Principal) ([]*store.AppointmentView, error) {
	if p == nil {
		return nil, access.ErrUnauthenticated
	}
	if p.ProfileID == nil {
		return nil, access.ErrForbidden
	}
	q := &appointment.ListQuery{}
	switch p.Role {
	case domain.RolePatient:
		q.PatientID = p.ProfileID
	case domain.RoleDoctor:
		q.DoctorID = p.ProfileID
	default:
		return nil, access.ErrForbidden
	}
	return s.reader.Appointments(ctx, q)
}

func (s *AppointmentService) ForPatient(ctx context.Context, p *access.Principal, patientID int64) ([]*store.AppointmentView, error) {
	if err := access.AuthorizeOwner(p, access.OpListAppointments, patientID); err != nil {
		return nil, err
	}
	return s.reader.Appointments(ctx, &appointment.ListQuery{PatientID: &patientID})
}

func (s *AppointmentService) ForDoctor(ctx context.Context, p *access.Principal, doctorID int64) ([]*store.AppointmentView, error) {
	if err := access.Authorize(p, access.OpListAppointments); err != nil {
		return nil, err
	}
	return s.reader.Appointments(ctx, &appointment.ListQuery{DoctorID: &doctorID})
}

// Cancel moves a scheduled or in-progress appointment to cancelled. Its token
// stays as it is but drops out of the live queue.
func (s *AppointmentService) Cancel(ctx context.Context, p *access.Principal, id int64) (a *appointment.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Cancel")
	defer endSpan(span, &err)

	if err := access.Authorize(p, access.OpCancelAppointment); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.store.InTx(ctx, func(tx store.Store) error {
		a, err = cancelIn(ctx, tx, p, id, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCancel(ctx, p, a)
	return a, nil
}

func cancelIn(ctx context.Context, tx store.Store, p *access.Principal, id int64, at time.Time) (*appointment.Appointment, error) {
	cur, err := tx.Appointments().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeOwner(p, access.OpCancelAppointment, cur.PatientID); err != nil {
		return nil, err
	}
	switch cur.Status {
	case appointment.StatusCompleted:
		return nil, appointment.ErrAlreadyCompleted
	case appointment.StatusCancelled:
		return nil, appointment.ErrAlreadyCancelled
	}
	return tx.Appointments().Update(ctx, id, &appointment.Patch{
		Status:      ptr(appointment.StatusCancelled),
		CancelledAt: &at,
	})
}

func (s *AppointmentService) afterCancel(ctx context.Context, p *access.Principal, a *appointment.Appointment) {
	s.metrics.AppointmentsTotal.WithLabelValues(string(appointment.StatusCancelled)).Inc()
	s.record(ctx, p, domain.ActionUpdate, "appointment", a.ID, map[string]any{"status": a.Status})
	s.pub.Publish(ctx, realtime.EventAppointmentUpdate, a)
}

// statusOp is the operation that guards a move to status.
func statusOp(status appointment.Status) (access.Operation, error) {
	switch status {
	case appointment.StatusCancelled:
		return access.OpCancelAppointment, nil
	case appointment.StatusInProgress:
		return access.OpStartConsultation, nil
	case appointment.StatusCompleted:
		return access.OpCompleteConsultation, nil
	case appointment.StatusScheduled:
		return "", appointment.ErrInvalidStatusTransition
	default:
		return "", invalid("status must be one of scheduled, in-progress, completed, cancelled")
	}
}

// Update applies field changes and a status change in one transaction; a
// rejected update leaves the store untouched. Cancelled goes through the
// cancel rules, in-progress and completed through the consultation triggers
// of the appointment's token.
func (s *AppointmentService) Update(ctx context.Context, p *access.Principal, id int64, u AppointmentUpdate) (a *appointment.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Update")
	defer endSpan(span, &err)

	details := u.Notes != nil || u.AppointmentDate != nil
	if u.Status == nil && !details {
		return nil, invalid("nothing to update")
	}
	if u.AppointmentDate != nil && u.AppointmentDate.IsZero() {
		return nil, appointment.ErrDateRequired
	}
	if details {
		if err := access.Authorize(p, access.OpUpdateAppointment); err != nil {
			return nil, err
		}
	}
	if u.Status != nil {
		op, err := statusOp(*u.Status)
		if err != nil {
			return nil, err
		}
		if err := access.Authorize(p, op); err != nil {
			return nil, err
		}
	}

	var visit *Visit
	now := s.now()
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if details {
			if a, err = updateDetailsIn(ctx, tx, p, id, u); err != nil {
				return err
			}
		}
		if u.Status == nil {
			return nil
		}
		switch *u.Status {
		case appointment.StatusCancelled:
			a, err = cancelIn(ctx, tx, p, id, now)
			return err
		default:
			t, err := tx.Tokens().GetByAppointmentID(ctx, id)
			if err != nil {
				return err
			}
			if *u.Status == appointment.StatusInProgress {
				visit, err = startIn(ctx, tx, p, t.ID)
			} else {
				visit, err = completeIn(ctx, tx, p, t.ID, now)
			}
			if err != nil {
				return err
			}
			a = visit.Appointment
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	if details {
		s.record(ctx, p, domain.ActionUpdate, "appointment", a.ID, map[string]any{
			"notes":           u.Notes,
			"appointmentDate": u.AppointmentDate,
		})
	}
	switch {
	case visit != nil:
		s.queue.afterTransition(ctx, p, visit)
	case u.Status != nil:
		s.afterCancel(ctx, p, a)
	default:
		s.pub.Publish(ctx, realtime.EventAppointmentUpdate, a)
	}
	return a, nil
}

func updateDetailsIn(ctx context.Context, tx store.Store, p *access.Principal, id int64, u AppointmentUpdate) (*appointment.Appointment, error) {
	cur, err := tx.Appointments().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.AuthorizeOwner(p, access.OpUpdateAppointment, cur.PatientID); err != nil {
		return nil, err
	}
	if u.AppointmentDate != nil && cur.Status != appointment.StatusScheduled {
		return nil, invalid("appointmentDate can only change while the appointment is scheduled")
	}

	patch := &appointment.Patch{AppointmentDate: u.AppointmentDate}
	if u.Notes != nil {
		patch.Notes = ptr(strings.TrimSpace(*u.Notes))
	}
	return tx.Appointments().Update(ctx, id, patch)
}
