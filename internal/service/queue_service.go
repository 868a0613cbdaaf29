package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/token"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

// QueueService runs the visit state machine. A visit is an appointment and
// its token; they are created together and the consultation triggers move
// both inside one store transaction.
type QueueService struct {
	base
}

func NewQueueService(d Deps) *QueueService {
	return &QueueService{base: newBase(d)}
}

// Visit is the pair of records a consultation trigger touches.
type Visit struct {
	Token       *token.Token             `json:"token"`
	Appointment *appointment.Appointment `json:"appointment"`
}

// QueueEntry is one live token with its 1-based place in the queue.
type QueueEntry struct {
	Position int `json:"position"`
	*store.TokenView
}

// TokenTransition is a generic status change request. It is routed to the
// named trigger for the target status.
type TokenTransition struct {
	Status      token.Status
	CalledAt    *time.Time
	CompletedAt *time.Time
}

// Book creates an appointment in the scheduled state together with its
// waiting token. A requested token number is used when it carries the
// department's code and is not in the department's active queue; otherwise
// the number is derived from the booking time.
func (s *QueueService) Book(ctx context.Context, p *access.Principal, cmd *appointment.CreateAppointmentCommand) (view *store.AppointmentView, err error) {
	ctx, span := startSpan(ctx, "QueueService.Book")
	defer endSpan(span, &err)

	if err := access.AuthorizeOwner(p, access.OpBookAppointment, cmd.PatientID); err != nil {
		return nil, err
	}
	if err := validateBooking(cmd); err != nil {
		return nil, err
	}

	now := s.now()
	var tok *token.Token
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Patients().GetByID(ctx, cmd.PatientID); err != nil {
			return err
		}
		dept, err := tx.Departments().GetByID(ctx, cmd.DepartmentID)
		if err != nil {
			return err
		}
		if !dept.IsActive {
			return department.ErrDepartmentInactive
		}
		doc, err := tx.Doctors().GetByID(ctx, cmd.DoctorID)
		if err != nil {
			return err
		}
		if doc.DepartmentID != dept.ID {
			return appointment.ErrDoctorNotInDepartment
		}

		number, err := assignNumber(ctx, tx, dept, cmd.TokenNumber, now)
		if err != nil {
			return err
		}

		a := &appointment.Appointment{
			CreatedAt:       now,
			PatientID:       cmd.PatientID,
			DoctorID:        cmd.DoctorID,
			DepartmentID:    cmd.DepartmentID,
			AppointmentDate: cmd.AppointmentDate,
			TokenNumber:     number,
			Status:          appointment.StatusScheduled,
			Notes:           strings.TrimSpace(cmd.Notes),
		}
		if err := tx.Appointments().Create(ctx, a); err != nil {
			return fmt.Errorf("creating appointment: %w", err)
		}

		tok = &token.Token{
			CreatedAt:     now,
			AppointmentID: a.ID,
			DepartmentID:  a.DepartmentID,
			TokenNumber:   number,
			Status:        token.StatusWaiting,
		}
		if err := tx.Tokens().Create(ctx, tok); err != nil {
			return fmt.Errorf("creating token: %w", err)
		}

		view, err = store.NewReader(tx, s.log).AppointmentOf(ctx, a)
		return err
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("appointment.id", view.ID),
		attribute.String("token.number", tok.TokenNumber),
	)
	s.metrics.AppointmentsTotal.WithLabelValues(string(appointment.StatusScheduled)).Inc()
	s.metrics.TokenTransitionsTotal.WithLabelValues(string(token.StatusWaiting)).Inc()
	s.record(ctx, p, domain.ActionCreate, "appointment", view.ID, map[string]any{"tokenNumber": tok.TokenNumber})
	s.pub.Publish(ctx, realtime.EventAppointmentUpdate, view.Appointment)
	s.pub.Publish(ctx, realtime.EventTokenUpdate, tok)

	s.log.Info("appointment booked",
		zap.Int64("appointment_id", view.ID),
		zap.Int64("token_id", tok.ID),
		zap.String("token_number", tok.TokenNumber),
	)
	return view, nil
}

func validateBooking(cmd *appointment.CreateAppointmentCommand) error {
	var errs fieldErrors
	if cmd.PatientID <= 0 {
		errs.add("patientId is required")
	}
	if cmd.DoctorID <= 0 {
		errs.add("doctorId is required")
	}
	if cmd.DepartmentID <= 0 {
		errs.add("departmentId is required")
	}
	if cmd.AppointmentDate.IsZero() {
		errs.add("appointmentDate is required")
	}
	return errs.err()
}

// assignNumber picks the token number for a new booking in dept. Numbers of
// tokens still in the department's active queue are never reused.
func assignNumber(ctx context.Context, tx store.Store, dept *department.Department, requested string, now time.Time) (string, error) {
	active, err := tx.Tokens().List(ctx, &token.ListQuery{
		DepartmentID: &dept.ID,
		Statuses:     token.ActiveStatuses(),
	})
	if err != nil {
		return "", fmt.Errorf("listing active tokens: %w", err)
	}
	taken := make(map[string]bool, len(active))
	for _, t := range active {
		taken[t.TokenNumber] = true
	}

	code := dept.Code()
	if requested == "" {
		return token.NextFreeNumber(code, now, func(n string) bool { return taken[n] })
	}

	c, _, ok := token.ParseNumber(requested)
	if !ok {
		return "", invalid("tokenNumber must look like %s-0042", code)
	}
	if c != code {
		return "", token.ErrNumberMismatch
	}
	if taken[requested] {
		return "", token.ErrNumberTaken
	}
	return requested, nil
}

// Call moves a waiting token to called.
func (s *QueueService) Call(ctx context.Context, p *access.Principal, tokenID int64) (*token.Token, error) {
	return s.callAt(ctx, p, tokenID, nil)
}

func (s *QueueService) callAt(ctx context.Context, p *access.Principal, tokenID int64, at *time.Time) (t *token.Token, err error) {
	ctx, span := startSpan(ctx, "QueueService.Call")
	defer endSpan(span, &err)
	span.SetAttributes(attribute.Int64("token.id", tokenID))

	if err := access.Authorize(p, access.OpCallToken); err != nil {
		return nil, err
	}

	when := s.stamp(at)
	err = s.store.InTx(ctx, func(tx store.Store) error {
		cur, err := tx.Tokens().GetByID(ctx, tokenID)
		if err != nil {
			return err
		}
		t, err = callToken(ctx, tx, cur, when)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, p, &Visit{Token: t})
	return t, nil
}

// CallNext calls the earliest waiting token of a doctor's queue for today.
// Doctors always call their own queue; nurses and admins name the doctor.
func (s *QueueService) CallNext(ctx context.Context, p *access.Principal, doctorID int64) (t *token.Token, err error) {
	ctx, span := startSpan(ctx, "QueueService.CallNext")
	defer endSpan(span, &err)

	if err := access.Authorize(p, access.OpCallToken); err != nil {
		return nil, err
	}
	if p.Is(domain.RoleDoctor) {
		if p.ProfileID == nil {
			return nil, access.ErrForbidden
		}
		doctorID = *p.ProfileID
	}
	if doctorID <= 0 {
		return nil, invalid("doctorId is required")
	}
	span.SetAttributes(attribute.Int64("doctor.id", doctorID))

	now := s.now()
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Doctors().GetByID(ctx, doctorID); err != nil {
			return err
		}
		waiting, err := queueOn(ctx, tx, &appointment.ListQuery{DoctorID: &doctorID, Day: &now}, []token.Status{token.StatusWaiting})
		if err != nil {
			return err
		}
		if len(waiting) == 0 {
			return token.ErrNoWaitingTokens
		}
		t, err = callToken(ctx, tx, waiting[0], now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, p, &Visit{Token: t})
	return t, nil
}

func callToken(ctx context.Context, tx store.Store, t *token.Token, at time.Time) (*token.Token, error) {
	if t.Status != token.StatusWaiting {
		return nil, token.ErrNotWaiting
	}
	a, err := tx.Appointments().GetByID(ctx, t.AppointmentID)
	if err != nil {
		return nil, err
	}
	if a.Status == appointment.StatusCancelled {
		return nil, appointment.ErrAlreadyCancelled
	}
	return tx.Tokens().Update(ctx, t.ID, &token.Patch{
		Status:   ptr(token.StatusCalled),
		CalledAt: &at,
	})
}

// Start begins the consultation for a called token: the token becomes
// serving and its appointment in-progress. Only the assigned doctor may start.
func (s *QueueService) Start(ctx context.Context, p *access.Principal, tokenID int64) (v *Visit, err error) {
	ctx, span := startSpan(ctx, "QueueService.Start")
	defer endSpan(span, &err)
	span.SetAttributes(attribute.Int64("token.id", tokenID))

	if err := access.Authorize(p, access.OpStartConsultation); err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		v, err = startIn(ctx, tx, p, tokenID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, p, v)
	return v, nil
}

// startIn moves a called token to serving and its appointment to
// in-progress using the transaction's store.
func startIn(ctx context.Context, tx store.Store, p *access.Principal, tokenID int64) (*Visit, error) {
	t, a, err := assignedVisit(ctx, tx, p, tokenID)
	if err != nil {
		return nil, err
	}
	if t.Status != token.StatusCalled {
		return nil, token.ErrNotCalled
	}
	if a.Status == appointment.StatusCancelled {
		return nil, appointment.ErrAlreadyCancelled
	}

	t, err = tx.Tokens().Update(ctx, t.ID, &token.Patch{Status: ptr(token.StatusServing)})
	if err != nil {
		return nil, err
	}
	if a.Status != appointment.StatusInProgress {
		if !a.CanTransitionTo(appointment.StatusInProgress) {
			return nil, appointment.ErrInvalidStatusTransition
		}
		a, err = tx.Appointments().Update(ctx, a.ID, &appointment.Patch{Status: ptr(appointment.StatusInProgress)})
		if err != nil {
			return nil, err
		}
	}
	return &Visit{Token: t, Appointment: a}, nil
}

// Complete finishes the consultation for a serving token: the token and its
// appointment both become completed.
func (s *QueueService) Complete(ctx context.Context, p *access.Principal, tokenID int64) (*Visit, error) {
	return s.completeAt(ctx, p, tokenID, nil)
}

func (s *QueueService) completeAt(ctx context.Context, p *access.Principal, tokenID int64, at *time.Time) (v *Visit, err error) {
	ctx, span := startSpan(ctx, "QueueService.Complete")
	defer endSpan(span, &err)
	span.SetAttributes(attribute.Int64("token.id", tokenID))

	if err := access.Authorize(p, access.OpCompleteConsultation); err != nil {
		return nil, err
	}

	when := s.stamp(at)
	err = s.store.InTx(ctx, func(tx store.Store) error {
		v, err = completeIn(ctx, tx, p, tokenID, when)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, p, v)
	return v, nil
}

// completeIn moves a serving token and its appointment to completed using
// the transaction's store.
func completeIn(ctx context.Context, tx store.Store, p *access.Principal, tokenID int64, when time.Time) (*Visit, error) {
	t, a, err := assignedVisit(ctx, tx, p, tokenID)
	if err != nil {
		return nil, err
	}
	if t.Status != token.StatusServing {
		return nil, token.ErrNotServing
	}
	if a.Status == appointment.StatusCancelled {
		return nil, appointment.ErrAlreadyCancelled
	}

	t, err = tx.Tokens().Update(ctx, t.ID, &token.Patch{
		Status:      ptr(token.StatusCompleted),
		CompletedAt: &when,
	})
	if err != nil {
		return nil, err
	}
	if a.Status != appointment.StatusCompleted {
		if !a.CanTransitionTo(appointment.StatusCompleted) {
			return nil, appointment.ErrInvalidStatusTransition
		}
		a, err = tx.Appointments().Update(ctx, a.ID, &appointment.Patch{
			Status:      ptr(appointment.StatusCompleted),
			CompletedAt: &when,
		})
		if err != nil {
			return nil, err
		}
	}
	return &Visit{Token: t, Appointment: a}, nil
}

// assignedVisit loads a token and its appointment and checks that p is the
// doctor the appointment is booked with.
func assignedVisit(ctx context.Context, tx store.Store, p *access.Principal, tokenID int64) (*token.Token, *appointment.Appointment, error) {
	t, err := tx.Tokens().GetByID(ctx, tokenID)
	if err != nil {
		return nil, nil, err
	}
	a, err := tx.Appointments().GetByID(ctx, t.AppointmentID)
	if err != nil {
		return nil, nil, err
	}
	if !p.OwnsProfile(a.DoctorID) {
		return nil, nil, access.ErrForbidden
	}
	return t, a, nil
}

// Transition applies a generic status change by routing it to the trigger
// that owns the target status. Waiting is never a valid target.
func (s *QueueService) Transition(ctx context.Context, p *access.Principal, tokenID int64, tr TokenTransition) (*token.Token, error) {
	switch tr.Status {
	case token.StatusCalled:
		return s.callAt(ctx, p, tokenID, tr.CalledAt)
	case token.StatusServing:
		v, err := s.Start(ctx, p, tokenID)
		if err != nil {
			return nil, err
		}
		return v.Token, nil
	case token.StatusCompleted:
		v, err := s.completeAt(ctx, p, tokenID, tr.CompletedAt)
		if err != nil {
			return nil, err
		}
		return v.Token, nil
	case "":
		return nil, invalid("status is required")
	case token.StatusWaiting:
		return nil, token.ErrInvalidStatusTransition
	default:
		return nil, token.ErrInvalidStatus
	}
}

func (s *QueueService) afterTransition(ctx context.Context, p *access.Principal, v *Visit) {
	s.metrics.TokenTransitionsTotal.WithLabelValues(string(v.Token.Status)).Inc()
	s.record(ctx, p, domain.ActionUpdate, "token", v.Token.ID, map[string]any{"status": v.Token.Status})
	s.pub.Publish(ctx, realtime.EventTokenUpdate, v.Token)

	if v.Appointment != nil {
		s.metrics.AppointmentsTotal.WithLabelValues(string(v.Appointment.Status)).Inc()
		s.pub.Publish(ctx, realtime.EventAppointmentUpdate, v.Appointment)
	}
}

func (s *QueueService) stamp(at *time.Time) time.Time {
	if at != nil && !at.IsZero() {
		return *at
	}
	return s.now()
}

// DoctorQueue lists the live tokens of a doctor's appointments on day.
func (s *QueueService) DoctorQueue(ctx context.Context, p *access.Principal, doctorID int64, day time.Time) ([]*QueueEntry, error) {
	if err := access.Authorize(p, access.OpReadQueue); err != nil {
		return nil, err
	}
	if _, err := s.store.Doctors().GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.entries(ctx, &appointment.ListQuery{DoctorID: &doctorID, Day: &day})
}

// DepartmentQueue lists the live tokens of a department's appointments on day.
func (s *QueueService) DepartmentQueue(ctx context.Context, p *access.Principal, departmentID int64, day time.Time) ([]*QueueEntry, error) {
	if err := access.Authorize(p, access.OpReadQueue); err != nil {
		return nil, err
	}
	if _, err := s.store.Departments().GetByID(ctx, departmentID); err != nil {
		return nil, err
	}
	return s.entries(ctx, &appointment.ListQuery{DepartmentID: &departmentID, Day: &day})
}

// Tokens lists tokens matching q with their appointment and department
// inlined, including finished ones.
func (s *QueueService) Tokens(ctx context.Context, p *access.Principal, q *token.ListQuery) ([]*store.TokenView, error) {
	if err := access.Authorize(p, access.OpReadQueue); err != nil {
		return nil, err
	}
	return s.reader.Tokens(ctx, q)
}

func (s *QueueService) entries(ctx context.Context, q *appointment.ListQuery) ([]*QueueEntry, error) {
	tokens, err := queueOn(ctx, s.store, q, token.ActiveStatuses())
	if err != nil {
		return nil, err
	}

	out := make([]*QueueEntry, 0, len(tokens))
	for _, t := range tokens {
		v, err := s.reader.TokenOf(ctx, t)
		if err != nil {
			if store.IsNotFound(err) {
				s.log.Warn("omitting queue entry with missing relation", zap.Int64("token_id", t.ID), zap.Error(err))
				continue
			}
			return nil, err
		}
		if status, stale := ReconcileVisit(t, v.Appointment.Appointment); stale {
			v.Appointment.Status = status
		}
		out = append(out, &QueueEntry{Position: len(out) + 1, TokenView: v})
	}
	return out, nil
}

// queueOn returns the tokens in statuses whose appointments match q and are
// not cancelled, oldest first.
func queueOn(ctx context.Context, s store.Store, q *appointment.ListQuery, statuses []token.Status) ([]*token.Token, error) {
	appts, err := s.Appointments().List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	ids := make([]int64, 0, len(appts))
	for _, a := range appts {
		if a.Status != appointment.StatusCancelled {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	tokens, err := s.Tokens().List(ctx, &token.ListQuery{AppointmentIDs: ids, Statuses: statuses})
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}
	slices.SortFunc(tokens, func(a, b *token.Token) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})
	return tokens, nil
}

// ReconcileVisit returns the appointment status implied by t when t has
// moved further along than a, and false when a is current. A cancelled
// appointment is never overridden.
func ReconcileVisit(t *token.Token, a *appointment.Appointment) (appointment.Status, bool) {
	var implied appointment.Status
	switch t.Status {
	case token.StatusServing:
		implied = appointment.StatusInProgress
	case token.StatusCompleted:
		implied = appointment.StatusCompleted
	default:
		return a.Status, false
	}
	if a.Status == appointment.StatusCancelled || visitRank(a.Status) >= visitRank(implied) {
		return a.Status, false
	}
	return implied, true
}

func visitRank(s appointment.Status) int {
	switch s {
	case appointment.StatusScheduled:
		return 0
	case appointment.StatusInProgress:
		return 1
	case appointment.StatusCompleted:
		return 2
	}
	return -1
}

// Repair persists ReconcileVisit for every token that is ahead of its
// appointment and returns the appointments it changed.
func (s *QueueService) Repair(ctx context.Context, p *access.Principal) (repaired []*appointment.Appointment, err error) {
	ctx, span := startSpan(ctx, "QueueService.Repair")
	defer endSpan(span, &err)

	if err := access.Authorize(p, access.OpRepairQueue); err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		repaired = nil
		tokens, err := tx.Tokens().List(ctx, &token.ListQuery{
			Statuses: []token.Status{token.StatusServing, token.StatusCompleted},
		})
		if err != nil {
			return err
		}
		for _, t := range tokens {
			a, err := tx.Appointments().GetByID(ctx, t.AppointmentID)
			if err != nil {
				if store.IsNotFound(err) {
					s.log.Warn("token references missing appointment", zap.Int64("token_id", t.ID))
					continue
				}
				return err
			}
			status, stale := ReconcileVisit(t, a)
			if !stale {
				continue
			}
			patch := &appointment.Patch{Status: &status}
			if status == appointment.StatusCompleted {
				patch.CompletedAt = t.CompletedAt
			}
			a, err = tx.Appointments().Update(ctx, a.ID, patch)
			if err != nil {
				return err
			}
			repaired = append(repaired, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, a := range repaired {
		s.record(ctx, p, domain.ActionUpdate, "appointment", a.ID, map[string]any{"status": a.Status, "repair": true})
		s.pub.Publish(ctx, realtime.EventAppointmentUpdate, a)
	}
	if len(repaired) > 0 {
		s.log.Info("repaired stale appointments", zap.Int("count", len(repaired)))
	}
	return repaired, nil
}


