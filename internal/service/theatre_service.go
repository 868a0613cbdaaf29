package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/theatre"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

const (
	minSurgeryMins = 15
	maxSurgeryMins = 24 * 60
)

// TheatreService books operation theatres. Starting a surgery occupies its
// theatre; completing or cancelling it frees the theatre again.
type TheatreService struct {
	base
}

func NewTheatreService(d Deps) *TheatreService {
	return &TheatreService{base: newBase(d)}
}

func (s *TheatreService) CreateTheatre(ctx context.Context, p *access.Principal, cmd *theatre.CreateTheatreCommand) (*theatre.OperationTheatre, error) {
	if err := access.Authorize(p, access.OpCreateTheatre); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, invalid("name is required")
	}

	t := &theatre.OperationTheatre{CreatedAt: s.now(), Name: name, IsAvailable: true}
	if err := s.store.Theatres().Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating theatre: %w", err)
	}
	s.record(ctx, p, domain.ActionCreate, "operation_theatre", t.ID, nil)
	return t, nil
}

func (s *TheatreService) UpdateTheatre(ctx context.Context, p *access.Principal, id int64, patch *theatre.TheatrePatch) (*theatre.OperationTheatre, error) {
	if err := access.Authorize(p, access.OpUpdateTheatre); err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalid("name cannot be empty")
	}
	t, err := s.store.Theatres().Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.record(ctx, p, domain.ActionUpdate, "operation_theatre", t.ID, nil)
	return t, nil
}

func (s *TheatreService) Theatres(ctx context.Context, p *access.Principal) ([]*theatre.OperationTheatre, error) {
	if p == nil {
		return nil, access.ErrUnauthenticated
	}
	return s.store.Theatres().List(ctx)
}

// CreateSurgery schedules a surgery led by the calling doctor unless another
// surgeon is named.
func (s *TheatreService) CreateSurgery(ctx context.Context, p *access.Principal, cmd *theatre.CreateSurgeryCommand) (*store.SurgeryView, error) {
	if err := access.Authorize(p, access.OpManageSurgery); err != nil {
		return nil, err
	}
	if cmd.SurgeonID == 0 && p.ProfileID != nil {
		cmd.SurgeonID = *p.ProfileID
	}

	var errs fieldErrors
	if cmd.PatientID <= 0 {
		errs.add("patientId is required")
	}
	if cmd.SurgeonID <= 0 {
		errs.add("surgeonId is required")
	}
	if cmd.TheatreID <= 0 {
		errs.add("theatreId is required")
	}
	if strings.TrimSpace(cmd.SurgeryType) == "" {
		errs.add("surgeryType is required")
	}
	if cmd.ScheduledDate.IsZero() {
		errs.add("scheduledDate is required")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	if cmd.DurationMins < minSurgeryMins || cmd.DurationMins > maxSurgeryMins {
		return nil, theatre.ErrInvalidDuration
	}

	var sg *theatre.Surgery
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.Patients().GetByID(ctx, cmd.PatientID); err != nil {
			return err
		}
		if _, err := tx.Doctors().GetByID(ctx, cmd.SurgeonID); err != nil {
			return err
		}
		if _, err := tx.Theatres().GetByID(ctx, cmd.TheatreID); err != nil {
			return err
		}
		sg = &theatre.Surgery{
			CreatedAt:     s.now(),
			PatientID:     cmd.PatientID,
			SurgeonID:     cmd.SurgeonID,
			TheatreID:     cmd.TheatreID,
			SurgeryType:   strings.TrimSpace(cmd.SurgeryType),
			ScheduledDate: cmd.ScheduledDate,
			DurationMins:  cmd.DurationMins,
			Status:        theatre.SurgeryScheduled,
			Notes:         strings.TrimSpace(cmd.Notes),
		}
		return tx.Surgeries().Create(ctx, sg)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, p, domain.ActionCreate, "surgery", sg.ID, nil)
	return s.reader.Surgery(ctx, sg.ID)
}

// UpdateSurgery applies patch. A status change must follow the surgery
// lifecycle and keeps the theatre's availability in step.
func (s *TheatreService) UpdateSurgery(ctx context.Context, p *access.Principal, id int64, patch *theatre.SurgeryPatch) (*store.SurgeryView, error) {
	if err := access.Authorize(p, access.OpManageSurgery); err != nil {
		return nil, err
	}
	if patch.DurationMins != nil && (*patch.DurationMins < minSurgeryMins || *patch.DurationMins > maxSurgeryMins) {
		return nil, theatre.ErrInvalidDuration
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, invalid("status must be one of scheduled, in-progress, completed, cancelled")
	}

	now := s.now()
	err := s.store.InTx(ctx, func(tx store.Store) error {
		cur, err := tx.Surgeries().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Status == nil || *patch.Status == cur.Status {
			_, err = tx.Surgeries().Update(ctx, id, patch)
			return err
		}
		if !cur.CanTransitionTo(*patch.Status) {
			return theatre.ErrInvalidStatusTransition
		}

		th, err := tx.Theatres().GetByID(ctx, cur.TheatreID)
		if err != nil {
			return err
		}
		tp := &theatre.TheatrePatch{}
		switch *patch.Status {
		case theatre.SurgeryInProgress:
			if !th.IsAvailable {
				return theatre.ErrTheatreUnavailable
			}
			tp.IsAvailable = ptr(false)
			tp.CurrentSurgeryID = &cur.ID
			tp.NextAvailable = ptr(now.Add(time.Duration(cur.DurationMins) * time.Minute))
		case theatre.SurgeryCompleted, theatre.SurgeryCancelled:
			if th.CurrentSurgeryID != nil && *th.CurrentSurgeryID == cur.ID {
				tp.IsAvailable = ptr(true)
				tp.NextAvailable = &now
			}
		}
		if _, err := tx.Surgeries().Update(ctx, id, patch); err != nil {
			return err
		}
		_, err = tx.Theatres().Update(ctx, th.ID, tp)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, p, domain.ActionUpdate, "surgery", id, map[string]any{"status": patch.Status})
	return s.reader.Surgery(ctx, id)
}

func (s *TheatreService) Surgeries(ctx context.Context, p *access.Principal, q *theatre.SurgeryQuery) ([]*store.SurgeryView, error) {
	if p == nil {
		return nil, access.ErrUnauthenticated
	}
	return s.reader.Surgeries(ctx, q)
}
