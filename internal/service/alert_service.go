package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/alert"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

// AlertService raises and resolves emergency alerts. Any signed-in user may
// do either; both are broadcast to every other session.
type AlertService struct {
	base
}

func NewAlertService(d Deps) *AlertService {
	return &AlertService{base: newBase(d)}
}

type AlertUpdate struct {
	Location *string
	Message  *string
	IsActive *bool
}

func (s *AlertService) Create(ctx context.Context, p *access.Principal, cmd *alert.CreateAlertCommand) (a *alert.EmergencyAlert, err error) {
	ctx, span := startSpan(ctx, "AlertService.Create")
	defer endSpan(span, &err)

	if err := access.Authorize(p, access.OpCreateAlert); err != nil {
		return nil, err
	}
	if !cmd.Type.IsValid() {
		return nil, alert.ErrInvalidType
	}
	location := strings.TrimSpace(cmd.Location)
	if location == "" {
		return nil, alert.ErrLocationRequired
	}

	a = &alert.EmergencyAlert{
		CreatedAt: s.now(),
		Type:      cmd.Type,
		Location:  location,
		Message:   strings.TrimSpace(cmd.Message),
		IsActive:  true,
		CreatedBy: p.UserID,
	}
	if err := s.store.Alerts().Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating alert: %w", err)
	}

	s.metrics.AlertsRaisedTotal.WithLabelValues(string(a.Type)).Inc()
	s.record(ctx, p, domain.ActionCreate, "emergency_alert", a.ID, map[string]any{"type": a.Type, "location": a.Location})
	s.pub.Publish(ctx, realtime.EventEmergencyAlert, a)
	s.log.Warn("emergency alert raised",
		zap.Int64("alert_id", a.ID),
		zap.String("type", string(a.Type)),
		zap.String("location", a.Location),
	)
	return a, nil
}

// Update edits an alert. Setting IsActive to false resolves it and stamps
// resolvedAt; resolving twice keeps the first timestamp.
func (s *AlertService) Update(ctx context.Context, p *access.Principal, id int64, u AlertUpdate) (a *alert.EmergencyAlert, err error) {
	ctx, span := startSpan(ctx, "AlertService.Update")
	defer endSpan(span, &err)

	if err := access.Authorize(p, access.OpResolveAlert); err != nil {
		return nil, err
	}
	if u.Location != nil && strings.TrimSpace(*u.Location) == "" {
		return nil, alert.ErrLocationRequired
	}

	now := s.now()
	err = s.store.InTx(ctx, func(tx store.Store) error {
		cur, err := tx.Alerts().GetByID(ctx, id)
		if err != nil {
			return err
		}
		patch := &alert.Patch{Message: u.Message, IsActive: u.IsActive}
		if u.Location != nil {
			patch.Location = ptr(strings.TrimSpace(*u.Location))
		}
		if u.IsActive != nil && !*u.IsActive && cur.ResolvedAt == nil {
			patch.ResolvedAt = &now
		}
		a, err = tx.Alerts().Update(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, p, domain.ActionUpdate, "emergency_alert", a.ID, map[string]any{"isActive": a.IsActive})
	s.pub.Publish(ctx, realtime.EventEmergencyAlert, a)
	return a, nil
}

func (s *AlertService) Resolve(ctx context.Context, p *access.Principal, id int64) (*alert.EmergencyAlert, error) {
	return s.Update(ctx, p, id, AlertUpdate{IsActive: ptr(false)})
}

func (s *AlertService) List(ctx context.Context, p *access.Principal, activeOnly bool) ([]*store.AlertView, error) {
	if p == nil {
		return nil, access.ErrUnauthenticated
	}
	return s.reader.Alerts(ctx, &alert.ListQuery{ActiveOnly: activeOnly})
}
