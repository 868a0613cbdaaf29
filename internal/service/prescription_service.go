package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

type PrescriptionService struct {
	base
}

func NewPrescriptionService(d Deps) *PrescriptionService {
	return &PrescriptionService{base: newBase(d)}
}

// Create issues a prescription for an appointment on behalf of the calling
// doctor and announces it to every other session.
func (s *PrescriptionService) Create(ctx context.Context, p *access.Principal, cmd *prescription.CreatePrescriptionCommand) (view *store.PrescriptionView, err error) {
	ctx, span := startSpan(ctx, "PrescriptionService.Create")
	defer endSpan(span, &err)

	if err := access.Authorize(p, access.OpCreatePrescription); err != nil {
		return nil, err
	}
	if p.ProfileID == nil {
		return nil, access.ErrForbidden
	}
	if err := validatePrescription(cmd); err != nil {
		return nil, err
	}

	a, err := s.store.Appointments().GetByID(ctx, cmd.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !p.OwnsProfile(a.DoctorID) {
		return nil, access.ErrForbidden
	}

	meds := make([]prescription.Medication, len(cmd.Medications))
	for i, m := range cmd.Medications {
		meds[i] = prescription.Medication{
			Name:         strings.TrimSpace(m.Name),
			Dosage:       strings.TrimSpace(m.Dosage),
			Frequency:    strings.TrimSpace(m.Frequency),
			Duration:     strings.TrimSpace(m.Duration),
			Instructions: strings.TrimSpace(m.Instructions),
		}
	}

	pr := &prescription.Prescription{
		CreatedAt:     s.now(),
		AppointmentID: a.ID,
		DoctorID:      *p.ProfileID,
		PatientID:     a.PatientID,
		Medications:   meds,
		Instructions:  strings.TrimSpace(cmd.Instructions),
		Status:        prescription.StatusPending,
	}
	if err := s.store.Prescriptions().Create(ctx, pr); err != nil {
		s.log.Error("failed to create prescription", zap.Error(err))
		return nil, fmt.Errorf("creating prescription: %w", err)
	}
	span.SetAttributes(attribute.Int64("prescription.id", pr.ID))

	s.metrics.PrescriptionsIssued.Inc()
	s.record(ctx, p, domain.ActionCreate, "prescription", pr.ID, map[string]any{"appointmentId": pr.AppointmentID})
	s.pub.Publish(ctx, realtime.EventPrescriptionCreated, pr)

	return s.reader.Prescription(ctx, pr.ID)
}

func validatePrescription(cmd *prescription.CreatePrescriptionCommand) error {
	var errs fieldErrors
	if cmd.AppointmentID <= 0 {
		errs.add("appointmentId is required")
	}
	if len(cmd.Medications) == 0 {
		errs.add("%s", prescription.ErrNoMedications.Error())
	}
	for i, m := range cmd.Medications {
		for _, field := range m.Missing() {
			errs.add("medications[%d].%s is required", i, field)
		}
	}
	return errs.err()
}

// List returns prescriptions matching q. Patients only ever see their own.
func (s *PrescriptionService) List(ctx context.Context, p *access.Principal, q *prescription.ListQuery) ([]*store.PrescriptionView, error) {
	if q == nil {
		q = &prescription.ListQuery{}
	}
	if p.Is(domain.RolePatient) {
		if p.ProfileID == nil {
			return nil, access.ErrForbidden
		}
		q.PatientID = p.ProfileID
	} else if err := access.Authorize(p, access.OpListPrescriptions); err != nil {
		return nil, err
	}
	return s.reader.Prescriptions(ctx, q)
}

func (s *PrescriptionService) Pending(ctx context.Context, p *access.Principal) ([]*store.PrescriptionView, error) {
	if err := access.Authorize(p, access.OpListPendingPrescriptions); err != nil {
		return nil, err
	}
	return s.reader.Prescriptions(ctx, &prescription.ListQuery{Status: ptr(prescription.StatusPending)})
}

// Dispense marks a pending prescription as fulfilled by the calling
// pharmacy staff member.
func (s *PrescriptionService) Dispense(ctx context.Context, p *access.Principal, id int64) (pr *prescription.Prescription, err error) {
	ctx, span := startSpan(ctx, "PrescriptionService.Dispense")
	defer endSpan(span, &err)

	if err := access.Authorize(p, access.OpDispensePrescription); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.store.InTx(ctx, func(tx store.Store) error {
		cur, err := tx.Prescriptions().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cur.IsDispensed() {
			return prescription.ErrAlreadyDispensed
		}
		pr, err = tx.Prescriptions().Update(ctx, id, &prescription.Patch{
			Status:      ptr(prescription.StatusDispensed),
			DispensedAt: &now,
			DispensedBy: p.ProfileID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PrescriptionsDispensed.Inc()
	s.record(ctx, p, domain.ActionUpdate, "prescription", pr.ID, map[string]any{"status": pr.Status})
	return pr, nil
}
