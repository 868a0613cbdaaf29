package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

type PatientService struct {
	base
}

func NewPatientService(d Deps) *PatientService {
	return &PatientService{base: newBase(d)}
}

// Create adds a patient profile for a patient user. Admins may create one
// for anyone; a patient only for themselves.
func (s *PatientService) Create(ctx context.Context, p *access.Principal, cmd *patient.CreatePatientCommand) (*store.PatientView, error) {
	if p == nil {
		return nil, access.ErrUnauthenticated
	}
	if !p.Is(domain.RoleAdmin) && !(p.Is(domain.RolePatient) && p.UserID == cmd.UserID) {
		return nil, access.ErrForbidden
	}

	var pt *patient.Patient
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := requireRole(ctx, tx, cmd.UserID, domain.RolePatient); err != nil {
			return err
		}
		var err error
		pt, err = createPatient(ctx, tx, cmd, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, p, domain.ActionCreate, "patient", pt.ID, nil)
	s.log.Info("patient created",
		zap.Int64("patient_id", pt.ID),
		zap.Int64("created_by", p.UserID),
	)
	return s.reader.Patient(ctx, pt.ID)
}

func (s *PatientService) Get(ctx context.Context, p *access.Principal, id int64) (*store.PatientView, error) {
	if err := access.AuthorizeOwner(p, access.OpReadPatient, id); err != nil {
		return nil, err
	}
	v, err := s.reader.Patient(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, p, domain.ActionRead, "patient", id, nil)
	return v, nil
}

// Me returns the calling patient's own profile.
func (s *PatientService) Me(ctx context.Context, p *access.Principal) (*store.PatientView, error) {
	if p == nil {
		return nil, access.ErrUnauthenticated
	}
	if !p.Is(domain.RolePatient) || p.ProfileID == nil {
		return nil, access.ErrForbidden
	}
	return s.reader.Patient(ctx, *p.ProfileID)
}

func (s *PatientService) List(ctx context.Context, p *access.Principal) ([]*store.PatientView, error) {
	if err := access.Authorize(p, access.OpListPatients); err != nil {
		return nil, err
	}
	return s.reader.Patients(ctx)
}

func (s *PatientService) Update(ctx context.Context, p *access.Principal, id int64, patch *patient.Patch) (*patient.Patient, error) {
	if err := access.AuthorizeOwner(p, access.OpUpdatePatient, id); err != nil {
		return nil, err
	}
	if err := validatePatientPatch(patch, s.now()); err != nil {
		return nil, err
	}

	pt, err := s.store.Patients().Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.record(ctx, p, domain.ActionUpdate, "patient", pt.ID, nil)
	return pt, nil
}

func createPatient(ctx context.Context, tx store.Store, cmd *patient.CreatePatientCommand, now time.Time) (*patient.Patient, error) {
	if err := validateCreateCommand(cmd, now); err != nil {
		return nil, err
	}
	gender := cmd.Gender
	if gender == "" {
		gender = patient.GenderUnknown
	}

	pt := &patient.Patient{
		CreatedAt:        now,
		UserID:           cmd.UserID,
		DateOfBirth:      cmd.DateOfBirth,
		Gender:           gender,
		Address:          strings.TrimSpace(cmd.Address),
		BloodGroup:       cmd.BloodGroup,
		EmergencyContact: cmd.EmergencyContact,
		Allergies:        normalizeAllergies(cmd.Allergies),
	}
	if err := tx.Patients().Create(ctx, pt); err != nil {
		return nil, fmt.Errorf("creating patient: %w", err)
	}
	return pt, nil
}

func validateCreateCommand(cmd *patient.CreatePatientCommand, now time.Time) error {
	var errs fieldErrors
	if cmd.Gender != "" && !cmd.Gender.IsValid() {
		errs.add("%s", patient.ErrInvalidGender.Error())
	}
	if !cmd.BloodGroup.IsValid() {
		errs.add("%s", patient.ErrInvalidBloodGroup.Error())
	}
	if cmd.DateOfBirth != nil && cmd.DateOfBirth.After(now) {
		errs.add("%s", patient.ErrInvalidDateOfBirth.Error())
	}
	if ec := cmd.EmergencyContact; ec != nil && (strings.TrimSpace(ec.Name) == "" || strings.TrimSpace(ec.Phone) == "") {
		errs.add("emergencyContact needs a name and phone")
	}
	return errs.err()
}

func validatePatientPatch(patch *patient.Patch, now time.Time) error {
	var errs fieldErrors
	if patch.Gender != nil && !patch.Gender.IsValid() {
		errs.add("%s", patient.ErrInvalidGender.Error())
	}
	if patch.BloodGroup != nil && !patch.BloodGroup.IsValid() {
		errs.add("%s", patient.ErrInvalidBloodGroup.Error())
	}
	if patch.DateOfBirth != nil && patch.DateOfBirth.After(now) {
		errs.add("%s", patient.ErrInvalidDateOfBirth.Error())
	}
	if patch.Allergies != nil {
		patch.Allergies = ptr(normalizeAllergies(*patch.Allergies))
	}
	return errs.err()
}

func normalizeAllergies(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		if a = strings.TrimSpace(a); a != "" && !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}
