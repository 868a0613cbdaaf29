package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

// StaffService manages doctor, nurse and pharmacy staff profiles. Each
// profile belongs to exactly one user of the matching role.
type StaffService struct {
	base
}

func NewStaffService(d Deps) *StaffService {
	return &StaffService{base: newBase(d)}
}

func (s *StaffService) CreateDoctor(ctx context.Context, p *access.Principal, cmd *staff.CreateDoctorCommand) (*store.DoctorView, error) {
	if err := access.Authorize(p, access.OpCreateStaff); err != nil {
		return nil, err
	}
	var d *staff.Doctor
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := requireRole(ctx, tx, cmd.UserID, domain.RoleDoctor); err != nil {
			return err
		}
		var err error
		d, err = createDoctor(ctx, tx, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, p, domain.ActionCreate, "doctor", d.ID, nil)
	return s.reader.Doctor(ctx, d.ID)
}

func (s *StaffService) CreateNurse(ctx context.Context, p *access.Principal, cmd *staff.CreateNurseCommand) (*store.NurseView, error) {
	if err := access.Authorize(p, access.OpCreateStaff); err != nil {
		return nil, err
	}
	var n *staff.Nurse
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := requireRole(ctx, tx, cmd.UserID, domain.RoleNurse); err != nil {
			return err
		}
		var err error
		n, err = createNurse(ctx, tx, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, p, domain.ActionCreate, "nurse", n.ID, nil)
	return s.reader.Nurse(ctx, n.ID)
}

func (s *StaffService) CreatePharmacist(ctx context.Context, p *access.Principal, cmd *staff.CreatePharmacistCommand) (*staff.Pharmacist, error) {
	if err := access.Authorize(p, access.OpCreateStaff); err != nil {
		return nil, err
	}
	var ph *staff.Pharmacist
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if err := requireRole(ctx, tx, cmd.UserID, domain.RolePharmacy); err != nil {
			return err
		}
		var err error
		ph, err = createPharmacist(ctx, tx, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, p, domain.ActionCreate, "pharmacy_staff", ph.ID, nil)
	return ph, nil
}

func (s *StaffService) Doctor(ctx context.Context, id int64) (*store.DoctorView, error) {
	return s.reader.Doctor(ctx, id)
}

func (s *StaffService) Doctors(ctx context.Context, q *staff.DoctorQuery) ([]*store.DoctorView, error) {
	return s.reader.Doctors(ctx, q)
}

func (s *StaffService) Nurses(ctx context.Context) ([]*store.NurseView, error) {
	return s.reader.Nurses(ctx)
}

func (s *StaffService) Pharmacists(ctx context.Context) ([]*store.PharmacistView, error) {
	return s.reader.Pharmacists(ctx)
}

// SetDoctorAvailability toggles whether a doctor is taking patients.
func (s *StaffService) SetDoctorAvailability(ctx context.Context, p *access.Principal, id int64, available bool) (*staff.Doctor, error) {
	if err := access.Authorize(p, access.OpUpdateDoctor); err != nil {
		return nil, err
	}
	d, err := s.store.Doctors().Update(ctx, id, &staff.DoctorPatch{IsAvailable: &available})
	if err != nil {
		return nil, err
	}
	s.record(ctx, p, domain.ActionUpdate, "doctor", d.ID, map[string]any{"isAvailable": available})
	return d, nil
}

func requireRole(ctx context.Context, tx store.Store, userID int64, role domain.Role) error {
	u, err := tx.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role != role {
		return invalid("user %d does not have the %s role", userID, role)
	}
	return nil
}

func createDoctor(ctx context.Context, tx store.Store, cmd *staff.CreateDoctorCommand) (*staff.Doctor, error) {
	var errs fieldErrors
	if strings.TrimSpace(cmd.Specialization) == "" {
		errs.add("specialization is required")
	}
	if strings.TrimSpace(cmd.LicenseNumber) == "" {
		errs.add("licenseNumber is required")
	}
	switch cmd.Type {
	case staff.DoctorConsultant, staff.DoctorSurgeon, staff.DoctorSpecialist, staff.DoctorEmergency:
	case "":
		cmd.Type = staff.DoctorConsultant
	default:
		errs.add("type must be one of consultant, surgeon, specialist, emergency")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	if _, err := tx.Departments().GetByID(ctx, cmd.DepartmentID); err != nil {
		return nil, err
	}

	d := &staff.Doctor{
		UserID:         cmd.UserID,
		DepartmentID:   cmd.DepartmentID,
		Specialization: strings.TrimSpace(cmd.Specialization),
		Type:           cmd.Type,
		LicenseNumber:  strings.TrimSpace(cmd.LicenseNumber),
		IsAvailable:    true,
	}
	if err := tx.Doctors().Create(ctx, d); err != nil {
		return nil, fmt.Errorf("creating doctor: %w", err)
	}
	return d, nil
}

func createNurse(ctx context.Context, tx store.Store, cmd *staff.CreateNurseCommand) (*staff.Nurse, error) {
	if cmd.Shift == "" {
		cmd.Shift = staff.ShiftDay
	}
	if !cmd.Shift.IsValid() {
		return nil, staff.ErrInvalidShift
	}
	if _, err := tx.Departments().GetByID(ctx, cmd.DepartmentID); err != nil {
		return nil, err
	}

	n := &staff.Nurse{
		UserID:       cmd.UserID,
		DepartmentID: cmd.DepartmentID,
		Shift:        cmd.Shift,
	}
	if err := tx.Nurses().Create(ctx, n); err != nil {
		return nil, fmt.Errorf("creating nurse: %w", err)
	}
	return n, nil
}

func createPharmacist(ctx context.Context, tx store.Store, cmd *staff.CreatePharmacistCommand) (*staff.Pharmacist, error) {
	if cmd.Position == "" {
		cmd.Position = staff.PositionPharmacist
	}
	if !cmd.Position.IsValid() {
		return nil, staff.ErrInvalidPosition
	}

	ph := &staff.Pharmacist{UserID: cmd.UserID, Position: cmd.Position}
	if err := tx.Pharmacists().Create(ctx, ph); err != nil {
		return nil, fmt.Errorf("creating pharmacy staff: %w", err)
	}
	return ph, nil
}
