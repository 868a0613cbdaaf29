// Package seed loads the sample hospital: four departments, an admin, two
// doctors, a nurse and a pharmacist.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
)

const DefaultPassword = "medqueue-demo"

type Result struct {
	// Skipped is set when the store already had departments.
	Skipped     bool
	Departments int
	Users       int
}

type account struct {
	username, fullName, email, phone string
	role                             domain.Role
}

var departments = []department.CreateDepartmentCommand{
	{Name: "Cardiology", Description: "Heart and cardiovascular care"},
	{Name: "Emergency", Description: "Emergency medical services"},
	{Name: "Orthopedics", Description: "Bone and joint care"},
	{Name: "Pediatrics", Description: "Children healthcare"},
}

// Run seeds s unless it already has departments. Every account gets
// password; all writes happen in one transaction.
func Run(ctx context.Context, s store.Store, password string, log *zap.Logger) (*Result, error) {
	if len(password) < 8 {
		return nil, errors.New("seed password must be at least 8 characters")
	}

	existing, err := s.Departments().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	if len(existing) > 0 {
		log.Info("store already has data, skipping seed", zap.Int("departments", len(existing)))
		return &Result{Skipped: true}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing seed password: %w", err)
	}

	res := &Result{}
	err = s.InTx(ctx, func(tx store.Store) error {
		byName := make(map[string]*department.Department, len(departments))
		for _, cmd := range departments {
			d := &department.Department{Name: cmd.Name, Description: cmd.Description, IsActive: true}
			if err := tx.Departments().Create(ctx, d); err != nil {
				return fmt.Errorf("creating department %s: %w", cmd.Name, err)
			}
			byName[d.Name] = d
			res.Departments++
		}

		newUser := func(a account) (*domain.User, error) {
			u := &domain.User{
				Username:     a.username,
				PasswordHash: string(hash),
				Role:         a.role,
				FullName:     a.fullName,
				Email:        a.email,
				Phone:        a.phone,
				IsActive:     true,
			}
			if err := tx.Users().Create(ctx, u); err != nil {
				return nil, fmt.Errorf("creating user %s: %w", a.username, err)
			}
			res.Users++
			return u, nil
		}

		if _, err := newUser(account{"admin", "Hospital Administrator", "admin@medqueue.local", "+1234567890", domain.RoleAdmin}); err != nil {
			return err
		}

		smith, err := newUser(account{"dr.smith", "Dr. John Smith", "dr.smith@medqueue.local", "+1234567891", domain.RoleDoctor})
		if err != nil {
			return err
		}
		if err := tx.Doctors().Create(ctx, &staff.Doctor{
			UserID:         smith.ID,
			DepartmentID:   byName["Cardiology"].ID,
			Specialization: "Cardiologist",
			Type:           staff.DoctorSpecialist,
			LicenseNumber:  "DOC001",
			IsAvailable:    true,
		}); err != nil {
			return fmt.Errorf("creating doctor profile: %w", err)
		}

		jones, err := newUser(account{"dr.jones", "Dr. Sarah Jones", "dr.jones@medqueue.local", "+1234567892", domain.RoleDoctor})
		if err != nil {
			return err
		}
		if err := tx.Doctors().Create(ctx, &staff.Doctor{
			UserID:         jones.ID,
			DepartmentID:   byName["Emergency"].ID,
			Specialization: "Emergency Medicine",
			Type:           staff.DoctorEmergency,
			LicenseNumber:  "DOC002",
			IsAvailable:    true,
		}); err != nil {
			return fmt.Errorf("creating doctor profile: %w", err)
		}

		mary, err := newUser(account{"nurse.mary", "Mary Johnson", "nurse.mary@medqueue.local", "+1234567893", domain.RoleNurse})
		if err != nil {
			return err
		}
		if err := tx.Nurses().Create(ctx, &staff.Nurse{
			UserID:       mary.ID,
			DepartmentID: byName["Cardiology"].ID,
			Shift:        staff.ShiftDay,
		}); err != nil {
			return fmt.Errorf("creating nurse profile: %w", err)
		}

		bob, err := newUser(account{"pharmacy.bob", "Bob Wilson", "pharmacy.bob@medqueue.local", "+1234567894", domain.RolePharmacy})
		if err != nil {
			return err
		}
		if err := tx.Pharmacists().Create(ctx, &staff.Pharmacist{
			UserID:   bob.ID,
			Position: staff.PositionPharmacist,
		}); err != nil {
			return fmt.Errorf("creating pharmacy staff profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("sample data loaded",
		zap.Int("departments", res.Departments),
		zap.Int("users", res.Users),
	)
	return res, nil
}
