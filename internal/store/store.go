// Package store defines the record store shared by the services: one
// repository per entity type plus a transactional boundary.
package store

import (
	"context"
	"errors"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/alert"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/drug"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/theatre"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/token"
)

// Store is implemented by the in-memory and PostgreSQL backends.
//
// Repositories never delete. Update applies only the non-nil fields of the
// patch and returns the merged record.
type Store interface {
	Users() domain.UserRepository
	Departments() department.Repository
	Doctors() staff.DoctorRepository
	Nurses() staff.NurseRepository
	Pharmacists() staff.PharmacistRepository
	Patients() patient.Repository
	Appointments() appointment.Repository
	Tokens() token.Repository
	Prescriptions() prescription.Repository
	Drugs() drug.Repository
	Theatres() theatre.TheatreRepository
	Surgeries() theatre.SurgeryRepository
	Alerts() alert.Repository
	AuditLogs() domain.AuditLogRepository

	// InTx runs fn against a view of the store whose writes are applied
	// together or not at all. A non-nil error from fn rolls back.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

var notFound = []error{
	domain.ErrUserNotFound,
	department.ErrDepartmentNotFound,
	staff.ErrDoctorNotFound,
	staff.ErrNurseNotFound,
	staff.ErrPharmacistNotFound,
	patient.ErrPatientNotFound,
	appointment.ErrAppointmentNotFound,
	token.ErrTokenNotFound,
	prescription.ErrPrescriptionNotFound,
	drug.ErrDrugNotFound,
	theatre.ErrTheatreNotFound,
	theatre.ErrSurgeryNotFound,
	alert.ErrAlertNotFound,
}

// IsNotFound reports whether err is any entity's not-found sentinel.
func IsNotFound(err error) bool {
	for _, target := range notFound {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
