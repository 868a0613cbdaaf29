// Package access decides whether a caller may invoke an operation. It is
// stateless: the only inputs are the caller's role and, for owned
// resources, the owning patient profile id.
package access

import (
	"context"
	"errors"
	"slices"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden: insufficient permissions")
)

// Principal is the authenticated caller. ProfileID is the caller's
// role-specific profile (doctor, nurse, patient or pharmacy staff id).
type Principal struct {
	UserID    int64
	Role      domain.Role
	ProfileID *int64
}

func FromClaims(c *domain.Claims) *Principal {
	if c == nil {
		return nil
	}
	return &Principal{UserID: c.UserID, Role: c.Role, ProfileID: c.ProfileID}
}

func (p *Principal) Is(role domain.Role) bool {
	return p != nil && p.Role == role
}

// OwnsProfile reports whether the caller's profile is id.
func (p *Principal) OwnsProfile(id int64) bool {
	return p != nil && p.ProfileID != nil && *p.ProfileID == id
}

type Operation string

const (
	OpBookAppointment          Operation = "appointment.book"
	OpCancelAppointment        Operation = "appointment.cancel"
	OpUpdateAppointment        Operation = "appointment.update"
	OpListAppointments         Operation = "appointment.list"
	OpReadAppointment          Operation = "appointment.read"
	OpCallToken                Operation = "token.call"
	OpStartConsultation        Operation = "token.start"
	OpCompleteConsultation     Operation = "token.complete"
	OpReadQueue                Operation = "queue.read"
	OpRepairQueue              Operation = "queue.repair"
	OpListPatients             Operation = "patient.list"
	OpReadPatient              Operation = "patient.read"
	OpUpdatePatient            Operation = "patient.update"
	OpCreateDepartment         Operation = "department.create"
	OpUpdateDepartment         Operation = "department.update"
	OpCreateStaff              Operation = "staff.create"
	OpUpdateDoctor             Operation = "doctor.update"
	OpCreatePrescription       Operation = "prescription.create"
	OpListPrescriptions        Operation = "prescription.list"
	OpListPendingPrescriptions Operation = "prescription.pending"
	OpDispensePrescription     Operation = "prescription.dispense"
	OpReadDrugs                Operation = "drug.read"
	OpManageDrugs              Operation = "drug.manage"
	OpCreateTheatre            Operation = "theatre.create"
	OpUpdateTheatre            Operation = "theatre.update"
	OpManageSurgery            Operation = "surgery.manage"
	OpCreateAlert              Operation = "alert.create"
	OpResolveAlert             Operation = "alert.resolve"
	OpSubscribe                Operation = "realtime.subscribe"
)

var (
	admin    = domain.RoleAdmin
	doctor   = domain.RoleDoctor
	nurse    = domain.RoleNurse
	patient  = domain.RolePatient
	pharmacy = domain.RolePharmacy
)

// policy maps each operation to the roles allowed to invoke it. An empty
// set admits any authenticated caller.
var policy = map[Operation][]domain.Role{
	OpBookAppointment:          {patient, admin},
	OpCancelAppointment:        {patient, admin},
	OpUpdateAppointment:        {admin, doctor, patient},
	OpListAppointments:         {admin, doctor, nurse},
	OpReadAppointment:          {admin, doctor, nurse, patient},
	OpCallToken:                {doctor, nurse, admin},
	OpStartConsultation:        {doctor},
	OpCompleteConsultation:     {doctor},
	OpReadQueue:                {},
	OpRepairQueue:              {admin},
	OpListPatients:             {admin, doctor, nurse},
	OpReadPatient:              {admin, doctor, nurse},
	OpUpdatePatient:            {admin},
	OpCreateDepartment:         {admin},
	OpUpdateDepartment:         {admin},
	OpCreateStaff:              {admin},
	OpUpdateDoctor:             {},
	OpCreatePrescription:       {doctor},
	OpListPrescriptions:        {admin, doctor, nurse, pharmacy},
	OpListPendingPrescriptions: {pharmacy},
	OpDispensePrescription:     {pharmacy},
	OpReadDrugs:                {admin, pharmacy},
	OpManageDrugs:              {admin, pharmacy},
	OpCreateTheatre:            {admin},
	OpUpdateTheatre:            {admin, doctor},
	OpManageSurgery:            {doctor},
	OpCreateAlert:              {},
	OpResolveAlert:             {},
	OpSubscribe:                {},
}

// Roles returns the roles allowed to invoke op and whether op is known.
func Roles(op Operation) ([]domain.Role, bool) {
	roles, ok := policy[op]
	return slices.Clone(roles), ok
}

// Authorize fails with ErrUnauthenticated when p is nil and ErrForbidden
// when p's role is not allowed for op. Unknown operations are forbidden.
func Authorize(p *Principal, op Operation) error {
	if p == nil {
		return ErrUnauthenticated
	}
	roles, ok := policy[op]
	if !ok {
		return ErrForbidden
	}
	if len(roles) == 0 || slices.Contains(roles, p.Role) {
		return nil
	}
	return ErrForbidden
}

// AuthorizeOwner lets a patient act on a resource owned by their own
// patient profile regardless of op's role set, and forbids a patient from
// acting on anyone else's. Other roles fall back to Authorize.
func AuthorizeOwner(p *Principal, op Operation, ownerPatientID int64) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.Role == domain.RolePatient {
		if p.OwnsProfile(ownerPatientID) {
			return nil
		}
		return ErrForbidden
	}
	return Authorize(p, op)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored on ctx, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
