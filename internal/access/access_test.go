package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
)

func principal(role domain.Role, profile int64) *Principal {
	return &Principal{UserID: 1, Role: role, ProfileID: &profile}
}

func TestAuthorize_Unauthenticated(t *testing.T) {
	assert.ErrorIs(t, Authorize(nil, OpCreateAlert), ErrUnauthenticated)
	assert.ErrorIs(t, AuthorizeOwner(nil, OpCancelAppointment, 1), ErrUnauthenticated)
}

func TestAuthorize_RoleSets(t *testing.T) {
	cases := []struct {
		op   Operation
		role domain.Role
		want error
	}{
		{OpCreatePrescription, domain.RoleDoctor, nil},
		{OpCreatePrescription, domain.RoleNurse, ErrForbidden},
		{OpCreatePrescription, domain.RoleAdmin, ErrForbidden},
		{OpCallToken, domain.RoleNurse, nil},
		{OpCallToken, domain.RolePatient, ErrForbidden},
		{OpStartConsultation, domain.RoleAdmin, ErrForbidden},
		{OpListPatients, domain.RolePharmacy, ErrForbidden},
		{OpDispensePrescription, domain.RolePharmacy, nil},
		{OpCreateDepartment, domain.RoleDoctor, ErrForbidden},
		{OpCreateAlert, domain.RolePatient, nil},
		{OpResolveAlert, domain.RolePharmacy, nil},
		{Operation("unknown"), domain.RoleAdmin, ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(string(tc.op)+"/"+string(tc.role), func(t *testing.T) {
			err := Authorize(principal(tc.role, 1), tc.op)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestAuthorizeOwner_PatientOwnershipOverridesRoleSet(t *testing.T) {
	// Patients are not in the list-patients role set but may read their own.
	assert.NoError(t, AuthorizeOwner(principal(domain.RolePatient, 5), OpReadPatient, 5))
	assert.ErrorIs(t, AuthorizeOwner(principal(domain.RolePatient, 5), OpReadPatient, 6), ErrForbidden)
}

func TestAuthorizeOwner_PatientCannotActForOthers(t *testing.T) {
	// Booking admits patients, but only for their own profile.
	assert.ErrorIs(t, AuthorizeOwner(principal(domain.RolePatient, 5), OpBookAppointment, 6), ErrForbidden)

	noProfile := &Principal{UserID: 3, Role: domain.RolePatient}
	assert.ErrorIs(t, AuthorizeOwner(noProfile, OpBookAppointment, 0), ErrForbidden)
}

func TestAuthorizeOwner_OtherRolesUsePolicy(t *testing.T) {
	assert.NoError(t, AuthorizeOwner(principal(domain.RoleAdmin, 0), OpCancelAppointment, 9))
	assert.ErrorIs(t, AuthorizeOwner(principal(domain.RoleNurse, 2), OpCancelAppointment, 9), ErrForbidden)
}

func TestEveryOperationHasPolicy(t *testing.T) {
	for _, op := range []Operation{OpBookAppointment, OpCallToken, OpStartConsultation, OpCompleteConsultation, OpCancelAppointment} {
		_, ok := Roles(op)
		assert.True(t, ok, op)
	}
}

func TestPrincipalContext(t *testing.T) {
	assert.Nil(t, PrincipalFrom(context.Background()))

	p := principal(domain.RoleDoctor, 3)
	ctx := WithPrincipal(context.Background(), p)
	assert.Same(t, p, PrincipalFrom(ctx))
}
