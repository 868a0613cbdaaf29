package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store/memory"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/metrics"
)

func newJWT() *auth.JWTManager {
	return auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-that-is-long-enough-123",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "medqueue-test",
	})
}

func register(role domain.Role, username string) *service.RegisterCommand {
	return &service.RegisterCommand{
		Username: username,
		Password: "correct-horse",
		Role:     role,
		FullName: "Test " + string(role),
	}
}

func TestRegister_CreatesProfileForRole(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	jwt := newJWT()
	svc := service.NewAuthService(h.deps, jwt)

	sess, err := svc.Register(ctx, register(domain.RolePatient, "  Dana "))
	require.NoError(t, err)
	assert.Equal(t, "dana", sess.User.Username)
	require.NotNil(t, sess.ProfileID)

	pt, err := h.store.Patients().GetByUserID(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, pt.ID, *sess.ProfileID)

	claims, err := jwt.ValidateAccessToken(sess.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePatient, claims.Role)
	require.NotNil(t, claims.ProfileID)
	assert.Equal(t, pt.ID, *claims.ProfileID)

	sess, err = svc.Register(ctx, register(domain.RoleDoctor, "dr.who"))
	require.NoError(t, err)
	doc, err := h.store.Doctors().GetByUserID(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, h.cardiology.ID, doc.DepartmentID)
	assert.Equal(t, *sess.ProfileID, doc.ID)

	sess, err = svc.Register(ctx, register(domain.RolePharmacy, "pharm.eve"))
	require.NoError(t, err)
	_, err = h.store.Pharmacists().GetByUserID(ctx, sess.User.ID)
	assert.NoError(t, err)
}

func TestRegister_DefaultDepartmentIsCreated(t *testing.T) {
	s := memory.New()
	svc := service.NewAuthService(service.Deps{
		Store:   s,
		Metrics: metrics.NewCollector("test", prometheus.NewRegistry()),
		Log:     zap.NewNop(),
	}, newJWT())

	_, err := svc.Register(context.Background(), register(domain.RoleNurse, "nurse.new"))
	require.NoError(t, err)

	depts, err := s.Departments().List(context.Background())
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, "General Medicine", depts[0].Name)
	assert.Len(t, s.Snapshot().Nurses, 1)
}

func TestRegister_Rejections(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	svc := service.NewAuthService(h.deps, newJWT())

	_, err := svc.Register(ctx, register(domain.RoleAdmin, "root"))
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)

	short := register(domain.RolePatient, "shorty")
	short.Password = "abc"
	_, err = svc.Register(ctx, short)
	assert.ErrorAs(t, err, &verr)

	before := h.store.Snapshot()
	_, err = svc.Register(ctx, register(domain.RolePatient, "ALICE"))
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	assert.Equal(t, before.Users, h.store.Snapshot().Users)
}

func TestLogin(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	jwt := newJWT()
	svc := service.NewAuthService(h.deps, jwt)

	reg, err := svc.Register(ctx, register(domain.RoleNurse, "nurse.ann"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nurse.ann", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	sess, err := svc.Login(ctx, "Nurse.Ann", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, reg.ProfileID, sess.ProfileID)

	refreshed, err := svc.RefreshToken(ctx, sess.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, refreshed.User.ID)

	_, err = svc.RefreshToken(ctx, sess.Tokens.AccessToken)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = h.store.Users().Update(ctx, reg.User.ID, &domain.UserPatch{IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = svc.Login(ctx, "nurse.ann", "correct-horse")
	assert.ErrorIs(t, err, service.ErrAccountInactive)
	_, err = svc.RefreshToken(ctx, sess.Tokens.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	h := newHospital(t)
	ctx := context.Background()
	svc := service.NewAuthService(h.deps, newJWT())

	reg, err := svc.Register(ctx, register(domain.RolePatient, "pat.new"))
	require.NoError(t, err)
	p := &access.Principal{UserID: reg.User.ID, Role: reg.User.Role, ProfileID: reg.ProfileID}

	err = svc.ChangePassword(ctx, p, "not-it", "brand-new-secret")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, p, "correct-horse", "brand-new-secret"))

	_, err = svc.Login(ctx, "pat.new", "correct-horse")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "pat.new", "brand-new-secret")
	assert.NoError(t, err)

	me, err := svc.Me(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "pat.new", me.User.Username)
	assert.Nil(t, me.Tokens)
}

func TestAuditService_PersistsEntries(t *testing.T) {
	h := newHospital(t)
	reg := prometheus.NewRegistry()
	m := metrics.NewCollector("audit", reg)
	audit := service.NewAuditService(h.store.AuditLogs(), zap.NewNop(), m)

	deps := h.deps
	deps.Audit = audit
	ctx := service.WithRequestMeta(context.Background(), service.RequestMeta{IP: "10.0.0.7", RequestID: "req-1"})

	_, err := service.NewQueueService(deps).Book(ctx, h.patient, h.booking())
	require.NoError(t, err)
	require.NoError(t, audit.Shutdown(context.Background()))

	logs := h.store.Snapshot().AuditLogs
	require.Len(t, logs, 1)
	for _, l := range logs {
		assert.Equal(t, h.patient.UserID, l.UserID)
		assert.Equal(t, domain.ActionCreate, l.Action)
		assert.Equal(t, "appointment", l.ResourceType)
		assert.Equal(t, "10.0.0.7", l.IPAddress)
		assert.Equal(t, "req-1", l.RequestID)
		assert.Contains(t, l.Changes, "tokenNumber")
	}
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuditEntriesTotal))
}
