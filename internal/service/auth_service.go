package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/staff"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("account is inactive")
)

const (
	minPasswordLength = 8

	defaultDepartmentName = "General Medicine"
)

type AuthService struct {
	base
	jwtManager *auth.JWTManager
}

func NewAuthService(d Deps, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{base: newBase(d), jwtManager: jwtManager}
}

type RegisterCommand struct {
	Username string
	Password string
	Role     domain.Role
	FullName string
	Email    string
	Phone    string
}

// Session is a signed-in user with the role profile it acts through.
type Session struct {
	User      *domain.User      `json:"user"`
	ProfileID *int64            `json:"profileId,omitempty"`
	Tokens    *domain.TokenPair `json:"tokens,omitempty"`
}

// Register creates the user and the profile for its role in one
// transaction. Doctors and nurses join the first department, which is
// created as General Medicine when there is none. Admin accounts cannot be
// self-registered.
func (s *AuthService) Register(ctx context.Context, cmd *RegisterCommand) (*Session, error) {
	if err := validateRegistration(cmd); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		CreatedAt:    s.now(),
		Username:     cmd.Username,
		PasswordHash: string(hash),
		Role:         cmd.Role,
		FullName:     strings.TrimSpace(cmd.FullName),
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		Phone:        strings.TrimSpace(cmd.Phone),
		IsActive:     true,
	}

	var profileID *int64
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}
		id, err := s.createProfile(ctx, tx, u)
		profileID = id
		return err
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &access.Principal{UserID: u.ID, Role: u.Role}, domain.ActionCreate, "user", u.ID, map[string]any{"role": u.Role})
	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))
	return s.issue(u, profileID)
}

func validateRegistration(cmd *RegisterCommand) error {
	var errs fieldErrors
	if domain.NormalizeUsername(cmd.Username) == "" {
		errs.add("username is required")
	}
	if len(cmd.Password) < minPasswordLength {
		errs.add("password must be at least %d characters", minPasswordLength)
	}
	if strings.TrimSpace(cmd.FullName) == "" {
		errs.add("fullName is required")
	}
	switch {
	case !cmd.Role.IsValid():
		errs.add("role must be one of admin, doctor, nurse, patient, pharmacy")
	case cmd.Role == domain.RoleAdmin:
		errs.add("admin accounts cannot be self-registered")
	}
	return errs.err()
}

func (s *AuthService) createProfile(ctx context.Context, tx store.Store, u *domain.User) (*int64, error) {
	switch u.Role {
	case domain.RolePatient:
		p, err := createPatient(ctx, tx, &patient.CreatePatientCommand{UserID: u.ID}, s.now())
		if err != nil {
			return nil, err
		}
		return &p.ID, nil

	case domain.RoleDoctor:
		dept, err := s.defaultDepartment(ctx, tx)
		if err != nil {
			return nil, err
		}
		d, err := createDoctor(ctx, tx, &staff.CreateDoctorCommand{
			UserID:         u.ID,
			DepartmentID:   dept.ID,
			Specialization: defaultDepartmentName,
			Type:           staff.DoctorSpecialist,
			LicenseNumber:  fmt.Sprintf("DOC-%d", u.ID),
		})
		if err != nil {
			return nil, err
		}
		return &d.ID, nil

	case domain.RoleNurse:
		dept, err := s.defaultDepartment(ctx, tx)
		if err != nil {
			return nil, err
		}
		n, err := createNurse(ctx, tx, &staff.CreateNurseCommand{UserID: u.ID, DepartmentID: dept.ID, Shift: staff.ShiftDay})
		if err != nil {
			return nil, err
		}
		return &n.ID, nil

	case domain.RolePharmacy:
		ph, err := createPharmacist(ctx, tx, &staff.CreatePharmacistCommand{UserID: u.ID, Position: staff.PositionPharmacist})
		if err != nil {
			return nil, err
		}
		return &ph.ID, nil
	}
	return nil, nil
}

func (s *AuthService) defaultDepartment(ctx context.Context, tx store.Store) (*department.Department, error) {
	depts, err := tx.Departments().List(ctx)
	if err != nil {
		return nil, err
	}
	if len(depts) > 0 {
		return depts[0], nil
	}
	d := &department.Department{
		CreatedAt:   s.now(),
		Name:        defaultDepartmentName,
		Description: "General medical care",
		IsActive:    true,
	}
	if err := tx.Departments().Create(ctx, d); err != nil {
		return nil, fmt.Errorf("creating default department: %w", err)
	}
	return d, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	meta := RequestMetaFrom(ctx)

	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		// Dummy hash keeps timing equal for unknown usernames.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("failed login attempt",
			zap.String("username", user.Username),
			zap.String("ip", meta.IP),
		)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	profileID, err := s.profileOf(ctx, user)
	if err != nil {
		return nil, err
	}

	s.record(ctx, &access.Principal{UserID: user.ID, Role: user.Role}, domain.ActionLogin, "user", user.ID, nil)
	s.log.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.String("ip", meta.IP),
	)
	return s.issue(user, profileID)
}

// RefreshToken issues a new token pair given a valid refresh token. The
// user is re-read so deactivation and profile changes take effect.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.Users().GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	profileID, err := s.profileOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issue(user, profileID)
}

// Me returns the caller's user record and profile id without new tokens.
func (s *AuthService) Me(ctx context.Context, p *access.Principal) (*Session, error) {
	if p == nil {
		return nil, access.ErrUnauthenticated
	}
	user, err := s.store.Users().GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	profileID, err := s.profileOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, ProfileID: profileID}, nil
}

// ChangePassword updates a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, p *access.Principal, currentPassword, newPassword string) error {
	if p == nil {
		return access.ErrUnauthenticated
	}
	user, err := s.store.Users().GetByID(ctx, p.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if _, err := s.store.Users().Update(ctx, user.ID, &domain.UserPatch{PasswordHash: ptr(string(hash))}); err != nil {
		return err
	}
	s.record(ctx, p, domain.ActionUpdate, "user", user.ID, map[string]any{"password": "changed"})
	return nil
}

func (s *AuthService) issue(u *domain.User, profileID *int64) (*Session, error) {
	pair, err := s.jwtManager.GenerateTokenPair(&domain.Claims{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		ProfileID: profileID,
	})
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}
	return &Session{User: u, ProfileID: profileID, Tokens: pair}, nil
}

// profileOf finds the role profile owned by u; admins and users whose
// profile is missing have none.
func (s *AuthService) profileOf(ctx context.Context, u *domain.User) (*int64, error) {
	var (
		id  int64
		err error
	)
	switch u.Role {
	case domain.RolePatient:
		var p *patient.Patient
		if p, err = s.store.Patients().GetByUserID(ctx, u.ID); err == nil {
			id = p.ID
		}
	case domain.RoleDoctor:
		var d *staff.Doctor
		if d, err = s.store.Doctors().GetByUserID(ctx, u.ID); err == nil {
			id = d.ID
		}
	case domain.RoleNurse:
		var n *staff.Nurse
		if n, err = s.store.Nurses().GetByUserID(ctx, u.ID); err == nil {
			id = n.ID
		}
	case domain.RolePharmacy:
		var ph *staff.Pharmacist
		if ph, err = s.store.Pharmacists().GetByUserID(ctx, u.ID); err == nil {
			id = ph.ID
		}
	default:
		return nil, nil
	}
	if err != nil {
		if store.IsNotFound(err) {
			s.log.Warn("user has no role profile", zap.Int64("user_id", u.ID), zap.String("role", string(u.Role)))
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}
