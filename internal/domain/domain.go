package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDoctor   Role = "doctor"
	RoleNurse    Role = "nurse"
	RolePatient  Role = "patient"
	RolePharmacy Role = "pharmacy"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleNurse, RolePatient, RolePharmacy:
		return true
	}
	return false
}

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Username     string `gorm:"column:username;type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         Role   `gorm:"column:role;type:varchar(20);not null;index" json:"role"`
	FullName     string `gorm:"column:full_name;type:varchar(200);not null" json:"fullName"`
	Email        string `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	Phone        string `gorm:"column:phone;type:varchar(30)" json:"phone,omitempty"`
	IsActive     bool   `gorm:"column:is_active;default:true" json:"isActive"`
}

func (User) TableName() string {
	return "users"
}

// NormalizeUsername is the canonical form used for uniqueness checks.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

type UserPatch struct {
	PasswordHash *string
	FullName     *string
	Email        *string
	Phone        *string
	IsActive     *bool
}

func (p *UserPatch) Apply(u *User) {
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionLogin  AuditAction = "login"
)

type AuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OccurredAt time.Time `gorm:"autoCreateTime;index" json:"occurredAt"`

	// Who
	UserID    int64  `gorm:"column:user_id;not null;index" json:"userId"`
	UserRole  Role   `gorm:"column:user_role;type:varchar(20);not null" json:"userRole"`
	IPAddress string `gorm:"column:ip_address;type:varchar(45)" json:"ipAddress,omitempty"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index" json:"action"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index" json:"resourceType"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index" json:"resourceId,omitempty"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index" json:"requestId,omitempty"`
	Changes   string `gorm:"column:changes;type:jsonb" json:"changes,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

// Claims is the session identity carried by a JWT.
// ProfileID is the id of the role-specific profile (doctor, nurse, patient or
// pharmacy staff record) owned by the user; admins have none.
type Claims struct {
	UserID    int64  `json:"sub"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	ProfileID *int64 `json:"profile_id,omitempty"`
}
