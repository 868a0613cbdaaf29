package domain

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
)

type UserRepository interface {
	// Create returns ErrUsernameTaken when the normalized username is in use.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, id int64, patch *UserPatch) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *AuditLog) error
}
