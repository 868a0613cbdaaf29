package service

import (
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
)

// ValidationError lists every problem found with a request's input.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// fieldErrors collects validation failures; err returns nil when none were added.
type fieldErrors []string

func (f *fieldErrors) add(format string, args ...any) {
	*f = append(*f, fmt.Sprintf(format, args...))
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func invalid(format string, args ...any) error {
	return &ValidationError{Fields: []string{fmt.Sprintf(format, args...)}}
}

type AuditEntry struct {
	UserID       int64
	UserRole     domain.Role
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	Changes      string
}
