package theatre

import "errors"

var (
	ErrTheatreNotFound         = errors.New("operation theatre not found")
	ErrSurgeryNotFound         = errors.New("surgery not found")
	ErrTheatreUnavailable      = errors.New("operation theatre is not available")
	ErrInvalidDuration         = errors.New("surgery duration must be between 15 and 1440 minutes")
	ErrInvalidStatusTransition = errors.New("invalid surgery status transition")
)
