package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrAlreadyCompleted        = errors.New("appointment is already completed")
	ErrAlreadyCancelled        = errors.New("appointment is already cancelled")
	ErrDoctorNotInDepartment   = errors.New("doctor does not belong to the chosen department")
	ErrDateRequired            = errors.New("appointment date is required")
)
