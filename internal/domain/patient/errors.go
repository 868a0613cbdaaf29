package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("user already has a patient profile")
	ErrInvalidGender        = errors.New("invalid gender value")
	ErrInvalidBloodGroup    = errors.New("invalid blood group")
	ErrInvalidDateOfBirth   = errors.New("date of birth cannot be in the future")
)
