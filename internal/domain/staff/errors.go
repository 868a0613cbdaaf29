package staff

import "errors"

var (
	ErrDoctorNotFound     = errors.New("doctor not found")
	ErrNurseNotFound      = errors.New("nurse not found")
	ErrPharmacistNotFound = errors.New("pharmacy staff not found")
	ErrInvalidShift       = errors.New("shift must be day or night")
	ErrInvalidPosition    = errors.New("position must be pharmacist or technician")
	ErrProfileExists      = errors.New("user already has a staff profile")
)
