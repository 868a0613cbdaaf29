package prescription

import "errors"

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrNoMedications        = errors.New("prescription needs at least one medication")
	ErrAlreadyDispensed     = errors.New("prescription has already been dispensed")
)
