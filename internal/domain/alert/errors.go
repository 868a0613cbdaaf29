package alert

import "errors"

var (
	ErrAlertNotFound    = errors.New("emergency alert not found")
	ErrInvalidType      = errors.New("alert type must be one of code-red, code-blue, code-yellow, code-green")
	ErrLocationRequired = errors.New("alert location is required")
)
