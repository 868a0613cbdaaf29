package department

import "errors"

var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentInactive = errors.New("department is not active")
	ErrNameRequired       = errors.New("department name is required")
	ErrNameTaken          = errors.New("department name already exists")
)
