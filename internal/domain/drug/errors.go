package drug

import "errors"

var (
	ErrDrugNotFound      = errors.New("drug not found")
	ErrNegativeQuantity  = errors.New("quantity cannot be negative")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNegativePrice     = errors.New("unit price cannot be negative")
)
