package domain

import (
	"errors"
	"fmt"
)

// CartFullError is returned when a new line would exceed the line limit.
type CartFullError struct {
	Max int
}

func (e *CartFullError) Error() string {
	return fmt.Sprintf("cart is full (maximum %d items)", e.Max)
}

// InvalidQuantityError is returned for a quantity below 1, one that would
// overflow the line, or input that is not an integer (Input set).
type InvalidQuantityError struct {
	Quantity int
	Input    string
}

func (e *InvalidQuantityError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("invalid quantity %q: must be a positive integer", e.Input)
	}
	return fmt.Sprintf("invalid quantity %d: must be a positive integer", e.Quantity)
}

// IsUserError reports whether err is a validation error the shopper can fix.
func IsUserError(err error) bool {
	var full *CartFullError
	var qty *InvalidQuantityError
	return errors.As(err, &full) || errors.As(err, &qty) || errors.Is(err, ErrInvalidItem)
}
