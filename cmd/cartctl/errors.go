package main

import (
	"errors"

	cartdomain "github.com/gaylashop/storefront/internal/cart/domain"
	catalogapp "github.com/gaylashop/storefront/internal/catalog/app"
	catalogdomain "github.com/gaylashop/storefront/internal/catalog/domain"
	checkoutapp "github.com/gaylashop/storefront/internal/checkout/app"
	"github.com/gaylashop/storefront/internal/delivery"
	orderapp "github.com/gaylashop/storefront/internal/order/app"
)

const (
	exitFailure  = 1
	exitUsage    = 2
	exitNotFound = 3
)

// exitCode maps an error to the process exit status and the message shown
// to the user.
func exitCode(err error) (int, string) {
	switch {
	case err == nil:
		return 0, ""
	case cartdomain.IsUserError(err),
		errors.Is(err, checkoutapp.ErrEmptyCart),
		errors.Is(err, catalogdomain.ErrInvalidVariant),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, orderapp.ErrInvalidInput),
		errors.Is(err, delivery.ErrUnknownType),
		errors.Is(err, delivery.ErrUnknownWilaya),
		errors.Is(err, delivery.ErrUnavailable):
		return exitUsage, err.Error()
	case errors.Is(err, catalogapp.ErrNotFound), errors.Is(err, orderapp.ErrNotFound):
		return exitNotFound, err.Error()
	default:
		return exitFailure, "error: " + err.Error()
	}
}
