package app

import (
	"context"

	"github.com/gaylashop/storefront/internal/cart/domain"
)

// CartRepo persists the whole cart. Implementations absorb storage
// failures: Read returns an empty cart and Write drops the change.
type CartRepo interface {
	Read(ctx context.Context) domain.Cart
	Write(ctx context.Context, cart domain.Cart)
}
