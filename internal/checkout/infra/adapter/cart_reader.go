package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	cartapp "github.com/gaylashop/storefront/internal/cart/app"
	cartdomain "github.com/gaylashop/storefront/internal/cart/domain"
	checkoutapp "github.com/gaylashop/storefront/internal/checkout/app"
	checkoutdomain "github.com/gaylashop/storefront/internal/checkout/domain"
)

type CartStoreReader struct {
	store *cartapp.Store
}

func NewCartStoreReader(store *cartapp.Store) *CartStoreReader {
	return &CartStoreReader{store: store}
}

func (r *CartStoreReader) GetCart(ctx context.Context) ([]checkoutapp.CartItem, error) {
	cart := r.store.Snapshot(ctx)

	items := make([]checkoutapp.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, checkoutapp.CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Variants:  it.Variants,
			UnitPrice: decimal.NewFromFloat(it.Price),
			Quantity:  int64(it.Quantity),
		})
	}
	return items, nil
}

func (r *CartStoreReader) ConsumeCart(ctx context.Context, ordered []checkoutdomain.QuoteLine) error {
	items := make([]cartdomain.LineItem, 0, len(ordered))
	for _, line := range ordered {
		items = append(items, cartdomain.LineItem{
			ProductID: line.ProductID,
			Variants:  cartdomain.Variants(line.Variants),
			Quantity:  int(line.Quantity),
		})
	}
	r.store.Consume(ctx, items)
	return nil
}
