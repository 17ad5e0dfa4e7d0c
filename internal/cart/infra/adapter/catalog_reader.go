package adapter

import (
	"context"
	"fmt"

	"github.com/gaylashop/storefront/internal/cart/domain"
	catalogapp "github.com/gaylashop/storefront/internal/catalog/app"
)

// CatalogServiceReader builds cart lines from catalog products. The product
// data is copied into the line at add time.
type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) LineItem(ctx context.Context, ref string, variants domain.Variants, quantity int) (domain.LineItem, error) {
	p, err := r.svc.Resolve(ctx, ref)
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("failed to get product %s: %w", ref, err)
	}
	if err := p.ValidateSelection(variants); err != nil {
		return domain.LineItem{}, err
	}

	return domain.LineItem{
		ProductID: p.ID,
		Slug:      p.Slug,
		Name:      p.Name,
		Price:     p.Price.InexactFloat64(),
		Variants:  variants.Clone(),
		Thumbnail: p.Thumbnail,
		Quantity:  quantity,
	}, nil
}
