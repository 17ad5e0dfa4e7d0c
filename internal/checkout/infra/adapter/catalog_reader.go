package adapter

import (
	"context"

	catalogapp "github.com/gaylashop/storefront/internal/catalog/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) CheckLine(ctx context.Context, productID string, variants map[string]string) error {
	p, err := r.svc.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	return p.ValidateSelection(variants)
}
