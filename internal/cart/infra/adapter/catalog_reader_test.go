package adapter

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaylashop/storefront/internal/cart/domain"
	catalogapp "github.com/gaylashop/storefront/internal/catalog/app"
	catalogdomain "github.com/gaylashop/storefront/internal/catalog/domain"
)

type fakeProducts struct {
	products map[string]catalogdomain.Product
}

func (f fakeProducts) Create(ctx context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	return p, nil
}
func (f fakeProducts) Get(ctx context.Context, id string) (catalogdomain.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return catalogdomain.Product{}, catalogapp.ErrNotFound
}
func (f fakeProducts) GetBySlug(ctx context.Context, slug string) (catalogdomain.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return catalogdomain.Product{}, catalogapp.ErrNotFound
}
func (f fakeProducts) List(ctx context.Context, query string, limit int, cursor string) ([]catalogdomain.Product, string, error) {
	return nil, "", nil
}

func TestCatalogServiceReader(t *testing.T) {
	thumb := "abaya.jpg"
	reader := NewCatalogServiceReader(catalogapp.NewService(fakeProducts{products: map[string]catalogdomain.Product{
		"p-1": {
			ID:            "p-1",
			Slug:          "abaya",
			Name:          "Abaya",
			Price:         decimal.RequireFromString("4500.5"),
			Thumbnail:     &thumb,
			VariantGroups: map[string][]string{"Size": {"S", "M"}},
		},
	}}))
	ctx := context.Background()

	t.Run("copies product data", func(t *testing.T) {
		it, err := reader.LineItem(ctx, "abaya", domain.Variants{"Size": "M"}, 2)
		require.NoError(t, err)
		assert.Equal(t, "p-1", it.ProductID)
		assert.Equal(t, "Abaya", it.Name)
		assert.Equal(t, 4500.5, it.Price)
		assert.Equal(t, 2, it.Quantity)
		assert.Equal(t, &thumb, it.Thumbnail)
	})

	t.Run("invalid selection", func(t *testing.T) {
		_, err := reader.LineItem(ctx, "p-1", domain.Variants{"Size": "XXL"}, 1)
		assert.ErrorIs(t, err, catalogdomain.ErrInvalidVariant)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := reader.LineItem(ctx, "nope", nil, 1)
		assert.ErrorIs(t, err, catalogapp.ErrNotFound)
	})
}
