package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaylashop/storefront/internal/catalog/app"
	sqlitedb "github.com/gaylashop/storefront/pkg/sqlite"
)

func newService(t *testing.T) *app.Service {
	t.Helper()
	db, err := sqlitedb.Open(sqlitedb.Config{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewProductRepo(context.Background(), db)
	require.NoError(t, err)
	return app.NewService(repo)
}

func TestProductRepo(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	thumb := "https://cdn.gayla.dz/abaya.jpg"

	created, err := svc.CreateProduct(ctx, app.NewProduct{
		Slug:          "abaya-noir",
		Name:          "Abaya noir",
		Price:         decimal.RequireFromString("4500.50"),
		Thumbnail:     &thumb,
		VariantGroups: map[string][]string{"size": {"S", "M"}},
	})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, app.NewProduct{Slug: "hijab-soie", Name: "Hijab soie", Price: decimal.NewFromInt(900)})
	require.NoError(t, err)

	t.Run("get by id", func(t *testing.T) {
		p, err := svc.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "abaya-noir", p.Slug)
		assert.True(t, p.Price.Equal(decimal.RequireFromString("4500.5")))
		require.NotNil(t, p.Thumbnail)
		assert.Equal(t, thumb, *p.Thumbnail)
		assert.Equal(t, []string{"S", "M"}, p.VariantGroups["size"])
	})

	t.Run("resolve by slug", func(t *testing.T) {
		p, err := svc.Resolve(ctx, "hijab-soie")
		require.NoError(t, err)
		assert.Nil(t, p.Thumbnail)
		assert.Empty(t, p.VariantGroups)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "nothing-here")
		assert.ErrorIs(t, err, app.ErrNotFound)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, app.NewProduct{Slug: "abaya-noir", Name: "Again", Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, app.ErrInvalidInput)
	})

	t.Run("list and paginate", func(t *testing.T) {
		page, next, err := svc.ListProducts(ctx, "", 1, "")
		require.NoError(t, err)
		require.Len(t, page, 1)
		require.NotEmpty(t, next)

		rest, next, err := svc.ListProducts(ctx, "", 1, next)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.NotEqual(t, page[0].ID, rest[0].ID)

		last, next, err := svc.ListProducts(ctx, "", 1, next)
		require.NoError(t, err)
		assert.Empty(t, last)
		assert.Empty(t, next)

		hits, _, err := svc.ListProducts(ctx, "hijab", 10, "")
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "hijab-soie", hits[0].Slug)
	})
}
