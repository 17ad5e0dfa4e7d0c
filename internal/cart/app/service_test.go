package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/gaylashop/storefront/internal/cart/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	stored domain.Cart
	reads  int
	writes []domain.Cart
}

func (r *fakeRepo) Read(context.Context) domain.Cart {
	r.reads++
	return r.stored.Clone()
}

func (r *fakeRepo) Write(_ context.Context, c domain.Cart) {
	r.stored = c.Clone()
	r.writes = append(r.writes, c.Clone())
}

func product(id string, qty int) domain.LineItem {
	return domain.LineItem{ProductID: id, Slug: id, Name: id, Price: 1000, Variants: domain.Variants{}, Quantity: qty}
}

func TestAddItemScenario(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore(repo)

	require.NoError(t, s.AddItem(ctx, product("P1", 1)))
	require.Equal(t, 1, s.Count(ctx))
	assert.Equal(t, 1, s.Items(ctx)[0].Quantity)

	require.NoError(t, s.AddItem(ctx, product("P1", 2)))
	items := s.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	for i := 2; i <= 10; i++ {
		require.NoError(t, s.AddItem(ctx, product(fmt.Sprintf("P%d", i), 1)))
	}
	assert.False(t, s.CanAdd(ctx))
	writes := len(repo.writes)

	err := s.AddItem(ctx, product("P11", 1))
	var full *domain.CartFullError
	require.True(t, errors.As(err, &full))
	assert.Equal(t, 10, full.Max)
	assert.Equal(t, 10, s.Count(ctx))
	assert.Len(t, repo.writes, writes, "rejected add must not persist")
	assert.Equal(t, 10, repo.stored.Count())
}

func TestAddItemInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore(repo)

	for _, qty := range []int{0, -3} {
		err := s.AddItem(ctx, product("P1", qty))
		var invalid *domain.InvalidQuantityError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, qty, invalid.Quantity)
	}
	assert.Empty(t, repo.writes)
	assert.Equal(t, 0, s.Count(ctx))
}

func TestLazyLoad(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{stored: domain.Cart{Items: []domain.LineItem{product("P1", 2)}}}
	s := NewStore(repo)
	assert.Equal(t, 0, repo.reads)

	assert.Equal(t, 1, s.Count(ctx))
	assert.Equal(t, 1, s.Count(ctx))
	assert.Equal(t, 1, repo.reads)

	require.NoError(t, s.AddItem(ctx, product("P1", 1)))
	assert.Equal(t, 3, repo.stored.Items[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore(repo)
	require.NoError(t, s.AddItem(ctx, product("P1", 1)))
	require.NoError(t, s.AddItem(ctx, product("P2", 1)))

	t.Run("sets quantity", func(t *testing.T) {
		s.UpdateQuantity(ctx, domain.LineKey{ProductID: "P1"}, 5)
		assert.Equal(t, 5, repo.stored.Items[0].Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		s.UpdateQuantity(ctx, domain.LineKey{ProductID: "P1"}, 0)
		items := s.Items(ctx)
		require.Len(t, items, 1)
		assert.Equal(t, "P2", items[0].ProductID)
		assert.Equal(t, 1, repo.stored.Count())
	})

	t.Run("absent line does not write", func(t *testing.T) {
		n := len(repo.writes)
		s.UpdateQuantity(ctx, domain.LineKey{ProductID: "nope"}, 3)
		s.RemoveItem(ctx, domain.LineKey{ProductID: "nope"})
		assert.Len(t, repo.writes, n)
	})
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore(repo)
	require.NoError(t, s.AddItem(ctx, product("P1", 1)))
	require.NoError(t, s.AddItem(ctx, product("P2", 4)))

	s.RemoveItem(ctx, domain.LineKey{ProductID: "P2", Variants: domain.Variants{}})
	assert.Equal(t, 1, s.Count(ctx))

	s.Clear(ctx)
	assert.Empty(t, s.Items(ctx))
	last := repo.writes[len(repo.writes)-1]
	assert.NotNil(t, last.Items)
	assert.Empty(t, last.Items)
}

func TestClearPersistsEvenWhenUnloaded(t *testing.T) {
	repo := &fakeRepo{stored: domain.Cart{Items: []domain.LineItem{product("P1", 1)}}}
	s := NewStore(repo)

	s.Clear(context.Background())

	assert.Equal(t, 0, repo.reads)
	assert.True(t, repo.stored.IsEmpty())
}

func TestConsume(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore(repo)
	require.NoError(t, s.AddItem(ctx, product("P1", 2)))
	ordered := s.Items(ctx)

	require.NoError(t, s.AddItem(ctx, product("P2", 1)))
	require.NoError(t, s.AddItem(ctx, product("P1", 1)))
	s.Consume(ctx, ordered)

	items := s.Items(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, "P1", items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "P2", items[1].ProductID)
	assert.Equal(t, items, repo.stored.Items)

	writes := len(repo.writes)
	s.Consume(ctx, []domain.LineItem{product("P9", 1)})
	assert.Len(t, repo.writes, writes)
}

func TestRejectedItemIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore(repo)
	require.NoError(t, s.AddItem(ctx, product("P1", math.MaxInt)))

	var qty *domain.InvalidQuantityError
	assert.True(t, errors.As(s.AddItem(ctx, product("P1", 1)), &qty))

	nan := product("P2", 1)
	nan.Price = math.NaN()
	assert.ErrorIs(t, s.AddItem(ctx, nan), domain.ErrInvalidItem)

	require.Len(t, repo.writes, 1)
	assert.Equal(t, math.MaxInt, repo.stored.Items[0].Quantity)
	assert.Equal(t, 1, s.Count(ctx))
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&fakeRepo{})
	require.NoError(t, s.AddItem(ctx, domain.LineItem{ProductID: "P1", Variants: domain.Variants{"Size": "M"}, Quantity: 1}))

	snap := s.Snapshot(ctx)
	snap.Items[0].Quantity = 99
	snap.Items[0].Variants["Size"] = "XL"

	items := s.Items(ctx)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "M", items[0].Variants["Size"])
}

func TestReload(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore(repo)
	require.NoError(t, s.AddItem(ctx, product("P1", 1)))

	repo.stored = domain.Cart{Items: []domain.LineItem{product("P7", 2), product("P8", 1)}}
	s.Reload(ctx)

	assert.Equal(t, 2, s.Count(ctx))
}

func TestWithMaxLines(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&fakeRepo{}, WithMaxLines(2))
	require.NoError(t, s.AddItem(ctx, product("a", 1)))
	require.NoError(t, s.AddItem(ctx, product("b", 1)))

	err := s.AddItem(ctx, product("c", 1))
	assert.EqualError(t, err, "cart is full (maximum 2 items)")
	assert.Equal(t, 2, s.MaxLines())
}
