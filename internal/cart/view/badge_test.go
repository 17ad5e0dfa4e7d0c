package view

import (
	"testing"

	"github.com/gaylashop/storefront/internal/cart/domain"
	"github.com/stretchr/testify/assert"
)

func TestBadge(t *testing.T) {
	b := NewBadge()
	assert.False(t, b.Loaded())
	assert.Equal(t, 0, b.Count())

	updates, stop := b.Updates()
	defer stop()

	b.Update(domain.Cart{Items: []domain.LineItem{{ProductID: "a", Quantity: 2}}})
	b.Update(domain.Cart{Items: []domain.LineItem{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}}})

	st := <-updates
	assert.Equal(t, State{Count: 2, Units: 3, Loaded: true}, st, "only the latest state is kept")
	assert.Equal(t, 2, b.Count())

	select {
	case extra := <-updates:
		t.Fatalf("unexpected state %+v", extra)
	default:
	}

	stop()
	stop()
	b.Update(domain.Cart{})
	assert.True(t, b.Loaded())
	assert.Equal(t, 0, b.Count())
}
