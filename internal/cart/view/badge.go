// Package view holds read-only projections of the cart for display code.
package view

import (
	"context"
	"sync"

	"github.com/gaylashop/storefront/internal/cart/domain"
	"github.com/gaylashop/storefront/internal/cart/tabsync"
)

type State struct {
	Count  int
	Units  int
	Loaded bool
}

// Badge projects the cart to its distinct line count. Loaded turns true
// after the first delivery from the synchronizer.
type Badge struct {
	mu    sync.Mutex
	state State
	subs  map[chan State]struct{}
}

func NewBadge() *Badge {
	return &Badge{subs: make(map[chan State]struct{})}
}

// Bind subscribes the badge to every change the synchronizer delivers.
func (b *Badge) Bind(s *tabsync.Synchronizer) {
	s.OnChange(func(_ context.Context, ch tabsync.Change) {
		b.Update(ch.Cart)
	})
}

func (b *Badge) Update(cart domain.Cart) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = State{Count: cart.Count(), Units: cart.Units(), Loaded: true}
	for c := range b.subs {
		// Keep only the latest state so a slow reader never blocks Update.
		select {
		case <-c:
		default:
		}
		c <- b.state
	}
}

func (b *Badge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Badge) Count() int   { return b.State().Count }
func (b *Badge) Loaded() bool { return b.State().Loaded }

// Updates streams state changes. The channel holds at most the latest
// state; call the returned func to stop.
func (b *Badge) Updates() (<-chan State, func()) {
	c := make(chan State, 1)
	b.mu.Lock()
	b.subs[c] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return c, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, c)
			b.mu.Unlock()
		})
	}
}
