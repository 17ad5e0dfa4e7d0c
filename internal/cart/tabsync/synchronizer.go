// Package tabsync keeps the consumers of one tab in step with the persisted
// cart. It reacts to cart-updated messages from this tab and to storage
// events from other tabs, re-reads the cart, and hands it to listeners.
// There is no locking between tabs: the last write wins.
package tabsync

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gaylashop/storefront/internal/broadcast"
	"github.com/gaylashop/storefront/internal/cart/domain"
	"github.com/gaylashop/storefront/internal/storage"
)

type Reader interface {
	Key() string
	Read(ctx context.Context) domain.Cart
}

// Change is what listeners receive. Remote is true when the write came
// from another tab.
type Change struct {
	Cart   domain.Cart
	Remote bool
}

type Listener func(ctx context.Context, ch Change)

// Reloader is satisfied by the cart store.
type Reloader interface {
	Reload(ctx context.Context)
}

type Synchronizer struct {
	reader  Reader
	ch      *broadcast.Channel
	watcher storage.Watcher
	log     *zap.Logger

	mu        sync.Mutex
	listeners []Listener
}

// New builds a synchronizer for one tab. watcher may be nil, in which case
// only same-tab messages are observed.
func New(reader Reader, ch *broadcast.Channel, watcher storage.Watcher, log *zap.Logger) *Synchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{
		reader:  reader,
		ch:      ch,
		watcher: watcher,
		log:     log.With(zap.String("component", "tabsync")),
	}
}

// OnChange registers fn. Listeners run on the synchronizer goroutine in
// registration order and must not block for long.
func (s *Synchronizer) OnChange(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// ReloadOnRemote makes r re-read the cart whenever another tab wrote it.
// Same-tab writes are skipped: r is their source.
func (s *Synchronizer) ReloadOnRemote(r Reloader) {
	s.OnChange(func(ctx context.Context, ch Change) {
		if ch.Remote {
			r.Reload(ctx)
		}
	})
}

// Run delivers the current cart once, then follows changes until ctx is
// done. Watcher failures are logged; same-tab messages keep flowing.
func (s *Synchronizer) Run(ctx context.Context) error {
	msgs, cancel := s.ch.Subscribe()
	defer cancel()

	s.refresh(ctx, false)

	g, gctx := errgroup.WithContext(ctx)
	if s.watcher != nil {
		g.Go(func() error {
			err := s.watcher.Watch(gctx, func(ev storage.Event) {
				s.ch.Publish(broadcast.Message{
					Kind:     broadcast.KindStorage,
					Key:      ev.Key,
					OldValue: ev.OldValue,
					NewValue: ev.NewValue,
				})
			})
			if err != nil && gctx.Err() == nil {
				s.log.Warn("storage watcher stopped", zap.Error(err))
			}
			return nil
		})
	}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case msg, ok := <-msgs:
				if !ok {
					return nil
				}
				if !s.matches(msg) {
					continue
				}
				s.refresh(gctx, msg.Kind == broadcast.KindStorage)
			}
		}
	})
	return g.Wait()
}

func (s *Synchronizer) matches(msg broadcast.Message) bool {
	switch msg.Kind {
	case broadcast.KindCartUpdated, broadcast.KindStorage:
		// An empty key means the whole area was cleared.
		return msg.Key == "" || msg.Key == s.reader.Key()
	default:
		return false
	}
}

func (s *Synchronizer) refresh(ctx context.Context, remote bool) {
	cart := s.reader.Read(ctx)
	s.log.Debug("cart reconciled", zap.Bool("remote", remote), zap.Int("lines", cart.Count()))

	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, Change{Cart: cart.Clone(), Remote: remote})
	}
}
