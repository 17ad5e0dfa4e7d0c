package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/gaylashop/storefront/internal/cart/domain"
)

// Store owns the in-memory cart of one tab. The cart is read from the
// repo on first use and written back after every successful mutation.
type Store struct {
	repo     CartRepo
	log      *zap.Logger
	maxLines int

	mu     sync.Mutex
	loaded bool
	cart   domain.Cart
}

type Option func(*Store)

func WithMaxLines(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxLines = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func NewStore(repo CartRepo, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		log:      zap.NewNop(),
		maxLines: domain.MaxLines,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("component", "cart-store"))
	return s
}

func (s *Store) MaxLines() int { return s.maxLines }

// load must be called with mu held.
func (s *Store) load(ctx context.Context) {
	if s.loaded {
		return
	}
	s.cart = s.repo.Read(ctx)
	s.loaded = true
}

// AddItem merges into an existing line or appends a new one. It returns
// *domain.InvalidQuantityError or *domain.CartFullError without touching
// the cart.
func (s *Store) AddItem(ctx context.Context, item domain.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	next := s.cart.Clone()
	if err := next.Add(item, s.maxLines); err != nil {
		s.log.Debug("add rejected", zap.String("product_id", item.ProductID), zap.Error(err))
		return err
	}
	s.commit(ctx, next)
	return nil
}

// UpdateQuantity sets the quantity of a line; quantity <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, key domain.LineKey, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	next := s.cart.Clone()
	if next.SetQuantity(key, quantity) {
		s.commit(ctx, next)
	}
}

func (s *Store) RemoveItem(ctx context.Context, key domain.LineKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	next := s.cart.Clone()
	if next.Remove(key) {
		s.commit(ctx, next)
	}
}

// Clear empties the cart and persists the empty state.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true

	var next domain.Cart
	next.Clear()
	s.commit(ctx, next)
}

// Consume removes ordered quantities from the current cart, so lines added
// after the order was quoted survive.
func (s *Store) Consume(ctx context.Context, ordered []domain.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	next := s.cart.Clone()
	if !next.Consume(ordered) {
		return
	}
	s.commit(ctx, next)
}

func (s *Store) CanAdd(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return s.cart.CanAdd(s.maxLines)
}

func (s *Store) Count(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return s.cart.Count()
}

func (s *Store) Items(ctx context.Context) []domain.LineItem {
	return s.Snapshot(ctx).Items
}

// Snapshot returns a deep copy of the current cart.
func (s *Store) Snapshot(ctx context.Context) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return s.cart.Clone()
}

// Reload replaces the in-memory cart with the persisted one. It is used
// when another tab changed the cart.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = s.repo.Read(ctx)
	s.loaded = true
}

// commit must be called with mu held.
func (s *Store) commit(ctx context.Context, next domain.Cart) {
	s.cart = next
	s.repo.Write(ctx, next)
	s.log.Debug("cart changed", zap.Int("lines", next.Count()), zap.Int("units", next.Units()))
}
