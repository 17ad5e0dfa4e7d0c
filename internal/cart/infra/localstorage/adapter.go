package localstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gaylashop/storefront/internal/broadcast"
	"github.com/gaylashop/storefront/internal/cart/domain"
	"github.com/gaylashop/storefront/internal/storage"
)

const (
	Key           = "gayla-shop-cart"
	SchemaVersion = 1
)

var ErrVersionMismatch = errors.New("cart payload: schema version mismatch")

type payload struct {
	Version int               `json:"version"`
	Items   []domain.LineItem `json:"items"`
}

// Adapter is the only writer of the cart key. Storage failures stop here:
// Read falls back to an empty cart and Write logs and drops the change.
type Adapter struct {
	store    storage.Storage
	ch       *broadcast.Channel
	log      *zap.Logger
	maxLines int
}

type Option func(*Adapter)

// WithMaxLines sets the line limit a stored cart must respect to be loaded.
func WithMaxLines(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxLines = n
		}
	}
}

// NewAdapter wires the adapter to a storage handle and the tab's channel.
// ch may be nil when nothing in the tab listens for cart-updated.
func NewAdapter(store storage.Storage, ch *broadcast.Channel, log *zap.Logger, opts ...Option) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Adapter{
		store:    store,
		ch:       ch,
		log:      log.With(zap.String("component", "cart-adapter"), zap.String("key", Key)),
		maxLines: domain.MaxLines,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Key() string { return Key }

func (a *Adapter) Read(ctx context.Context) domain.Cart {
	raw, ok, err := a.store.GetItem(ctx, Key)
	if err != nil {
		a.log.Warn("storage unavailable, using empty cart", zap.Error(err))
		return emptyCart()
	}
	if !ok {
		return emptyCart()
	}
	cart, err := Decode([]byte(raw), a.maxLines)
	if err != nil {
		a.log.Warn("discarding stored cart", zap.Error(err))
		return emptyCart()
	}
	return cart
}

func (a *Adapter) Write(ctx context.Context, cart domain.Cart) {
	data, err := Encode(cart)
	if err != nil {
		a.log.Error("encode cart", zap.Error(err))
		return
	}
	if err := a.store.SetItem(ctx, Key, string(data)); err != nil {
		a.log.Error("persist cart", zap.Error(err))
		return
	}
	a.log.Debug("cart persisted", zap.Int("lines", cart.Count()))
	if a.ch != nil {
		a.ch.Publish(broadcast.Message{Kind: broadcast.KindCartUpdated, Key: Key})
	}
}

// Clear persists an empty cart rather than deleting the key.
func (a *Adapter) Clear(ctx context.Context) {
	a.Write(ctx, emptyCart())
}

// Encode always writes the complete structure with the current version.
func Encode(cart domain.Cart) ([]byte, error) {
	p := payload{Version: SchemaVersion, Items: make([]domain.LineItem, 0, len(cart.Items))}
	for _, it := range cart.Items {
		p.Items = append(p.Items, it.Clone())
	}
	return json.Marshal(p)
}

// Decode rejects payloads from another schema version instead of migrating
// them, and payloads holding more than maxLines lines.
func Decode(data []byte, maxLines int) (domain.Cart, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Cart{}, fmt.Errorf("parse cart payload: %w", err)
	}
	if p.Version != SchemaVersion {
		return domain.Cart{}, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, p.Version, SchemaVersion)
	}
	cart, err := domain.FromItems(p.Items, maxLines)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("invalid stored item: %w", err)
	}
	return cart, nil
}

func emptyCart() domain.Cart {
	return domain.Cart{Items: []domain.LineItem{}}
}
