package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gaylashop/storefront/internal/checkout/domain"
	"github.com/gaylashop/storefront/internal/delivery"
)

type CartReader interface {
	GetCart(ctx context.Context) ([]CartItem, error)
	// ConsumeCart takes the ordered lines out of the cart.
	ConsumeCart(ctx context.Context, ordered []domain.QuoteLine) error
}

type CartItem struct {
	ProductID string
	Name      string
	Variants  map[string]string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// CatalogReader reports whether a cart line can still be ordered.
type CatalogReader interface {
	CheckLine(ctx context.Context, productID string, variants map[string]string) error
}

type DeliveryRates interface {
	Lookup(wilaya int, t delivery.Type) (decimal.Decimal, error)
}

type OrderWriter interface {
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Receipt, error)
}

type Service struct {
	Cart     CartReader
	Catalog  CatalogReader
	Delivery DeliveryRates
	Orders   OrderWriter

	log           *zap.Logger
	maxConcurrent int
}

func NewService(cart CartReader, catalog CatalogReader, rates DeliveryRates, orders OrderWriter, log *zap.Logger, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		Cart:          cart,
		Catalog:       catalog,
		Delivery:      rates,
		Orders:        orders,
		log:           log.With(zap.String("component", "checkout")),
		maxConcurrent: maxConcurrent,
	}
}

var ErrEmptyCart = errors.New("cart is empty")

func (s *Service) Quote(ctx context.Context, wilaya int, t delivery.Type) (domain.Quote, error) {
	items, err := s.Cart.GetCart(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	shipping, err := s.Delivery.Lookup(wilaya, t)
	if err != nil {
		return domain.Quote{}, err
	}

	lines := make([]domain.QuoteLine, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		idx := idx
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
			}

			if err := s.Catalog.CheckLine(gctx, it.ProductID, it.Variants); err != nil {
				return fmt.Errorf("failed to check product %s: %w", it.ProductID, err)
			}

			lines[idx] = domain.QuoteLine{
				ProductID: it.ProductID,
				Name:      it.Name,
				Variants:  it.Variants,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				LineTotal: it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal)
	}

	return domain.Quote{
		Lines:        lines,
		Wilaya:       wilaya,
		DeliveryType: string(t),
		Subtotal:     subtotal,
		Delivery:     shipping,
		Total:        subtotal.Add(shipping),
	}, nil
}

// PlaceOrder submits the cart as a cash-on-delivery order. Once the order
// is stored the quoted lines leave the cart; anything added meanwhile stays.
func (s *Service) PlaceOrder(ctx context.Context, customer domain.Customer, t delivery.Type) (domain.Receipt, error) {
	quote, err := s.Quote(ctx, customer.Wilaya, t)
	if err != nil {
		return domain.Receipt{}, err
	}

	receipt, err := s.Orders.CreateOrder(ctx, domain.OrderDraft{Customer: customer, Quote: quote})
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("create order: %w", err)
	}

	if err := s.Cart.ConsumeCart(ctx, quote.Lines); err != nil {
		s.log.Error("order placed but ordered lines left in cart", zap.String("order_id", receipt.OrderID), zap.Error(err))
	}

	s.log.Info("order placed",
		zap.String("order_id", receipt.OrderID),
		zap.Int("wilaya", customer.Wilaya),
		zap.String("delivery", string(t)),
		zap.String("total", receipt.Total.String()),
	)
	return receipt, nil
}
