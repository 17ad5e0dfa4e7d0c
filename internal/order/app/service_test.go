package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gaylashop/storefront/internal/order/domain"
)

type fakeRepo struct {
	created []domain.Order
	err     error
}

func (f *fakeRepo) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	if f.err != nil {
		return domain.Order{}, f.err
	}
	order.ID = "order-1"
	order.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f.created = append(f.created, order)
	return order, nil
}

func (f *fakeRepo) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	for _, o := range f.created {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, ErrNotFound
}

func validRequest() domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		Customer: domain.Customer{
			Name:    "Amina",
			Phone:   "0551 23 45 67",
			Wilaya:  16,
			Commune: "Bab Ezzouar",
			Address: "Cité 5 Juillet, bât 12",
		},
		DeliveryType:   "domicile",
		ShippingAmount: decimal.NewFromInt(600),
		Items: []domain.OrderItemRequest{
			{ProductID: "p1", Name: "Abaya", UnitAmount: decimal.RequireFromString("4500.50"), Quantity: 2},
			{ProductID: "p2", Name: "Hijab", Variants: map[string]string{"color": "black"}, UnitAmount: decimal.NewFromInt(900), Quantity: 1},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	resp, err := svc.CreateOrder(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != domain.StatusPending || resp.PaymentMethod != domain.PaymentCOD {
		t.Fatalf("unexpected status/payment: %+v", resp)
	}
	if want := decimal.RequireFromString("10501"); !resp.TotalAmount.Equal(want) {
		t.Fatalf("total = %s, want %s", resp.TotalAmount, want)
	}

	got := repo.created[0]
	if got.Customer.Phone != "0551234567" {
		t.Fatalf("phone not normalized: %q", got.Customer.Phone)
	}
	if !got.SubTotalAmount.Equal(decimal.RequireFromString("9901")) {
		t.Fatalf("subtotal = %s", got.SubTotalAmount)
	}
	if !got.OrderItems[0].LineTotalAmount.Equal(decimal.RequireFromString("9001")) {
		t.Fatalf("line total = %s", got.OrderItems[0].LineTotalAmount)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	cases := map[string]func(r *domain.CreateOrderRequest){
		"empty name":               func(r *domain.CreateOrderRequest) { r.Customer.Name = " " },
		"bad phone":                func(r *domain.CreateOrderRequest) { r.Customer.Phone = "0212345678" },
		"bad wilaya":               func(r *domain.CreateOrderRequest) { r.Customer.Wilaya = 0 },
		"unknown delivery":         func(r *domain.CreateOrderRequest) { r.DeliveryType = "drone" },
		"domicile without address": func(r *domain.CreateOrderRequest) { r.Customer.Address = "" },
		"no items":                 func(r *domain.CreateOrderRequest) { r.Items = nil },
		"negative shipping":        func(r *domain.CreateOrderRequest) { r.ShippingAmount = decimal.NewFromInt(-1) },
		"zero quantity":            func(r *domain.CreateOrderRequest) { r.Items[0].Quantity = 0 },
		"negative unit amount":     func(r *domain.CreateOrderRequest) { r.Items[1].UnitAmount = decimal.NewFromInt(-5) },
		"missing product id":       func(r *domain.CreateOrderRequest) { r.Items[0].ProductID = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			mutate(&req)
			_, err := svc.CreateOrder(context.Background(), req)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	t.Run("stopdesk needs no address", func(t *testing.T) {
		req := validRequest()
		req.DeliveryType = "stopdesk"
		req.Customer.Address = ""
		if _, err := svc.CreateOrder(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestCreateOrderRepoError(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewService(&fakeRepo{err: boom})

	_, err := svc.CreateOrder(context.Background(), validRequest())
	if !errors.Is(err, boom) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
