package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaylashop/storefront/internal/delivery"
	"github.com/gaylashop/storefront/internal/order/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("order not found")
)

// Algerian mobile numbers: 05, 06 or 07 followed by eight digits.
var phonePattern = regexp.MustCompile(`^0[567]\d{8}$`)

type Service struct {
	repo OrderRepo
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.OrderResponse, error) {
	deliveryType, err := delivery.ParseType(req.DeliveryType)
	if err != nil {
		return domain.OrderResponse{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	customer, err := validateCustomer(req.Customer, deliveryType)
	if err != nil {
		return domain.OrderResponse{}, err
	}
	if len(req.Items) == 0 {
		return domain.OrderResponse{}, fmt.Errorf("%w: order has no items", ErrInvalidInput)
	}
	if req.ShippingAmount.IsNegative() {
		return domain.OrderResponse{}, fmt.Errorf("%w: shipping amount cannot be negative, got %s", ErrInvalidInput, req.ShippingAmount)
	}

	orderItems := make([]domain.OrderItem, 0, len(req.Items))
	subTotalAmount := decimal.Zero

	for i, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: product id is required", ErrInvalidInput, i)
		}
		if item.Quantity <= 0 {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: quantity must be positive, got %d", ErrInvalidInput, i, item.Quantity)
		}
		if item.UnitAmount.IsNegative() {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: unit amount cannot be negative, got %s", ErrInvalidInput, i, item.UnitAmount)
		}

		lineTotal := item.UnitAmount.Mul(decimal.NewFromInt32(item.Quantity))
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Variants:        item.Variants,
			UnitAmount:      item.UnitAmount,
			Quantity:        item.Quantity,
			LineTotalAmount: lineTotal,
		})

		subTotalAmount = subTotalAmount.Add(lineTotal)
	}

	order := domain.Order{
		Customer:       customer,
		Status:         domain.StatusPending,
		PaymentMethod:  domain.PaymentCOD,
		DeliveryType:   string(deliveryType),
		ShippingAmount: req.ShippingAmount,
		SubTotalAmount: subTotalAmount,
		TotalAmount:    subTotalAmount.Add(req.ShippingAmount),
		OrderItems:     orderItems,
	}

	createdOrder, err := s.repo.CreateOrderTx(ctx, order)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	return domain.OrderResponse{
		ID:            createdOrder.ID,
		Status:        createdOrder.Status,
		PaymentMethod: createdOrder.PaymentMethod,
		TotalAmount:   createdOrder.TotalAmount,
		CreatedAt:     createdOrder.CreatedAt,
	}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Order{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.repo.GetOrder(ctx, id)
}

func validateCustomer(c domain.Customer, t delivery.Type) (domain.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.ReplaceAll(strings.TrimSpace(c.Phone), " ", "")
	c.Commune = strings.TrimSpace(c.Commune)
	c.Address = strings.TrimSpace(c.Address)

	if c.Name == "" {
		return c, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if !phonePattern.MatchString(c.Phone) {
		return c, fmt.Errorf("%w: invalid phone number %q", ErrInvalidInput, c.Phone)
	}
	if c.Wilaya < 1 || c.Wilaya > 58 {
		return c, fmt.Errorf("%w: invalid wilaya %d", ErrInvalidInput, c.Wilaya)
	}
	if t == delivery.Domicile && c.Address == "" {
		return c, fmt.Errorf("%w: address is required for home delivery", ErrInvalidInput)
	}
	return c, nil
}
