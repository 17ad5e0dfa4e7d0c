package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending = "PENDING"
	PaymentCOD    = "COD"
	Currency      = "DZD"
)

type Customer struct {
	Name    string
	Phone   string
	Wilaya  int
	Commune string
	Address string
}

type Order struct {
	ID             string
	Customer       Customer
	Status         string
	PaymentMethod  string
	DeliveryType   string
	SubTotalAmount decimal.Decimal
	ShippingAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	OrderItems     []OrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OrderItem struct {
	ID              string
	OrderID         string
	ProductID       string
	Name            string
	Variants        map[string]string
	UnitAmount      decimal.Decimal
	Quantity        int32
	LineTotalAmount decimal.Decimal
}

type CreateOrderRequest struct {
	Customer       Customer
	DeliveryType   string
	ShippingAmount decimal.Decimal
	Items          []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID  string
	Name       string
	Variants   map[string]string
	UnitAmount decimal.Decimal
	Quantity   int32
}

type OrderResponse struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}
