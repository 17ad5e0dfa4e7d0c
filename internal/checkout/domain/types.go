package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteLine struct {
	ProductID string
	Name      string
	Variants  map[string]string
	Quantity  int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Quote amounts are in DZD.
type Quote struct {
	Lines        []QuoteLine
	Wilaya       int
	DeliveryType string
	Subtotal     decimal.Decimal
	Delivery     decimal.Decimal
	Total        decimal.Decimal
}

type Customer struct {
	Name    string
	Phone   string
	Wilaya  int
	Commune string
	Address string
}

type OrderDraft struct {
	Customer Customer
	Quote    Quote
}

type Receipt struct {
	OrderID       string
	Status        string
	PaymentMethod string
	Total         decimal.Decimal
	CreatedAt     time.Time
}
