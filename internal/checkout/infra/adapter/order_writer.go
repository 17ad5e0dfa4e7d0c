package adapter

import (
	"context"

	checkoutdomain "github.com/gaylashop/storefront/internal/checkout/domain"
	orderapp "github.com/gaylashop/storefront/internal/order/app"
	orderdomain "github.com/gaylashop/storefront/internal/order/domain"
)

type OrderServiceWriter struct {
	svc *orderapp.Service
}

func NewOrderServiceWriter(svc *orderapp.Service) *OrderServiceWriter {
	return &OrderServiceWriter{svc: svc}
}

func (w *OrderServiceWriter) CreateOrder(ctx context.Context, draft checkoutdomain.OrderDraft) (checkoutdomain.Receipt, error) {
	items := make([]orderdomain.OrderItemRequest, 0, len(draft.Quote.Lines))
	for _, line := range draft.Quote.Lines {
		items = append(items, orderdomain.OrderItemRequest{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Variants:   line.Variants,
			UnitAmount: line.UnitPrice,
			Quantity:   int32(line.Quantity),
		})
	}

	resp, err := w.svc.CreateOrder(ctx, orderdomain.CreateOrderRequest{
		Customer: orderdomain.Customer{
			Name:    draft.Customer.Name,
			Phone:   draft.Customer.Phone,
			Wilaya:  draft.Customer.Wilaya,
			Commune: draft.Customer.Commune,
			Address: draft.Customer.Address,
		},
		DeliveryType:   draft.Quote.DeliveryType,
		ShippingAmount: draft.Quote.Delivery,
		Items:          items,
	})
	if err != nil {
		return checkoutdomain.Receipt{}, err
	}

	return checkoutdomain.Receipt{
		OrderID:       resp.ID,
		Status:        resp.Status,
		PaymentMethod: resp.PaymentMethod,
		Total:         resp.TotalAmount,
		CreatedAt:     resp.CreatedAt,
	}, nil
}
