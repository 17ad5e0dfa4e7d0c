package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gaylashop/storefront/internal/order/app"
	"github.com/gaylashop/storefront/internal/order/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	id               TEXT PRIMARY KEY,
	customer_name    TEXT NOT NULL,
	customer_phone   TEXT NOT NULL,
	wilaya           INTEGER NOT NULL,
	commune          TEXT NOT NULL DEFAULT '',
	address          TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	payment_method   TEXT NOT NULL,
	delivery_type    TEXT NOT NULL,
	currency         TEXT NOT NULL,
	subtotal_amount  TEXT NOT NULL,
	shipping_amount  TEXT NOT NULL,
	total_amount     TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS order_items (
	id                TEXT PRIMARY KEY,
	order_id          TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	position          INTEGER NOT NULL,
	product_id        TEXT NOT NULL,
	name              TEXT NOT NULL,
	variants          TEXT NOT NULL DEFAULT '{}',
	unit_amount       TEXT NOT NULL,
	quantity          INTEGER NOT NULL,
	line_total_amount TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS order_items_order_id ON order_items(order_id, position);`

type OrderRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewOrderRepo creates the order tables if needed.
func NewOrderRepo(ctx context.Context, db *sql.DB) (*OrderRepo, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("migrate orders: %w", err)
	}
	return &OrderRepo{db: db, now: time.Now}, nil
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

func (r *OrderRepo) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	createdOrder := order
	createdOrder.ID = uuid.NewString()
	createdOrder.CreatedAt = r.now().UTC()
	createdOrder.UpdatedAt = createdOrder.CreatedAt
	stamp := createdOrder.CreatedAt.Format(time.RFC3339Nano)

	err := r.execTX(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO orders (id, customer_name, customer_phone, wilaya, commune, address, status, payment_method,
	delivery_type, currency, subtotal_amount, shipping_amount, total_amount, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			createdOrder.ID,
			order.Customer.Name,
			order.Customer.Phone,
			order.Customer.Wilaya,
			order.Customer.Commune,
			order.Customer.Address,
			order.Status,
			order.PaymentMethod,
			order.DeliveryType,
			domain.Currency,
			order.SubTotalAmount.String(),
			order.ShippingAmount.String(),
			order.TotalAmount.String(),
			stamp,
			stamp,
		)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		orderItems := make([]domain.OrderItem, 0, len(order.OrderItems))

		for i, item := range order.OrderItems {
			expected := item.UnitAmount.Mul(decimal.NewFromInt32(item.Quantity))
			if !item.LineTotalAmount.Equal(expected) {
				return fmt.Errorf("item %d: line total mismatch", i)
			}

			variants, err := json.Marshal(nonNil(item.Variants))
			if err != nil {
				return fmt.Errorf("item %d: encode variants: %w", i, err)
			}

			item.ID = uuid.NewString()
			item.OrderID = createdOrder.ID
			_, err = tx.ExecContext(ctx, `
INSERT INTO order_items (id, order_id, position, product_id, name, variants, unit_amount, quantity, line_total_amount)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				item.ID,
				item.OrderID,
				i,
				item.ProductID,
				item.Name,
				string(variants),
				item.UnitAmount.String(),
				item.Quantity,
				item.LineTotalAmount.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}

			orderItems = append(orderItems, item)
		}

		createdOrder.OrderItems = orderItems
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return createdOrder, nil
}

func (r *OrderRepo) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var (
		o                         domain.Order
		subtotal, shipping, total string
		createdAt, updatedAt      string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, customer_name, customer_phone, wilaya, commune, address, status, payment_method, delivery_type,
	subtotal_amount, shipping_amount, total_amount, created_at, updated_at
FROM orders WHERE id = ?`, id).Scan(
		&o.ID, &o.Customer.Name, &o.Customer.Phone, &o.Customer.Wilaya, &o.Customer.Commune, &o.Customer.Address,
		&o.Status, &o.PaymentMethod, &o.DeliveryType,
		&subtotal, &shipping, &total, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	if o.SubTotalAmount, err = decimal.NewFromString(subtotal); err != nil {
		return domain.Order{}, fmt.Errorf("order %s: subtotal: %w", id, err)
	}
	if o.ShippingAmount, err = decimal.NewFromString(shipping); err != nil {
		return domain.Order{}, fmt.Errorf("order %s: shipping: %w", id, err)
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return domain.Order{}, fmt.Errorf("order %s: total: %w", id, err)
	}
	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return domain.Order{}, fmt.Errorf("order %s: created_at: %w", id, err)
	}
	if o.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return domain.Order{}, fmt.Errorf("order %s: updated_at: %w", id, err)
	}

	o.OrderItems, err = r.listItems(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) listItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, order_id, product_id, name, variants, unit_amount, quantity, line_total_amount
FROM order_items WHERE order_id = ? ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list items of %s: %w", orderID, err)
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var (
			item                  domain.OrderItem
			variants, unit, total string
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &variants, &unit, &item.Quantity, &total); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(variants), &item.Variants); err != nil {
			return nil, fmt.Errorf("item %s: variants: %w", item.ID, err)
		}
		if item.UnitAmount, err = decimal.NewFromString(unit); err != nil {
			return nil, fmt.Errorf("item %s: unit amount: %w", item.ID, err)
		}
		if item.LineTotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("item %s: line total: %w", item.ID, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
