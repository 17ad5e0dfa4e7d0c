package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxLines is the number of distinct lines a cart can hold.
const MaxLines = 10

var (
	ErrInvalidItem  = errors.New("cart: invalid item")
	ErrTooManyLines = errors.New("cart: too many lines")
)

// Variants maps a variant group name (e.g. "Size") to the selected value.
type Variants map[string]string

func (v Variants) Equal(other Variants) bool {
	if len(v) != len(other) {
		return false
	}
	for k, val := range v {
		o, ok := other[k]
		if !ok || o != val {
			return false
		}
	}
	return true
}

// Clone never returns nil so an empty selection is persisted as {}.
func (v Variants) Clone() Variants {
	out := make(Variants, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// String renders the selection with sorted group names: "Color=red;Size=M".
func (v Variants) String() string {
	if len(v) == 0 {
		return ""
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v[k])
	}
	return b.String()
}

// LineKey identifies a line: same product and same variant selection.
type LineKey struct {
	ProductID string
	Variants  Variants
}

func (k LineKey) String() string {
	return k.ProductID + "|" + k.Variants.String()
}

func (k LineKey) Matches(item LineItem) bool {
	return item.ProductID == k.ProductID && item.Variants.Equal(k.Variants)
}

// LineItem is one product+variant combination. Slug, Name, Price and
// Thumbnail are copied from the catalog when the line is added and are not
// refreshed afterwards.
type LineItem struct {
	ProductID string   `json:"productId"`
	Slug      string   `json:"slug"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Variants  Variants `json:"variants"`
	Thumbnail *string  `json:"thumbnail"`
	Quantity  int      `json:"quantity"`
}

func (it LineItem) Key() LineKey {
	return LineKey{ProductID: it.ProductID, Variants: it.Variants}
}

func (it LineItem) Clone() LineItem {
	out := it
	out.Variants = it.Variants.Clone()
	if it.Thumbnail != nil {
		thumb := *it.Thumbnail
		out.Thumbnail = &thumb
	}
	return out
}

func (it LineItem) UnitPrice() decimal.Decimal {
	return decimal.NewFromFloat(it.Price)
}

func (it LineItem) LineTotal() decimal.Decimal {
	return it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (it LineItem) validate() error {
	if strings.TrimSpace(it.ProductID) == "" || it.Price < 0 || math.IsNaN(it.Price) || math.IsInf(it.Price, 0) {
		return ErrInvalidItem
	}
	if it.Quantity < 1 {
		return &InvalidQuantityError{Quantity: it.Quantity}
	}
	return nil
}

// Cart holds line items in insertion order.
type Cart struct {
	Items []LineItem
}

// FromItems validates stored items and merges lines that share a key,
// keeping the position of the first occurrence. More than maxLines
// distinct lines is an error.
func FromItems(items []LineItem, maxLines int) (Cart, error) {
	c := Cart{Items: make([]LineItem, 0, len(items))}
	for _, it := range items {
		if err := it.validate(); err != nil {
			return Cart{}, err
		}
		if idx := c.IndexOf(it.Key()); idx >= 0 {
			if err := c.Items[idx].merge(it.Quantity); err != nil {
				return Cart{}, err
			}
			continue
		}
		c.Items = append(c.Items, it.Clone())
	}
	if c.Count() > maxLines {
		return Cart{}, fmt.Errorf("%w: %d lines, maximum %d", ErrTooManyLines, c.Count(), maxLines)
	}
	return c, nil
}

// merge adds quantity to the line, refusing a sum that does not fit in an int.
func (it *LineItem) merge(quantity int) error {
	if it.Quantity > math.MaxInt-quantity {
		return &InvalidQuantityError{Quantity: quantity}
	}
	it.Quantity += quantity
	return nil
}

// Count is the number of distinct lines.
func (c Cart) Count() int { return len(c.Items) }

// Units is the sum of quantities.
func (c Cart) Units() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (c Cart) CanAdd(maxLines int) bool {
	return len(c.Items) < maxLines
}

func (c Cart) IndexOf(key LineKey) int {
	for i := range c.Items {
		if key.Matches(c.Items[i]) {
			return i
		}
	}
	return -1
}

func (c Cart) Clone() Cart {
	out := Cart{Items: make([]LineItem, len(c.Items))}
	for i, it := range c.Items {
		out.Items[i] = it.Clone()
	}
	return out
}

// Add merges item into an existing line or appends a new one. A new line
// is rejected with *CartFullError once maxLines lines exist; the cart is
// left untouched on any error.
func (c *Cart) Add(item LineItem, maxLines int) error {
	if err := item.validate(); err != nil {
		return err
	}
	if idx := c.IndexOf(item.Key()); idx >= 0 {
		return c.Items[idx].merge(item.Quantity)
	}
	if !c.CanAdd(maxLines) {
		return &CartFullError{Max: maxLines}
	}
	c.Items = append(c.Items, item.Clone())
	return nil
}

// SetQuantity reports whether the cart changed. quantity <= 0 removes the line.
func (c *Cart) SetQuantity(key LineKey, quantity int) bool {
	idx := c.IndexOf(key)
	if idx < 0 {
		return false
	}
	if quantity <= 0 {
		c.Items = removeIndex(c.Items, idx)
		return true
	}
	if c.Items[idx].Quantity == quantity {
		return false
	}
	c.Items[idx].Quantity = quantity
	return true
}

func (c *Cart) Remove(key LineKey) bool {
	idx := c.IndexOf(key)
	if idx < 0 {
		return false
	}
	c.Items = removeIndex(c.Items, idx)
	return true
}

// Consume takes ordered quantities out of the cart. Lines that reach zero
// are removed; lines added after the order was taken stay. It reports
// whether the cart changed.
func (c *Cart) Consume(ordered []LineItem) bool {
	changed := false
	for _, o := range ordered {
		idx := c.IndexOf(o.Key())
		if idx < 0 || o.Quantity <= 0 {
			continue
		}
		changed = true
		if c.Items[idx].Quantity <= o.Quantity {
			c.Items = removeIndex(c.Items, idx)
			continue
		}
		c.Items[idx].Quantity -= o.Quantity
	}
	return changed
}

func (c *Cart) Clear() {
	c.Items = []LineItem{}
}

func removeIndex(items []LineItem, idx int) []LineItem {
	out := make([]LineItem, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}
