// Package delivery prices shipping by wilaya and delivery type.
package delivery

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Type is the delivery option chosen at checkout.
type Type string

const (
	// Stopdesk is pickup at the carrier's office in the wilaya.
	Stopdesk Type = "stopdesk"
	// Domicile is delivery to the customer's address.
	Domicile Type = "domicile"
)

const (
	minWilaya = 1
	maxWilaya = 58
)

var (
	ErrUnknownType   = errors.New("delivery: unknown delivery type")
	ErrUnknownWilaya = errors.New("delivery: unknown wilaya")
	ErrUnavailable   = errors.New("delivery: option not available for this wilaya")
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case Stopdesk, Domicile:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Rate holds the price of each option in DZD. A zero price means the
// option is not offered.
type Rate struct {
	Stopdesk decimal.Decimal
	Domicile decimal.Decimal
}

type Rates struct {
	byWilaya map[int]Rate
}

func NewRates(table map[int]Rate) (*Rates, error) {
	r := &Rates{byWilaya: make(map[int]Rate, len(table))}
	for code, rate := range table {
		if code < minWilaya || code > maxWilaya {
			return nil, fmt.Errorf("%w: %d", ErrUnknownWilaya, code)
		}
		if rate.Stopdesk.IsNegative() || rate.Domicile.IsNegative() {
			return nil, fmt.Errorf("delivery: negative rate for wilaya %d", code)
		}
		r.byWilaya[code] = rate
	}
	return r, nil
}

func (r *Rates) Lookup(wilaya int, t Type) (decimal.Decimal, error) {
	rate, ok := r.byWilaya[wilaya]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrUnknownWilaya, wilaya)
	}

	var price decimal.Decimal
	switch t {
	case Stopdesk:
		price = rate.Stopdesk
	case Domicile:
		price = rate.Domicile
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if price.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s in wilaya %d", ErrUnavailable, t, wilaya)
	}
	return price, nil
}

// Wilayas lists the covered wilaya codes in ascending order.
func (r *Rates) Wilayas() []int {
	out := make([]int, 0, len(r.byWilaya))
	for code := range r.byWilaya {
		out = append(out, code)
	}
	sort.Ints(out)
	return out
}
