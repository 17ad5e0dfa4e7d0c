package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidVariant = errors.New("invalid variant selection")

// Product prices are in DZD.
type Product struct {
	ID            string
	Slug          string
	Name          string
	Description   string
	Price         decimal.Decimal
	Thumbnail     *string
	VariantGroups map[string][]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateSelection checks that sel picks exactly one allowed value for
// every variant group of the product.
func (p Product) ValidateSelection(sel map[string]string) error {
	for group := range sel {
		if _, ok := p.VariantGroups[group]; !ok {
			return fmt.Errorf("%w: %s has no %q option", ErrInvalidVariant, p.Name, group)
		}
	}

	groups := make([]string, 0, len(p.VariantGroups))
	for g := range p.VariantGroups {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, group := range groups {
		v, ok := sel[group]
		if !ok {
			return fmt.Errorf("%w: %s requires a %q", ErrInvalidVariant, p.Name, group)
		}
		if !contains(p.VariantGroups[group], v) {
			return fmt.Errorf("%w: %q is not a valid %s for %s", ErrInvalidVariant, v, group, p.Name)
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
