package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSelection(t *testing.T) {
	p := Product{Name: "Abaya", VariantGroups: map[string][]string{
		"size":  {"S", "M", "L"},
		"color": {"black", "beige"},
	}}

	assert.NoError(t, p.ValidateSelection(map[string]string{"size": "M", "color": "black"}))
	assert.ErrorIs(t, p.ValidateSelection(map[string]string{"size": "M"}), ErrInvalidVariant)
	assert.ErrorIs(t, p.ValidateSelection(map[string]string{"size": "XL", "color": "black"}), ErrInvalidVariant)
	assert.ErrorIs(t, p.ValidateSelection(map[string]string{"size": "M", "color": "black", "fit": "loose"}), ErrInvalidVariant)

	plain := Product{Name: "Gift card"}
	assert.NoError(t, plain.ValidateSelection(nil))
}
