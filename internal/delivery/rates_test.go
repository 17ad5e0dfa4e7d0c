package delivery

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	rates, err := NewRates(map[int]Rate{
		16: {Stopdesk: decimal.NewFromInt(400), Domicile: decimal.NewFromInt(600)},
		11: {Domicile: decimal.NewFromInt(1400)},
	})
	require.NoError(t, err)

	t.Run("known wilaya", func(t *testing.T) {
		price, err := rates.Lookup(16, Domicile)
		require.NoError(t, err)
		assert.True(t, price.Equal(decimal.NewFromInt(600)))
	})

	t.Run("no stopdesk in wilaya", func(t *testing.T) {
		_, err := rates.Lookup(11, Stopdesk)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("unknown wilaya", func(t *testing.T) {
		_, err := rates.Lookup(31, Stopdesk)
		assert.ErrorIs(t, err, ErrUnknownWilaya)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := rates.Lookup(16, Type("drone"))
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	assert.Equal(t, []int{11, 16}, rates.Wilayas())
}

func TestNewRatesRejectsBadTable(t *testing.T) {
	_, err := NewRates(map[int]Rate{59: {Stopdesk: decimal.NewFromInt(1)}})
	assert.ErrorIs(t, err, ErrUnknownWilaya)

	_, err = NewRates(map[int]Rate{16: {Stopdesk: decimal.NewFromInt(-1)}})
	assert.Error(t, err)
}

func TestParseType(t *testing.T) {
	got, err := ParseType(" StopDesk ")
	require.NoError(t, err)
	assert.Equal(t, Stopdesk, got)

	_, err = ParseType("express")
	assert.ErrorIs(t, err, ErrUnknownType)
}
