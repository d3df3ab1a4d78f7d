package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRecomputeTotals(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: 1, Price: 60, Quantity: 2},
			{ProductID: 2, Price: 90, Quantity: 1},
		},
	}
	cart.RecomputeTotals(DefaultPricing())

	assert.Equal(t, 210.0, cart.Subtotal)
	assert.Equal(t, 37.8, cart.Tax)
	assert.Equal(t, 50.0, cart.Shipping)
	assert.Equal(t, 297.8, cart.Total)

	// Recomputing without a mutation changes nothing
	before := *cart
	cart.RecomputeTotals(DefaultPricing())
	assert.Equal(t, before.Total, cart.Total)
}

func TestCartRecomputeTotalsEmptied(t *testing.T) {
	cart := &Cart{Items: []CartItem{{ProductID: 1, Price: 60, Quantity: 2}}}
	cart.RecomputeTotals(DefaultPricing())
	require.True(t, cart.RemoveItem(1))
	cart.RecomputeTotals(DefaultPricing())

	// No items, no charges: shipping must not apply to an empty cart
	assert.Equal(t, 0.0, cart.Subtotal)
	assert.Equal(t, 0.0, cart.Tax)
	assert.Equal(t, 0.0, cart.Shipping)
	assert.Equal(t, 0.0, cart.Total)
}

func TestCartItemLookup(t *testing.T) {
	cart := &Cart{Items: []CartItem{{ProductID: 1, Quantity: 2}}}

	require.NotNil(t, cart.Item(1))
	assert.Nil(t, cart.Item(2))
}

func TestCartRemoveItem(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}}

	assert.True(t, cart.RemoveItem(1))
	assert.False(t, cart.RemoveItem(1))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].ProductID)
}
