package entity

import "math"

// PricingConfig holds the storefront-wide pricing rules applied to carts and
// orders. TaxRate is a percentage (18 means 18%).
type PricingConfig struct {
	TaxRate               float64
	FreeShippingThreshold float64
	FlatShippingFee       float64
}

func DefaultPricing() PricingConfig {
	return PricingConfig{
		TaxRate:               18,
		FreeShippingThreshold: 500,
		FlatShippingFee:       50,
	}
}

// Tax returns the tax amount for a subtotal, rounded to two decimals.
func (p PricingConfig) Tax(subtotal float64) float64 {
	return Round2(subtotal * p.TaxRate / 100)
}

// Shipping waives the flat fee once the subtotal reaches the free shipping
// threshold.
func (p PricingConfig) Shipping(subtotal float64) float64 {
	if subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.FlatShippingFee
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
