package service

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// ComputeTotals prices a snapshot under policy. Amounts are exact; callers
// round for display.
func ComputeTotals(snapshot domain.Snapshot, policy domain.PricingPolicy) domain.Totals {
	subtotal := snapshot.Subtotal()
	tax := subtotal.Mul(policy.TaxRate)

	shipping := policy.FlatShippingFee
	if subtotal.GreaterThanOrEqual(policy.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return domain.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// FreeShippingRemaining is how much more the shopper must add before shipping
// becomes free. Zero once the threshold is reached.
func FreeShippingRemaining(subtotal decimal.Decimal, policy domain.PricingPolicy) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(policy.FreeShippingThreshold) {
		return decimal.Zero
	}
	return policy.FreeShippingThreshold.Sub(subtotal)
}
