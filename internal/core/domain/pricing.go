package domain

import "github.com/shopspring/decimal"

// PricingPolicy holds the constants every totals view shares.
type PricingPolicy struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// CatalogFilter narrows a product listing. Zero values disable a criterion;
// Category also accepts CategoryAll.
type CatalogFilter struct {
	Category   string
	SearchText string
	MinRating  float64
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
}
