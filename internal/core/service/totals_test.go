package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rl1809/storefront/internal/core/domain"
)

func rupeePolicy() domain.PricingPolicy {
	return domain.PricingPolicy{
		TaxRate:               decimal.RequireFromString("0.10"),
		FreeShippingThreshold: decimal.NewFromInt(4150),
		FlatShippingFee:       decimal.NewFromInt(497),
	}
}

func snapshotWithSubtotal(amount string) domain.Snapshot {
	return domain.Snapshot{domain.NewLineItem(plainProduct(1, amount), 1, "", "")}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		snapshot domain.Snapshot
		tax      string
		shipping string
		total    string
	}{
		{"below threshold", snapshotWithSubtotal("3000"), "300.00", "497.00", "3797.00"},
		{"above threshold", snapshotWithSubtotal("5000"), "500.00", "0.00", "5500.00"},
		{"exactly at threshold", snapshotWithSubtotal("4150"), "415.00", "0.00", "4565.00"},
		{"empty cart", domain.Snapshot{}, "0.00", "497.00", "497.00"},
		{"quantities multiply", domain.Snapshot{domain.NewLineItem(plainProduct(1, "1000"), 3, "", "")}, "300.00", "497.00", "3797.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.snapshot, rupeePolicy())
			assert.Equal(t, tt.tax, got.Tax.StringFixed(2))
			assert.Equal(t, tt.shipping, got.Shipping.StringFixed(2))
			assert.Equal(t, tt.total, got.Total.StringFixed(2))
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax).Add(got.Shipping)))
		})
	}
}

func TestFreeShippingRemaining(t *testing.T) {
	policy := rupeePolicy()
	assert.Equal(t, "1150.00", FreeShippingRemaining(decimal.NewFromInt(3000), policy).StringFixed(2))
	assert.True(t, FreeShippingRemaining(decimal.NewFromInt(4150), policy).IsZero())
	assert.True(t, FreeShippingRemaining(decimal.NewFromInt(9000), policy).IsZero())
}

func TestLedgerTotals(t *testing.T) {
	l := newTestLedger(t, &mockCartRepo{})
	_, err := l.AddLine(plainProduct(1, "1500"), 2, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := l.Totals(rupeePolicy())
	if got.Total.StringFixed(2) != "3797.00" {
		t.Errorf("expected total 3797.00, got %s", got.Total.StringFixed(2))
	}
}
