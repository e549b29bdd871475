package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

func ids(products []domain.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterCatalog(t *testing.T) {
	products := sampleCatalog(t).Products()

	tests := []struct {
		name   string
		filter domain.CatalogFilter
		want   []int64
	}{
		{"no criteria", domain.CatalogFilter{}, []int64{1, 2, 3, 4, 5, 6, 7, 8}},
		{"All category", domain.CatalogFilter{Category: "All"}, []int64{1, 2, 3, 4, 5, 6, 7, 8}},
		{"category", domain.CatalogFilter{Category: "Kids"}, []int64{5}},
		{"search name or description", domain.CatalogFilter{SearchText: "shirt"}, []int64{1, 3, 4}},
		{"category and search", domain.CatalogFilter{Category: "Men", SearchText: "shirt"}, []int64{1, 4}},
		{"search is case-insensitive", domain.CatalogFilter{SearchText: "KNIT"}, []int64{6, 7}},
		{"rating floor", domain.CatalogFilter{MinRating: 4.5}, []int64{1, 3, 8}},
		{"price floor", domain.CatalogFilter{MinPrice: decimal.NewFromInt(1799)}, []int64{2, 3, 4}},
		{"price ceiling", domain.CatalogFilter{MaxPrice: decimal.NewFromInt(899)}, []int64{5, 6, 8}},
		{"non-positive bounds ignored", domain.CatalogFilter{MinPrice: decimal.NewFromInt(-5), MaxPrice: decimal.Zero}, []int64{1, 2, 3, 4, 5, 6, 7, 8}},
		{"everything", domain.CatalogFilter{Category: "Men", SearchText: "knit", MinRating: 4.25, MinPrice: decimal.NewFromInt(500), MaxPrice: decimal.NewFromInt(1000)}, []int64{7}},
		{"nothing matches", domain.CatalogFilter{SearchText: "umbrella"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterCatalog(products, tt.filter))
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}

func TestFilterCatalog_MenShirts(t *testing.T) {
	for _, p := range FilterCatalog(sampleCatalog(t).Products(), domain.CatalogFilter{Category: "Men", SearchText: "shirt"}) {
		if p.Category != domain.CategoryMen {
			t.Errorf("product %d has category %s", p.ID, p.Category)
		}
		text := strings.ToLower(p.Name + " " + p.Description)
		if !strings.Contains(text, "shirt") {
			t.Errorf("product %d does not mention shirt", p.ID)
		}
	}
}

func TestFilterCatalog_DoesNotMutateInput(t *testing.T) {
	products := sampleCatalog(t).Products()
	before := ids(products)

	FilterCatalog(products, domain.CatalogFilter{Category: "Women"})

	after := ids(products)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("input reordered: %v -> %v", before, after)
		}
	}
}
