package service

import (
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
)

// FilterCatalog returns the products matching every active criterion of f,
// in their original order. The input slice is not modified.
//
// Criteria apply in order: category, search text over name or description
// (case-insensitive), rating floor, price floor, price ceiling.
func FilterCatalog(products []domain.Product, f domain.CatalogFilter) []domain.Product {
	search := strings.ToLower(f.SearchText)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && f.Category != domain.CategoryAll && string(p.Category) != f.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if f.MinRating > 0 && p.Rating < f.MinRating {
			continue
		}
		if f.MinPrice.IsPositive() && p.Price.LessThan(f.MinPrice) {
			continue
		}
		if f.MaxPrice.IsPositive() && p.Price.GreaterThan(f.MaxPrice) {
			continue
		}
		out = append(out, p)
	}
	return out
}
