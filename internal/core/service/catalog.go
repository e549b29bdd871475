package service

import (
	"errors"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/validate"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

const (
	DefaultRelatedLimit  = 4
	DefaultFeaturedLimit = 4
)

// Catalog is the read-only product list for the lifetime of the process.
type Catalog struct {
	products []domain.Product
	index    map[int64]int
}

// Shelf groups the featured products of one category.
type Shelf struct {
	Category domain.Category
	Products []domain.Product
}

// NewCatalog validates every product and fails with all problems joined if
// any entry is invalid or repeats an id.
func NewCatalog(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		index:    make(map[int64]int, len(products)),
	}

	var errs []error
	for i, p := range products {
		if err := validateProduct(p); err != nil {
			errs = append(errs, fmt.Errorf("entry %d (id %d): %w", i, p.ID, err))
			continue
		}
		if _, dup := c.index[p.ID]; dup {
			errs = append(errs, fmt.Errorf("entry %d (id %d): %w: duplicate id", i, p.ID, ErrInvalidProduct))
			continue
		}
		c.index[p.ID] = len(c.products)
		c.products = append(c.products, p.Clone())
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func validateProduct(p domain.Product) error {
	if err := validate.Check(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price is negative", ErrInvalidProduct)
	}
	if p.OriginalPrice != nil && p.OriginalPrice.LessThan(p.Price) {
		return fmt.Errorf("%w: originalPrice %s below price %s", ErrInvalidProduct, p.OriginalPrice, p.Price)
	}
	return nil
}

// Product resolves id to its record.
func (c *Catalog) Product(id int64) (domain.Product, error) {
	i, ok := c.index[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return c.products[i].Clone(), nil
}

func (c *Catalog) Products() []domain.Product {
	return cloneProducts(c.products)
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Filter runs FilterCatalog over the whole catalog.
func (c *Catalog) Filter(f domain.CatalogFilter) []domain.Product {
	return cloneProducts(FilterCatalog(c.products, f))
}

// Related returns up to limit other products from p's category, in catalog order.
func (c *Catalog) Related(p domain.Product, limit int) []domain.Product {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	related := make([]domain.Product, 0, limit)
	for _, other := range c.products {
		if len(related) == limit {
			break
		}
		if other.Category == p.Category && other.ID != p.ID {
			related = append(related, other.Clone())
		}
	}
	return related
}

// Featured returns the first limit products of every category that has any.
func (c *Catalog) Featured(limit int) []Shelf {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	var shelves []Shelf
	for _, cat := range domain.Categories {
		var picks []domain.Product
		for _, p := range c.products {
			if p.Category != cat {
				continue
			}
			picks = append(picks, p.Clone())
			if len(picks) == limit {
				break
			}
		}
		if len(picks) > 0 {
			shelves = append(shelves, Shelf{Category: cat, Products: picks})
		}
	}
	return shelves
}

// cloneProducts copies products deeply so callers never share slices or
// pointers with the catalog.
func cloneProducts(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}
