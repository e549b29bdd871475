package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryMen         Category = "Men"
	CategoryWomen       Category = "Women"
	CategoryKids        Category = "Kids"
	CategoryAccessories Category = "Accessories"
)

// CategoryAll is the filter value that matches every category.
const CategoryAll = "All"

// Categories lists the catalog categories in display order.
var Categories = []Category{CategoryMen, CategoryWomen, CategoryKids, CategoryAccessories}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Product is a catalog record. It is never mutated once the catalog is built.
type Product struct {
	ID            int64            `json:"id" validate:"gt=0"`
	Name          string           `json:"name" validate:"required"`
	Category      Category         `json:"category" validate:"required,oneof=Men Women Kids Accessories"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Rating        float64          `json:"rating" validate:"gte=0,lte=5"`
	Reviews       int              `json:"reviews" validate:"gte=0"`
	Brand         string           `json:"brand"`
	Description   string           `json:"description"`
	Image         string           `json:"image" validate:"required"`
	Images        []string         `json:"images,omitempty" validate:"dive,required"`
	Sizes         []string         `json:"sizes" validate:"dive,required"`
	Colors        []string         `json:"colors" validate:"dive,required"`
	InStock       bool             `json:"inStock"`
}

func (p Product) HasSizes() bool  { return len(p.Sizes) > 0 }
func (p Product) HasColors() bool { return len(p.Colors) > 0 }

func (p Product) OffersSize(size string) bool {
	return slices.Contains(p.Sizes, size)
}

func (p Product) OffersColor(color string) bool {
	return slices.Contains(p.Colors, color)
}

// Savings returns originalPrice - price, or zero when the product is not discounted.
func (p Product) Savings() decimal.Decimal {
	if p.OriginalPrice == nil || !p.OriginalPrice.GreaterThan(p.Price) {
		return decimal.Zero
	}
	return p.OriginalPrice.Sub(p.Price)
}

// DiscountPercent is the markdown from originalPrice rounded to a whole percent.
func (p Product) DiscountPercent() int {
	savings := p.Savings()
	if savings.IsZero() {
		return 0
	}
	return int(savings.Div(*p.OriginalPrice).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	c := p
	c.Images = slices.Clone(p.Images)
	c.Sizes = slices.Clone(p.Sizes)
	c.Colors = slices.Clone(p.Colors)
	if p.OriginalPrice != nil {
		op := *p.OriginalPrice
		c.OriginalPrice = &op
	}
	return c
}
