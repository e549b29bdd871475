package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// LineKey identifies a cart line. An empty Size or Color means no selection,
// and two absent selections are equal.
type LineKey struct {
	ProductID int64
	Size      string
	Color     string
}

// LineItem is one row in the cart. Name, Price, Image, Category and Brand are
// captured from the product when the line is first added.
type LineItem struct {
	ProductID     int64           `json:"productId" validate:"gt=0"`
	Quantity      int             `json:"quantity" validate:"gte=1"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor string          `json:"selectedColor,omitempty"`
	Name          string          `json:"name" validate:"required"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image"`
	Category      Category        `json:"category" validate:"required,oneof=Men Women Kids Accessories"`
	Brand         string          `json:"brand"`
}

func NewLineItem(p Product, quantity int, size, color string) LineItem {
	return LineItem{
		ProductID:     p.ID,
		Quantity:      quantity,
		SelectedSize:  size,
		SelectedColor: color,
		Name:          p.Name,
		Price:         p.Price,
		Image:         p.Image,
		Category:      p.Category,
		Brand:         p.Brand,
	}
}

func (l LineItem) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.SelectedSize, Color: l.SelectedColor}
}

func (l LineItem) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is the ordered list of cart lines at one instant.
type Snapshot []LineItem

func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return slices.Clone(s)
}

// IndexOf returns the position of the line with key k, or -1.
func (s Snapshot) IndexOf(k LineKey) int {
	return slices.IndexFunc(s, func(l LineItem) bool { return l.Key() == k })
}

func (s Snapshot) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (s Snapshot) ItemCount() int {
	n := 0
	for _, l := range s {
		n += l.Quantity
	}
	return n
}
