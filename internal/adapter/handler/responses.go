package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

type ProductHTTPResponse struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Price           string   `json:"price"`
	OriginalPrice   string   `json:"originalPrice,omitempty"`
	DiscountPercent int      `json:"discountPercent,omitempty"`
	Savings         string   `json:"savings,omitempty"`
	Rating          float64  `json:"rating"`
	Reviews         int      `json:"reviews"`
	Brand           string   `json:"brand"`
	Description     string   `json:"description"`
	Image           string   `json:"image"`
	Images          []string `json:"images,omitempty"`
	Sizes           []string `json:"sizes"`
	Colors          []string `json:"colors"`
	InStock         bool     `json:"inStock"`
}

type ProductListHTTPResponse struct {
	Products []ProductHTTPResponse `json:"products"`
	Count    int                   `json:"count"`
}

type ProductDetailHTTPResponse struct {
	Product ProductHTTPResponse   `json:"product"`
	Related []ProductHTTPResponse `json:"related"`
}

type ShelfHTTPResponse struct {
	Category string                `json:"category"`
	Products []ProductHTTPResponse `json:"products"`
}

type FeaturedHTTPResponse struct {
	Shelves []ShelfHTTPResponse `json:"shelves"`
}

type LineHTTPResponse struct {
	ProductID     int64  `json:"productId"`
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selectedSize,omitempty"`
	SelectedColor string `json:"selectedColor,omitempty"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	LineTotal     string `json:"lineTotal"`
	Image         string `json:"image"`
	Category      string `json:"category"`
	Brand         string `json:"brand"`
}

type CartHTTPResponse struct {
	Lines                 []LineHTTPResponse `json:"lines"`
	ItemCount             int                `json:"itemCount"`
	Subtotal              string             `json:"subtotal"`
	Tax                   string             `json:"tax"`
	Shipping              string             `json:"shipping"`
	Total                 string             `json:"total"`
	FreeShippingRemaining string             `json:"freeShippingRemaining"`
}

type OrderHTTPResponse struct {
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	ItemCount int       `json:"itemCount"`
	Subtotal  string    `json:"subtotal"`
	Tax       string    `json:"tax"`
	Shipping  string    `json:"shipping"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toProductResponse(p domain.Product) ProductHTTPResponse {
	resp := ProductHTTPResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    string(p.Category),
		Price:       money(p.Price),
		Rating:      p.Rating,
		Reviews:     p.Reviews,
		Brand:       p.Brand,
		Description: p.Description,
		Image:       p.Image,
		Images:      p.Images,
		Sizes:       nonNil(p.Sizes),
		Colors:      nonNil(p.Colors),
		InStock:     p.InStock,
	}
	if p.OriginalPrice != nil {
		resp.OriginalPrice = money(*p.OriginalPrice)
		resp.DiscountPercent = p.DiscountPercent()
		if s := p.Savings(); !s.IsZero() {
			resp.Savings = money(s)
		}
	}
	return resp
}

func toProductResponses(products []domain.Product) []ProductHTTPResponse {
	out := make([]ProductHTTPResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func (h *HTTPHandler) cartResponse(snap domain.Snapshot) CartHTTPResponse {
	totals := service.ComputeTotals(snap, h.policy)

	lines := make([]LineHTTPResponse, 0, len(snap))
	for _, l := range snap {
		lines = append(lines, LineHTTPResponse{
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			SelectedSize:  l.SelectedSize,
			SelectedColor: l.SelectedColor,
			Name:          l.Name,
			Price:         money(l.Price),
			LineTotal:     money(l.LineTotal()),
			Image:         l.Image,
			Category:      string(l.Category),
			Brand:         l.Brand,
		})
	}

	return CartHTTPResponse{
		Lines:                 lines,
		ItemCount:             snap.ItemCount(),
		Subtotal:              money(totals.Subtotal),
		Tax:                   money(totals.Tax),
		Shipping:              money(totals.Shipping),
		Total:                 money(totals.Total),
		FreeShippingRemaining: money(service.FreeShippingRemaining(totals.Subtotal, h.policy)),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
