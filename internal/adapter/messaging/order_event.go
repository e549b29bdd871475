package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/domain"
)

// OrderPlacedEvent is the JSON document published for every placed order.
type OrderPlacedEvent struct {
	EventID    string      `json:"eventId"`
	OccurredAt time.Time   `json:"occurredAt"`
	OrderID    string      `json:"orderId"`
	Status     string      `json:"status"`
	Customer   eventPerson `json:"customer"`
	Lines      []eventLine `json:"lines"`
	Subtotal   string      `json:"subtotal"`
	Tax        string      `json:"tax"`
	Shipping   string      `json:"shipping"`
	Total      string      `json:"total"`
}

type eventPerson struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	City         string `json:"city"`
	ZipCode      string `json:"zipCode"`
	CardLastFour string `json:"cardLastFour"`
}

type eventLine struct {
	ProductID     int64  `json:"productId"`
	SelectedSize  string `json:"selectedSize,omitempty"`
	SelectedColor string `json:"selectedColor,omitempty"`
	Name          string `json:"name"`
	UnitPrice     string `json:"unitPrice"`
	Quantity      int    `json:"quantity"`
}

func NewOrderPlacedEvent(order domain.Order) OrderPlacedEvent {
	lines := make([]eventLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, eventLine{
			ProductID:     l.ProductID,
			SelectedSize:  l.SelectedSize,
			SelectedColor: l.SelectedColor,
			Name:          l.Name,
			UnitPrice:     l.Price.StringFixed(2),
			Quantity:      l.Quantity,
		})
	}

	c := order.Customer
	return OrderPlacedEvent{
		EventID:    uuid.NewString(),
		OccurredAt: order.CreatedAt,
		OrderID:    order.ID,
		Status:     string(order.Status),
		Customer: eventPerson{
			Name:         c.FirstName + " " + c.LastName,
			Email:        c.Email,
			City:         c.City,
			ZipCode:      c.ZipCode,
			CardLastFour: c.CardLastFour,
		},
		Lines:    lines,
		Subtotal: order.Totals.Subtotal.StringFixed(2),
		Tax:      order.Totals.Tax.StringFixed(2),
		Shipping: order.Totals.Shipping.StringFixed(2),
		Total:    order.Totals.Total.StringFixed(2),
	}
}
