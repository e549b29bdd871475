package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
)

// Customer is the contact part of a checkout. Card data is reduced to the
// last four digits before it reaches an order.
type Customer struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
	City         string
	State        string
	ZipCode      string
	CardLastFour string
}

type Order struct {
	ID        string
	Customer  Customer
	Lines     Snapshot
	Totals    Totals
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderSummary is the stored view of an order returned by lookups.
type OrderSummary struct {
	ID        string
	Status    OrderStatus
	ItemCount int
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
	CreatedAt time.Time
}

type ShippingDetails struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
}

type PaymentDetails struct {
	CardNumber string `json:"cardNumber" validate:"required,numeric,min=12,max=19"`
	CardName   string `json:"cardName" validate:"required"`
	ExpiryDate string `json:"expiryDate" validate:"required,expiry"`
	CVV        string `json:"cvv" validate:"required,numeric,min=3,max=4"`
}

// CheckoutDetails is what the shopper submits on the checkout form.
type CheckoutDetails struct {
	Shipping ShippingDetails `json:"shipping"`
	Payment  PaymentDetails  `json:"payment"`
}

// Normalize trims every field and strips the spaces and dashes people type
// into card numbers.
func (d CheckoutDetails) Normalize() CheckoutDetails {
	s := &d.Shipping
	for _, f := range []*string{&s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Address, &s.City, &s.State, &s.ZipCode} {
		*f = strings.TrimSpace(*f)
	}
	p := &d.Payment
	p.CardNumber = strings.NewReplacer(" ", "", "-", "").Replace(p.CardNumber)
	p.CardName = strings.TrimSpace(p.CardName)
	p.ExpiryDate = strings.TrimSpace(p.ExpiryDate)
	p.CVV = strings.TrimSpace(p.CVV)
	return d
}

func (d CheckoutDetails) Customer() Customer {
	c := Customer{
		FirstName: d.Shipping.FirstName,
		LastName:  d.Shipping.LastName,
		Email:     d.Shipping.Email,
		Phone:     d.Shipping.Phone,
		Address:   d.Shipping.Address,
		City:      d.Shipping.City,
		State:     d.Shipping.State,
		ZipCode:   d.Shipping.ZipCode,
	}
	if n := len(d.Payment.CardNumber); n >= 4 {
		c.CardLastFour = d.Payment.CardNumber[n-4:]
	}
	return c
}
