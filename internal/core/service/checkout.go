package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/validate"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCheckout = errors.New("invalid checkout details")
	ErrCheckoutClosed  = errors.New("checkout closed")
)

// CheckoutService turns the cart into an order. No payment is taken: the
// order is queued for the workers and the cart is emptied.
type CheckoutService struct {
	ledger     *Ledger
	policy     domain.PricingPolicy
	orderQueue chan domain.Order
	log        logrus.FieldLogger

	// mu guards orderQueue against a send after Close.
	mu     sync.RWMutex
	closed bool
}

func NewCheckoutService(ledger *Ledger, policy domain.PricingPolicy, queueSize int, log logrus.FieldLogger) *CheckoutService {
	return &CheckoutService{
		ledger:     ledger,
		policy:     policy,
		orderQueue: make(chan domain.Order, queueSize),
		log:        log,
	}
}

func (s *CheckoutService) PlaceOrder(ctx context.Context, details domain.CheckoutDetails) (domain.Order, error) {
	details = details.Normalize()
	if err := validate.Check(details); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrInvalidCheckout, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.Order{}, ErrCheckoutClosed
	}

	lines := s.ledger.takeAll()
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:        uuid.NewString(),
		Customer:  details.Customer(),
		Lines:     lines,
		Totals:    ComputeTotals(lines, s.policy),
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	select {
	case s.orderQueue <- order:
	case <-ctx.Done():
		s.ledger.restore(lines)
		return domain.Order{}, fmt.Errorf("queue order: %w", ctx.Err())
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"items":    lines.ItemCount(),
		"total":    order.Totals.Total.StringFixed(2),
	}).Info("order placed")

	return order, nil
}

func (s *CheckoutService) GetOrderQueue() <-chan domain.Order {
	return s.orderQueue
}

// Close stops accepting orders and closes the queue once in-flight
// PlaceOrder calls have returned. It is safe to call more than once.
func (s *CheckoutService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.orderQueue)
}
