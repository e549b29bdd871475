package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
)

func validDetails() domain.CheckoutDetails {
	return domain.CheckoutDetails{
		Shipping: domain.ShippingDetails{
			FirstName: "Asha",
			LastName:  "Rao",
			Email:     "asha@example.com",
			Phone:     "9876543210",
			Address:   "12 MG Road",
			City:      "Bengaluru",
			State:     "KA",
			ZipCode:   "560001",
		},
		Payment: domain.PaymentDetails{
			CardNumber: "4111 1111 1111 1111",
			CardName:   "Asha Rao",
			ExpiryDate: "08/29",
			CVV:        "123",
		},
	}
}

func newCheckout(t *testing.T, queueSize int) (*CheckoutService, *Ledger) {
	t.Helper()
	l := newTestLedger(t, &mockCartRepo{})
	return NewCheckoutService(l, rupeePolicy(), queueSize, quietLogger()), l
}

func TestPlaceOrder_Success(t *testing.T) {
	svc, l := newCheckout(t, 10)
	_, err := l.AddLine(plainProduct(1, "1500"), 2, "", "")
	require.NoError(t, err)

	order, err := svc.PlaceOrder(context.Background(), validDetails())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "1111", order.Customer.CardLastFour)
	assert.Equal(t, "3797.00", order.Totals.Total.StringFixed(2))
	require.Len(t, order.Lines, 1)

	assert.Empty(t, l.Snapshot(), "cart should be emptied")

	select {
	case queued := <-svc.GetOrderQueue():
		assert.Equal(t, order.ID, queued.ID)
	default:
		t.Fatal("expected order in queue")
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc, _ := newCheckout(t, 10)

	_, err := svc.PlaceOrder(context.Background(), validDetails())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Len(t, svc.GetOrderQueue(), 0)
}

func TestPlaceOrder_InvalidDetails(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.CheckoutDetails)
		field  string
	}{
		{"missing first name", func(d *domain.CheckoutDetails) { d.Shipping.FirstName = "  " }, "firstName"},
		{"bad email", func(d *domain.CheckoutDetails) { d.Shipping.Email = "not-an-email" }, "email"},
		{"missing zip", func(d *domain.CheckoutDetails) { d.Shipping.ZipCode = "" }, "zipCode"},
		{"letters in card", func(d *domain.CheckoutDetails) { d.Payment.CardNumber = "4111-abcd-1111" }, "cardNumber"},
		{"bad expiry", func(d *domain.CheckoutDetails) { d.Payment.ExpiryDate = "2029-08" }, "expiryDate"},
		{"short cvv", func(d *domain.CheckoutDetails) { d.Payment.CVV = "12" }, "cvv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, l := newCheckout(t, 10)
			_, err := l.AddLine(plainProduct(1, "100"), 1, "", "")
			require.NoError(t, err)

			details := validDetails()
			tt.mutate(&details)
			_, err = svc.PlaceOrder(context.Background(), details)

			require.ErrorIs(t, err, ErrInvalidCheckout)
			assert.Contains(t, err.Error(), tt.field)
			assert.Equal(t, 1, l.ItemCount(), "cart must survive a rejected checkout")
		})
	}
}

func TestPlaceOrder_QueueFullRestoresCart(t *testing.T) {
	svc, l := newCheckout(t, 0)
	_, err := l.AddLine(plainProduct(1, "100"), 2, "", "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.PlaceOrder(ctx, validDetails())

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 2, l.ItemCount())
}

func TestPlaceOrder_AfterCloseKeepsCart(t *testing.T) {
	svc, l := newCheckout(t, 10)
	_, err := l.AddLine(plainProduct(1, "100"), 3, "", "")
	require.NoError(t, err)

	svc.Close()
	svc.Close()

	_, err = svc.PlaceOrder(context.Background(), validDetails())

	assert.ErrorIs(t, err, ErrCheckoutClosed)
	assert.Equal(t, 3, l.ItemCount())
}

func TestPlaceOrder_ConcurrentWithClose(t *testing.T) {
	svc, l := newCheckout(t, 1)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range svc.GetOrderQueue() {
		}
	}()

	var wg sync.WaitGroup
	for i := int64(1); i <= 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := l.AddLine(plainProduct(id, "100"), 1, "", ""); err != nil {
				t.Error(err)
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			_, err := svc.PlaceOrder(ctx, validDetails())
			if err != nil && !errors.Is(err, ErrCheckoutClosed) && !errors.Is(err, ErrEmptyCart) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
		if i == 10 {
			svc.Close()
		}
	}

	wg.Wait()
	<-drained
}
