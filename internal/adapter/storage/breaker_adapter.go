package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"github.com/rl1809/storefront/internal/port"
)

// BreakerSlot wraps another slot with a circuit breaker. After enough
// consecutive failures it fails fast until openTimeout passes, so a dead
// backend costs one error per write instead of one network timeout.
type BreakerSlot struct {
	next port.SnapshotSlot
	cb   *gobreaker.CircuitBreaker[[]byte]
}

func NewBreakerSlot(name string, next port.SnapshotSlot, failures uint32, openTimeout time.Duration, log logrus.FieldLogger) *BreakerSlot {
	if failures == 0 {
		failures = 1
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// An empty slot is a normal answer, not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, port.ErrSlotEmpty)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("slot breaker state changed")
		},
	}
	return &BreakerSlot{next: next, cb: gobreaker.NewCircuitBreaker[[]byte](settings)}
}

func (b *BreakerSlot) Get(ctx context.Context, key string) ([]byte, error) {
	return b.cb.Execute(func() ([]byte, error) {
		return b.next.Get(ctx, key)
	})
}

func (b *BreakerSlot) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Set(ctx, key, value)
	})
	return err
}

func (b *BreakerSlot) State() gobreaker.State {
	return b.cb.State()
}
