package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type OrderReader interface {
	// GetOrder returns a stored order, or nil when the id is unknown
	GetOrder(ctx context.Context, orderID string) (*domain.OrderSummary, error)
}
