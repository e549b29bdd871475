package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type OrderSink interface {
	// RecordOrder hands a placed order to its downstream system
	RecordOrder(ctx context.Context, order domain.Order) error
}
