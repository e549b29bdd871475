package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CatalogSource interface {
	// LoadProducts returns every product record in catalog order
	LoadProducts(ctx context.Context) ([]domain.Product, error)
}
