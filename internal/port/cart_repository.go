package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CartRepository interface {
	// Load returns the saved cart, or an empty snapshot when none is usable
	Load(ctx context.Context) domain.Snapshot

	// Save stores the snapshot; failures are handled by the implementation
	Save(ctx context.Context, snapshot domain.Snapshot)
}
