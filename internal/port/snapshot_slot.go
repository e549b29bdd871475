package port

import (
	"context"
	"errors"
)

// ErrSlotEmpty is returned by SnapshotSlot.Get when nothing is stored under the key.
var ErrSlotEmpty = errors.New("slot empty")

type SnapshotSlot interface {
	// Get returns the bytes stored under key, or ErrSlotEmpty
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value under key in a single write
	Set(ctx context.Context, key string, value []byte) error
}
