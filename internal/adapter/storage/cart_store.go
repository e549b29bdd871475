package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
	"github.com/rl1809/storefront/internal/validate"
)

// DefaultCartKey is the slot key the cart is saved under.
const DefaultCartKey = "cart"

var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// CartStore saves cart snapshots as a JSON array under one slot key. It never
// reports failures to its caller: a cart that cannot be read loads as empty
// and a write that fails is logged.
type CartStore struct {
	slot port.SnapshotSlot
	key  string
	log  logrus.FieldLogger
}

func NewCartStore(slot port.SnapshotSlot, key string, log logrus.FieldLogger) *CartStore {
	if key == "" {
		key = DefaultCartKey
	}
	return &CartStore{slot: slot, key: key, log: log.WithField("key", key)}
}

func (s *CartStore) Load(ctx context.Context) domain.Snapshot {
	raw, err := s.slot.Get(ctx, s.key)
	if errors.Is(err, port.ErrSlotEmpty) {
		s.log.Debug("no saved cart")
		return domain.Snapshot{}
	}
	if err != nil {
		s.log.WithError(err).Warn("saved cart unreadable, starting empty")
		return domain.Snapshot{}
	}

	snapshot, err := DecodeSnapshot(raw)
	if err != nil {
		s.log.WithError(err).WithField("bytes", len(raw)).Warn("discarding corrupt saved cart")
		return domain.Snapshot{}
	}
	return snapshot
}

func (s *CartStore) Save(ctx context.Context, snapshot domain.Snapshot) {
	raw, err := EncodeSnapshot(snapshot)
	if err != nil {
		s.log.WithError(err).Error("encode cart")
		return
	}
	if err := s.slot.Set(ctx, s.key, raw); err != nil {
		s.log.WithError(err).WithField("lines", len(snapshot)).Warn("save cart failed, keeping it in memory")
	}
}

func EncodeSnapshot(snapshot domain.Snapshot) ([]byte, error) {
	if snapshot == nil {
		snapshot = domain.Snapshot{}
	}
	return json.Marshal(snapshot)
}

// DecodeSnapshot parses a saved cart and rejects anything that would break
// the ledger's invariants: bad quantities, unknown categories, negative prices
// or two lines with the same key.
func DecodeSnapshot(raw []byte) (domain.Snapshot, error) {
	var lines domain.Snapshot
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	seen := make(map[domain.LineKey]struct{}, len(lines))
	for i, l := range lines {
		if err := validate.Check(l); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSnapshot, i, err)
		}
		if l.Price.IsNegative() {
			return nil, fmt.Errorf("%w: line %d: negative price", ErrMalformedSnapshot, i)
		}
		if _, dup := seen[l.Key()]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate line", ErrMalformedSnapshot, i)
		}
		seen[l.Key()] = struct{}{}
	}

	if lines == nil {
		lines = domain.Snapshot{}
	}
	return lines, nil
}
