package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var (
	ErrIncompleteSelection = errors.New("incomplete selection")
	ErrInvalidSelection    = errors.New("invalid selection")
	ErrOutOfStock          = errors.New("out of stock")
)

// Ledger owns the cart lines for one shopper session. Every change is handed
// to subscribers and written through the cart repository; the in-memory lines
// stay authoritative whether or not the write succeeds.
type Ledger struct {
	mu      sync.Mutex
	lines   domain.Snapshot
	version uint64
	subs    map[uint64]func(domain.Snapshot)
	nextID  uint64

	// notifyMu orders deliveries; notified is the newest version delivered.
	notifyMu sync.Mutex
	notified uint64

	writer *snapshotWriter
	log    logrus.FieldLogger
}

// NewLedger hydrates a ledger from repo. saveTimeout bounds each background
// write; zero means no bound.
func NewLedger(ctx context.Context, repo port.CartRepository, saveTimeout time.Duration, log logrus.FieldLogger) *Ledger {
	lines := repo.Load(ctx).Clone()
	log.WithFields(logrus.Fields{
		"lines": len(lines),
		"items": lines.ItemCount(),
	}).Info("cart restored")

	return &Ledger{
		lines:  lines,
		subs:   make(map[uint64]func(domain.Snapshot)),
		writer: newSnapshotWriter(repo, saveTimeout, log),
		log:    log,
	}
}

// AddLine adds quantity units of p with the given variant selection, merging
// into an existing line with the same key. A non-positive quantity counts as 1.
func (l *Ledger) AddLine(p domain.Product, quantity int, size, color string) (domain.Snapshot, error) {
	if err := checkSelection(p, size, color); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		quantity = 1
	}

	key := domain.LineKey{ProductID: p.ID, Size: size, Color: color}
	return l.mutate(func(lines domain.Snapshot) (domain.Snapshot, bool) {
		if i := lines.IndexOf(key); i >= 0 {
			lines[i].Quantity += quantity
			return lines, true
		}
		return append(lines, domain.NewLineItem(p, quantity, size, color)), true
	}), nil
}

func checkSelection(p domain.Product, size, color string) error {
	if !p.InStock {
		return fmt.Errorf("%w: %s", ErrOutOfStock, p.Name)
	}
	if p.HasSizes() && size == "" {
		return fmt.Errorf("%w: choose a size for %s", ErrIncompleteSelection, p.Name)
	}
	if p.HasColors() && color == "" {
		return fmt.Errorf("%w: choose a color for %s", ErrIncompleteSelection, p.Name)
	}
	// Products without declared options accept any selection as given.
	if p.HasSizes() && !p.OffersSize(size) {
		return fmt.Errorf("%w: %s has no size %q", ErrInvalidSelection, p.Name, size)
	}
	if p.HasColors() && !p.OffersColor(color) {
		return fmt.Errorf("%w: %s has no color %q", ErrInvalidSelection, p.Name, color)
	}
	return nil
}

// RemoveLine drops every line of productID whatever its size or color.
// An unknown id leaves the cart untouched.
func (l *Ledger) RemoveLine(productID int64) domain.Snapshot {
	return l.mutate(func(lines domain.Snapshot) (domain.Snapshot, bool) {
		kept := lines[:0]
		for _, line := range lines {
			if line.ProductID != productID {
				kept = append(kept, line)
			}
		}
		return kept, len(kept) != len(lines)
	})
}

// SetQuantity sets the first line of productID to quantity, or removes every
// line of the product when quantity <= 0.
func (l *Ledger) SetQuantity(productID int64, quantity int) domain.Snapshot {
	if quantity <= 0 {
		return l.RemoveLine(productID)
	}
	return l.mutate(func(lines domain.Snapshot) (domain.Snapshot, bool) {
		for i := range lines {
			if lines[i].ProductID == productID {
				changed := lines[i].Quantity != quantity
				lines[i].Quantity = quantity
				return lines, changed
			}
		}
		return lines, false
	})
}

// RemoveKey drops the single line identified by key.
func (l *Ledger) RemoveKey(key domain.LineKey) domain.Snapshot {
	return l.mutate(func(lines domain.Snapshot) (domain.Snapshot, bool) {
		i := lines.IndexOf(key)
		if i < 0 {
			return lines, false
		}
		return append(lines[:i], lines[i+1:]...), true
	})
}

// SetKeyQuantity is SetQuantity scoped to one line.
func (l *Ledger) SetKeyQuantity(key domain.LineKey, quantity int) domain.Snapshot {
	if quantity <= 0 {
		return l.RemoveKey(key)
	}
	return l.mutate(func(lines domain.Snapshot) (domain.Snapshot, bool) {
		i := lines.IndexOf(key)
		if i < 0 || lines[i].Quantity == quantity {
			return lines, false
		}
		lines[i].Quantity = quantity
		return lines, true
	})
}

// Clear empties the cart. It always writes, so a stale saved cart is
// overwritten even when the ledger is already empty.
func (l *Ledger) Clear() domain.Snapshot {
	return l.mutate(func(domain.Snapshot) (domain.Snapshot, bool) {
		return domain.Snapshot{}, true
	})
}

// takeAll empties the cart and returns what it held, in one step.
func (l *Ledger) takeAll() domain.Snapshot {
	var taken domain.Snapshot
	l.mutate(func(lines domain.Snapshot) (domain.Snapshot, bool) {
		taken = lines
		return domain.Snapshot{}, len(lines) > 0
	})
	return taken
}

// restore merges lines back into the cart, after anything added meanwhile.
func (l *Ledger) restore(taken domain.Snapshot) {
	if len(taken) == 0 {
		return
	}
	l.mutate(func(lines domain.Snapshot) (domain.Snapshot, bool) {
		for _, t := range taken {
			if i := lines.IndexOf(t.Key()); i >= 0 {
				lines[i].Quantity += t.Quantity
				continue
			}
			lines = append(lines, t)
		}
		return lines, true
	})
}

// mutate applies fn under the lock. When fn reports a change the new state is
// queued for saving and passed to subscribers after the lock is released.
func (l *Ledger) mutate(fn func(domain.Snapshot) (domain.Snapshot, bool)) domain.Snapshot {
	l.mu.Lock()
	lines, changed := fn(l.lines)
	l.lines = lines
	snap := l.lines.Clone()
	if !changed {
		l.mu.Unlock()
		return snap
	}

	l.version++
	version := l.version
	l.writer.enqueue(snap.Clone())
	subs := make([]func(domain.Snapshot), 0, len(l.subs))
	for _, sub := range l.subs {
		subs = append(subs, sub)
	}
	l.mu.Unlock()

	l.notify(version, snap, subs)
	return snap
}

// notify delivers snap unless a newer version has already gone out, so
// subscribers never see the cart move backwards.
func (l *Ledger) notify(version uint64, snap domain.Snapshot, subs []func(domain.Snapshot)) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	if version <= l.notified {
		return
	}
	l.notified = version
	for _, sub := range subs {
		sub(snap.Clone())
	}
}

func (l *Ledger) Snapshot() domain.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lines.Clone()
}

// Subtotal sums price times quantity using the prices captured at add time.
func (l *Ledger) Subtotal() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lines.Subtotal()
}

func (l *Ledger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lines.ItemCount()
}

func (l *Ledger) Totals(policy domain.PricingPolicy) domain.Totals {
	return ComputeTotals(l.Snapshot(), policy)
}

// Subscribe registers fn to receive new snapshots. Deliveries are serialized
// and in mutation order; under concurrent mutation an intermediate snapshot
// may be skipped but never delivered after a newer one. fn runs on the
// mutating goroutine, outside the ledger lock, and must not mutate the
// ledger. The returned func unsubscribes.
func (l *Ledger) Subscribe(fn func(domain.Snapshot)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// Flush waits until the latest change has been written.
func (l *Ledger) Flush(ctx context.Context) error {
	return l.writer.flush(ctx)
}

// Close writes any pending change and stops the background writer. Later
// mutations still apply in memory but are not saved.
func (l *Ledger) Close(ctx context.Context) error {
	l.mu.Lock()
	l.writer.stop()
	l.mu.Unlock()
	return l.writer.wait(ctx)
}
