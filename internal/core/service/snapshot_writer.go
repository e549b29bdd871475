package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type pendingSnapshot struct {
	seq      uint64
	snapshot domain.Snapshot
}

type flushWaiter struct {
	seq  uint64
	done chan struct{}
}

// snapshotWriter saves cart snapshots on its own goroutine. The mailbox holds
// at most one snapshot: a newer one replaces any that has not been picked up,
// so the slot always ends with the latest state.
type snapshotWriter struct {
	repo    port.CartRepository
	timeout time.Duration
	log     logrus.FieldLogger

	mailbox chan pendingSnapshot
	stopped chan struct{}

	mu      sync.Mutex
	seq     uint64
	written uint64
	closed  bool
	waiters []flushWaiter
}

func newSnapshotWriter(repo port.CartRepository, timeout time.Duration, log logrus.FieldLogger) *snapshotWriter {
	w := &snapshotWriter{
		repo:    repo,
		timeout: timeout,
		log:     log,
		mailbox: make(chan pendingSnapshot, 1),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *snapshotWriter) run() {
	defer close(w.stopped)
	for p := range w.mailbox {
		w.save(p.snapshot)
		w.markWritten(p.seq)
	}
}

func (w *snapshotWriter) save(snapshot domain.Snapshot) {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	w.repo.Save(ctx, snapshot)
}

func (w *snapshotWriter) markWritten(seq uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.written = seq
	kept := w.waiters[:0]
	for _, fw := range w.waiters {
		if fw.seq <= seq {
			close(fw.done)
			continue
		}
		kept = append(kept, fw)
	}
	w.waiters = kept
}

// enqueue must not run concurrently with itself or with stop; the ledger
// calls both under its own lock.
func (w *snapshotWriter) enqueue(snapshot domain.Snapshot) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.WithField("lines", len(snapshot)).Warn("cart writer stopped, change kept in memory only")
		return
	}
	w.seq++
	p := pendingSnapshot{seq: w.seq, snapshot: snapshot}
	w.mu.Unlock()

	select {
	case w.mailbox <- p:
		return
	default:
	}

	// Drop the snapshot the worker has not picked up yet.
	select {
	case <-w.mailbox:
	default:
	}
	w.mailbox <- p
}

// flush blocks until every snapshot enqueued so far has been written or
// superseded by a written one.
func (w *snapshotWriter) flush(ctx context.Context) error {
	w.mu.Lock()
	if w.written >= w.seq {
		w.mu.Unlock()
		return nil
	}
	fw := flushWaiter{seq: w.seq, done: make(chan struct{})}
	w.waiters = append(w.waiters, fw)
	w.mu.Unlock()

	select {
	case <-fw.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *snapshotWriter) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.mailbox)
}

func (w *snapshotWriter) wait(ctx context.Context) error {
	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
