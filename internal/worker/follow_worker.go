// Package worker applies period.selected events from other dashboards to a
// local board.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/board"
	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/log"
)

const (
	seenCapacity = 1024
	seenTTL      = time.Hour
)

// Follower is the part of the board the worker drives.
type Follower interface {
	Follow(ctx context.Context, p core.Period, seed uint64) (*board.Dashboard, error)
}

// FollowWorker makes a board track the selection announced on the bus.
// Redelivered messages are applied once and messages older than the last
// applied one are skipped.
type FollowWorker struct {
	board  Follower
	logger *log.Logger
	events *log.StructuredLogger
	seen   *cache.LRUCache[struct{}]

	mu     sync.Mutex
	latest time.Time

	applied int64
	skipped int64
}

func NewFollowWorker(b Follower, logger *log.Logger) *FollowWorker {
	return &FollowWorker{
		board:  b,
		logger: logger.WithComponent(log.ComponentListener),
		events: log.NewStructuredLogger(logger),
		seen:   cache.NewLRUCache[struct{}](seenCapacity, seenTTL),
	}
}

// HandlePeriodSelected is an amqp.Handler. Only cancellation is returned as
// an error so the broker requeues; invalid selections are logged and
// dropped.
func (w *FollowWorker) HandlePeriodSelected(ctx context.Context, msg *amqp.PeriodSelectedMessage) error {
	fields := log.NewFields().WithOperation(log.OpConsume)
	fields[log.FieldMessageID] = msg.ID

	p, err := msg.Period()
	if err != nil {
		w.events.LogError(ctx, "Dropping period event", err, log.ComponentListener, log.OpValidate, log.ErrorTypeValidation, fields)
		w.skip()
		return nil
	}
	fields.WithSelection(p, msg.Seed, msg.Revision)

	if _, dup := w.seen.Get(msg.ID); dup {
		w.logger.DebugContext(ctx, "Skipping duplicate period event", fields.ToSlice()...)
		w.skip()
		return nil
	}
	if w.isStale(msg.Timestamp) {
		w.logger.InfoContext(ctx, "Skipping out-of-order period event", fields.ToSlice()...)
		w.skip()
		return nil
	}

	if _, err := w.board.Follow(ctx, p, msg.Seed); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		w.events.LogError(ctx, "Failed to follow period event", err, log.ComponentListener, log.OpSelect, log.ErrorTypeValidation, fields)
		w.skip()
		return nil
	}

	w.seen.Set(msg.ID, struct{}{})
	w.mu.Lock()
	if msg.Timestamp.After(w.latest) {
		w.latest = msg.Timestamp
	}
	w.applied++
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Followed period event", fields.ToSlice()...)
	return nil
}

func (w *FollowWorker) isStale(ts time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !ts.IsZero() && ts.Before(w.latest)
}

func (w *FollowWorker) skip() {
	w.mu.Lock()
	w.skipped++
	w.mu.Unlock()
}

// Stats returns how many events were applied and skipped.
func (w *FollowWorker) Stats() (applied, skipped int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.applied, w.skipped
}
