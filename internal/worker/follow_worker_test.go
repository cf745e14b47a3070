package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/board"
	"finboard/internal/core"
	"finboard/internal/log"
)

type followCall struct {
	period core.Period
	seed   uint64
}

type fakeFollower struct {
	calls []followCall
	err   error
}

func (f *fakeFollower) Follow(_ context.Context, p core.Period, seed uint64) (*board.Dashboard, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, followCall{p, seed})
	return &board.Dashboard{Period: p, Seed: seed}, nil
}

func newWorker(f Follower) *FollowWorker {
	return NewFollowWorker(f, log.New(log.Config{Output: io.Discard}))
}

func message(p core.Period, seed uint64, ts time.Time) *amqp.PeriodSelectedMessage {
	msg := amqp.NewPeriodSelectedMessage(p, seed, "rev")
	msg.Timestamp = ts
	return msg
}

var (
	march = core.Period{Year: 2024, Month: time.March}
	t0    = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
)

func TestHandlePeriodSelected_Follows(t *testing.T) {
	f := &fakeFollower{}
	w := newWorker(f)

	if err := w.HandlePeriodSelected(context.Background(), message(march, 9, t0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.calls) != 1 || f.calls[0] != (followCall{march, 9}) {
		t.Fatalf("calls = %+v", f.calls)
	}
	if applied, skipped := w.Stats(); applied != 1 || skipped != 0 {
		t.Fatalf("stats = %d/%d", applied, skipped)
	}
}

func TestHandlePeriodSelected_SkipsDuplicatesAndStale(t *testing.T) {
	f := &fakeFollower{}
	w := newWorker(f)

	first := message(march, 1, t0)
	_ = w.HandlePeriodSelected(context.Background(), first)
	_ = w.HandlePeriodSelected(context.Background(), first)

	older := message(march.Previous(), 1, t0.Add(-time.Minute))
	_ = w.HandlePeriodSelected(context.Background(), older)

	newer := message(march.Next(), 1, t0.Add(time.Minute))
	_ = w.HandlePeriodSelected(context.Background(), newer)

	if len(f.calls) != 2 || f.calls[1].period != march.Next() {
		t.Fatalf("calls = %+v", f.calls)
	}
	if applied, skipped := w.Stats(); applied != 2 || skipped != 2 {
		t.Fatalf("stats = %d/%d", applied, skipped)
	}
}

func TestHandlePeriodSelected_Errors(t *testing.T) {
	w := newWorker(&fakeFollower{})
	bad := message(march, 1, t0)
	bad.Month = 13
	if err := w.HandlePeriodSelected(context.Background(), bad); err != nil {
		t.Fatalf("invalid period should be dropped, got %v", err)
	}

	w = newWorker(&fakeFollower{err: context.Canceled})
	if err := w.HandlePeriodSelected(context.Background(), message(march, 1, t0)); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation should be returned for requeue, got %v", err)
	}

	w = newWorker(&fakeFollower{err: errors.New("boom")})
	if err := w.HandlePeriodSelected(context.Background(), message(march, 1, t0)); err != nil {
		t.Fatalf("permanent failure should be dropped, got %v", err)
	}
}
