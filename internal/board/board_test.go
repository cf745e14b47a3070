package board

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sync"
	"testing"
	"time"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/log"
	"finboard/internal/state"
	"finboard/internal/state/memory"
)

var (
	march2024 = core.Period{Year: 2024, Month: time.March}
	fixedNow  = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
)

type recordingPublisher struct {
	mu    sync.Mutex
	calls []core.Period
	err   error
}

func (p *recordingPublisher) PublishPeriodSelected(_ context.Context, period core.Period, _ uint64, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, period)
	return p.err
}

func (p *recordingPublisher) Calls() []core.Period {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.Period(nil), p.calls...)
}

type failingStore struct{}

func (failingStore) Load(context.Context) (state.Selection, bool, error) {
	return state.Selection{}, false, errors.New("disk gone")
}

func (failingStore) Save(context.Context, state.Selection) error {
	return errors.New("disk gone")
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func newBoard(opts Options) *Board {
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return fixedNow }
	}
	return New(opts)
}

func mustSelect(t *testing.T, b *Board, p core.Period) *Dashboard {
	t.Helper()
	d, err := b.Select(context.Background(), p)
	if err != nil {
		t.Fatalf("Select(%s): %v", p, err)
	}
	return d
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := Build(context.Background(), 42, march2024, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(context.Background(), 42, march2024, fixedNow)
	if err != nil {
		t.Fatal(err)
	}

	if a.Revision == b.Revision {
		t.Fatal("each build should get its own revision")
	}
	if !reflect.DeepEqual(a.Expenses, b.Expenses) || !reflect.DeepEqual(a.Revenues, b.Revenues) {
		t.Fatal("records differ for the same seed")
	}
	if !reflect.DeepEqual(a.Target, b.Target) || !reflect.DeepEqual(a.Annual, b.Annual) || !reflect.DeepEqual(a.Snapshot, b.Snapshot) {
		t.Fatal("derived figures differ for the same seed")
	}

	other, err := Build(context.Background(), 43, march2024, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Expenses, other.Expenses) {
		t.Fatal("different seeds produced the same expenses")
	}
}

func TestBuild_Consistency(t *testing.T) {
	d, err := Build(context.Background(), 7, march2024, fixedNow)
	if err != nil {
		t.Fatal(err)
	}

	if got := ledger.Aggregate(d.Expenses).Total; got != d.ExpenseTotals.Total {
		t.Fatalf("expense total %v, aggregate %v", d.ExpenseTotals.Total, got)
	}
	if d.ExpenseTotals.Total != d.Snapshot.TotalExpense || d.RevenueTotals.Total != d.Snapshot.TotalRevenue {
		t.Fatalf("snapshot %+v does not match totals", d.Snapshot)
	}
	if d.Target.Actual.Cents > d.Target.Target.Cents {
		t.Fatalf("actual %v above target %v", d.Target.Actual, d.Target.Target)
	}

	// previous-month figures are what February itself shows
	feb, err := Build(context.Background(), 7, march2024.Previous(), fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if feb.ExpenseTotals.Total != d.Snapshot.PreviousTotalExpense || feb.RevenueTotals.Total != d.Snapshot.PreviousTotalRevenue {
		t.Fatalf("previous totals %v/%v, February shows %v/%v",
			d.Snapshot.PreviousTotalExpense, d.Snapshot.PreviousTotalRevenue, feb.ExpenseTotals.Total, feb.RevenueTotals.Total)
	}
}

func TestBuild_RejectsInvalidPeriodAndCancelledContext(t *testing.T) {
	if _, err := Build(context.Background(), 1, core.Period{Year: 2024, Month: 13}, fixedNow); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, 1, march2024, fixedNow); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBoard_CurrentPanicsBeforeSelection(t *testing.T) {
	b := newBoard(Options{Seed: 1})
	if b.Selected() {
		t.Fatal("new board reports a selection")
	}
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("Current did not panic")
			}
		}()
		b.Current()
	}()

	if _, ok := b.Selection(); ok {
		t.Fatal("Selection reported ok before select")
	}
	if _, err := b.Shift(context.Background(), 1); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}

func TestBoard_SelectPersistsAndPublishes(t *testing.T) {
	store := memory.New()
	pub := &recordingPublisher{}
	b := newBoard(Options{Seed: 5, Store: store, Publisher: pub})

	d := mustSelect(t, b, march2024)
	if d != b.Current() {
		t.Fatal("Select result is not the current dashboard")
	}

	sel, found, err := store.Load(context.Background())
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if sel.Period != march2024 || sel.Seed != 5 {
		t.Fatalf("saved selection %+v", sel)
	}
	if calls := pub.Calls(); !reflect.DeepEqual(calls, []core.Period{march2024}) {
		t.Fatalf("published %v", calls)
	}

	cur, ok := b.Selection()
	if !ok || cur.Period != march2024 {
		t.Fatalf("Selection = %+v, %v", cur, ok)
	}
}

func TestBoard_SelectRejectsInvalidPeriod(t *testing.T) {
	pub := &recordingPublisher{}
	b := newBoard(Options{Seed: 5, Publisher: pub})

	if _, err := b.Select(context.Background(), core.Period{Year: 1900, Month: 1}); !errors.Is(err, core.ErrInvalidYear) {
		t.Fatalf("expected ErrInvalidYear, got %v", err)
	}
	if b.Selected() || len(pub.Calls()) != 0 {
		t.Fatal("invalid period must not change or announce the selection")
	}
}

func TestBoard_InfrastructureFailuresDoNotFailSelection(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	b := newBoard(Options{Seed: 5, Store: failingStore{}, Publisher: pub})

	if d := mustSelect(t, b, march2024); d.Period != march2024 {
		t.Fatalf("selected %s", d.Period)
	}

	// restore falls back when the store cannot be read
	d, err := b.Restore(context.Background(), core.Period{Year: 2025, Month: time.January})
	if err != nil {
		t.Fatal(err)
	}
	if d.Period.Year != 2025 {
		t.Fatalf("restored %s", d.Period)
	}
}

func TestBoard_ShiftRollsOverYears(t *testing.T) {
	b := newBoard(Options{Seed: 9})
	mustSelect(t, b, core.Period{Year: 2024, Month: time.December})

	d, err := b.Shift(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := (core.Period{Year: 2025, Month: time.January}); d.Period != want {
		t.Fatalf("got %s, want %s", d.Period, want)
	}

	d, err = b.Shift(context.Background(), -2)
	if err != nil {
		t.Fatal(err)
	}
	if want := (core.Period{Year: 2024, Month: time.November}); d.Period != want {
		t.Fatalf("got %s, want %s", d.Period, want)
	}
}

func TestBoard_ConcurrentShiftsAllApply(t *testing.T) {
	start := core.Period{Year: 2024, Month: time.January}
	const shifts = 8

	for trial := 0; trial < 20; trial++ {
		b := newBoard(Options{Seed: 13, Cache: cache.NewLRUCache[*Dashboard](32, time.Minute)})
		mustSelect(t, b, start)

		var wg sync.WaitGroup
		for i := 0; i < shifts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := b.Shift(context.Background(), 1); err != nil {
					t.Errorf("Shift: %v", err)
				}
			}()
		}
		wg.Wait()

		if got, want := b.Current().Period, start.Add(shifts); got != want {
			t.Fatalf("trial %d: ended at %s, want %s", trial, got, want)
		}
	}
}

func TestBoard_FollowAdoptsSeedWithoutPublishing(t *testing.T) {
	pub := &recordingPublisher{}
	b := newBoard(Options{Seed: 1, Publisher: pub})

	d, err := b.Follow(context.Background(), march2024, 77)
	if err != nil {
		t.Fatal(err)
	}
	if d.Seed != 77 || b.Seed() != 77 {
		t.Fatalf("seed %d, board seed %d", d.Seed, b.Seed())
	}
	if len(pub.Calls()) != 0 {
		t.Fatal("Follow must not publish")
	}

	want, err := Build(context.Background(), 77, march2024, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(want.Expenses, d.Expenses) {
		t.Fatal("followed dashboard differs from a fresh build with the same seed")
	}
}

func TestBoard_RestoreUsesSavedSelection(t *testing.T) {
	saved := state.Selection{Period: march2024, Seed: 123, UpdatedAt: fixedNow}
	store := memory.NewWithSelection(saved)
	pub := &recordingPublisher{}
	b := newBoard(Options{Seed: 1, Store: store, Publisher: pub})

	d, err := b.Restore(context.Background(), core.Period{Year: 2030, Month: time.June})
	if err != nil {
		t.Fatal(err)
	}
	if d.Period != march2024 || d.Seed != 123 {
		t.Fatalf("restored %s seed %d", d.Period, d.Seed)
	}
	if len(pub.Calls()) != 0 {
		t.Fatal("restore must not publish")
	}

	empty := newBoard(Options{Seed: 1, Store: memory.New()})
	d, err = empty.Restore(context.Background(), core.Period{Year: 2030, Month: time.June})
	if err != nil {
		t.Fatal(err)
	}
	if want := (core.Period{Year: 2030, Month: time.June}); d.Period != want {
		t.Fatalf("fallback restored %s", d.Period)
	}
}

func TestBoard_RestoreDoesNotSaveLoadedSelection(t *testing.T) {
	saved := state.Selection{Period: march2024, Seed: 123, UpdatedAt: fixedNow}
	store := memory.NewWithSelection(saved)

	for restart := 0; restart < 3; restart++ {
		b := newBoard(Options{Seed: 1, Store: store})
		if _, err := b.Restore(context.Background(), core.Period{Year: 2030, Month: time.June}); err != nil {
			t.Fatal(err)
		}
	}
	if n := store.Saves(); n != 0 {
		t.Fatalf("restoring a saved selection saved %d times", n)
	}

	fresh := memory.New()
	b := newBoard(Options{Seed: 1, Store: fresh})
	if _, err := b.Restore(context.Background(), march2024); err != nil {
		t.Fatal(err)
	}
	if n := fresh.Saves(); n != 1 {
		t.Fatalf("fallback selection saved %d times, want 1", n)
	}
}

func TestBoard_DashboardUsesCache(t *testing.T) {
	c := cache.NewLRUCache[*Dashboard](8, time.Minute)
	b := newBoard(Options{Seed: 3, Cache: c})

	first, err := b.Dashboard(context.Background(), march2024)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Dashboard(context.Background(), march2024)
	if err != nil {
		t.Fatal(err)
	}

	if first != second || c.Size() != 1 {
		t.Fatalf("second read missed the cache (size %d)", c.Size())
	}
	if b.Selected() {
		t.Fatal("Dashboard must not change the selection")
	}
	if _, err := b.Dashboard(context.Background(), core.Period{}); err == nil {
		t.Fatal("expected error for zero period")
	}
}

func TestBoard_ReadersNeverSeePartialDashboard(t *testing.T) {
	b := newBoard(Options{Seed: 11, Cache: cache.NewLRUCache[*Dashboard](4, time.Minute)})
	mustSelect(t, b, march2024)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				d := b.Current()
				if d.Snapshot.Period != d.Period ||
					ledger.Aggregate(d.Expenses).Total != d.Snapshot.TotalExpense ||
					d.Target.Period != d.Period {
					t.Errorf("inconsistent dashboard for %s", d.Period)
					return
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if _, err := b.Shift(context.Background(), 1-2*(i%2)); err != nil {
			t.Fatal(err)
		}
	}
	cancel()
	wg.Wait()
}

func TestDashboardWidgets(t *testing.T) {
	d, err := Build(context.Background(), 21, march2024, fixedNow)
	if err != nil {
		t.Fatal(err)
	}

	if n := len(d.MetricCards()); n != 2 {
		t.Fatalf("metric cards: %d", n)
	}
	if n := len(d.CalendarEvents()); n != d.RecordCount() {
		t.Fatalf("calendar events %d, records %d", n, d.RecordCount())
	}
	if n := len(d.Transactions("all")); n > 7 {
		t.Fatalf("transaction list has %d rows", n)
	}
	if n := len(d.StatisticsChart().Categories); n != 12 {
		t.Fatalf("statistics categories: %d", n)
	}
	if name := d.SpendingChart().Series[0].Name; name != "Total Spending" {
		t.Fatalf("spending series %q", name)
	}
	if got, want := len(d.CategoryChart().Categories), len(d.ExpenseTotals.ByCategory); got != want {
		t.Fatalf("category chart has %d categories, want %d", got, want)
	}
	if got, want := d.TargetWidget().Progress, d.Target.ProgressPercent.String()+"%"; got != want {
		t.Fatalf("target progress %q, want %q", got, want)
	}
	if n := len(d.Notifications(fixedNow, 3)); n != 3 {
		t.Fatalf("notifications: %d", n)
	}
}
