// Package board holds the shared "currently selected period" and the
// dashboard generated for it.
//
// Readers get the whole current Dashboard through an atomic pointer and never
// observe a half-built one. Selection changes are serialized; each builds (or
// fetches from cache) a complete Dashboard before swapping it in.
package board

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/state"
)

// ErrNoSelection is returned by operations that need a current period
// before one was selected.
var ErrNoSelection = errors.New("no period selected")

// Publisher announces selection changes.
type Publisher interface {
	PublishPeriodSelected(ctx context.Context, p core.Period, seed uint64, revision string) error
}

type Options struct {
	Seed      uint64
	Store     state.Store
	Publisher Publisher
	Cache     cache.Cache[*Dashboard]
	Logger    *log.Logger
	Clock     func() time.Time
}

type Board struct {
	store     state.Store
	publisher Publisher
	cache     cache.Cache[*Dashboard]
	logger    *log.Logger
	events    *log.StructuredLogger
	clock     func() time.Time

	mu      sync.Mutex
	seed    atomic.Uint64
	current atomic.Pointer[Dashboard]
}

// New creates a board with no selection. Store, Publisher and Cache are
// optional.
func New(opts Options) *Board {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	b := &Board{
		store:     opts.Store,
		publisher: opts.Publisher,
		cache:     opts.Cache,
		logger:    logger.WithComponent(log.ComponentBoard),
		events:    log.NewStructuredLogger(logger),
		clock:     clock,
	}
	b.seed.Store(opts.Seed)
	return b
}

// Current returns the dashboard of the selected period. Calling it before
// any selection is a programming error and panics.
func (b *Board) Current() *Dashboard {
	d := b.current.Load()
	if d == nil {
		panic("board: Current called before a period was selected")
	}
	return d
}

// Lookup returns the current dashboard, or false before any selection.
func (b *Board) Lookup() (*Dashboard, bool) {
	d := b.current.Load()
	return d, d != nil
}

// Selected reports whether a period has been selected.
func (b *Board) Selected() bool {
	return b.current.Load() != nil
}

// Selection returns the current period and seed.
func (b *Board) Selection() (state.Selection, bool) {
	d := b.current.Load()
	if d == nil {
		return state.Selection{}, false
	}
	return state.Selection{Period: d.Period, Seed: d.Seed, UpdatedAt: d.GeneratedAt}, true
}

func (b *Board) Seed() uint64 {
	return b.seed.Load()
}

// Dashboard returns the dashboard for p under the board seed without
// changing the selection.
func (b *Board) Dashboard(ctx context.Context, p core.Period) (*Dashboard, error) {
	return b.dashboard(ctx, b.Seed(), p)
}

func (b *Board) dashboard(ctx context.Context, seed uint64, p core.Period) (*Dashboard, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	build := func(ctx context.Context) (*Dashboard, error) {
		d, err := Build(ctx, seed, p, b.clock())
		if err != nil {
			return nil, err
		}
		b.logger.DebugContext(ctx, "Dashboard built",
			log.NewFields().WithSelection(p, seed, d.Revision).WithOperation(log.OpBuild).ToSlice()...)
		return d, nil
	}
	if b.cache == nil {
		return build(ctx)
	}
	return b.cache.GetOrLoad(ctx, cacheKey(seed, p), build)
}

func cacheKey(seed uint64, p core.Period) string {
	return strconv.FormatUint(seed, 10) + ":" + p.String()
}

// Select makes p the current period, persists the selection and publishes
// a period.selected event. Store and publish failures are logged and do not
// fail the selection.
func (b *Board) Select(ctx context.Context, p core.Period) (*Dashboard, error) {
	return b.apply(ctx, p, 0, applyOptions{publish: true, save: true, boardSeed: true})
}

// Follow applies a selection made elsewhere, adopting its seed. It does not
// publish, so followers never echo events back.
func (b *Board) Follow(ctx context.Context, p core.Period, seed uint64) (*Dashboard, error) {
	return b.apply(ctx, p, seed, applyOptions{save: true})
}

// Shift moves the selection by delta months. The current period is read
// under the writer lock, so concurrent shifts all take effect.
func (b *Board) Shift(ctx context.Context, delta int) (*Dashboard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := b.current.Load()
	if d == nil {
		return nil, ErrNoSelection
	}
	return b.applyLocked(ctx, d.Period.Add(delta), b.Seed(), applyOptions{publish: true, save: true})
}

// Restore selects the persisted period and seed, or fallback when nothing
// was saved. A failing store is logged and the fallback used. A restored
// selection is not saved again.
func (b *Board) Restore(ctx context.Context, fallback core.Period) (*Dashboard, error) {
	if b.store != nil {
		sel, found, err := b.store.Load(ctx)
		switch {
		case err != nil:
			b.events.LogError(ctx, "Failed to load saved selection", err, log.ComponentBoard, log.OpRestore, log.ErrorTypeDatabase, nil)
		case found && sel.Validate() == nil:
			b.logger.InfoContext(ctx, "Restoring saved selection",
				log.NewFields().WithSelection(sel.Period, sel.Seed, "").WithOperation(log.OpRestore).ToSlice()...)
			return b.apply(ctx, sel.Period, sel.Seed, applyOptions{})
		}
	}
	return b.apply(ctx, fallback, 0, applyOptions{save: true, boardSeed: true})
}

type applyOptions struct {
	publish bool
	save    bool
	// boardSeed uses the board seed read under the lock instead of the
	// seed argument.
	boardSeed bool
}

func (b *Board) apply(ctx context.Context, p core.Period, seed uint64, opts applyOptions) (*Dashboard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if opts.boardSeed {
		seed = b.Seed()
	}
	return b.applyLocked(ctx, p, seed, opts)
}

// applyLocked builds and swaps in the dashboard for p. b.mu must be held.
func (b *Board) applyLocked(ctx context.Context, p core.Period, seed uint64, opts applyOptions) (*Dashboard, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("select period: %w", err)
	}

	d, err := b.dashboard(ctx, seed, p)
	if err != nil {
		return nil, err
	}
	b.seed.Store(seed)
	b.current.Store(d)
	b.events.LogPeriodSelected(ctx, p, seed, d.Revision, d.RecordCount())

	if opts.save && b.store != nil {
		sel := state.Selection{Period: p, Seed: seed, UpdatedAt: b.clock()}
		if err := b.store.Save(ctx, sel); err != nil {
			b.events.LogError(ctx, "Failed to save selection", err, log.ComponentStorage, log.OpSave, log.ErrorTypeDatabase,
				log.NewFields().WithPeriod(p))
		}
	}
	if opts.publish && b.publisher != nil {
		if err := b.publisher.PublishPeriodSelected(ctx, p, seed, d.Revision); err != nil {
			b.events.LogError(ctx, "Failed to publish period selected", err, log.ComponentAMQP, log.OpPublish, log.ErrorTypeNetwork,
				log.NewFields().WithPeriod(p))
		}
	}
	return d, nil
}
