package board

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/widgets"
)

// Dashboard is every widget's data for one (seed, period). It is immutable
// once built; a period change builds a new one.
type Dashboard struct {
	Revision      string                   `json:"revision"`
	Seed          uint64                   `json:"seed"`
	Period        core.Period              `json:"period"`
	Expenses      []core.TransactionRecord `json:"expenses"`
	Revenues      []core.TransactionRecord `json:"revenues"`
	ExpenseTotals ledger.Totals            `json:"expenseTotals"`
	RevenueTotals ledger.Totals            `json:"revenueTotals"`
	Snapshot      core.AggregateSnapshot   `json:"snapshot"`
	Target        core.TargetProgress      `json:"target"`
	Annual        core.AnnualSeries        `json:"annual"`
	GeneratedAt   time.Time                `json:"generatedAt"`
}

// Build generates the dashboard for p. Each part draws from its own stream
// derived from seed, so the result does not depend on scheduling.
func Build(ctx context.Context, seed uint64, p core.Period, now time.Time) (*Dashboard, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		current, previous ledger.MonthLedger
		target            core.TargetProgress
		annual            core.AnnualSeries
	)
	previous.Period = p.Previous()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		current = ledger.MonthFor(seed, p)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if previous.Period.Validate() == nil {
			previous = ledger.MonthFor(seed, previous.Period)
		}
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		target = ledger.ComputeTargetProgress(p, ledger.SourceFor(seed, p, ledger.StreamTarget))
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		annual = ledger.GenerateAnnualSeries(p.Year, ledger.YearSource(seed, p.Year, ledger.StreamAnnual))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{
		Revision:      uuid.NewString(),
		Seed:          seed,
		Period:        p,
		Expenses:      current.Expenses,
		Revenues:      current.Revenues,
		ExpenseTotals: ledger.Aggregate(current.Expenses),
		RevenueTotals: ledger.Aggregate(current.Revenues),
		Snapshot:      ledger.Summarize(current, previous),
		Target:        target,
		Annual:        annual,
		GeneratedAt:   now,
	}, nil
}

// RecordCount is the number of generated records of both kinds.
func (d *Dashboard) RecordCount() int {
	return len(d.Expenses) + len(d.Revenues)
}

func (d *Dashboard) Transactions(f widgets.Filter) []core.TransactionRecord {
	return widgets.TransactionList(d.Expenses, d.Revenues, f)
}

func (d *Dashboard) MetricCards() []widgets.MetricCard {
	return widgets.MetricCards(d.Snapshot)
}

func (d *Dashboard) TargetWidget() widgets.RadialTarget {
	return widgets.NewRadialTarget(d.Target)
}

func (d *Dashboard) StatisticsChart() widgets.Chart {
	return widgets.AreaStatistics(d.Annual)
}

func (d *Dashboard) SpendingChart() widgets.Chart {
	return widgets.BarMonthlyTotals(d.Annual)
}

func (d *Dashboard) CategoryChart() widgets.Chart {
	return widgets.PieByCategory(d.ExpenseTotals)
}

// CalendarEvents lists expenses then revenues.
func (d *Dashboard) CalendarEvents() []widgets.CalendarEvent {
	all := make([]core.TransactionRecord, 0, d.RecordCount())
	all = append(all, d.Expenses...)
	all = append(all, d.Revenues...)
	return widgets.CalendarEvents(all)
}

func (d *Dashboard) Notifications(now time.Time, n int) []widgets.Notification {
	return widgets.Notifications(d.Expenses, d.Revenues, now, n)
}
