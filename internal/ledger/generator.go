// Package ledger generates synthetic transaction records for a month and
// derives the aggregates the dashboard shows from them.
//
// Every function is pure over its inputs: the same period, kind and source
// state always produce the same output. Invalid periods or kinds are
// programming errors and panic; callers validate user input first.
package ledger

import (
	"fmt"

	"finboard/internal/core"
)

const (
	minRecords = 3
	maxRecords = 7

	minExpenseCents = 500
	maxExpenseCents = 20500
	minRevenueCents = 100000
	maxRevenueCents = 400000
)

// Totals is the result of aggregating a record set.
type Totals struct {
	Total      core.Money            `json:"total"`
	ByCategory []core.CategoryAmount `json:"byCategory"`
}

// MonthLedger holds both record sets of one period.
type MonthLedger struct {
	Period   core.Period              `json:"period"`
	Expenses []core.TransactionRecord `json:"expenses"`
	Revenues []core.TransactionRecord `json:"revenues"`
}

// Records returns the records of kind k.
func (m MonthLedger) Records(k core.Kind) []core.TransactionRecord {
	if k == core.Revenue {
		return m.Revenues
	}
	return m.Expenses
}

func mustValid(p core.Period, k core.Kind) {
	if err := p.Validate(); err != nil {
		panic(fmt.Sprintf("ledger: %v", err))
	}
	if err := k.Validate(); err != nil {
		panic(fmt.Sprintf("ledger: %v", err))
	}
}

func amountRange(k core.Kind) (int64, int64) {
	if k == core.Revenue {
		return minRevenueCents, maxRevenueCents
	}
	return minExpenseCents, maxExpenseCents
}

// GenerateRecords produces between 3 and 7 records of kind k dated inside p.
// Categories cycle through a shuffled copy of the kind's pool before
// repeating.
func GenerateRecords(p core.Period, k core.Kind, src Source) []core.TransactionRecord {
	mustValid(p, k)

	count := int(randomInt(src, minRecords, maxRecords))
	pool := core.Pool(k)
	src.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	days := int64(p.DaysIn())
	lo, hi := amountRange(k)

	records := make([]core.TransactionRecord, 0, count)
	for i := 0; i < count; i++ {
		cat := pool[i%len(pool)]
		day := int(randomInt(src, 1, days))
		amount := core.Money{Cents: randomInt(src, lo, hi)}

		records = append(records, core.TransactionRecord{
			ID:         recordID(p, day, i),
			Name:       cat.Name + " " + k.NameSuffix(),
			Category:   cat.Name,
			Icon:       cat.Icon,
			Kind:       k,
			Amount:     amount,
			OccurredOn: p.Day(day),
			Source:     core.GeneratedSource,
		})
	}
	return records
}

// recordID is year*100000 + monthIndex*1000 + day*10 + index. Expense and
// revenue records of the same period can share an id.
func recordID(p core.Period, day, index int) int64 {
	return int64(p.Year)*100000 + int64(p.MonthIndex())*1000 + int64(day)*10 + int64(index)
}

// Aggregate sums the records. ByCategory keeps first-appearance order.
func Aggregate(records []core.TransactionRecord) Totals {
	var t Totals
	pos := make(map[string]int)
	for _, r := range records {
		t.Total = t.Total.Add(r.Amount)
		i, ok := pos[r.Category]
		if !ok {
			i = len(t.ByCategory)
			pos[r.Category] = i
			t.ByCategory = append(t.ByCategory, core.CategoryAmount{Name: r.Category, Icon: r.Icon})
		}
		t.ByCategory[i].Amount = t.ByCategory[i].Amount.Add(r.Amount)
		t.ByCategory[i].Count++
	}
	return t
}

// PercentChange returns (current-previous)/previous*100 rounded to one
// decimal. ok is false when previous is zero: there is no baseline.
func PercentChange(current, previous core.Money) (core.Percent, bool) {
	if previous.IsZero() {
		return core.Percent{}, false
	}
	return core.Ratio(current.Cents-previous.Cents, previous.Cents, 1), true
}

// percentChangePtr adapts PercentChange to the nil-means-undefined fields of
// the snapshot types.
func percentChangePtr(current, previous core.Money) *core.Percent {
	pc, ok := PercentChange(current, previous)
	if !ok {
		return nil
	}
	return &pc
}

// GenerateMonth draws the expense records then the revenue records of p from
// src.
func GenerateMonth(p core.Period, src Source) MonthLedger {
	return MonthLedger{
		Period:   p,
		Expenses: GenerateRecords(p, core.Expense, src),
		Revenues: GenerateRecords(p, core.Revenue, src),
	}
}

// MonthFor generates the ledger of p from the seed, with one stream per
// kind. It is the ledger the dashboard shows for p, so the previous-month
// figures of one period match what the month before actually displays.
func MonthFor(seed uint64, p core.Period) MonthLedger {
	return MonthLedger{
		Period:   p,
		Expenses: GenerateRecords(p, core.Expense, SourceFor(seed, p, StreamExpense)),
		Revenues: GenerateRecords(p, core.Revenue, SourceFor(seed, p, StreamRevenue)),
	}
}

// Summarize compares two ledgers. previous is normally the ledger of
// current.Period.Previous().
func Summarize(current, previous MonthLedger) core.AggregateSnapshot {
	exp := Aggregate(current.Expenses).Total
	rev := Aggregate(current.Revenues).Total
	prevExp := Aggregate(previous.Expenses).Total
	prevRev := Aggregate(previous.Revenues).Total

	return core.AggregateSnapshot{
		Period:               current.Period,
		TotalExpense:         exp,
		TotalRevenue:         rev,
		PreviousTotalExpense: prevExp,
		PreviousTotalRevenue: prevRev,
		PercentChange:        percentChangePtr(exp, prevExp),
		RevenuePercentChange: percentChangePtr(rev, prevRev),
	}
}

// ComputeSnapshot generates p and the month before it from one source and
// summarizes them. The month before the first supported period is empty.
func ComputeSnapshot(p core.Period, src Source) core.AggregateSnapshot {
	current := GenerateMonth(p, src)
	previous := MonthLedger{Period: p.Previous()}
	if previous.Period.Validate() == nil {
		previous = GenerateMonth(previous.Period, src)
	}
	return Summarize(current, previous)
}
