package ledger

import (
	"fmt"

	"finboard/internal/core"
)

const (
	minTargetUnits = 1000
	maxTargetUnits = 5000

	minIncomeUnits  = 1000
	maxIncomeUnits  = 5000
	minExpenseUnits = 500
	maxExpenseUnits = 2000
)

// ComputeTargetProgress draws a monthly target and the amount reached so far.
// actual is drawn from [0, target], so it never exceeds the target.
func ComputeTargetProgress(p core.Period, src Source) core.TargetProgress {
	if err := p.Validate(); err != nil {
		panic(fmt.Sprintf("ledger: %v", err))
	}

	target := randomInt(src, minTargetUnits, maxTargetUnits)
	actual := randomInt(src, 0, target)
	previous := randomInt(src, 0, target)
	today := randomInt(src, 0, actual)

	tp := core.TargetProgress{
		Period:          p,
		Target:          core.Units(target),
		Actual:          core.Units(actual),
		PreviousActual:  core.Units(previous),
		Today:           core.Units(today),
		ProgressPercent: core.Ratio(actual, target, 2),
	}
	tp.ChangeVsPreviousMonth = percentChangePtr(tp.Actual, tp.PreviousActual)
	return tp
}

// GenerateAnnualSeries draws one expense and one income figure per month.
func GenerateAnnualSeries(year int, src Source) core.AnnualSeries {
	if err := (core.Period{Year: year, Month: 1}).Validate(); err != nil {
		panic(fmt.Sprintf("ledger: %v", err))
	}

	s := core.AnnualSeries{
		Year:    year,
		Months:  append([]string(nil), core.MonthAbbrevs...),
		Income:  make([]core.Money, 0, 12),
		Expense: make([]core.Money, 0, 12),
	}
	for range 12 {
		s.Expense = append(s.Expense, core.Units(randomInt(src, minExpenseUnits, maxExpenseUnits)))
		s.Income = append(s.Income, core.Units(randomInt(src, minIncomeUnits, maxIncomeUnits)))
	}
	return s
}
