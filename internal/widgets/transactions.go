// Package widgets turns generated ledger data into the payloads each
// dashboard widget renders: chart series, metric cards, calendar events,
// transaction lists and the notification feed.
package widgets

import (
	"fmt"
	"strings"

	"finboard/internal/core"
)

// Filter selects which records the transaction list shows.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterExpense Filter = "expense"
	FilterRevenue Filter = "revenue"
)

// MaxAllItems caps the "all" view of the transaction list.
const MaxAllItems = 7

// Filters returns the filters in tab order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterRevenue, FilterExpense}
}

// ParseFilter parses a filter name. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterExpense, FilterRevenue:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidFilter, s)
}

// Label is the tab title of the filter.
func (f Filter) Label() string {
	switch f {
	case FilterRevenue:
		return "Revenue"
	case FilterExpense:
		return "Expenses"
	}
	return "All"
}

// TransactionList returns the records visible under filter f. The all view
// lists expenses then revenues and keeps the first MaxAllItems. The result
// never aliases the input slices.
func TransactionList(expenses, revenues []core.TransactionRecord, f Filter) []core.TransactionRecord {
	out := make([]core.TransactionRecord, 0, len(expenses)+len(revenues))
	if f == FilterAll || f == FilterExpense {
		out = append(out, expenses...)
	}
	if f == FilterAll || f == FilterRevenue {
		out = append(out, revenues...)
	}
	if f == FilterAll && len(out) > MaxAllItems {
		out = out[:MaxAllItems]
	}
	return out
}
