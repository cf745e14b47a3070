package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense Kind = "expense"
	Revenue Kind = "revenue"
)

// GeneratedSource is the source label attached to every synthetic record.
const GeneratedSource = "Auto-Generated"

type (
	// Kind classifies a transaction as expense or revenue.
	Kind string

	Date struct {
		time.Time
	}

	Category struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}

	// TransactionRecord is a single synthetic ledger line. Records are never
	// mutated after generation.
	TransactionRecord struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		Category   string `json:"category"`
		Icon       string `json:"icon"`
		Kind       Kind   `json:"kind"`
		Amount     Money  `json:"amount"`
		OccurredOn Date   `json:"occurredOn"`
		Source     string `json:"source"`
	}
)

var (
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidFilter = errors.New("invalid filter")
)

var (
	expenseCategories = []Category{
		{Name: "Groceries", Icon: "🥦"},
		{Name: "Dining", Icon: "🍽️"},
		{Name: "Transport", Icon: "🚕"},
		{Name: "Utilities", Icon: "🔌"},
		{Name: "Shopping", Icon: "🛍️"},
	}
	revenueCategories = []Category{
		{Name: "Salary", Icon: "💰"},
		{Name: "Stocks", Icon: "📈"},
		{Name: "Crypto", Icon: "🪙"},
		{Name: "Dividends", Icon: "💵"},
	}
)

// Kinds returns every supported kind in display order.
func Kinds() []Kind {
	return []Kind{Expense, Revenue}
}

func (k Kind) Validate() error {
	switch k {
	case Expense, Revenue:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
}

// NameSuffix is appended to the category name to build a record name.
func (k Kind) NameSuffix() string {
	if k == Revenue {
		return "Income"
	}
	return "Purchase"
}

func (k Kind) String() string {
	return string(k)
}

// Pool returns a copy of the category pool for the kind. It returns nil for
// an unknown kind.
func Pool(k Kind) []Category {
	var src []Category
	switch k {
	case Expense:
		src = expenseCategories
	case Revenue:
		src = revenueCategories
	default:
		return nil
	}
	out := make([]Category, len(src))
	copy(out, src)
	return out
}

// InPool reports whether the named category belongs to the pool of kind k.
func InPool(k Kind, name string) bool {
	for _, c := range Pool(k) {
		if c.Name == name {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Period returns the period the date falls in.
func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: d.Month()}
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Label formats the date for display, e.g. "17 April 2025".
func (d Date) Label() string {
	return d.Format("2 January 2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (r TransactionRecord) Validate() error {
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if err := r.OccurredOn.Validate(); err != nil {
		return err
	}
	if r.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !InPool(r.Kind, r.Category) {
		return fmt.Errorf("category %q not in %s pool", r.Category, r.Kind)
	}
	return nil
}
