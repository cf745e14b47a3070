package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinYear = 1970
	MaxYear = 9999
)

// Period is a calendar year and month, the unit every aggregate is computed
// over.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod builds a validated period.
func NewPeriod(year int, month time.Month) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	y, m, ok := strings.Cut(s, "-")
	if !ok {
		return Period{}, fmt.Errorf("parse period %q: expected YYYY-MM", s)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, ErrInvalidYear)
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, ErrInvalidMonth)
	}
	return NewPeriod(year, time.Month(month))
}

func (p Period) Validate() error {
	if p.Year < MinYear || p.Year > MaxYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, p.Year)
	}
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, int(p.Month))
	}
	return nil
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// MonthIndex returns the zero-based month (January = 0).
func (p Period) MonthIndex() int {
	return int(p.Month) - 1
}

// DaysIn returns the real length of the month.
func (p Period) DaysIn() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Add shifts the period by n months, rolling over year boundaries.
func (p Period) Add(n int) Period {
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return PeriodOf(t)
}

func (p Period) Previous() Period {
	return p.Add(-1)
}

func (p Period) Next() Period {
	return p.Add(1)
}

// Day returns the given day of the period as a Date.
func (p Period) Day(day int) Date {
	return NewDate(p.Year, p.Month, day)
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label formats the period for display, e.g. "March 2024".
func (p Period) Label() string {
	return p.Month.String() + " " + strconv.Itoa(p.Year)
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(b []byte) error {
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
