// Package core provides the finboard domain model.
//
// This file holds the money and percentage value types. Amounts are integer
// cents so that totals are exact sums of their line items; percentages are
// decimals rounded to a fixed number of places.
package core

import (
	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// Units builds Money from a whole-unit amount (e.g. dollars).
func Units(n int64) Money {
	return Money{Cents: n * 100}
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Decimal returns the amount in units as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float64 returns the amount in units for chart payloads.
// Use cents for calculations.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

// String formats the amount as "$1234.56".
func (m Money) String() string {
	if m.Cents < 0 {
		return "-$" + Money{Cents: -m.Cents}.Decimal().StringFixed(2)
	}
	return "$" + m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	m.Cents = d.Mul(hundred).Round(0).IntPart()
	return nil
}

// Percent is a percentage rounded to a fixed number of decimal places.
type Percent struct {
	value  decimal.Decimal
	places int32
}

// NewPercent rounds d (half away from zero) to places decimals.
func NewPercent(d decimal.Decimal, places int32) Percent {
	return Percent{value: d.Round(places), places: places}
}

// Ratio returns num/den*100 rounded to places. den must be non-zero.
func Ratio(num, den int64, places int32) Percent {
	v := decimal.NewFromInt(num).Mul(hundred).Div(decimal.NewFromInt(den))
	return NewPercent(v, places)
}

func (p Percent) Decimal() decimal.Decimal {
	return p.value
}

func (p Percent) Float64() float64 {
	return p.value.InexactFloat64()
}

func (p Percent) IsNegative() bool {
	return p.value.IsNegative()
}

// Equal compares the rounded value with s, e.g. p.Equal("50.0").
func (p Percent) Equal(s string) bool {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return p.value.Equal(d)
}

func (p Percent) String() string {
	return p.value.StringFixed(p.places)
}

func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}
