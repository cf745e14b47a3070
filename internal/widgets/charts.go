package widgets

import (
	"finboard/internal/core"
	"finboard/internal/ledger"
)

const (
	ChartArea      = "area"
	ChartBar       = "bar"
	ChartPie       = "pie"
	ChartRadialBar = "radialBar"
)

// Series is one named data series of a chart.
type Series struct {
	Name string    `json:"name"`
	Data []float64 `json:"data"`
}

// Chart is the {categories, series} payload every chart widget consumes.
type Chart struct {
	Type       string   `json:"type"`
	Title      string   `json:"title,omitempty"`
	Categories []string `json:"categories"`
	Series     []Series `json:"series"`
}

func floats(ms []core.Money) []float64 {
	out := make([]float64, len(ms))
	for i, m := range ms {
		out[i] = m.Float64()
	}
	return out
}

// AreaStatistics is the yearly income/expense area chart.
func AreaStatistics(a core.AnnualSeries) Chart {
	return Chart{
		Type:       ChartArea,
		Title:      "Statistics",
		Categories: append([]string(nil), a.Months...),
		Series: []Series{
			{Name: "Income", Data: floats(a.Income)},
			{Name: "Expenses", Data: floats(a.Expense)},
		},
	}
}

// BarMonthlyTotals is the monthly spending bar chart of a year.
func BarMonthlyTotals(a core.AnnualSeries) Chart {
	return Chart{
		Type:       ChartBar,
		Title:      "Total Spending",
		Categories: append([]string(nil), a.Months...),
		Series:     []Series{{Name: "Total Spending", Data: floats(a.Expense)}},
	}
}

// PieByCategory splits a month's expenses by category.
func PieByCategory(t ledger.Totals) Chart {
	c := Chart{
		Type:       ChartPie,
		Title:      "Expenses by category",
		Categories: make([]string, 0, len(t.ByCategory)),
		Series:     []Series{{Name: "Expenses", Data: make([]float64, 0, len(t.ByCategory))}},
	}
	for _, ca := range t.ByCategory {
		c.Categories = append(c.Categories, ca.Name)
		c.Series[0].Data = append(c.Series[0].Data, ca.Amount.Float64())
	}
	return c
}
