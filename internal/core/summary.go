package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Amount Money  `json:"amount"`
	Count  int    `json:"count"`
}

// AggregateSnapshot compares the totals of a period with the previous one.
// A nil change means the previous total was zero and there is no baseline.
type AggregateSnapshot struct {
	Period               Period   `json:"period"`
	TotalExpense         Money    `json:"totalExpense"`
	TotalRevenue         Money    `json:"totalRevenue"`
	PreviousTotalExpense Money    `json:"previousTotalExpense"`
	PreviousTotalRevenue Money    `json:"previousTotalRevenue"`
	PercentChange        *Percent `json:"percentChange"`
	RevenuePercentChange *Percent `json:"revenuePercentChange"`
}

// Net is revenue minus expense for the period.
func (s AggregateSnapshot) Net() Money {
	return s.TotalRevenue.Sub(s.TotalExpense)
}

// TargetProgress is the monthly target widget data.
type TargetProgress struct {
	Period                Period   `json:"period"`
	Target                Money    `json:"target"`
	Actual                Money    `json:"actual"`
	PreviousActual        Money    `json:"previousActual"`
	Today                 Money    `json:"today"`
	ProgressPercent       Percent  `json:"progressPercent"`
	ChangeVsPreviousMonth *Percent `json:"changeVsPreviousMonth"`
}

// AnnualSeries holds one income and one expense value per month of a year.
type AnnualSeries struct {
	Year    int      `json:"year"`
	Months  []string `json:"months"`
	Income  []Money  `json:"income"`
	Expense []Money  `json:"expense"`
}

// MonthAbbrevs are the short month labels used on chart axes.
var MonthAbbrevs = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
