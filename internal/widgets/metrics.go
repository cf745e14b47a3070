package widgets

import (
	"finboard/internal/core"
)

// NoBaseline is shown instead of a percentage when there is nothing to
// compare against.
const NoBaseline = "—"

const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// MetricCard is one of the Expenses / Revenue summary cards.
type MetricCard struct {
	Label       string     `json:"label"`
	Emoji       string     `json:"emoji"`
	Amount      core.Money `json:"amount"`
	Previous    core.Money `json:"previous"`
	ChangeLabel string     `json:"changeLabel"`
	Direction   string     `json:"direction"`
}

// MetricCards builds the expense and revenue cards for a snapshot.
func MetricCards(s core.AggregateSnapshot) []MetricCard {
	return []MetricCard{
		newMetricCard("Expenses", "💸", s.TotalExpense, s.PreviousTotalExpense, s.PercentChange),
		newMetricCard("Revenue", "💰", s.TotalRevenue, s.PreviousTotalRevenue, s.RevenuePercentChange),
	}
}

func newMetricCard(label, emoji string, cur, prev core.Money, change *core.Percent) MetricCard {
	dir := DirectionDown
	if cur.Cents >= prev.Cents {
		dir = DirectionUp
	}
	return MetricCard{
		Label:       label,
		Emoji:       emoji,
		Amount:      cur,
		Previous:    prev,
		ChangeLabel: ChangeLabel(change),
		Direction:   dir,
	}
}

// ChangeLabel formats a change as "12.3%", or NoBaseline when undefined.
func ChangeLabel(p *core.Percent) string {
	if p == nil {
		return NoBaseline
	}
	return p.String() + "%"
}

// SignedChangeLabel formats a change as "+12.3%" or "-4.0%", or NoBaseline
// when undefined.
func SignedChangeLabel(p *core.Percent) string {
	if p == nil {
		return NoBaseline
	}
	if p.IsNegative() {
		return p.String() + "%"
	}
	return "+" + p.String() + "%"
}

// RadialTarget is the monthly target widget.
type RadialTarget struct {
	Chart       Chart      `json:"chart"`
	Progress    string     `json:"progress"`
	ChangeLabel string     `json:"changeLabel"`
	Direction   string     `json:"direction"`
	Target      core.Money `json:"target"`
	Actual      core.Money `json:"actual"`
	Today       core.Money `json:"today"`
	Summary     string     `json:"summary"`
}

// NewRadialTarget builds the radial chart and stats for a target progress.
func NewRadialTarget(tp core.TargetProgress) RadialTarget {
	dir := DirectionUp
	if tp.ChangeVsPreviousMonth != nil && tp.ChangeVsPreviousMonth.IsNegative() {
		dir = DirectionDown
	}
	return RadialTarget{
		Chart: Chart{
			Type:       ChartRadialBar,
			Categories: []string{"Progress"},
			Series:     []Series{{Name: "Progress", Data: []float64{tp.ProgressPercent.Float64()}}},
		},
		Progress:    tp.ProgressPercent.String() + "%",
		ChangeLabel: SignedChangeLabel(tp.ChangeVsPreviousMonth),
		Direction:   dir,
		Target:      tp.Target,
		Actual:      tp.Actual,
		Today:       tp.Today,
		Summary:     "You've achieved " + tp.Actual.String() + " of your " + tp.Target.String() + " target this month.",
	}
}
