package http

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"finboard/internal/board"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/widgets"
)

type monthOption struct {
	Value    int
	Label    string
	Selected bool
}

type filterTab struct {
	Label  string
	Href   string
	Active bool
}

type bar struct {
	Label  string
	Value  core.Money
	Height int
}

type statRow struct {
	Label   string
	Income  core.Money
	Expense core.Money
}

type categoryRow struct {
	Name   string
	Amount core.Money
	Share  string
	Width  int
}

type calendarDay struct {
	Day    int
	Events []widgets.CalendarEvent
}

type dashboardView struct {
	Period        core.Period
	IsSelection   bool
	Seed          uint64
	Revision      string
	Months        []monthOption
	Cards         []widgets.MetricCard
	Target        widgets.RadialTarget
	TargetWidth   int
	SpendingBars  []bar
	Statistics    []statRow
	Categories    []categoryRow
	Filters       []filterTab
	Transactions  []core.TransactionRecord
	Calendar      []calendarDay
	Notifications []widgets.Notification
}

// scale returns v as a rounded percentage of max, at least 2 when v is
// positive so small values stay visible.
func scale(v, max int64) int {
	if max <= 0 || v <= 0 {
		return 0
	}
	w := int((v*100 + max/2) / max)
	if w < 2 {
		w = 2
	}
	if w > 100 {
		w = 100
	}
	return w
}

func newDashboardView(d *board.Dashboard, filter widgets.Filter, isSelection bool, now time.Time) dashboardView {
	v := dashboardView{
		Period:        d.Period,
		IsSelection:   isSelection,
		Seed:          d.Seed,
		Revision:      d.Revision,
		Cards:         d.MetricCards(),
		Target:        d.TargetWidget(),
		Transactions:  d.Transactions(filter),
		Notifications: d.Notifications(now, widgets.DefaultNotifications),
	}
	v.TargetWidth = scale(d.Target.Actual.Cents, d.Target.Target.Cents)

	for m := time.January; m <= time.December; m++ {
		v.Months = append(v.Months, monthOption{Value: int(m), Label: m.String(), Selected: m == d.Period.Month})
	}

	var maxSpend int64
	for _, m := range d.Annual.Expense {
		maxSpend = max(maxSpend, m.Cents)
	}
	for i, m := range d.Annual.Expense {
		v.SpendingBars = append(v.SpendingBars, bar{Label: d.Annual.Months[i], Value: m, Height: scale(m.Cents, maxSpend)})
		v.Statistics = append(v.Statistics, statRow{Label: d.Annual.Months[i], Income: d.Annual.Income[i], Expense: m})
	}

	total := d.ExpenseTotals.Total.Cents
	var maxCat int64
	for _, c := range d.ExpenseTotals.ByCategory {
		maxCat = max(maxCat, c.Amount.Cents)
	}
	for _, c := range d.ExpenseTotals.ByCategory {
		v.Categories = append(v.Categories, categoryRow{
			Name:   c.Name,
			Amount: c.Amount,
			Share:  core.Ratio(c.Amount.Cents, total, 1).String() + "%",
			Width:  scale(c.Amount.Cents, maxCat),
		})
	}

	for _, f := range widgets.Filters() {
		q := url.Values{"filter": {string(f)}}
		if !isSelection {
			q.Set("year", strconv.Itoa(d.Period.Year))
			q.Set("month", strconv.Itoa(int(d.Period.Month)))
		}
		v.Filters = append(v.Filters, filterTab{Label: f.Label(), Href: "/?" + q.Encode(), Active: f == filter})
	}

	byDay := make(map[string][]widgets.CalendarEvent)
	for _, e := range d.CalendarEvents() {
		byDay[e.Start] = append(byDay[e.Start], e)
	}
	for day := 1; day <= d.Period.DaysIn(); day++ {
		v.Calendar = append(v.Calendar, calendarDay{Day: day, Events: byDay[d.Period.Day(day).ISO()]})
	}
	return v
}

// handleDashboard renders the page for the selection, or a read-only
// preview when year or month is given.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	filter, err := ParseFilterParam(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := ParsePeriodParams(query, s.fallbackPeriod())
	if err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}
	d, err := s.dashboardFor(r.Context(), p)
	if err != nil {
		writeError(w, r, err, log.OpBuild)
		return
	}
	current, _ := s.board.Lookup()

	var buf bytes.Buffer
	view := newDashboardView(d, filter, current == d, s.clock())
	if err := s.templates.ExecuteTemplate(&buf, "dashboard", view); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Dashboard template execution failed", err,
			log.ComponentTemplate, log.OpRender, log.ErrorTypeInternal, log.NewFields().WithPeriod(p))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
