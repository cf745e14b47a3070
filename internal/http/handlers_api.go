package http

import (
	"context"
	"net/http"
	"time"

	"finboard/internal/board"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/state"
	"finboard/internal/widgets"
)

type periodResponse struct {
	Period    core.Period `json:"period"`
	Year      int         `json:"year"`
	Month     int         `json:"month"`
	Label     string      `json:"label"`
	Seed      uint64      `json:"seed"`
	Revision  string      `json:"revision,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func newPeriodResponse(d *board.Dashboard) periodResponse {
	return periodResponse{
		Period:    d.Period,
		Year:      d.Period.Year,
		Month:     int(d.Period.Month),
		Label:     d.Period.Label(),
		Seed:      d.Seed,
		Revision:  d.Revision,
		UpdatedAt: d.GeneratedAt,
	}
}

// fallbackPeriod is the selected period, or the clock's month before any
// selection.
func (s *Server) fallbackPeriod() core.Period {
	if sel, ok := s.board.Selection(); ok {
		return sel.Period
	}
	return core.PeriodOf(s.clock())
}

// dashboardFor resolves the period named by the query and returns its
// dashboard. The current selection is served without rebuilding.
func (s *Server) dashboardFor(ctx context.Context, p core.Period) (*board.Dashboard, error) {
	if d, ok := s.board.Lookup(); ok && d.Period == p {
		return d, nil
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	return s.board.Dashboard(ctx, p)
}

func (s *Server) queryDashboard(w http.ResponseWriter, r *http.Request) (*board.Dashboard, bool) {
	p, err := ParsePeriodParams(r.URL.Query(), s.fallbackPeriod())
	if err != nil {
		writeError(w, r, err, log.OpParse)
		return nil, false
	}
	d, err := s.dashboardFor(r.Context(), p)
	if err != nil {
		writeError(w, r, err, log.OpBuild)
		return nil, false
	}
	return d, true
}

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	d, ok := s.board.Lookup()
	if !ok {
		writeError(w, r, board.ErrNoSelection, log.OpLoad)
		return
	}
	NewJSONResponse().Data(newPeriodResponse(d)).Write(w)
}

func (s *Server) handleSelectPeriod(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		writeError(w, r, err, log.OpParse)
		return
	}
	p, err := ParsePeriodParams(parser.Values("year", "month"), s.fallbackPeriod())
	if err != nil {
		writeError(w, r, err, log.OpParse)
		return
	}

	d, err := s.board.Select(r.Context(), p)
	if err != nil {
		writeError(w, r, err, log.OpSelect)
		return
	}
	s.respondSelection(w, r, d)
}

func (s *Server) handleShiftPeriod(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		writeError(w, r, err, log.OpParse)
		return
	}
	delta, err := ParseDelta(parser.Get("delta"))
	if err != nil {
		writeError(w, r, err, log.OpParse)
		return
	}

	d, err := s.board.Shift(r.Context(), delta)
	if err != nil {
		writeError(w, r, err, log.OpShift)
		return
	}
	s.respondSelection(w, r, d)
}

// respondSelection sends browsers back to the page and API clients the new
// selection.
func (s *Server) respondSelection(w http.ResponseWriter, r *http.Request, d *board.Dashboard) {
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	NewJSONResponse().Data(newPeriodResponse(d)).Write(w)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimitParam(r.URL.Query(), state.DefaultHistoryLimit, MaxHistory)
	if err != nil {
		writeError(w, r, err, log.OpParse)
		return
	}
	items := []state.Selection{}
	if s.historian != nil {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		if items, err = s.historian.History(ctx, limit); err != nil {
			writeError(w, r, err, log.OpLoad)
			return
		}
	}
	NewJSONResponse().Data(map[string]any{"items": items}).Write(w)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilterParam(r.URL.Query())
	if err != nil {
		writeError(w, r, err, log.OpParse)
		return
	}
	d, ok := s.queryDashboard(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Data(map[string]any{
		"period":  d.Period,
		"filter":  filter,
		"filters": widgets.Filters(),
		"items":   d.Transactions(filter),
	}).Write(w)
}

func (s *Server) handleMetricCards(w http.ResponseWriter, r *http.Request) {
	d, ok := s.queryDashboard(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Data(map[string]any{
		"period":   d.Period,
		"cards":    d.MetricCards(),
		"snapshot": d.Snapshot,
		"net":      d.Snapshot.Net(),
	}).Write(w)
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	d, ok := s.queryDashboard(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Data(map[string]any{
		"period": d.Period,
		"target": d.Target,
		"widget": d.TargetWidget(),
	}).Write(w)
}

// yearDashboard serves the annual widgets, which depend only on the year.
func (s *Server) yearDashboard(w http.ResponseWriter, r *http.Request) (*board.Dashboard, bool) {
	fallback := s.fallbackPeriod()
	year, err := ParseYearParam(r.URL.Query(), fallback.Year)
	if err != nil {
		writeError(w, r, err, log.OpParse)
		return nil, false
	}
	d, err := s.dashboardFor(r.Context(), core.Period{Year: year, Month: fallback.Month})
	if err != nil {
		writeError(w, r, err, log.OpBuild)
		return nil, false
	}
	return d, true
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	d, ok := s.yearDashboard(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Data(map[string]any{
		"year":   d.Period.Year,
		"annual": d.Annual,
		"chart":  d.StatisticsChart(),
	}).Write(w)
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	d, ok := s.yearDashboard(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Data(map[string]any{
		"year":  d.Period.Year,
		"chart": d.SpendingChart(),
	}).Write(w)
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	d, ok := s.queryDashboard(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Data(map[string]any{
		"period":     d.Period,
		"chart":      d.CategoryChart(),
		"categories": d.ExpenseTotals.ByCategory,
	}).Write(w)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	d, ok := s.queryDashboard(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Data(map[string]any{
		"period": d.Period,
		"events": d.CalendarEvents(),
	}).Write(w)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimitParam(r.URL.Query(), widgets.DefaultNotifications, MaxNotifications)
	if err != nil {
		writeError(w, r, err, log.OpParse)
		return
	}
	d, ok := s.queryDashboard(w, r)
	if !ok {
		return
	}
	NewJSONResponse().Data(map[string]any{
		"period": d.Period,
		"items":  d.Notifications(s.clock(), limit),
	}).Write(w)
}
