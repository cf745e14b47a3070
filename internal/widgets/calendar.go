package widgets

import (
	"strconv"

	"finboard/internal/core"
)

const (
	ColorDanger  = "danger"
	ColorSuccess = "success"
	ColorWarning = "warning"
)

// CalendarEvent is an all-day calendar entry.
type CalendarEvent struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Start    string     `json:"start"`
	End      string     `json:"end"`
	ColorTag string     `json:"colorTag"`
	Spend    core.Money `json:"spend"`
}

// ColorTag maps a kind to the calendar colour.
func ColorTag(k core.Kind) string {
	switch k {
	case core.Expense:
		return ColorDanger
	case core.Revenue:
		return ColorSuccess
	}
	return ColorWarning
}

// CalendarEvents returns one event per record, in record order. Ids are
// prefixed with the kind because expense and revenue ids can collide.
func CalendarEvents(records []core.TransactionRecord) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(records))
	for _, r := range records {
		day := r.OccurredOn.ISO()
		out = append(out, CalendarEvent{
			ID:       string(r.Kind) + "-" + strconv.FormatInt(r.ID, 10),
			Title:    r.Icon + " " + r.Name,
			Start:    day,
			End:      day,
			ColorTag: ColorTag(r.Kind),
			Spend:    r.Amount,
		})
	}
	return out
}
