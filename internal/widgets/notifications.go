package widgets

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"finboard/internal/core"
)

// DefaultNotifications is the feed length when no limit is given.
const DefaultNotifications = 5

// Notification is one entry of the header notification dropdown.
type Notification struct {
	ID       int64      `json:"id"`
	Kind     core.Kind  `json:"kind"`
	Category string     `json:"category"`
	Icon     string     `json:"icon"`
	Message  string     `json:"message"`
	Amount   core.Money `json:"amount"`
	Date     core.Date  `json:"date"`
	When     string     `json:"when"`
}

// Notifications returns the n most recent records, newest first. Ties on the
// date keep expenses before revenues and then generation order.
func Notifications(expenses, revenues []core.TransactionRecord, now time.Time, n int) []Notification {
	if n <= 0 {
		n = DefaultNotifications
	}
	all := make([]core.TransactionRecord, 0, len(expenses)+len(revenues))
	all = append(all, expenses...)
	all = append(all, revenues...)
	slices.SortStableFunc(all, func(a, b core.TransactionRecord) int {
		return cmp.Compare(b.OccurredOn.Unix(), a.OccurredOn.Unix())
	})
	if len(all) > n {
		all = all[:n]
	}

	out := make([]Notification, 0, len(all))
	for _, r := range all {
		verb := "spent on"
		if r.Kind == core.Revenue {
			verb = "received from"
		}
		out = append(out, Notification{
			ID:       r.ID,
			Kind:     r.Kind,
			Category: r.Category,
			Icon:     r.Icon,
			Message:  r.Amount.String() + " " + verb + " " + r.Category,
			Amount:   r.Amount,
			Date:     r.OccurredOn,
			When:     RelativeDay(r.OccurredOn, now),
		})
	}
	return out
}

// RelativeDay describes d relative to the calendar day of now.
func RelativeDay(d core.Date, now time.Time) string {
	today := core.NewDate(now.Year(), now.Month(), now.Day())
	days := int(today.Sub(d.Time).Hours() / 24)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1:
		return strconv.Itoa(days) + " days ago"
	case days == -1:
		return "Tomorrow"
	}
	return "in " + strconv.Itoa(-days) + " days"
}
