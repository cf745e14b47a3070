package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finboard/internal/core"
)

// PeriodSelectedMessage announces that a dashboard switched to a period.
// Listeners regenerate the same data from year, month and seed. Origin is
// the publishing instance, so it can ignore its own announcements.
type PeriodSelectedMessage struct {
	ID        string    `json:"id"`
	Origin    string    `json:"origin,omitempty"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Seed      uint64    `json:"seed"`
	Revision  string    `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPeriodSelectedMessage stamps a new message with a random id.
func NewPeriodSelectedMessage(p core.Period, seed uint64, revision string) *PeriodSelectedMessage {
	return &PeriodSelectedMessage{
		ID:        uuid.NewString(),
		Year:      p.Year,
		Month:     int(p.Month),
		Seed:      seed,
		Revision:  revision,
		Timestamp: time.Now().UTC(),
	}
}

// Period returns the validated period the message carries.
func (m *PeriodSelectedMessage) Period() (core.Period, error) {
	return core.NewPeriod(m.Year, time.Month(m.Month))
}

func (m *PeriodSelectedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PeriodSelectedMessageFromJSON decodes and validates a message body.
func PeriodSelectedMessageFromJSON(data []byte) (*PeriodSelectedMessage, error) {
	var msg PeriodSelectedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}
	if _, err := msg.Period(); err != nil {
		return nil, err
	}
	return &msg, nil
}
