package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TicketEventType identifies the lifecycle outcome carried by an event.
type TicketEventType string

const (
	TicketEventBookingCompleted TicketEventType = "booking.completed"
	TicketEventBookingFailed    TicketEventType = "booking.failed"
)

// TicketEvent is the message published once a booking reaches a terminal
// state. Downstream consumers send the ticket email and feed reporting.
type TicketEvent struct {
	ID            uuid.UUID       `json:"id"`
	Type          TicketEventType `json:"type"`
	BookingID     uuid.UUID       `json:"booking_id"`
	BookingRef    string          `json:"booking_ref"`
	ShowtimeID    uuid.UUID       `json:"showtime_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	Seats         []string        `json:"seats"`
	Total         float64         `json:"total"`
	TicketToken   string          `json:"ticket_token,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func (e *TicketEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TicketEventFromJSON(data []byte) (*TicketEvent, error) {
	var event TicketEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// GetPartitionKey keeps all events for one booking on one partition so
// consumers see them in order.
func (e *TicketEvent) GetPartitionKey() string {
	return e.BookingID.String()
}
