package notifications

import (
	"context"
	"time"

	"cinecore/internal/booking"

	"github.com/google/uuid"
)

// bookingEventPublisher adapts the Kafka producer to the narrow interface
// the booking lifecycle publishes through.
type bookingEventPublisher struct {
	producer TicketEventProducer
}

func NewBookingEventPublisher(producer TicketEventProducer) booking.EventPublisher {
	return &bookingEventPublisher{producer: producer}
}

func (p *bookingEventPublisher) PublishBookingCompleted(ctx context.Context, b *booking.Booking) error {
	event := ticketEventFromBooking(b, TicketEventBookingCompleted)
	event.TicketToken = b.TicketToken
	return p.producer.PublishTicketEvent(ctx, event)
}

func (p *bookingEventPublisher) PublishBookingFailed(ctx context.Context, b *booking.Booking, reason string) error {
	event := ticketEventFromBooking(b, TicketEventBookingFailed)
	event.FailureReason = reason
	return p.producer.PublishTicketEvent(ctx, event)
}

func ticketEventFromBooking(b *booking.Booking, eventType TicketEventType) *TicketEvent {
	return &TicketEvent{
		ID:            uuid.New(),
		Type:          eventType,
		BookingID:     b.ID,
		BookingRef:    b.BookingRef,
		ShowtimeID:    b.ShowtimeID,
		CustomerID:    b.CustomerID,
		CustomerEmail: b.CustomerEmail,
		Seats:         b.SeatLabels(),
		Total:         b.Total,
		OccurredAt:    time.Now(),
	}
}
