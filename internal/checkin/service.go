package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinecore/internal/booking"
	"cinecore/internal/catalog"
	"cinecore/pkg/logger"

	"github.com/google/uuid"
)

// Reason explains a denied (or accepted) admission.
type Reason string

const (
	ReasonAdmitted         Reason = "ADMITTED"
	ReasonAlreadyCheckedIn Reason = "ALREADY_CHECKED_IN"
	ReasonTicketExpired    Reason = "TICKET_EXPIRED"
	ReasonTicketNotFound   Reason = "TICKET_NOT_FOUND"
	ReasonNotPaid          Reason = "NOT_PAID"
)

// BookingStore is the slice of booking persistence check-in needs.
type BookingStore interface {
	GetByTicketToken(ctx context.Context, token string) (*booking.Booking, error)
	MarkCheckedIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

// ShowtimeStore resolves the screening a ticket admits to.
type ShowtimeStore interface {
	ShowtimeByID(ctx context.Context, id uuid.UUID) (*catalog.Showtime, error)
}

// Result is the admission decision for one scan.
type Result struct {
	Admitted bool
	Reason   Reason
	Booking  *booking.Booking
	Showtime *catalog.Showtime
}

// Service validates ticket tokens at the door. A token admits exactly once.
type Service interface {
	ValidateTicket(ctx context.Context, token string) (*Result, error)
}

type service struct {
	bookings  BookingStore
	showtimes ShowtimeStore
}

func NewService(bookings BookingStore, showtimes ShowtimeStore) Service {
	return &service{bookings: bookings, showtimes: showtimes}
}

func (s *service) ValidateTicket(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return &Result{Reason: ReasonTicketNotFound}, nil
	}

	b, err := s.bookings.GetByTicketToken(ctx, token)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return &Result{Reason: ReasonTicketNotFound}, nil
		}
		return nil, fmt.Errorf("failed to look up ticket: %w", err)
	}

	result := &Result{Booking: b}

	if b.Status != booking.StatusCompleted {
		result.Reason = ReasonNotPaid
		s.log(ctx, result)
		return result, nil
	}

	showtime, err := s.showtimes.ShowtimeByID(ctx, b.ShowtimeID)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve showtime: %w", err)
	}
	result.Showtime = showtime

	if showtime == nil || showtime.Ended(time.Now()) {
		result.Reason = ReasonTicketExpired
		s.log(ctx, result)
		return result, nil
	}

	if b.CheckedIn {
		result.Reason = ReasonAlreadyCheckedIn
		s.log(ctx, result)
		return result, nil
	}

	// Conditional update: two concurrent scans race here, exactly one wins.
	now := time.Now()
	claimed, err := s.bookings.MarkCheckedIn(ctx, b.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}
	if !claimed {
		result.Reason = ReasonAlreadyCheckedIn
		s.log(ctx, result)
		return result, nil
	}

	b.CheckedIn = true
	b.CheckedInAt = &now
	result.Admitted = true
	result.Reason = ReasonAdmitted
	s.log(ctx, result)
	return result, nil
}

func (s *service) log(ctx context.Context, r *Result) {
	bookingID := ""
	if r.Booking != nil {
		bookingID = r.Booking.ID.String()
	}
	logger.GetDefault().LogCheckIn(ctx, bookingID, r.Admitted, string(r.Reason))
}
