package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrSeatsRequired rejects a booking with an empty seat set.
	ErrSeatsRequired = errors.New("at least one seat is required")

	// ErrInvalidVoucher rejects booking creation when the voucher is unknown,
	// inactive, outside its window, or below its minimum purchase.
	ErrInvalidVoucher = errors.New("voucher is invalid or not applicable")

	// ErrBookingNotFound is returned for unknown booking ids.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidTransition is returned when a lifecycle action is not legal
	// from the booking's current state.
	ErrInvalidTransition = errors.New("invalid booking state transition")

	// ErrInvalidSeats rejects seat selections the layout cannot satisfy,
	// such as disabled seats or seats outside the hall.
	ErrInvalidSeats = errors.New("invalid seat selection")

	// ErrUnknownCombo rejects combo lines referencing missing or inactive combos.
	ErrUnknownCombo = errors.New("unknown or inactive combo")

	// ErrShowtimeOver rejects bookings for screenings that already ended.
	ErrShowtimeOver = errors.New("showtime has already ended")
)

func invalidTransition(from Status, action string) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, from)
}
