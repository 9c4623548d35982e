package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHoldExpired is returned when a commit or extension races against the
// hold's TTL and loses.
var ErrHoldExpired = errors.New("seat hold expired")

// SeatConflictError reports every requested seat that already carries a live
// hold or a sold record. Nothing is held when it is returned.
type SeatConflictError struct {
	ShowtimeID string
	Seats      []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats unavailable for showtime %s: %s", e.ShowtimeID, strings.Join(e.Seats, ", "))
}

// IsSeatConflict reports whether err is a SeatConflictError.
func IsSeatConflict(err error) bool {
	var conflict *SeatConflictError
	return errors.As(err, &conflict)
}
