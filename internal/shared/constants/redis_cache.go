package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTL values for the ticketing core.
// Pattern: cinecore:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_THEATER_LAYOUT  = 4 * time.Hour    // authored layouts change rarely
	TTL_SHOWTIME_DETAIL = 2 * time.Hour    // schedule data
	TTL_SEAT_MAP        = 30 * time.Second // live seat availability
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "cinecore"

	CACHE_KEY_THEATER_LAYOUT = CACHE_PREFIX + ":catalog:theater:"   // + theater-id
	CACHE_KEY_SHOWTIME       = CACHE_PREFIX + ":catalog:showtime:"  // + showtime-id
	CACHE_KEY_SEAT_MAP       = CACHE_PREFIX + ":inventory:seatmap:" // + showtime-id
)

// ================== KEY BUILDERS ==================

func BuildTheaterKey(theaterID string) string {
	return CACHE_KEY_THEATER_LAYOUT + theaterID
}

func BuildShowtimeKey(showtimeID string) string {
	return CACHE_KEY_SHOWTIME + showtimeID
}

func BuildSeatMapKey(showtimeID string) string {
	return fmt.Sprintf("%s%s", CACHE_KEY_SEAT_MAP, showtimeID)
}
