package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds indexes the workers and check-in path rely on.
// Seat uniqueness itself is enforced in Redis at hold time.
func MigrateConstraints(db *gorm.DB) error {
	// Reconciliation and expiry workers scan by status and deadline.
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_status_expires_at
		ON bookings (status, expires_at);
	`).Error
	if err != nil {
		return err
	}

	// Seat lookups when rendering a booking or auditing a showtime.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_booking_seats_booking_label
		ON booking_seats (booking_id, label);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
