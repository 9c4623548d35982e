package database

import (
	"cinecore/internal/booking"
	"cinecore/internal/catalog"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Theater{},
		&catalog.Showtime{},
		&catalog.Combo{},
		&catalog.Voucher{},
		&booking.Booking{},
		&booking.BookingSeat{},
		&booking.BookingCombo{},
	)
}
