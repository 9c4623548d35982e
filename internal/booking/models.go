package booking

import (
	"time"

	"github.com/google/uuid"
)

// Booking is the durable record of one reservation and its settlement.
// The seat set is immutable after creation; changing seats means
// cancel-and-recreate.
type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingRef string    `gorm:"unique;not null" json:"booking_ref"`
	ShowtimeID uuid.UUID `gorm:"type:uuid;index;not null" json:"showtime_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index" json:"customer_id"`
	// CustomerEmail is captured at creation for ticket delivery.
	CustomerEmail string `json:"customer_email,omitempty"`
	HoldID        string `gorm:"type:varchar(64)" json:"-"`

	Subtotal    float64 `gorm:"not null" json:"subtotal"`
	Discount    float64 `gorm:"not null" json:"discount"`
	Total       float64 `gorm:"not null" json:"total"`
	VoucherCode string  `json:"voucher_code,omitempty"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(10);check:payment_method IN ('ONLINE', 'CASH');not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"payment_status"`
	Status        Status        `gorm:"type:varchar(30);index;default:'PENDING'" json:"status"`
	FailureReason string        `json:"failure_reason,omitempty"`

	GatewayRef string `gorm:"index" json:"gateway_ref,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`

	TicketToken string     `gorm:"uniqueIndex" json:"ticket_token,omitempty"`
	CheckedIn   bool       `gorm:"default:false" json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`

	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// Relationships
	Seats  []BookingSeat  `json:"seats,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
	Combos []BookingCombo `json:"combos,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// BookingSeat is one physical seat on a booking. For a couple pair the lead
// seat carries the pair's unit price and its partner carries zero, so the
// per-seat prices always sum to the seat portion of the subtotal.
type BookingSeat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	Row       string    `gorm:"not null" json:"row"`
	Number    int       `gorm:"not null" json:"number"`
	Label     string    `gorm:"not null" json:"label"`
	Category  string    `gorm:"type:varchar(10);not null" json:"category"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
}

// BookingCombo is one combo line on a booking.
type BookingCombo struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	ComboID   uuid.UUID `gorm:"type:uuid;not null" json:"combo_id"`
	Name      string    `json:"name"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
}

func (Booking) TableName() string      { return "bookings" }
func (BookingSeat) TableName() string  { return "booking_seats" }
func (BookingCombo) TableName() string { return "booking_combos" }

// IsOverdue reports whether a non-terminal booking has outlived its window.
func (b *Booking) IsOverdue(now time.Time) bool {
	return !b.Status.IsTerminal() && b.ExpiresAt != nil && now.After(*b.ExpiresAt)
}

// SeatLabels returns the labels of every booked seat.
func (b *Booking) SeatLabels() []string {
	labels := make([]string, 0, len(b.Seats))
	for _, s := range b.Seats {
		labels = append(labels, s.Label)
	}
	return labels
}
