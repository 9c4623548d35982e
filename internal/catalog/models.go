package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"cinecore/internal/layout"
	"cinecore/internal/pricing"

	"github.com/google/uuid"
)

// Theater carries the authored seat layout for one auditorium. The layout is
// produced by an external authoring tool and is read-only here.
type Theater struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BranchID   uuid.UUID `gorm:"type:uuid;index" json:"branch_id"`
	Name       string    `gorm:"not null" json:"name"`
	LayoutJSON []byte    `gorm:"type:jsonb;not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Theater) TableName() string {
	return "theaters"
}

// Layout decodes and validates the authored seat geometry.
func (t *Theater) Layout() (*layout.SeatLayout, error) {
	var l layout.SeatLayout
	if err := json.Unmarshal(t.LayoutJSON, &l); err != nil {
		return nil, fmt.Errorf("failed to decode seat layout for theater %s: %w", t.ID, err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seat layout for theater %s: %w", t.ID, err)
	}
	return &l, nil
}

// Showtime is one scheduled screening with its per-category price table.
type Showtime struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TheaterID     uuid.UUID `gorm:"type:uuid;index;not null" json:"theater_id"`
	MovieID       uuid.UUID `gorm:"type:uuid;index;not null" json:"movie_id"`
	StartTime     time.Time `gorm:"index;not null" json:"start_time"`
	EndTime       time.Time `gorm:"not null" json:"end_time"`
	StandardPrice float64   `gorm:"not null" json:"standard_price"`
	VIPPrice      float64   `gorm:"not null" json:"vip_price"`
	CouplePrice   float64   `gorm:"not null" json:"couple_price"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Showtime) TableName() string {
	return "showtimes"
}

// PriceTable returns the showtime prices in the shape the pricing engine
// consumes.
func (s *Showtime) PriceTable() pricing.PriceTable {
	return pricing.PriceTable{
		Standard: s.StandardPrice,
		VIP:      s.VIPPrice,
		Couple:   s.CouplePrice,
	}
}

// Ended reports whether the screening has finished.
func (s *Showtime) Ended(now time.Time) bool {
	return now.After(s.EndTime)
}

// Combo is a purchasable food/drink bundle.
type Combo struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Price     float64   `gorm:"not null" json:"price"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Combo) TableName() string {
	return "combos"
}

// Voucher is a discount code. Application rules live in the pricing engine;
// this is only the stored record.
type Voucher struct {
	Code          string    `gorm:"primaryKey" json:"code"`
	DiscountType  string    `gorm:"type:varchar(20);check:discount_type IN ('PERCENTAGE', 'FIXED');not null" json:"discount_type"`
	DiscountValue float64   `gorm:"not null" json:"discount_value"`
	MinPurchase   float64   `gorm:"default:0" json:"min_purchase"`
	MaxDiscount   float64   `gorm:"default:0" json:"max_discount"`
	StartDate     time.Time `gorm:"not null" json:"start_date"`
	EndDate       time.Time `gorm:"not null" json:"end_date"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Voucher) TableName() string {
	return "vouchers"
}

// Rule converts the stored voucher into the pricing engine's input shape.
func (v *Voucher) Rule() pricing.Voucher {
	return pricing.Voucher{
		Code:          v.Code,
		DiscountType:  pricing.DiscountType(v.DiscountType),
		DiscountValue: v.DiscountValue,
		MinPurchase:   v.MinPurchase,
		MaxDiscount:   v.MaxDiscount,
		StartDate:     v.StartDate,
		EndDate:       v.EndDate,
		IsActive:      v.IsActive,
	}
}
