package pricing

import (
	"time"

	"cinecore/internal/layout"
)

// PriceTable carries the per-category unit prices of one showtime.
type PriceTable struct {
	Standard float64 `json:"standard"`
	VIP      float64 `json:"vip"`
	Couple   float64 `json:"couple"`
}

// ComboLine is one combo selection with its resolved unit price.
type ComboLine struct {
	ComboID   string  `json:"combo_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// DiscountType selects how a voucher's value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// Voucher is the pricing-relevant slice of a catalog voucher.
type Voucher struct {
	Code          string
	DiscountType  DiscountType
	DiscountValue float64
	MinPurchase   float64
	MaxDiscount   float64
	StartDate     time.Time
	EndDate       time.Time
	IsActive      bool
}

// InWindow reports whether the voucher is active at the given instant.
func (v Voucher) InWindow(now time.Time) bool {
	return v.IsActive && !now.Before(v.StartDate) && !now.After(v.EndDate)
}

// Quote is the computed pricing breakdown of a booking.
type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// Compute prices a booking from its seat units, combo lines and optional
// voucher. It is pure and total: empty input yields a zero quote, a voucher
// that does not apply yields zero discount, and Total never goes negative.
func Compute(units []layout.SeatUnit, prices PriceTable, combos []ComboLine, voucher *Voucher, now time.Time) Quote {
	var subtotal float64

	for _, u := range units {
		switch u.Category {
		case layout.CategoryVIP:
			subtotal += prices.VIP
		case layout.CategoryCouple:
			// one couple price per pair, not per seat
			subtotal += prices.Couple
		default:
			subtotal += prices.Standard
		}
	}

	for _, c := range combos {
		if c.Quantity <= 0 {
			continue
		}
		subtotal += c.UnitPrice * float64(c.Quantity)
	}

	discount := computeDiscount(subtotal, voucher, now)

	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	return Quote{Subtotal: subtotal, Discount: discount, Total: total}
}

func computeDiscount(subtotal float64, voucher *Voucher, now time.Time) float64 {
	if voucher == nil || !voucher.InWindow(now) {
		return 0
	}
	if subtotal < voucher.MinPurchase {
		return 0
	}

	var discount float64
	switch voucher.DiscountType {
	case DiscountPercentage:
		discount = subtotal * voucher.DiscountValue / 100
	case DiscountFixed:
		discount = voucher.DiscountValue
	default:
		return 0
	}

	if discount < 0 {
		discount = 0
	}
	// MaxDiscount of zero means no upper clamp
	if voucher.MaxDiscount > 0 && discount > voucher.MaxDiscount {
		discount = voucher.MaxDiscount
	}
	return discount
}
