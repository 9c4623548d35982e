package pricing

import (
	"testing"
	"time"

	"cinecore/internal/layout"
)

var testPrices = PriceTable{Standard: 90000, VIP: 120000, Couple: 150000}

func standardUnit(label string) layout.SeatUnit {
	s, _ := layout.ParseSeatLabel(label)
	return layout.SeatUnit{Category: layout.CategoryStandard, Seats: []layout.Seat{s}}
}

func vipUnit(label string) layout.SeatUnit {
	s, _ := layout.ParseSeatLabel(label)
	return layout.SeatUnit{Category: layout.CategoryVIP, Seats: []layout.Seat{s}}
}

func coupleUnit(row string, start int) layout.SeatUnit {
	return layout.SeatUnit{
		Category: layout.CategoryCouple,
		Seats: []layout.Seat{
			{Row: row, Number: start},
			{Row: row, Number: start + 1},
		},
	}
}

func activeVoucher(v Voucher) *Voucher {
	now := time.Now()
	v.StartDate = now.Add(-time.Hour)
	v.EndDate = now.Add(time.Hour)
	v.IsActive = true
	return &v
}

func TestCompute_SeatCategories(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		units []layout.SeatUnit
		want  float64
	}{
		{
			name:  "single standard seat",
			units: []layout.SeatUnit{standardUnit("B5")},
			want:  90000,
		},
		{
			name:  "vip seat",
			units: []layout.SeatUnit{vipUnit("E3")},
			want:  120000,
		},
		{
			name:  "couple pair priced once, not per seat",
			units: []layout.SeatUnit{coupleUnit("H", 1)},
			want:  150000,
		},
		{
			name:  "mixed selection",
			units: []layout.SeatUnit{standardUnit("B5"), vipUnit("E3"), coupleUnit("H", 1)},
			want:  360000,
		},
		{
			name:  "empty selection",
			units: nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Compute(tt.units, testPrices, nil, nil, now)
			if q.Subtotal != tt.want {
				t.Errorf("Subtotal = %v, want %v", q.Subtotal, tt.want)
			}
			if q.Discount != 0 {
				t.Errorf("Discount = %v, want 0", q.Discount)
			}
			if q.Total != tt.want {
				t.Errorf("Total = %v, want %v", q.Total, tt.want)
			}
		})
	}
}

func TestCompute_Combos(t *testing.T) {
	now := time.Now()
	combos := []ComboLine{
		{ComboID: "popcorn", Quantity: 2, UnitPrice: 45000},
		{ComboID: "ignored", Quantity: 0, UnitPrice: 99000},
	}

	q := Compute([]layout.SeatUnit{standardUnit("B5")}, testPrices, combos, nil, now)
	if q.Subtotal != 180000 {
		t.Errorf("Subtotal = %v, want 180000", q.Subtotal)
	}
}

func TestCompute_Vouchers(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		units        []layout.SeatUnit
		voucher      *Voucher
		wantDiscount float64
		wantTotal    float64
	}{
		{
			name:  "percentage voucher",
			units: []layout.SeatUnit{vipUnit("E1"), vipUnit("E2")}, // 240000
			voucher: activeVoucher(Voucher{
				Code: "P10", DiscountType: DiscountPercentage, DiscountValue: 10,
			}),
			wantDiscount: 24000,
			wantTotal:    216000,
		},
		{
			name:  "percentage clamped by max discount",
			units: []layout.SeatUnit{coupleUnit("H", 1), coupleUnit("H", 3), vipUnit("E1"), standardUnit("B1")}, // 510000
			voucher: activeVoucher(Voucher{
				Code: "P50", DiscountType: DiscountPercentage, DiscountValue: 50, MaxDiscount: 100000,
			}),
			wantDiscount: 100000,
			wantTotal:    410000,
		},
		{
			name:  "zero max discount means no clamp",
			units: []layout.SeatUnit{vipUnit("E1"), vipUnit("E2")}, // 240000
			voucher: activeVoucher(Voucher{
				Code: "P50", DiscountType: DiscountPercentage, DiscountValue: 50, MaxDiscount: 0,
			}),
			wantDiscount: 120000,
			wantTotal:    120000,
		},
		{
			name:  "fixed voucher",
			units: []layout.SeatUnit{standardUnit("B1")},
			voucher: activeVoucher(Voucher{
				Code: "F30", DiscountType: DiscountFixed, DiscountValue: 30000,
			}),
			wantDiscount: 30000,
			wantTotal:    60000,
		},
		{
			name:  "fixed voucher larger than subtotal floors total at zero",
			units: []layout.SeatUnit{standardUnit("B1")},
			voucher: activeVoucher(Voucher{
				Code: "F200", DiscountType: DiscountFixed, DiscountValue: 200000,
			}),
			wantDiscount: 200000,
			wantTotal:    0,
		},
		{
			name:  "below minimum purchase yields no discount",
			units: []layout.SeatUnit{standardUnit("B1")}, // 90000
			voucher: activeVoucher(Voucher{
				Code: "F30", DiscountType: DiscountFixed, DiscountValue: 30000, MinPurchase: 200000,
			}),
			wantDiscount: 0,
			wantTotal:    90000,
		},
		{
			name:  "expired voucher yields no discount",
			units: []layout.SeatUnit{standardUnit("B1")},
			voucher: &Voucher{
				Code: "OLD", DiscountType: DiscountPercentage, DiscountValue: 50,
				StartDate: now.Add(-48 * time.Hour), EndDate: now.Add(-24 * time.Hour), IsActive: true,
			},
			wantDiscount: 0,
			wantTotal:    90000,
		},
		{
			name:  "inactive voucher yields no discount",
			units: []layout.SeatUnit{standardUnit("B1")},
			voucher: &Voucher{
				Code: "OFF", DiscountType: DiscountPercentage, DiscountValue: 50,
				StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour), IsActive: false,
			},
			wantDiscount: 0,
			wantTotal:    90000,
		},
		{
			name:  "unknown discount type yields no discount",
			units: []layout.SeatUnit{standardUnit("B1")},
			voucher: activeVoucher(Voucher{
				Code: "BAD", DiscountType: "BOGO", DiscountValue: 50,
			}),
			wantDiscount: 0,
			wantTotal:    90000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Compute(tt.units, testPrices, nil, tt.voucher, now)
			if q.Discount != tt.wantDiscount {
				t.Errorf("Discount = %v, want %v", q.Discount, tt.wantDiscount)
			}
			if q.Total != tt.wantTotal {
				t.Errorf("Total = %v, want %v", q.Total, tt.wantTotal)
			}
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	now := time.Now()
	units := []layout.SeatUnit{standardUnit("B5"), coupleUnit("H", 1)}
	combos := []ComboLine{{ComboID: "popcorn", Quantity: 1, UnitPrice: 45000}}
	voucher := activeVoucher(Voucher{Code: "P10", DiscountType: DiscountPercentage, DiscountValue: 10})

	first := Compute(units, testPrices, combos, voucher, now)
	for i := 0; i < 10; i++ {
		if got := Compute(units, testPrices, combos, voucher, now); got != first {
			t.Fatalf("Compute() = %+v on run %d, want %+v", got, i, first)
		}
	}
}
