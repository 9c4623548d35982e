package booking

import "time"

type BookingResponse struct {
	BookingID     string              `json:"booking_id"`
	BookingRef    string              `json:"booking_ref"`
	ShowtimeID    string              `json:"showtime_id"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	PaymentStatus string              `json:"payment_status"`
	PaymentURL    string              `json:"payment_url,omitempty"`
	Subtotal      float64             `json:"subtotal"`
	Discount      float64             `json:"discount"`
	Total         float64             `json:"total"`
	VoucherCode   string              `json:"voucher_code,omitempty"`
	Seats         []BookedSeatInfo    `json:"seats"`
	Combos        []BookedComboInfo   `json:"combos,omitempty"`
	Ticket        *TicketInfo         `json:"ticket,omitempty"`
	FailureReason string              `json:"failure_reason,omitempty"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type BookedSeatInfo struct {
	Label    string  `json:"label"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type BookedComboInfo struct {
	ComboID   string  `json:"combo_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type TicketInfo struct {
	Token       string     `json:"token"`
	CheckedIn   bool       `json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
}

type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

func toBookingResponse(b *Booking) BookingResponse {
	resp := BookingResponse{
		BookingID:     b.ID.String(),
		BookingRef:    b.BookingRef,
		ShowtimeID:    b.ShowtimeID.String(),
		Status:        string(b.Status),
		PaymentMethod: string(b.PaymentMethod),
		PaymentStatus: string(b.PaymentStatus),
		Subtotal:      b.Subtotal,
		Discount:      b.Discount,
		Total:         b.Total,
		VoucherCode:   b.VoucherCode,
		FailureReason: b.FailureReason,
		ExpiresAt:     b.ExpiresAt,
		CreatedAt:     b.CreatedAt,
	}
	if b.Status.IsAwaitingPayment() {
		resp.PaymentURL = b.PaymentURL
	}
	if b.Status == StatusCompleted && b.TicketToken != "" {
		resp.Ticket = &TicketInfo{
			Token:       b.TicketToken,
			CheckedIn:   b.CheckedIn,
			CheckedInAt: b.CheckedInAt,
		}
	}
	for _, seat := range b.Seats {
		resp.Seats = append(resp.Seats, BookedSeatInfo{
			Label:    seat.Label,
			Category: seat.Category,
			Price:    seat.UnitPrice,
		})
	}
	for _, combo := range b.Combos {
		resp.Combos = append(resp.Combos, BookedComboInfo{
			ComboID:   combo.ComboID.String(),
			Name:      combo.Name,
			Quantity:  combo.Quantity,
			UnitPrice: combo.UnitPrice,
		})
	}
	return resp
}
