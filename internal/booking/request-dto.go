package booking

type ComboSelectionRequest struct {
	ComboID  string `json:"combo_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type CreateBookingRequest struct {
	ShowtimeID    string                  `json:"showtime_id" binding:"required,uuid"`
	Seats         []string                `json:"seats" binding:"required,min=1,dive,seatlabel"`
	Combos        []ComboSelectionRequest `json:"combos" binding:"omitempty,dive"`
	VoucherCode   string                  `json:"voucher_code" binding:"omitempty,max=64"`
	PaymentMethod string                  `json:"payment_method" binding:"required,oneof=ONLINE CASH"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=255"`
}
