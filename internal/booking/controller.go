package booking

import (
	"errors"
	"net/http"

	"cinecore/internal/catalog"
	"cinecore/internal/inventory"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	customerID, ok := customerIDFromContext(ctx)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	showtimeID, err := uuid.Parse(req.ShowtimeID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid showtime ID"})
		return
	}

	email, _ := ctx.Get("user_email")
	customerEmail, _ := email.(string)

	input := CreateBookingInput{
		ShowtimeID:    showtimeID,
		CustomerID:    customerID,
		CustomerEmail: customerEmail,
		Seats:         req.Seats,
		VoucherCode:   req.VoucherCode,
		PaymentMethod: PaymentMethod(req.PaymentMethod),
	}
	for _, combo := range req.Combos {
		comboID, err := uuid.Parse(combo.ComboID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid combo ID"})
			return
		}
		input.Combos = append(input.Combos, ComboSelection{ComboID: comboID, Quantity: combo.Quantity})
	}

	b, err := c.service.CreateBooking(ctx.Request.Context(), input)
	if err != nil {
		respondBookingError(ctx, err)
		return
	}

	resp := toBookingResponse(b)
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Booking created successfully",
		"data":    resp,
	})
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	b, err := c.service.GetBooking(ctx.Request.Context(), bookingID)
	if err != nil {
		respondBookingError(ctx, err)
		return
	}

	// Customers see only their own bookings; staff and admins see all.
	role, _ := ctx.Get("user_role")
	if roleStr, _ := role.(string); roleStr != "ADMIN" && roleStr != "STAFF" {
		customerID, ok := customerIDFromContext(ctx)
		if !ok {
			return
		}
		if b.CustomerID != customerID {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
	}

	resp := toBookingResponse(b)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Booking retrieved successfully",
		"data":    resp,
	})
}

// ListBookings handles GET /api/v1/admin/bookings
func (c *Controller) ListBookings(ctx *gin.Context) {
	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}

	bookings, total, err := c.service.ListBookings(ctx.Request.Context(), query)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list bookings",
			"details": err.Error(),
		})
		return
	}

	resp := BookingListResponse{
		Bookings:   make([]BookingResponse, 0, len(bookings)),
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}
	for i := range bookings {
		resp.Bookings = append(resp.Bookings, toBookingResponse(&bookings[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Bookings retrieved successfully",
		"data":    resp,
	})
}

// ConfirmPayment handles POST /api/v1/admin/bookings/:id/confirm-payment
// Staff confirm cash payments at the counter; online settlements arrive
// through the payment webhook instead.
func (c *Controller) ConfirmPayment(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	b, err := c.service.ConfirmPayment(ctx.Request.Context(), bookingID)
	if err != nil && !errors.Is(err, inventory.ErrHoldExpired) {
		respondBookingError(ctx, err)
		return
	}

	resp := toBookingResponse(b)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Payment processed",
		"data":    resp,
	})
}

// RejectPayment handles POST /api/v1/admin/bookings/:id/reject-payment
func (c *Controller) RejectPayment(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req RejectPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "payment rejected"
	}

	b, err := c.service.RejectPayment(ctx.Request.Context(), bookingID, reason)
	if err != nil {
		respondBookingError(ctx, err)
		return
	}

	resp := toBookingResponse(b)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Payment rejected",
		"data":    resp,
	})
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	b, err := c.service.CancelBooking(ctx.Request.Context(), bookingID)
	if err != nil {
		respondBookingError(ctx, err)
		return
	}

	resp := toBookingResponse(b)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled successfully",
		"data":    resp,
	})
}

func customerIDFromContext(ctx *gin.Context) (uuid.UUID, bool) {
	userIDInterface, exists := ctx.Get("user_id")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}

	userIDStr, ok := userIDInterface.(string)
	if !ok {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return uuid.Nil, false
	}
	return userID, true
}

func respondBookingError(ctx *gin.Context, err error) {
	var conflict *inventory.SeatConflictError
	switch {
	case errors.As(err, &conflict):
		ctx.JSON(http.StatusConflict, gin.H{
			"error": "Seats unavailable",
			"seats": conflict.Seats,
		})
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, catalog.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Booking not found", "details": err.Error()})
	case errors.Is(err, ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Invalid booking state", "details": err.Error()})
	case errors.Is(err, inventory.ErrHoldExpired):
		ctx.JSON(http.StatusGone, gin.H{"error": "Seat hold expired", "details": err.Error()})
	case errors.Is(err, ErrSeatsRequired),
		errors.Is(err, ErrInvalidSeats),
		errors.Is(err, ErrInvalidVoucher),
		errors.Is(err, ErrUnknownCombo),
		errors.Is(err, ErrShowtimeOver):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking request", "details": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Booking operation failed", "details": err.Error()})
	}
}
