package checkin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

type ValidateTicketRequest struct {
	TicketToken string `json:"ticket_token" binding:"required"`
}

type TicketBookingInfo struct {
	BookingID  string     `json:"booking_id"`
	BookingRef string     `json:"booking_ref"`
	Seats      []string   `json:"seats"`
	ShowtimeID string     `json:"showtime_id"`
	StartTime  *time.Time `json:"start_time,omitempty"`
}

type ValidateTicketResponse struct {
	Admitted bool               `json:"admitted"`
	Reason   string             `json:"reason"`
	Booking  *TicketBookingInfo `json:"booking,omitempty"`
}

// ValidateTicket handles POST /api/v1/checkin
func (c *Controller) ValidateTicket(ctx *gin.Context) {
	var req ValidateTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := c.service.ValidateTicket(ctx.Request.Context(), req.TicketToken)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Check-in failed",
			"details": err.Error(),
		})
		return
	}

	resp := ValidateTicketResponse{
		Admitted: result.Admitted,
		Reason:   string(result.Reason),
	}
	if result.Booking != nil {
		info := &TicketBookingInfo{
			BookingID:  result.Booking.ID.String(),
			BookingRef: result.Booking.BookingRef,
			Seats:      result.Booking.SeatLabels(),
			ShowtimeID: result.Booking.ShowtimeID.String(),
		}
		if result.Showtime != nil {
			start := result.Showtime.StartTime
			info.StartTime = &start
		}
		resp.Booking = info
	}

	// Denials are business outcomes, not transport errors.
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Ticket validated",
		"data":    resp,
	})
}
