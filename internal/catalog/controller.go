package catalog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cinecore/internal/inventory"
	"cinecore/internal/layout"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SeatStateReader is the slice of the inventory the seat map needs.
type SeatStateReader interface {
	SeatStates(ctx context.Context, showtimeID string, seats []string) (map[string]inventory.SeatState, error)
}

type Controller struct {
	repo      Repository
	inventory SeatStateReader
}

func NewController(repo Repository, inv SeatStateReader) *Controller {
	return &Controller{repo: repo, inventory: inv}
}

type SeatMapEntry struct {
	Label    string `json:"label"`
	Category string `json:"category"`
	State    string `json:"state"`
	PairWith string `json:"pair_with,omitempty"`
}

type SeatMapResponse struct {
	ShowtimeID  string         `json:"showtime_id"`
	StartTime   time.Time      `json:"start_time"`
	Rows        int            `json:"rows"`
	SeatsPerRow int            `json:"seats_per_row"`
	Seats       []SeatMapEntry `json:"seats"`
}

// GetShowtime handles GET /api/v1/showtimes/:id
func (c *Controller) GetShowtime(ctx *gin.Context) {
	showtimeID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid showtime ID"})
		return
	}

	showtime, err := c.repo.ShowtimeByID(ctx.Request.Context(), showtimeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Showtime not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch showtime",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Showtime retrieved successfully",
		"data":    showtime,
	})
}

// SeatDisabled marks seats the authored layout blocks; they never have
// inventory state.
const SeatDisabled = "DISABLED"

// GetSeatMap handles GET /api/v1/showtimes/:id/seats
// It merges the hall layout with live hold/sold state. Disabled seats appear
// with a DISABLED state so clients can render the full hall.
func (c *Controller) GetSeatMap(ctx *gin.Context) {
	showtimeID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid showtime ID"})
		return
	}

	showtime, theater, err := c.repo.LayoutForShowtime(ctx.Request.Context(), showtimeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Showtime not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch showtime",
			"details": err.Error(),
		})
		return
	}

	seatLayout, err := theater.Layout()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Invalid hall layout",
			"details": err.Error(),
		})
		return
	}

	labels := make([]string, 0, seatLayout.Rows*seatLayout.SeatsPerRow)
	seats := make([]layout.Seat, 0, seatLayout.Rows*seatLayout.SeatsPerRow)
	for _, row := range seatLayout.RowLabels {
		for n := 1; n <= seatLayout.SeatsPerRow; n++ {
			seat := layout.Seat{Row: row, Number: n}
			seats = append(seats, seat)
			if !seatLayout.IsDisabled(seat) {
				labels = append(labels, seat.Label())
			}
		}
	}

	states, err := c.inventory.SeatStates(ctx.Request.Context(), showtimeID.String(), labels)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch seat availability",
			"details": err.Error(),
		})
		return
	}

	resp := SeatMapResponse{
		ShowtimeID:  showtimeID.String(),
		StartTime:   showtime.StartTime,
		Rows:        seatLayout.Rows,
		SeatsPerRow: seatLayout.SeatsPerRow,
		Seats:       make([]SeatMapEntry, 0, len(seats)),
	}
	for _, seat := range seats {
		state := SeatDisabled
		if !seatLayout.IsDisabled(seat) {
			state = string(states[seat.Label()])
		}
		entry := SeatMapEntry{
			Label:    seat.Label(),
			Category: string(seatLayout.Categorize(seat)),
			State:    state,
		}
		if pair, ok := seatLayout.PairFor(seat); ok {
			for _, ps := range pair.Seats() {
				if ps != seat {
					entry.PairWith = ps.Label()
				}
			}
		}
		resp.Seats = append(resp.Seats, entry)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Seat map retrieved successfully",
		"data":    resp,
	})
}
