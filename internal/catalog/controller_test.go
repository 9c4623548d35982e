package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinecore/internal/inventory"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeReadRepo struct {
	showtime *Showtime
	theater  *Theater
}

func (f *fakeReadRepo) ShowtimeByID(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	if f.showtime == nil || f.showtime.ID != id {
		return nil, ErrNotFound
	}
	return f.showtime, nil
}

func (f *fakeReadRepo) LayoutForShowtime(ctx context.Context, showtimeID uuid.UUID) (*Showtime, *Theater, error) {
	if f.showtime == nil || f.showtime.ID != showtimeID {
		return nil, nil, ErrNotFound
	}
	return f.showtime, f.theater, nil
}

func (f *fakeReadRepo) CombosByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Combo, error) {
	return nil, nil
}

func (f *fakeReadRepo) VoucherByCode(ctx context.Context, code string) (*Voucher, error) {
	return nil, ErrNotFound
}

type fakeStateReader struct {
	states map[string]inventory.SeatState
}

func (f *fakeStateReader) SeatStates(ctx context.Context, showtimeID string, seats []string) (map[string]inventory.SeatState, error) {
	out := make(map[string]inventory.SeatState, len(seats))
	for _, seat := range seats {
		if s, ok := f.states[seat]; ok {
			out[seat] = s
		} else {
			out[seat] = inventory.SeatAvailable
		}
	}
	return out, nil
}

func seatMapFixture() (*gin.Engine, uuid.UUID) {
	gin.SetMode(gin.TestMode)

	theaterID := uuid.New()
	showtimeID := uuid.New()
	repo := &fakeReadRepo{
		showtime: &Showtime{
			ID:        showtimeID,
			TheaterID: theaterID,
			StartTime: time.Now().Add(time.Hour),
			EndTime:   time.Now().Add(3 * time.Hour),
		},
		theater: &Theater{
			ID:   theaterID,
			Name: "Hall 1",
			LayoutJSON: []byte(`{
				"rows": 2,
				"seats_per_row": 3,
				"row_labels": ["A", "B"],
				"vip_rows": ["B"],
				"disabled_seats": [{"row": "A", "number": 3}]
			}`),
		},
	}
	states := &fakeStateReader{states: map[string]inventory.SeatState{
		"A1": inventory.SeatHeld,
		"B2": inventory.SeatSold,
	}}

	controller := NewController(repo, states)
	engine := gin.New()
	engine.GET("/showtimes/:id/seats", controller.GetSeatMap)
	return engine, showtimeID
}

func TestGetSeatMap(t *testing.T) {
	engine, showtimeID := seatMapFixture()

	req := httptest.NewRequest(http.MethodGet, "/showtimes/"+showtimeID.String()+"/seats", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	var envelope struct {
		Data SeatMapResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Every physical seat is present, the disabled one included.
	if len(envelope.Data.Seats) != 6 {
		t.Fatalf("seat map has %d entries, want 6", len(envelope.Data.Seats))
	}

	byLabel := make(map[string]SeatMapEntry, len(envelope.Data.Seats))
	for _, entry := range envelope.Data.Seats {
		byLabel[entry.Label] = entry
	}

	tests := []struct {
		label    string
		state    string
		category string
	}{
		{"A1", string(inventory.SeatHeld), "STANDARD"},
		{"A2", string(inventory.SeatAvailable), "STANDARD"},
		{"A3", SeatDisabled, "STANDARD"},
		{"B1", string(inventory.SeatAvailable), "VIP"},
		{"B2", string(inventory.SeatSold), "VIP"},
	}
	for _, tt := range tests {
		entry, ok := byLabel[tt.label]
		if !ok {
			t.Errorf("seat %s missing from the map", tt.label)
			continue
		}
		if entry.State != tt.state {
			t.Errorf("seat %s state = %q, want %q", tt.label, entry.State, tt.state)
		}
		if entry.Category != tt.category {
			t.Errorf("seat %s category = %q, want %q", tt.label, entry.Category, tt.category)
		}
	}
}

func TestGetSeatMap_UnknownShowtime(t *testing.T) {
	engine, _ := seatMapFixture()

	req := httptest.NewRequest(http.MethodGet, "/showtimes/"+uuid.New().String()+"/seats", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
