package checkin

import (
	"context"
	"sync"
	"testing"
	"time"

	"cinecore/internal/booking"
	"cinecore/internal/catalog"

	"github.com/google/uuid"
)

type fakeBookingStore struct {
	mu       sync.Mutex
	byToken  map[string]*booking.Booking
	claimErr error
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{byToken: make(map[string]*booking.Booking)}
}

func (f *fakeBookingStore) GetByTicketToken(ctx context.Context, token string) (*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byToken[token]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingStore) MarkCheckedIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return false, f.claimErr
	}
	for _, b := range f.byToken {
		if b.ID == id {
			if b.Status != booking.StatusCompleted || b.CheckedIn {
				return false, nil
			}
			b.CheckedIn = true
			b.CheckedInAt = &at
			return true, nil
		}
	}
	return false, nil
}

type fakeShowtimeStore struct {
	showtimes map[uuid.UUID]*catalog.Showtime
}

func (f *fakeShowtimeStore) ShowtimeByID(ctx context.Context, id uuid.UUID) (*catalog.Showtime, error) {
	s, ok := f.showtimes[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return s, nil
}

func setup() (Service, *fakeBookingStore, *fakeShowtimeStore, *booking.Booking) {
	now := time.Now()
	showtime := &catalog.Showtime{
		ID:        uuid.New(),
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(3 * time.Hour),
	}
	b := &booking.Booking{
		ID:          uuid.New(),
		BookingRef:  "CIN-20260901-ABCDEF",
		ShowtimeID:  showtime.ID,
		Status:      booking.StatusCompleted,
		TicketToken: "tok_valid",
	}

	bookings := newFakeBookingStore()
	bookings.byToken[b.TicketToken] = b
	showtimes := &fakeShowtimeStore{showtimes: map[uuid.UUID]*catalog.Showtime{showtime.ID: showtime}}

	return NewService(bookings, showtimes), bookings, showtimes, b
}

func TestValidateTicket_Admitted(t *testing.T) {
	svc, store, _, b := setup()

	result, err := svc.ValidateTicket(context.Background(), "tok_valid")
	if err != nil {
		t.Fatalf("ValidateTicket() error = %v", err)
	}

	if !result.Admitted {
		t.Error("valid ticket should be admitted")
	}
	if result.Reason != ReasonAdmitted {
		t.Errorf("Reason = %s, want %s", result.Reason, ReasonAdmitted)
	}
	if result.Booking == nil || result.Booking.ID != b.ID {
		t.Error("result should carry the booking")
	}
	if result.Showtime == nil {
		t.Error("result should carry the showtime")
	}
	if stored := store.byToken["tok_valid"]; !stored.CheckedIn || stored.CheckedInAt == nil {
		t.Error("check-in should be recorded")
	}
}

func TestValidateTicket_SingleUse(t *testing.T) {
	svc, _, _, _ := setup()
	ctx := context.Background()

	if r, _ := svc.ValidateTicket(ctx, "tok_valid"); !r.Admitted {
		t.Fatal("first scan should admit")
	}

	second, err := svc.ValidateTicket(ctx, "tok_valid")
	if err != nil {
		t.Fatalf("second ValidateTicket() error = %v", err)
	}
	if second.Admitted {
		t.Error("second scan must not admit")
	}
	if second.Reason != ReasonAlreadyCheckedIn {
		t.Errorf("Reason = %s, want %s", second.Reason, ReasonAlreadyCheckedIn)
	}
}

func TestValidateTicket_Denials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(store *fakeBookingStore, showtimes *fakeShowtimeStore, b *booking.Booking)
		token  string
		want   Reason
	}{
		{
			name:   "empty token",
			mutate: func(store *fakeBookingStore, showtimes *fakeShowtimeStore, b *booking.Booking) {},
			token:  "",
			want:   ReasonTicketNotFound,
		},
		{
			name:   "unknown token",
			mutate: func(store *fakeBookingStore, showtimes *fakeShowtimeStore, b *booking.Booking) {},
			token:  "tok_unknown",
			want:   ReasonTicketNotFound,
		},
		{
			name: "booking not paid",
			mutate: func(store *fakeBookingStore, showtimes *fakeShowtimeStore, b *booking.Booking) {
				b.Status = booking.StatusAwaitingOnlinePayment
			},
			token: "tok_valid",
			want:  ReasonNotPaid,
		},
		{
			name: "failed booking",
			mutate: func(store *fakeBookingStore, showtimes *fakeShowtimeStore, b *booking.Booking) {
				b.Status = booking.StatusFailed
			},
			token: "tok_valid",
			want:  ReasonNotPaid,
		},
		{
			name: "showtime already ended",
			mutate: func(store *fakeBookingStore, showtimes *fakeShowtimeStore, b *booking.Booking) {
				s := showtimes.showtimes[b.ShowtimeID]
				s.StartTime = time.Now().Add(-4 * time.Hour)
				s.EndTime = time.Now().Add(-2 * time.Hour)
			},
			token: "tok_valid",
			want:  ReasonTicketExpired,
		},
		{
			name: "showtime missing",
			mutate: func(store *fakeBookingStore, showtimes *fakeShowtimeStore, b *booking.Booking) {
				delete(showtimes.showtimes, b.ShowtimeID)
			},
			token: "tok_valid",
			want:  ReasonTicketExpired,
		},
		{
			name: "already checked in",
			mutate: func(store *fakeBookingStore, showtimes *fakeShowtimeStore, b *booking.Booking) {
				b.CheckedIn = true
			},
			token: "tok_valid",
			want:  ReasonAlreadyCheckedIn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, showtimes, b := setup()
			tt.mutate(store, showtimes, b)

			result, err := svc.ValidateTicket(context.Background(), tt.token)
			if err != nil {
				t.Fatalf("ValidateTicket() error = %v", err)
			}
			if result.Admitted {
				t.Error("denied scan must not admit")
			}
			if result.Reason != tt.want {
				t.Errorf("Reason = %s, want %s", result.Reason, tt.want)
			}
		})
	}
}

func TestValidateTicket_ConcurrentScansAdmitOnce(t *testing.T) {
	svc, _, _, _ := setup()
	ctx := context.Background()

	const scans = 8
	results := make([]*Result, scans)
	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.ValidateTicket(ctx, "tok_valid")
			if err != nil {
				t.Errorf("ValidateTicket() error = %v", err)
				return
			}
			results[i] = r
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, r := range results {
		if r != nil && r.Admitted {
			admitted++
		}
	}
	if admitted != 1 {
		t.Errorf("%d scans admitted, want exactly 1", admitted)
	}
}
