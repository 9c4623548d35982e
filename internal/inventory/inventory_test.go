package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestInventory(t *testing.T) (Inventory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client), mr
}

func TestHold_ClaimsAllSeats(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	hold, err := inv.Hold(ctx, "show-1", "booking-1", []string{"A1", "A2", "A3"}, time.Minute)
	if err != nil {
		t.Fatalf("Hold() error = %v", err)
	}
	if hold.ID == "" {
		t.Error("hold should carry an id")
	}
	if len(hold.Seats) != 3 {
		t.Errorf("hold covers %d seats, want 3", len(hold.Seats))
	}

	states, err := inv.SeatStates(ctx, "show-1", []string{"A1", "A2", "A3", "A4"})
	if err != nil {
		t.Fatalf("SeatStates() error = %v", err)
	}
	for _, seat := range []string{"A1", "A2", "A3"} {
		if states[seat] != SeatHeld {
			t.Errorf("state[%s] = %s, want %s", seat, states[seat], SeatHeld)
		}
	}
	if states["A4"] != SeatAvailable {
		t.Errorf("state[A4] = %s, want %s", states["A4"], SeatAvailable)
	}
}

func TestHold_ConflictLeavesNothingHeld(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	if _, err := inv.Hold(ctx, "show-1", "booking-1", []string{"B2"}, time.Minute); err != nil {
		t.Fatalf("first Hold() error = %v", err)
	}

	// B2 is contended, so the whole B1-B3 request must fail atomically.
	_, err := inv.Hold(ctx, "show-1", "booking-2", []string{"B1", "B2", "B3"}, time.Minute)
	if !IsSeatConflict(err) {
		t.Fatalf("overlapping Hold() error = %v, want seat conflict", err)
	}

	var conflict *SeatConflictError
	errors.As(err, &conflict)
	if len(conflict.Seats) != 1 || conflict.Seats[0] != "B2" {
		t.Errorf("conflict seats = %v, want [B2]", conflict.Seats)
	}

	states, err := inv.SeatStates(ctx, "show-1", []string{"B1", "B3"})
	if err != nil {
		t.Fatalf("SeatStates() error = %v", err)
	}
	if states["B1"] != SeatAvailable || states["B3"] != SeatAvailable {
		t.Errorf("losing request left seats held: %v", states)
	}
}

func TestHold_IndependentShowtimes(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	if _, err := inv.Hold(ctx, "show-1", "booking-1", []string{"A1"}, time.Minute); err != nil {
		t.Fatalf("Hold() error = %v", err)
	}
	if _, err := inv.Hold(ctx, "show-2", "booking-2", []string{"A1"}, time.Minute); err != nil {
		t.Errorf("same seat on another showtime should hold, got %v", err)
	}
}

func TestHold_ConcurrentOverlappingRequests(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	wins := make(chan *HoldSet, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hold, err := inv.Hold(ctx, "show-1", "booking", []string{"C1", "C2"}, time.Minute)
			if err == nil {
				wins <- hold
				return
			}
			if !IsSeatConflict(err) {
				t.Errorf("Hold() error = %v, want seat conflict", err)
			}
		}()
	}
	wg.Wait()
	close(wins)

	held := 0
	for range wins {
		held++
	}
	if held != 1 {
		t.Errorf("%d of %d concurrent requests won the seats, want exactly 1", held, attempts)
	}
}

func TestRelease_FreesSeatsAndIsIdempotent(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	hold, err := inv.Hold(ctx, "show-1", "booking-1", []string{"A1", "A2"}, time.Minute)
	if err != nil {
		t.Fatalf("Hold() error = %v", err)
	}

	if err := inv.Release(ctx, hold); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := inv.Release(ctx, hold); err != nil {
		t.Errorf("repeat Release() error = %v, want no-op", err)
	}
	if err := inv.Release(ctx, nil); err != nil {
		t.Errorf("Release(nil) error = %v, want no-op", err)
	}

	if _, err := inv.Hold(ctx, "show-1", "booking-2", []string{"A1", "A2"}, time.Minute); err != nil {
		t.Errorf("seats should be free after release, got %v", err)
	}
}

func TestCommit_MarksSold(t *testing.T) {
	inv, _ := newTestInventory(t)
	ctx := context.Background()

	hold, err := inv.Hold(ctx, "show-1", "booking-1", []string{"A1", "A2"}, time.Minute)
	if err != nil {
		t.Fatalf("Hold() error = %v", err)
	}
	if err := inv.Commit(ctx, hold); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	states, err := inv.SeatStates(ctx, "show-1", []string{"A1", "A2"})
	if err != nil {
		t.Fatalf("SeatStates() error = %v", err)
	}
	if states["A1"] != SeatSold || states["A2"] != SeatSold {
		t.Errorf("committed seats = %v, want SOLD", states)
	}

	// Sold seats stay sold: a new hold on them conflicts.
	_, err = inv.Hold(ctx, "show-1", "booking-2", []string{"A1"}, time.Minute)
	if !IsSeatConflict(err) {
		t.Errorf("Hold() on sold seat error = %v, want seat conflict", err)
	}

	// The hold itself is consumed.
	if err := inv.Commit(ctx, hold); !errors.Is(err, ErrHoldExpired) {
		t.Errorf("repeat Commit() error = %v, want %v", err, ErrHoldExpired)
	}
}

func TestCommit_AfterExpiry(t *testing.T) {
	inv, mr := newTestInventory(t)
	ctx := context.Background()

	hold, err := inv.Hold(ctx, "show-1", "booking-1", []string{"A1"}, time.Second)
	if err != nil {
		t.Fatalf("Hold() error = %v", err)
	}

	mr.FastForward(2 * time.Second)

	if err := inv.Commit(ctx, hold); !errors.Is(err, ErrHoldExpired) {
		t.Fatalf("Commit() after expiry error = %v, want %v", err, ErrHoldExpired)
	}

	states, err := inv.SeatStates(ctx, "show-1", []string{"A1"})
	if err != nil {
		t.Fatalf("SeatStates() error = %v", err)
	}
	if states["A1"] != SeatAvailable {
		t.Errorf("state[A1] = %s after expiry, want %s", states["A1"], SeatAvailable)
	}
}

func TestExtend_RearmsHold(t *testing.T) {
	inv, mr := newTestInventory(t)
	ctx := context.Background()

	hold, err := inv.Hold(ctx, "show-1", "booking-1", []string{"A1"}, 2*time.Second)
	if err != nil {
		t.Fatalf("Hold() error = %v", err)
	}

	if err := inv.Extend(ctx, hold, time.Minute); err != nil {
		t.Fatalf("Extend() error = %v", err)
	}

	// Past the original TTL the hold is still alive.
	mr.FastForward(5 * time.Second)
	if err := inv.Commit(ctx, hold); err != nil {
		t.Errorf("Commit() after extend error = %v", err)
	}
}

func TestExtend_ExpiredHold(t *testing.T) {
	inv, mr := newTestInventory(t)
	ctx := context.Background()

	hold, err := inv.Hold(ctx, "show-1", "booking-1", []string{"A1"}, time.Second)
	if err != nil {
		t.Fatalf("Hold() error = %v", err)
	}

	mr.FastForward(2 * time.Second)

	if err := inv.Extend(ctx, hold, time.Minute); !errors.Is(err, ErrHoldExpired) {
		t.Errorf("Extend() after expiry error = %v, want %v", err, ErrHoldExpired)
	}
	if err := inv.Extend(ctx, nil, time.Minute); !errors.Is(err, ErrHoldExpired) {
		t.Errorf("Extend(nil) error = %v, want %v", err, ErrHoldExpired)
	}
}

func TestPreloadScripts(t *testing.T) {
	inv, _ := newTestInventory(t)
	if err := inv.PreloadScripts(context.Background()); err != nil {
		t.Fatalf("PreloadScripts() error = %v", err)
	}
}
