package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SeatState is the availability of one seat as seen by the browse surface.
type SeatState string

const (
	SeatAvailable SeatState = "AVAILABLE"
	SeatHeld      SeatState = "HELD"
	SeatSold      SeatState = "SOLD"
)

// HoldSet is the handle to a live multi-seat hold. It is what the booking
// ledger persists (by ID) to release, extend or commit the hold later.
type HoldSet struct {
	ID         string    `json:"hold_id"`
	ShowtimeID string    `json:"showtime_id"`
	Seats      []string  `json:"seats"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Inventory manages time-boxed exclusive seat holds per showtime. All
// mutating operations are atomic over the full seat set.
type Inventory interface {
	Hold(ctx context.Context, showtimeID, bookingID string, seats []string, ttl time.Duration) (*HoldSet, error)
	Release(ctx context.Context, hold *HoldSet) error
	Commit(ctx context.Context, hold *HoldSet) error
	Extend(ctx context.Context, hold *HoldSet, ttl time.Duration) error
	SeatStates(ctx context.Context, showtimeID string, seats []string) (map[string]SeatState, error)
	PreloadScripts(ctx context.Context) error
}

type redisInventory struct {
	client *redis.Client
}

// New creates a Redis-backed seat inventory.
func New(client *redis.Client) Inventory {
	return &redisInventory{client: client}
}

func (r *redisInventory) eval(ctx context.Context, script string, keys []string, args ...interface{}) ([]interface{}, error) {
	result, err := r.client.EvalSha(ctx, script, keys, args...).Result()
	if err != nil {
		// Script may not be cached yet; load-and-run instead.
		result, err = r.client.Eval(ctx, script, keys, args...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to execute inventory script: %w", err)
		}
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) == 0 {
		return nil, fmt.Errorf("unexpected result format from inventory script")
	}
	return arr, nil
}

func (r *redisInventory) Hold(ctx context.Context, showtimeID, bookingID string, seats []string, ttl time.Duration) (*HoldSet, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("no seats specified")
	}

	holdID := uuid.New().String()
	args := []interface{}{bookingID, showtimeID, int(ttl.Seconds())}
	for _, seat := range seats {
		args = append(args, seat)
	}

	arr, err := r.eval(ctx, luaHoldAcquire, []string{holdID}, args...)
	if err != nil {
		return nil, err
	}

	success, ok := arr[0].(int64)
	if !ok {
		return nil, fmt.Errorf("invalid success flag in inventory script result")
	}
	if success == 0 {
		conflict := &SeatConflictError{ShowtimeID: showtimeID}
		for _, v := range arr[1:] {
			if seat, ok := v.(string); ok {
				conflict.Seats = append(conflict.Seats, seat)
			}
		}
		return nil, conflict
	}

	return &HoldSet{
		ID:         holdID,
		ShowtimeID: showtimeID,
		Seats:      seats,
		ExpiresAt:  time.Now().Add(ttl),
	}, nil
}

func (r *redisInventory) Release(ctx context.Context, hold *HoldSet) error {
	if hold == nil || hold.ID == "" {
		return nil
	}
	_, err := r.eval(ctx, luaHoldRelease, []string{hold.ID})
	return err
}

func (r *redisInventory) Commit(ctx context.Context, hold *HoldSet) error {
	if hold == nil || hold.ID == "" {
		return ErrHoldExpired
	}

	arr, err := r.eval(ctx, luaHoldCommit, []string{hold.ID})
	if err != nil {
		return err
	}

	success, ok := arr[0].(int64)
	if !ok {
		return fmt.Errorf("invalid success flag in inventory script result")
	}
	if success == 0 {
		return ErrHoldExpired
	}
	return nil
}

func (r *redisInventory) Extend(ctx context.Context, hold *HoldSet, ttl time.Duration) error {
	if hold == nil || hold.ID == "" {
		return ErrHoldExpired
	}

	arr, err := r.eval(ctx, luaHoldExtend, []string{hold.ID}, int(ttl.Seconds()))
	if err != nil {
		return err
	}

	success, ok := arr[0].(int64)
	if !ok {
		return fmt.Errorf("invalid success flag in inventory script result")
	}
	if success == 0 {
		return ErrHoldExpired
	}

	hold.ExpiresAt = time.Now().Add(ttl)
	return nil
}

func (r *redisInventory) SeatStates(ctx context.Context, showtimeID string, seats []string) (map[string]SeatState, error) {
	states := make(map[string]SeatState, len(seats))

	sold, err := r.client.SMembers(ctx, soldKey(showtimeID)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read sold seats: %w", err)
	}
	soldSet := make(map[string]bool, len(sold))
	for _, seat := range sold {
		soldSet[seat] = true
	}

	for _, seat := range seats {
		if soldSet[seat] {
			states[seat] = SeatSold
			continue
		}
		exists, err := r.client.Exists(ctx, seatHoldKey(showtimeID, seat)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read seat hold: %w", err)
		}
		if exists > 0 {
			states[seat] = SeatHeld
		} else {
			states[seat] = SeatAvailable
		}
	}

	return states, nil
}

// PreloadScripts loads the Lua scripts into the Redis script cache so the hot
// path can use EVALSHA from the first request.
func (r *redisInventory) PreloadScripts(ctx context.Context) error {
	for _, script := range []string{luaHoldAcquire, luaHoldRelease, luaHoldCommit, luaHoldExtend} {
		if _, err := r.client.ScriptLoad(ctx, script).Result(); err != nil {
			return fmt.Errorf("failed to load inventory script: %w", err)
		}
	}
	return nil
}

func seatHoldKey(showtimeID, seat string) string {
	return fmt.Sprintf("seat_hold:%s:%s", showtimeID, seat)
}

func soldKey(showtimeID string) string {
	return fmt.Sprintf("seats_sold:%s", showtimeID)
}
