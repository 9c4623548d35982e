package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinecore/internal/booking"
	"cinecore/internal/inventory"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// stubBookings records the lifecycle calls the reconciler makes.
type stubBookings struct {
	bookings map[uuid.UUID]*booking.Booking

	confirmCalls []uuid.UUID
	rejectCalls  []uuid.UUID
	rejectReason string

	confirmErr error
}

func newStubBookings() *stubBookings {
	return &stubBookings{bookings: make(map[uuid.UUID]*booking.Booking)}
}

func (s *stubBookings) add(b *booking.Booking) {
	s.bookings[b.ID] = b
}

func (s *stubBookings) get(id uuid.UUID) (*booking.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return b, nil
}

func (s *stubBookings) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*booking.Booking, error) {
	return nil, errors.New("not implemented")
}

func (s *stubBookings) GetBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return s.get(id)
}

func (s *stubBookings) ListBookings(ctx context.Context, query booking.ListQuery) ([]booking.Booking, int64, error) {
	return nil, 0, nil
}

func (s *stubBookings) ConfirmPayment(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	s.confirmCalls = append(s.confirmCalls, id)
	b, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if s.confirmErr != nil {
		if errors.Is(s.confirmErr, inventory.ErrHoldExpired) {
			b.Status = booking.StatusFailed
		}
		return b, s.confirmErr
	}
	if !b.Status.IsTerminal() {
		b.Status = booking.StatusCompleted
		b.TicketToken = "tok_" + id.String()
	}
	return b, nil
}

func (s *stubBookings) RejectPayment(ctx context.Context, id uuid.UUID, reason string) (*booking.Booking, error) {
	s.rejectCalls = append(s.rejectCalls, id)
	s.rejectReason = reason
	b, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if !b.Status.IsTerminal() {
		b.Status = booking.StatusFailed
		b.FailureReason = reason
	}
	return b, nil
}

func (s *stubBookings) CancelBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return s.get(id)
}

func (s *stubBookings) ExpireOverdue(ctx context.Context, limit int) (int, error) {
	return 0, nil
}

// stubBookingRepo serves only the read paths ReconcilePending uses.
type stubBookingRepo struct {
	bookings *stubBookings
}

func (r *stubBookingRepo) Create(ctx context.Context, b *booking.Booking) error { return nil }

func (r *stubBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	return r.bookings.get(id)
}

func (r *stubBookingRepo) GetByTicketToken(ctx context.Context, token string) (*booking.Booking, error) {
	return nil, booking.ErrBookingNotFound
}

func (r *stubBookingRepo) List(ctx context.Context, query booking.ListQuery) ([]booking.Booking, int64, error) {
	return nil, 0, nil
}

func (r *stubBookingRepo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	return nil, nil
}

func (r *stubBookingRepo) ListByStatus(ctx context.Context, status booking.Status, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, b := range r.bookings.bookings {
		if b.Status == status {
			ids = append(ids, id)
		}
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (r *stubBookingRepo) UpdateInTx(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, b *booking.Booking) error) (*booking.Booking, error) {
	return nil, errors.New("not implemented")
}

func (r *stubBookingRepo) MarkCheckedIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	return false, nil
}

func awaitingBooking(gatewayRef string) *booking.Booking {
	return &booking.Booking{
		ID:         uuid.New(),
		ShowtimeID: uuid.New(),
		Status:     booking.StatusAwaitingOnlinePayment,
		GatewayRef: gatewayRef,
	}
}

func TestHandleWebhook_Succeeded(t *testing.T) {
	bookings := newStubBookings()
	b := awaitingBooking("ref_1")
	bookings.add(b)

	r := NewReconciler(bookings, &stubBookingRepo{bookings: bookings}, NewMockGateway())

	got, err := r.HandleWebhook(context.Background(), WebhookEvent{
		OrderID:    b.ID.String(),
		GatewayRef: "ref_1",
		Status:     string(StatusSucceeded),
	})
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if got.Status != booking.StatusCompleted {
		t.Errorf("Status = %s, want %s", got.Status, booking.StatusCompleted)
	}
	if len(bookings.confirmCalls) != 1 {
		t.Errorf("ConfirmPayment called %d times, want 1", len(bookings.confirmCalls))
	}
}

func TestHandleWebhook_FailedAndCancelled(t *testing.T) {
	tests := []struct {
		status     Status
		wantReason string
	}{
		{StatusFailed, "payment failed at gateway"},
		{StatusCancelled, "payment cancelled by customer"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			bookings := newStubBookings()
			b := awaitingBooking("ref_1")
			bookings.add(b)

			r := NewReconciler(bookings, &stubBookingRepo{bookings: bookings}, NewMockGateway())

			got, err := r.HandleWebhook(context.Background(), WebhookEvent{
				OrderID:    b.ID.String(),
				GatewayRef: "ref_1",
				Status:     string(tt.status),
			})
			if err != nil {
				t.Fatalf("HandleWebhook() error = %v", err)
			}
			if got.Status != booking.StatusFailed {
				t.Errorf("Status = %s, want %s", got.Status, booking.StatusFailed)
			}
			if bookings.rejectReason != tt.wantReason {
				t.Errorf("reject reason = %q, want %q", bookings.rejectReason, tt.wantReason)
			}
		})
	}
}

func TestHandleWebhook_SettlementAfterExpiry(t *testing.T) {
	bookings := newStubBookings()
	b := awaitingBooking("ref_1")
	bookings.add(b)
	bookings.confirmErr = inventory.ErrHoldExpired

	r := NewReconciler(bookings, &stubBookingRepo{bookings: bookings}, NewMockGateway())

	// The webhook is acknowledged even though the hold already lapsed; the
	// booking lands FAILED and the provider must not retry forever.
	got, err := r.HandleWebhook(context.Background(), WebhookEvent{
		OrderID:    b.ID.String(),
		GatewayRef: "ref_1",
		Status:     string(StatusSucceeded),
	})
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if got.Status != booking.StatusFailed {
		t.Errorf("Status = %s, want %s", got.Status, booking.StatusFailed)
	}
}

func TestHandleWebhook_Validation(t *testing.T) {
	bookings := newStubBookings()
	r := NewReconciler(bookings, &stubBookingRepo{bookings: bookings}, NewMockGateway())
	ctx := context.Background()

	if _, err := r.HandleWebhook(ctx, WebhookEvent{OrderID: "not-a-uuid", Status: string(StatusSucceeded)}); err == nil {
		t.Error("HandleWebhook() expected error for malformed order id")
	}

	_, err := r.HandleWebhook(ctx, WebhookEvent{OrderID: uuid.New().String(), Status: string(StatusSucceeded)})
	if !errors.Is(err, booking.ErrBookingNotFound) {
		t.Errorf("HandleWebhook() error = %v, want %v", err, booking.ErrBookingNotFound)
	}
}

func TestHandleWebhook_UnrecognizedStatusIsAcknowledged(t *testing.T) {
	bookings := newStubBookings()
	b := awaitingBooking("ref_1")
	bookings.add(b)

	r := NewReconciler(bookings, &stubBookingRepo{bookings: bookings}, NewMockGateway())

	got, err := r.HandleWebhook(context.Background(), WebhookEvent{
		OrderID:    b.ID.String(),
		GatewayRef: "ref_1",
		Status:     "REQUIRES_ACTION",
	})
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v, unknown statuses must be acknowledged", err)
	}
	if got.Status != booking.StatusAwaitingOnlinePayment {
		t.Errorf("Status = %s, want untouched %s", got.Status, booking.StatusAwaitingOnlinePayment)
	}
	if len(bookings.confirmCalls) != 0 || len(bookings.rejectCalls) != 0 {
		t.Error("unknown status must not settle the booking")
	}
}

func TestHandleWebhook_IdempotentRedelivery(t *testing.T) {
	bookings := newStubBookings()
	b := awaitingBooking("ref_1")
	bookings.add(b)

	r := NewReconciler(bookings, &stubBookingRepo{bookings: bookings}, NewMockGateway())
	ctx := context.Background()

	event := WebhookEvent{OrderID: b.ID.String(), GatewayRef: "ref_1", Status: string(StatusSucceeded)}

	first, err := r.HandleWebhook(ctx, event)
	if err != nil {
		t.Fatalf("first HandleWebhook() error = %v", err)
	}
	second, err := r.HandleWebhook(ctx, event)
	if err != nil {
		t.Fatalf("second HandleWebhook() error = %v", err)
	}
	if second.Status != booking.StatusCompleted || second.TicketToken != first.TicketToken {
		t.Errorf("redelivery changed the settled booking: %+v", second)
	}
}

func TestReconcilePending(t *testing.T) {
	bookings := newStubBookings()
	gateway := NewMockGateway()
	ctx := context.Background()

	// One paid, one still pending at the gateway, one with no link yet.
	paidLink, _ := gateway.CreateLink(ctx, &CreateLinkRequest{OrderID: "o1", Amount: 90000})
	pendingLink, _ := gateway.CreateLink(ctx, &CreateLinkRequest{OrderID: "o2", Amount: 90000})
	gateway.MarkPaid(paidLink.GatewayRef)

	paid := awaitingBooking(paidLink.GatewayRef)
	pending := awaitingBooking(pendingLink.GatewayRef)
	noLink := awaitingBooking("")
	bookings.add(paid)
	bookings.add(pending)
	bookings.add(noLink)

	r := NewReconciler(bookings, &stubBookingRepo{bookings: bookings}, gateway)

	settled, err := r.ReconcilePending(ctx, 100)
	if err != nil {
		t.Fatalf("ReconcilePending() error = %v", err)
	}
	if settled != 1 {
		t.Errorf("ReconcilePending() = %d, want 1", settled)
	}
	if paid.Status != booking.StatusCompleted {
		t.Errorf("paid booking status = %s, want %s", paid.Status, booking.StatusCompleted)
	}
	if pending.Status != booking.StatusAwaitingOnlinePayment {
		t.Errorf("pending booking status = %s, want untouched %s", pending.Status, booking.StatusAwaitingOnlinePayment)
	}
	if noLink.Status != booking.StatusAwaitingOnlinePayment {
		t.Errorf("linkless booking status = %s, want untouched %s", noLink.Status, booking.StatusAwaitingOnlinePayment)
	}
}

func TestDefaultPollWorkerConfig(t *testing.T) {
	config := DefaultPollWorkerConfig()

	if config.Interval != time.Minute {
		t.Errorf("Interval = %v, want %v", config.Interval, time.Minute)
	}
	if config.BatchSize != 100 {
		t.Errorf("BatchSize = %v, want %v", config.BatchSize, 100)
	}
}
