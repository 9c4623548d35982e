package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cinecore/internal/booking"
	"cinecore/internal/inventory"
	"cinecore/pkg/logger"

	"github.com/google/uuid"
)

// WebhookEvent is the provider's settlement notification. Delivery is
// at-least-once; re-applying a settled booking is a no-op.
type WebhookEvent struct {
	OrderID    string `json:"order_id" binding:"required,uuid"`
	GatewayRef string `json:"reference" binding:"required"`
	Status     string `json:"status" binding:"required"`
}

// Reconciler converges booking state with gateway state, from webhooks and
// from polling.
type Reconciler interface {
	HandleWebhook(ctx context.Context, event WebhookEvent) (*booking.Booking, error)
	ReconcilePending(ctx context.Context, limit int) (int, error)
}

type reconciler struct {
	bookings booking.Service
	repo     booking.Repository
	gateway  Gateway
}

func NewReconciler(bookings booking.Service, repo booking.Repository, gateway Gateway) Reconciler {
	return &reconciler{
		bookings: bookings,
		repo:     repo,
		gateway:  gateway,
	}
}

func (r *reconciler) HandleWebhook(ctx context.Context, event WebhookEvent) (*booking.Booking, error) {
	bookingID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order id %q: %w", event.OrderID, err)
	}

	logger.GetDefault().LogPaymentEvent(ctx, event.OrderID, event.GatewayRef, event.Status)

	return r.apply(ctx, bookingID, Status(event.Status))
}

// ReconcilePending polls the gateway for bookings still awaiting online
// payment. It backs up the webhook path when deliveries are lost.
func (r *reconciler) ReconcilePending(ctx context.Context, limit int) (int, error) {
	ids, err := r.repo.ListByStatus(ctx, booking.StatusAwaitingOnlinePayment, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending payments: %w", err)
	}

	settled := 0
	for _, id := range ids {
		b, err := r.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, booking.ErrBookingNotFound) {
				continue
			}
			return settled, err
		}
		if b.GatewayRef == "" {
			continue
		}

		status, err := r.gateway.GetStatus(ctx, b.GatewayRef)
		if err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to poll payment status", err, map[string]interface{}{
				"booking_id":  id.String(),
				"gateway_ref": b.GatewayRef,
			})
			continue
		}
		if !status.Terminal() {
			continue
		}

		logger.GetDefault().LogPaymentEvent(ctx, id.String(), b.GatewayRef, string(status))
		if _, err := r.apply(ctx, id, status); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to reconcile payment", err, map[string]interface{}{
				"booking_id": id.String(),
			})
			continue
		}
		settled++
	}
	return settled, nil
}

func (r *reconciler) apply(ctx context.Context, bookingID uuid.UUID, status Status) (*booking.Booking, error) {
	switch status {
	case StatusSucceeded:
		b, err := r.bookings.ConfirmPayment(ctx, bookingID)
		if errors.Is(err, inventory.ErrHoldExpired) {
			// Settlement landed after the hold lapsed; the booking is failed
			// and refund handling is the operator's call.
			return b, nil
		}
		return b, err
	case StatusFailed:
		return r.bookings.RejectPayment(ctx, bookingID, "payment failed at gateway")
	case StatusCancelled:
		return r.bookings.RejectPayment(ctx, bookingID, "payment cancelled by customer")
	case StatusPending:
		return r.bookings.GetBooking(ctx, bookingID)
	default:
		// Providers grow status values; acknowledge so they do not retry the
		// delivery forever, and leave the booking untouched.
		logger.GetDefault().InfoWithContext(ctx, "ignoring unrecognized payment status", map[string]interface{}{
			"booking_id": bookingID.String(),
			"status":     string(status),
		})
		return r.bookings.GetBooking(ctx, bookingID)
	}
}

// PollWorkerConfig controls the gateway reconciliation loop.
type PollWorkerConfig struct {
	Interval  time.Duration
	BatchSize int
}

func DefaultPollWorkerConfig() *PollWorkerConfig {
	return &PollWorkerConfig{
		Interval:  time.Minute,
		BatchSize: 100,
	}
}

// PollWorker periodically runs ReconcilePending.
type PollWorker struct {
	reconciler Reconciler
	config     *PollWorkerConfig

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

func NewPollWorker(reconciler Reconciler, config *PollWorkerConfig) *PollWorker {
	if config == nil {
		config = DefaultPollWorkerConfig()
	}
	return &PollWorker{
		reconciler: reconciler,
		config:     config,
	}
}

func (w *PollWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.run(ctx)

	logger.GetDefault().InfoWithContext(ctx, "payment poll worker started", map[string]interface{}{
		"interval":   w.config.Interval.String(),
		"batch_size": w.config.BatchSize,
	})
}

func (w *PollWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stop)
	done := w.done
	w.mu.Unlock()

	<-done
}

func (w *PollWorker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.reconciler.ReconcilePending(ctx, w.config.BatchSize); err != nil {
				logger.GetDefault().ErrorWithContext(ctx, "payment reconciliation scan failed", err, nil)
			}
		}
	}
}
