package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"cinecore/internal/catalog"
	"cinecore/internal/inventory"
	"cinecore/internal/layout"
	"cinecore/internal/pricing"
	"cinecore/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeatInventory is the slice of the inventory the lifecycle needs.
type SeatInventory interface {
	Hold(ctx context.Context, showtimeID, bookingID string, seats []string, ttl time.Duration) (*inventory.HoldSet, error)
	Release(ctx context.Context, hold *inventory.HoldSet) error
	Commit(ctx context.Context, hold *inventory.HoldSet) error
	Extend(ctx context.Context, hold *inventory.HoldSet, ttl time.Duration) error
}

// PaymentLink is what the gateway hands back for the online path.
type PaymentLink struct {
	PaymentURL string
	GatewayRef string
}

// PaymentGateway is a local interface to avoid a circular dependency with the
// payment package, which drives this service from the reconciliation side.
type PaymentGateway interface {
	CreateLink(ctx context.Context, bookingID string, amount float64, successURL, cancelURL string) (*PaymentLink, error)
}

// EventPublisher pushes terminal booking events onto the ticket stream.
// Publishing is best-effort; the lifecycle never fails on it.
type EventPublisher interface {
	PublishBookingCompleted(ctx context.Context, b *Booking) error
	PublishBookingFailed(ctx context.Context, b *Booking, reason string) error
}

// ComboSelection is one requested combo line.
type ComboSelection struct {
	ComboID  uuid.UUID
	Quantity int
}

// CreateBookingInput is the service-level creation request.
type CreateBookingInput struct {
	ShowtimeID    uuid.UUID
	CustomerID    uuid.UUID
	CustomerEmail string
	Seats         []string
	Combos        []ComboSelection
	VoucherCode   string
	PaymentMethod PaymentMethod
}

// Config carries the lifecycle timing and gateway return URLs.
type Config struct {
	SelectionTTL     time.Duration // initial seat-selection window
	PaymentWindowTTL time.Duration // longer window while awaiting payment
	SuccessURL       string
	CancelURL        string
}

// Service is the booking lifecycle state machine.
type Service interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, query ListQuery) ([]Booking, int64, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID) (*Booking, error)
	RejectPayment(ctx context.Context, id uuid.UUID, reason string) (*Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ExpireOverdue(ctx context.Context, limit int) (int, error)
}

type service struct {
	repo      Repository
	catalog   catalog.Repository
	inventory SeatInventory
	gateway   PaymentGateway
	events    EventPublisher
	cfg       Config
}

func NewService(repo Repository, cat catalog.Repository, inv SeatInventory, gateway PaymentGateway, events EventPublisher, cfg Config) Service {
	return &service{
		repo:      repo,
		catalog:   cat,
		inventory: inv,
		gateway:   gateway,
		events:    events,
		cfg:       cfg,
	}
}

func (s *service) CreateBooking(ctx context.Context, input CreateBookingInput) (*Booking, error) {
	if len(input.Seats) == 0 {
		return nil, ErrSeatsRequired
	}
	if !input.PaymentMethod.IsValid() {
		return nil, fmt.Errorf("invalid payment method: %s", input.PaymentMethod)
	}

	now := time.Now()

	showtime, theater, err := s.catalog.LayoutForShowtime(ctx, input.ShowtimeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve showtime: %w", err)
	}
	if showtime.Ended(now) {
		return nil, ErrShowtimeOver
	}

	seatLayout, err := theater.Layout()
	if err != nil {
		return nil, err
	}

	requested := make([]layout.Seat, 0, len(input.Seats))
	for _, label := range input.Seats {
		seat, err := layout.ParseSeatLabel(label)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSeats, err)
		}
		requested = append(requested, seat)
	}

	// A couple pair is one purchasable unit: requesting either half claims
	// the whole pair.
	seats, err := seatLayout.ExpandPairs(requested)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeats, err)
	}
	units, err := seatLayout.Units(seats)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeats, err)
	}

	comboLines, bookingCombos, err := s.resolveCombos(ctx, input.Combos)
	if err != nil {
		return nil, err
	}

	voucher, err := s.resolveVoucher(ctx, input.VoucherCode, units, showtime.PriceTable(), comboLines, now)
	if err != nil {
		return nil, err
	}

	quote := pricing.Compute(units, showtime.PriceTable(), comboLines, voucher, now)

	bookingID := uuid.New()
	labels := make([]string, 0, len(seats))
	for _, seat := range seats {
		labels = append(labels, seat.Label())
	}

	hold, err := s.inventory.Hold(ctx, input.ShowtimeID.String(), bookingID.String(), labels, s.cfg.SelectionTTL)
	if err != nil {
		return nil, err
	}

	ref, err := generateBookingRef()
	if err != nil {
		s.releaseQuietly(ctx, hold)
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	expiresAt := now.Add(s.cfg.SelectionTTL)
	b := &Booking{
		ID:            bookingID,
		BookingRef:    ref,
		ShowtimeID:    input.ShowtimeID,
		CustomerID:    input.CustomerID,
		CustomerEmail: input.CustomerEmail,
		HoldID:        hold.ID,
		Subtotal:      quote.Subtotal,
		Discount:      quote.Discount,
		Total:         quote.Total,
		VoucherCode:   input.VoucherCode,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: PaymentStatusPending,
		Status:        StatusPending,
		ExpiresAt:     &expiresAt,
		Seats:         buildBookingSeats(bookingID, units, showtime.PriceTable()),
		Combos:        bookingCombos,
	}
	for i := range b.Combos {
		b.Combos[i].BookingID = bookingID
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.releaseQuietly(ctx, hold)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	logger.GetDefault().LogBookingCreated(ctx, b.ID.String(), b.ShowtimeID.String(), string(b.PaymentMethod))

	switch input.PaymentMethod {
	case PaymentOnline:
		return s.startOnlinePayment(ctx, b, hold)
	default:
		return s.startCashConfirmation(ctx, b, hold)
	}
}

// startOnlinePayment requests a payment link and widens the hold to the
// payment window. A gateway failure at this point fails the booking and frees
// the seats; the caller re-selects.
func (s *service) startOnlinePayment(ctx context.Context, b *Booking, hold *inventory.HoldSet) (*Booking, error) {
	link, err := s.gateway.CreateLink(ctx, b.ID.String(), b.Total, s.cfg.SuccessURL, s.cfg.CancelURL)
	if err != nil {
		failed, failErr := s.failBooking(ctx, b.ID, "payment link creation failed")
		if failErr != nil {
			return nil, fmt.Errorf("failed to create payment link: %w", err)
		}
		return failed, fmt.Errorf("failed to create payment link: %w", err)
	}

	if err := s.inventory.Extend(ctx, hold, s.cfg.PaymentWindowTTL); err != nil {
		if errors.Is(err, inventory.ErrHoldExpired) {
			failed, _ := s.failBooking(ctx, b.ID, "hold expired before payment window opened")
			if failed != nil {
				return failed, inventory.ErrHoldExpired
			}
		}
		return nil, fmt.Errorf("failed to extend hold: %w", err)
	}

	return s.repo.UpdateInTx(ctx, b.ID, func(tx *gorm.DB, b *Booking) error {
		if !b.Status.CanTransitionTo(StatusAwaitingOnlinePayment) {
			return invalidTransition(b.Status, "await online payment")
		}
		expiresAt := time.Now().Add(s.cfg.PaymentWindowTTL)
		b.Status = StatusAwaitingOnlinePayment
		b.GatewayRef = link.GatewayRef
		b.PaymentURL = link.PaymentURL
		b.ExpiresAt = &expiresAt
		return nil
	})
}

func (s *service) startCashConfirmation(ctx context.Context, b *Booking, hold *inventory.HoldSet) (*Booking, error) {
	if err := s.inventory.Extend(ctx, hold, s.cfg.PaymentWindowTTL); err != nil {
		if errors.Is(err, inventory.ErrHoldExpired) {
			failed, _ := s.failBooking(ctx, b.ID, "hold expired before cash confirmation window opened")
			if failed != nil {
				return failed, inventory.ErrHoldExpired
			}
		}
		return nil, fmt.Errorf("failed to extend hold: %w", err)
	}

	return s.repo.UpdateInTx(ctx, b.ID, func(tx *gorm.DB, b *Booking) error {
		if !b.Status.CanTransitionTo(StatusAwaitingCashConfirmation) {
			return invalidTransition(b.Status, "await cash confirmation")
		}
		expiresAt := time.Now().Add(s.cfg.PaymentWindowTTL)
		b.Status = StatusAwaitingCashConfirmation
		b.ExpiresAt = &expiresAt
		return nil
	})
}

// GetBooking applies lazy expiry: an overdue non-terminal booking reports
// FAILED and its seats are released, regardless of whether the sweep ran.
func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.IsOverdue(time.Now()) {
		return s.failBooking(ctx, id, "booking expired")
	}
	return b, nil
}

func (s *service) ListBookings(ctx context.Context, query ListQuery) ([]Booking, int64, error) {
	return s.repo.List(ctx, query)
}

// ConfirmPayment finalizes a booking from either awaiting state: commits the
// seats, issues the ticket token and completes. Re-delivery against a booking
// already terminal is a no-op returning the settled state.
func (s *service) ConfirmPayment(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var holdExpired bool
	var completed *Booking

	b, err := s.repo.UpdateInTx(ctx, id, func(tx *gorm.DB, b *Booking) error {
		if b.Status.IsTerminal() {
			return nil
		}
		if !b.Status.IsAwaitingPayment() {
			return invalidTransition(b.Status, "confirm payment")
		}

		now := time.Now()
		hold := &inventory.HoldSet{ID: b.HoldID, ShowtimeID: b.ShowtimeID.String()}

		if b.IsOverdue(now) {
			holdExpired = true
			s.releaseQuietly(ctx, hold)
			applyFailure(b, "booking expired")
			return nil
		}

		if err := s.inventory.Commit(ctx, hold); err != nil {
			if errors.Is(err, inventory.ErrHoldExpired) {
				holdExpired = true
				s.releaseQuietly(ctx, hold)
				applyFailure(b, "seat hold expired")
				return nil
			}
			return fmt.Errorf("failed to commit seats: %w", err)
		}

		token, err := generateTicketToken()
		if err != nil {
			return fmt.Errorf("failed to issue ticket token: %w", err)
		}

		b.Status = StatusCompleted
		b.PaymentStatus = PaymentStatusCompleted
		b.TicketToken = token
		b.ExpiresAt = nil
		completed = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if holdExpired {
		s.publishFailed(ctx, b, b.FailureReason)
		return b, inventory.ErrHoldExpired
	}
	if completed != nil {
		logger.GetDefault().LogBookingCompleted(ctx, b.ID.String(), b.TicketToken)
		s.publishCompleted(ctx, b)
	}
	return b, nil
}

// RejectPayment fails an in-flight booking and frees its seats. Terminal
// bookings are returned unchanged.
func (s *service) RejectPayment(ctx context.Context, id uuid.UUID, reason string) (*Booking, error) {
	var rejected bool
	b, err := s.repo.UpdateInTx(ctx, id, func(tx *gorm.DB, b *Booking) error {
		if b.Status.IsTerminal() {
			return nil
		}
		if !b.Status.IsAwaitingPayment() && b.Status != StatusPending {
			return invalidTransition(b.Status, "reject payment")
		}
		s.releaseQuietly(ctx, &inventory.HoldSet{ID: b.HoldID, ShowtimeID: b.ShowtimeID.String()})
		applyFailure(b, reason)
		rejected = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rejected {
		s.publishFailed(ctx, b, reason)
	}
	return b, nil
}

// CancelBooking is the customer/staff-initiated abort. Cancelling an already
// cancelled booking is a no-op; a completed booking cannot be cancelled.
func (s *service) CancelBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.UpdateInTx(ctx, id, func(tx *gorm.DB, b *Booking) error {
		if b.Status == StatusCancelled {
			return nil
		}
		if !b.Status.CanTransitionTo(StatusCancelled) {
			return invalidTransition(b.Status, "cancel")
		}
		s.releaseQuietly(ctx, &inventory.HoldSet{ID: b.HoldID, ShowtimeID: b.ShowtimeID.String()})
		now := time.Now()
		b.Status = StatusCancelled
		b.PaymentStatus = PaymentStatusCancelled
		b.ExpiresAt = nil
		b.CancelledAt = &now
		return nil
	})
}

// ExpireOverdue is the reclamation sweep. It is an optimization only; lazy
// expiry on read keeps correctness even when it never runs.
func (s *service) ExpireOverdue(ctx context.Context, limit int) (int, error) {
	ids, err := s.repo.ListOverdue(ctx, time.Now(), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue bookings: %w", err)
	}

	expired := 0
	for _, id := range ids {
		if _, err := s.failBooking(ctx, id, "booking expired"); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to expire booking", err, map[string]interface{}{
				"booking_id": id.String(),
			})
			continue
		}
		expired++
	}
	return expired, nil
}

// failBooking transitions an in-flight booking to FAILED and releases its
// seats. Already-terminal bookings are returned as-is.
func (s *service) failBooking(ctx context.Context, id uuid.UUID, reason string) (*Booking, error) {
	var failed bool
	b, err := s.repo.UpdateInTx(ctx, id, func(tx *gorm.DB, b *Booking) error {
		if b.Status.IsTerminal() {
			return nil
		}
		s.releaseQuietly(ctx, &inventory.HoldSet{ID: b.HoldID, ShowtimeID: b.ShowtimeID.String()})
		applyFailure(b, reason)
		failed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if failed {
		s.publishFailed(ctx, b, reason)
	}
	return b, nil
}

func (s *service) resolveCombos(ctx context.Context, selections []ComboSelection) ([]pricing.ComboLine, []BookingCombo, error) {
	if len(selections) == 0 {
		return nil, nil, nil
	}

	ids := make([]uuid.UUID, 0, len(selections))
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			return nil, nil, fmt.Errorf("combo %s: quantity must be positive", sel.ComboID)
		}
		ids = append(ids, sel.ComboID)
	}

	combos, err := s.catalog.CombosByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve combos: %w", err)
	}

	lines := make([]pricing.ComboLine, 0, len(selections))
	rows := make([]BookingCombo, 0, len(selections))
	for _, sel := range selections {
		combo, ok := combos[sel.ComboID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCombo, sel.ComboID)
		}
		lines = append(lines, pricing.ComboLine{
			ComboID:   combo.ID.String(),
			Quantity:  sel.Quantity,
			UnitPrice: combo.Price,
		})
		rows = append(rows, BookingCombo{
			ComboID:   combo.ID,
			Name:      combo.Name,
			Quantity:  sel.Quantity,
			UnitPrice: combo.Price,
		})
	}
	return lines, rows, nil
}

// resolveVoucher validates the code up front so an unusable voucher rejects
// the whole creation instead of silently pricing without it.
func (s *service) resolveVoucher(ctx context.Context, code string, units []layout.SeatUnit, prices pricing.PriceTable, combos []pricing.ComboLine, now time.Time) (*pricing.Voucher, error) {
	if code == "" {
		return nil, nil
	}

	record, err := s.catalog.VoucherByCode(ctx, code)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrInvalidVoucher
		}
		return nil, fmt.Errorf("failed to resolve voucher: %w", err)
	}

	rule := record.Rule()
	if !rule.InWindow(now) {
		return nil, ErrInvalidVoucher
	}

	base := pricing.Compute(units, prices, combos, nil, now)
	if base.Subtotal < rule.MinPurchase {
		return nil, ErrInvalidVoucher
	}

	return &rule, nil
}

func (s *service) releaseQuietly(ctx context.Context, hold *inventory.HoldSet) {
	if err := s.inventory.Release(ctx, hold); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to release seat hold", err, map[string]interface{}{
			"hold_id": hold.ID,
		})
	}
}

func (s *service) publishCompleted(ctx context.Context, b *Booking) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBookingCompleted(ctx, b); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish booking completed event", err, map[string]interface{}{
			"booking_id": b.ID.String(),
		})
	}
}

func (s *service) publishFailed(ctx context.Context, b *Booking, reason string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishBookingFailed(ctx, b, reason); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish booking failed event", err, map[string]interface{}{
			"booking_id": b.ID.String(),
		})
	}
}

func applyFailure(b *Booking, reason string) {
	b.Status = StatusFailed
	b.PaymentStatus = PaymentStatusFailed
	b.FailureReason = reason
	b.ExpiresAt = nil
}

func buildBookingSeats(bookingID uuid.UUID, units []layout.SeatUnit, prices pricing.PriceTable) []BookingSeat {
	var rows []BookingSeat
	for _, u := range units {
		switch u.Category {
		case layout.CategoryCouple:
			for i, seat := range u.Seats {
				price := 0.0
				if i == 0 {
					price = prices.Couple
				}
				rows = append(rows, BookingSeat{
					BookingID: bookingID,
					Row:       seat.Row,
					Number:    seat.Number,
					Label:     seat.Label(),
					Category:  string(layout.CategoryCouple),
					UnitPrice: price,
				})
			}
		default:
			unitPrice := prices.Standard
			if u.Category == layout.CategoryVIP {
				unitPrice = prices.VIP
			}
			for _, seat := range u.Seats {
				rows = append(rows, BookingSeat{
					BookingID: bookingID,
					Row:       seat.Row,
					Number:    seat.Number,
					Label:     seat.Label(),
					Category:  string(u.Category),
					UnitPrice: unitPrice,
				})
			}
		}
	}
	return rows
}

// generateBookingRef builds a short human-readable reference, e.g.
// CIN-20260301-QWHTRA.
func generateBookingRef() (string, error) {
	timestamp := time.Now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("CIN-%s-%s", timestamp, string(randomPart)), nil
}

// generateTicketToken issues the opaque single-use check-in credential.
func generateTicketToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
