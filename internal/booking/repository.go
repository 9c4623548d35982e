package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListQuery filters staff booking listings.
type ListQuery struct {
	Status     string `form:"status"`
	ShowtimeID string `form:"showtime_id"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByTicketToken(ctx context.Context, token string) (*Booking, error)
	List(ctx context.Context, query ListQuery) ([]Booking, int64, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]uuid.UUID, error)

	// UpdateInTx reloads the booking under SELECT ... FOR UPDATE and applies fn
	// inside the transaction, serializing conflicting lifecycle transitions on
	// the same booking row.
	UpdateInTx(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, b *Booking) error) (*Booking, error)

	// MarkCheckedIn flips the single-use check-in flag. It reports false when
	// the ticket was already consumed or the booking is not completed.
	MarkCheckedIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Preload("Combos").
		First(&b, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (r *repository) GetByTicketToken(ctx context.Context, token string) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		First(&b, "ticket_token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by ticket token: %w", err)
	}
	return &b, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Booking{})
	baseQuery = r.applyFilters(baseQuery, query)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Seats").
		Preload("Combos").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

func (r *repository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("status IN ?", []Status{StatusPending, StatusAwaitingOnlinePayment, StatusAwaitingCashConfirmation}).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) ListByStatus(ctx context.Context, status Status, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("status = ?", status).
		Order("updated_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// lockBooking loads the booking row under SELECT ... FOR UPDATE so that
// conflicting lifecycle transitions on the same booking serialize.
func lockBooking(tx *gorm.DB, id uuid.UUID) *gorm.DB {
	return tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Seats").
		Preload("Combos")
}

func (r *repository) UpdateInTx(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, b *Booking) error) (*Booking, error) {
	var result *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b Booking
		err := lockBooking(tx, id).First(&b, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if err := fn(tx, &b); err != nil {
			return err
		}

		b.UpdatedAt = time.Now()
		if err := tx.Save(&b).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		result = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) MarkCheckedIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND checked_in = false AND status = ?", id, StatusCompleted).
		Updates(map[string]interface{}{
			"checked_in":    true,
			"checked_in_at": at,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark check-in: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) applyFilters(query *gorm.DB, filters ListQuery) *gorm.DB {
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if filters.ShowtimeID != "" {
		if showtimeID, err := uuid.Parse(filters.ShowtimeID); err == nil {
			query = query.Where("showtime_id = ?", showtimeID)
		}
	}

	if filters.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", filters.DateFrom); err == nil {
			query = query.Where("created_at >= ?", dateFrom)
		}
	}

	if filters.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", filters.DateTo); err == nil {
			dateTo = dateTo.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
			query = query.Where("created_at <= ?", dateTo)
		}
	}

	return query
}

// CalculateTotalPages converts a row count into page count for responses.
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
