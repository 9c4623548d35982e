package catalog

import (
	"context"
	"errors"
	"fmt"

	"cinecore/internal/shared/constants"
	"cinecore/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a catalog record does not exist.
var ErrNotFound = errors.New("catalog record not found")

// Repository is the read-only boundary to the catalog/scheduling collaborator.
// The engine never mutates these tables.
type Repository interface {
	ShowtimeByID(ctx context.Context, id uuid.UUID) (*Showtime, error)
	LayoutForShowtime(ctx context.Context, showtimeID uuid.UUID) (*Showtime, *Theater, error)
	CombosByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Combo, error)
	VoucherByCode(ctx context.Context, code string) (*Voucher, error)
}

type repository struct {
	db           *gorm.DB
	cacheService cache.Service
}

// NewRepository creates the catalog reader. cacheService may be nil, in which
// case every lookup goes straight to Postgres.
func NewRepository(db *gorm.DB, cacheService cache.Service) Repository {
	return &repository{db: db, cacheService: cacheService}
}

func (r *repository) ShowtimeByID(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	var showtime Showtime

	if r.cacheService != nil {
		key := constants.BuildShowtimeKey(id.String())
		err := r.cacheService.GetOrSet(ctx, key, constants.TTL_SHOWTIME_DETAIL, func() (interface{}, error) {
			var st Showtime
			if err := r.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
				return nil, err
			}
			return st, nil
		}, &showtime)
		if err == nil {
			return &showtime, nil
		}
		// fall through to a direct read on any cache trouble
	}

	err := r.db.WithContext(ctx).First(&showtime, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get showtime: %w", err)
	}
	return &showtime, nil
}

func (r *repository) LayoutForShowtime(ctx context.Context, showtimeID uuid.UUID) (*Showtime, *Theater, error) {
	showtime, err := r.ShowtimeByID(ctx, showtimeID)
	if err != nil {
		return nil, nil, err
	}

	var theater Theater
	if r.cacheService != nil {
		key := constants.BuildTheaterKey(showtime.TheaterID.String())
		if err := r.cacheService.GetOrSet(ctx, key, constants.TTL_THEATER_LAYOUT, func() (interface{}, error) {
			var t Theater
			if err := r.db.WithContext(ctx).First(&t, "id = ?", showtime.TheaterID).Error; err != nil {
				return nil, err
			}
			return t, nil
		}, &theater); err == nil {
			return showtime, &theater, nil
		}
	}

	err = r.db.WithContext(ctx).First(&theater, "id = ?", showtime.TheaterID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get theater: %w", err)
	}
	return showtime, &theater, nil
}

func (r *repository) CombosByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Combo, error) {
	combos := make(map[uuid.UUID]Combo, len(ids))
	if len(ids) == 0 {
		return combos, nil
	}

	var rows []Combo
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = true", ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get combos: %w", err)
	}

	for _, c := range rows {
		combos[c.ID] = c
	}
	return combos, nil
}

func (r *repository) VoucherByCode(ctx context.Context, code string) (*Voucher, error) {
	var voucher Voucher
	err := r.db.WithContext(ctx).First(&voucher, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}
	return &voucher, nil
}

var _ Repository = (*repository)(nil)
