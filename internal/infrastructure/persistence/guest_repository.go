package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/reservation"
	"github.com/pms/backend/internal/domain/shared"
)

// GormGuestRepository implements property.GuestRepository using GORM
type GormGuestRepository struct {
	db *gorm.DB
}

// NewGormGuestRepository creates a new GormGuestRepository
func NewGormGuestRepository(db *gorm.DB) *GormGuestRepository {
	return &GormGuestRepository{db: db}
}

// FindByID finds a guest by ID; absent guests return nil
func (r *GormGuestRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Guest, error) {
	var guest property.Guest
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&guest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &guest, nil
}

// FindAll returns guests matching the filter. Search matches name, phone
// or email.
func (r *GormGuestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]property.Guest, error) {
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&property.Guest{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("guest_name LIKE ? OR phone LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}
	var guests []property.Guest
	if err := applyFilter(query, filter).Find(&guests).Error; err != nil {
		return nil, err
	}
	return guests, nil
}

// Save persists the guest
func (r *GormGuestRepository) Save(ctx context.Context, guest *property.Guest) error {
	return dbFor(ctx, r.db).WithContext(ctx).Save(guest).Error
}

type guestStatsRow struct {
	TotalVisits     int64
	LastVisit       *time.Time
	LifetimeRevenue decimal.NullDecimal
}

// AggregateStats computes visit statistics across the guest's checked-out
// reservations
func (r *GormGuestRepository) AggregateStats(ctx context.Context, guestID uuid.UUID) (*property.GuestStats, error) {
	var row guestStatsRow
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&reservation.Reservation{}).
		Select("COUNT(*) AS total_visits, MAX(checked_out_at) AS last_visit, SUM(total_amount) AS lifetime_revenue").
		Where("guest_id = ? AND status = ?", guestID, reservation.StatusCheckedOut).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	stats := &property.GuestStats{
		TotalVisits:     int(row.TotalVisits),
		LastVisit:       row.LastVisit,
		LifetimeRevenue: decimal.Zero,
	}
	if row.LifetimeRevenue.Valid {
		stats.LifetimeRevenue = row.LifetimeRevenue.Decimal
	}
	return stats, nil
}
