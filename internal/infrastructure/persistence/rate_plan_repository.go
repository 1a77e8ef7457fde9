package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/pricing"
	"github.com/pms/backend/internal/domain/shared"
)

// GormRatePlanRepository implements pricing.RatePlanRepository using GORM
type GormRatePlanRepository struct {
	db *gorm.DB
}

// NewGormRatePlanRepository creates a new GormRatePlanRepository
func NewGormRatePlanRepository(db *gorm.DB) *GormRatePlanRepository {
	return &GormRatePlanRepository{db: db}
}

// FindByID finds a rate plan by ID; absent plans return nil
func (r *GormRatePlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.RatePlan, error) {
	var plan pricing.RatePlan
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// FindAll returns rate plans matching the filter. Search matches the plan
// name.
func (r *GormRatePlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]pricing.RatePlan, error) {
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&pricing.RatePlan{})
	if filter.Search != "" {
		query = query.Where("plan_name LIKE ?", "%"+filter.Search+"%")
	}
	var plans []pricing.RatePlan
	if err := applyFilter(query, filter).Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindActiveForDate returns active plans for the property/unit-type whose
// validity window contains the date, highest priority first
func (r *GormRatePlanRepository) FindActiveForDate(ctx context.Context, propertyID, unitTypeID uuid.UUID, date time.Time) ([]pricing.RatePlan, error) {
	var plans []pricing.RatePlan
	err := dbFor(ctx, r.db).WithContext(ctx).
		Where("property_id = ? AND unit_type_id = ? AND active = ?", propertyID, unitTypeID, true).
		Where("valid_from <= ? AND valid_to >= ?", date, date).
		Order("priority desc, created_at desc").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// FindOverlapping returns active plans for the same scope overlapping the
// given window, excluding the given plan id
func (r *GormRatePlanRepository) FindOverlapping(ctx context.Context, propertyID, unitTypeID uuid.UUID, from, to time.Time, exclude uuid.UUID) ([]pricing.RatePlan, error) {
	query := dbFor(ctx, r.db).WithContext(ctx).
		Where("property_id = ? AND unit_type_id = ? AND active = ?", propertyID, unitTypeID, true).
		Where("valid_from <= ? AND valid_to >= ?", to, from)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	var plans []pricing.RatePlan
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Save persists the rate plan
func (r *GormRatePlanRepository) Save(ctx context.Context, plan *pricing.RatePlan) error {
	return dbFor(ctx, r.db).WithContext(ctx).Save(plan).Error
}

// Delete removes a rate plan
func (r *GormRatePlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFor(ctx, r.db).WithContext(ctx).Delete(&pricing.RatePlan{}, "id = ?", id).Error
}
