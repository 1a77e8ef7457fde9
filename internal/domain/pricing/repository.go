package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pms/backend/internal/domain/shared"
)

// RatePlanRepository defines persistence operations for rate plans
type RatePlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RatePlan, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]RatePlan, error)
	// FindActiveForDate returns active plans for the property/unit-type
	// whose validity window contains the date
	FindActiveForDate(ctx context.Context, propertyID, unitTypeID uuid.UUID, date time.Time) ([]RatePlan, error)
	// FindOverlapping returns active plans for the same scope overlapping
	// the given window, excluding the given plan id
	FindOverlapping(ctx context.Context, propertyID, unitTypeID uuid.UUID, from, to time.Time, exclude uuid.UUID) ([]RatePlan, error)
	Save(ctx context.Context, plan *RatePlan) error
	Delete(ctx context.Context, id uuid.UUID) error
}
