package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/pricing"
	"github.com/pms/backend/internal/domain/shared"
)

// PricingService exposes rate plan management and rate resolution
type PricingService struct {
	planRepo pricing.RatePlanRepository
	resolver *pricing.Resolver
}

// NewPricingService creates a new PricingService
func NewPricingService(planRepo pricing.RatePlanRepository, resolver *pricing.Resolver) *PricingService {
	return &PricingService{planRepo: planRepo, resolver: resolver}
}

// CreateRatePlanRequest carries the fields for a new rate plan
type CreateRatePlanRequest struct {
	PlanName            string    `json:"plan_name" binding:"required"`
	PropertyID          uuid.UUID `json:"property_id" binding:"required"`
	UnitTypeID          uuid.UUID `json:"unit_type_id" binding:"required"`
	ValidFrom           time.Time `json:"valid_from" binding:"required"`
	ValidTo             time.Time `json:"valid_to" binding:"required"`
	BaseRate            string    `json:"base_rate" binding:"required,amount"`
	WeekendRate         *string   `json:"weekend_rate,omitempty"`
	SeasonalMarkupPct   *string   `json:"seasonal_markup_pct,omitempty"`
	Priority            int       `json:"priority"`
	ApplyOnWeekendsOnly bool      `json:"apply_on_weekends_only"`
}

// CreateRatePlan creates and persists a rate plan
func (s *PricingService) CreateRatePlan(ctx context.Context, req CreateRatePlanRequest) (*pricing.RatePlan, error) {
	baseRate, err := parseAmount(req.BaseRate, "base rate")
	if err != nil {
		return nil, err
	}

	existing, err := s.planRepo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 1, Search: req.PlanName})
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].PlanName == req.PlanName {
			return nil, shared.NewConflictError("A rate plan named " + req.PlanName + " already exists")
		}
	}

	plan, err := pricing.NewRatePlan(req.PlanName, req.PropertyID, req.UnitTypeID, req.ValidFrom, req.ValidTo, baseRate, req.Priority)
	if err != nil {
		return nil, err
	}
	if req.WeekendRate != nil {
		rate, err := parseAmount(*req.WeekendRate, "weekend rate")
		if err != nil {
			return nil, err
		}
		if err := plan.SetWeekendRate(rate); err != nil {
			return nil, err
		}
	}
	if req.SeasonalMarkupPct != nil {
		pct, err := parseAmount(*req.SeasonalMarkupPct, "seasonal markup")
		if err != nil {
			return nil, err
		}
		if err := plan.SetSeasonalMarkup(pct); err != nil {
			return nil, err
		}
	}
	if req.ApplyOnWeekendsOnly {
		plan.RestrictToWeekends()
	}

	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// GetRatePlan returns one rate plan
func (s *PricingService) GetRatePlan(ctx context.Context, id uuid.UUID) (*pricing.RatePlan, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, shared.NewNotFoundError("Rate plan not found")
	}
	return plan, nil
}

// ListRatePlans returns rate plans matching the filter
func (s *PricingService) ListRatePlans(ctx context.Context, filter shared.Filter) ([]pricing.RatePlan, error) {
	return s.planRepo.FindAll(ctx, filter)
}

// DeactivateRatePlan retires a plan from future resolutions
func (s *PricingService) DeactivateRatePlan(ctx context.Context, id uuid.UUID) error {
	plan, err := s.GetRatePlan(ctx, id)
	if err != nil {
		return err
	}
	plan.Deactivate()
	return s.planRepo.Save(ctx, plan)
}

// ResolveRate resolves the nightly rate for one date
func (s *PricingService) ResolveRate(ctx context.Context, propertyID, unitTypeID uuid.UUID, date time.Time) (*pricing.ResolvedRate, error) {
	return s.resolver.ResolveNightlyRate(ctx, propertyID, unitTypeID, date)
}

// ResolveStayTotal prices every night of a stay and totals it
func (s *PricingService) ResolveStayTotal(ctx context.Context, propertyID, unitTypeID uuid.UUID, checkIn, checkOut time.Time) (*pricing.StayTotal, error) {
	return s.resolver.ResolveStayTotal(ctx, propertyID, unitTypeID, checkIn, checkOut)
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, shared.NewValidationError("Invalid " + field + ": " + raw)
	}
	if d.IsNegative() {
		return decimal.Zero, shared.NewValidationError("Negative " + field + " is not allowed")
	}
	return d, nil
}
