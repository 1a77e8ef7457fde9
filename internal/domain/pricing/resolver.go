package pricing

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/shared/valueobject"
)

// Rate sources reported by the resolver
const (
	RateSourcePlan    = "RATE_PLAN"
	RateSourceDefault = "UNIT_TYPE_DEFAULT"
)

// ResolvedRate is the outcome of a single-night rate resolution
type ResolvedRate struct {
	Date      time.Time       `json:"date"`
	Rate      decimal.Decimal `json:"rate"`
	Source    string          `json:"source"`
	PlanID    *uuid.UUID      `json:"plan_id,omitempty"`
	PlanName  string          `json:"plan_name,omitempty"`
	IsWeekend bool            `json:"is_weekend"`
}

// StayTotal is the outcome of resolving every night of a stay
type StayTotal struct {
	Total       decimal.Decimal `json:"total"`
	Nights      int             `json:"nights"`
	AverageRate decimal.Decimal `json:"average_rate"`
	Breakdown   []ResolvedRate  `json:"breakdown"`
}

// DefaultRateSource supplies the fallback rate when no plan matches
type DefaultRateSource interface {
	DefaultRate(ctx context.Context, unitTypeID uuid.UUID) (decimal.Decimal, error)
}

// Resolver resolves the nightly price for a property/unit-type/date by
// combining base rate, weekend markup, seasonal markup and plan priority.
type Resolver struct {
	plans       RatePlanRepository
	defaults    DefaultRateSource
	weekendDays map[time.Weekday]bool
}

// NewResolver creates a Resolver. weekendDays defaults to Friday/Saturday
// when empty.
func NewResolver(plans RatePlanRepository, defaults DefaultRateSource, weekendDays []time.Weekday) *Resolver {
	if len(weekendDays) == 0 {
		weekendDays = []time.Weekday{time.Friday, time.Saturday}
	}
	set := make(map[time.Weekday]bool, len(weekendDays))
	for _, d := range weekendDays {
		set[d] = true
	}
	return &Resolver{plans: plans, defaults: defaults, weekendDays: set}
}

// IsWeekend reports whether the date falls on a configured weekend day
func (r *Resolver) IsWeekend(date time.Time) bool {
	return r.weekendDays[date.Weekday()]
}

// ResolveNightlyRate resolves the rate for one night. Active plans covering
// the date are ordered by descending priority; weekend-only plans are
// skipped on non-weekend dates. Equal priorities are broken by newest
// CreatedAt first (then ID) so overlapping same-priority plans resolve
// deterministically. With no match the unit type's default rate applies.
func (r *Resolver) ResolveNightlyRate(ctx context.Context, propertyID, unitTypeID uuid.UUID, date time.Time) (*ResolvedRate, error) {
	day := valueobject.TruncateToDay(date)
	isWeekend := r.IsWeekend(day)

	plans, err := r.plans.FindActiveForDate(ctx, propertyID, unitTypeID, day)
	if err != nil {
		return nil, err
	}

	applicable := plans[:0]
	for _, p := range plans {
		if p.ApplyOnWeekendsOnly && !isWeekend {
			continue
		}
		applicable = append(applicable, p)
	}

	if len(applicable) == 0 {
		rate, err := r.defaults.DefaultRate(ctx, unitTypeID)
		if err != nil {
			return nil, err
		}
		return &ResolvedRate{
			Date:      day,
			Rate:      rate,
			Source:    RateSourceDefault,
			IsWeekend: isWeekend,
		}, nil
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		if applicable[i].Priority != applicable[j].Priority {
			return applicable[i].Priority > applicable[j].Priority
		}
		if !applicable[i].CreatedAt.Equal(applicable[j].CreatedAt) {
			return applicable[i].CreatedAt.After(applicable[j].CreatedAt)
		}
		return applicable[i].ID.String() > applicable[j].ID.String()
	})

	best := applicable[0]
	planID := best.ID
	return &ResolvedRate{
		Date:      day,
		Rate:      best.RateFor(isWeekend),
		Source:    RateSourcePlan,
		PlanID:    &planID,
		PlanName:  best.PlanName,
		IsWeekend: isWeekend,
	}, nil
}

// ResolveStayTotal sums per-night resolution over the half-open range and
// returns total, per-night breakdown and average rate
func (r *Resolver) ResolveStayTotal(ctx context.Context, propertyID, unitTypeID uuid.UUID, checkIn, checkOut time.Time) (*StayTotal, error) {
	rng, err := valueobject.NewDateRange(checkIn, checkOut)
	if err != nil {
		return nil, shared.NewValidationError("Check-out date must be after check-in date")
	}

	result := &StayTotal{
		Total:     decimal.Zero,
		Nights:    rng.Nights(),
		Breakdown: make([]ResolvedRate, 0, rng.Nights()),
	}

	var resolveErr error
	rng.EachNight(func(date time.Time) {
		if resolveErr != nil {
			return
		}
		night, err := r.ResolveNightlyRate(ctx, propertyID, unitTypeID, date)
		if err != nil {
			resolveErr = err
			return
		}
		result.Total = result.Total.Add(night.Rate)
		result.Breakdown = append(result.Breakdown, *night)
	})
	if resolveErr != nil {
		return nil, resolveErr
	}

	if result.Nights > 0 {
		result.AverageRate = result.Total.Div(decimal.NewFromInt(int64(result.Nights)))
	}
	return result, nil
}
