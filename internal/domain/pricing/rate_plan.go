package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/shared/valueobject"
)

// RatePlan is a property + unit-type scoped pricing rule. Overlapping
// active plans for the same scope are permitted; the resolver picks the
// highest priority match at lookup time.
type RatePlan struct {
	shared.BaseAggregateRoot
	PlanName             string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	PropertyID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitTypeID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ValidFrom            time.Time       `gorm:"not null"`
	ValidTo              time.Time       `gorm:"not null"`
	BaseRate             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WeekendRate          decimal.Decimal `gorm:"type:decimal(18,4)"`
	SeasonalMarkupPct    decimal.Decimal `gorm:"type:decimal(5,2)"`
	Priority             int             `gorm:"not null;default:1;index"`
	ApplyOnWeekendsOnly  bool            `gorm:"not null;default:false"`
	Active               bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (RatePlan) TableName() string {
	return "rate_plans"
}

// NewRatePlan creates a new active rate plan
func NewRatePlan(planName string, propertyID, unitTypeID uuid.UUID, validFrom, validTo time.Time, baseRate decimal.Decimal, priority int) (*RatePlan, error) {
	if planName == "" {
		return nil, shared.NewValidationError("Rate plan name cannot be empty")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewValidationError("Property reference is required")
	}
	if unitTypeID == uuid.Nil {
		return nil, shared.NewValidationError("Unit type reference is required")
	}
	if !valueobject.TruncateToDay(validTo).After(valueobject.TruncateToDay(validFrom)) {
		return nil, shared.NewValidationError("Valid To date must be after Valid From date")
	}
	if baseRate.IsNegative() {
		return nil, shared.NewValidationError("Base rate must be positive")
	}
	if priority <= 0 {
		priority = 1
	}

	return &RatePlan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PlanName:          planName,
		PropertyID:        propertyID,
		UnitTypeID:        unitTypeID,
		ValidFrom:         valueobject.TruncateToDay(validFrom),
		ValidTo:           valueobject.TruncateToDay(validTo),
		BaseRate:          baseRate,
		Priority:          priority,
		Active:            true,
	}, nil
}

// SetWeekendRate sets the rate applied on weekend nights
func (p *RatePlan) SetWeekendRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewValidationError("Weekend rate must be positive")
	}
	p.WeekendRate = rate
	p.UpdatedAt = time.Now()
	return nil
}

// SetSeasonalMarkup sets the seasonal markup percent applied on top of the
// selected base or weekend rate
func (p *RatePlan) SetSeasonalMarkup(pct decimal.Decimal) error {
	if pct.IsNegative() {
		return shared.NewValidationError("Seasonal markup must be positive")
	}
	p.SeasonalMarkupPct = pct
	p.UpdatedAt = time.Now()
	return nil
}

// RestrictToWeekends marks the plan as applicable on weekend nights only
func (p *RatePlan) RestrictToWeekends() {
	p.ApplyOnWeekendsOnly = true
	p.UpdatedAt = time.Now()
}

// Deactivate excludes the plan from rate resolution
func (p *RatePlan) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// CoversDate reports whether the date falls inside the validity window
// (inclusive on both ends, matching how operators define seasons)
func (p *RatePlan) CoversDate(date time.Time) bool {
	d := valueobject.TruncateToDay(date)
	return !d.Before(p.ValidFrom) && !d.After(p.ValidTo)
}

// RateFor returns the plan's nightly amount for a weekend or weekday
// night, seasonal markup applied
func (p *RatePlan) RateFor(isWeekend bool) decimal.Decimal {
	rate := p.BaseRate
	if isWeekend && p.WeekendRate.IsPositive() {
		rate = p.WeekendRate
	}
	if p.SeasonalMarkupPct.IsPositive() {
		hundred := decimal.NewFromInt(100)
		rate = rate.Mul(hundred.Add(p.SeasonalMarkupPct)).Div(hundred)
	}
	return rate
}
