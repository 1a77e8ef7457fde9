package property

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
)

// Owner represents a unit owner entitled to a periodic revenue settlement.
// The supplier account code links the owner to the payables side of the
// accounting collaborator.
type Owner struct {
	shared.BaseAggregateRoot
	OwnerName           string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Email               string          `gorm:"type:varchar(200)"`
	Phone               string          `gorm:"type:varchar(50)"`
	CommissionRate      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	SupplierAccountCode string          `gorm:"type:varchar(100)"`
	Active              bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Owner) TableName() string {
	return "owners"
}

// NewOwner creates a new owner with the management commission rate in percent
func NewOwner(ownerName string, commissionRate decimal.Decimal) (*Owner, error) {
	if ownerName == "" {
		return nil, shared.NewValidationError("Owner name cannot be empty")
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewValidationError("Commission rate must be between 0 and 100")
	}
	return &Owner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerName:         ownerName,
		CommissionRate:    commissionRate,
		Active:            true,
	}, nil
}

// LinkSupplierAccount records the payables account code used when posting
// settlements for this owner
func (o *Owner) LinkSupplierAccount(code string) error {
	if code == "" {
		return shared.NewValidationError("Supplier account code cannot be empty")
	}
	o.SupplierAccountCode = code
	o.UpdatedAt = time.Now()
	return nil
}

// UpdateCommissionRate changes the owner's commission rate
func (o *Owner) UpdateCommissionRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("Commission rate must be between 0 and 100")
	}
	o.CommissionRate = rate
	o.UpdatedAt = time.Now()
	return nil
}

// Deactivate marks the owner as inactive; inactive owners are skipped by
// recurring settlement generation
func (o *Owner) Deactivate() {
	o.Active = false
	o.UpdatedAt = time.Now()
}
