package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
)

// UnitStatus represents the operational status of a rentable unit
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "AVAILABLE"
	UnitStatusBooked      UnitStatus = "BOOKED"
	UnitStatusOccupied    UnitStatus = "OCCUPIED"
	UnitStatusCleaning    UnitStatus = "CLEANING"
	UnitStatusMaintenance UnitStatus = "MAINTENANCE"
)

// IsValid checks if the status is a valid UnitStatus
func (s UnitStatus) IsValid() bool {
	switch s {
	case UnitStatusAvailable, UnitStatusBooked, UnitStatusOccupied, UnitStatusCleaning, UnitStatusMaintenance:
		return true
	}
	return false
}

// String returns the string representation of UnitStatus
func (s UnitStatus) String() string {
	return string(s)
}

// UnitType groups units sharing a layout and a default nightly rate.
// The default rate is the pricing fallback when no rate plan matches.
type UnitType struct {
	shared.BaseAggregateRoot
	Name        string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string          `gorm:"type:varchar(500)"`
	MaxGuests   int             `gorm:"not null;default:2"`
	DefaultRate decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Active      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UnitType) TableName() string {
	return "unit_types"
}

// NewUnitType creates a new unit type
func NewUnitType(name string, defaultRate decimal.Decimal, maxGuests int) (*UnitType, error) {
	if name == "" {
		return nil, shared.NewValidationError("Unit type name cannot be empty")
	}
	if defaultRate.IsNegative() {
		return nil, shared.NewValidationError("Default rate cannot be negative")
	}
	if maxGuests <= 0 {
		maxGuests = 2
	}
	return &UnitType{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		MaxGuests:         maxGuests,
		DefaultRate:       defaultRate,
		Active:            true,
	}, nil
}

// Unit represents a rentable physical space (room, apartment, villa).
// Status transitions are driven by the reservation lifecycle and the
// housekeeping/maintenance collaborators; the registry itself performs
// unconditional writes and leaves transition legality to each caller.
type Unit struct {
	shared.BaseAggregateRoot
	UnitCode     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	PropertyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitTypeID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	OwnerID      *uuid.UUID      `gorm:"type:uuid;index"`
	Floor        string          `gorm:"type:varchar(20)"`
	RatePerNight decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status       UnitStatus      `gorm:"type:varchar(20);not null;default:'AVAILABLE';index"`
	Active       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Unit) TableName() string {
	return "units"
}

// NewUnit creates a new unit in Available status
func NewUnit(unitCode string, propertyID, unitTypeID uuid.UUID, ratePerNight decimal.Decimal) (*Unit, error) {
	if unitCode == "" {
		return nil, shared.NewValidationError("Unit code is required")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewValidationError("Property reference is required")
	}
	if unitTypeID == uuid.Nil {
		return nil, shared.NewValidationError("Unit type reference is required")
	}
	if ratePerNight.IsNegative() {
		return nil, shared.NewValidationError("Rate per night must be positive")
	}

	return &Unit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UnitCode:          unitCode,
		PropertyID:        propertyID,
		UnitTypeID:        unitTypeID,
		RatePerNight:      ratePerNight,
		Status:            UnitStatusAvailable,
		Active:            true,
	}, nil
}

// Deactivate retires the unit from the bookable inventory
func (u *Unit) Deactivate() {
	u.Active = false
	u.UpdatedAt = time.Now()
}

// AssignOwner links the unit to a revenue-share owner
func (u *Unit) AssignOwner(ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return shared.NewValidationError("Owner ID cannot be empty")
	}
	u.OwnerID = &ownerID
	u.UpdatedAt = time.Now()
	return nil
}

// SetStatus performs an unconditional status write. Transition legality is
// the caller's responsibility.
func (u *Unit) SetStatus(status UnitStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Unknown unit status: " + string(status))
	}
	u.Status = status
	u.UpdatedAt = time.Now()
	return nil
}

// UpdateRate changes the unit's base nightly rate
func (u *Unit) UpdateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewValidationError("Rate per night must be positive")
	}
	u.RatePerNight = rate
	u.UpdatedAt = time.Now()
	return nil
}

// IsAvailable returns true if the unit is in Available status
func (u *Unit) IsAvailable() bool {
	return u.Status == UnitStatusAvailable
}
