package property

import (
	"time"

	"github.com/pms/backend/internal/domain/shared"
)

// PropertyType classifies a managed property
type PropertyType string

const (
	PropertyTypeHotel     PropertyType = "HOTEL"
	PropertyTypeResort    PropertyType = "RESORT"
	PropertyTypeApartment PropertyType = "APARTMENT"
	PropertyTypeVilla     PropertyType = "VILLA"
)

// IsValid checks if the property type is known
func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeHotel, PropertyTypeResort, PropertyTypeApartment, PropertyTypeVilla:
		return true
	}
	return false
}

// Property represents a managed property containing rentable units
type Property struct {
	shared.BaseAggregateRoot
	Name         string       `gorm:"type:varchar(200);not null;uniqueIndex"`
	PropertyType PropertyType `gorm:"type:varchar(30);not null"`
	Address      string       `gorm:"type:varchar(500)"`
	City         string       `gorm:"type:varchar(100)"`
	Active       bool         `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Property) TableName() string {
	return "properties"
}

// NewProperty creates a new property
func NewProperty(name string, propertyType PropertyType) (*Property, error) {
	if name == "" {
		return nil, shared.NewValidationError("Property name cannot be empty")
	}
	if !propertyType.IsValid() {
		return nil, shared.NewValidationError("Unknown property type: " + string(propertyType))
	}
	return &Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		PropertyType:      propertyType,
		Active:            true,
	}, nil
}

// Deactivate marks the property as inactive
func (p *Property) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}
