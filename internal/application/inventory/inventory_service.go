package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/shared"
)

// InventoryService manages the unit registry: unit types with their
// default rates and the rentable units themselves
type InventoryService struct {
	unitRepo     inventory.UnitRepository
	unitTypeRepo inventory.UnitTypeRepository
	propertyRepo property.PropertyRepository
	ownerRepo    property.OwnerRepository
	logger       *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	unitRepo inventory.UnitRepository,
	unitTypeRepo inventory.UnitTypeRepository,
	propertyRepo property.PropertyRepository,
	ownerRepo property.OwnerRepository,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		unitRepo:     unitRepo,
		unitTypeRepo: unitTypeRepo,
		propertyRepo: propertyRepo,
		ownerRepo:    ownerRepo,
		logger:       logger,
	}
}

// CreateUnitTypeRequest carries the fields for a new unit type
type CreateUnitTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	DefaultRate string `json:"default_rate" binding:"required,amount"`
	MaxGuests   int    `json:"max_guests" binding:"required,min=1"`
}

// CreateUnitType creates a unit type; the name must be unique
func (s *InventoryService) CreateUnitType(ctx context.Context, req CreateUnitTypeRequest) (*inventory.UnitType, error) {
	rate, err := decimal.NewFromString(req.DefaultRate)
	if err != nil {
		return nil, shared.NewValidationError("Invalid default rate: " + req.DefaultRate)
	}
	existing, err := s.unitTypeRepo.FindByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewConflictError("A unit type named " + req.Name + " already exists")
	}
	ut, err := inventory.NewUnitType(req.Name, rate, req.MaxGuests)
	if err != nil {
		return nil, err
	}
	if err := s.unitTypeRepo.Save(ctx, ut); err != nil {
		return nil, err
	}
	return ut, nil
}

// ListUnitTypes returns unit types matching the filter
func (s *InventoryService) ListUnitTypes(ctx context.Context, filter shared.Filter) ([]inventory.UnitType, error) {
	return s.unitTypeRepo.FindAll(ctx, filter)
}

// CreateUnitRequest carries the fields for a new unit
type CreateUnitRequest struct {
	UnitCode     string     `json:"unit_code" binding:"required"`
	PropertyID   uuid.UUID  `json:"property_id" binding:"required"`
	UnitTypeID   uuid.UUID  `json:"unit_type_id" binding:"required"`
	OwnerID      *uuid.UUID `json:"owner_id,omitempty"`
	Floor        string     `json:"floor"`
	RatePerNight *string    `json:"rate_per_night,omitempty"`
}

// CreateUnit registers a rentable unit. The unit code must be unique;
// without an explicit rate the unit inherits its type's default.
func (s *InventoryService) CreateUnit(ctx context.Context, req CreateUnitRequest) (*inventory.Unit, error) {
	existing, err := s.unitRepo.FindByCode(ctx, req.UnitCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewConflictError("A unit with code " + req.UnitCode + " already exists")
	}
	prop, err := s.propertyRepo.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, shared.NewNotFoundError("Property not found")
	}
	ut, err := s.unitTypeRepo.FindByID(ctx, req.UnitTypeID)
	if err != nil {
		return nil, err
	}
	if ut == nil {
		return nil, shared.NewNotFoundError("Unit type not found")
	}

	rate := ut.DefaultRate
	if req.RatePerNight != nil {
		rate, err = decimal.NewFromString(*req.RatePerNight)
		if err != nil {
			return nil, shared.NewValidationError("Invalid rate per night: " + *req.RatePerNight)
		}
	}

	unit, err := inventory.NewUnit(req.UnitCode, prop.ID, ut.ID, rate)
	if err != nil {
		return nil, err
	}
	unit.Floor = req.Floor
	if req.OwnerID != nil {
		owner, err := s.ownerRepo.FindByID(ctx, *req.OwnerID)
		if err != nil {
			return nil, err
		}
		if owner == nil {
			return nil, shared.NewNotFoundError("Owner not found")
		}
		if err := unit.AssignOwner(owner.ID); err != nil {
			return nil, err
		}
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	s.logger.Info("unit registered",
		zap.String("unit_code", unit.UnitCode),
		zap.String("property", prop.Name),
	)
	return unit, nil
}

// AssignOwner links a unit to its owner for settlement purposes
func (s *InventoryService) AssignOwner(ctx context.Context, unitID, ownerID uuid.UUID) (*inventory.Unit, error) {
	unit, err := s.getUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	owner, err := s.ownerRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, shared.NewNotFoundError("Owner not found")
	}
	if err := unit.AssignOwner(owner.ID); err != nil {
		return nil, err
	}
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// UpdateUnitRate changes a unit's own nightly rate
func (s *InventoryService) UpdateUnitRate(ctx context.Context, unitID uuid.UUID, rate string) (*inventory.Unit, error) {
	unit, err := s.getUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, shared.NewValidationError("Invalid rate: " + rate)
	}
	if err := unit.UpdateRate(d); err != nil {
		return nil, err
	}
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// SetUnitStatus applies a manual status override, such as taking a unit
// out of service. Status writes driven by the reservation lifecycle go
// through their own services.
func (s *InventoryService) SetUnitStatus(ctx context.Context, unitID uuid.UUID, status inventory.UnitStatus) (*inventory.Unit, error) {
	unit, err := s.getUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if err := unit.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// GetUnit returns one unit
func (s *InventoryService) GetUnit(ctx context.Context, id uuid.UUID) (*inventory.Unit, error) {
	return s.getUnit(ctx, id)
}

// ListUnits returns units matching the filter
func (s *InventoryService) ListUnits(ctx context.Context, filter shared.Filter) ([]inventory.Unit, error) {
	return s.unitRepo.FindAll(ctx, filter)
}

func (s *InventoryService) getUnit(ctx context.Context, id uuid.UUID) (*inventory.Unit, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.NewNotFoundError(fmt.Sprintf("Unit %s not found", id))
	}
	return unit, nil
}
