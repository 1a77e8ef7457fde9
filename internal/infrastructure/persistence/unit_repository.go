package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/shared"
)

// GormUnitRepository implements inventory.UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID finds a unit by its ID; absent units return nil
func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Unit, error) {
	var unit inventory.Unit
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// FindByCode finds a unit by its code
func (r *GormUnitRepository) FindByCode(ctx context.Context, unitCode string) (*inventory.Unit, error) {
	var unit inventory.Unit
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&unit, "unit_code = ?", unitCode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// FindByIDs loads the units for the given ids
func (r *GormUnitRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Unit, error) {
	var units []inventory.Unit
	if len(ids) == 0 {
		return units, nil
	}
	if err := dbFor(ctx, r.db).WithContext(ctx).Where("id IN ?", ids).Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// FindByOwner returns the active units assigned to an owner
func (r *GormUnitRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]inventory.Unit, error) {
	var units []inventory.Unit
	if err := dbFor(ctx, r.db).WithContext(ctx).
		Where("owner_id = ? AND active = ?", ownerID, true).
		Order("unit_code asc").
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// FindAll returns units matching the filter. Search matches the unit code.
func (r *GormUnitRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Unit, error) {
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&inventory.Unit{})
	if filter.Search != "" {
		query = query.Where("unit_code LIKE ?", "%"+filter.Search+"%")
	}
	var units []inventory.Unit
	if err := applyFilter(query, filter).Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// Save persists the unit
func (r *GormUnitRepository) Save(ctx context.Context, unit *inventory.Unit) error {
	return dbFor(ctx, r.db).WithContext(ctx).Save(unit).Error
}

// SetStatus writes the unit status directly without loading the aggregate
func (r *GormUnitRepository) SetStatus(ctx context.Context, id uuid.UUID, status inventory.UnitStatus) error {
	result := dbFor(ctx, r.db).WithContext(ctx).
		Model(&inventory.Unit{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByStatus counts active units in the given status
func (r *GormUnitRepository) CountByStatus(ctx context.Context, status inventory.UnitStatus) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&inventory.Unit{}).
		Where("status = ? AND active = ?", status, true).
		Count(&count).Error
	return count, err
}

// CountAll counts active units
func (r *GormUnitRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&inventory.Unit{}).
		Where("active = ?", true).
		Count(&count).Error
	return count, err
}

// GormUnitTypeRepository implements inventory.UnitTypeRepository using GORM
type GormUnitTypeRepository struct {
	db *gorm.DB
}

// NewGormUnitTypeRepository creates a new GormUnitTypeRepository
func NewGormUnitTypeRepository(db *gorm.DB) *GormUnitTypeRepository {
	return &GormUnitTypeRepository{db: db}
}

// FindByID finds a unit type by its ID
func (r *GormUnitTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.UnitType, error) {
	var ut inventory.UnitType
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&ut, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ut, nil
}

// FindByName finds a unit type by its unique name
func (r *GormUnitTypeRepository) FindByName(ctx context.Context, name string) (*inventory.UnitType, error) {
	var ut inventory.UnitType
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&ut, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ut, nil
}

// FindAll returns unit types matching the filter
func (r *GormUnitTypeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.UnitType, error) {
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&inventory.UnitType{})
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	var types []inventory.UnitType
	if err := applyFilter(query, filter).Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// Save persists the unit type
func (r *GormUnitTypeRepository) Save(ctx context.Context, unitType *inventory.UnitType) error {
	return dbFor(ctx, r.db).WithContext(ctx).Save(unitType).Error
}

// DefaultRate implements pricing.DefaultRateSource: the unit type default
// is the fallback when no rate plan covers a date
func (r *GormUnitTypeRepository) DefaultRate(ctx context.Context, unitTypeID uuid.UUID) (decimal.Decimal, error) {
	var ut inventory.UnitType
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&ut, "id = ?", unitTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, shared.NewConfigurationError("Unit type has no default rate configured")
		}
		return decimal.Zero, err
	}
	return ut.DefaultRate, nil
}
