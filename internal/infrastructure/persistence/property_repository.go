package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/shared"
)

// GormPropertyRepository implements property.PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by its ID; absent properties return nil
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	var prop property.Property
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&prop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prop, nil
}

// FindByName finds a property by its unique name
func (r *GormPropertyRepository) FindByName(ctx context.Context, name string) (*property.Property, error) {
	var prop property.Property
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&prop, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prop, nil
}

// FindAll returns properties matching the filter
func (r *GormPropertyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]property.Property, error) {
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&property.Property{})
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	var props []property.Property
	if err := applyFilter(query, filter).Find(&props).Error; err != nil {
		return nil, err
	}
	return props, nil
}

// Save persists the property
func (r *GormPropertyRepository) Save(ctx context.Context, prop *property.Property) error {
	return dbFor(ctx, r.db).WithContext(ctx).Save(prop).Error
}

// GormOwnerRepository implements property.OwnerRepository using GORM
type GormOwnerRepository struct {
	db *gorm.DB
}

// NewGormOwnerRepository creates a new GormOwnerRepository
func NewGormOwnerRepository(db *gorm.DB) *GormOwnerRepository {
	return &GormOwnerRepository{db: db}
}

// FindByID finds an owner by ID
func (r *GormOwnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Owner, error) {
	var owner property.Owner
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&owner, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &owner, nil
}

// FindAllActive returns active owners ordered by name. Monthly settlement
// generation iterates this list.
func (r *GormOwnerRepository) FindAllActive(ctx context.Context) ([]property.Owner, error) {
	var owners []property.Owner
	if err := dbFor(ctx, r.db).WithContext(ctx).
		Where("active = ?", true).
		Order("owner_name asc").
		Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

// FindAll returns owners matching the filter. Search matches name or email.
func (r *GormOwnerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]property.Owner, error) {
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&property.Owner{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("owner_name LIKE ? OR email LIKE ?", pattern, pattern)
	}
	var owners []property.Owner
	if err := applyFilter(query, filter).Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

// Save persists the owner
func (r *GormOwnerRepository) Save(ctx context.Context, owner *property.Owner) error {
	return dbFor(ctx, r.db).WithContext(ctx).Save(owner).Error
}
