package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/pms/backend/internal/domain/shared"
)

// UnitRepository defines persistence operations for units
type UnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	FindByCode(ctx context.Context, unitCode string) (*Unit, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Unit, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]Unit, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Unit, error)
	Save(ctx context.Context, unit *Unit) error
	// SetStatus writes the unit status directly without loading the aggregate
	SetStatus(ctx context.Context, id uuid.UUID, status UnitStatus) error
	CountByStatus(ctx context.Context, status UnitStatus) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

// UnitTypeRepository defines persistence operations for unit types
type UnitTypeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UnitType, error)
	FindByName(ctx context.Context, name string) (*UnitType, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]UnitType, error)
	Save(ctx context.Context, unitType *UnitType) error
}
