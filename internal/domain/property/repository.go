package property

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
)

// PropertyRepository defines persistence operations for properties
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindByName(ctx context.Context, name string) (*Property, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Property, error)
	Save(ctx context.Context, property *Property) error
}

// OwnerRepository defines persistence operations for owners
type OwnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Owner, error)
	FindAllActive(ctx context.Context) ([]Owner, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Owner, error)
	Save(ctx context.Context, owner *Owner) error
}

// GuestStats carries the aggregate visit figures for one guest
type GuestStats struct {
	TotalVisits     int
	LastVisit       *time.Time
	LifetimeRevenue decimal.Decimal
}

// GuestRepository defines persistence operations for guests
type GuestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Guest, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Guest, error)
	Save(ctx context.Context, guest *Guest) error
	// AggregateStats computes visit statistics across the guest's
	// checked-out reservations
	AggregateStats(ctx context.Context, guestID uuid.UUID) (*GuestStats, error)
}
