package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
)

// SettlementFilter narrows settlement listings
type SettlementFilter struct {
	shared.Filter
	OwnerID *uuid.UUID
	Status  *SettlementStatus
}

// SettlementRepository defines persistence operations for owner settlements
type SettlementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OwnerSettlement, error)
	FindByNumber(ctx context.Context, number string) (*OwnerSettlement, error)
	FindAll(ctx context.Context, filter SettlementFilter) (*shared.Paginated[OwnerSettlement], error)
	// ExistsForPeriod reports whether a non-cancelled settlement already
	// covers the owner and period, excluding the given settlement id
	ExistsForPeriod(ctx context.Context, ownerID uuid.UUID, periodStart, periodEnd time.Time, exclude uuid.UUID) (bool, error)
	// Save persists the aggregate and replaces its detail rows
	Save(ctx context.Context, s *OwnerSettlement) error
	Delete(ctx context.Context, id uuid.UUID) error
	GenerateNumber(ctx context.Context) (string, error)
	// SumNetPayableByStatus supports the dashboard pending payout figure
	SumNetPayableByStatus(ctx context.Context, status SettlementStatus) (decimal.Decimal, error)
}

// RevenueSource yields the checked-out stay revenue lines for an owner's
// units within a period. Implemented by the reservation persistence layer.
type RevenueSource interface {
	FindSettledRevenue(ctx context.Context, unitIDs []uuid.UUID, periodStart, periodEnd time.Time) ([]RevenueInput, error)
}

// ExpenseSource yields the resolved expense lines for an owner's units
// within a period. Implemented by the operations persistence layer.
type ExpenseSource interface {
	FindResolvedExpenses(ctx context.Context, unitIDs []uuid.UUID, periodStart, periodEnd time.Time) ([]ExpenseInput, error)
}
