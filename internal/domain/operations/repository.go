package operations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pms/backend/internal/domain/shared"
)

// TaskFilter narrows housekeeping task listings
type TaskFilter struct {
	shared.Filter
	UnitID     *uuid.UUID
	Status     *TaskStatus
	AssignedTo string
}

// HousekeepingTaskRepository defines persistence operations for tasks
type HousekeepingTaskRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*HousekeepingTask, error)
	// FindPending returns open tasks ordered by priority then schedule
	FindPending(ctx context.Context, filter TaskFilter) ([]HousekeepingTask, error)
	FindAll(ctx context.Context, filter TaskFilter) (*shared.Paginated[HousekeepingTask], error)
	Save(ctx context.Context, task *HousekeepingTask) error
	CountOpen(ctx context.Context) (int64, error)
}

// RequestFilter narrows maintenance request listings
type RequestFilter struct {
	shared.Filter
	UnitID   *uuid.UUID
	Status   *RequestStatus
	Priority *RequestPriority
}

// MaintenanceRequestRepository defines persistence operations for requests
type MaintenanceRequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MaintenanceRequest, error)
	FindByNumber(ctx context.Context, number string) (*MaintenanceRequest, error)
	// FindOpen returns unresolved requests ordered by priority then report date
	FindOpen(ctx context.Context, filter RequestFilter) ([]MaintenanceRequest, error)
	FindAll(ctx context.Context, filter RequestFilter) (*shared.Paginated[MaintenanceRequest], error)
	// FindResolvedForUnits returns resolved requests with a positive actual
	// cost whose resolution date falls inside the period
	FindResolvedForUnits(ctx context.Context, unitIDs []uuid.UUID, periodStart, periodEnd time.Time) ([]MaintenanceRequest, error)
	Save(ctx context.Context, req *MaintenanceRequest) error
	GenerateNumber(ctx context.Context) (string, error)
	CountOpen(ctx context.Context) (int64, error)
}
