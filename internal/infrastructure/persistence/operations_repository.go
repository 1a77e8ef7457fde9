package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/operations"
	"github.com/pms/backend/internal/domain/settlement"
	"github.com/pms/backend/internal/domain/shared"
)

// Priority columns are stored as strings, so open-item listings order by a
// CASE expression instead of the raw value.
const taskPriorityOrder = "CASE priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC"
const requestPriorityOrder = "CASE priority WHEN 'CRITICAL' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC"

// GormHousekeepingTaskRepository implements
// operations.HousekeepingTaskRepository using GORM
type GormHousekeepingTaskRepository struct {
	db *gorm.DB
}

// NewGormHousekeepingTaskRepository creates a new GormHousekeepingTaskRepository
func NewGormHousekeepingTaskRepository(db *gorm.DB) *GormHousekeepingTaskRepository {
	return &GormHousekeepingTaskRepository{db: db}
}

// FindByID finds a task by ID; absent tasks return nil
func (r *GormHousekeepingTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*operations.HousekeepingTask, error) {
	var task operations.HousekeepingTask
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *GormHousekeepingTaskRepository) taskQuery(ctx context.Context, filter operations.TaskFilter) *gorm.DB {
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&operations.HousekeepingTask{})
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Search != "" {
		query = query.Where("unit_code LIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// FindPending returns open tasks ordered by priority then schedule
func (r *GormHousekeepingTaskRepository) FindPending(ctx context.Context, filter operations.TaskFilter) ([]operations.HousekeepingTask, error) {
	query := r.taskQuery(ctx, filter)
	if filter.Status == nil {
		query = query.Where("status IN ?", []operations.TaskStatus{
			operations.TaskStatusPending, operations.TaskStatusInProgress,
		})
	}
	var tasks []operations.HousekeepingTask
	err := query.
		Order(taskPriorityOrder).
		Order("scheduled_date asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindAll returns a page of tasks matching the filter
func (r *GormHousekeepingTaskRepository) FindAll(ctx context.Context, filter operations.TaskFilter) (*shared.Paginated[operations.HousekeepingTask], error) {
	query := r.taskQuery(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var tasks []operations.HousekeepingTask
	if err := applyFilter(query, filter.Filter).Find(&tasks).Error; err != nil {
		return nil, err
	}

	page, pageSize := pageOf(filter.Filter)
	result := shared.NewPaginated(tasks, total, page, pageSize)
	return &result, nil
}

// Save persists the task
func (r *GormHousekeepingTaskRepository) Save(ctx context.Context, task *operations.HousekeepingTask) error {
	return dbFor(ctx, r.db).WithContext(ctx).Save(task).Error
}

// CountOpen counts pending and in-progress tasks
func (r *GormHousekeepingTaskRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&operations.HousekeepingTask{}).
		Where("status IN ?", []operations.TaskStatus{
			operations.TaskStatusPending, operations.TaskStatusInProgress,
		}).
		Count(&count).Error
	return count, err
}

// GormMaintenanceRequestRepository implements
// operations.MaintenanceRequestRepository using GORM. It also serves as the
// settlement expense source since settlement expenses come from resolved
// maintenance costs.
type GormMaintenanceRequestRepository struct {
	db *gorm.DB
}

// NewGormMaintenanceRequestRepository creates a new GormMaintenanceRequestRepository
func NewGormMaintenanceRequestRepository(db *gorm.DB) *GormMaintenanceRequestRepository {
	return &GormMaintenanceRequestRepository{db: db}
}

// FindByID finds a request by ID; absent requests return nil
func (r *GormMaintenanceRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*operations.MaintenanceRequest, error) {
	var req operations.MaintenanceRequest
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// FindByNumber finds a request by its request number
func (r *GormMaintenanceRequestRepository) FindByNumber(ctx context.Context, number string) (*operations.MaintenanceRequest, error) {
	var req operations.MaintenanceRequest
	if err := dbFor(ctx, r.db).WithContext(ctx).First(&req, "request_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *GormMaintenanceRequestRepository) requestQuery(ctx context.Context, filter operations.RequestFilter) *gorm.DB {
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&operations.MaintenanceRequest{})
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("request_number LIKE ? OR unit_code LIKE ?", pattern, pattern)
	}
	return query
}

// FindOpen returns unresolved requests ordered by priority then report date
func (r *GormMaintenanceRequestRepository) FindOpen(ctx context.Context, filter operations.RequestFilter) ([]operations.MaintenanceRequest, error) {
	query := r.requestQuery(ctx, filter)
	if filter.Status == nil {
		query = query.Where("status IN ?", []operations.RequestStatus{
			operations.RequestStatusOpen, operations.RequestStatusInProgress,
		})
	}
	var requests []operations.MaintenanceRequest
	err := query.
		Order(requestPriorityOrder).
		Order("reported_date asc").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// FindAll returns a page of requests matching the filter
func (r *GormMaintenanceRequestRepository) FindAll(ctx context.Context, filter operations.RequestFilter) (*shared.Paginated[operations.MaintenanceRequest], error) {
	query := r.requestQuery(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var requests []operations.MaintenanceRequest
	if err := applyFilter(query, filter.Filter).Find(&requests).Error; err != nil {
		return nil, err
	}

	page, pageSize := pageOf(filter.Filter)
	result := shared.NewPaginated(requests, total, page, pageSize)
	return &result, nil
}

// FindResolvedForUnits returns resolved requests with a positive actual
// cost whose resolution date falls inside the period
func (r *GormMaintenanceRequestRepository) FindResolvedForUnits(ctx context.Context, unitIDs []uuid.UUID, periodStart, periodEnd time.Time) ([]operations.MaintenanceRequest, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	var requests []operations.MaintenanceRequest
	err := dbFor(ctx, r.db).WithContext(ctx).
		Where("unit_id IN ? AND status = ?", unitIDs, operations.RequestStatusResolved).
		Where("actual_cost > 0").
		Where("resolution_date >= ? AND resolution_date <= ?", periodStart, periodEnd).
		Order("resolution_date asc, request_number asc").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// FindResolvedExpenses implements settlement.ExpenseSource by mapping
// resolved maintenance costs to settlement expense lines
func (r *GormMaintenanceRequestRepository) FindResolvedExpenses(ctx context.Context, unitIDs []uuid.UUID, periodStart, periodEnd time.Time) ([]settlement.ExpenseInput, error) {
	requests, err := r.FindResolvedForUnits(ctx, unitIDs, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	inputs := make([]settlement.ExpenseInput, 0, len(requests))
	for _, req := range requests {
		date := req.ReportedDate
		if req.ResolutionDate != nil {
			date = *req.ResolutionDate
		}
		inputs = append(inputs, settlement.ExpenseInput{
			Type:        settlement.ExpenseTypeMaintenance,
			ReferenceID: req.ID,
			Reference:   req.RequestNumber,
			UnitID:      req.UnitID,
			UnitCode:    req.UnitCode,
			Date:        date,
			Amount:      req.ActualCost,
			Description: req.Description,
		})
	}
	return inputs, nil
}

// Save persists the request
func (r *GormMaintenanceRequestRepository) Save(ctx context.Context, req *operations.MaintenanceRequest) error {
	return dbFor(ctx, r.db).WithContext(ctx).Save(req).Error
}

// GenerateNumber generates the next maintenance request number
func (r *GormMaintenanceRequestRepository) GenerateNumber(ctx context.Context) (string, error) {
	return nextNumber(ctx, r.db, "MNT")
}

// CountOpen counts open and in-progress requests
func (r *GormMaintenanceRequestRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).WithContext(ctx).
		Model(&operations.MaintenanceRequest{}).
		Where("status IN ?", []operations.RequestStatus{
			operations.RequestStatusOpen, operations.RequestStatusInProgress,
		}).
		Count(&count).Error
	return count, err
}
