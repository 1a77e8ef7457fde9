package operations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/operations"
	"github.com/pms/backend/internal/domain/shared"
)

// OperationsService manages housekeeping tasks and maintenance requests,
// including their unit status side effects: completing the last open task
// on a cleaning unit releases it, a critical maintenance request blocks it.
type OperationsService struct {
	taskRepo    operations.HousekeepingTaskRepository
	requestRepo operations.MaintenanceRequestRepository
	unitRepo    inventory.UnitRepository
	logger      *zap.Logger
}

// NewOperationsService creates a new OperationsService
func NewOperationsService(
	taskRepo operations.HousekeepingTaskRepository,
	requestRepo operations.MaintenanceRequestRepository,
	unitRepo inventory.UnitRepository,
	logger *zap.Logger,
) *OperationsService {
	return &OperationsService{
		taskRepo:    taskRepo,
		requestRepo: requestRepo,
		unitRepo:    unitRepo,
		logger:      logger,
	}
}

// CreateTaskRequest carries the fields for a new housekeeping task
type CreateTaskRequest struct {
	UnitID        uuid.UUID               `json:"unit_id" binding:"required"`
	TaskType      operations.TaskType     `json:"task_type" binding:"required"`
	Priority      operations.TaskPriority `json:"priority"`
	ScheduledDate time.Time               `json:"scheduled_date" binding:"required"`
	Notes         string                  `json:"notes"`
}

// CreateTask creates a housekeeping task for a unit
func (s *OperationsService) CreateTask(ctx context.Context, req CreateTaskRequest) (*operations.HousekeepingTask, error) {
	unit, err := s.getUnit(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	priority := req.Priority
	if priority == "" {
		priority = operations.TaskPriorityMedium
	}
	task, err := operations.NewHousekeepingTask(unit.ID, unit.UnitCode, req.TaskType, priority, req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	task.Notes = req.Notes
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// AssignTask hands a task to a worker
func (s *OperationsService) AssignTask(ctx context.Context, id uuid.UUID, worker string) (*operations.HousekeepingTask, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := task.Assign(worker); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask finishes a task. When the unit sits in CLEANING with no
// other open task, it returns to AVAILABLE.
func (s *OperationsService) CompleteTask(ctx context.Context, id uuid.UUID, completedBy string) (*operations.HousekeepingTask, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := task.Complete(completedBy, time.Now()); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	s.releaseUnitIfClean(ctx, task.UnitID)
	s.logger.Info("housekeeping task completed",
		zap.String("unit_code", task.UnitCode),
		zap.String("task_type", string(task.TaskType)),
	)
	return task, nil
}

// ListPendingTasks returns open tasks ordered by priority then schedule
func (s *OperationsService) ListPendingTasks(ctx context.Context, filter operations.TaskFilter) ([]operations.HousekeepingTask, error) {
	return s.taskRepo.FindPending(ctx, filter)
}

// CreateRequestRequest carries the fields for a new maintenance request
type CreateRequestRequest struct {
	UnitID        uuid.UUID                  `json:"unit_id" binding:"required"`
	IssueType     operations.IssueType       `json:"issue_type" binding:"required"`
	Priority      operations.RequestPriority `json:"priority"`
	Description   string                     `json:"description"`
	ReportedBy    string                     `json:"reported_by"`
	EstimatedCost *string                    `json:"estimated_cost,omitempty"`
}

// CreateRequest files a maintenance request. A critical request takes the
// unit out of service immediately.
func (s *OperationsService) CreateRequest(ctx context.Context, req CreateRequestRequest) (*operations.MaintenanceRequest, error) {
	unit, err := s.getUnit(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	priority := req.Priority
	if priority == "" {
		priority = operations.RequestPriorityMedium
	}
	number, err := s.requestRepo.GenerateNumber(ctx)
	if err != nil {
		return nil, err
	}
	mr, err := operations.NewMaintenanceRequest(number, unit.ID, unit.UnitCode, req.IssueType, priority, req.Description, time.Now())
	if err != nil {
		return nil, err
	}
	mr.ReportedBy = req.ReportedBy
	if req.EstimatedCost != nil {
		cost, err := decimal.NewFromString(*req.EstimatedCost)
		if err != nil {
			return nil, shared.NewValidationError("Invalid estimated cost: " + *req.EstimatedCost)
		}
		if err := mr.SetEstimatedCost(cost); err != nil {
			return nil, err
		}
	}
	if err := s.requestRepo.Save(ctx, mr); err != nil {
		return nil, err
	}

	if mr.BlocksUnit() && unit.Status != inventory.UnitStatusMaintenance {
		if err := s.unitRepo.SetStatus(ctx, unit.ID, inventory.UnitStatusMaintenance); err != nil {
			s.logger.Error("failed to block unit for maintenance",
				zap.String("unit_code", unit.UnitCode),
				zap.Error(err),
			)
		} else {
			s.logger.Warn("unit taken out of service",
				zap.String("unit_code", unit.UnitCode),
				zap.String("request_number", mr.RequestNumber),
			)
		}
	}
	return mr, nil
}

// AssignRequest hands a request to a technician
func (s *OperationsService) AssignRequest(ctx context.Context, id uuid.UUID, technician string) (*operations.MaintenanceRequest, error) {
	mr, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mr.Assign(technician); err != nil {
		return nil, err
	}
	if err := s.requestRepo.Save(ctx, mr); err != nil {
		return nil, err
	}
	return mr, nil
}

// ResolveRequestRequest carries the resolution fields
type ResolveRequestRequest struct {
	ResolvedBy      string     `json:"resolved_by"`
	ResolutionNotes string     `json:"resolution_notes"`
	ActualCost      *string    `json:"actual_cost,omitempty"`
	InvoiceID       *uuid.UUID `json:"invoice_id,omitempty"`
}

// ResolveRequest closes a maintenance request, recording the actual cost
// that later feeds the owner settlement. A unit blocked by this request
// returns to AVAILABLE.
func (s *OperationsService) ResolveRequest(ctx context.Context, id uuid.UUID, req ResolveRequestRequest) (*operations.MaintenanceRequest, error) {
	mr, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	wasBlocking := mr.BlocksUnit()

	if req.ActualCost != nil {
		cost, err := decimal.NewFromString(*req.ActualCost)
		if err != nil {
			return nil, shared.NewValidationError("Invalid actual cost: " + *req.ActualCost)
		}
		if err := mr.RecordActualCost(cost, req.InvoiceID); err != nil {
			return nil, err
		}
	}
	if err := mr.Resolve(req.ResolvedBy, req.ResolutionNotes, time.Now()); err != nil {
		return nil, err
	}
	if err := s.requestRepo.Save(ctx, mr); err != nil {
		return nil, err
	}

	if wasBlocking {
		unit, err := s.unitRepo.FindByID(ctx, mr.UnitID)
		if err == nil && unit != nil && unit.Status == inventory.UnitStatusMaintenance {
			if err := s.unitRepo.SetStatus(ctx, unit.ID, inventory.UnitStatusAvailable); err != nil {
				s.logger.Error("failed to release unit from maintenance",
					zap.String("unit_code", unit.UnitCode),
					zap.Error(err),
				)
			}
		}
	}
	s.logger.Info("maintenance request resolved",
		zap.String("request_number", mr.RequestNumber),
		zap.String("actual_cost", mr.ActualCost.String()),
	)
	return mr, nil
}

// ListOpenRequests returns unresolved requests ordered by priority
func (s *OperationsService) ListOpenRequests(ctx context.Context, filter operations.RequestFilter) ([]operations.MaintenanceRequest, error) {
	return s.requestRepo.FindOpen(ctx, filter)
}

func (s *OperationsService) getUnit(ctx context.Context, id uuid.UUID) (*inventory.Unit, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.NewNotFoundError(fmt.Sprintf("Unit %s not found", id))
	}
	return unit, nil
}

func (s *OperationsService) getTask(ctx context.Context, id uuid.UUID) (*operations.HousekeepingTask, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, shared.NewNotFoundError("Housekeeping task not found")
	}
	return task, nil
}

func (s *OperationsService) getRequest(ctx context.Context, id uuid.UUID) (*operations.MaintenanceRequest, error) {
	mr, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mr == nil {
		return nil, shared.NewNotFoundError("Maintenance request not found")
	}
	return mr, nil
}

// releaseUnitIfClean returns a CLEANING unit to AVAILABLE once no open
// housekeeping task remains on it
func (s *OperationsService) releaseUnitIfClean(ctx context.Context, unitID uuid.UUID) {
	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil || unit == nil || unit.Status != inventory.UnitStatusCleaning {
		return
	}
	open, err := s.taskRepo.FindPending(ctx, operations.TaskFilter{UnitID: &unitID})
	if err != nil {
		s.logger.Error("failed to check open tasks", zap.String("unit_code", unit.UnitCode), zap.Error(err))
		return
	}
	if len(open) > 0 {
		return
	}
	if err := s.unitRepo.SetStatus(ctx, unitID, inventory.UnitStatusAvailable); err != nil {
		s.logger.Error("failed to release unit", zap.String("unit_code", unit.UnitCode), zap.Error(err))
		return
	}
	s.logger.Info("unit released after cleaning", zap.String("unit_code", unit.UnitCode))
}
