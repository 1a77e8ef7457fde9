package operations

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/shared/valueobject"
)

// TaskType classifies a housekeeping task
type TaskType string

const (
	TaskTypeCheckoutCleaning TaskType = "CHECKOUT_CLEANING"
	TaskTypeDailyCleaning    TaskType = "DAILY_CLEANING"
	TaskTypeDeepCleaning     TaskType = "DEEP_CLEANING"
	TaskTypeInspection       TaskType = "INSPECTION"
)

// IsValid checks if the task type is valid
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeCheckoutCleaning, TaskTypeDailyCleaning, TaskTypeDeepCleaning, TaskTypeInspection:
		return true
	}
	return false
}

// TaskPriority orders tasks in the pending queue
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// IsValid checks if the priority is valid
func (p TaskPriority) IsValid() bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

// Weight supports priority ordering in queries and queues
func (p TaskPriority) Weight() int {
	switch p {
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	}
	return 0
}

// TaskStatus represents the housekeeping task lifecycle
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// CanTransitionTo checks if a transition to the target status is allowed
func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	transitions := map[TaskStatus][]TaskStatus{
		TaskStatusPending:    {TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled},
		TaskStatusInProgress: {TaskStatusCompleted, TaskStatusCancelled},
		TaskStatusCompleted:  {},
		TaskStatusCancelled:  {},
	}
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// HousekeepingTask represents a cleaning or inspection task for a unit.
// Checkout creates one automatically; completing it releases the unit
// back to AVAILABLE.
type HousekeepingTask struct {
	shared.BaseAggregateRoot
	UnitID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	UnitCode      string       `gorm:"type:varchar(50);not null"`
	ReservationID *uuid.UUID   `gorm:"type:uuid;index"` // Set for checkout cleaning
	TaskType      TaskType     `gorm:"type:varchar(30);not null"`
	Priority      TaskPriority `gorm:"type:varchar(10);not null;default:'MEDIUM';index"`
	Status        TaskStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ScheduledDate time.Time    `gorm:"not null;index"`
	AssignedTo    string       `gorm:"type:varchar(200)"`
	Notes         string       `gorm:"type:text"`
	CompletedBy   string       `gorm:"type:varchar(200)"`
	CompletedAt   *time.Time
}

// TableName returns the table name for GORM
func (HousekeepingTask) TableName() string {
	return "housekeeping_tasks"
}

// NewHousekeepingTask creates a pending task for a unit
func NewHousekeepingTask(unitID uuid.UUID, unitCode string, taskType TaskType, priority TaskPriority, scheduledDate time.Time) (*HousekeepingTask, error) {
	if unitID == uuid.Nil {
		return nil, shared.NewValidationError("Unit ID cannot be empty")
	}
	if unitCode == "" {
		return nil, shared.NewValidationError("Unit code cannot be empty")
	}
	if !taskType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown task type: %s", taskType))
	}
	if !priority.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown priority: %s", priority))
	}
	if scheduledDate.IsZero() {
		return nil, shared.NewValidationError("Scheduled date is required")
	}
	return &HousekeepingTask{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UnitID:            unitID,
		UnitCode:          unitCode,
		TaskType:          taskType,
		Priority:          priority,
		Status:            TaskStatusPending,
		ScheduledDate:     valueobject.TruncateToDay(scheduledDate),
	}, nil
}

// NewCheckoutCleaningTask creates the high priority task raised by checkout
func NewCheckoutCleaningTask(unitID uuid.UUID, unitCode string, reservationID uuid.UUID, scheduledDate time.Time) (*HousekeepingTask, error) {
	t, err := NewHousekeepingTask(unitID, unitCode, TaskTypeCheckoutCleaning, TaskPriorityHigh, scheduledDate)
	if err != nil {
		return nil, err
	}
	t.ReservationID = &reservationID
	return t, nil
}

// Assign hands the task to a worker and moves it in progress
func (t *HousekeepingTask) Assign(worker string) error {
	if worker == "" {
		return shared.NewValidationError("Worker name cannot be empty")
	}
	if !t.Status.CanTransitionTo(TaskStatusInProgress) && t.Status != TaskStatusInProgress {
		return shared.NewStateError(fmt.Sprintf("Cannot assign task in status %s", t.Status))
	}
	t.AssignedTo = worker
	t.Status = TaskStatusInProgress
	return nil
}

// Complete finishes the task; the caller releases the unit afterwards
func (t *HousekeepingTask) Complete(completedBy string, now time.Time) error {
	if !t.Status.CanTransitionTo(TaskStatusCompleted) {
		return shared.NewStateError(fmt.Sprintf("Cannot complete task in status %s", t.Status))
	}
	t.Status = TaskStatusCompleted
	if completedBy != "" {
		t.CompletedBy = completedBy
	} else if t.AssignedTo != "" {
		t.CompletedBy = t.AssignedTo
	}
	completedAt := now
	t.CompletedAt = &completedAt
	return nil
}

// Cancel drops the task
func (t *HousekeepingTask) Cancel() error {
	if !t.Status.CanTransitionTo(TaskStatusCancelled) {
		return shared.NewStateError(fmt.Sprintf("Cannot cancel task in status %s", t.Status))
	}
	t.Status = TaskStatusCancelled
	return nil
}

// IsOpen reports whether the task still needs work
func (t *HousekeepingTask) IsOpen() bool {
	return t.Status == TaskStatusPending || t.Status == TaskStatusInProgress
}
