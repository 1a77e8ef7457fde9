package operations

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/shared/valueobject"
)

// IssueType classifies a maintenance request
type IssueType string

const (
	IssueTypePlumbing   IssueType = "PLUMBING"
	IssueTypeElectrical IssueType = "ELECTRICAL"
	IssueTypeAppliance  IssueType = "APPLIANCE"
	IssueTypeStructural IssueType = "STRUCTURAL"
	IssueTypeOther      IssueType = "OTHER"
)

// IsValid checks if the issue type is valid
func (t IssueType) IsValid() bool {
	switch t {
	case IssueTypePlumbing, IssueTypeElectrical, IssueTypeAppliance, IssueTypeStructural, IssueTypeOther:
		return true
	}
	return false
}

// RequestPriority orders maintenance requests. Critical requests take the
// unit out of service until resolved.
type RequestPriority string

const (
	RequestPriorityLow      RequestPriority = "LOW"
	RequestPriorityMedium   RequestPriority = "MEDIUM"
	RequestPriorityHigh     RequestPriority = "HIGH"
	RequestPriorityCritical RequestPriority = "CRITICAL"
)

// IsValid checks if the priority is valid
func (p RequestPriority) IsValid() bool {
	switch p {
	case RequestPriorityLow, RequestPriorityMedium, RequestPriorityHigh, RequestPriorityCritical:
		return true
	}
	return false
}

// Weight supports priority ordering in queries and queues
func (p RequestPriority) Weight() int {
	switch p {
	case RequestPriorityCritical:
		return 4
	case RequestPriorityHigh:
		return 3
	case RequestPriorityMedium:
		return 2
	case RequestPriorityLow:
		return 1
	}
	return 0
}

// RequestStatus represents the maintenance request lifecycle
type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "OPEN"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusResolved   RequestStatus = "RESOLVED"
	RequestStatusCancelled  RequestStatus = "CANCELLED"
)

// CanTransitionTo checks if a transition to the target status is allowed
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	transitions := map[RequestStatus][]RequestStatus{
		RequestStatusOpen:       {RequestStatusInProgress, RequestStatusResolved, RequestStatusCancelled},
		RequestStatusInProgress: {RequestStatusResolved, RequestStatusCancelled},
		RequestStatusResolved:   {},
		RequestStatusCancelled:  {},
	}
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// MaintenanceRequest represents a reported defect on a unit. Resolved
// requests with an actual cost feed the owner settlement as expenses.
type MaintenanceRequest struct {
	shared.BaseAggregateRoot
	RequestNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	UnitID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitCode        string          `gorm:"type:varchar(50);not null"`
	IssueType       IssueType       `gorm:"type:varchar(20);not null"`
	Priority        RequestPriority `gorm:"type:varchar(10);not null;default:'MEDIUM';index"`
	Status          RequestStatus   `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Description     string          `gorm:"type:text"`
	ReportedDate    time.Time       `gorm:"not null;index"`
	ReportedBy      string          `gorm:"type:varchar(200)"`
	AssignedTo      string          `gorm:"type:varchar(200)"`
	EstimatedCost   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ActualCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InvoiceID       *uuid.UUID      `gorm:"type:uuid"` // Linked purchase invoice
	ResolvedBy      string          `gorm:"type:varchar(200)"`
	ResolutionDate  *time.Time      `gorm:"index"`
	ResolutionNotes string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}

// NewMaintenanceRequest creates an open request for a unit
func NewMaintenanceRequest(
	requestNumber string,
	unitID uuid.UUID,
	unitCode string,
	issueType IssueType,
	priority RequestPriority,
	description string,
	reportedDate time.Time,
) (*MaintenanceRequest, error) {
	if requestNumber == "" {
		return nil, shared.NewValidationError("Request number cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewValidationError("Unit ID cannot be empty")
	}
	if unitCode == "" {
		return nil, shared.NewValidationError("Unit code cannot be empty")
	}
	if !issueType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown issue type: %s", issueType))
	}
	if !priority.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown priority: %s", priority))
	}
	if reportedDate.IsZero() {
		return nil, shared.NewValidationError("Reported date is required")
	}
	return &MaintenanceRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RequestNumber:     requestNumber,
		UnitID:            unitID,
		UnitCode:          unitCode,
		IssueType:         issueType,
		Priority:          priority,
		Status:            RequestStatusOpen,
		Description:       description,
		ReportedDate:      reportedDate,
		EstimatedCost:     decimal.Zero,
		ActualCost:        decimal.Zero,
	}, nil
}

// BlocksUnit reports whether the request should take the unit out of
// service. Only unresolved critical requests block.
func (r *MaintenanceRequest) BlocksUnit() bool {
	return r.Priority == RequestPriorityCritical &&
		(r.Status == RequestStatusOpen || r.Status == RequestStatusInProgress)
}

// Assign hands the request to a technician and moves it in progress
func (r *MaintenanceRequest) Assign(technician string) error {
	if technician == "" {
		return shared.NewValidationError("Technician name cannot be empty")
	}
	if !r.Status.CanTransitionTo(RequestStatusInProgress) && r.Status != RequestStatusInProgress {
		return shared.NewStateError(fmt.Sprintf("Cannot assign request in status %s", r.Status))
	}
	r.AssignedTo = technician
	r.Status = RequestStatusInProgress
	return nil
}

// SetEstimatedCost records the expected repair cost
func (r *MaintenanceRequest) SetEstimatedCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewValidationError("Estimated cost cannot be negative")
	}
	r.EstimatedCost = cost
	return nil
}

// RecordActualCost records the final repair cost, optionally linking the
// purchase invoice it came from
func (r *MaintenanceRequest) RecordActualCost(cost decimal.Decimal, invoiceID *uuid.UUID) error {
	if cost.IsNegative() {
		return shared.NewValidationError("Actual cost cannot be negative")
	}
	r.ActualCost = cost
	if invoiceID != nil {
		r.InvoiceID = invoiceID
	}
	return nil
}

// Resolve closes the request; the caller releases a blocked unit
// afterwards. The resolution date is day-truncated so period queries over
// [first day, last day] never lose a request resolved late on the boundary.
func (r *MaintenanceRequest) Resolve(resolvedBy, notes string, now time.Time) error {
	if !r.Status.CanTransitionTo(RequestStatusResolved) {
		return shared.NewStateError(fmt.Sprintf("Cannot resolve request in status %s", r.Status))
	}
	r.Status = RequestStatusResolved
	if resolvedBy != "" {
		r.ResolvedBy = resolvedBy
	} else if r.AssignedTo != "" {
		r.ResolvedBy = r.AssignedTo
	}
	r.ResolutionNotes = notes
	resolvedAt := valueobject.TruncateToDay(now)
	r.ResolutionDate = &resolvedAt
	return nil
}

// Cancel drops the request
func (r *MaintenanceRequest) Cancel() error {
	if !r.Status.CanTransitionTo(RequestStatusCancelled) {
		return shared.NewStateError(fmt.Sprintf("Cannot cancel request in status %s", r.Status))
	}
	r.Status = RequestStatusCancelled
	return nil
}

// IsOpen reports whether the request still needs work
func (r *MaintenanceRequest) IsOpen() bool {
	return r.Status == RequestStatusOpen || r.Status == RequestStatusInProgress
}
