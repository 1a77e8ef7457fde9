package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
)

// Event type constants for the settlement lifecycle
const (
	EventSettlementCreated    = "settlement.created"
	EventSettlementCalculated = "settlement.calculated"
	EventSettlementPosted     = "settlement.posted"
	EventSettlementPaid       = "settlement.paid"
	EventSettlementCancelled  = "settlement.cancelled"
)

const aggregateType = "OwnerSettlement"

// SettlementCreatedEvent is raised when a draft settlement is created
type SettlementCreatedEvent struct {
	shared.BaseDomainEvent
	SettlementNumber string    `json:"settlement_number"`
	OwnerID          uuid.UUID `json:"owner_id"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`
}

// NewSettlementCreatedEvent creates a SettlementCreatedEvent
func NewSettlementCreatedEvent(id uuid.UUID, number string, ownerID uuid.UUID, start, end time.Time) *SettlementCreatedEvent {
	return &SettlementCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventSettlementCreated, aggregateType, id),
		SettlementNumber: number,
		OwnerID:          ownerID,
		PeriodStart:      start,
		PeriodEnd:        end,
	}
}

// SettlementCalculatedEvent is raised the first time a settlement is calculated
type SettlementCalculatedEvent struct {
	shared.BaseDomainEvent
	SettlementNumber string          `json:"settlement_number"`
	OwnerID          uuid.UUID       `json:"owner_id"`
	NetPayable       decimal.Decimal `json:"net_payable"`
}

// NewSettlementCalculatedEvent creates a SettlementCalculatedEvent
func NewSettlementCalculatedEvent(id uuid.UUID, number string, ownerID uuid.UUID, netPayable decimal.Decimal) *SettlementCalculatedEvent {
	return &SettlementCalculatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventSettlementCalculated, aggregateType, id),
		SettlementNumber: number,
		OwnerID:          ownerID,
		NetPayable:       netPayable,
	}
}

// SettlementPostedEvent is raised when a settlement is posted to accounting
type SettlementPostedEvent struct {
	shared.BaseDomainEvent
	SettlementNumber string          `json:"settlement_number"`
	OwnerID          uuid.UUID       `json:"owner_id"`
	NetPayable       decimal.Decimal `json:"net_payable"`
}

// NewSettlementPostedEvent creates a SettlementPostedEvent
func NewSettlementPostedEvent(id uuid.UUID, number string, ownerID uuid.UUID, netPayable decimal.Decimal) *SettlementPostedEvent {
	return &SettlementPostedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventSettlementPosted, aggregateType, id),
		SettlementNumber: number,
		OwnerID:          ownerID,
		NetPayable:       netPayable,
	}
}

// SettlementPaidEvent is raised when the owner payout is recorded
type SettlementPaidEvent struct {
	shared.BaseDomainEvent
	SettlementNumber string          `json:"settlement_number"`
	OwnerID          uuid.UUID       `json:"owner_id"`
	NetPayable       decimal.Decimal `json:"net_payable"`
}

// NewSettlementPaidEvent creates a SettlementPaidEvent
func NewSettlementPaidEvent(id uuid.UUID, number string, ownerID uuid.UUID, netPayable decimal.Decimal) *SettlementPaidEvent {
	return &SettlementPaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventSettlementPaid, aggregateType, id),
		SettlementNumber: number,
		OwnerID:          ownerID,
		NetPayable:       netPayable,
	}
}

// SettlementCancelledEvent is raised when a settlement is voided
type SettlementCancelledEvent struct {
	shared.BaseDomainEvent
	SettlementNumber string    `json:"settlement_number"`
	OwnerID          uuid.UUID `json:"owner_id"`
	Reason           string    `json:"reason"`
	HadJournalEntry  bool      `json:"had_journal_entry"`
}

// NewSettlementCancelledEvent creates a SettlementCancelledEvent
func NewSettlementCancelledEvent(id uuid.UUID, number string, ownerID uuid.UUID, reason string, hadJournal bool) *SettlementCancelledEvent {
	return &SettlementCancelledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventSettlementCancelled, aggregateType, id),
		SettlementNumber: number,
		OwnerID:          ownerID,
		Reason:           reason,
		HadJournalEntry:  hadJournal,
	}
}
