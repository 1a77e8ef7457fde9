package reservation

import (
	"github.com/google/uuid"

	"github.com/pms/backend/internal/domain/shared"
)

// Event type constants for the reservation lifecycle
const (
	EventReservationCreated    = "reservation.created"
	EventReservationConfirmed  = "reservation.confirmed"
	EventReservationCheckedIn  = "reservation.checked_in"
	EventReservationCheckedOut = "reservation.checked_out"
	EventReservationCancelled  = "reservation.cancelled"
)

const aggregateType = "Reservation"

// ReservationCreatedEvent is raised when a draft reservation is created
type ReservationCreatedEvent struct {
	shared.BaseDomainEvent
	ReservationNumber string    `json:"reservation_number"`
	GuestID           uuid.UUID `json:"guest_id"`
}

// NewReservationCreatedEvent creates a ReservationCreatedEvent
func NewReservationCreatedEvent(r *Reservation) *ReservationCreatedEvent {
	return &ReservationCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventReservationCreated, aggregateType, r.ID),
		ReservationNumber: r.ReservationNumber,
		GuestID:           r.GuestID,
	}
}

// ReservationConfirmedEvent is raised when a reservation is submitted
type ReservationConfirmedEvent struct {
	shared.BaseDomainEvent
	ReservationNumber string      `json:"reservation_number"`
	UnitIDs           []uuid.UUID `json:"unit_ids"`
}

// NewReservationConfirmedEvent creates a ReservationConfirmedEvent
func NewReservationConfirmedEvent(r *Reservation) *ReservationConfirmedEvent {
	return &ReservationConfirmedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventReservationConfirmed, aggregateType, r.ID),
		ReservationNumber: r.ReservationNumber,
		UnitIDs:           r.UnitIDs(),
	}
}

// ReservationCheckedInEvent is raised when guests arrive
type ReservationCheckedInEvent struct {
	shared.BaseDomainEvent
	ReservationNumber string      `json:"reservation_number"`
	UnitIDs           []uuid.UUID `json:"unit_ids"`
}

// NewReservationCheckedInEvent creates a ReservationCheckedInEvent
func NewReservationCheckedInEvent(r *Reservation) *ReservationCheckedInEvent {
	return &ReservationCheckedInEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventReservationCheckedIn, aggregateType, r.ID),
		ReservationNumber: r.ReservationNumber,
		UnitIDs:           r.UnitIDs(),
	}
}

// ReservationCheckedOutEvent is raised when guests depart. It drives the
// housekeeping task creation and guest statistics refresh handlers.
type ReservationCheckedOutEvent struct {
	shared.BaseDomainEvent
	ReservationNumber string      `json:"reservation_number"`
	GuestID           uuid.UUID   `json:"guest_id"`
	UnitIDs           []uuid.UUID `json:"unit_ids"`
	InvoiceID         *uuid.UUID  `json:"invoice_id,omitempty"`
}

// NewReservationCheckedOutEvent creates a ReservationCheckedOutEvent
func NewReservationCheckedOutEvent(r *Reservation) *ReservationCheckedOutEvent {
	return &ReservationCheckedOutEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventReservationCheckedOut, aggregateType, r.ID),
		ReservationNumber: r.ReservationNumber,
		GuestID:           r.GuestID,
		UnitIDs:           r.UnitIDs(),
		InvoiceID:         r.InvoiceID,
	}
}

// ReservationCancelledEvent is raised on cancellation
type ReservationCancelledEvent struct {
	shared.BaseDomainEvent
	ReservationNumber string      `json:"reservation_number"`
	UnitIDs           []uuid.UUID `json:"unit_ids"`
	HadInvoice        bool        `json:"had_invoice"`
	Reason            string      `json:"reason"`
}

// NewReservationCancelledEvent creates a ReservationCancelledEvent
func NewReservationCancelledEvent(r *Reservation, hadInvoice bool) *ReservationCancelledEvent {
	return &ReservationCancelledEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventReservationCancelled, aggregateType, r.ID),
		ReservationNumber: r.ReservationNumber,
		UnitIDs:           r.UnitIDs(),
		HadInvoice:        hadInvoice,
		Reason:            r.CancelReason,
	}
}
