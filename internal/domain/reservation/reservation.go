package reservation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/shared/valueobject"
)

// ReservationStatus represents the lifecycle status of a reservation
type ReservationStatus string

const (
	StatusDraft      ReservationStatus = "DRAFT"
	StatusConfirmed  ReservationStatus = "CONFIRMED"
	StatusCheckedIn  ReservationStatus = "CHECKED_IN"
	StatusCheckedOut ReservationStatus = "CHECKED_OUT"
	StatusCancelled  ReservationStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ReservationStatus
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ReservationStatus
func (s ReservationStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	switch s {
	case StatusDraft:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCheckedIn || target == StatusCancelled
	case StatusCheckedIn:
		return target == StatusCheckedOut || target == StatusCancelled
	case StatusCheckedOut, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// Blocks reports whether a reservation in this status holds its units
// against other bookings. Draft and terminal reservations never block.
func (s ReservationStatus) Blocks() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

// UnitStay is a reservation line item binding one unit to a date sub-range
// and a nightly rate
type UnitStay struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReservationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitCode      string          `gorm:"type:varchar(50);not null"` // Denormalized for display
	CheckIn       time.Time       `gorm:"not null"`
	CheckOut      time.Time       `gorm:"not null"`
	Nights        int             `gorm:"not null"`
	RatePerNight  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (UnitStay) TableName() string {
	return "reservation_unit_stays"
}

// Range returns the stay's half-open date range
func (s *UnitStay) Range() (valueobject.DateRange, error) {
	return valueobject.NewDateRange(s.CheckIn, s.CheckOut)
}

// recalculate derives nights and line total from dates and rate
func (s *UnitStay) recalculate() {
	r, err := valueobject.NewDateRange(s.CheckIn, s.CheckOut)
	if err != nil {
		s.Nights = 0
		s.LineTotal = decimal.Zero
		return
	}
	s.Nights = r.Nights()
	s.LineTotal = s.RatePerNight.Mul(decimal.NewFromInt(int64(s.Nights)))
	s.UpdatedAt = time.Now()
}

// ServiceConsumption is a billable service line (minibar, laundry, transfer)
// consumed during a stay. Invoiced is one-way: once a line has been billed
// it is never billed again on a repeated checkout attempt.
type ServiceConsumption struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReservationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceCode   string          `gorm:"type:varchar(50);not null"`
	Description   string          `gorm:"type:varchar(500)"`
	UnitID        *uuid.UUID      `gorm:"type:uuid"`
	Qty           decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Rate          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Invoiced      bool            `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (ServiceConsumption) TableName() string {
	return "reservation_services"
}

// MarkInvoiced flags the line as billed
func (c *ServiceConsumption) MarkInvoiced() {
	c.Invoiced = true
	c.UpdatedAt = time.Now()
}

// Reservation represents a guest booking aggregate root. It owns its
// unit-stay and service-consumption line items and governs the booking
// lifecycle from draft through checkout or cancellation.
type Reservation struct {
	shared.BaseAggregateRoot
	ReservationNumber string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	GuestID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	BillingPartyID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	PropertyID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	CheckIn           time.Time            `gorm:"not null;index"`
	CheckOut          time.Time            `gorm:"not null;index"`
	Nights            int                  `gorm:"not null"`
	UnitStays         []UnitStay           `gorm:"foreignKey:ReservationID;references:ID"`
	Services          []ServiceConsumption `gorm:"foreignKey:ReservationID;references:ID"`
	TotalAmount       decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Status            ReservationStatus    `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	InvoiceID         *uuid.UUID           `gorm:"type:uuid"`
	Remark            string               `gorm:"type:text"`
	ConfirmedAt       *time.Time
	CheckedInAt       *time.Time
	CheckedOutAt      *time.Time
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}

// NewReservation creates a new draft reservation
func NewReservation(reservationNumber string, guestID, billingPartyID, propertyID uuid.UUID, checkIn, checkOut time.Time) (*Reservation, error) {
	if reservationNumber == "" {
		return nil, shared.NewValidationError("Reservation number cannot be empty")
	}
	if guestID == uuid.Nil {
		return nil, shared.NewValidationError("Primary guest is required")
	}
	if billingPartyID == uuid.Nil {
		return nil, shared.NewValidationError("Billing party is required")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewValidationError("Property is required")
	}
	r, err := valueobject.NewDateRange(checkIn, checkOut)
	if err != nil {
		return nil, shared.NewValidationError("Check-out date must be after check-in date")
	}

	res := &Reservation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReservationNumber: reservationNumber,
		GuestID:           guestID,
		BillingPartyID:    billingPartyID,
		PropertyID:        propertyID,
		CheckIn:           r.From(),
		CheckOut:          r.To(),
		Nights:            r.Nights(),
		UnitStays:         make([]UnitStay, 0),
		Services:          make([]ServiceConsumption, 0),
		TotalAmount:       decimal.Zero,
		Status:            StatusDraft,
	}
	res.AddDomainEvent(NewReservationCreatedEvent(res))
	return res, nil
}

// Range returns the reservation's half-open date range
func (r *Reservation) Range() (valueobject.DateRange, error) {
	return valueobject.NewDateRange(r.CheckIn, r.CheckOut)
}

// ValidateDates enforces the date policy for a draft save. today is the
// caller's current date; maxStayNights limits the stay length (0 = no limit).
func (r *Reservation) ValidateDates(today time.Time, maxStayNights int, isNew bool) error {
	rng, err := valueobject.NewDateRange(r.CheckIn, r.CheckOut)
	if err != nil {
		return shared.NewValidationError("Check-out date must be after check-in date")
	}
	if isNew && rng.From().Before(valueobject.TruncateToDay(today)) {
		return shared.NewValidationError("Check-in date cannot be in the past")
	}
	if maxStayNights > 0 && rng.Nights() > maxStayNights {
		return shared.NewValidationError(fmt.Sprintf("Stay length exceeds the maximum of %d nights", maxStayNights))
	}
	for i := range r.UnitStays {
		if _, err := r.UnitStays[i].Range(); err != nil {
			return shared.NewValidationError(fmt.Sprintf("Unit %s: check-out must be after check-in", r.UnitStays[i].UnitCode))
		}
	}
	return nil
}

// AddUnitStay adds a unit line item. A zero checkIn/checkOut inherits the
// reservation dates; a zero rate is filled later by rate resolution.
// Only allowed in DRAFT status.
func (r *Reservation) AddUnitStay(unitID uuid.UUID, unitCode string, checkIn, checkOut time.Time, ratePerNight decimal.Decimal) (*UnitStay, error) {
	if r.Status != StatusDraft {
		return nil, shared.NewStateError("Cannot add units to a non-draft reservation")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewValidationError("Unit reference cannot be empty")
	}
	for i := range r.UnitStays {
		if r.UnitStays[i].UnitID == unitID {
			return nil, shared.NewValidationError("Unit " + unitCode + " is already on this reservation")
		}
	}
	if checkIn.IsZero() {
		checkIn = r.CheckIn
	}
	if checkOut.IsZero() {
		checkOut = r.CheckOut
	}
	if ratePerNight.IsNegative() {
		return nil, shared.NewValidationError("Rate per night cannot be negative")
	}

	now := time.Now()
	stay := UnitStay{
		ID:            uuid.New(),
		ReservationID: r.ID,
		UnitID:        unitID,
		UnitCode:      unitCode,
		CheckIn:       valueobject.TruncateToDay(checkIn),
		CheckOut:      valueobject.TruncateToDay(checkOut),
		RatePerNight:  ratePerNight,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	stay.recalculate()
	r.UnitStays = append(r.UnitStays, stay)
	r.RecalculateTotals()
	return &r.UnitStays[len(r.UnitStays)-1], nil
}

// RemoveUnitStay removes a unit line item. Only allowed in DRAFT status.
func (r *Reservation) RemoveUnitStay(stayID uuid.UUID) error {
	if r.Status != StatusDraft {
		return shared.NewStateError("Cannot remove units from a non-draft reservation")
	}
	for i := range r.UnitStays {
		if r.UnitStays[i].ID == stayID {
			r.UnitStays = append(r.UnitStays[:i], r.UnitStays[i+1:]...)
			r.RecalculateTotals()
			return nil
		}
	}
	return shared.NewNotFoundError("Unit stay not found on reservation")
}

// SetStayRate fills the nightly rate of a unit stay and recalculates its
// line total. Used by rate resolution on draft save.
func (r *Reservation) SetStayRate(stayID uuid.UUID, ratePerNight decimal.Decimal) error {
	if r.Status != StatusDraft {
		return shared.NewStateError("Cannot reprice a non-draft reservation")
	}
	if ratePerNight.IsNegative() {
		return shared.NewValidationError("Rate per night cannot be negative")
	}
	for i := range r.UnitStays {
		if r.UnitStays[i].ID == stayID {
			r.UnitStays[i].RatePerNight = ratePerNight
			r.UnitStays[i].recalculate()
			r.RecalculateTotals()
			return nil
		}
	}
	return shared.NewNotFoundError("Unit stay not found on reservation")
}

// AddService records a service consumption line. Services may be added
// until checkout; lines added after confirmation are billed on checkout.
func (r *Reservation) AddService(serviceCode, description string, unitID *uuid.UUID, qty, rate decimal.Decimal) (*ServiceConsumption, error) {
	if r.Status == StatusCheckedOut || r.Status == StatusCancelled {
		return nil, shared.NewStateError("Cannot add services to a closed reservation")
	}
	if serviceCode == "" {
		return nil, shared.NewValidationError("Service code cannot be empty")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Service quantity must be positive")
	}
	if rate.IsNegative() {
		return nil, shared.NewValidationError("Service rate cannot be negative")
	}

	now := time.Now()
	svc := ServiceConsumption{
		ID:            uuid.New(),
		ReservationID: r.ID,
		ServiceCode:   serviceCode,
		Description:   description,
		UnitID:        unitID,
		Qty:           qty,
		Rate:          rate,
		Amount:        qty.Mul(rate),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.Services = append(r.Services, svc)
	r.RecalculateTotals()
	return &r.Services[len(r.Services)-1], nil
}

// RecalculateTotals rebuilds every derived amount:
// total = Σ(stay.rate × stay.nights) + Σ(service.qty × service.rate)
func (r *Reservation) RecalculateTotals() {
	total := decimal.Zero
	for i := range r.UnitStays {
		r.UnitStays[i].recalculate()
		total = total.Add(r.UnitStays[i].LineTotal)
	}
	for i := range r.Services {
		r.Services[i].Amount = r.Services[i].Qty.Mul(r.Services[i].Rate)
		total = total.Add(r.Services[i].Amount)
	}
	r.TotalAmount = total
	r.UpdatedAt = time.Now()
}

// UnitIDs returns the distinct unit references across all stay lines
func (r *Reservation) UnitIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.UnitStays))
	for i := range r.UnitStays {
		ids = append(ids, r.UnitStays[i].UnitID)
	}
	return ids
}

// StaysWithoutRate returns unit stays still missing a nightly rate
func (r *Reservation) StaysWithoutRate() []*UnitStay {
	var missing []*UnitStay
	for i := range r.UnitStays {
		if r.UnitStays[i].RatePerNight.IsZero() {
			missing = append(missing, &r.UnitStays[i])
		}
	}
	return missing
}

// UninvoicedServices returns service lines not yet billed
func (r *Reservation) UninvoicedServices() []*ServiceConsumption {
	var pending []*ServiceConsumption
	for i := range r.Services {
		if !r.Services[i].Invoiced {
			pending = append(pending, &r.Services[i])
		}
	}
	return pending
}

// Confirm transitions DRAFT -> CONFIRMED. Line items are locked from
// further direct edits; unit status side effects are orchestrated by the
// application service inside the confirmation transaction.
func (r *Reservation) Confirm() error {
	if !r.Status.CanTransitionTo(StatusConfirmed) {
		return shared.NewStateError(fmt.Sprintf("Cannot confirm reservation in %s status; must be %s", r.Status, StatusDraft))
	}
	if len(r.UnitStays) == 0 {
		return shared.NewValidationError("At least one unit must be reserved")
	}
	if r.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Reservation total amount must be positive")
	}

	now := time.Now()
	r.Status = StatusConfirmed
	r.ConfirmedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewReservationConfirmedEvent(r))
	return nil
}

// MarkCheckedIn transitions CONFIRMED -> CHECKED_IN. Only legal on or
// after the reservation's check-in date.
func (r *Reservation) MarkCheckedIn(today time.Time) error {
	if !r.Status.CanTransitionTo(StatusCheckedIn) || r.Status != StatusConfirmed {
		return shared.NewStateError(fmt.Sprintf("Cannot check in reservation in %s status; must be %s", r.Status, StatusConfirmed))
	}
	if valueobject.TruncateToDay(today).Before(valueobject.TruncateToDay(r.CheckIn)) {
		return shared.NewValidationError("Cannot check in before the check-in date")
	}

	now := time.Now()
	r.Status = StatusCheckedIn
	r.CheckedInAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewReservationCheckedInEvent(r))
	return nil
}

// MarkCheckedOut transitions CHECKED_IN -> CHECKED_OUT and flags every
// pending service line as invoiced. The invoice itself is created by the
// application service before this transition and attached via AttachInvoice.
func (r *Reservation) MarkCheckedOut() error {
	if !r.Status.CanTransitionTo(StatusCheckedOut) {
		return shared.NewStateError(fmt.Sprintf("Cannot check out reservation in %s status; must be %s", r.Status, StatusCheckedIn))
	}

	for i := range r.Services {
		if !r.Services[i].Invoiced {
			r.Services[i].MarkInvoiced()
		}
	}

	now := time.Now()
	r.Status = StatusCheckedOut
	r.CheckedOutAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewReservationCheckedOutEvent(r))
	return nil
}

// AttachInvoice links the billing invoice generated at checkout
func (r *Reservation) AttachInvoice(invoiceID uuid.UUID) error {
	if invoiceID == uuid.Nil {
		return shared.NewValidationError("Invoice ID cannot be empty")
	}
	r.InvoiceID = &invoiceID
	r.UpdatedAt = time.Now()
	return nil
}

// Cancel transitions any non-terminal status to CANCELLED
func (r *Reservation) Cancel(reason string) error {
	if !r.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewStateError(fmt.Sprintf("Cannot cancel reservation in %s status", r.Status))
	}
	if reason == "" {
		return shared.NewValidationError("Cancel reason is required")
	}

	now := time.Now()
	hadInvoice := r.InvoiceID != nil
	r.Status = StatusCancelled
	r.CancelledAt = &now
	r.CancelReason = reason
	r.UpdatedAt = now

	r.AddDomainEvent(NewReservationCancelledEvent(r, hadInvoice))
	return nil
}

// IsDraft returns true if the reservation is in draft status
func (r *Reservation) IsDraft() bool {
	return r.Status == StatusDraft
}

// IsTerminal returns true if the reservation is checked out or cancelled
func (r *Reservation) IsTerminal() bool {
	return r.Status == StatusCheckedOut || r.Status == StatusCancelled
}

// CanModify returns true if line items may still be edited directly
func (r *Reservation) CanModify() bool {
	return r.IsDraft()
}
