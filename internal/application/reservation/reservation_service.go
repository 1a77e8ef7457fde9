package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/billing"
	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/pricing"
	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/reservation"
	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/shared/valueobject"
)

// ReservationService orchestrates the reservation lifecycle: draft
// validation and pricing, the locked confirmation, check-in, the invoicing
// checkout and cancellation with unit status side effects.
type ReservationService struct {
	reservationRepo reservation.ReservationRepository
	unitRepo        inventory.UnitRepository
	guestRepo       property.GuestRepository
	propertyRepo    property.PropertyRepository
	availability    *reservation.AvailabilityService
	resolver        *pricing.Resolver
	invoices        billing.InvoiceService
	eventBus        shared.EventPublisher
	logger          *zap.Logger
	maxStayNights   int
}

// NewReservationService creates a new ReservationService. maxStayNights
// caps the stay length on draft validation (0 disables the cap).
func NewReservationService(
	reservationRepo reservation.ReservationRepository,
	unitRepo inventory.UnitRepository,
	guestRepo property.GuestRepository,
	propertyRepo property.PropertyRepository,
	availability *reservation.AvailabilityService,
	resolver *pricing.Resolver,
	invoices billing.InvoiceService,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
	maxStayNights int,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		unitRepo:        unitRepo,
		guestRepo:       guestRepo,
		propertyRepo:    propertyRepo,
		availability:    availability,
		resolver:        resolver,
		invoices:        invoices,
		eventBus:        eventBus,
		logger:          logger,
		maxStayNights:   maxStayNights,
	}
}

// UnitStayRequest is one unit line on a create/update request. Zero dates
// inherit the reservation dates; an empty rate is resolved from rate plans.
type UnitStayRequest struct {
	UnitID   uuid.UUID  `json:"unit_id" binding:"required"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Rate     *string    `json:"rate,omitempty"`
}

// ServiceRequest is one service consumption line
type ServiceRequest struct {
	ServiceCode string     `json:"service_code" binding:"required"`
	Description string     `json:"description"`
	UnitID      *uuid.UUID `json:"unit_id,omitempty"`
	Qty         string     `json:"qty" binding:"required"`
	Rate        string     `json:"rate" binding:"required"`
}

// CreateReservationRequest carries the fields for a new draft reservation
type CreateReservationRequest struct {
	GuestID        uuid.UUID         `json:"guest_id" binding:"required"`
	BillingPartyID *uuid.UUID        `json:"billing_party_id,omitempty"`
	PropertyID     uuid.UUID         `json:"property_id" binding:"required"`
	CheckIn        time.Time         `json:"check_in" binding:"required"`
	CheckOut       time.Time         `json:"check_out" binding:"required"`
	Units          []UnitStayRequest `json:"units" binding:"required,min=1"`
	Services       []ServiceRequest  `json:"services"`
	Remark         string            `json:"remark"`
}

// CreateDraft validates, prices and persists a new draft reservation.
// Drafts do not block inventory, but a conflicted unit is rejected up
// front so the desk learns about it before confirmation.
func (s *ReservationService) CreateDraft(ctx context.Context, req CreateReservationRequest) (*reservation.Reservation, error) {
	guest, err := s.guestRepo.FindByID(ctx, req.GuestID)
	if err != nil {
		return nil, err
	}
	if guest == nil {
		return nil, shared.NewNotFoundError("Guest not found")
	}
	prop, err := s.propertyRepo.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, shared.NewNotFoundError("Property not found")
	}

	billingParty := req.GuestID
	if req.BillingPartyID != nil {
		billingParty = *req.BillingPartyID
	}

	number, err := s.reservationRepo.GenerateNumber(ctx)
	if err != nil {
		return nil, err
	}
	res, err := reservation.NewReservation(number, req.GuestID, billingParty, req.PropertyID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	res.Remark = req.Remark

	if err := s.applyUnitLines(ctx, res, req.Units); err != nil {
		return nil, err
	}
	for _, svc := range req.Services {
		if err := s.applyServiceLine(res, svc); err != nil {
			return nil, err
		}
	}

	if err := s.validateDraft(ctx, res, true); err != nil {
		return nil, err
	}
	if err := s.fillMissingRates(ctx, res); err != nil {
		return nil, err
	}
	// Holds on every save while mutable, not just at confirmation.
	if res.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Reservation total amount must be positive")
	}

	if err := s.reservationRepo.Save(ctx, res); err != nil {
		return nil, err
	}
	s.publish(ctx, res)
	s.logger.Info("reservation draft created",
		zap.String("reservation_number", res.ReservationNumber),
		zap.Int("units", len(res.UnitStays)),
		zap.String("total", res.TotalAmount.String()),
	)
	return res, nil
}

// UpdateDraftRequest carries the editable fields of a draft
type UpdateDraftRequest struct {
	CheckIn  *time.Time        `json:"check_in,omitempty"`
	CheckOut *time.Time        `json:"check_out,omitempty"`
	Units    []UnitStayRequest `json:"units,omitempty"`
	Remark   *string           `json:"remark,omitempty"`
}

// UpdateDraft edits a draft reservation and re-runs validation and pricing.
// Replacing the unit list rebuilds every stay line.
func (s *ReservationService) UpdateDraft(ctx context.Context, id uuid.UUID, req UpdateDraftRequest) (*reservation.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.IsDraft() {
		return nil, shared.NewStateError(fmt.Sprintf("Reservation %s is %s and cannot be edited", res.ReservationNumber, res.Status))
	}

	if req.CheckIn != nil {
		res.CheckIn = valueobject.TruncateToDay(*req.CheckIn)
	}
	if req.CheckOut != nil {
		res.CheckOut = valueobject.TruncateToDay(*req.CheckOut)
	}
	if req.CheckIn != nil || req.CheckOut != nil {
		rng, err := res.Range()
		if err != nil {
			return nil, shared.NewValidationError("Check-out date must be after check-in date")
		}
		res.Nights = rng.Nights()
	}
	if req.Remark != nil {
		res.Remark = *req.Remark
	}
	if req.Units != nil {
		res.UnitStays = res.UnitStays[:0]
		res.RecalculateTotals()
		if err := s.applyUnitLines(ctx, res, req.Units); err != nil {
			return nil, err
		}
	}

	if err := s.validateDraft(ctx, res, false); err != nil {
		return nil, err
	}
	if err := s.fillMissingRates(ctx, res); err != nil {
		return nil, err
	}
	if res.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Reservation total amount must be positive")
	}

	if err := s.reservationRepo.Save(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// AddService appends a billable service line to an open reservation
func (s *ReservationService) AddService(ctx context.Context, id uuid.UUID, req ServiceRequest) (*reservation.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyServiceLine(res, req); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.Save(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Confirm transitions a draft to CONFIRMED. The availability re-check and
// the BOOKED unit writes run inside one locked transaction so two
// overlapping confirmations cannot both succeed.
func (s *ReservationService) Confirm(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(res.StaysWithoutRate()) > 0 {
		if err := s.fillMissingRates(ctx, res); err != nil {
			return nil, err
		}
	}

	err = s.reservationRepo.ConfirmWithUnitLocks(ctx, res, func(txCtx context.Context, r *reservation.Reservation) error {
		conflicted, err := s.availability.CheckReservation(txCtx, r)
		if err != nil {
			return err
		}
		if len(conflicted) > 0 {
			return shared.NewConflictError(fmt.Sprintf("Units not available for the requested dates: %s", strings.Join(conflicted, ", ")))
		}
		return r.Confirm()
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, res)
	s.logger.Info("reservation confirmed",
		zap.String("reservation_number", res.ReservationNumber),
		zap.Int("units", len(res.UnitStays)),
	)
	return res, nil
}

// CheckIn transitions a confirmed reservation to CHECKED_IN and marks its
// units OCCUPIED
func (s *ReservationService) CheckIn(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.MarkCheckedIn(time.Now()); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.SaveWithLock(ctx, res); err != nil {
		return nil, err
	}
	s.setUnitStatuses(ctx, res, inventory.UnitStatusOccupied)
	s.publish(ctx, res)
	s.logger.Info("reservation checked in", zap.String("reservation_number", res.ReservationNumber))
	return res, nil
}

// CheckoutResult reports the outcome of a checkout
type CheckoutResult struct {
	Reservation   *reservation.Reservation
	InvoiceID     uuid.UUID
	InvoiceNumber string
	GrandTotal    decimal.Decimal
}

// CheckOut closes the stay: it raises the guest invoice covering stay lines
// and any unbilled services, attaches it, transitions the reservation to
// CHECKED_OUT and sends the units to CLEANING. Housekeeping tasks and guest
// statistics follow from the checked-out event.
func (s *ReservationService) CheckOut(ctx context.Context, id uuid.UUID) (*CheckoutResult, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != reservation.StatusCheckedIn {
		return nil, shared.NewStateError(fmt.Sprintf("Cannot check out reservation in %s status", res.Status))
	}

	invoice, err := s.invoices.CreateInvoice(ctx, s.buildInvoiceRequest(res))
	if err != nil {
		return nil, fmt.Errorf("create checkout invoice: %w", err)
	}
	if err := res.AttachInvoice(invoice.InvoiceID); err != nil {
		return nil, err
	}
	if err := res.MarkCheckedOut(); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.SaveWithLock(ctx, res); err != nil {
		// The transition failed to persist; void the invoice so a retry
		// does not double-bill the stay.
		if cancelErr := s.invoices.CancelInvoice(ctx, invoice.InvoiceID, "Checkout failed for "+res.ReservationNumber); cancelErr != nil {
			s.logger.Error("failed to void invoice after checkout failure",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(cancelErr),
			)
		}
		return nil, err
	}
	s.setUnitStatuses(ctx, res, inventory.UnitStatusCleaning)
	s.publish(ctx, res)
	s.logger.Info("reservation checked out",
		zap.String("reservation_number", res.ReservationNumber),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("grand_total", invoice.GrandTotal.String()),
	)
	return &CheckoutResult{
		Reservation:   res,
		InvoiceID:     invoice.InvoiceID,
		InvoiceNumber: invoice.InvoiceNumber,
		GrandTotal:    invoice.GrandTotal,
	}, nil
}

// Cancel voids a non-terminal reservation. Blocked units are released and
// an attached invoice is cancelled with it.
func (s *ReservationService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*reservation.Reservation, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	wasBlocking := res.Status.Blocks()

	if err := res.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.reservationRepo.SaveWithLock(ctx, res); err != nil {
		return nil, err
	}
	// The cancellation is durable; voiding the invoice is a follow-up
	// whose failure must not resurrect the reservation.
	if res.InvoiceID != nil {
		if err := s.invoices.CancelInvoice(ctx, *res.InvoiceID, "Reservation "+res.ReservationNumber+" cancelled: "+reason); err != nil {
			s.logger.Error("failed to cancel invoice for cancelled reservation",
				zap.String("reservation_number", res.ReservationNumber),
				zap.String("invoice_id", res.InvoiceID.String()),
				zap.Error(err),
			)
		}
	}
	if wasBlocking {
		s.setUnitStatuses(ctx, res, inventory.UnitStatusAvailable)
	}
	s.publish(ctx, res)
	s.logger.Info("reservation cancelled",
		zap.String("reservation_number", res.ReservationNumber),
		zap.String("reason", reason),
	)
	return res, nil
}

// GetByID returns one reservation
func (s *ReservationService) GetByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return s.getReservation(ctx, id)
}

// GetByNumber returns one reservation by its number
func (s *ReservationService) GetByNumber(ctx context.Context, number string) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, shared.NewNotFoundError("Reservation not found")
	}
	return res, nil
}

// List returns reservations matching the filter
func (s *ReservationService) List(ctx context.Context, filter shared.Filter) ([]reservation.Reservation, error) {
	return s.reservationRepo.FindAll(ctx, filter)
}

// AvailableUnit is one free unit with its resolved nightly rate
type AvailableUnit struct {
	Unit        inventory.Unit       `json:"unit"`
	NightlyRate *pricing.ResolvedRate `json:"nightly_rate,omitempty"`
}

// GetAvailableUnits lists units free for the whole candidate range,
// optionally narrowed to a property or unit type. Units under maintenance
// are excluded regardless of stay overlap.
func (s *ReservationService) GetAvailableUnits(ctx context.Context, propertyID, unitTypeID *uuid.UUID, checkIn, checkOut time.Time) ([]AvailableUnit, error) {
	rng, err := valueobject.NewDateRange(checkIn, checkOut)
	if err != nil {
		return nil, shared.NewValidationError("Check-out date must be after check-in date")
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 500
	if propertyID != nil {
		filter.Filters["property_id"] = *propertyID
	}
	if unitTypeID != nil {
		filter.Filters["unit_type_id"] = *unitTypeID
	}
	units, err := s.unitRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]AvailableUnit, 0, len(units))
	for i := range units {
		u := units[i]
		if !u.Active || u.Status == inventory.UnitStatusMaintenance {
			continue
		}
		free, err := s.availability.IsAvailable(ctx, u.ID, rng, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if !free {
			continue
		}
		entry := AvailableUnit{Unit: u}
		if rate, err := s.resolver.ResolveNightlyRate(ctx, u.PropertyID, u.UnitTypeID, rng.From()); err == nil {
			entry.NightlyRate = rate
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *ReservationService) getReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, shared.NewNotFoundError("Reservation not found")
	}
	return res, nil
}

func (s *ReservationService) applyUnitLines(ctx context.Context, res *reservation.Reservation, lines []UnitStayRequest) error {
	for _, line := range lines {
		unit, err := s.unitRepo.FindByID(ctx, line.UnitID)
		if err != nil {
			return err
		}
		if unit == nil {
			return shared.NewNotFoundError(fmt.Sprintf("Unit %s not found", line.UnitID))
		}
		if !unit.Active {
			return shared.NewValidationError(fmt.Sprintf("Unit %s is not active", unit.UnitCode))
		}
		if unit.PropertyID != res.PropertyID {
			return shared.NewValidationError(fmt.Sprintf("Unit %s belongs to a different property", unit.UnitCode))
		}

		rate := decimal.Zero
		if line.Rate != nil {
			rate, err = decimal.NewFromString(*line.Rate)
			if err != nil {
				return shared.NewValidationError("Invalid rate: " + *line.Rate)
			}
		}
		var in, out time.Time
		if line.CheckIn != nil {
			in = *line.CheckIn
		}
		if line.CheckOut != nil {
			out = *line.CheckOut
		}
		if _, err := res.AddUnitStay(unit.ID, unit.UnitCode, in, out, rate); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReservationService) applyServiceLine(res *reservation.Reservation, req ServiceRequest) error {
	qty, err := decimal.NewFromString(req.Qty)
	if err != nil {
		return shared.NewValidationError("Invalid service quantity: " + req.Qty)
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return shared.NewValidationError("Invalid service rate: " + req.Rate)
	}
	_, err = res.AddService(req.ServiceCode, req.Description, req.UnitID, qty, rate)
	return err
}

// validateDraft runs the date policy and the advisory availability check.
// The check here is advisory only; the authoritative one runs under locks
// at confirmation time.
func (s *ReservationService) validateDraft(ctx context.Context, res *reservation.Reservation, isNew bool) error {
	if err := res.ValidateDates(time.Now(), s.maxStayNights, isNew); err != nil {
		return err
	}
	conflicted, err := s.availability.CheckReservation(ctx, res)
	if err != nil {
		return err
	}
	if len(conflicted) > 0 {
		return shared.NewConflictError(fmt.Sprintf("Units not available for the requested dates: %s", strings.Join(conflicted, ", ")))
	}
	return nil
}

// fillMissingRates resolves a nightly rate for every stay line saved
// without one. Multi-night stays use the average resolved rate so the
// line total matches the per-night breakdown.
func (s *ReservationService) fillMissingRates(ctx context.Context, res *reservation.Reservation) error {
	missing := res.StaysWithoutRate()
	if len(missing) == 0 {
		return nil
	}
	for _, stay := range missing {
		unit, err := s.unitRepo.FindByID(ctx, stay.UnitID)
		if err != nil {
			return err
		}
		if unit == nil {
			return shared.NewNotFoundError(fmt.Sprintf("Unit %s not found", stay.UnitCode))
		}
		total, err := s.resolver.ResolveStayTotal(ctx, unit.PropertyID, unit.UnitTypeID, stay.CheckIn, stay.CheckOut)
		if err != nil {
			return err
		}
		if err := res.SetStayRate(stay.ID, total.AverageRate); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReservationService) buildInvoiceRequest(res *reservation.Reservation) billing.InvoiceRequest {
	req := billing.InvoiceRequest{
		BillingPartyID:    res.BillingPartyID,
		ReservationID:     res.ID,
		ReservationNumber: res.ReservationNumber,
		PostingDate:       time.Now(),
	}
	for i := range res.UnitStays {
		stay := &res.UnitStays[i]
		req.Lines = append(req.Lines, billing.InvoiceLine{
			Description: fmt.Sprintf("Accommodation %s (%s - %s)", stay.UnitCode, stay.CheckIn.Format("2006-01-02"), stay.CheckOut.Format("2006-01-02")),
			Quantity:    decimal.NewFromInt(int64(stay.Nights)),
			Rate:        stay.RatePerNight,
			Amount:      stay.LineTotal,
		})
	}
	for _, svc := range res.UninvoicedServices() {
		desc := svc.Description
		if desc == "" {
			desc = svc.ServiceCode
		}
		req.Lines = append(req.Lines, billing.InvoiceLine{
			Description: desc,
			Quantity:    svc.Qty,
			Rate:        svc.Rate,
			Amount:      svc.Amount,
		})
	}
	return req
}

// setUnitStatuses applies a status to every unit on the reservation.
// Failures are logged, not returned: the reservation transition already
// committed and a stuck unit is recoverable by hand.
func (s *ReservationService) setUnitStatuses(ctx context.Context, res *reservation.Reservation, status inventory.UnitStatus) {
	for _, unitID := range res.UnitIDs() {
		if err := s.unitRepo.SetStatus(ctx, unitID, status); err != nil {
			s.logger.Error("failed to update unit status",
				zap.String("unit_id", unitID.String()),
				zap.String("status", string(status)),
				zap.Error(err),
			)
		}
	}
}

func (s *ReservationService) publish(ctx context.Context, res *reservation.Reservation) {
	events := res.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish reservation events",
			zap.String("reservation_number", res.ReservationNumber),
			zap.Error(err),
		)
	}
	res.ClearDomainEvents()
}
