package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/billing"
	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/pricing"
	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/reservation"
	"github.com/pms/backend/internal/domain/shared"
)

// MockReservationRepository is a mock implementation of ReservationRepository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindByNumber(ctx context.Context, number string) (*reservation.Reservation, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]reservation.Reservation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Save(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) SaveWithLock(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservationRepository) GenerateNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockReservationRepository) ConfirmWithUnitLocks(ctx context.Context, r *reservation.Reservation, fn reservation.ConfirmFunc) error {
	args := m.Called(ctx, r)
	if err := fn(ctx, r); err != nil {
		return err
	}
	return args.Error(0)
}

func (m *MockReservationRepository) FindBlockingStays(ctx context.Context, unitID uuid.UUID) ([]reservation.BlockingStay, error) {
	args := m.Called(ctx, unitID)
	return args.Get(0).([]reservation.BlockingStay), args.Error(1)
}

func (m *MockReservationRepository) CountByStatus(ctx context.Context, status reservation.ReservationStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReservationRepository) CountArrivals(ctx context.Context, day time.Time) (int64, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReservationRepository) CountDepartures(ctx context.Context, day time.Time) (int64, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReservationRepository) CountInHouseGuests(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUnitRepository is a mock implementation of UnitRepository
type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindByCode(ctx context.Context, unitCode string) (*inventory.Unit, error) {
	args := m.Called(ctx, unitCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Unit, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]inventory.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]inventory.Unit, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]inventory.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Unit, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.Unit), args.Error(1)
}

func (m *MockUnitRepository) Save(ctx context.Context, unit *inventory.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) SetStatus(ctx context.Context, id uuid.UUID, status inventory.UnitStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockUnitRepository) CountByStatus(ctx context.Context, status inventory.UnitStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnitRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockGuestRepository is a mock implementation of GuestRepository
type MockGuestRepository struct {
	mock.Mock
}

func (m *MockGuestRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Guest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Guest), args.Error(1)
}

func (m *MockGuestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]property.Guest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]property.Guest), args.Error(1)
}

func (m *MockGuestRepository) Save(ctx context.Context, guest *property.Guest) error {
	args := m.Called(ctx, guest)
	return args.Error(0)
}

func (m *MockGuestRepository) AggregateStats(ctx context.Context, guestID uuid.UUID) (*property.GuestStats, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.GuestStats), args.Error(1)
}

// MockPropertyRepository is a mock implementation of PropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindByName(ctx context.Context, name string) (*property.Property, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]property.Property, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]property.Property), args.Error(1)
}

func (m *MockPropertyRepository) Save(ctx context.Context, p *property.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockRatePlanRepository is a mock implementation of RatePlanRepository
type MockRatePlanRepository struct {
	mock.Mock
}

func (m *MockRatePlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.RatePlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.RatePlan), args.Error(1)
}

func (m *MockRatePlanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]pricing.RatePlan, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]pricing.RatePlan), args.Error(1)
}

func (m *MockRatePlanRepository) FindActiveForDate(ctx context.Context, propertyID, unitTypeID uuid.UUID, date time.Time) ([]pricing.RatePlan, error) {
	args := m.Called(ctx, propertyID, unitTypeID, date)
	return args.Get(0).([]pricing.RatePlan), args.Error(1)
}

func (m *MockRatePlanRepository) FindOverlapping(ctx context.Context, propertyID, unitTypeID uuid.UUID, from, to time.Time, exclude uuid.UUID) ([]pricing.RatePlan, error) {
	args := m.Called(ctx, propertyID, unitTypeID, from, to, exclude)
	return args.Get(0).([]pricing.RatePlan), args.Error(1)
}

func (m *MockRatePlanRepository) Save(ctx context.Context, plan *pricing.RatePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockRatePlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDefaultRateSource is a mock implementation of DefaultRateSource
type MockDefaultRateSource struct {
	mock.Mock
}

func (m *MockDefaultRateSource) DefaultRate(ctx context.Context, unitTypeID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, unitTypeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockInvoiceService is a mock implementation of billing.InvoiceService
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, req billing.InvoiceRequest) (*billing.InvoiceResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.InvoiceResult), args.Error(1)
}

func (m *MockInvoiceService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) error {
	args := m.Called(ctx, invoiceID, reason)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// serviceFixture bundles the service under test with its mocks
type serviceFixture struct {
	service      *ReservationService
	reservations *MockReservationRepository
	units        *MockUnitRepository
	guests       *MockGuestRepository
	properties   *MockPropertyRepository
	plans        *MockRatePlanRepository
	defaults     *MockDefaultRateSource
	invoices     *MockInvoiceService
	events       *MockEventPublisher
}

func newServiceFixture(maxStayNights int) *serviceFixture {
	f := &serviceFixture{
		reservations: new(MockReservationRepository),
		units:        new(MockUnitRepository),
		guests:       new(MockGuestRepository),
		properties:   new(MockPropertyRepository),
		plans:        new(MockRatePlanRepository),
		defaults:     new(MockDefaultRateSource),
		invoices:     new(MockInvoiceService),
		events:       new(MockEventPublisher),
	}
	availability := reservation.NewAvailabilityService(f.reservations)
	resolver := pricing.NewResolver(f.plans, f.defaults, nil)
	f.service = NewReservationService(
		f.reservations, f.units, f.guests, f.properties,
		availability, resolver, f.invoices, f.events,
		zap.NewNop(), maxStayNights,
	)
	return f
}

func createTestGuest() *property.Guest {
	guest, _ := property.NewGuest("Sara Mahmoud", "+20-100-555-0101", "")
	return guest
}

func createTestProperty() *property.Property {
	prop, _ := property.NewProperty("Marina Bay Residence", property.PropertyTypeApartment)
	return prop
}

func createTestUnit(propertyID uuid.UUID) *inventory.Unit {
	unit, _ := inventory.NewUnit("A-101", propertyID, uuid.New(), decimal.NewFromInt(500))
	return unit
}

// futureDay returns a date safely in the future so draft date policy passes
func futureDay(offset int) time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, offsetDays+offset)
}

const offsetDays = 30

func TestReservationService_CreateDraft_Success(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	guest := createTestGuest()
	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	rate := "500"

	req := CreateReservationRequest{
		GuestID:    guest.ID,
		PropertyID: prop.ID,
		CheckIn:    futureDay(0),
		CheckOut:   futureDay(3),
		Units:      []UnitStayRequest{{UnitID: unit.ID, Rate: &rate}},
	}

	f.guests.On("FindByID", ctx, guest.ID).Return(guest, nil)
	f.properties.On("FindByID", ctx, prop.ID).Return(prop, nil)
	f.reservations.On("GenerateNumber", ctx).Return("RES-2026-00001", nil)
	f.units.On("FindByID", ctx, unit.ID).Return(unit, nil)
	f.reservations.On("FindBlockingStays", ctx, unit.ID).Return([]reservation.BlockingStay{}, nil)
	f.reservations.On("Save", ctx, mock.AnythingOfType("*reservation.Reservation")).Return(nil)
	f.events.On("Publish", ctx, mock.Anything).Return(nil)

	res, err := f.service.CreateDraft(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "RES-2026-00001", res.ReservationNumber)
	assert.Equal(t, reservation.StatusDraft, res.Status)
	assert.Equal(t, 3, res.Nights)
	assert.True(t, res.TotalAmount.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, guest.ID, res.BillingPartyID)
	f.reservations.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestReservationService_CreateDraft_GuestNotFound(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()
	guestID := uuid.New()

	f.guests.On("FindByID", ctx, guestID).Return(nil, nil)

	res, err := f.service.CreateDraft(ctx, CreateReservationRequest{
		GuestID:    guestID,
		PropertyID: uuid.New(),
		CheckIn:    futureDay(0),
		CheckOut:   futureDay(3),
		Units:      []UnitStayRequest{{UnitID: uuid.New()}},
	})

	assert.Nil(t, res)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeNotFound, domainErr.Code)
}

func TestReservationService_CreateDraft_UnitConflict(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	guest := createTestGuest()
	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	rate := "500"

	blocking := []reservation.BlockingStay{{
		ReservationID: uuid.New(),
		UnitID:        unit.ID,
		CheckIn:       futureDay(1),
		CheckOut:      futureDay(4),
	}}

	f.guests.On("FindByID", ctx, guest.ID).Return(guest, nil)
	f.properties.On("FindByID", ctx, prop.ID).Return(prop, nil)
	f.reservations.On("GenerateNumber", ctx).Return("RES-2026-00002", nil)
	f.units.On("FindByID", ctx, unit.ID).Return(unit, nil)
	f.reservations.On("FindBlockingStays", ctx, unit.ID).Return(blocking, nil)

	res, err := f.service.CreateDraft(ctx, CreateReservationRequest{
		GuestID:    guest.ID,
		PropertyID: prop.ID,
		CheckIn:    futureDay(0),
		CheckOut:   futureDay(3),
		Units:      []UnitStayRequest{{UnitID: unit.ID, Rate: &rate}},
	})

	assert.Nil(t, res)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeConflict, domainErr.Code)
	assert.Contains(t, domainErr.Message, "A-101")
}

func TestReservationService_CreateDraft_ResolvesMissingRate(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	guest := createTestGuest()
	prop := createTestProperty()
	unit := createTestUnit(prop.ID)

	f.guests.On("FindByID", ctx, guest.ID).Return(guest, nil)
	f.properties.On("FindByID", ctx, prop.ID).Return(prop, nil)
	f.reservations.On("GenerateNumber", ctx).Return("RES-2026-00003", nil)
	f.units.On("FindByID", ctx, unit.ID).Return(unit, nil)
	f.reservations.On("FindBlockingStays", ctx, unit.ID).Return([]reservation.BlockingStay{}, nil)
	f.plans.On("FindActiveForDate", ctx, prop.ID, unit.UnitTypeID, mock.AnythingOfType("time.Time")).
		Return([]pricing.RatePlan{}, nil)
	f.defaults.On("DefaultRate", ctx, unit.UnitTypeID).Return(decimal.NewFromInt(450), nil)
	f.reservations.On("Save", ctx, mock.AnythingOfType("*reservation.Reservation")).Return(nil)
	f.events.On("Publish", ctx, mock.Anything).Return(nil)

	res, err := f.service.CreateDraft(ctx, CreateReservationRequest{
		GuestID:    guest.ID,
		PropertyID: prop.ID,
		CheckIn:    futureDay(0),
		CheckOut:   futureDay(2),
		Units:      []UnitStayRequest{{UnitID: unit.ID}},
	})

	require.NoError(t, err)
	require.Len(t, res.UnitStays, 1)
	assert.True(t, res.UnitStays[0].RatePerNight.Equal(decimal.NewFromInt(450)))
	assert.True(t, res.TotalAmount.Equal(decimal.NewFromInt(900)))
	f.defaults.AssertExpectations(t)
}

func TestReservationService_CreateDraft_RejectsZeroTotal(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	guest := createTestGuest()
	prop := createTestProperty()
	unit := createTestUnit(prop.ID)

	f.guests.On("FindByID", ctx, guest.ID).Return(guest, nil)
	f.properties.On("FindByID", ctx, prop.ID).Return(prop, nil)
	f.reservations.On("GenerateNumber", ctx).Return("RES-2026-00005", nil)
	f.units.On("FindByID", ctx, unit.ID).Return(unit, nil)
	f.reservations.On("FindBlockingStays", ctx, unit.ID).Return([]reservation.BlockingStay{}, nil)
	f.plans.On("FindActiveForDate", ctx, prop.ID, unit.UnitTypeID, mock.AnythingOfType("time.Time")).
		Return([]pricing.RatePlan{}, nil)
	f.defaults.On("DefaultRate", ctx, unit.UnitTypeID).Return(decimal.Zero, nil)

	res, err := f.service.CreateDraft(ctx, CreateReservationRequest{
		GuestID:    guest.ID,
		PropertyID: prop.ID,
		CheckIn:    futureDay(0),
		CheckOut:   futureDay(2),
		Units:      []UnitStayRequest{{UnitID: unit.ID}},
	})

	assert.Nil(t, res)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeValidation, domainErr.Code)
	f.reservations.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReservationService_CreateDraft_ExceedsMaxStay(t *testing.T) {
	f := newServiceFixture(2)
	ctx := context.Background()

	guest := createTestGuest()
	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	rate := "500"

	f.guests.On("FindByID", ctx, guest.ID).Return(guest, nil)
	f.properties.On("FindByID", ctx, prop.ID).Return(prop, nil)
	f.reservations.On("GenerateNumber", ctx).Return("RES-2026-00004", nil)
	f.units.On("FindByID", ctx, unit.ID).Return(unit, nil)

	res, err := f.service.CreateDraft(ctx, CreateReservationRequest{
		GuestID:    guest.ID,
		PropertyID: prop.ID,
		CheckIn:    futureDay(0),
		CheckOut:   futureDay(3),
		Units:      []UnitStayRequest{{UnitID: unit.ID, Rate: &rate}},
	})

	assert.Nil(t, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum of 2 nights")
}

func confirmedTestReservation(t *testing.T, unit *inventory.Unit, propertyID uuid.UUID) *reservation.Reservation {
	t.Helper()
	res, err := reservation.NewReservation("RES-2026-00010", uuid.New(), uuid.New(), propertyID, futureDay(0), futureDay(3))
	require.NoError(t, err)
	_, err = res.AddUnitStay(unit.ID, unit.UnitCode, time.Time{}, time.Time{}, decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, res.Confirm())
	res.ClearDomainEvents()
	return res
}

func TestReservationService_Confirm_Success(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	res, err := reservation.NewReservation("RES-2026-00010", uuid.New(), uuid.New(), prop.ID, futureDay(0), futureDay(3))
	require.NoError(t, err)
	_, err = res.AddUnitStay(unit.ID, unit.UnitCode, time.Time{}, time.Time{}, decimal.NewFromInt(500))
	require.NoError(t, err)

	f.reservations.On("FindByID", ctx, res.ID).Return(res, nil)
	f.reservations.On("ConfirmWithUnitLocks", ctx, res).Return(nil)
	f.reservations.On("FindBlockingStays", ctx, unit.ID).Return([]reservation.BlockingStay{}, nil)
	f.events.On("Publish", ctx, mock.Anything).Return(nil)

	confirmed, err := f.service.Confirm(ctx, res.ID)

	require.NoError(t, err)
	assert.Equal(t, reservation.StatusConfirmed, confirmed.Status)
	f.reservations.AssertExpectations(t)
}

func TestReservationService_Confirm_Conflict(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	res, err := reservation.NewReservation("RES-2026-00011", uuid.New(), uuid.New(), prop.ID, futureDay(0), futureDay(3))
	require.NoError(t, err)
	_, err = res.AddUnitStay(unit.ID, unit.UnitCode, time.Time{}, time.Time{}, decimal.NewFromInt(500))
	require.NoError(t, err)

	blocking := []reservation.BlockingStay{{
		ReservationID: uuid.New(),
		UnitID:        unit.ID,
		CheckIn:       futureDay(1),
		CheckOut:      futureDay(4),
	}}

	f.reservations.On("FindByID", ctx, res.ID).Return(res, nil)
	f.reservations.On("ConfirmWithUnitLocks", ctx, res).Return(nil)
	f.reservations.On("FindBlockingStays", ctx, unit.ID).Return(blocking, nil)

	confirmed, err := f.service.Confirm(ctx, res.ID)

	assert.Nil(t, confirmed)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeConflict, domainErr.Code)
	assert.Equal(t, reservation.StatusDraft, res.Status)
}

func TestReservationService_CheckIn_Success(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	res, err := reservation.NewReservation("RES-2026-00012", uuid.New(), uuid.New(), prop.ID,
		time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 2))
	require.NoError(t, err)
	_, err = res.AddUnitStay(unit.ID, unit.UnitCode, time.Time{}, time.Time{}, decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, res.Confirm())
	res.ClearDomainEvents()

	f.reservations.On("FindByID", ctx, res.ID).Return(res, nil)
	f.reservations.On("SaveWithLock", ctx, res).Return(nil)
	f.units.On("SetStatus", ctx, unit.ID, inventory.UnitStatusOccupied).Return(nil)
	f.events.On("Publish", ctx, mock.Anything).Return(nil)

	checkedIn, err := f.service.CheckIn(ctx, res.ID)

	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCheckedIn, checkedIn.Status)
	assert.NotNil(t, checkedIn.CheckedInAt)
	f.units.AssertExpectations(t)
}

func TestReservationService_CheckOut_RaisesInvoice(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	res, err := reservation.NewReservation("RES-2026-00013", uuid.New(), uuid.New(), prop.ID,
		time.Now().AddDate(0, 0, -3), time.Now().AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = res.AddUnitStay(unit.ID, unit.UnitCode, time.Time{}, time.Time{}, decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, res.Confirm())
	require.NoError(t, res.MarkCheckedIn(time.Now()))
	res.ClearDomainEvents()

	invoice := &billing.InvoiceResult{
		InvoiceID:     uuid.New(),
		InvoiceNumber: "INV-2026-00021",
		GrandTotal:    res.TotalAmount,
	}

	f.reservations.On("FindByID", ctx, res.ID).Return(res, nil)
	f.invoices.On("CreateInvoice", ctx, mock.AnythingOfType("billing.InvoiceRequest")).Return(invoice, nil)
	f.reservations.On("SaveWithLock", ctx, res).Return(nil)
	f.units.On("SetStatus", ctx, unit.ID, inventory.UnitStatusCleaning).Return(nil)
	f.events.On("Publish", ctx, mock.Anything).Return(nil)

	result, err := f.service.CheckOut(ctx, res.ID)

	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCheckedOut, result.Reservation.Status)
	assert.Equal(t, invoice.InvoiceID, result.InvoiceID)
	assert.Equal(t, "INV-2026-00021", result.InvoiceNumber)
	require.NotNil(t, res.InvoiceID)
	assert.Equal(t, invoice.InvoiceID, *res.InvoiceID)
	f.invoices.AssertExpectations(t)
	f.units.AssertExpectations(t)
}

func TestReservationService_CheckOut_RequiresInHouse(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	res := confirmedTestReservation(t, unit, prop.ID)

	f.reservations.On("FindByID", ctx, res.ID).Return(res, nil)

	result, err := f.service.CheckOut(ctx, res.ID)

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeInvalidState, domainErr.Code)
}

func TestReservationService_Cancel_ReleasesUnits(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	res := confirmedTestReservation(t, unit, prop.ID)

	f.reservations.On("FindByID", ctx, res.ID).Return(res, nil)
	f.reservations.On("SaveWithLock", ctx, res).Return(nil)
	f.units.On("SetStatus", ctx, unit.ID, inventory.UnitStatusAvailable).Return(nil)
	f.events.On("Publish", ctx, mock.Anything).Return(nil)

	cancelled, err := f.service.Cancel(ctx, res.ID, "Guest request")

	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCancelled, cancelled.Status)
	assert.Equal(t, "Guest request", cancelled.CancelReason)
	f.units.AssertExpectations(t)
}

func TestReservationService_Cancel_InHouseReleasesUnits(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	res, err := reservation.NewReservation("RES-2026-00014", uuid.New(), uuid.New(), prop.ID,
		time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 2))
	require.NoError(t, err)
	_, err = res.AddUnitStay(unit.ID, unit.UnitCode, time.Time{}, time.Time{}, decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, res.Confirm())
	require.NoError(t, res.MarkCheckedIn(time.Now()))
	res.ClearDomainEvents()

	f.reservations.On("FindByID", ctx, res.ID).Return(res, nil)
	f.reservations.On("SaveWithLock", ctx, res).Return(nil)
	f.units.On("SetStatus", ctx, unit.ID, inventory.UnitStatusAvailable).Return(nil)
	f.events.On("Publish", ctx, mock.Anything).Return(nil)

	_, err = f.service.Cancel(ctx, res.ID, "No show resolution")

	require.NoError(t, err)
	f.units.AssertExpectations(t)
}

func TestReservationService_Cancel_KeepsInvoiceWhenSaveFails(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	res, err := reservation.NewReservation("RES-2026-00016", uuid.New(), uuid.New(), prop.ID,
		time.Now().AddDate(0, 0, -3), time.Now().AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = res.AddUnitStay(unit.ID, unit.UnitCode, time.Time{}, time.Time{}, decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, res.Confirm())
	require.NoError(t, res.MarkCheckedIn(time.Now()))
	invoiceID := uuid.New()
	require.NoError(t, res.AttachInvoice(invoiceID))
	res.ClearDomainEvents()

	f.reservations.On("FindByID", ctx, res.ID).Return(res, nil)
	f.reservations.On("SaveWithLock", ctx, res).Return(shared.ErrConcurrencyConflict)

	// The cancellation never became durable, so accounting must be left
	// untouched.
	_, err = f.service.Cancel(ctx, res.ID, "Guest dispute")

	require.Error(t, err)
	f.invoices.AssertNotCalled(t, "CancelInvoice", mock.Anything, mock.Anything, mock.Anything)
	f.units.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_CheckOut_VoidsInvoiceWhenSaveFails(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()

	prop := createTestProperty()
	unit := createTestUnit(prop.ID)
	res, err := reservation.NewReservation("RES-2026-00015", uuid.New(), uuid.New(), prop.ID,
		time.Now().AddDate(0, 0, -3), time.Now().AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = res.AddUnitStay(unit.ID, unit.UnitCode, time.Time{}, time.Time{}, decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, res.Confirm())
	require.NoError(t, res.MarkCheckedIn(time.Now()))
	res.ClearDomainEvents()

	invoice := &billing.InvoiceResult{
		InvoiceID:     uuid.New(),
		InvoiceNumber: "INV-2026-00022",
		GrandTotal:    res.TotalAmount,
	}

	f.reservations.On("FindByID", ctx, res.ID).Return(res, nil)
	f.invoices.On("CreateInvoice", ctx, mock.AnythingOfType("billing.InvoiceRequest")).Return(invoice, nil)
	f.reservations.On("SaveWithLock", ctx, res).Return(shared.ErrConcurrencyConflict)
	f.invoices.On("CancelInvoice", ctx, invoice.InvoiceID, mock.AnythingOfType("string")).Return(nil)

	result, err := f.service.CheckOut(ctx, res.ID)

	assert.Nil(t, result)
	require.Error(t, err)
	f.invoices.AssertExpectations(t)
	f.units.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_GetByID_NotFound(t *testing.T) {
	f := newServiceFixture(0)
	ctx := context.Background()
	id := uuid.New()

	f.reservations.On("FindByID", ctx, id).Return(nil, nil)

	res, err := f.service.GetByID(ctx, id)

	assert.Nil(t, res)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeNotFound, domainErr.Code)
}
