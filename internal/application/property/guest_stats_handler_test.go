package property

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

	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/reservation"
	"github.com/pms/backend/internal/domain/shared"
)

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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

func checkedOutEventFor(guestID uuid.UUID) *reservation.ReservationCheckedOutEvent {
	return &reservation.ReservationCheckedOutEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			reservation.EventReservationCheckedOut,
			"Reservation",
			uuid.New(),
		),
		ReservationNumber: "RES-2026-00001",
		GuestID:           guestID,
		UnitIDs:           []uuid.UUID{uuid.New()},
	}
}

func TestGuestStatsHandler_EventTypes(t *testing.T) {
	handler := NewGuestStatsHandler(new(MockGuestRepository), zap.NewNop())

	eventTypes := handler.EventTypes()
	require.Len(t, eventTypes, 1)
	assert.Equal(t, reservation.EventReservationCheckedOut, eventTypes[0])
}

func TestGuestStatsHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes guest statistics after checkout", func(t *testing.T) {
		guestRepo := new(MockGuestRepository)
		handler := NewGuestStatsHandler(guestRepo, zap.NewNop())

		guest, err := property.NewGuest("Sara Mahmoud", "+20-100-555-0101", "")
		require.NoError(t, err)
		lastVisit := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)

		guestRepo.On("FindByID", ctx, guest.ID).Return(guest, nil)
		guestRepo.On("AggregateStats", ctx, guest.ID).Return(&property.GuestStats{
			TotalVisits:     4,
			LastVisit:       &lastVisit,
			LifetimeRevenue: decimal.NewFromInt(6200),
		}, nil)
		guestRepo.On("Save", ctx, guest).Return(nil)

		err = handler.Handle(ctx, checkedOutEventFor(guest.ID))
		require.NoError(t, err)

		assert.Equal(t, 4, guest.TotalVisits)
		require.NotNil(t, guest.LastVisit)
		assert.True(t, guest.LastVisit.Equal(lastVisit))
		assert.True(t, guest.LifetimeRevenue.Equal(decimal.NewFromInt(6200)))
		guestRepo.AssertExpectations(t)
	})

	t.Run("unknown guest is skipped without error", func(t *testing.T) {
		guestRepo := new(MockGuestRepository)
		handler := NewGuestStatsHandler(guestRepo, zap.NewNop())

		guestID := uuid.New()
		guestRepo.On("FindByID", ctx, guestID).Return(nil, nil)

		err := handler.Handle(ctx, checkedOutEventFor(guestID))
		require.NoError(t, err)
		guestRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("aggregate failure is returned", func(t *testing.T) {
		guestRepo := new(MockGuestRepository)
		handler := NewGuestStatsHandler(guestRepo, zap.NewNop())

		guest, err := property.NewGuest("Omar Salah", "+20-100-555-0102", "")
		require.NoError(t, err)

		guestRepo.On("FindByID", ctx, guest.ID).Return(guest, nil)
		guestRepo.On("AggregateStats", ctx, guest.ID).Return(nil, assert.AnError)

		err = handler.Handle(ctx, checkedOutEventFor(guest.ID))
		require.Error(t, err)
	})

	t.Run("returns error for wrong event type", func(t *testing.T) {
		handler := NewGuestStatsHandler(new(MockGuestRepository), zap.NewNop())

		evt := shared.NewBaseDomainEvent(reservation.EventReservationCreated, "Reservation", uuid.New())
		err := handler.Handle(ctx, &evt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected event type")
	})
}
