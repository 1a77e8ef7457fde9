package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pms/backend/internal/domain/shared/valueobject"
)

// stubStayFinder returns a fixed set of blocking stays per unit
type stubStayFinder struct {
	stays map[uuid.UUID][]BlockingStay
}

func (f *stubStayFinder) FindBlockingStays(_ context.Context, unitID uuid.UUID) ([]BlockingStay, error) {
	return f.stays[unitID], nil
}

func TestAvailabilityService_IsAvailable(t *testing.T) {
	unitID := uuid.New()
	otherRes := uuid.New()
	finder := &stubStayFinder{stays: map[uuid.UUID][]BlockingStay{
		unitID: {
			{ReservationID: otherRes, UnitID: unitID, CheckIn: day(2026, 3, 10), CheckOut: day(2026, 3, 13)},
		},
	}}
	svc := NewAvailabilityService(finder)
	ctx := context.Background()

	t.Run("overlapping range is unavailable", func(t *testing.T) {
		candidate, err := valueobject.NewDateRange(day(2026, 3, 12), day(2026, 3, 15))
		require.NoError(t, err)

		ok, err := svc.IsAvailable(ctx, unitID, candidate, uuid.Nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("back to back range is available", func(t *testing.T) {
		candidate, err := valueobject.NewDateRange(day(2026, 3, 13), day(2026, 3, 16))
		require.NoError(t, err)

		ok, err := svc.IsAvailable(ctx, unitID, candidate, uuid.Nil)
		require.NoError(t, err)
		assert.True(t, ok, "checkout day frees the unit for a same-day arrival")
	})

	t.Run("excluded reservation does not block itself", func(t *testing.T) {
		candidate, err := valueobject.NewDateRange(day(2026, 3, 11), day(2026, 3, 14))
		require.NoError(t, err)

		ok, err := svc.IsAvailable(ctx, unitID, candidate, otherRes)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unit with no stays is available", func(t *testing.T) {
		candidate, err := valueobject.NewDateRange(day(2026, 3, 10), day(2026, 3, 13))
		require.NoError(t, err)

		ok, err := svc.IsAvailable(ctx, uuid.New(), candidate, uuid.Nil)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestAvailabilityService_CheckReservation(t *testing.T) {
	busyUnit := uuid.New()
	freeUnit := uuid.New()
	finder := &stubStayFinder{stays: map[uuid.UUID][]BlockingStay{
		busyUnit: {
			{ReservationID: uuid.New(), UnitID: busyUnit, CheckIn: day(2026, 3, 10), CheckOut: day(2026, 3, 13)},
		},
	}}
	svc := NewAvailabilityService(finder)

	res, err := NewReservation("RES-2026-00002", uuid.New(), uuid.New(), uuid.New(),
		day(2026, 3, 11), day(2026, 3, 14))
	require.NoError(t, err)
	_, err = res.AddUnitStay(busyUnit, "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(500))
	require.NoError(t, err)
	_, err = res.AddUnitStay(freeUnit, "A-102", time.Time{}, time.Time{}, decimal.NewFromInt(400))
	require.NoError(t, err)

	conflicts, err := svc.CheckReservation(context.Background(), res)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-101"}, conflicts, "only the busy unit conflicts")
}
