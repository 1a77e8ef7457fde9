package reservation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestReservation(t *testing.T) *Reservation {
	t.Helper()
	res, err := NewReservation("RES-2026-00001", uuid.New(), uuid.New(), uuid.New(),
		day(2026, 3, 10), day(2026, 3, 13))
	require.NoError(t, err)
	return res
}

func TestNewReservation(t *testing.T) {
	t.Run("creates draft reservation with derived nights", func(t *testing.T) {
		res := newTestReservation(t)

		assert.Equal(t, StatusDraft, res.Status)
		assert.Equal(t, 3, res.Nights)
		assert.True(t, res.TotalAmount.IsZero())
		assert.Empty(t, res.UnitStays)

		events := res.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventReservationCreated, events[0].EventType())
	})

	t.Run("fails without a guest", func(t *testing.T) {
		_, err := NewReservation("RES-1", uuid.Nil, uuid.New(), uuid.New(),
			day(2026, 3, 10), day(2026, 3, 13))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "guest")
	})

	t.Run("fails when check-out is not after check-in", func(t *testing.T) {
		_, err := NewReservation("RES-1", uuid.New(), uuid.New(), uuid.New(),
			day(2026, 3, 13), day(2026, 3, 13))
		require.Error(t, err)
	})
}

func TestReservation_AddUnitStay(t *testing.T) {
	t.Run("adds stay and recalculates total", func(t *testing.T) {
		res := newTestReservation(t)

		stay, err := res.AddUnitStay(uuid.New(), "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(500))
		require.NoError(t, err)

		assert.Equal(t, 3, stay.Nights)
		assert.True(t, stay.LineTotal.Equal(decimal.NewFromInt(1500)), "500 x 3 nights")
		assert.True(t, res.TotalAmount.Equal(decimal.NewFromInt(1500)))
	})

	t.Run("zero dates inherit reservation dates", func(t *testing.T) {
		res := newTestReservation(t)

		stay, err := res.AddUnitStay(uuid.New(), "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.Equal(t, res.CheckIn, stay.CheckIn)
		assert.Equal(t, res.CheckOut, stay.CheckOut)
	})

	t.Run("rejects the same unit twice", func(t *testing.T) {
		res := newTestReservation(t)
		unitID := uuid.New()

		_, err := res.AddUnitStay(unitID, "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(100))
		require.NoError(t, err)

		_, err = res.AddUnitStay(unitID, "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(100))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already on this reservation")
	})

	t.Run("rejects adding to a confirmed reservation", func(t *testing.T) {
		res := newTestReservation(t)
		_, err := res.AddUnitStay(uuid.New(), "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(500))
		require.NoError(t, err)
		require.NoError(t, res.Confirm())

		_, err = res.AddUnitStay(uuid.New(), "A-102", time.Time{}, time.Time{}, decimal.NewFromInt(500))
		require.Error(t, err)
	})
}

func TestReservation_AddService(t *testing.T) {
	t.Run("service amounts add to the total", func(t *testing.T) {
		res := newTestReservation(t)
		_, err := res.AddUnitStay(uuid.New(), "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(500))
		require.NoError(t, err)

		_, err = res.AddService("MINIBAR", "Minibar", nil, decimal.NewFromInt(2), decimal.NewFromInt(75))
		require.NoError(t, err)

		assert.True(t, res.TotalAmount.Equal(decimal.NewFromInt(1650)), "1500 stay + 150 services")
	})

	t.Run("allows services after confirmation", func(t *testing.T) {
		res := newTestReservation(t)
		_, err := res.AddUnitStay(uuid.New(), "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(500))
		require.NoError(t, err)
		require.NoError(t, res.Confirm())

		_, err = res.AddService("LAUNDRY", "Laundry", nil, decimal.NewFromInt(1), decimal.NewFromInt(50))
		require.NoError(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		res := newTestReservation(t)
		_, err := res.AddService("MINIBAR", "", nil, decimal.Zero, decimal.NewFromInt(75))
		require.Error(t, err)
	})

	t.Run("rejects services on a cancelled reservation", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.Cancel("guest request"))

		_, err := res.AddService("MINIBAR", "", nil, decimal.NewFromInt(1), decimal.NewFromInt(75))
		require.Error(t, err)
	})
}

func TestReservation_Lifecycle(t *testing.T) {
	t.Run("full draft to checkout flow", func(t *testing.T) {
		res := newTestReservation(t)
		_, err := res.AddUnitStay(uuid.New(), "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(500))
		require.NoError(t, err)

		require.NoError(t, res.Confirm())
		assert.Equal(t, StatusConfirmed, res.Status)
		assert.NotNil(t, res.ConfirmedAt)

		require.NoError(t, res.MarkCheckedIn(day(2026, 3, 10)))
		assert.Equal(t, StatusCheckedIn, res.Status)

		require.NoError(t, res.MarkCheckedOut())
		assert.Equal(t, StatusCheckedOut, res.Status)
		assert.NotNil(t, res.CheckedOutAt)
	})

	t.Run("confirm requires at least one unit", func(t *testing.T) {
		res := newTestReservation(t)
		err := res.Confirm()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "At least one unit")
	})

	t.Run("confirm requires a positive total", func(t *testing.T) {
		res := newTestReservation(t)
		_, err := res.AddUnitStay(uuid.New(), "A-101", time.Time{}, time.Time{}, decimal.Zero)
		require.NoError(t, err)

		err = res.Confirm()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "total amount")
	})

	t.Run("cannot check in before the check-in date", func(t *testing.T) {
		res := newTestReservation(t)
		_, err := res.AddUnitStay(uuid.New(), "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(500))
		require.NoError(t, err)
		require.NoError(t, res.Confirm())

		err = res.MarkCheckedIn(day(2026, 3, 9))
		require.Error(t, err)
	})

	t.Run("cannot check in a draft", func(t *testing.T) {
		res := newTestReservation(t)
		require.Error(t, res.MarkCheckedIn(day(2026, 3, 10)))
	})

	t.Run("cannot check out without checking in", func(t *testing.T) {
		res := newTestReservation(t)
		_, err := res.AddUnitStay(uuid.New(), "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(500))
		require.NoError(t, err)
		require.NoError(t, res.Confirm())

		require.Error(t, res.MarkCheckedOut())
	})

	t.Run("checkout marks pending services invoiced", func(t *testing.T) {
		res := newTestReservation(t)
		_, err := res.AddUnitStay(uuid.New(), "A-101", time.Time{}, time.Time{}, decimal.NewFromInt(500))
		require.NoError(t, err)
		_, err = res.AddService("MINIBAR", "", nil, decimal.NewFromInt(1), decimal.NewFromInt(75))
		require.NoError(t, err)
		require.NoError(t, res.Confirm())
		require.NoError(t, res.MarkCheckedIn(day(2026, 3, 10)))

		require.Len(t, res.UninvoicedServices(), 1)
		require.NoError(t, res.MarkCheckedOut())
		assert.Empty(t, res.UninvoicedServices())
	})

	t.Run("cancel is allowed from any non-terminal status", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.Cancel("plans changed"))
		assert.Equal(t, StatusCancelled, res.Status)
		assert.Equal(t, "plans changed", res.CancelReason)
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		res := newTestReservation(t)
		require.Error(t, res.Cancel(""))
	})

	t.Run("terminal statuses reject every transition", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.Cancel("done"))

		require.Error(t, res.Confirm())
		require.Error(t, res.MarkCheckedIn(day(2026, 3, 10)))
		require.Error(t, res.MarkCheckedOut())
		require.Error(t, res.Cancel("again"))
	})
}

func TestReservation_ValidateDates(t *testing.T) {
	t.Run("rejects past check-in for new reservations", func(t *testing.T) {
		res := newTestReservation(t)
		err := res.ValidateDates(day(2026, 3, 11), 90, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "past")
	})

	t.Run("allows past check-in when editing", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.ValidateDates(day(2026, 3, 11), 90, false))
	})

	t.Run("enforces maximum stay length", func(t *testing.T) {
		res := newTestReservation(t)
		err := res.ValidateDates(day(2026, 3, 1), 2, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "maximum of 2 nights")
	})

	t.Run("zero maximum means unlimited", func(t *testing.T) {
		res := newTestReservation(t)
		require.NoError(t, res.ValidateDates(day(2026, 3, 1), 0, true))
	})
}

func TestReservationStatus_Blocks(t *testing.T) {
	assert.False(t, StatusDraft.Blocks())
	assert.True(t, StatusConfirmed.Blocks())
	assert.True(t, StatusCheckedIn.Blocks())
	assert.False(t, StatusCheckedOut.Blocks())
	assert.False(t, StatusCancelled.Blocks())
}
