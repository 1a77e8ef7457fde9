package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnitType(t *testing.T) {
	t.Run("creates active type", func(t *testing.T) {
		ut, err := NewUnitType("Deluxe Studio", decimal.NewFromInt(500), 3)
		require.NoError(t, err)

		assert.True(t, ut.Active)
		assert.Equal(t, 3, ut.MaxGuests)
		assert.True(t, ut.DefaultRate.Equal(decimal.NewFromInt(500)))
	})

	t.Run("defaults max guests to two", func(t *testing.T) {
		ut, err := NewUnitType("Deluxe Studio", decimal.NewFromInt(500), 0)
		require.NoError(t, err)
		assert.Equal(t, 2, ut.MaxGuests)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewUnitType("", decimal.NewFromInt(500), 2)
		require.Error(t, err)
	})

	t.Run("rejects negative default rate", func(t *testing.T) {
		_, err := NewUnitType("Deluxe Studio", decimal.NewFromInt(-1), 2)
		require.Error(t, err)
	})
}

func TestNewUnit(t *testing.T) {
	t.Run("creates available unit", func(t *testing.T) {
		unit, err := NewUnit("A-101", uuid.New(), uuid.New(), decimal.NewFromInt(450))
		require.NoError(t, err)

		assert.Equal(t, UnitStatusAvailable, unit.Status)
		assert.True(t, unit.IsAvailable())
		assert.True(t, unit.Active)
		assert.Nil(t, unit.OwnerID)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewUnit("", uuid.New(), uuid.New(), decimal.NewFromInt(450))
		require.Error(t, err)
	})

	t.Run("rejects missing property reference", func(t *testing.T) {
		_, err := NewUnit("A-101", uuid.Nil, uuid.New(), decimal.NewFromInt(450))
		require.Error(t, err)
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		_, err := NewUnit("A-101", uuid.New(), uuid.New(), decimal.NewFromInt(-10))
		require.Error(t, err)
	})
}

func TestUnit_AssignOwner(t *testing.T) {
	unit, err := NewUnit("A-101", uuid.New(), uuid.New(), decimal.NewFromInt(450))
	require.NoError(t, err)

	ownerID := uuid.New()
	require.NoError(t, unit.AssignOwner(ownerID))
	require.NotNil(t, unit.OwnerID)
	assert.Equal(t, ownerID, *unit.OwnerID)

	require.Error(t, unit.AssignOwner(uuid.Nil))
}

func TestUnit_SetStatus(t *testing.T) {
	unit, err := NewUnit("A-101", uuid.New(), uuid.New(), decimal.NewFromInt(450))
	require.NoError(t, err)

	for _, status := range []UnitStatus{
		UnitStatusBooked,
		UnitStatusOccupied,
		UnitStatusCleaning,
		UnitStatusMaintenance,
		UnitStatusAvailable,
	} {
		require.NoError(t, unit.SetStatus(status))
		assert.Equal(t, status, unit.Status)
	}

	require.Error(t, unit.SetStatus(UnitStatus("DEMOLISHED")))
}

func TestUnit_UpdateRate(t *testing.T) {
	unit, err := NewUnit("A-101", uuid.New(), uuid.New(), decimal.NewFromInt(450))
	require.NoError(t, err)

	require.NoError(t, unit.UpdateRate(decimal.NewFromInt(520)))
	assert.True(t, unit.RatePerNight.Equal(decimal.NewFromInt(520)))

	require.Error(t, unit.UpdateRate(decimal.NewFromInt(-5)))
}
