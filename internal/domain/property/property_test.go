package property

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProperty(t *testing.T) {
	t.Run("creates active property", func(t *testing.T) {
		p, err := NewProperty("Marina Bay Residence", PropertyTypeApartment)
		require.NoError(t, err)
		assert.True(t, p.Active)
		assert.Equal(t, PropertyTypeApartment, p.PropertyType)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProperty("", PropertyTypeHotel)
		require.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewProperty("Marina Bay Residence", PropertyType("HOUSEBOAT"))
		require.Error(t, err)
	})

	t.Run("deactivate", func(t *testing.T) {
		p, err := NewProperty("Marina Bay Residence", PropertyTypeResort)
		require.NoError(t, err)
		p.Deactivate()
		assert.False(t, p.Active)
	})
}

func TestNewOwner(t *testing.T) {
	t.Run("creates active owner", func(t *testing.T) {
		o, err := NewOwner("Ahmed Hassan", decimal.NewFromInt(15))
		require.NoError(t, err)
		assert.True(t, o.Active)
		assert.True(t, o.CommissionRate.Equal(decimal.NewFromInt(15)))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewOwner("", decimal.NewFromInt(15))
		require.Error(t, err)
	})

	t.Run("rejects rate outside 0-100", func(t *testing.T) {
		_, err := NewOwner("Ahmed Hassan", decimal.NewFromInt(-1))
		require.Error(t, err)

		_, err = NewOwner("Ahmed Hassan", decimal.NewFromInt(101))
		require.Error(t, err)
	})

	t.Run("zero rate is allowed", func(t *testing.T) {
		o, err := NewOwner("Ahmed Hassan", decimal.Zero)
		require.NoError(t, err)
		assert.True(t, o.CommissionRate.IsZero())
	})
}

func TestOwner_UpdateCommissionRate(t *testing.T) {
	o, err := NewOwner("Ahmed Hassan", decimal.NewFromInt(15))
	require.NoError(t, err)

	require.NoError(t, o.UpdateCommissionRate(decimal.NewFromInt(20)))
	assert.True(t, o.CommissionRate.Equal(decimal.NewFromInt(20)))

	require.Error(t, o.UpdateCommissionRate(decimal.NewFromInt(120)))
}

func TestOwner_LinkSupplierAccount(t *testing.T) {
	o, err := NewOwner("Ahmed Hassan", decimal.NewFromInt(15))
	require.NoError(t, err)

	require.NoError(t, o.LinkSupplierAccount("2100-OWNER-AHMED"))
	assert.Equal(t, "2100-OWNER-AHMED", o.SupplierAccountCode)

	require.Error(t, o.LinkSupplierAccount(""))
}

func TestNewGuest(t *testing.T) {
	t.Run("creates guest with zero statistics", func(t *testing.T) {
		g, err := NewGuest("Sara Mahmoud", "+20-100-555-0101", "sara@example.com")
		require.NoError(t, err)

		assert.Equal(t, 0, g.TotalVisits)
		assert.Nil(t, g.LastVisit)
		assert.True(t, g.LifetimeRevenue.IsZero())
	})

	t.Run("email is optional", func(t *testing.T) {
		_, err := NewGuest("Sara Mahmoud", "+20-100-555-0101", "")
		require.NoError(t, err)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := NewGuest("Sara Mahmoud", "+20-100-555-0101", "not-an-email")
		require.Error(t, err)
	})

	t.Run("rejects missing phone", func(t *testing.T) {
		_, err := NewGuest("Sara Mahmoud", "", "")
		require.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewGuest("", "+20-100-555-0101", "")
		require.Error(t, err)
	})
}

func TestGuest_RefreshStatistics(t *testing.T) {
	g, err := NewGuest("Sara Mahmoud", "+20-100-555-0101", "")
	require.NoError(t, err)

	lastVisit := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	g.RefreshStatistics(4, &lastVisit, decimal.NewFromInt(6200))

	assert.Equal(t, 4, g.TotalVisits)
	require.NotNil(t, g.LastVisit)
	assert.Equal(t, lastVisit, *g.LastVisit)
	assert.True(t, g.LifetimeRevenue.Equal(decimal.NewFromInt(6200)))
}
