package settlement

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

func newTestSettlement(t *testing.T) *OwnerSettlement {
	t.Helper()
	s, err := NewOwnerSettlement("SET-2026-00001", uuid.New(), "Ahmed Hassan",
		day(2026, 2, 1), day(2026, 2, 28), decimal.NewFromInt(15))
	require.NoError(t, err)
	return s
}

func testRevenues() []RevenueInput {
	return []RevenueInput{
		{
			ReservationID:     uuid.New(),
			ReservationNumber: "RES-2026-00010",
			UnitID:            uuid.New(),
			UnitCode:          "A-101",
			CheckIn:           day(2026, 2, 10),
			CheckOut:          day(2026, 2, 13),
			Nights:            3,
			Amount:            decimal.NewFromInt(1500),
		},
	}
}

func testExpenses() []ExpenseInput {
	return []ExpenseInput{
		{
			Type:        ExpenseTypeMaintenance,
			ReferenceID: uuid.New(),
			Reference:   "MNT-2026-00004",
			UnitID:      uuid.New(),
			UnitCode:    "A-101",
			Date:        day(2026, 2, 20),
			Amount:      decimal.NewFromInt(300),
		},
	}
}

func TestNewOwnerSettlement(t *testing.T) {
	t.Run("creates draft with gross-revenue defaults", func(t *testing.T) {
		s := newTestSettlement(t)

		assert.Equal(t, SettlementStatusDraft, s.Status)
		assert.Equal(t, CommissionOnGrossRevenue, s.CommissionMethod)
		assert.Equal(t, ExpenseOwnerPaysAll, s.ExpenseMethod)
		assert.True(t, s.Rules.OwnerPaysMaintenance)
		assert.True(t, s.NetPayable.IsZero())
	})

	t.Run("rejects a period end before the start", func(t *testing.T) {
		_, err := NewOwnerSettlement("SET-1", uuid.New(), "Owner",
			day(2026, 2, 28), day(2026, 2, 1), decimal.NewFromInt(15))
		require.Error(t, err)
	})

	t.Run("rejects commission rate above 100", func(t *testing.T) {
		_, err := NewOwnerSettlement("SET-1", uuid.New(), "Owner",
			day(2026, 2, 1), day(2026, 2, 28), decimal.NewFromInt(120))
		require.Error(t, err)
	})
}

func TestOwnerSettlement_Calculate(t *testing.T) {
	t.Run("commission on gross revenue", func(t *testing.T) {
		s := newTestSettlement(t)

		require.NoError(t, s.Calculate(testRevenues(), testExpenses(), day(2026, 3, 1)))

		assert.Equal(t, SettlementStatusCalculated, s.Status)
		assert.True(t, s.TotalRevenue.Equal(decimal.NewFromInt(1500)))
		assert.True(t, s.TotalExpenses.Equal(decimal.NewFromInt(300)))
		assert.True(t, s.OwnerExpenses.Equal(decimal.NewFromInt(300)), "OWNER_PAYS_ALL puts expenses on the owner")
		assert.True(t, s.CommissionBase.Equal(decimal.NewFromInt(1500)))
		assert.True(t, s.CommissionAmount.Equal(decimal.NewFromInt(225)), "15% of 1500")
		assert.True(t, s.NetPayable.Equal(decimal.NewFromInt(975)), "1500 - 300 - 225")
	})

	t.Run("commission on net revenue after expenses", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.SetCommissionMethod(CommissionOnNetRevenue))

		require.NoError(t, s.Calculate(testRevenues(), testExpenses(), day(2026, 3, 1)))

		assert.True(t, s.CommissionBase.Equal(decimal.NewFromInt(1200)), "1500 - 300")
		assert.True(t, s.CommissionAmount.Equal(decimal.NewFromInt(180)), "15% of 1200")
		assert.True(t, s.NetPayable.Equal(decimal.NewFromInt(1020)), "1200 - 180")
	})

	t.Run("management pays all leaves revenue untouched by expenses", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.SetExpenseAllocation(ExpenseManagementPaysAll, AllocationRules{}))

		require.NoError(t, s.Calculate(testRevenues(), testExpenses(), day(2026, 3, 1)))

		assert.True(t, s.OwnerExpenses.IsZero())
		assert.True(t, s.ManagementExpenses.Equal(decimal.NewFromInt(300)))
		assert.True(t, s.NetPayable.Equal(decimal.NewFromInt(1275)), "1500 - 225 commission only")
	})

	t.Run("rule based allocation splits by expense type", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.SetExpenseAllocation(ExpenseRuleBased, AllocationRules{
			OwnerPaysMaintenance: true,
			OwnerPaysCleaning:    false,
		}))

		expenses := append(testExpenses(), ExpenseInput{
			Type:      ExpenseTypeCleaning,
			Reference: "CLN-1",
			UnitCode:  "A-101",
			Date:      day(2026, 2, 21),
			Amount:    decimal.NewFromInt(100),
		})
		require.NoError(t, s.Calculate(testRevenues(), expenses, day(2026, 3, 1)))

		assert.True(t, s.OwnerExpenses.Equal(decimal.NewFromInt(300)))
		assert.True(t, s.ManagementExpenses.Equal(decimal.NewFromInt(100)))
		require.Len(t, s.ExpenseDetails, 2)
		assert.Equal(t, ExpensePayerOwner, s.ExpenseDetails[0].PaidBy)
		assert.Equal(t, ExpensePayerManagement, s.ExpenseDetails[1].PaidBy)
	})

	t.Run("recalculation replaces details instead of accumulating", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.Calculate(testRevenues(), testExpenses(), day(2026, 3, 1)))
		firstNet := s.NetPayable

		require.NoError(t, s.Calculate(testRevenues(), testExpenses(), day(2026, 3, 2)))

		assert.Len(t, s.RevenueDetails, 1)
		assert.Len(t, s.ExpenseDetails, 1)
		assert.True(t, s.NetPayable.Equal(firstNet))
	})

	t.Run("negative net payable flags the settlement", func(t *testing.T) {
		s := newTestSettlement(t)
		expenses := []ExpenseInput{{
			Type:      ExpenseTypeMaintenance,
			Reference: "MNT-1",
			UnitCode:  "A-101",
			Date:      day(2026, 2, 5),
			Amount:    decimal.NewFromInt(5000),
		}}

		require.NoError(t, s.Calculate(testRevenues(), expenses, day(2026, 3, 1)))

		assert.True(t, s.IsNegative())
		assert.Contains(t, s.CalculationNotes, "Owner owes the company")
	})

	t.Run("posted settlement cannot be recalculated", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.Calculate(testRevenues(), nil, day(2026, 3, 1)))
		require.NoError(t, s.MarkPosted(uuid.New(), day(2026, 3, 2)))

		require.Error(t, s.Calculate(testRevenues(), nil, day(2026, 3, 3)))
	})
}

func TestOwnerSettlement_Lifecycle(t *testing.T) {
	t.Run("post then pay", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.Calculate(testRevenues(), nil, day(2026, 3, 1)))

		journalID := uuid.New()
		require.NoError(t, s.MarkPosted(journalID, day(2026, 3, 2)))
		assert.Equal(t, SettlementStatusPosted, s.Status)
		assert.Equal(t, journalID, *s.JournalEntryID)

		voucherID := uuid.New()
		require.NoError(t, s.MarkPaid(voucherID, day(2026, 3, 3)))
		assert.Equal(t, SettlementStatusPaid, s.Status)
		assert.Equal(t, voucherID, *s.PaymentVoucherID)
	})

	t.Run("cannot post a draft", func(t *testing.T) {
		s := newTestSettlement(t)
		require.Error(t, s.MarkPosted(uuid.New(), day(2026, 3, 2)))
	})

	t.Run("cannot pay before posting", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.Calculate(testRevenues(), nil, day(2026, 3, 1)))
		require.Error(t, s.MarkPaid(uuid.New(), day(2026, 3, 2)))
	})

	t.Run("paid settlement can still be cancelled", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.Calculate(testRevenues(), nil, day(2026, 3, 1)))
		require.NoError(t, s.MarkPosted(uuid.New(), day(2026, 3, 2)))
		require.NoError(t, s.MarkPaid(uuid.New(), day(2026, 3, 3)))

		require.NoError(t, s.Cancel("paid against the wrong owner", day(2026, 3, 4)))
		assert.Equal(t, SettlementStatusCancelled, s.Status)
	})

	t.Run("cancelled settlement is terminal", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.Cancel("duplicate period", day(2026, 3, 1)))

		require.Error(t, s.Calculate(testRevenues(), nil, day(2026, 3, 2)))
		require.Error(t, s.MarkPosted(uuid.New(), day(2026, 3, 2)))
	})

	t.Run("calculated settlement can reopen as draft", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.Calculate(testRevenues(), nil, day(2026, 3, 1)))

		require.NoError(t, s.ReopenDraft())
		assert.Equal(t, SettlementStatusDraft, s.Status)
	})

	t.Run("posted settlement cannot change methods", func(t *testing.T) {
		s := newTestSettlement(t)
		require.NoError(t, s.Calculate(testRevenues(), nil, day(2026, 3, 1)))
		require.NoError(t, s.MarkPosted(uuid.New(), day(2026, 3, 2)))

		require.Error(t, s.SetCommissionMethod(CommissionOnNetRevenue))
		require.Error(t, s.SetCommissionRate(decimal.NewFromInt(10)))
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		s := newTestSettlement(t)
		require.Error(t, s.Cancel("", day(2026, 3, 1)))
	})
}
