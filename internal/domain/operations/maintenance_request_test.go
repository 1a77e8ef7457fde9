package operations

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T, priority RequestPriority) *MaintenanceRequest {
	t.Helper()
	req, err := NewMaintenanceRequest(
		"MR-2026-00001",
		uuid.New(),
		"A-101",
		IssueTypePlumbing,
		priority,
		"Leaking kitchen tap",
		day(2026, 3, 10),
	)
	require.NoError(t, err)
	return req
}

func TestNewMaintenanceRequest(t *testing.T) {
	t.Run("creates open request", func(t *testing.T) {
		req := newTestRequest(t, RequestPriorityMedium)

		assert.Equal(t, RequestStatusOpen, req.Status)
		assert.True(t, req.IsOpen())
		assert.True(t, req.EstimatedCost.IsZero())
		assert.True(t, req.ActualCost.IsZero())
	})

	t.Run("rejects empty request number", func(t *testing.T) {
		_, err := NewMaintenanceRequest("", uuid.New(), "A-101", IssueTypePlumbing, RequestPriorityMedium, "", day(2026, 3, 10))
		require.Error(t, err)
	})

	t.Run("rejects unknown issue type", func(t *testing.T) {
		_, err := NewMaintenanceRequest("MR-2026-00002", uuid.New(), "A-101", IssueType("PAINTING"), RequestPriorityMedium, "", day(2026, 3, 10))
		require.Error(t, err)
	})
}

func TestMaintenanceRequest_BlocksUnit(t *testing.T) {
	t.Run("critical open request blocks", func(t *testing.T) {
		req := newTestRequest(t, RequestPriorityCritical)
		assert.True(t, req.BlocksUnit())

		require.NoError(t, req.Assign("Karim"))
		assert.True(t, req.BlocksUnit())
	})

	t.Run("resolved critical request no longer blocks", func(t *testing.T) {
		req := newTestRequest(t, RequestPriorityCritical)
		require.NoError(t, req.Resolve("Karim", "Replaced valve", day(2026, 3, 11)))
		assert.False(t, req.BlocksUnit())
	})

	t.Run("high priority never blocks", func(t *testing.T) {
		req := newTestRequest(t, RequestPriorityHigh)
		assert.False(t, req.BlocksUnit())
	})
}

func TestMaintenanceRequest_Costs(t *testing.T) {
	req := newTestRequest(t, RequestPriorityMedium)

	t.Run("records estimated and actual cost", func(t *testing.T) {
		require.NoError(t, req.SetEstimatedCost(decimal.NewFromInt(250)))
		assert.True(t, req.EstimatedCost.Equal(decimal.NewFromInt(250)))

		invoiceID := uuid.New()
		require.NoError(t, req.RecordActualCost(decimal.NewFromInt(300), &invoiceID))
		assert.True(t, req.ActualCost.Equal(decimal.NewFromInt(300)))
		require.NotNil(t, req.InvoiceID)
		assert.Equal(t, invoiceID, *req.InvoiceID)
	})

	t.Run("actual cost without invoice keeps existing link", func(t *testing.T) {
		require.NoError(t, req.RecordActualCost(decimal.NewFromInt(320), nil))
		assert.NotNil(t, req.InvoiceID)
	})

	t.Run("rejects negative costs", func(t *testing.T) {
		require.Error(t, req.SetEstimatedCost(decimal.NewFromInt(-1)))
		require.Error(t, req.RecordActualCost(decimal.NewFromInt(-1), nil))
	})
}

func TestMaintenanceRequest_Lifecycle(t *testing.T) {
	t.Run("assign then resolve", func(t *testing.T) {
		req := newTestRequest(t, RequestPriorityMedium)
		require.NoError(t, req.Assign("Karim"))
		assert.Equal(t, RequestStatusInProgress, req.Status)

		require.NoError(t, req.Resolve("", "Tightened fittings", day(2026, 3, 11)))
		assert.Equal(t, RequestStatusResolved, req.Status)
		assert.Equal(t, "Karim", req.ResolvedBy)
		assert.Equal(t, "Tightened fittings", req.ResolutionNotes)
		require.NotNil(t, req.ResolutionDate)
		assert.Equal(t, day(2026, 3, 11), *req.ResolutionDate)
	})

	t.Run("resolution date is day truncated", func(t *testing.T) {
		req := newTestRequest(t, RequestPriorityMedium)
		resolvedAt := time.Date(2026, 1, 31, 15, 0, 0, 0, time.UTC)

		require.NoError(t, req.Resolve("Karim", "Rewired outlet", resolvedAt))
		require.NotNil(t, req.ResolutionDate)
		// A request resolved in the afternoon of the last day of a month
		// must still match a settlement period ending at that day's
		// midnight.
		assert.Equal(t, day(2026, 1, 31), *req.ResolutionDate)
	})

	t.Run("empty technician rejected", func(t *testing.T) {
		req := newTestRequest(t, RequestPriorityMedium)
		require.Error(t, req.Assign(""))
	})

	t.Run("resolved request rejects further transitions", func(t *testing.T) {
		req := newTestRequest(t, RequestPriorityMedium)
		require.NoError(t, req.Resolve("Karim", "", day(2026, 3, 11)))

		require.Error(t, req.Assign("Karim"))
		require.Error(t, req.Cancel())
		require.Error(t, req.Resolve("Karim", "", day(2026, 3, 12)))
	})

	t.Run("cancelled request is closed", func(t *testing.T) {
		req := newTestRequest(t, RequestPriorityMedium)
		require.NoError(t, req.Cancel())
		assert.False(t, req.IsOpen())
	})
}

func TestRequestPriority_Weight(t *testing.T) {
	assert.Greater(t, RequestPriorityCritical.Weight(), RequestPriorityHigh.Weight())
	assert.Greater(t, RequestPriorityHigh.Weight(), RequestPriorityMedium.Weight())
	assert.Greater(t, RequestPriorityMedium.Weight(), RequestPriorityLow.Weight())
}
