package operations

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/operations"
	"github.com/pms/backend/internal/domain/reservation"
	"github.com/pms/backend/internal/domain/shared"
)

// CheckoutCleaningHandler reacts to a reservation checkout by raising one
// high priority cleaning task per vacated unit
type CheckoutCleaningHandler struct {
	taskRepo operations.HousekeepingTaskRepository
	unitRepo inventory.UnitRepository
	logger   *zap.Logger
}

// NewCheckoutCleaningHandler creates a new CheckoutCleaningHandler
func NewCheckoutCleaningHandler(
	taskRepo operations.HousekeepingTaskRepository,
	unitRepo inventory.UnitRepository,
	logger *zap.Logger,
) *CheckoutCleaningHandler {
	return &CheckoutCleaningHandler{
		taskRepo: taskRepo,
		unitRepo: unitRepo,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CheckoutCleaningHandler) EventTypes() []string {
	return []string{reservation.EventReservationCheckedOut}
}

// Handle creates a checkout cleaning task for every unit on the
// checked-out reservation. A failure on one unit does not stop the rest.
func (h *CheckoutCleaningHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	checkedOut, ok := event.(*reservation.ReservationCheckedOutEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			reservation.EventReservationCheckedOut, event.EventType())
	}

	var failed int
	for _, unitID := range checkedOut.UnitIDs {
		unit, err := h.unitRepo.FindByID(ctx, unitID)
		if err != nil || unit == nil {
			h.logger.Error("failed to load unit for cleaning task",
				zap.String("unit_id", unitID.String()),
				zap.Error(err),
			)
			failed++
			continue
		}
		task, err := operations.NewCheckoutCleaningTask(unit.ID, unit.UnitCode, checkedOut.AggregateID(), time.Now())
		if err != nil {
			h.logger.Error("failed to build cleaning task",
				zap.String("unit_code", unit.UnitCode),
				zap.Error(err),
			)
			failed++
			continue
		}
		if err := h.taskRepo.Save(ctx, task); err != nil {
			h.logger.Error("failed to save cleaning task",
				zap.String("unit_code", unit.UnitCode),
				zap.Error(err),
			)
			failed++
			continue
		}
		h.logger.Info("checkout cleaning task created",
			zap.String("unit_code", unit.UnitCode),
			zap.String("reservation_number", checkedOut.ReservationNumber),
		)
	}
	if failed > 0 {
		return fmt.Errorf("failed to create %d of %d cleaning tasks", failed, len(checkedOut.UnitIDs))
	}
	return nil
}
