package property

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/reservation"
	"github.com/pms/backend/internal/domain/shared"
)

// GuestStatsHandler refreshes a guest's visit statistics when one of
// their reservations checks out
type GuestStatsHandler struct {
	guestRepo property.GuestRepository
	logger    *zap.Logger
}

// NewGuestStatsHandler creates a new GuestStatsHandler
func NewGuestStatsHandler(guestRepo property.GuestRepository, logger *zap.Logger) *GuestStatsHandler {
	return &GuestStatsHandler{guestRepo: guestRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *GuestStatsHandler) EventTypes() []string {
	return []string{reservation.EventReservationCheckedOut}
}

// Handle recomputes the guest's totals from their checked-out history.
// Recomputing from scratch keeps the figures right even after cancelled
// or amended stays.
func (h *GuestStatsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	checkedOut, ok := event.(*reservation.ReservationCheckedOutEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			reservation.EventReservationCheckedOut, event.EventType())
	}

	guest, err := h.guestRepo.FindByID(ctx, checkedOut.GuestID)
	if err != nil {
		return fmt.Errorf("load guest: %w", err)
	}
	if guest == nil {
		h.logger.Warn("guest not found for statistics refresh",
			zap.String("guest_id", checkedOut.GuestID.String()),
		)
		return nil
	}

	stats, err := h.guestRepo.AggregateStats(ctx, guest.ID)
	if err != nil {
		return fmt.Errorf("aggregate guest stats: %w", err)
	}
	guest.RefreshStatistics(stats.TotalVisits, stats.LastVisit, stats.LifetimeRevenue)
	if err := h.guestRepo.Save(ctx, guest); err != nil {
		return fmt.Errorf("save guest: %w", err)
	}

	h.logger.Info("guest statistics refreshed",
		zap.String("guest_name", guest.GuestName),
		zap.Int("total_visits", guest.TotalVisits),
		zap.String("lifetime_revenue", guest.LifetimeRevenue.String()),
	)
	return nil
}
