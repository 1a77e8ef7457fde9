package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/operations"
	"github.com/pms/backend/internal/domain/reservation"
	"github.com/pms/backend/internal/domain/settlement"
)

// Snapshot is the live operational picture the front desk dashboard shows
type Snapshot struct {
	Date                 time.Time       `json:"date"`
	TotalUnits           int64           `json:"total_units"`
	AvailableUnits       int64           `json:"available_units"`
	OccupiedUnits        int64           `json:"occupied_units"`
	UnitsInCleaning      int64           `json:"units_in_cleaning"`
	UnitsInMaintenance   int64           `json:"units_in_maintenance"`
	OccupancyPct         decimal.Decimal `json:"occupancy_pct"`
	ArrivalsToday        int64           `json:"arrivals_today"`
	DeparturesToday      int64           `json:"departures_today"`
	InHouseGuests        int64           `json:"in_house_guests"`
	PendingHousekeeping  int64           `json:"pending_housekeeping"`
	OpenMaintenance      int64           `json:"open_maintenance"`
	PendingSettlements   decimal.Decimal `json:"pending_settlements"`
	MonthRevenue         decimal.Decimal `json:"month_revenue"`
}

// RevenueSource supplies the month-to-date checked-out revenue figure
type RevenueSource interface {
	MonthToDateRevenue(ctx context.Context, monthStart, now time.Time) (decimal.Decimal, error)
}

// DashboardService aggregates counts across the domain repositories into
// one snapshot. Individual query failures zero the affected figure and are
// logged; a partially filled dashboard beats a dead one.
type DashboardService struct {
	unitRepo        inventory.UnitRepository
	reservationRepo reservation.ReservationRepository
	taskRepo        operations.HousekeepingTaskRepository
	requestRepo     operations.MaintenanceRequestRepository
	settlementRepo  settlement.SettlementRepository
	revenue         RevenueSource
	logger          *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	unitRepo inventory.UnitRepository,
	reservationRepo reservation.ReservationRepository,
	taskRepo operations.HousekeepingTaskRepository,
	requestRepo operations.MaintenanceRequestRepository,
	settlementRepo settlement.SettlementRepository,
	revenue RevenueSource,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		unitRepo:        unitRepo,
		reservationRepo: reservationRepo,
		taskRepo:        taskRepo,
		requestRepo:     requestRepo,
		settlementRepo:  settlementRepo,
		revenue:         revenue,
		logger:          logger,
	}
}

// GetSnapshot builds the dashboard snapshot for now
func (s *DashboardService) GetSnapshot(ctx context.Context, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		Date:               now,
		OccupancyPct:       decimal.Zero,
		PendingSettlements: decimal.Zero,
		MonthRevenue:       decimal.Zero,
	}

	snap.TotalUnits = s.count(ctx, "total units", func() (int64, error) {
		return s.unitRepo.CountAll(ctx)
	})
	snap.AvailableUnits = s.count(ctx, "available units", func() (int64, error) {
		return s.unitRepo.CountByStatus(ctx, inventory.UnitStatusAvailable)
	})
	snap.OccupiedUnits = s.count(ctx, "occupied units", func() (int64, error) {
		return s.unitRepo.CountByStatus(ctx, inventory.UnitStatusOccupied)
	})
	snap.UnitsInCleaning = s.count(ctx, "units in cleaning", func() (int64, error) {
		return s.unitRepo.CountByStatus(ctx, inventory.UnitStatusCleaning)
	})
	snap.UnitsInMaintenance = s.count(ctx, "units in maintenance", func() (int64, error) {
		return s.unitRepo.CountByStatus(ctx, inventory.UnitStatusMaintenance)
	})
	if snap.TotalUnits > 0 {
		snap.OccupancyPct = decimal.NewFromInt(snap.OccupiedUnits).
			Div(decimal.NewFromInt(snap.TotalUnits)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	snap.ArrivalsToday = s.count(ctx, "arrivals", func() (int64, error) {
		return s.reservationRepo.CountArrivals(ctx, now)
	})
	snap.DeparturesToday = s.count(ctx, "departures", func() (int64, error) {
		return s.reservationRepo.CountDepartures(ctx, now)
	})
	snap.InHouseGuests = s.count(ctx, "in-house guests", func() (int64, error) {
		return s.reservationRepo.CountInHouseGuests(ctx)
	})
	snap.PendingHousekeeping = s.count(ctx, "pending housekeeping", func() (int64, error) {
		return s.taskRepo.CountOpen(ctx)
	})
	snap.OpenMaintenance = s.count(ctx, "open maintenance", func() (int64, error) {
		return s.requestRepo.CountOpen(ctx)
	})

	if pending, err := s.settlementRepo.SumNetPayableByStatus(ctx, settlement.SettlementStatusPosted); err != nil {
		s.logger.Warn("dashboard query failed", zap.String("figure", "pending settlements"), zap.Error(err))
	} else {
		snap.PendingSettlements = pending
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if revenue, err := s.revenue.MonthToDateRevenue(ctx, monthStart, now); err != nil {
		s.logger.Warn("dashboard query failed", zap.String("figure", "month revenue"), zap.Error(err))
	} else {
		snap.MonthRevenue = revenue
	}

	return snap, nil
}

func (s *DashboardService) count(ctx context.Context, figure string, fn func() (int64, error)) int64 {
	n, err := fn()
	if err != nil {
		s.logger.Warn("dashboard query failed", zap.String("figure", figure), zap.Error(err))
		return 0
	}
	return n
}
