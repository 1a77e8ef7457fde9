package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/settlement"
	"github.com/pms/backend/internal/domain/shared"
)

// GenerationSummary reports one monthly generation run
type GenerationSummary struct {
	Period    string    `json:"period"`
	Created   []string  `json:"created"`
	Skipped   []string  `json:"skipped"`
	Failed    []string  `json:"failed"`
	StartedAt time.Time `json:"started_at"`
}

// MonthlyGenerationService creates and calculates one settlement per
// active owner for the previous calendar month. A scheduler triggers it
// on the first day of each month.
type MonthlyGenerationService struct {
	settlementSvc  *SettlementService
	settlementRepo settlement.SettlementRepository
	ownerRepo      property.OwnerRepository
	unitRepo       inventory.UnitRepository
	logger         *zap.Logger
}

// NewMonthlyGenerationService creates a new MonthlyGenerationService
func NewMonthlyGenerationService(
	settlementSvc *SettlementService,
	settlementRepo settlement.SettlementRepository,
	ownerRepo property.OwnerRepository,
	unitRepo inventory.UnitRepository,
	logger *zap.Logger,
) *MonthlyGenerationService {
	return &MonthlyGenerationService{
		settlementSvc:  settlementSvc,
		settlementRepo: settlementRepo,
		ownerRepo:      ownerRepo,
		unitRepo:       unitRepo,
		logger:         logger,
	}
}

// PreviousMonth returns the first and last day of the month before ref
func PreviousMonth(ref time.Time) (time.Time, time.Time) {
	firstOfThis := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	firstOfPrev := firstOfThis.AddDate(0, -1, 0)
	lastOfPrev := firstOfThis.AddDate(0, 0, -1)
	return firstOfPrev, lastOfPrev
}

// Run generates settlements for every active owner over the month before
// ref. Owners with an existing live settlement for the period are skipped,
// so re-running after a partial failure is safe. One owner's failure never
// stops the rest of the batch.
func (s *MonthlyGenerationService) Run(ctx context.Context, ref time.Time) (*GenerationSummary, error) {
	periodStart, periodEnd := PreviousMonth(ref)
	summary := &GenerationSummary{
		Period:    periodStart.Format("2006-01"),
		StartedAt: time.Now(),
	}

	owners, err := s.ownerRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("monthly settlement generation started",
		zap.String("period", summary.Period),
		zap.Int("owners", len(owners)),
	)

	for i := range owners {
		owner := &owners[i]

		exists, err := s.settlementRepo.ExistsForPeriod(ctx, owner.ID, periodStart, periodEnd, uuid.Nil)
		if err != nil {
			summary.Failed = append(summary.Failed, owner.OwnerName)
			s.logger.Error("failed to check existing settlement",
				zap.String("owner", owner.OwnerName),
				zap.Error(err),
			)
			continue
		}
		if exists {
			summary.Skipped = append(summary.Skipped, owner.OwnerName)
			continue
		}

		// Owners with no assigned units get no settlement at all rather
		// than a draft that can never calculate.
		units, err := s.unitRepo.FindByOwner(ctx, owner.ID)
		if err != nil {
			summary.Failed = append(summary.Failed, owner.OwnerName)
			s.logger.Error("failed to load owner units",
				zap.String("owner", owner.OwnerName),
				zap.Error(err),
			)
			continue
		}
		if len(units) == 0 {
			summary.Skipped = append(summary.Skipped, owner.OwnerName)
			s.logger.Warn("owner has no assigned units",
				zap.String("owner", owner.OwnerName),
			)
			continue
		}

		stl, err := s.settlementSvc.Create(ctx, CreateSettlementRequest{
			OwnerID:     owner.ID,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
		})
		if err != nil {
			summary.Failed = append(summary.Failed, owner.OwnerName)
			s.logger.Error("failed to create settlement",
				zap.String("owner", owner.OwnerName),
				zap.Error(err),
			)
			continue
		}

		if _, err := s.settlementSvc.Calculate(ctx, stl.ID); err != nil {
			// A unit reassignment between the check above and here can
			// still empty the scope; keep the draft for review rather
			// than failing the run
			if de, ok := err.(*shared.DomainError); ok && de.Code == shared.CodeNotFound {
				summary.Skipped = append(summary.Skipped, owner.OwnerName)
				s.logger.Warn("settlement left in draft",
					zap.String("owner", owner.OwnerName),
					zap.String("reason", de.Message),
				)
				continue
			}
			summary.Failed = append(summary.Failed, owner.OwnerName)
			s.logger.Error("failed to calculate settlement",
				zap.String("owner", owner.OwnerName),
				zap.Error(err),
			)
			continue
		}
		summary.Created = append(summary.Created, stl.SettlementNumber)
	}

	s.logger.Info("monthly settlement generation finished",
		zap.String("period", summary.Period),
		zap.Int("created", len(summary.Created)),
		zap.Int("skipped", len(summary.Skipped)),
		zap.Int("failed", len(summary.Failed)),
	)
	return summary, nil
}
