package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pms/backend/internal/domain/billing"
	"github.com/pms/backend/internal/domain/inventory"
	"github.com/pms/backend/internal/domain/property"
	"github.com/pms/backend/internal/domain/settlement"
	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/shared/valueobject"
	"github.com/pms/backend/internal/infrastructure/lock"
)

// recalcLockTTL bounds how long a crashed calculation can hold an
// owner/period lock
const recalcLockTTL = 2 * time.Minute

// AccountingConfig carries the ledger account codes settlements post to
type AccountingConfig struct {
	PayableAccount string
}

// SettlementService orchestrates the owner settlement lifecycle: creation,
// locked recalculation, posting to accounting and the owner payout.
type SettlementService struct {
	settlementRepo settlement.SettlementRepository
	ownerRepo      property.OwnerRepository
	unitRepo       inventory.UnitRepository
	revenue        settlement.RevenueSource
	expenses       settlement.ExpenseSource
	ledger         billing.LedgerService
	payments       billing.PaymentService
	notifier       billing.Notifier
	locker         lock.Locker
	eventBus       shared.EventPublisher
	logger         *zap.Logger
	accounting     AccountingConfig
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	settlementRepo settlement.SettlementRepository,
	ownerRepo property.OwnerRepository,
	unitRepo inventory.UnitRepository,
	revenue settlement.RevenueSource,
	expenses settlement.ExpenseSource,
	ledger billing.LedgerService,
	payments billing.PaymentService,
	notifier billing.Notifier,
	locker lock.Locker,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
	accounting AccountingConfig,
) *SettlementService {
	return &SettlementService{
		settlementRepo: settlementRepo,
		ownerRepo:      ownerRepo,
		unitRepo:       unitRepo,
		revenue:        revenue,
		expenses:       expenses,
		ledger:         ledger,
		payments:       payments,
		notifier:       notifier,
		locker:         locker,
		eventBus:       eventBus,
		logger:         logger,
		accounting:     accounting,
	}
}

// CreateSettlementRequest carries the fields for a new draft settlement
type CreateSettlementRequest struct {
	OwnerID          uuid.UUID                          `json:"owner_id" binding:"required"`
	UnitID           *uuid.UUID                         `json:"unit_id,omitempty"`
	PeriodStart      time.Time                          `json:"period_start" binding:"required"`
	PeriodEnd        time.Time                          `json:"period_end" binding:"required"`
	CommissionMethod *settlement.CommissionMethod        `json:"commission_method,omitempty"`
	ExpenseMethod    *settlement.ExpenseAllocationMethod `json:"expense_method,omitempty"`
	Rules            *settlement.AllocationRules         `json:"rules,omitempty"`
	CommissionRate   *string                             `json:"commission_rate,omitempty"`
}

// Create builds a draft settlement for an owner and period. The commission
// rate is inherited from the owner unless the request overrides it; a
// second live settlement for the same owner and period is rejected.
func (s *SettlementService) Create(ctx context.Context, req CreateSettlementRequest) (*settlement.OwnerSettlement, error) {
	owner, err := s.ownerRepo.FindByID(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, shared.NewNotFoundError("Owner not found")
	}

	// The aggregate stores day-truncated period bounds, so the duplicate
	// check must compare the same way regardless of the caller's clock.
	periodStart := valueobject.TruncateToDay(req.PeriodStart)
	periodEnd := valueobject.TruncateToDay(req.PeriodEnd)
	exists, err := s.settlementRepo.ExistsForPeriod(ctx, req.OwnerID, periodStart, periodEnd, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError(fmt.Sprintf("A settlement for %s covering this period already exists", owner.OwnerName))
	}

	rate := owner.CommissionRate
	if req.CommissionRate != nil {
		rate, err = decimal.NewFromString(*req.CommissionRate)
		if err != nil {
			return nil, shared.NewValidationError("Invalid commission rate: " + *req.CommissionRate)
		}
	}

	number, err := s.settlementRepo.GenerateNumber(ctx)
	if err != nil {
		return nil, err
	}
	stl, err := settlement.NewOwnerSettlement(number, owner.ID, owner.OwnerName, periodStart, periodEnd, rate)
	if err != nil {
		return nil, err
	}
	if req.UnitID != nil {
		if err := stl.RestrictToUnit(*req.UnitID); err != nil {
			return nil, err
		}
	}
	if req.CommissionMethod != nil {
		if err := stl.SetCommissionMethod(*req.CommissionMethod); err != nil {
			return nil, err
		}
	}
	if req.ExpenseMethod != nil {
		rules := stl.Rules
		if req.Rules != nil {
			rules = *req.Rules
		}
		if err := stl.SetExpenseAllocation(*req.ExpenseMethod, rules); err != nil {
			return nil, err
		}
	}

	if err := s.settlementRepo.Save(ctx, stl); err != nil {
		return nil, err
	}
	s.publish(ctx, stl)
	s.logger.Info("settlement draft created",
		zap.String("settlement_number", stl.SettlementNumber),
		zap.String("owner", owner.OwnerName),
	)
	return stl, nil
}

// Calculate rebuilds the settlement figures from checked-out stay revenue
// and resolved maintenance expenses. An owner/period lock serializes
// concurrent recalculations of the same settlement scope.
func (s *SettlementService) Calculate(ctx context.Context, id uuid.UUID) (*settlement.OwnerSettlement, error) {
	stl, err := s.getSettlement(ctx, id)
	if err != nil {
		return nil, err
	}

	lockKey := fmt.Sprintf("settlement:%s:%s", stl.OwnerID, stl.PeriodStart.Format("2006-01"))
	release, err := s.locker.Acquire(ctx, lockKey, recalcLockTTL)
	if err != nil {
		if _, held := err.(*lock.ErrNotAcquired); held {
			return nil, shared.NewConflictError("Another calculation for this owner and period is in progress")
		}
		return nil, err
	}
	defer release()

	units, err := s.ownedUnitIDs(ctx, stl)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, shared.NewNotFoundError(fmt.Sprintf("No units found for owner %s", stl.OwnerName))
	}

	revenues, err := s.revenue.FindSettledRevenue(ctx, units, stl.PeriodStart, stl.PeriodEnd)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.FindResolvedExpenses(ctx, units, stl.PeriodStart, stl.PeriodEnd)
	if err != nil {
		return nil, err
	}

	if err := stl.Calculate(revenues, expenses, time.Now()); err != nil {
		return nil, err
	}
	if err := s.settlementRepo.Save(ctx, stl); err != nil {
		return nil, err
	}
	s.publish(ctx, stl)

	if stl.IsNegative() {
		s.logger.Warn("settlement net payable is negative",
			zap.String("settlement_number", stl.SettlementNumber),
			zap.String("net_payable", stl.NetPayable.String()),
		)
	}
	s.logger.Info("settlement calculated",
		zap.String("settlement_number", stl.SettlementNumber),
		zap.String("total_revenue", stl.TotalRevenue.String()),
		zap.String("commission", stl.CommissionAmount.String()),
		zap.String("net_payable", stl.NetPayable.String()),
	)
	return stl, nil
}

// UpdateMethodsRequest changes the calculation policies of an open settlement
type UpdateMethodsRequest struct {
	CommissionMethod *settlement.CommissionMethod        `json:"commission_method,omitempty"`
	ExpenseMethod    *settlement.ExpenseAllocationMethod `json:"expense_method,omitempty"`
	Rules            *settlement.AllocationRules         `json:"rules,omitempty"`
	CommissionRate   *string                             `json:"commission_rate,omitempty"`
}

// UpdateMethods changes policies and recalculates so the stored figures
// never disagree with the stored methods
func (s *SettlementService) UpdateMethods(ctx context.Context, id uuid.UUID, req UpdateMethodsRequest) (*settlement.OwnerSettlement, error) {
	stl, err := s.getSettlement(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CommissionMethod != nil {
		if err := stl.SetCommissionMethod(*req.CommissionMethod); err != nil {
			return nil, err
		}
	}
	if req.ExpenseMethod != nil {
		rules := stl.Rules
		if req.Rules != nil {
			rules = *req.Rules
		}
		if err := stl.SetExpenseAllocation(*req.ExpenseMethod, rules); err != nil {
			return nil, err
		}
	}
	if req.CommissionRate != nil {
		rate, err := decimal.NewFromString(*req.CommissionRate)
		if err != nil {
			return nil, shared.NewValidationError("Invalid commission rate: " + *req.CommissionRate)
		}
		if err := stl.SetCommissionRate(rate); err != nil {
			return nil, err
		}
	}
	if err := s.settlementRepo.Save(ctx, stl); err != nil {
		return nil, err
	}
	return s.Calculate(ctx, id)
}

// PostToAccounting posts the calculated settlement as a journal entry and
// moves it to POSTED. The owner is notified with the statement figures.
func (s *SettlementService) PostToAccounting(ctx context.Context, id uuid.UUID) (*settlement.OwnerSettlement, error) {
	stl, err := s.getSettlement(ctx, id)
	if err != nil {
		return nil, err
	}
	if stl.Status != settlement.SettlementStatusCalculated {
		return nil, shared.NewStateError(fmt.Sprintf("Settlement must be calculated before posting; current status is %s", stl.Status))
	}
	if stl.JournalEntryID != nil {
		return nil, shared.NewStateError(fmt.Sprintf("Settlement %s is already posted to journal entry %s", stl.SettlementNumber, stl.JournalEntryID))
	}
	if stl.NetPayable.IsZero() {
		return nil, shared.NewValidationError("Nothing to post: net payable is zero")
	}
	owner, err := s.ownerRepo.FindByID(ctx, stl.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, shared.NewNotFoundError("Owner not found")
	}
	if s.accounting.PayableAccount == "" {
		return nil, shared.NewConfigurationError("Owner payables account is not configured")
	}
	if owner.SupplierAccountCode == "" {
		return nil, shared.NewConfigurationError(fmt.Sprintf("Owner %s has no supplier account linked", owner.OwnerName))
	}

	// Two-sided movement between the owner payables liability and the
	// owner's supplier account. A positive net payable debits the
	// liability and credits the owner; a negative one flips the legs
	// because the owner owes the company for the period.
	amount := stl.NetPayable.Abs()
	liability := billing.JournalLine{AccountCode: s.accounting.PayableAccount, Debit: amount, Remark: "Owner payables clearing"}
	ownerLeg := billing.JournalLine{AccountCode: owner.SupplierAccountCode, Credit: amount, PartyCode: owner.SupplierAccountCode, Remark: "Net payable to owner"}
	if stl.NetPayable.IsNegative() {
		liability.Debit, liability.Credit = decimal.Zero, amount
		ownerLeg.Credit, ownerLeg.Debit = decimal.Zero, amount
		ownerLeg.Remark = "Amount owed by owner"
	}

	journalID, err := s.ledger.PostJournal(ctx, billing.JournalRequest{
		PostingDate: time.Now(),
		Reference:   stl.SettlementNumber,
		Remark:      fmt.Sprintf("Owner settlement %s for %s (%s - %s)", stl.SettlementNumber, stl.OwnerName, stl.PeriodStart.Format("2006-01-02"), stl.PeriodEnd.Format("2006-01-02")),
		Lines:       []billing.JournalLine{liability, ownerLeg},
	})
	if err != nil {
		return nil, fmt.Errorf("post settlement journal: %w", err)
	}

	if err := stl.MarkPosted(journalID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.settlementRepo.Save(ctx, stl); err != nil {
		return nil, err
	}
	s.publish(ctx, stl)

	if err := s.notifier.NotifySettlementPosted(ctx, stl.OwnerID, stl.SettlementNumber, stl.NetPayable); err != nil {
		s.logger.Warn("failed to notify owner of posted settlement",
			zap.String("settlement_number", stl.SettlementNumber),
			zap.Error(err),
		)
	}
	s.logger.Info("settlement posted",
		zap.String("settlement_number", stl.SettlementNumber),
		zap.String("journal_id", journalID.String()),
	)
	return stl, nil
}

// CreatePayment pays the owner out and moves the settlement to PAID.
// Negative settlements cannot be paid; the owner owes the company instead.
func (s *SettlementService) CreatePayment(ctx context.Context, id uuid.UUID) (*settlement.OwnerSettlement, error) {
	stl, err := s.getSettlement(ctx, id)
	if err != nil {
		return nil, err
	}
	if stl.Status != settlement.SettlementStatusPosted {
		return nil, shared.NewStateError(fmt.Sprintf("Settlement must be posted before payment; current status is %s", stl.Status))
	}
	if stl.JournalEntryID == nil {
		return nil, shared.NewStateError(fmt.Sprintf("Settlement %s has no posted journal entry to pay against", stl.SettlementNumber))
	}
	if stl.PaymentVoucherID != nil {
		return nil, shared.NewStateError(fmt.Sprintf("Settlement %s is already paid by voucher %s", stl.SettlementNumber, stl.PaymentVoucherID))
	}
	if !stl.NetPayable.IsPositive() {
		return nil, shared.NewValidationError("Net payable must be positive to create a payment")
	}
	owner, err := s.ownerRepo.FindByID(ctx, stl.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, shared.NewNotFoundError("Owner not found")
	}

	voucherID, err := s.payments.CreatePayment(ctx, billing.PaymentRequest{
		SupplierAccountCode: owner.SupplierAccountCode,
		OwnerName:           owner.OwnerName,
		Amount:              stl.NetPayable,
		Reference:           stl.SettlementNumber,
		JournalEntryID:      *stl.JournalEntryID,
		PaymentDate:         time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create owner payment: %w", err)
	}

	if err := stl.MarkPaid(voucherID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.settlementRepo.Save(ctx, stl); err != nil {
		return nil, err
	}
	s.publish(ctx, stl)
	s.logger.Info("settlement paid",
		zap.String("settlement_number", stl.SettlementNumber),
		zap.String("voucher_id", voucherID.String()),
	)
	return stl, nil
}

// Cancel voids a settlement. A paid settlement gets its voucher voided
// and a posted one gets its journal reversed.
func (s *SettlementService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*settlement.OwnerSettlement, error) {
	stl, err := s.getSettlement(ctx, id)
	if err != nil {
		return nil, err
	}
	journalID := stl.JournalEntryID
	voucherID := stl.PaymentVoucherID

	if err := stl.Cancel(reason, time.Now()); err != nil {
		return nil, err
	}
	if voucherID != nil {
		if err := s.payments.CancelPayment(ctx, *voucherID, "Settlement "+stl.SettlementNumber+" cancelled: "+reason); err != nil {
			return nil, fmt.Errorf("cancel settlement payment: %w", err)
		}
	}
	if journalID != nil {
		if err := s.ledger.ReverseJournal(ctx, *journalID, "Settlement "+stl.SettlementNumber+" cancelled: "+reason); err != nil {
			return nil, fmt.Errorf("reverse settlement journal: %w", err)
		}
	}
	if err := s.settlementRepo.Save(ctx, stl); err != nil {
		return nil, err
	}
	s.publish(ctx, stl)
	s.logger.Info("settlement cancelled",
		zap.String("settlement_number", stl.SettlementNumber),
		zap.String("reason", reason),
	)
	return stl, nil
}

// GetByID returns one settlement
func (s *SettlementService) GetByID(ctx context.Context, id uuid.UUID) (*settlement.OwnerSettlement, error) {
	return s.getSettlement(ctx, id)
}

// List returns settlements matching the filter
func (s *SettlementService) List(ctx context.Context, filter settlement.SettlementFilter) (*shared.Paginated[settlement.OwnerSettlement], error) {
	return s.settlementRepo.FindAll(ctx, filter)
}

func (s *SettlementService) getSettlement(ctx context.Context, id uuid.UUID) (*settlement.OwnerSettlement, error) {
	stl, err := s.settlementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stl == nil {
		return nil, shared.NewNotFoundError("Settlement not found")
	}
	return stl, nil
}

// ownedUnitIDs resolves the unit scope: the restricted unit when set,
// otherwise every unit owned by the settlement's owner
func (s *SettlementService) ownedUnitIDs(ctx context.Context, stl *settlement.OwnerSettlement) ([]uuid.UUID, error) {
	if stl.UnitID != nil {
		unit, err := s.unitRepo.FindByID(ctx, *stl.UnitID)
		if err != nil {
			return nil, err
		}
		if unit == nil {
			return nil, shared.NewNotFoundError("Unit not found")
		}
		if unit.OwnerID == nil || *unit.OwnerID != stl.OwnerID {
			return nil, shared.NewValidationError(fmt.Sprintf("Unit %s does not belong to owner %s", unit.UnitCode, stl.OwnerName))
		}
		return []uuid.UUID{unit.ID}, nil
	}
	units, err := s.unitRepo.FindByOwner(ctx, stl.OwnerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(units))
	for i := range units {
		ids = append(ids, units[i].ID)
	}
	return ids, nil
}

func (s *SettlementService) publish(ctx context.Context, stl *settlement.OwnerSettlement) {
	events := stl.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish settlement events",
			zap.String("settlement_number", stl.SettlementNumber),
			zap.Error(err),
		)
	}
	stl.ClearDomainEvents()
}
