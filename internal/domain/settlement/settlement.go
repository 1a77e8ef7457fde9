package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pms/backend/internal/domain/shared"
	"github.com/pms/backend/internal/domain/shared/valueobject"
)

// CommissionMethod selects the base amount the commission is computed on
type CommissionMethod string

const (
	// CommissionOnGrossRevenue computes commission on total revenue
	CommissionOnGrossRevenue CommissionMethod = "ON_GROSS_REVENUE"
	// CommissionOnNetRevenue computes commission on revenue minus the
	// owner's share of expenses
	CommissionOnNetRevenue CommissionMethod = "ON_NET_REVENUE_AFTER_EXPENSES"
)

// IsValid checks if the commission method is valid
func (m CommissionMethod) IsValid() bool {
	return m == CommissionOnGrossRevenue || m == CommissionOnNetRevenue
}

// ExpenseAllocationMethod selects who bears period expenses
type ExpenseAllocationMethod string

const (
	ExpenseOwnerPaysAll      ExpenseAllocationMethod = "OWNER_PAYS_ALL"
	ExpenseManagementPaysAll ExpenseAllocationMethod = "MANAGEMENT_PAYS_ALL"
	ExpenseRuleBased         ExpenseAllocationMethod = "RULE_BASED"
)

// IsValid checks if the expense allocation method is valid
func (m ExpenseAllocationMethod) IsValid() bool {
	switch m {
	case ExpenseOwnerPaysAll, ExpenseManagementPaysAll, ExpenseRuleBased:
		return true
	}
	return false
}

// ExpenseType classifies an expense line for rule based allocation
type ExpenseType string

const (
	ExpenseTypeMaintenance ExpenseType = "MAINTENANCE"
	ExpenseTypeCleaning    ExpenseType = "CLEANING"
	ExpenseTypeUtilities   ExpenseType = "UTILITIES"
	ExpenseTypeOther       ExpenseType = "OTHER"
)

// AllocationRules holds the per-type flags used by RULE_BASED allocation.
// A flag set to true means the owner bears that expense type.
type AllocationRules struct {
	OwnerPaysMaintenance bool `gorm:"not null;default:true"`
	OwnerPaysCleaning    bool `gorm:"not null;default:false"`
	OwnerPaysUtilities   bool `gorm:"not null;default:false"`
}

// SettlementStatus represents the lifecycle of an owner settlement
type SettlementStatus string

const (
	SettlementStatusDraft      SettlementStatus = "DRAFT"
	SettlementStatusCalculated SettlementStatus = "CALCULATED"
	SettlementStatusPosted     SettlementStatus = "POSTED"
	SettlementStatusPaid       SettlementStatus = "PAID"
	SettlementStatusCancelled  SettlementStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s SettlementStatus) IsValid() bool {
	switch s {
	case SettlementStatusDraft, SettlementStatusCalculated, SettlementStatusPosted,
		SettlementStatusPaid, SettlementStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if a transition to the target status is allowed
func (s SettlementStatus) CanTransitionTo(target SettlementStatus) bool {
	transitions := map[SettlementStatus][]SettlementStatus{
		SettlementStatusDraft:      {SettlementStatusCalculated, SettlementStatusCancelled},
		SettlementStatusCalculated: {SettlementStatusDraft, SettlementStatusPosted, SettlementStatusCancelled},
		SettlementStatusPosted:     {SettlementStatusPaid, SettlementStatusCancelled},
		SettlementStatusPaid:       {SettlementStatusCancelled},
		SettlementStatusCancelled:  {},
	}
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsFinal reports whether no further transitions are possible
func (s SettlementStatus) IsFinal() bool {
	return s == SettlementStatusCancelled
}

// RevenueDetail is a settlement child row for one checked-out unit stay
type RevenueDetail struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	SettlementID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReservationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Reservation   string          `gorm:"type:varchar(50);not null"` // Denormalized reservation number
	UnitID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitCode      string          `gorm:"type:varchar(50);not null"`
	CheckIn       time.Time       `gorm:"not null"`
	CheckOut      time.Time       `gorm:"not null"`
	Nights        int             `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (RevenueDetail) TableName() string {
	return "settlement_revenue_details"
}

// ExpensePayer identifies who bears an expense line
type ExpensePayer string

const (
	ExpensePayerOwner      ExpensePayer = "OWNER"
	ExpensePayerManagement ExpensePayer = "MANAGEMENT"
)

// ExpenseDetail is a settlement child row for one period expense
type ExpenseDetail struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	SettlementID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExpenseType  ExpenseType     `gorm:"type:varchar(20);not null"`
	ReferenceID  uuid.UUID       `gorm:"type:uuid;not null"`
	Reference    string          `gorm:"type:varchar(50);not null"` // Denormalized reference number
	UnitID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitCode     string          `gorm:"type:varchar(50);not null"`
	ExpenseDate  time.Time       `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description  string          `gorm:"type:varchar(500)"`
	PaidBy       ExpensePayer    `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (ExpenseDetail) TableName() string {
	return "settlement_expense_details"
}

// RevenueInput is a revenue line handed to Calculate
type RevenueInput struct {
	ReservationID     uuid.UUID
	ReservationNumber string
	UnitID            uuid.UUID
	UnitCode          string
	CheckIn           time.Time
	CheckOut          time.Time
	Nights            int
	Amount            decimal.Decimal
}

// ExpenseInput is an expense line handed to Calculate
type ExpenseInput struct {
	Type        ExpenseType
	ReferenceID uuid.UUID
	Reference   string
	UnitID      uuid.UUID
	UnitCode    string
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// OwnerSettlement represents the monthly owner settlement aggregate root.
// It aggregates checked-out stay revenue and resolved maintenance expenses
// for the owner's units over a period and computes the net payable.
type OwnerSettlement struct {
	shared.BaseAggregateRoot
	SettlementNumber string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	OwnerID          uuid.UUID               `gorm:"type:uuid;not null;index:idx_settlement_owner_period"`
	OwnerName        string                  `gorm:"type:varchar(200);not null"`
	UnitID           *uuid.UUID              `gorm:"type:uuid;index"` // Optional restriction to one unit
	PeriodStart      time.Time               `gorm:"not null;index:idx_settlement_owner_period"`
	PeriodEnd        time.Time               `gorm:"not null;index:idx_settlement_owner_period"`
	CommissionMethod CommissionMethod        `gorm:"type:varchar(40);not null;default:'ON_GROSS_REVENUE'"`
	ExpenseMethod    ExpenseAllocationMethod `gorm:"type:varchar(30);not null;default:'OWNER_PAYS_ALL'"`
	Rules            AllocationRules         `gorm:"embedded;embeddedPrefix:rule_"`
	CommissionRate   decimal.Decimal         `gorm:"type:decimal(5,2);not null"` // Percent, 0..100

	TotalRevenue       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalExpenses      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OwnerExpenses      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ManagementExpenses decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CommissionBase     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CommissionAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NetPayable         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CalculationNotes   string          `gorm:"type:text"`

	RevenueDetails []RevenueDetail `gorm:"foreignKey:SettlementID;references:ID"`
	ExpenseDetails []ExpenseDetail `gorm:"foreignKey:SettlementID;references:ID"`

	Status           SettlementStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentVoucherID *uuid.UUID       `gorm:"type:uuid"` // Accounting payment reference once paid
	JournalEntryID   *uuid.UUID       `gorm:"type:uuid"` // Accounting journal reference once posted
	CalculatedAt     *time.Time
	PostedAt         *time.Time
	PaidAt           *time.Time
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OwnerSettlement) TableName() string {
	return "owner_settlements"
}

// NewOwnerSettlement creates a draft settlement for an owner and period
func NewOwnerSettlement(
	settlementNumber string,
	ownerID uuid.UUID,
	ownerName string,
	periodStart, periodEnd time.Time,
	commissionRate decimal.Decimal,
) (*OwnerSettlement, error) {
	if settlementNumber == "" {
		return nil, shared.NewValidationError("Settlement number cannot be empty")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("Owner ID cannot be empty")
	}
	if ownerName == "" {
		return nil, shared.NewValidationError("Owner name cannot be empty")
	}
	if periodStart.IsZero() || periodEnd.IsZero() {
		return nil, shared.NewValidationError("Settlement period is required")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewValidationError("Period end must be after period start")
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewValidationError("Commission rate must be between 0 and 100")
	}

	s := &OwnerSettlement{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		SettlementNumber:   settlementNumber,
		OwnerID:            ownerID,
		OwnerName:          ownerName,
		PeriodStart:        valueobject.TruncateToDay(periodStart),
		PeriodEnd:          valueobject.TruncateToDay(periodEnd),
		CommissionMethod:   CommissionOnGrossRevenue,
		ExpenseMethod:      ExpenseOwnerPaysAll,
		Rules:              AllocationRules{OwnerPaysMaintenance: true},
		CommissionRate:     commissionRate,
		TotalRevenue:       decimal.Zero,
		TotalExpenses:      decimal.Zero,
		OwnerExpenses:      decimal.Zero,
		ManagementExpenses: decimal.Zero,
		CommissionBase:     decimal.Zero,
		CommissionAmount:   decimal.Zero,
		NetPayable:         decimal.Zero,
		RevenueDetails:     make([]RevenueDetail, 0),
		ExpenseDetails:     make([]ExpenseDetail, 0),
		Status:             SettlementStatusDraft,
	}
	s.AddDomainEvent(NewSettlementCreatedEvent(s.ID, s.SettlementNumber, ownerID, s.PeriodStart, s.PeriodEnd))
	return s, nil
}

// RestrictToUnit narrows the settlement scope to a single unit
func (s *OwnerSettlement) RestrictToUnit(unitID uuid.UUID) error {
	if err := s.ensureEditable(); err != nil {
		return err
	}
	if unitID == uuid.Nil {
		return shared.NewValidationError("Unit ID cannot be empty")
	}
	s.UnitID = &unitID
	return nil
}

// SetCommissionMethod sets the commission calculation method
func (s *OwnerSettlement) SetCommissionMethod(method CommissionMethod) error {
	if err := s.ensureEditable(); err != nil {
		return err
	}
	if !method.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown commission method: %s", method))
	}
	s.CommissionMethod = method
	return nil
}

// SetExpenseAllocation sets the expense allocation method and the rule
// flags used when the method is RULE_BASED
func (s *OwnerSettlement) SetExpenseAllocation(method ExpenseAllocationMethod, rules AllocationRules) error {
	if err := s.ensureEditable(); err != nil {
		return err
	}
	if !method.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown expense allocation method: %s", method))
	}
	s.ExpenseMethod = method
	s.Rules = rules
	return nil
}

// SetCommissionRate overrides the commission rate inherited from the owner
func (s *OwnerSettlement) SetCommissionRate(rate decimal.Decimal) error {
	if err := s.ensureEditable(); err != nil {
		return err
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("Commission rate must be between 0 and 100")
	}
	s.CommissionRate = rate
	return nil
}

func (s *OwnerSettlement) ensureEditable() error {
	if s.Status != SettlementStatusDraft && s.Status != SettlementStatusCalculated {
		return shared.NewStateError(fmt.Sprintf("Settlement in status %s cannot be modified", s.Status))
	}
	return nil
}

// ownerPays decides whether the owner bears an expense of the given type
func (s *OwnerSettlement) ownerPays(t ExpenseType) bool {
	switch s.ExpenseMethod {
	case ExpenseOwnerPaysAll:
		return true
	case ExpenseManagementPaysAll:
		return false
	}
	switch t {
	case ExpenseTypeMaintenance:
		return s.Rules.OwnerPaysMaintenance
	case ExpenseTypeCleaning:
		return s.Rules.OwnerPaysCleaning
	case ExpenseTypeUtilities:
		return s.Rules.OwnerPaysUtilities
	}
	// Unclassified expenses default to the owner
	return true
}

// Calculate rebuilds the settlement from the given revenue and expense
// lines. Existing detail rows are discarded so recalculation is
// repeatable. The settlement moves to CALCULATED.
func (s *OwnerSettlement) Calculate(revenues []RevenueInput, expenses []ExpenseInput, now time.Time) error {
	if s.Status != SettlementStatusDraft && s.Status != SettlementStatusCalculated {
		return shared.NewStateError(fmt.Sprintf("Settlement in status %s cannot be recalculated", s.Status))
	}

	s.RevenueDetails = s.RevenueDetails[:0]
	s.ExpenseDetails = s.ExpenseDetails[:0]

	totalRevenue := decimal.Zero
	for _, rv := range revenues {
		s.RevenueDetails = append(s.RevenueDetails, RevenueDetail{
			ID:            uuid.New(),
			SettlementID:  s.ID,
			ReservationID: rv.ReservationID,
			Reservation:   rv.ReservationNumber,
			UnitID:        rv.UnitID,
			UnitCode:      rv.UnitCode,
			CheckIn:       rv.CheckIn,
			CheckOut:      rv.CheckOut,
			Nights:        rv.Nights,
			Amount:        rv.Amount,
		})
		totalRevenue = totalRevenue.Add(rv.Amount)
	}

	totalExpenses := decimal.Zero
	ownerShare := decimal.Zero
	managementShare := decimal.Zero
	for _, ex := range expenses {
		payer := ExpensePayerManagement
		if s.ownerPays(ex.Type) {
			payer = ExpensePayerOwner
		}
		s.ExpenseDetails = append(s.ExpenseDetails, ExpenseDetail{
			ID:           uuid.New(),
			SettlementID: s.ID,
			ExpenseType:  ex.Type,
			ReferenceID:  ex.ReferenceID,
			Reference:    ex.Reference,
			UnitID:       ex.UnitID,
			UnitCode:     ex.UnitCode,
			ExpenseDate:  ex.Date,
			Amount:       ex.Amount,
			Description:  ex.Description,
			PaidBy:       payer,
		})
		totalExpenses = totalExpenses.Add(ex.Amount)
		if payer == ExpensePayerOwner {
			ownerShare = ownerShare.Add(ex.Amount)
		} else {
			managementShare = managementShare.Add(ex.Amount)
		}
	}

	s.TotalRevenue = totalRevenue
	s.TotalExpenses = totalExpenses
	s.OwnerExpenses = ownerShare
	s.ManagementExpenses = managementShare

	hundred := decimal.NewFromInt(100)
	if s.CommissionMethod == CommissionOnGrossRevenue {
		s.CommissionBase = totalRevenue
		s.CommissionAmount = totalRevenue.Mul(s.CommissionRate).Div(hundred)
		s.NetPayable = totalRevenue.Sub(ownerShare).Sub(s.CommissionAmount)
	} else {
		netAfterExpenses := totalRevenue.Sub(ownerShare)
		s.CommissionBase = netAfterExpenses
		s.CommissionAmount = netAfterExpenses.Mul(s.CommissionRate).Div(hundred)
		s.NetPayable = netAfterExpenses.Sub(s.CommissionAmount)
	}

	s.CalculationNotes = s.buildCalculationNotes()

	wasDraft := s.Status == SettlementStatusDraft
	s.Status = SettlementStatusCalculated
	calculatedAt := now
	s.CalculatedAt = &calculatedAt
	if wasDraft {
		s.AddDomainEvent(NewSettlementCalculatedEvent(s.ID, s.SettlementNumber, s.OwnerID, s.NetPayable))
	}
	return nil
}

// buildCalculationNotes renders the calculation trail. The trail is
// deterministic for the same inputs so recalculation reproduces it.
func (s *OwnerSettlement) buildCalculationNotes() string {
	cur := func(d decimal.Decimal) string {
		return valueobject.NewMoneyEGP(d).String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "=== Calculation Method ===\n")
	fmt.Fprintf(&b, "Commission Method: %s\n", s.CommissionMethod)
	fmt.Fprintf(&b, "Expense Allocation: %s\n\n", s.ExpenseMethod)

	fmt.Fprintf(&b, "=== Revenue ===\n")
	fmt.Fprintf(&b, "Stays: %d\n", len(s.RevenueDetails))
	fmt.Fprintf(&b, "Total Revenue: %s\n\n", cur(s.TotalRevenue))

	fmt.Fprintf(&b, "=== Expenses ===\n")
	fmt.Fprintf(&b, "Total Expenses: %s\n", cur(s.TotalExpenses))
	fmt.Fprintf(&b, "  - Owner Pays: %s\n", cur(s.OwnerExpenses))
	fmt.Fprintf(&b, "  - Management Pays: %s\n\n", cur(s.ManagementExpenses))

	fmt.Fprintf(&b, "=== Commission ===\n")
	fmt.Fprintf(&b, "Commission Rate: %s%%\n", s.CommissionRate.String())
	fmt.Fprintf(&b, "Base Amount: %s\n", cur(s.CommissionBase))
	if s.CommissionMethod == CommissionOnGrossRevenue {
		fmt.Fprintf(&b, "  Formula: Revenue x %s%%\n", s.CommissionRate.String())
	} else {
		fmt.Fprintf(&b, "  Formula: (Revenue - Owner Expenses) x %s%%\n", s.CommissionRate.String())
	}
	fmt.Fprintf(&b, "Commission Amount: %s\n\n", cur(s.CommissionAmount))

	fmt.Fprintf(&b, "=== Net Payable ===\n")
	if s.CommissionMethod == CommissionOnGrossRevenue {
		fmt.Fprintf(&b, "Net Payable = Revenue - Owner Expenses - Commission\n")
		fmt.Fprintf(&b, "  = %s - %s - %s\n", cur(s.TotalRevenue), cur(s.OwnerExpenses), cur(s.CommissionAmount))
	} else {
		fmt.Fprintf(&b, "Net Payable = (Revenue - Owner Expenses) - Commission\n")
		fmt.Fprintf(&b, "  = %s - %s\n", cur(s.CommissionBase), cur(s.CommissionAmount))
	}
	fmt.Fprintf(&b, "  = %s", cur(s.NetPayable))
	if s.NetPayable.IsNegative() {
		fmt.Fprintf(&b, "\n\nWARNING: Net payable is negative. Owner owes the company.")
	}
	return b.String()
}

// IsNegative reports whether the owner owes the company for this period
func (s *OwnerSettlement) IsNegative() bool {
	return s.NetPayable.IsNegative()
}

// NetPayableMoney returns the net payable as Money
func (s *OwnerSettlement) NetPayableMoney() valueobject.Money {
	return valueobject.NewMoneyEGP(s.NetPayable)
}

// ReopenDraft moves a calculated settlement back to draft for editing
func (s *OwnerSettlement) ReopenDraft() error {
	if !s.Status.CanTransitionTo(SettlementStatusDraft) {
		return shared.NewStateError(fmt.Sprintf("Cannot reopen settlement in status %s", s.Status))
	}
	s.Status = SettlementStatusDraft
	return nil
}

// MarkPosted records that the settlement was posted to accounting
func (s *OwnerSettlement) MarkPosted(journalEntryID uuid.UUID, now time.Time) error {
	if !s.Status.CanTransitionTo(SettlementStatusPosted) {
		return shared.NewStateError(fmt.Sprintf("Cannot post settlement in status %s", s.Status))
	}
	if journalEntryID == uuid.Nil {
		return shared.NewValidationError("Journal entry ID cannot be empty")
	}
	s.Status = SettlementStatusPosted
	s.JournalEntryID = &journalEntryID
	postedAt := now
	s.PostedAt = &postedAt
	s.AddDomainEvent(NewSettlementPostedEvent(s.ID, s.SettlementNumber, s.OwnerID, s.NetPayable))
	return nil
}

// MarkPaid records that the owner was paid out
func (s *OwnerSettlement) MarkPaid(paymentVoucherID uuid.UUID, now time.Time) error {
	if !s.Status.CanTransitionTo(SettlementStatusPaid) {
		return shared.NewStateError(fmt.Sprintf("Cannot pay settlement in status %s", s.Status))
	}
	if paymentVoucherID == uuid.Nil {
		return shared.NewValidationError("Payment voucher ID cannot be empty")
	}
	s.Status = SettlementStatusPaid
	s.PaymentVoucherID = &paymentVoucherID
	paidAt := now
	s.PaidAt = &paidAt
	s.AddDomainEvent(NewSettlementPaidEvent(s.ID, s.SettlementNumber, s.OwnerID, s.NetPayable))
	return nil
}

// Cancel voids the settlement. Callers must reverse a posted journal and
// a paid voucher when the references are set.
func (s *OwnerSettlement) Cancel(reason string, now time.Time) error {
	if !s.Status.CanTransitionTo(SettlementStatusCancelled) {
		return shared.NewStateError(fmt.Sprintf("Cannot cancel settlement in status %s", s.Status))
	}
	if reason == "" {
		return shared.NewValidationError("Cancel reason is required")
	}
	hadJournal := s.JournalEntryID != nil
	s.Status = SettlementStatusCancelled
	s.CancelReason = reason
	cancelledAt := now
	s.CancelledAt = &cancelledAt
	s.AddDomainEvent(NewSettlementCancelledEvent(s.ID, s.SettlementNumber, s.OwnerID, reason, hadJournal))
	return nil
}
