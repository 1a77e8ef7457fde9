package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pms/backend/internal/domain/billing"
	"github.com/pms/backend/internal/domain/shared"
)

// GormInvoiceService implements billing.InvoiceService on the guest
// invoice tables
type GormInvoiceService struct {
	db *gorm.DB
}

// NewGormInvoiceService creates a new GormInvoiceService
func NewGormInvoiceService(db *gorm.DB) *GormInvoiceService {
	return &GormInvoiceService{db: db}
}

// CreateInvoice raises a guest invoice from the checkout charge lines
func (s *GormInvoiceService) CreateInvoice(ctx context.Context, req billing.InvoiceRequest) (*billing.InvoiceResult, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("Invoice must have at least one line")
	}

	grandTotal := decimal.Zero
	for _, line := range req.Lines {
		if line.Amount.IsNegative() {
			return nil, shared.NewValidationError("Invoice line amount cannot be negative")
		}
		grandTotal = grandTotal.Add(line.Amount)
	}

	number, err := nextNumber(ctx, dbFor(ctx, s.db), "INV")
	if err != nil {
		return nil, err
	}

	invoice := GuestInvoice{
		ID:                uuid.New(),
		InvoiceNumber:     number,
		BillingPartyID:    req.BillingPartyID,
		ReservationID:     req.ReservationID,
		ReservationNumber: req.ReservationNumber,
		PostingDate:       req.PostingDate,
		Status:            InvoiceStatusIssued,
		GrandTotal:        grandTotal,
	}
	for _, line := range req.Lines {
		invoice.Lines = append(invoice.Lines, GuestInvoiceLine{
			ID:          uuid.New(),
			InvoiceID:   invoice.ID,
			Description: line.Description,
			Quantity:    line.Quantity,
			Rate:        line.Rate,
			Amount:      line.Amount,
		})
	}

	if err := dbFor(ctx, s.db).WithContext(ctx).Create(&invoice).Error; err != nil {
		return nil, err
	}

	return &billing.InvoiceResult{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		GrandTotal:    invoice.GrandTotal,
	}, nil
}

// CancelInvoice voids an issued invoice
func (s *GormInvoiceService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) error {
	result := dbFor(ctx, s.db).WithContext(ctx).
		Model(&GuestInvoice{}).
		Where("id = ? AND status = ?", invoiceID, InvoiceStatusIssued).
		Updates(map[string]interface{}{
			"status":        InvoiceStatusCancelled,
			"cancel_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Invoice not found or already cancelled")
	}
	return nil
}

// GormLedgerService implements billing.LedgerService on the journal tables
type GormLedgerService struct {
	db *gorm.DB
}

// NewGormLedgerService creates a new GormLedgerService
func NewGormLedgerService(db *gorm.DB) *GormLedgerService {
	return &GormLedgerService{db: db}
}

// PostJournal posts a balanced journal entry and returns its id
func (s *GormLedgerService) PostJournal(ctx context.Context, req billing.JournalRequest) (uuid.UUID, error) {
	if len(req.Lines) < 2 {
		return uuid.Nil, shared.NewValidationError("Journal entry must have at least two lines")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range req.Lines {
		if line.AccountCode == "" {
			return uuid.Nil, shared.NewValidationError("Journal line account code is required")
		}
		totalDebit = totalDebit.Add(line.Debit)
		totalCredit = totalCredit.Add(line.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return uuid.Nil, shared.NewValidationError("Journal entry debits and credits must balance")
	}

	number, err := nextNumber(ctx, dbFor(ctx, s.db), "JRN")
	if err != nil {
		return uuid.Nil, err
	}

	entry := JournalEntry{
		ID:          uuid.New(),
		EntryNumber: number,
		PostingDate: req.PostingDate,
		Reference:   req.Reference,
		Remark:      req.Remark,
		Status:      JournalStatusPosted,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
	}
	for _, line := range req.Lines {
		entry.Lines = append(entry.Lines, JournalEntryLine{
			ID:          uuid.New(),
			EntryID:     entry.ID,
			AccountCode: line.AccountCode,
			Debit:       line.Debit,
			Credit:      line.Credit,
			PartyCode:   line.PartyCode,
			Remark:      line.Remark,
		})
	}

	if err := dbFor(ctx, s.db).WithContext(ctx).Create(&entry).Error; err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}

// ReverseJournal creates a reversing entry with swapped legs and marks the
// original reversed. Posted entries are never deleted.
func (s *GormLedgerService) ReverseJournal(ctx context.Context, journalID uuid.UUID, reason string) error {
	return dbFor(ctx, s.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original JournalEntry
		if err := tx.Preload("Lines").First(&original, "id = ?", journalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewNotFoundError("Journal entry not found")
			}
			return err
		}
		if original.Status == JournalStatusReversed {
			return shared.NewStateError("Journal entry is already reversed")
		}

		number, err := nextNumber(withTx(ctx, tx), tx, "JRN")
		if err != nil {
			return err
		}

		reversal := JournalEntry{
			ID:          uuid.New(),
			EntryNumber: number,
			PostingDate: time.Now(),
			Reference:   original.Reference,
			Remark:      "Reversal of " + original.EntryNumber + ": " + reason,
			Status:      JournalStatusPosted,
			TotalDebit:  original.TotalCredit,
			TotalCredit: original.TotalDebit,
		}
		for _, line := range original.Lines {
			reversal.Lines = append(reversal.Lines, JournalEntryLine{
				ID:          uuid.New(),
				EntryID:     reversal.ID,
				AccountCode: line.AccountCode,
				Debit:       line.Credit,
				Credit:      line.Debit,
				PartyCode:   line.PartyCode,
				Remark:      line.Remark,
			})
		}
		if err := tx.Create(&reversal).Error; err != nil {
			return err
		}

		return tx.Model(&JournalEntry{}).
			Where("id = ?", original.ID).
			Updates(map[string]interface{}{
				"status":      JournalStatusReversed,
				"reversed_by": reversal.ID,
			}).Error
	})
}

// GormPaymentService implements billing.PaymentService on the payment
// voucher table
type GormPaymentService struct {
	db *gorm.DB
}

// NewGormPaymentService creates a new GormPaymentService
func NewGormPaymentService(db *gorm.DB) *GormPaymentService {
	return &GormPaymentService{db: db}
}

// CreatePayment records an owner payout voucher and returns its id
func (s *GormPaymentService) CreatePayment(ctx context.Context, req billing.PaymentRequest) (uuid.UUID, error) {
	if req.SupplierAccountCode == "" {
		return uuid.Nil, shared.NewValidationError("Supplier account code is required")
	}
	if !req.Amount.IsPositive() {
		return uuid.Nil, shared.NewValidationError("Payment amount must be positive")
	}

	number, err := nextNumber(ctx, dbFor(ctx, s.db), "PAY")
	if err != nil {
		return uuid.Nil, err
	}

	voucher := PaymentVoucher{
		ID:                  uuid.New(),
		VoucherNumber:       number,
		SupplierAccountCode: req.SupplierAccountCode,
		PayeeName:           req.OwnerName,
		Amount:              req.Amount,
		Reference:           req.Reference,
		PaymentDate:         req.PaymentDate,
		Status:              VoucherStatusPaid,
	}
	if req.JournalEntryID != uuid.Nil {
		journalID := req.JournalEntryID
		voucher.JournalEntryID = &journalID
	}
	if err := dbFor(ctx, s.db).WithContext(ctx).Create(&voucher).Error; err != nil {
		return uuid.Nil, err
	}
	return voucher.ID, nil
}

// CancelPayment voids a paid voucher
func (s *GormPaymentService) CancelPayment(ctx context.Context, voucherID uuid.UUID, reason string) error {
	result := dbFor(ctx, s.db).WithContext(ctx).
		Model(&PaymentVoucher{}).
		Where("id = ? AND status = ?", voucherID, VoucherStatusPaid).
		Updates(map[string]interface{}{
			"status":        VoucherStatusCancelled,
			"cancel_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Payment voucher not found or already cancelled")
	}
	return nil
}
