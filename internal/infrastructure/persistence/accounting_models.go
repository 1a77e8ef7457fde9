package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice, journal and voucher statuses
const (
	InvoiceStatusIssued    = "ISSUED"
	InvoiceStatusCancelled = "CANCELLED"

	JournalStatusPosted   = "POSTED"
	JournalStatusReversed = "REVERSED"

	VoucherStatusPaid      = "PAID"
	VoucherStatusCancelled = "CANCELLED"
)

// GuestInvoice is a receivable raised against the billing party at
// checkout. It lives in the persistence layer as a plain record; the
// reservation aggregate only holds its id.
type GuestInvoice struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceNumber     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	BillingPartyID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReservationID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReservationNumber string          `gorm:"type:varchar(50);not null"`
	PostingDate       time.Time       `gorm:"not null"`
	Status            string          `gorm:"type:varchar(20);not null;default:'ISSUED';index"`
	GrandTotal        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CancelReason      string          `gorm:"type:varchar(500)"`
	Lines             []GuestInvoiceLine `gorm:"foreignKey:InvoiceID;references:ID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (GuestInvoice) TableName() string {
	return "guest_invoices"
}

// GuestInvoiceLine is one billed line on a guest invoice
type GuestInvoiceLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (GuestInvoiceLine) TableName() string {
	return "guest_invoice_lines"
}

// JournalEntry is a posted general ledger entry. Settlements post one on
// approval; cancellation creates a reversing entry rather than deleting.
type JournalEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	EntryNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	PostingDate time.Time       `gorm:"not null;index"`
	Reference   string          `gorm:"type:varchar(100);index"`
	Remark      string          `gorm:"type:varchar(500)"`
	Status      string          `gorm:"type:varchar(20);not null;default:'POSTED';index"`
	ReversedBy  *uuid.UUID      `gorm:"type:uuid"`
	TotalDebit  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCredit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Lines       []JournalEntryLine `gorm:"foreignKey:EntryID;references:ID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// JournalEntryLine is one leg of a journal entry
type JournalEntryLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	EntryID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountCode string          `gorm:"type:varchar(50);not null;index"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PartyCode   string          `gorm:"type:varchar(50)"`
	Remark      string          `gorm:"type:varchar(500)"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (JournalEntryLine) TableName() string {
	return "journal_entry_lines"
}

// PaymentVoucher records an owner payout
type PaymentVoucher struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key"`
	VoucherNumber       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierAccountCode string          `gorm:"type:varchar(50);not null;index"`
	PayeeName           string          `gorm:"type:varchar(200);not null"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reference           string          `gorm:"type:varchar(100);index"`
	JournalEntryID      *uuid.UUID      `gorm:"type:uuid;index"`
	PaymentDate         time.Time       `gorm:"not null"`
	Status              string          `gorm:"type:varchar(20);not null;default:'PAID'"`
	CancelReason        string          `gorm:"type:varchar(500)"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName returns the table name for GORM
func (PaymentVoucher) TableName() string {
	return "payment_vouchers"
}
