// Package billing defines the ports the reservation and settlement
// domains use to reach the accounting subsystem. Implementations live
// in infrastructure.
package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLine is one line on a guest invoice
type InvoiceLine struct {
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// InvoiceRequest asks the accounting subsystem to raise a guest invoice
type InvoiceRequest struct {
	BillingPartyID    uuid.UUID
	ReservationID     uuid.UUID
	ReservationNumber string
	PostingDate       time.Time
	Lines             []InvoiceLine
}

// InvoiceResult identifies the raised invoice
type InvoiceResult struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	GrandTotal    decimal.Decimal
}

// InvoiceService raises and voids guest invoices
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceResult, error)
	CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) error
}

// JournalLine is one leg of a journal entry
type JournalLine struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	PartyCode   string
	Remark      string
}

// JournalRequest asks the accounting subsystem to post a journal entry
type JournalRequest struct {
	PostingDate time.Time
	Reference   string
	Remark      string
	Lines       []JournalLine
}

// LedgerService posts settlement journals to the general ledger
type LedgerService interface {
	PostJournal(ctx context.Context, req JournalRequest) (uuid.UUID, error)
	ReverseJournal(ctx context.Context, journalID uuid.UUID, reason string) error
}

// PaymentRequest asks the accounting subsystem to pay an owner. The
// payment references the journal entry that posted the payable.
type PaymentRequest struct {
	SupplierAccountCode string
	OwnerName           string
	Amount              decimal.Decimal
	Reference           string
	JournalEntryID      uuid.UUID
	PaymentDate         time.Time
}

// PaymentService creates and voids owner payout vouchers
type PaymentService interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (uuid.UUID, error)
	CancelPayment(ctx context.Context, voucherID uuid.UUID, reason string) error
}

// Notifier delivers settlement statements to owners
type Notifier interface {
	NotifySettlementPosted(ctx context.Context, ownerID uuid.UUID, settlementNumber string, netPayable decimal.Decimal) error
}
