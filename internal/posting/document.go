// Package posting turns business documents into balanced journal entries.
// Every posting resolves its accounts and taxes first, then writes the
// entry and updates the source document in one transaction, and finally
// publishes a domain event once the transaction has committed.
package posting

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
)

// Document is a closed set of postable inputs. Only the types declared in
// this file implement it.
type Document interface {
	entryType() ledgerdomain.EntryType
}

// InvoiceDoc posts a draft sales invoice.
type InvoiceDoc struct {
	InvoiceID snowflake.ID
}

// ReceiptDoc records money received against a posted invoice. Amount is
// the gross amount settled; TDS of it was withheld by the customer.
type ReceiptDoc struct {
	InvoiceID   snowflake.ID
	ReceiptDate time.Time
	Amount      decimal.Decimal
	TDS         decimal.Decimal
	// DepositKey names the account the money landed in, bank when empty.
	DepositKey accountdomain.Key
	Reference  string
}

// PurchaseDoc posts a draft purchase bill.
type PurchaseDoc struct {
	BillID snowflake.ID
}

// PaymentDoc records a payment to a vendor against a posted bill.
type PaymentDoc struct {
	BillID      snowflake.ID
	PaymentDate time.Time
	Amount      decimal.Decimal
	TDS         decimal.Decimal
	// PaidFromKey names the account the money left, bank when empty.
	PaidFromKey accountdomain.Key
	Reference   string
}

// PosSaleDoc posts a draft point-of-sale ticket.
type PosSaleDoc struct {
	SaleID snowflake.ID
}

// ManualDoc is a hand-keyed journal entry. With Draft set the entry is
// stored unposted and can be posted later with Engine.PostDraft.
type ManualDoc struct {
	EntryDate time.Time
	Memo      string
	Lines     []ManualLine
	Draft     bool
}

type ManualLine struct {
	AccountID   snowflake.ID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

func (InvoiceDoc) entryType() ledgerdomain.EntryType  { return ledgerdomain.EntryTypeInvoice }
func (ReceiptDoc) entryType() ledgerdomain.EntryType  { return ledgerdomain.EntryTypeReceipt }
func (PurchaseDoc) entryType() ledgerdomain.EntryType { return ledgerdomain.EntryTypePurchase }
func (PaymentDoc) entryType() ledgerdomain.EntryType  { return ledgerdomain.EntryTypePayment }
func (PosSaleDoc) entryType() ledgerdomain.EntryType  { return ledgerdomain.EntryTypePOS }
func (ManualDoc) entryType() ledgerdomain.EntryType   { return ledgerdomain.EntryTypeStandard }

// Result identifies the journal entry a posting produced. DocumentID is
// the receipt or vendor payment created by the posting, or the posted
// document itself.
type Result struct {
	JournalEntryID snowflake.ID        `json:"journal_entry_id"`
	EntryNumber    string              `json:"entry_number"`
	Status         ledgerdomain.Status `json:"status"`
	DocumentID     snowflake.ID        `json:"document_id"`
}

func newResult(entry *ledgerdomain.EntryWithLines, documentID snowflake.ID) *Result {
	return &Result{
		JournalEntryID: entry.ID,
		EntryNumber:    entry.EntryNumber,
		Status:         entry.Status,
		DocumentID:     documentID,
	}
}
