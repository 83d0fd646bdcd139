package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// EntryType classifies a journal entry by the document that produced it.
type EntryType string

const (
	EntryTypeStandard   EntryType = "STD"
	EntryTypeReceivable EntryType = "AR"
	EntryTypeReceipt    EntryType = "RCT"
	EntryTypePayment    EntryType = "PMT"
	EntryTypePOS        EntryType = "POS"
	EntryTypePurchase   EntryType = "PUR"
	EntryTypeInvoice    EntryType = "INV"
	EntryTypeCharge     EntryType = "CHG"
	EntryTypeRefund     EntryType = "REF"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeStandard, EntryTypeReceivable, EntryTypeReceipt, EntryTypePayment,
		EntryTypePOS, EntryTypePurchase, EntryTypeInvoice, EntryTypeCharge, EntryTypeRefund:
		return true
	default:
		return false
	}
}

// Status is draft until the entry is posted. Posted is terminal.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
)

// JournalEntry is the header of one double-entry transaction.
type JournalEntry struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID    `gorm:"column:tenant_id;not null" json:"tenant_id"`
	EntryNumber   string          `gorm:"column:entry_number;type:text;not null" json:"entry_number"`
	EntryDate     time.Time       `gorm:"column:entry_date;type:date;not null" json:"entry_date"`
	EntryType     EntryType       `gorm:"column:entry_type;type:text;not null" json:"entry_type"`
	Status        Status          `gorm:"type:text;not null" json:"status"`
	TotalDebit    decimal.Decimal `gorm:"column:total_debit;type:numeric(20,4);not null" json:"total_debit"`
	TotalCredit   decimal.Decimal `gorm:"column:total_credit;type:numeric(20,4);not null" json:"total_credit"`
	IsBalanced    bool            `gorm:"column:is_balanced;not null" json:"is_balanced"`
	ReferenceType *string         `gorm:"column:reference_type;type:text" json:"reference_type,omitempty"`
	ReferenceID   *snowflake.ID   `gorm:"column:reference_id" json:"reference_id,omitempty"`
	Memo          *string         `gorm:"type:text" json:"memo,omitempty"`
	PostedAt      *time.Time      `gorm:"column:posted_at" json:"posted_at,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
}

func (JournalEntry) TableName() string { return "journal_entries" }

// Source rebuilds the typed document reference stored on the entry.
func (e JournalEntry) Source() (SourceRef, error) {
	var refType string
	var refID snowflake.ID
	if e.ReferenceType != nil {
		refType = *e.ReferenceType
	}
	if e.ReferenceID != nil {
		refID = *e.ReferenceID
	}
	return ParseSourceRef(refType, refID)
}

// JournalLine is one debit or credit leg. Exactly one of the two amounts
// is non-zero.
type JournalLine struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	JournalEntryID snowflake.ID    `gorm:"column:journal_entry_id;not null" json:"journal_entry_id"`
	LineNumber     int             `gorm:"column:line_number;not null" json:"line_number"`
	AccountID      snowflake.ID    `gorm:"column:account_id;not null" json:"account_id"`
	DebitAmount    decimal.Decimal `gorm:"column:debit_amount;type:numeric(20,4);not null" json:"debit_amount"`
	CreditAmount   decimal.Decimal `gorm:"column:credit_amount;type:numeric(20,4);not null" json:"credit_amount"`
	CostCenterID   *snowflake.ID   `gorm:"column:cost_center_id" json:"cost_center_id,omitempty"`
	Description    *string         `gorm:"type:text" json:"description,omitempty"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
}

func (JournalLine) TableName() string { return "journal_lines" }

// Draft is everything needed to write one journal entry.
type Draft struct {
	TenantID  snowflake.ID
	EntryType EntryType
	EntryDate time.Time
	Source    SourceRef
	Memo      string
	// AutoPost flips the entry to posted and applies account balances in
	// the same transaction. Without it the entry stays a draft.
	AutoPost bool
	Lines    []DraftLine
}

// DraftLine is a leg before it has an id and line number.
type DraftLine struct {
	AccountID    snowflake.ID
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	CostCenterID *snowflake.ID
	Description  string
}

func Debit(accountID snowflake.ID, amount decimal.Decimal, description string) DraftLine {
	return DraftLine{AccountID: accountID, Debit: amount, Credit: decimal.Zero, Description: description}
}

func Credit(accountID snowflake.ID, amount decimal.Decimal, description string) DraftLine {
	return DraftLine{AccountID: accountID, Debit: decimal.Zero, Credit: amount, Description: description}
}

// EntryWithLines is a header together with its ordered lines.
type EntryWithLines struct {
	JournalEntry
	Lines []JournalLine `json:"lines"`
}
