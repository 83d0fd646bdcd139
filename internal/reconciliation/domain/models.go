// Package domain contains bank statement lines and the reconciliations
// that match them against the ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction reported by the bank: debit is money
// leaving the account, credit is money arriving.
type TransactionType string

const (
	TransactionDebit  TransactionType = "debit"
	TransactionCredit TransactionType = "credit"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// BankTransaction is one imported statement line. ReconciliationID is set
// while an in-progress reconciliation has claimed it; IsReconciled flips
// to true only when that reconciliation completes.
type BankTransaction struct {
	ID                   snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID             snowflake.ID    `gorm:"column:tenant_id;not null" json:"tenant_id"`
	BankAccountID        snowflake.ID    `gorm:"column:bank_account_id;not null" json:"bank_account_id"`
	TransactionDate      time.Time       `gorm:"column:transaction_date;type:date;not null" json:"transaction_date"`
	TransactionType      TransactionType `gorm:"column:transaction_type;type:text;not null" json:"transaction_type"`
	Amount               decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	Description          *string         `gorm:"type:text" json:"description,omitempty"`
	Reference            *string         `gorm:"type:text" json:"reference,omitempty"`
	IsReconciled         bool            `gorm:"column:is_reconciled;not null" json:"is_reconciled"`
	MatchedLedgerEntryID *snowflake.ID   `gorm:"column:matched_ledger_entry_id" json:"matched_ledger_entry_id,omitempty"`
	ReconciliationID     *snowflake.ID   `gorm:"column:reconciliation_id" json:"reconciliation_id,omitempty"`
	CreatedAt            time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"not null" json:"updated_at"`
}

func (BankTransaction) TableName() string { return "bank_transactions" }

type Reconciliation struct {
	ID                      snowflake.ID     `gorm:"primaryKey" json:"id"`
	TenantID                snowflake.ID     `gorm:"column:tenant_id;not null" json:"tenant_id"`
	BankAccountID           snowflake.ID     `gorm:"column:bank_account_id;not null" json:"bank_account_id"`
	StatementDate           time.Time        `gorm:"column:statement_date;type:date;not null" json:"statement_date"`
	StatementOpeningBalance decimal.Decimal  `gorm:"column:statement_opening_balance;type:numeric(20,4);not null" json:"statement_opening_balance"`
	StatementEndingBalance  decimal.Decimal  `gorm:"column:statement_ending_balance;type:numeric(20,4);not null" json:"statement_ending_balance"`
	Status                  Status           `gorm:"type:text;not null" json:"status"`
	ReconciledBalance       *decimal.Decimal `gorm:"column:reconciled_balance;type:numeric(20,4)" json:"reconciled_balance,omitempty"`
	DifferenceAmount        *decimal.Decimal `gorm:"column:difference_amount;type:numeric(20,4)" json:"difference_amount,omitempty"`
	Forced                  bool             `gorm:"not null" json:"forced"`
	CompletedAt             *time.Time       `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CancelledAt             *time.Time       `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt               time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time        `gorm:"not null" json:"updated_at"`
}

func (Reconciliation) TableName() string { return "reconciliations" }

// LedgerCandidate is the net movement of one posted journal entry on the
// bank account. Net is debit minus credit.
type LedgerCandidate struct {
	JournalEntryID snowflake.ID    `gorm:"column:journal_entry_id"`
	EntryNumber    string          `gorm:"column:entry_number"`
	EntryDate      time.Time       `gorm:"column:entry_date"`
	Net            decimal.Decimal `gorm:"column:net"`
}

// Detail is a reconciliation with the bank lines it has claimed.
type Detail struct {
	Reconciliation
	Transactions []BankTransaction `json:"transactions"`
}
