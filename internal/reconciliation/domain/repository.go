package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertTransactions(ctx context.Context, db *gorm.DB, txns []BankTransaction) error
	FindTransaction(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*BankTransaction, error)
	FindTransactionByEntry(ctx context.Context, db *gorm.DB, tenantID, entryID snowflake.ID) (*BankTransaction, error)
	ListTransactions(ctx context.Context, db *gorm.DB, tenantID, bankAccountID snowflake.ID, unreconciledOnly bool) ([]BankTransaction, error)
	ListClaimed(ctx context.Context, db *gorm.DB, reconciliationID snowflake.ID) ([]BankTransaction, error)
	ClaimTransactions(ctx context.Context, db *gorm.DB, rec *Reconciliation) (int64, error)
	SetMatch(ctx context.Context, db *gorm.DB, txnID snowflake.ID, entryID *snowflake.ID, now time.Time) error
	FinalizeClaims(ctx context.Context, db *gorm.DB, reconciliationID snowflake.ID, now time.Time) error
	ReleaseClaims(ctx context.Context, db *gorm.DB, reconciliationID snowflake.ID, now time.Time) error

	Insert(ctx context.Context, db *gorm.DB, rec *Reconciliation) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Reconciliation, error)
	FindInProgress(ctx context.Context, db *gorm.DB, tenantID, bankAccountID snowflake.ID) (*Reconciliation, error)
	List(ctx context.Context, db *gorm.DB, tenantID, bankAccountID snowflake.ID) ([]Reconciliation, error)
	MarkCompleted(ctx context.Context, db *gorm.DB, rec *Reconciliation) (bool, error)
	MarkCancelled(ctx context.Context, db *gorm.DB, rec *Reconciliation) (bool, error)

	LedgerCandidates(ctx context.Context, db *gorm.DB, tenantID, bankAccountID snowflake.ID, upTo time.Time) ([]LedgerCandidate, error)
	FindCandidate(ctx context.Context, db *gorm.DB, tenantID, bankAccountID, entryID snowflake.ID) (*LedgerCandidate, error)
}
