package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bookkeeper/internal/reconciliation/matcher"
)

type Service interface {
	ImportStatement(ctx context.Context, tenantID, bankAccountID snowflake.ID, rows []StatementRow) ([]BankTransaction, error)
	ListTransactions(ctx context.Context, tenantID, bankAccountID snowflake.ID, unreconciledOnly bool) ([]BankTransaction, error)

	Start(ctx context.Context, tenantID snowflake.ID, req StartRequest) (*Detail, error)
	Get(ctx context.Context, tenantID, id snowflake.ID) (*Detail, error)
	List(ctx context.Context, tenantID, bankAccountID snowflake.ID) ([]Reconciliation, error)
	AutoMatch(ctx context.Context, tenantID, id snowflake.ID, tol Tolerances) (*matcher.Result, error)
	ApplyMatches(ctx context.Context, tenantID, id snowflake.ID, pairs []MatchPair) (int, error)
	ManualMatch(ctx context.Context, tenantID, id snowflake.ID, pair MatchPair) error
	Unmatch(ctx context.Context, tenantID, id, bankTransactionID snowflake.ID) error
	Complete(ctx context.Context, tenantID, id snowflake.ID, force bool) (*Reconciliation, error)
	Cancel(ctx context.Context, tenantID, id snowflake.ID) (*Reconciliation, error)
}

// StatementRow is one line of an imported statement. Amount is positive
// and Type carries the direction.
type StatementRow struct {
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

type StartRequest struct {
	BankAccountID  snowflake.ID
	StatementDate  time.Time
	OpeningBalance decimal.Decimal
	EndingBalance  decimal.Decimal
}

// Tolerances override the configured auto-match defaults when set.
type Tolerances struct {
	DateDays *int
	Amount   *decimal.Decimal
}

type MatchPair struct {
	BankTransactionID snowflake.ID `json:"bank_transaction_id"`
	LedgerEntryID     snowflake.ID `json:"ledger_entry_id"`
}
