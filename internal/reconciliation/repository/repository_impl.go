package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	recdomain "github.com/smallbiznis/bookkeeper/internal/reconciliation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() recdomain.Repository {
	return &repo{}
}

const txnColumns = `id, tenant_id, bank_account_id, transaction_date, transaction_type, amount, description,
	reference, is_reconciled, matched_ledger_entry_id, reconciliation_id, created_at, updated_at`

const recColumns = `id, tenant_id, bank_account_id, statement_date, statement_opening_balance,
	statement_ending_balance, status, reconciled_balance, difference_amount, forced, completed_at,
	cancelled_at, created_at, updated_at`

func (r *repo) InsertTransactions(ctx context.Context, db *gorm.DB, txns []recdomain.BankTransaction) error {
	for _, txn := range txns {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO bank_transactions (`+txnColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			txn.ID,
			txn.TenantID,
			txn.BankAccountID,
			txn.TransactionDate,
			txn.TransactionType,
			txn.Amount,
			txn.Description,
			txn.Reference,
			txn.IsReconciled,
			txn.MatchedLedgerEntryID,
			txn.ReconciliationID,
			txn.CreatedAt,
			txn.UpdatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindTransaction(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*recdomain.BankTransaction, error) {
	var txn recdomain.BankTransaction
	err := db.WithContext(ctx).Raw(
		`SELECT `+txnColumns+` FROM bank_transactions WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	).Scan(&txn).Error
	if err != nil {
		return nil, err
	}
	if txn.ID == 0 {
		return nil, nil
	}
	return &txn, nil
}

func (r *repo) FindTransactionByEntry(ctx context.Context, db *gorm.DB, tenantID, entryID snowflake.ID) (*recdomain.BankTransaction, error) {
	var txn recdomain.BankTransaction
	err := db.WithContext(ctx).Raw(
		`SELECT `+txnColumns+` FROM bank_transactions WHERE tenant_id = ? AND matched_ledger_entry_id = ?`,
		tenantID, entryID,
	).Scan(&txn).Error
	if err != nil {
		return nil, err
	}
	if txn.ID == 0 {
		return nil, nil
	}
	return &txn, nil
}

func (r *repo) ListTransactions(ctx context.Context, db *gorm.DB, tenantID, bankAccountID snowflake.ID, unreconciledOnly bool) ([]recdomain.BankTransaction, error) {
	query := `SELECT ` + txnColumns + ` FROM bank_transactions WHERE tenant_id = ? AND bank_account_id = ?`
	if unreconciledOnly {
		query += ` AND is_reconciled = FALSE`
	}
	query += ` ORDER BY transaction_date ASC, id ASC`

	var txns []recdomain.BankTransaction
	if err := db.WithContext(ctx).Raw(query, tenantID, bankAccountID).Scan(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repo) ListClaimed(ctx context.Context, db *gorm.DB, reconciliationID snowflake.ID) ([]recdomain.BankTransaction, error) {
	var txns []recdomain.BankTransaction
	err := db.WithContext(ctx).Raw(
		`SELECT `+txnColumns+` FROM bank_transactions
		 WHERE reconciliation_id = ?
		 ORDER BY transaction_date ASC, id ASC`,
		reconciliationID,
	).Scan(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// ClaimTransactions attaches every unreconciled, unclaimed line dated on
// or before the statement date to rec.
func (r *repo) ClaimTransactions(ctx context.Context, db *gorm.DB, rec *recdomain.Reconciliation) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE bank_transactions
		 SET reconciliation_id = ?, updated_at = ?
		 WHERE tenant_id = ? AND bank_account_id = ? AND is_reconciled = FALSE
			AND reconciliation_id IS NULL AND transaction_date <= ?`,
		rec.ID,
		rec.UpdatedAt,
		rec.TenantID,
		rec.BankAccountID,
		rec.StatementDate,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) SetMatch(ctx context.Context, db *gorm.DB, txnID snowflake.ID, entryID *snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bank_transactions SET matched_ledger_entry_id = ?, updated_at = ? WHERE id = ?`,
		entryID, now, txnID,
	).Error
}

// FinalizeClaims marks matched lines reconciled and hands unmatched ones
// back to the pool for the next statement.
func (r *repo) FinalizeClaims(ctx context.Context, db *gorm.DB, reconciliationID snowflake.ID, now time.Time) error {
	if err := db.WithContext(ctx).Exec(
		`UPDATE bank_transactions SET is_reconciled = TRUE, updated_at = ?
		 WHERE reconciliation_id = ? AND matched_ledger_entry_id IS NOT NULL`,
		now, reconciliationID,
	).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		`UPDATE bank_transactions SET reconciliation_id = NULL, updated_at = ?
		 WHERE reconciliation_id = ? AND matched_ledger_entry_id IS NULL`,
		now, reconciliationID,
	).Error
}

func (r *repo) ReleaseClaims(ctx context.Context, db *gorm.DB, reconciliationID snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bank_transactions
		 SET reconciliation_id = NULL, matched_ledger_entry_id = NULL, updated_at = ?
		 WHERE reconciliation_id = ? AND is_reconciled = FALSE`,
		now, reconciliationID,
	).Error
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rec *recdomain.Reconciliation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO reconciliations (`+recColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.TenantID,
		rec.BankAccountID,
		rec.StatementDate,
		rec.StatementOpeningBalance,
		rec.StatementEndingBalance,
		rec.Status,
		rec.ReconciledBalance,
		rec.DifferenceAmount,
		rec.Forced,
		rec.CompletedAt,
		rec.CancelledAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*recdomain.Reconciliation, error) {
	var rec recdomain.Reconciliation
	err := db.WithContext(ctx).Raw(
		`SELECT `+recColumns+` FROM reconciliations WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) FindInProgress(ctx context.Context, db *gorm.DB, tenantID, bankAccountID snowflake.ID) (*recdomain.Reconciliation, error) {
	var rec recdomain.Reconciliation
	err := db.WithContext(ctx).Raw(
		`SELECT `+recColumns+` FROM reconciliations
		 WHERE tenant_id = ? AND bank_account_id = ? AND status = ?`,
		tenantID, bankAccountID, recdomain.StatusInProgress,
	).Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == 0 {
		return nil, nil
	}
	return &rec, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID, bankAccountID snowflake.ID) ([]recdomain.Reconciliation, error) {
	query := `SELECT ` + recColumns + ` FROM reconciliations WHERE tenant_id = ?`
	args := []any{tenantID}
	if bankAccountID != 0 {
		query += ` AND bank_account_id = ?`
		args = append(args, bankAccountID)
	}
	query += ` ORDER BY statement_date DESC, id DESC`

	var recs []recdomain.Reconciliation
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *repo) MarkCompleted(ctx context.Context, db *gorm.DB, rec *recdomain.Reconciliation) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE reconciliations
		 SET status = ?, reconciled_balance = ?, difference_amount = ?, forced = ?,
			completed_at = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ? AND status = ?`,
		recdomain.StatusCompleted,
		rec.ReconciledBalance,
		rec.DifferenceAmount,
		rec.Forced,
		rec.CompletedAt,
		rec.UpdatedAt,
		rec.TenantID,
		rec.ID,
		recdomain.StatusInProgress,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) MarkCancelled(ctx context.Context, db *gorm.DB, rec *recdomain.Reconciliation) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE reconciliations SET status = ?, cancelled_at = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ? AND status = ?`,
		recdomain.StatusCancelled,
		rec.CancelledAt,
		rec.UpdatedAt,
		rec.TenantID,
		rec.ID,
		recdomain.StatusInProgress,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

const candidateQuery = `SELECT je.id AS journal_entry_id, je.entry_number, je.entry_date,
		SUM(jl.debit_amount - jl.credit_amount) AS net
	 FROM journal_entries je
	 JOIN journal_lines jl ON jl.journal_entry_id = je.id
	 WHERE je.tenant_id = ? AND je.status = ? AND jl.account_id = ?`

// LedgerCandidates returns posted entries that move the bank account, are
// dated on or before upTo and are not yet matched to any statement line.
func (r *repo) LedgerCandidates(ctx context.Context, db *gorm.DB, tenantID, bankAccountID snowflake.ID, upTo time.Time) ([]recdomain.LedgerCandidate, error) {
	var out []recdomain.LedgerCandidate
	err := db.WithContext(ctx).Raw(
		candidateQuery+`
			AND je.entry_date <= ?
			AND NOT EXISTS (SELECT 1 FROM bank_transactions bt WHERE bt.matched_ledger_entry_id = je.id)
		 GROUP BY je.id, je.entry_number, je.entry_date
		 ORDER BY je.entry_date ASC, je.id ASC`,
		tenantID, ledgerdomain.StatusPosted, bankAccountID, upTo,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) FindCandidate(ctx context.Context, db *gorm.DB, tenantID, bankAccountID, entryID snowflake.ID) (*recdomain.LedgerCandidate, error) {
	var out recdomain.LedgerCandidate
	err := db.WithContext(ctx).Raw(
		candidateQuery+` AND je.id = ?
		 GROUP BY je.id, je.entry_number, je.entry_date`,
		tenantID, ledgerdomain.StatusPosted, bankAccountID, entryID,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if out.JournalEntryID == 0 {
		return nil, nil
	}
	return &out, nil
}
