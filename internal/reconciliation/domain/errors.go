package domain

import (
	"errors"

	"github.com/smallbiznis/bookkeeper/pkg/apperror"
)

var (
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidBankAccount = errors.New("invalid_bank_account")
	ErrInvalidDate        = errors.New("invalid_statement_date")
	ErrInvalidRows        = errors.New("invalid_statement_rows")
	ErrInvalidType        = errors.New("invalid_transaction_type")
	ErrInvalidAmount      = errors.New("invalid_transaction_amount")
	ErrInvalidTolerance   = errors.New("invalid_tolerance")
	ErrInvalidCandidate   = errors.New("invalid_ledger_entry")
	ErrNotFound           = errors.New("not_found")

	ErrInProgress    = apperror.New(apperror.CodeInProgress, "bank account already has a reconciliation in progress")
	ErrNotInProgress = apperror.New(apperror.CodeNotInProgress, "reconciliation is not in progress")
	ErrMatchConflict = apperror.New(apperror.CodeMatchConflict, "bank transaction or ledger entry is already matched")
	ErrUnbalanced    = apperror.New(apperror.CodeUnbalancedReconciliation, "calculated balance differs from statement ending balance")
)

// ParseTransactionType accepts debit/credit in any case, plus the DR/CR
// abbreviations banks print on statements.
func ParseTransactionType(raw string) (TransactionType, error) {
	switch normalizeType(raw) {
	case "debit", "dr", "withdrawal":
		return TransactionDebit, nil
	case "credit", "cr", "deposit":
		return TransactionCredit, nil
	default:
		return "", ErrInvalidType
	}
}
