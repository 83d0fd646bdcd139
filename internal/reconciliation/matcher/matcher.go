// Package matcher proposes pairings between bank statement lines and
// ledger entries. It never touches storage.
package matcher

import (
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Side is a debit or credit, read from the bank's side for statement
// lines and from the ledger's side for entries.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type BankTxn struct {
	ID     snowflake.ID    `json:"id"`
	Date   time.Time       `json:"date"`
	Side   Side            `json:"side"`
	Amount decimal.Decimal `json:"amount"`
}

type LedgerEntry struct {
	ID     snowflake.ID    `json:"id"`
	Date   time.Time       `json:"date"`
	Side   Side            `json:"side"`
	Amount decimal.Decimal `json:"amount"`
}

type Match struct {
	BankTransactionID snowflake.ID    `json:"bank_transaction_id"`
	LedgerEntryID     snowflake.ID    `json:"ledger_entry_id"`
	AmountDiff        decimal.Decimal `json:"amount_diff"`
	DateDiffDays      int             `json:"date_diff_days"`
	Confidence        Confidence      `json:"confidence"`
}

type Result struct {
	Matches         []Match       `json:"matches"`
	UnmatchedBank   []BankTxn     `json:"unmatched_bank"`
	UnmatchedLedger []LedgerEntry `json:"unmatched_ledger"`
}

// CountByConfidence tallies matches per confidence label.
func (r Result) CountByConfidence() map[string]int {
	out := map[string]int{}
	for _, m := range r.Matches {
		out[string(m.Confidence)]++
	}
	return out
}

// AutoMatch pairs bank lines with ledger entries first-fit. Bank lines are
// taken in ascending date order and each claims the earliest unused ledger
// entry on the opposite side whose amount and date fall within tolerance.
//
// The result is not an optimal assignment. An early bank line can take an
// entry that a later line matched exactly, leaving the later line
// unmatched or on a worse candidate.
//
// Inputs are copied before sorting and are never modified.
func AutoMatch(bank []BankTxn, ledger []LedgerEntry, dateToleranceDays int, amountTolerance decimal.Decimal) Result {
	if dateToleranceDays < 0 {
		dateToleranceDays = 0
	}
	amountTolerance = amountTolerance.Abs()

	bankSorted := append([]BankTxn(nil), bank...)
	sort.SliceStable(bankSorted, func(i, j int) bool {
		return day(bankSorted[i].Date).Before(day(bankSorted[j].Date))
	})
	ledgerSorted := append([]LedgerEntry(nil), ledger...)
	sort.SliceStable(ledgerSorted, func(i, j int) bool {
		return day(ledgerSorted[i].Date).Before(day(ledgerSorted[j].Date))
	})

	used := make([]bool, len(ledgerSorted))
	result := Result{
		Matches:         []Match{},
		UnmatchedBank:   []BankTxn{},
		UnmatchedLedger: []LedgerEntry{},
	}

	for _, txn := range bankSorted {
		matched := false
		for j, entry := range ledgerSorted {
			if used[j] || entry.Side != opposite(txn.Side) {
				continue
			}
			amountDiff := txn.Amount.Sub(entry.Amount).Abs()
			if amountDiff.GreaterThan(amountTolerance) {
				continue
			}
			dateDiff := daysBetween(txn.Date, entry.Date)
			if dateDiff > dateToleranceDays {
				continue
			}

			used[j] = true
			matched = true
			result.Matches = append(result.Matches, Match{
				BankTransactionID: txn.ID,
				LedgerEntryID:     entry.ID,
				AmountDiff:        amountDiff,
				DateDiffDays:      dateDiff,
				Confidence:        confidence(amountDiff, dateDiff),
			})
			break
		}
		if !matched {
			result.UnmatchedBank = append(result.UnmatchedBank, txn)
		}
	}

	for j, entry := range ledgerSorted {
		if !used[j] {
			result.UnmatchedLedger = append(result.UnmatchedLedger, entry)
		}
	}
	return result
}

func confidence(amountDiff decimal.Decimal, dateDiff int) Confidence {
	switch {
	case amountDiff.IsZero() && dateDiff == 0:
		return ConfidenceHigh
	case dateDiff <= 1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// opposite maps a bank-reported side to the ledger side that mirrors it.
func opposite(side Side) Side {
	if side == Debit {
		return Credit
	}
	return Debit
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	diff := int(day(a).Sub(day(b)).Hours() / 24)
	if diff < 0 {
		return -diff
	}
	return diff
}
