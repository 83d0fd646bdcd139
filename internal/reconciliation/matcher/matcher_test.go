package matcher

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(d int) time.Time {
	return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
}

func amt(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestAutoMatchWithinDateTolerance(t *testing.T) {
	bank := []BankTxn{{ID: 1, Date: date(10), Side: Debit, Amount: amt("500")}}
	ledger := []LedgerEntry{{ID: 100, Date: date(9), Side: Credit, Amount: amt("500")}}

	result := AutoMatch(bank, ledger, 3, decimal.Zero)

	require.Len(t, result.Matches, 1)
	m := result.Matches[0]
	assert.Equal(t, snowflake.ID(1), m.BankTransactionID)
	assert.Equal(t, snowflake.ID(100), m.LedgerEntryID)
	assert.Equal(t, 1, m.DateDiffDays)
	assert.True(t, m.AmountDiff.IsZero())
	assert.Equal(t, ConfidenceMedium, m.Confidence)
	assert.Empty(t, result.UnmatchedBank)
	assert.Empty(t, result.UnmatchedLedger)
}

func TestAutoMatchConfidence(t *testing.T) {
	cases := []struct {
		name       string
		ledgerDay  int
		ledgerAmt  string
		tolerance  string
		confidence Confidence
	}{
		{name: "same day exact", ledgerDay: 10, ledgerAmt: "500", tolerance: "0", confidence: ConfidenceHigh},
		{name: "same day amount off", ledgerDay: 10, ledgerAmt: "499.50", tolerance: "1", confidence: ConfidenceMedium},
		{name: "one day later", ledgerDay: 11, ledgerAmt: "500", tolerance: "0", confidence: ConfidenceMedium},
		{name: "three days earlier", ledgerDay: 7, ledgerAmt: "500", tolerance: "0", confidence: ConfidenceLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bank := []BankTxn{{ID: 1, Date: date(10), Side: Credit, Amount: amt("500")}}
			ledger := []LedgerEntry{{ID: 2, Date: date(tc.ledgerDay), Side: Debit, Amount: amt(tc.ledgerAmt)}}

			result := AutoMatch(bank, ledger, 3, amt(tc.tolerance))
			require.Len(t, result.Matches, 1)
			assert.Equal(t, tc.confidence, result.Matches[0].Confidence)
		})
	}
}

func TestAutoMatchRequiresOppositeSide(t *testing.T) {
	bank := []BankTxn{{ID: 1, Date: date(10), Side: Debit, Amount: amt("500")}}
	ledger := []LedgerEntry{{ID: 2, Date: date(10), Side: Debit, Amount: amt("500")}}

	result := AutoMatch(bank, ledger, 3, decimal.Zero)

	assert.Empty(t, result.Matches)
	assert.Len(t, result.UnmatchedBank, 1)
	assert.Len(t, result.UnmatchedLedger, 1)
}

func TestAutoMatchRejectsOutsideTolerance(t *testing.T) {
	bank := []BankTxn{
		{ID: 1, Date: date(10), Side: Credit, Amount: amt("500")},
		{ID: 2, Date: date(20), Side: Credit, Amount: amt("700")},
	}
	ledger := []LedgerEntry{
		{ID: 10, Date: date(14), Side: Debit, Amount: amt("500")},
		{ID: 11, Date: date(20), Side: Debit, Amount: amt("700.02")},
	}

	result := AutoMatch(bank, ledger, 3, amt("0.01"))

	assert.Empty(t, result.Matches)
	assert.Len(t, result.UnmatchedBank, 2)
	assert.Len(t, result.UnmatchedLedger, 2)
}

func TestAutoMatchBoundaryIsInclusive(t *testing.T) {
	bank := []BankTxn{{ID: 1, Date: date(10), Side: Credit, Amount: amt("500")}}
	ledger := []LedgerEntry{{ID: 10, Date: date(13), Side: Debit, Amount: amt("500.01")}}

	result := AutoMatch(bank, ledger, 3, amt("0.01"))

	require.Len(t, result.Matches, 1)
	assert.Equal(t, 3, result.Matches[0].DateDiffDays)
	assert.Equal(t, "0.01", result.Matches[0].AmountDiff.StringFixed(2))
	assert.Equal(t, ConfidenceLow, result.Matches[0].Confidence)
}

func TestAutoMatchConsumesEachEntryOnce(t *testing.T) {
	bank := []BankTxn{
		{ID: 1, Date: date(10), Side: Credit, Amount: amt("100")},
		{ID: 2, Date: date(10), Side: Credit, Amount: amt("100")},
		{ID: 3, Date: date(10), Side: Credit, Amount: amt("100")},
	}
	ledger := []LedgerEntry{
		{ID: 10, Date: date(10), Side: Debit, Amount: amt("100")},
		{ID: 11, Date: date(11), Side: Debit, Amount: amt("100")},
	}

	result := AutoMatch(bank, ledger, 3, decimal.Zero)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, snowflake.ID(10), result.Matches[0].LedgerEntryID)
	assert.Equal(t, snowflake.ID(11), result.Matches[1].LedgerEntryID)
	require.Len(t, result.UnmatchedBank, 1)
	assert.Equal(t, snowflake.ID(3), result.UnmatchedBank[0].ID)
}

func TestAutoMatchIsFirstFit(t *testing.T) {
	// The day-9 line takes entry 10 although entry 10 is an exact match
	// for the day-12 line, which is then left without a candidate.
	bank := []BankTxn{
		{ID: 1, Date: date(9), Side: Debit, Amount: amt("250")},
		{ID: 2, Date: date(12), Side: Debit, Amount: amt("250")},
	}
	ledger := []LedgerEntry{
		{ID: 10, Date: date(12), Side: Credit, Amount: amt("250")},
	}

	result := AutoMatch(bank, ledger, 3, decimal.Zero)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, snowflake.ID(1), result.Matches[0].BankTransactionID)
	assert.Equal(t, ConfidenceLow, result.Matches[0].Confidence)
	require.Len(t, result.UnmatchedBank, 1)
	assert.Equal(t, snowflake.ID(2), result.UnmatchedBank[0].ID)
}

func TestAutoMatchSortsByDateWithoutMutatingInput(t *testing.T) {
	bank := []BankTxn{
		{ID: 2, Date: date(15), Side: Credit, Amount: amt("80")},
		{ID: 1, Date: date(5), Side: Credit, Amount: amt("80")},
	}
	ledger := []LedgerEntry{
		{ID: 11, Date: date(15), Side: Debit, Amount: amt("80")},
		{ID: 10, Date: date(5), Side: Debit, Amount: amt("80")},
	}

	result := AutoMatch(bank, ledger, 10, decimal.Zero)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, snowflake.ID(1), result.Matches[0].BankTransactionID)
	assert.Equal(t, snowflake.ID(10), result.Matches[0].LedgerEntryID)
	assert.Equal(t, snowflake.ID(2), result.Matches[1].BankTransactionID)
	assert.Equal(t, snowflake.ID(11), result.Matches[1].LedgerEntryID)

	assert.Equal(t, snowflake.ID(2), bank[0].ID)
	assert.Equal(t, snowflake.ID(11), ledger[0].ID)
}

func TestCountByConfidence(t *testing.T) {
	result := Result{Matches: []Match{
		{Confidence: ConfidenceHigh},
		{Confidence: ConfidenceHigh},
		{Confidence: ConfidenceLow},
	}}
	assert.Equal(t, map[string]int{"high": 2, "low": 1}, result.CountByConfidence())
}

func TestAutoMatchEmpty(t *testing.T) {
	result := AutoMatch(nil, nil, 3, decimal.Zero)
	assert.NotNil(t, result.Matches)
	assert.Empty(t, result.Matches)
	assert.Empty(t, result.UnmatchedBank)
	assert.Empty(t, result.UnmatchedLedger)
}
