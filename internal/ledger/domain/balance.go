package domain

import "github.com/shopspring/decimal"

// BalanceEpsilon is the largest debit/credit gap still treated as balanced.
var BalanceEpsilon = decimal.New(1, -2)

// Totals are the summed sides of an entry.
type Totals struct {
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Balanced bool
}

func IsBalanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().LessThan(BalanceEpsilon)
}

// ValidateLines checks the shape of each leg: a real account and exactly
// one strictly positive side.
func ValidateLines(lines []DraftLine) error {
	if len(lines) < 2 {
		return ErrInvalidEntryLines
	}
	for _, line := range lines {
		if line.AccountID == 0 {
			return ErrInvalidAccount
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return ErrInvalidLineAmount
		}
		if line.Debit.IsZero() == line.Credit.IsZero() {
			return ErrInvalidLineAmount
		}
	}
	return nil
}

// ValidateBalanced reports ErrNotBalanced when the draft legs do not net
// to zero.
func ValidateBalanced(lines []DraftLine) (Totals, error) {
	totals := Totals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, line := range lines {
		totals.Debit = totals.Debit.Add(line.Debit)
		totals.Credit = totals.Credit.Add(line.Credit)
	}
	totals.Balanced = IsBalanced(totals.Debit, totals.Credit)
	if !totals.Balanced {
		return totals, ErrNotBalanced
	}
	return totals, nil
}

// SumLines totals persisted lines.
func SumLines(lines []JournalLine) Totals {
	totals := Totals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, line := range lines {
		totals.Debit = totals.Debit.Add(line.DebitAmount)
		totals.Credit = totals.Credit.Add(line.CreditAmount)
	}
	totals.Balanced = IsBalanced(totals.Debit, totals.Credit)
	return totals
}
