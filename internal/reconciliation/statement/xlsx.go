// Package statement reads bank statement exports into typed rows.
package statement

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bookkeeper/internal/reconciliation/domain"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyStatement = errors.New("statement has no rows")
	ErrMissingColumns = errors.New("statement header needs a date column and either debit/credit or type/amount columns")
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02-Jan-2006",
	"02 Jan 2006",
	"2 Jan 2006",
}

type columns struct {
	date, description, reference, debit, credit, kind, amount int
}

// ParseXLSX reads the first sheet of an xlsx export. The first row is the
// header and selects the columns by name; blank rows are skipped.
func ParseXLSX(r io.Reader) ([]domain.StatementRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyStatement
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyStatement
	}

	cols, err := headerColumns(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]domain.StatementRow, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		if blank(row) {
			continue
		}
		parsed, err := parseRow(cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", idx+2, err)
		}
		out = append(out, parsed)
	}
	if len(out) == 0 {
		return nil, ErrEmptyStatement
	}
	return out, nil
}

func headerColumns(header []string) (columns, error) {
	cols := columns{-1, -1, -1, -1, -1, -1, -1}
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "date", "transaction date", "txn date", "value date":
			if cols.date < 0 {
				cols.date = i
			}
		case "description", "narration", "particulars":
			cols.description = i
		case "reference", "ref", "ref no", "cheque no":
			cols.reference = i
		case "debit", "withdrawal", "withdrawals":
			cols.debit = i
		case "credit", "deposit", "deposits":
			cols.credit = i
		case "type", "dr/cr":
			cols.kind = i
		case "amount":
			cols.amount = i
		}
	}
	split := cols.debit >= 0 && cols.credit >= 0
	typed := cols.kind >= 0 && cols.amount >= 0
	if cols.date < 0 || (!split && !typed) {
		return cols, ErrMissingColumns
	}
	return cols, nil
}

func parseRow(cols columns, row []string) (domain.StatementRow, error) {
	date, err := parseDate(cell(row, cols.date))
	if err != nil {
		return domain.StatementRow{}, err
	}
	out := domain.StatementRow{
		Date:        date,
		Description: cell(row, cols.description),
		Reference:   cell(row, cols.reference),
	}

	if cols.debit >= 0 && cols.credit >= 0 {
		debit, err := parseAmount(cell(row, cols.debit))
		if err != nil {
			return domain.StatementRow{}, err
		}
		credit, err := parseAmount(cell(row, cols.credit))
		if err != nil {
			return domain.StatementRow{}, err
		}
		switch {
		case debit.IsPositive() && credit.IsZero():
			out.Type, out.Amount = domain.TransactionDebit, debit
		case credit.IsPositive() && debit.IsZero():
			out.Type, out.Amount = domain.TransactionCredit, credit
		default:
			return domain.StatementRow{}, errors.New("exactly one of debit or credit must be set")
		}
		return out, nil
	}

	kind, err := domain.ParseTransactionType(cell(row, cols.kind))
	if err != nil {
		return domain.StatementRow{}, err
	}
	amount, err := parseAmount(cell(row, cols.amount))
	if err != nil {
		return domain.StatementRow{}, err
	}
	if !amount.IsPositive() {
		return domain.StatementRow{}, domain.ErrInvalidAmount
	}
	out.Type, out.Amount = kind, amount
	return out, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, domain.ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	// Date-typed cells come through as spreadsheet serial numbers.
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, raw)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, raw)
	}
	return amount, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
