package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	purchasedomain "github.com/smallbiznis/bookkeeper/internal/purchase/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() purchasedomain.Repository {
	return &repo{}
}

const billColumns = `id, tenant_id, vendor_id, bill_number, bill_date, is_interstate, is_inclusive,
	status, subtotal, cgst, sgst, igst, cess, total_amount, balance_due, journal_entry_id, posted_at,
	created_at, updated_at`

const lineColumns = `id, bill_id, line_number, description, amount, tax_rate, cess_rate, tax_code,
	expense_key, base_amount, cgst, sgst, igst, cess, total_amount, created_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, bill *purchasedomain.Bill) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO purchase_bills (`+billColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID,
		bill.TenantID,
		bill.VendorID,
		bill.BillNumber,
		bill.BillDate,
		bill.IsInterstate,
		bill.IsInclusive,
		bill.Status,
		bill.Subtotal,
		bill.CGST,
		bill.SGST,
		bill.IGST,
		bill.Cess,
		bill.TotalAmount,
		bill.BalanceDue,
		bill.JournalEntryID,
		bill.PostedAt,
		bill.CreatedAt,
		bill.UpdatedAt,
	).Error
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, lines []purchasedomain.Line) error {
	for _, line := range lines {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO purchase_bill_lines (`+lineColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID,
			line.BillID,
			line.LineNumber,
			line.Description,
			line.Amount,
			line.TaxRate,
			line.CessRate,
			line.TaxCode,
			line.ExpenseKey,
			line.BaseAmount,
			line.CGST,
			line.SGST,
			line.IGST,
			line.Cess,
			line.TotalAmount,
			line.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*purchasedomain.Bill, error) {
	var bill purchasedomain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+` FROM purchase_bills WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&bill).Error
	if err != nil {
		return nil, err
	}
	if bill.ID == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repo) FindLines(ctx context.Context, db *gorm.DB, billID snowflake.ID) ([]purchasedomain.Line, error) {
	var lines []purchasedomain.Line
	err := db.WithContext(ctx).Raw(
		`SELECT `+lineColumns+` FROM purchase_bill_lines WHERE bill_id = ? ORDER BY line_number ASC`,
		billID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) UpdateLineTaxes(ctx context.Context, db *gorm.DB, line *purchasedomain.Line) error {
	return db.WithContext(ctx).Exec(
		`UPDATE purchase_bill_lines
		 SET tax_rate = ?, cess_rate = ?, base_amount = ?, cgst = ?, sgst = ?, igst = ?, cess = ?, total_amount = ?
		 WHERE id = ?`,
		line.TaxRate,
		line.CessRate,
		line.BaseAmount,
		line.CGST,
		line.SGST,
		line.IGST,
		line.Cess,
		line.TotalAmount,
		line.ID,
	).Error
}

func (r *repo) MarkPosted(ctx context.Context, db *gorm.DB, bill *purchasedomain.Bill) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE purchase_bills
		 SET status = ?, subtotal = ?, cgst = ?, sgst = ?, igst = ?, cess = ?, total_amount = ?,
			balance_due = ?, journal_entry_id = ?, posted_at = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ? AND status = ?`,
		purchasedomain.StatusPosted,
		bill.Subtotal,
		bill.CGST,
		bill.SGST,
		bill.IGST,
		bill.Cess,
		bill.TotalAmount,
		bill.BalanceDue,
		bill.JournalEntryID,
		bill.PostedAt,
		bill.UpdatedAt,
		bill.TenantID,
		bill.ID,
		purchasedomain.StatusDraft,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) ApplyPayment(ctx context.Context, db *gorm.DB, tenantID, billID snowflake.ID, amount decimal.Decimal, updatedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE purchase_bills
		 SET balance_due = balance_due - ?,
			status = CASE WHEN balance_due - ? <= 0 THEN ? ELSE ? END,
			updated_at = ?
		 WHERE tenant_id = ? AND id = ? AND status IN (?, ?) AND balance_due >= ?`,
		amount,
		amount,
		purchasedomain.StatusPaid,
		purchasedomain.StatusPartial,
		updatedAt,
		tenantID,
		billID,
		purchasedomain.StatusPosted,
		purchasedomain.StatusPartial,
		amount,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *purchasedomain.VendorPayment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO vendor_payments (
			id, tenant_id, bill_id, payment_date, amount, tds_withheld, paid_from_key, reference,
			journal_entry_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.TenantID,
		payment.BillID,
		payment.PaymentDate,
		payment.Amount,
		payment.TDSWithheld,
		payment.PaidFromKey,
		payment.Reference,
		payment.JournalEntryID,
		payment.CreatedAt,
	).Error
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, tenantID, billID snowflake.ID) ([]purchasedomain.VendorPayment, error) {
	var payments []purchasedomain.VendorPayment
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, bill_id, payment_date, amount, tds_withheld, paid_from_key, reference,
			journal_entry_id, created_at
		 FROM vendor_payments
		 WHERE tenant_id = ? AND bill_id = ?
		 ORDER BY created_at ASC, id ASC`,
		tenantID,
		billID,
	).Scan(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
