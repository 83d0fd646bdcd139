package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/bookkeeper/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

const invoiceColumns = `id, tenant_id, customer_id, invoice_number, invoice_date, is_interstate, is_inclusive,
	status, subtotal, cgst, sgst, igst, cess, total_amount, balance_due, journal_entry_id, posted_at,
	created_at, updated_at`

const lineColumns = `id, invoice_id, line_number, description, amount, tax_rate, cess_rate, tax_code,
	revenue_key, base_amount, cgst, sgst, igst, cess, total_amount, created_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (`+invoiceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.TenantID,
		invoice.CustomerID,
		invoice.InvoiceNumber,
		invoice.InvoiceDate,
		invoice.IsInterstate,
		invoice.IsInclusive,
		invoice.Status,
		invoice.Subtotal,
		invoice.CGST,
		invoice.SGST,
		invoice.IGST,
		invoice.Cess,
		invoice.TotalAmount,
		invoice.BalanceDue,
		invoice.JournalEntryID,
		invoice.PostedAt,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, lines []invoicedomain.Line) error {
	for _, line := range lines {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO invoice_lines (`+lineColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID,
			line.InvoiceID,
			line.LineNumber,
			line.Description,
			line.Amount,
			line.TaxRate,
			line.CessRate,
			line.TaxCode,
			line.RevenueKey,
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

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindLines(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]invoicedomain.Line, error) {
	var lines []invoicedomain.Line
	err := db.WithContext(ctx).Raw(
		`SELECT `+lineColumns+` FROM invoice_lines WHERE invoice_id = ? ORDER BY line_number ASC`,
		invoiceID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) UpdateLineTaxes(ctx context.Context, db *gorm.DB, line *invoicedomain.Line) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoice_lines
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

func (r *repo) MarkPosted(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, subtotal = ?, cgst = ?, sgst = ?, igst = ?, cess = ?, total_amount = ?,
			balance_due = ?, journal_entry_id = ?, posted_at = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ? AND status = ?`,
		invoicedomain.StatusPosted,
		invoice.Subtotal,
		invoice.CGST,
		invoice.SGST,
		invoice.IGST,
		invoice.Cess,
		invoice.TotalAmount,
		invoice.BalanceDue,
		invoice.JournalEntryID,
		invoice.PostedAt,
		invoice.UpdatedAt,
		invoice.TenantID,
		invoice.ID,
		invoicedomain.StatusDraft,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) ApplyReceipt(ctx context.Context, db *gorm.DB, tenantID, invoiceID snowflake.ID, amount decimal.Decimal, updatedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET balance_due = balance_due - ?,
			status = CASE WHEN balance_due - ? <= 0 THEN ? ELSE ? END,
			updated_at = ?
		 WHERE tenant_id = ? AND id = ? AND status IN (?, ?) AND balance_due >= ?`,
		amount,
		amount,
		invoicedomain.StatusPaid,
		invoicedomain.StatusPartial,
		updatedAt,
		tenantID,
		invoiceID,
		invoicedomain.StatusPosted,
		invoicedomain.StatusPartial,
		amount,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) InsertReceipt(ctx context.Context, db *gorm.DB, receipt *invoicedomain.Receipt) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO receipts (
			id, tenant_id, invoice_id, receipt_date, amount, tds_deducted, deposit_key, reference,
			journal_entry_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID,
		receipt.TenantID,
		receipt.InvoiceID,
		receipt.ReceiptDate,
		receipt.Amount,
		receipt.TDSDeducted,
		receipt.DepositKey,
		receipt.Reference,
		receipt.JournalEntryID,
		receipt.CreatedAt,
	).Error
}

func (r *repo) ListReceipts(ctx context.Context, db *gorm.DB, tenantID, invoiceID snowflake.ID) ([]invoicedomain.Receipt, error) {
	var receipts []invoicedomain.Receipt
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, invoice_id, receipt_date, amount, tds_deducted, deposit_key, reference,
			journal_entry_id, created_at
		 FROM receipts
		 WHERE tenant_id = ? AND invoice_id = ?
		 ORDER BY created_at ASC, id ASC`,
		tenantID,
		invoiceID,
	).Scan(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}
