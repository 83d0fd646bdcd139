package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	posdomain "github.com/smallbiznis/bookkeeper/internal/pos/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() posdomain.Repository {
	return &repo{}
}

const saleColumns = `id, tenant_id, sale_number, sale_date, tender_key, is_inclusive, status, subtotal,
	cgst, sgst, cess, total_amount, journal_entry_id, posted_at, created_at, updated_at`

const lineColumns = `id, sale_id, line_number, description, quantity, unit_price, tax_rate, cess_rate,
	tax_code, base_amount, cgst, sgst, cess, total_amount, created_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sale *posdomain.Sale) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO pos_sales (`+saleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID,
		sale.TenantID,
		sale.SaleNumber,
		sale.SaleDate,
		sale.TenderKey,
		sale.IsInclusive,
		sale.Status,
		sale.Subtotal,
		sale.CGST,
		sale.SGST,
		sale.Cess,
		sale.TotalAmount,
		sale.JournalEntryID,
		sale.PostedAt,
		sale.CreatedAt,
		sale.UpdatedAt,
	).Error
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, lines []posdomain.Line) error {
	for _, line := range lines {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO pos_sale_lines (`+lineColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID,
			line.SaleID,
			line.LineNumber,
			line.Description,
			line.Quantity,
			line.UnitPrice,
			line.TaxRate,
			line.CessRate,
			line.TaxCode,
			line.BaseAmount,
			line.CGST,
			line.SGST,
			line.Cess,
			line.TotalAmount,
			line.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*posdomain.Sale, error) {
	var sale posdomain.Sale
	err := db.WithContext(ctx).Raw(
		`SELECT `+saleColumns+` FROM pos_sales WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&sale).Error
	if err != nil {
		return nil, err
	}
	if sale.ID == 0 {
		return nil, nil
	}
	return &sale, nil
}

func (r *repo) FindLines(ctx context.Context, db *gorm.DB, saleID snowflake.ID) ([]posdomain.Line, error) {
	var lines []posdomain.Line
	err := db.WithContext(ctx).Raw(
		`SELECT `+lineColumns+` FROM pos_sale_lines WHERE sale_id = ? ORDER BY line_number ASC`,
		saleID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) UpdateLineTaxes(ctx context.Context, db *gorm.DB, line *posdomain.Line) error {
	return db.WithContext(ctx).Exec(
		`UPDATE pos_sale_lines
		 SET tax_rate = ?, cess_rate = ?, base_amount = ?, cgst = ?, sgst = ?, cess = ?, total_amount = ?
		 WHERE id = ?`,
		line.TaxRate,
		line.CessRate,
		line.BaseAmount,
		line.CGST,
		line.SGST,
		line.Cess,
		line.TotalAmount,
		line.ID,
	).Error
}

func (r *repo) MarkPosted(ctx context.Context, db *gorm.DB, sale *posdomain.Sale) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE pos_sales
		 SET status = ?, subtotal = ?, cgst = ?, sgst = ?, cess = ?, total_amount = ?,
			journal_entry_id = ?, posted_at = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ? AND status = ?`,
		posdomain.StatusPosted,
		sale.Subtotal,
		sale.CGST,
		sale.SGST,
		sale.Cess,
		sale.TotalAmount,
		sale.JournalEntryID,
		sale.PostedAt,
		sale.UpdatedAt,
		sale.TenantID,
		sale.ID,
		posdomain.StatusDraft,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
