package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ledgerdomain.Repository {
	return &repo{}
}

const entryColumns = `id, tenant_id, entry_number, entry_date, entry_type, status, total_debit, total_credit,
	is_balanced, reference_type, reference_id, memo, posted_at, created_at`

func (r *repo) NextEntryNumber(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (int64, error) {
	var next int64
	err := db.WithContext(ctx).Raw(
		`INSERT INTO journal_sequences (tenant_id, last_value)
		 VALUES (?, 1)
		 ON CONFLICT (tenant_id)
		 DO UPDATE SET last_value = journal_sequences.last_value + 1
		 RETURNING last_value`,
		tenantID,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repo) InsertEntry(ctx context.Context, db *gorm.DB, entry *ledgerdomain.JournalEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO journal_entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.TenantID,
		entry.EntryNumber,
		entry.EntryDate,
		entry.EntryType,
		entry.Status,
		entry.TotalDebit,
		entry.TotalCredit,
		entry.IsBalanced,
		entry.ReferenceType,
		entry.ReferenceID,
		entry.Memo,
		entry.PostedAt,
		entry.CreatedAt,
	).Error
}

func (r *repo) InsertLines(ctx context.Context, db *gorm.DB, lines []ledgerdomain.JournalLine) error {
	for _, line := range lines {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO journal_lines (
				id, journal_entry_id, line_number, account_id, debit_amount, credit_amount,
				cost_center_id, description, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID,
			line.JournalEntryID,
			line.LineNumber,
			line.AccountID,
			line.DebitAmount,
			line.CreditAmount,
			line.CostCenterID,
			line.Description,
			line.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) UpdateTotals(ctx context.Context, db *gorm.DB, entryID snowflake.ID, totals ledgerdomain.Totals) error {
	return db.WithContext(ctx).Exec(
		`UPDATE journal_entries SET total_debit = ?, total_credit = ?, is_balanced = ? WHERE id = ?`,
		totals.Debit,
		totals.Credit,
		totals.Balanced,
		entryID,
	).Error
}

func (r *repo) MarkPosted(ctx context.Context, db *gorm.DB, tenantID, entryID snowflake.ID, postedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE journal_entries
		 SET status = ?, posted_at = ?
		 WHERE tenant_id = ? AND id = ? AND status = ? AND is_balanced = ?`,
		ledgerdomain.StatusPosted,
		postedAt,
		tenantID,
		entryID,
		ledgerdomain.StatusDraft,
		true,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*ledgerdomain.JournalEntry, error) {
	var entry ledgerdomain.JournalEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+` FROM journal_entries WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) FindLines(ctx context.Context, db *gorm.DB, entryID snowflake.ID) ([]ledgerdomain.JournalLine, error) {
	var lines []ledgerdomain.JournalLine
	err := db.WithContext(ctx).Raw(
		`SELECT id, journal_entry_id, line_number, account_id, debit_amount, credit_amount,
			cost_center_id, description, created_at
		 FROM journal_lines
		 WHERE journal_entry_id = ?
		 ORDER BY line_number ASC`,
		entryID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter ledgerdomain.ListFilter) ([]ledgerdomain.JournalEntry, error) {
	var items []ledgerdomain.JournalEntry
	stmt := db.WithContext(ctx).
		Model(&ledgerdomain.JournalEntry{}).
		Where("tenant_id = ?", filter.TenantID)

	if filter.EntryType != "" {
		stmt = stmt.Where("entry_type = ?", filter.EntryType)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		stmt = stmt.Where("entry_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		stmt = stmt.Where("entry_date <= ?", filter.To.UTC())
	}
	if filter.Cursor != nil {
		stmt = stmt.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
