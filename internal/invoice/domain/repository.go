package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertLines(ctx context.Context, db *gorm.DB, lines []Line) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Invoice, error)
	FindLines(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]Line, error)
	UpdateLineTaxes(ctx context.Context, db *gorm.DB, line *Line) error
	// MarkPosted stores the posted totals and reports false when the
	// invoice was no longer a draft.
	MarkPosted(ctx context.Context, db *gorm.DB, invoice *Invoice) (bool, error)
	// ApplyReceipt decrements balance_due by amount and moves the status to
	// partial or paid. It reports false when amount exceeds balance_due.
	ApplyReceipt(ctx context.Context, db *gorm.DB, tenantID, invoiceID snowflake.ID, amount decimal.Decimal, updatedAt time.Time) (bool, error)

	InsertReceipt(ctx context.Context, db *gorm.DB, receipt *Receipt) error
	ListReceipts(ctx context.Context, db *gorm.DB, tenantID, invoiceID snowflake.ID) ([]Receipt, error)
}
