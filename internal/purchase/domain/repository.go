package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, bill *Bill) error
	InsertLines(ctx context.Context, db *gorm.DB, lines []Line) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Bill, error)
	FindLines(ctx context.Context, db *gorm.DB, billID snowflake.ID) ([]Line, error)
	UpdateLineTaxes(ctx context.Context, db *gorm.DB, line *Line) error
	MarkPosted(ctx context.Context, db *gorm.DB, bill *Bill) (bool, error)
	// ApplyPayment reports false when amount exceeds balance_due.
	ApplyPayment(ctx context.Context, db *gorm.DB, tenantID, billID snowflake.ID, amount decimal.Decimal, updatedAt time.Time) (bool, error)

	InsertPayment(ctx context.Context, db *gorm.DB, payment *VendorPayment) error
	ListPayments(ctx context.Context, db *gorm.DB, tenantID, billID snowflake.ID) ([]VendorPayment, error)
}
