package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository methods take the connection to run on so callers can pass an
// open transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Account, error)
	FindByCode(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*Account, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, category Category) ([]Account, error)
	UpdateCategory(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, category Category, updatedAt time.Time) error
	HasPostings(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (bool, error)
	ApplyBalance(ctx context.Context, db *gorm.DB, accountID snowflake.ID, delta decimal.Decimal, updatedAt time.Time) error

	FindMapping(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, key Key) (*Mapping, error)
	UpsertMapping(ctx context.Context, db *gorm.DB, mapping *Mapping) error
}
