package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// NextEntryNumber atomically increments and returns the tenant's
	// journal counter. It must run inside the posting transaction.
	NextEntryNumber(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (int64, error)
	InsertEntry(ctx context.Context, db *gorm.DB, entry *JournalEntry) error
	InsertLines(ctx context.Context, db *gorm.DB, lines []JournalLine) error
	UpdateTotals(ctx context.Context, db *gorm.DB, entryID snowflake.ID, totals Totals) error
	// MarkPosted flips a draft entry to posted and reports false when the
	// entry was not a draft.
	MarkPosted(ctx context.Context, db *gorm.DB, tenantID, entryID snowflake.ID, postedAt time.Time) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*JournalEntry, error)
	FindLines(ctx context.Context, db *gorm.DB, entryID snowflake.ID) ([]JournalLine, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]JournalEntry, error)
}

type ListFilter struct {
	TenantID  snowflake.ID
	EntryType EntryType
	Status    Status
	From      *time.Time
	To        *time.Time
	Cursor    *EntryCursor
	Limit     int
}

type EntryCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}
