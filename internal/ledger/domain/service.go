package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/pkg/db/pagination"
	"gorm.io/gorm"
)

type Service interface {
	// Record writes draft inside tx. The caller owns the transaction.
	Record(ctx context.Context, tx *gorm.DB, draft Draft) (*EntryWithLines, error)
	// PostEntry posts a draft entry in its own transaction.
	PostEntry(ctx context.Context, tenantID, entryID snowflake.ID) (*EntryWithLines, error)
	GetEntry(ctx context.Context, tenantID, entryID snowflake.ID) (*EntryWithLines, error)
	ListEntries(ctx context.Context, req ListRequest) (ListResponse, error)
}

type ListRequest struct {
	pagination.Pagination
	TenantID  snowflake.ID
	EntryType string
	Status    string
	From      *time.Time
	To        *time.Time
}

type ListResponse struct {
	pagination.PageInfo
	Entries []JournalEntry `json:"entries"`
}
