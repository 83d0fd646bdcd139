package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Resolver maps semantic keys to account ids. It never writes.
type Resolver interface {
	Resolve(ctx context.Context, tenantID snowflake.ID, key Key) (snowflake.ID, error)
	// ResolveAll resolves every key and reports the ones that failed
	// instead of stopping at the first.
	ResolveAll(ctx context.Context, tenantID snowflake.ID, keys []Key) (map[Key]snowflake.ID, []Key, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Account, error)
	Get(ctx context.Context, id string) (*Account, error)
	List(ctx context.Context, req ListRequest) ([]Account, error)
	ChangeCategory(ctx context.Context, id string, category string) (*Account, error)
	SetMapping(ctx context.Context, req MappingRequest) error
}

type CreateRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type ListRequest struct {
	Category string
}

type MappingRequest struct {
	Key       string `json:"key"`
	AccountID string `json:"account_id"`
}
