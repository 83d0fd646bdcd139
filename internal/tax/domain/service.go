package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RateResolver returns the enabled tax code for a line that carries a
// code instead of an explicit rate.
type RateResolver interface {
	Resolve(ctx context.Context, tenantID snowflake.ID, code string) (*TaxCode, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Disable(ctx context.Context, id string) (*Response, error)
}

type ListRequest struct {
	Code      string
	IsEnabled *bool
}

type CreateRequest struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	CessRate  decimal.Decimal `json:"cess_rate"`
	IsEnabled *bool           `json:"is_enabled"`
}

type Response struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	CessRate  decimal.Decimal `json:"cess_rate"`
	IsEnabled bool            `json:"is_enabled"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
