package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, code *TaxCode) error
	FindByID(ctx context.Context, tenantID, id snowflake.ID) (*TaxCode, error)
	FindEnabledByCode(ctx context.Context, tenantID snowflake.ID, code string) (*TaxCode, error)
	List(ctx context.Context, tenantID snowflake.ID, filter ListRequest) ([]TaxCode, error)
	Update(ctx context.Context, code *TaxCode) error
}
