package tenantctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type keyType string

const (
	TenantIDKey keyType = "tenant_id"
)

func WithTenantID(ctx context.Context, tenantID snowflake.ID) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

func TenantID(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(TenantIDKey).(snowflake.ID)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
