package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bookkeeper/pkg/tenantctx"
)

const (
	HeaderTenant       = "X-Tenant-ID"
	contextTenantIDKey = "tenant_id"
)

// TenantRequired scopes the request to the tenant named in the
// X-Tenant-ID header.
func TenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderTenant))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		tenantID, err := snowflake.ParseString(raw)
		if err != nil || tenantID <= 0 {
			AbortWithError(c, newValidationError("tenant_id", "invalid_tenant", "invalid "+HeaderTenant+" header"))
			return
		}

		c.Set(contextTenantIDKey, tenantID.String())
		c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), tenantID))
		c.Next()
	}
}

// tenantID returns the tenant set by TenantRequired.
func tenantID(c *gin.Context) snowflake.ID {
	id, _ := tenantctx.TenantID(c.Request.Context())
	return id
}
