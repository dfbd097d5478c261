package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/davidlhotte/surfaced/internal/tenantcontext"
	"github.com/gin-gonic/gin"
)

const HeaderTenant = "X-Surfaced-Tenant"

// TenantContext resolves the tenant from the request header and injects
// it into the request context. Every tenant-scoped route sits behind it.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderTenant))
		if raw == "" {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		tenantID, err := snowflake.ParseString(raw)
		if err != nil || tenantID == 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		ctx := tenantcontext.WithTenantID(c.Request.Context(), tenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
