package middleware

import (
	"context"

	"github.com/erp/settlement/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling labels the handler goroutine with route, method and tenant so
// pyroscope profiles can be sliced per endpoint. Place it after the JWT
// middleware so the tenant is known.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		labels := map[string]string{
			telemetry.ProfilingLabelRoute:    route,
			telemetry.ProfilingLabelMethod:   c.Request.Method,
			telemetry.ProfilingLabelTenantID: GetJWTTenantID(c),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
