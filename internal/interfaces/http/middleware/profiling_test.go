package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/erp/settlement/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling(t *testing.T) {
	var route, tenant string
	var hasTenant bool

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(JWTTenantIDKey, "tenant-1")
		c.Next()
	}, Profiling(true))
	router.GET("/api/v1/settlement/sessions/:id", func(c *gin.Context) {
		route, _ = pprof.Label(c.Request.Context(), telemetry.ProfilingLabelRoute)
		tenant, hasTenant = pprof.Label(c.Request.Context(), telemetry.ProfilingLabelTenantID)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/settlement/sessions/abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/v1/settlement/sessions/:id", route)
	assert.True(t, hasTenant)
	assert.Equal(t, "tenant-1", tenant)
}

func TestProfiling_Disabled(t *testing.T) {
	var labelled bool
	router := gin.New()
	router.Use(Profiling(false))
	router.GET("/test", func(c *gin.Context) {
		_, labelled = pprof.Label(c.Request.Context(), telemetry.ProfilingLabelRoute)
		c.Status(http.StatusOK)
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.False(t, labelled)
}
