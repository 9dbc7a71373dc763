package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestTracing(t *testing.T) {
	recorder := withSpanRecorder(t)

	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(DefaultTracingConfig()), SpanErrorMarker())
	router.Use(func(c *gin.Context) {
		c.Set(JWTTenantIDKey, "tenant-1")
		c.Set(JWTUserIDKey, "user-1")
		c.Next()
	}, TracingAttributeInjector())
	router.GET("/api/v1/settlement/sessions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/v1/settlement/sessions/:id/proceed", func(c *gin.Context) { c.Status(http.StatusConflict) })

	t.Run("span carries route and ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/settlement/sessions/abc", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		router.ServeHTTP(httptest.NewRecorder(), req)

		spans := recorder.Ended()
		require.NotEmpty(t, spans)
		span := spans[len(spans)-1]
		assert.Contains(t, span.Name(), "/api/v1/settlement/sessions/:id")

		attrs := attrMap(span.Attributes())
		assert.Equal(t, "req-1", attrs["request_id"])
		assert.Equal(t, "tenant-1", attrs["tenant_id"])
		assert.Equal(t, "user-1", attrs["user_id"])
		assert.NotEqual(t, codes.Error, span.Status().Code)
	})

	t.Run("client errors mark span", func(t *testing.T) {
		router.ServeHTTP(httptest.NewRecorder(),
			httptest.NewRequest(http.MethodPost, "/api/v1/settlement/sessions/abc/proceed", nil))

		spans := recorder.Ended()
		span := spans[len(spans)-1]
		assert.Equal(t, codes.Error, span.Status().Code)
		assert.Equal(t, "Conflict", span.Status().Description)
	})
}

func TestTracing_Disabled(t *testing.T) {
	recorder := withSpanRecorder(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, recorder.Ended())
}
