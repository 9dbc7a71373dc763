package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	serve := func(cfg SwaggerConfig, jwt gin.HandlerFunc, remoteAddr string) *httptest.ResponseRecorder {
		router := gin.New()
		router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
			c.String(http.StatusOK, "docs")
		})
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "no token"))
	}

	t.Run("disabled answers not found", func(t *testing.T) {
		rec := serve(SwaggerConfig{}, nil, "10.0.0.1:1234")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeError(t, rec).Code)
	})

	t.Run("enabled without restrictions", func(t *testing.T) {
		rec := serve(SwaggerConfig{Enabled: true}, nil, "203.0.113.9:1234")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "docs", rec.Body.String())
	})

	t.Run("allow list accepts exact IPs and networks", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.1.7", "10.0.0.0/8", "not-an-ip"}}
		assert.Equal(t, http.StatusOK, serve(cfg, nil, "192.168.1.7:1234").Code)
		assert.Equal(t, http.StatusOK, serve(cfg, nil, "10.20.30.40:1234").Code)

		rec := serve(cfg, nil, "192.168.1.8:1234")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, rec).Code)
	})

	t.Run("auth is delegated to the JWT middleware", func(t *testing.T) {
		rec := serve(SwaggerConfig{Enabled: true, RequireAuth: true}, deny, "10.0.0.1:1234")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = serve(SwaggerConfig{Enabled: true, RequireAuth: true}, func(c *gin.Context) { c.Next() }, "10.0.0.1:1234")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
