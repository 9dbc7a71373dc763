package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/settlement/internal/infrastructure/auth"
	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func servePermission(claims *auth.Claims, mw gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(JWTClaimsKey, claims)
		}
		c.Next()
	})
	router.GET("/test", mw, func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	return rec
}

func TestRequirePermission(t *testing.T) {
	reader := &auth.Claims{UserID: "u1", Permissions: []string{PermSettlementRead}}

	t.Run("granted", func(t *testing.T) {
		rec := servePermission(reader, RequirePermission(PermSettlementRead))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing permission", func(t *testing.T) {
		rec := servePermission(reader, RequirePermission(PermSettlementSettle))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, rec).Code)
	})

	t.Run("no claims", func(t *testing.T) {
		rec := servePermission(nil, RequirePermission(PermSettlementRead))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("any of", func(t *testing.T) {
		rec := servePermission(reader, RequireAnyPermission(PermSettlementWrite, PermSettlementRead))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("custom denial handler", func(t *testing.T) {
		var denied []string
		mw := RequireAnyPermissionWithConfig(PermissionConfig{
			OnDenied: func(c *gin.Context, perms []string) {
				denied = perms
				c.AbortWithStatus(http.StatusTeapot)
			},
		}, PermSettlementWrite)

		rec := servePermission(reader, mw)
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, []string{PermSettlementWrite}, denied)
	})
}

func TestHasPermission(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, HasPermission(c, PermSettlementRead))

	c.Set(JWTClaimsKey, &auth.Claims{Permissions: []string{PermSettlementRead}})
	assert.True(t, HasPermission(c, PermSettlementRead))
	assert.False(t, HasPermission(c, PermSettlementWrite))
}
