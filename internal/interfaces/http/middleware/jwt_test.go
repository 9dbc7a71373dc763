package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/settlement/internal/infrastructure/auth"
	"github.com/erp/settlement/internal/infrastructure/config"
	"github.com/erp/settlement/internal/infrastructure/logger"
	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "test-issuer",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func newTestToken(t *testing.T, jwtService *auth.JWTService, permissions ...string) (string, auth.TokenInput) {
	t.Helper()
	input := auth.TokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Username:    "cashier",
		Permissions: permissions,
	}
	token, _, err := jwtService.IssueAccessToken(input)
	require.NoError(t, err)
	return token, input
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

type stubRevocations struct {
	revoked bool
	err     error
}

func (s stubRevocations) IsRevoked(context.Context, *auth.Claims) (bool, error) {
	return s.revoked, s.err
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService()

	serve := func(cfg JWTMiddlewareConfig, path, header string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
		router := gin.New()
		router.Use(RequestID(), JWTAuthMiddlewareWithConfig(cfg))
		if handler == nil {
			handler = func(c *gin.Context) { c.Status(http.StatusOK) }
		}
		router.GET(path, handler)

		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set(AuthHeaderKey, header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid token populates context", func(t *testing.T) {
		token, input := newTestToken(t, jwtService, PermSettlementRead)

		rec := serve(DefaultJWTConfig(jwtService), "/test", BearerPrefix+token, func(c *gin.Context) {
			claims := GetJWTClaims(c)
			require.NotNil(t, claims)
			assert.Equal(t, input.UserID.String(), GetJWTUserID(c))
			assert.Equal(t, input.TenantID.String(), GetJWTTenantID(c))
			assert.Equal(t, input.TenantID.String(), logger.GetTenantID(c.Request.Context()))
			assert.Equal(t, input.UserID.String(), logger.GetUserID(c.Request.Context()))
			c.Status(http.StatusOK)
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := serve(DefaultJWTConfig(jwtService), "/test", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		info := decodeError(t, rec)
		assert.Equal(t, dto.ErrCodeTokenInvalid, info.Code)
		assert.NotEmpty(t, info.RequestID)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		token, _ := newTestToken(t, jwtService)
		rec := serve(DefaultJWTConfig(jwtService), "/test", "Basic "+token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := serve(DefaultJWTConfig(jwtService), "/test", BearerPrefix+"abc.def.ghi", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, decodeError(t, rec).Code)
	})

	t.Run("skip path", func(t *testing.T) {
		rec := serve(DefaultJWTConfig(jwtService), "/health", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("skip prefix", func(t *testing.T) {
		cfg := DefaultJWTConfig(jwtService)
		cfg.SkipPathPrefixes = []string{"/internal"}
		rec := serve(cfg, "/internal/status", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		token, _ := newTestToken(t, jwtService)
		cfg := DefaultJWTConfig(jwtService)
		cfg.Revocations = stubRevocations{revoked: true}

		rec := serve(cfg, "/test", BearerPrefix+token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrCodeTokenRevoked, decodeError(t, rec).Code)
	})

	t.Run("revocation lookup failure fails open", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		token, _ := newTestToken(t, jwtService)
		cfg := DefaultJWTConfig(jwtService)
		cfg.Revocations = stubRevocations{err: errors.New("redis down")}
		cfg.Logger = zap.New(core)

		rec := serve(cfg, "/test", BearerPrefix+token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, logs.FilterMessage("Failed to check token revocation").Len())
	})
}

func TestGetJWTClaims_Absent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTTenantID(c))
}
