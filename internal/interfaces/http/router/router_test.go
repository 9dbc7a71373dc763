package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/auth"
	"github.com/erp/settlement/internal/interfaces/http/handler"
	"github.com/erp/settlement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
	assert.Empty(t, r.middleware)
}

func TestRouterOptions(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"), WithAPIMiddleware(func(c *gin.Context) { c.Next() }))

	assert.Equal(t, "v2", r.apiVersion)
	assert.Len(t, r.middleware, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r := NewRouter(engine, WithAPIMiddleware(func(c *gin.Context) {
		c.Header("X-Api", "1")
		c.Next()
	}))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Api"))

	w = serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Api"), "api middleware must not leak to root routes")
}

func TestDomainGroup(t *testing.T) {
	t.Run("name", func(t *testing.T) {
		assert.Equal(t, "settlement", NewDomainGroup("settlement", "/settlement").Name())
	})

	t.Run("registers each method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		g := NewDomainGroup("test", "/test")
		g.GET("/a", ok).POST("/a", ok).PUT("/a/:id", ok).DELETE("/a/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/test/a"},
			{http.MethodPost, "/api/v1/test/a"},
			{http.MethodPut, "/api/v1/test/a/1"},
			{http.MethodDelete, "/api/v1/test/a/1"},
		} {
			w := serve(engine, tc.method, tc.path)
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
			assert.Equal(t, tc.method, w.Body.String())
		}
	})

	t.Run("group middleware applies to subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test").Use(func(c *gin.Context) {
			c.Header("X-Group", "applied")
			c.Next()
		})
		g.Group("items", "/items").GET("", func(c *gin.Context) { c.String(http.StatusOK, "items") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/test/items")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "applied", w.Header().Get("X-Group"))
	})
}

// stubSettlement answers GetSession and RequestAdvance and leaves every
// other method unimplemented
type stubSettlement struct {
	handler.SettlementService
}

func (stubSettlement) GetSession(_ context.Context, _ settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error) {
	return settlement.SessionView{ID: sessionID}, nil
}

func (stubSettlement) RequestAdvance(_ context.Context, _ settlement.Operator, sessionID uuid.UUID, collect bool) (settlement.AdvanceRequest, error) {
	return settlement.AdvanceRequest{SessionID: sessionID, CollectPayment: collect}, nil
}

func withPermissions(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, &auth.Claims{
			TenantID:    uuid.NewString(),
			UserID:      uuid.NewString(),
			Permissions: perms,
		})
		c.Set(middleware.JWTTenantIDKey, uuid.NewString())
		c.Set(middleware.JWTUserIDKey, uuid.NewString())
		c.Next()
	}
}

func TestSettlementRoutes_Permissions(t *testing.T) {
	sessionPath := "/api/v1/settlement/sessions/" + uuid.NewString()

	tests := []struct {
		name   string
		perms  []string
		method string
		path   string
		want   int
	}{
		{"reader can view a session", []string{middleware.PermSettlementRead}, http.MethodGet, sessionPath, http.StatusOK},
		{"view needs read", []string{middleware.PermSettlementWrite}, http.MethodGet, sessionPath, http.StatusForbidden},
		{"reader cannot close", []string{middleware.PermSettlementRead}, http.MethodDelete, sessionPath, http.StatusForbidden},
		{"writer cannot proceed", []string{middleware.PermSettlementWrite}, http.MethodPost, sessionPath + "/proceed", http.StatusForbidden},
		{"writer cannot acknowledge", []string{middleware.PermSettlementWrite}, http.MethodPost, sessionPath + "/acknowledge", http.StatusForbidden},
		{"writer can register an advance", []string{middleware.PermSettlementWrite}, http.MethodPost, sessionPath + "/advance/collect", http.StatusOK},
		{"reader cannot register an advance", []string{middleware.PermSettlementRead}, http.MethodPost, sessionPath + "/advance/collect", http.StatusForbidden},
		{"reader cannot edit", []string{middleware.PermSettlementRead}, http.MethodPut, sessionPath + "/items/0/edit", http.StatusForbidden},
		{"unknown route", []string{middleware.PermSettlementRead}, http.MethodGet, sessionPath + "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			NewRouter(engine, WithAPIMiddleware(withPermissions(tt.perms...))).
				Register(NewSettlementRoutes(handler.NewSettlementHandler(stubSettlement{}))).
				Setup()

			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSettlementRoutes_AdvanceCollection(t *testing.T) {
	path := "/api/v1/settlement/sessions/" + uuid.NewString() + "/advance/collect"
	collect := func(perms ...string) int {
		engine := gin.New()
		NewRouter(engine, WithAPIMiddleware(withPermissions(perms...))).
			Register(NewSettlementRoutes(handler.NewSettlementHandler(stubSettlement{}))).
			Setup()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"collect_payment":true}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, collect(middleware.PermSettlementWrite))
	assert.Equal(t, http.StatusOK, collect(middleware.PermSettlementWrite, middleware.PermSettlementSettle))
}

func TestSystemRoutes(t *testing.T) {
	engine := gin.New()
	h := handler.NewSystemHandler("test", func() int { return 3 }, nil)
	RegisterHealthChecks(engine, h)
	NewRouter(engine).Register(NewSystemRoutes(h)).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/ready").Code)

	w := serve(engine, http.MethodGet, "/api/v1/system/info")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"open_sessions":3`)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}
