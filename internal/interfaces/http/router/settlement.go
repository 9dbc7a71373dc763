package router

import (
	"github.com/erp/settlement/internal/interfaces/http/handler"
	"github.com/erp/settlement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// NewSettlementRoutes maps the settlement session API. Reads need
// settlement:read and browsing changes settlement:write. Anything that
// moves money toward capture needs settlement:settle, which the advance
// handler checks itself because only collect_payment moves money there.
func NewSettlementRoutes(h *handler.SettlementHandler) *DomainGroup {
	read := middleware.RequirePermission(middleware.PermSettlementRead)
	write := middleware.RequirePermission(middleware.PermSettlementWrite)
	settle := middleware.RequirePermission(middleware.PermSettlementSettle)

	root := NewDomainGroup("settlement", "/settlement")
	sessions := root.Group("sessions", "/sessions")
	sessions.POST("", write, h.OpenSession)
	sessions.GET("/:id", read, h.GetSession)
	sessions.DELETE("/:id", write, h.CloseSession)

	sessions.POST("/:id/customer", write, h.SelectCustomer)
	sessions.POST("/:id/refresh", write, h.Refresh)

	sessions.POST("/:id/items/:index/edit", write, h.BeginEdit)
	sessions.PUT("/:id/items/:index/edit", write, h.CommitEdit)
	sessions.DELETE("/:id/items/:index/edit", write, h.CancelEdit)
	sessions.POST("/:id/items/:index/edit/done", write, h.EndEdit)

	sessions.POST("/:id/selection/toggle", write, h.ToggleItem)
	sessions.POST("/:id/selection/all", write, h.SelectAll)
	sessions.DELETE("/:id/selection", write, h.ClearSelection)

	sessions.POST("/:id/proceed", settle, h.Proceed)
	sessions.POST("/:id/return", settle, h.ReturnFromCapture)
	sessions.POST("/:id/acknowledge", settle, h.Acknowledge)

	sessions.PUT("/:id/advance", write, h.SetAdvanceMode)
	sessions.POST("/:id/advance/collect", write, h.RequestAdvance)

	return root
}

// NewSystemRoutes maps the authenticated system endpoints
func NewSystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo)
}

// RegisterHealthChecks maps the unauthenticated liveness and readiness checks on the engine root
func RegisterHealthChecks(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready)
}
