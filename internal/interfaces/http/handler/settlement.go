package handler

import (
	"context"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/erp/settlement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementService is the application service behind the settlement API
type SettlementService interface {
	OpenSession(ctx context.Context, op settlement.Operator, companyID int64) (settlement.SessionView, error)
	GetSession(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error)
	CloseSession(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) error
	SelectCustomer(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, customerID int64, customerRef string) (settlement.SessionView, error)
	Refresh(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error)
	BeginEdit(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, index int) (settlement.SessionView, error)
	CommitEdit(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, index int, raw string) (settlement.SessionView, error)
	CancelEdit(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, index int) (settlement.SessionView, error)
	EndEdit(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, index int) (settlement.SessionView, error)
	ToggleItem(ctx context.Context, op settlement.Operator, sessionID, itemID uuid.UUID) (settlement.SessionView, error)
	SelectAll(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error)
	ClearSelection(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error)
	Proceed(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SettlementSnapshot, error)
	ReturnFromCapture(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error)
	Acknowledge(ctx context.Context, op settlement.Operator, sessionID, snapshotID uuid.UUID) (settlement.SettlementSnapshot, error)
	SetAdvanceMode(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, on bool) (settlement.SessionView, error)
	RequestAdvance(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, collectPayment bool) (settlement.AdvanceRequest, error)
}

// SettlementHandler serves the settlement session API
type SettlementHandler struct {
	BaseHandler
	svc SettlementService
}

// NewSettlementHandler creates a SettlementHandler
func NewSettlementHandler(svc SettlementService) *SettlementHandler {
	return &SettlementHandler{svc: svc}
}

// sessionTarget is the operator and session a request addresses
type sessionTarget struct {
	op        settlement.Operator
	sessionID uuid.UUID
}

// operator identifies the caller from JWT claims
func (h *SettlementHandler) operator(c *gin.Context) (settlement.Operator, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not identified")
		return settlement.Operator{}, false
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User not identified")
		return settlement.Operator{}, false
	}
	return settlement.Operator{TenantID: tenantID, UserID: userID}, true
}

func (h *SettlementHandler) session(c *gin.Context) (sessionTarget, bool) {
	op, ok := h.operator(c)
	if !ok {
		return sessionTarget{}, false
	}
	var uri dto.SessionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return sessionTarget{}, false
	}
	sessionID, ok := h.parseID(c, uri.ID, "Invalid session ID")
	if !ok {
		return sessionTarget{}, false
	}
	return sessionTarget{op: op, sessionID: sessionID}, true
}

func (h *SettlementHandler) item(c *gin.Context) (sessionTarget, int, bool) {
	op, ok := h.operator(c)
	if !ok {
		return sessionTarget{}, 0, false
	}
	var uri dto.ItemURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return sessionTarget{}, 0, false
	}
	sessionID, ok := h.parseID(c, uri.ID, "Invalid session ID")
	if !ok {
		return sessionTarget{}, 0, false
	}
	return sessionTarget{op: op, sessionID: sessionID}, uri.Index, true
}

// parseID parses a UUID that already passed binding validation
func (h *SettlementHandler) parseID(c *gin.Context, raw, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}

func (h *SettlementHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.BindError(c, err)
		return false
	}
	return true
}

func (h *SettlementHandler) respond(c *gin.Context, data any, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// OpenSession godoc
// @Summary      Open settlement session
// @Description  Open a settlement session for a company
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        request body dto.OpenSessionRequest true "Company to settle for"
// @Success      201 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions [post]
func (h *SettlementHandler) OpenSession(c *gin.Context) {
	op, ok := h.operator(c)
	if !ok {
		return
	}
	var req dto.OpenSessionRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.svc.OpenSession(c.Request.Context(), op, req.CompanyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// GetSession godoc
// @Summary      Get settlement session
// @Description  Get the current view of a settlement session
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id} [get]
func (h *SettlementHandler) GetSession(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.svc.GetSession(c.Request.Context(), t.op, t.sessionID)
	h.respond(c, view, err)
}

// CloseSession godoc
// @Summary      Close settlement session
// @Description  Discard a settlement session and its pending state
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id} [delete]
func (h *SettlementHandler) CloseSession(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.svc.CloseSession(c.Request.Context(), t.op, t.sessionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SelectCustomer godoc
// @Summary      Select customer
// @Description  Select the customer whose due items are settled and fetch them
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body dto.SelectCustomerRequest true "Customer selection"
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/customer [post]
func (h *SettlementHandler) SelectCustomer(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.SelectCustomerRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.svc.SelectCustomer(c.Request.Context(), t.op, t.sessionID, req.CustomerID, req.CustomerRef)
	h.respond(c, view, err)
}

// Refresh godoc
// @Summary      Refresh due items
// @Description  Re-read the due items of the selected customer
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/refresh [post]
func (h *SettlementHandler) Refresh(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.svc.Refresh(c.Request.Context(), t.op, t.sessionID)
	h.respond(c, view, err)
}

// BeginEdit godoc
// @Summary      Begin amount edit
// @Description  Start editing the amount to pay of a due item
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        index path int true "Item index"
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/items/{index}/edit [post]
func (h *SettlementHandler) BeginEdit(c *gin.Context) {
	t, index, ok := h.item(c)
	if !ok {
		return
	}
	view, err := h.svc.BeginEdit(c.Request.Context(), t.op, t.sessionID, index)
	h.respond(c, view, err)
}

// CommitEdit godoc
// @Summary      Commit amount edit
// @Description  Validate and apply a new amount to pay for a due item
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        index path int true "Item index"
// @Param        request body dto.CommitEditRequest true "Plain decimal amount, at most 4 decimal places"
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/items/{index}/edit [put]
func (h *SettlementHandler) CommitEdit(c *gin.Context) {
	t, index, ok := h.item(c)
	if !ok {
		return
	}
	var req dto.CommitEditRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.svc.CommitEdit(c.Request.Context(), t.op, t.sessionID, index, req.AmountToPay)
	h.respond(c, view, err)
}

// CancelEdit godoc
// @Summary      Cancel amount edit
// @Description  Restore the amount to pay captured when the edit began
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        index path int true "Item index"
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/items/{index}/edit [delete]
func (h *SettlementHandler) CancelEdit(c *gin.Context) {
	t, index, ok := h.item(c)
	if !ok {
		return
	}
	view, err := h.svc.CancelEdit(c.Request.Context(), t.op, t.sessionID, index)
	h.respond(c, view, err)
}

// EndEdit godoc
// @Summary      End amount edit
// @Description  Leave edit mode keeping the committed amount
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        index path int true "Item index"
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/items/{index}/edit/done [post]
func (h *SettlementHandler) EndEdit(c *gin.Context) {
	t, index, ok := h.item(c)
	if !ok {
		return
	}
	view, err := h.svc.EndEdit(c.Request.Context(), t.op, t.sessionID, index)
	h.respond(c, view, err)
}

// ToggleItem godoc
// @Summary      Toggle item selection
// @Description  Select or deselect a single due item
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body dto.ToggleItemRequest true "Item to toggle"
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/selection/toggle [post]
func (h *SettlementHandler) ToggleItem(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.ToggleItemRequest
	if !h.bind(c, &req) {
		return
	}
	itemID, ok := h.parseID(c, req.ItemID, "Invalid item ID")
	if !ok {
		return
	}
	view, err := h.svc.ToggleItem(c.Request.Context(), t.op, t.sessionID, itemID)
	h.respond(c, view, err)
}

// SelectAll godoc
// @Summary      Select all items
// @Description  Select every due item of the session
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/selection/all [post]
func (h *SettlementHandler) SelectAll(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.svc.SelectAll(c.Request.Context(), t.op, t.sessionID)
	h.respond(c, view, err)
}

// ClearSelection godoc
// @Summary      Clear selection
// @Description  Deselect every due item of the session
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/selection [delete]
func (h *SettlementHandler) ClearSelection(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.svc.ClearSelection(c.Request.Context(), t.op, t.sessionID)
	h.respond(c, view, err)
}

// Proceed godoc
// @Summary      Proceed to payment capture
// @Description  Freeze the selection into a settlement snapshot and hand it to payment capture
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=settlement.SettlementSnapshot}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/proceed [post]
func (h *SettlementHandler) Proceed(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	snapshot, err := h.svc.Proceed(c.Request.Context(), t.op, t.sessionID)
	h.respond(c, snapshot, err)
}

// ReturnFromCapture godoc
// @Summary      Return from payment capture
// @Description  Return to browsing after payment capture was abandoned
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/return [post]
func (h *SettlementHandler) ReturnFromCapture(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.svc.ReturnFromCapture(c.Request.Context(), t.op, t.sessionID)
	h.respond(c, view, err)
}

// Acknowledge godoc
// @Summary      Acknowledge settlement
// @Description  Record that payment capture completed the snapshot
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body dto.AcknowledgeRequest true "Settled snapshot"
// @Success      200 {object} dto.Response{data=settlement.SettlementSnapshot}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/acknowledge [post]
func (h *SettlementHandler) Acknowledge(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.AcknowledgeRequest
	if !h.bind(c, &req) {
		return
	}
	snapshotID, ok := h.parseID(c, req.SnapshotID, "Invalid snapshot ID")
	if !ok {
		return
	}
	snapshot, err := h.svc.Acknowledge(c.Request.Context(), t.op, t.sessionID, snapshotID)
	h.respond(c, snapshot, err)
}

// SetAdvanceMode godoc
// @Summary      Set advance mode
// @Description  Switch the session between document settlement and advance payment
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body dto.AdvanceModeRequest true "Advance mode flag"
// @Success      200 {object} dto.Response{data=settlement.SessionView}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/advance [put]
func (h *SettlementHandler) SetAdvanceMode(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.AdvanceModeRequest
	if !h.bind(c, &req) {
		return
	}
	view, err := h.svc.SetAdvanceMode(c.Request.Context(), t.op, t.sessionID, *req.Enabled)
	h.respond(c, view, err)
}

// RequestAdvance godoc
// @Summary      Request advance payment
// @Description  Hand an advance payment request to payment capture. Collecting payment requires settlement:settle.
// @Tags         settlement
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body dto.AdvanceCollectRequest false "Collect payment immediately"
// @Success      200 {object} dto.Response{data=settlement.AdvanceRequest}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settlement/sessions/{id}/advance/collect [post]
func (h *SettlementHandler) RequestAdvance(c *gin.Context) {
	t, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.AdvanceCollectRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	// registering an advance needs write; collecting it moves money
	if req.CollectPayment && !middleware.HasPermission(c, middleware.PermSettlementSettle) {
		h.Forbidden(c, "Collecting payment requires "+middleware.PermSettlementSettle)
		return
	}
	advance, err := h.svc.RequestAdvance(c.Request.Context(), t.op, t.sessionID, req.CollectPayment)
	h.respond(c, advance, err)
}
