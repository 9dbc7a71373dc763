package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appsettlement "github.com/erp/settlement/internal/application/settlement"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/auth"
	"github.com/erp/settlement/internal/infrastructure/cache"
	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/erp/settlement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type fakeFetcher struct {
	rows []settlement.LedgerRow
	err  error
}

func (f *fakeFetcher) FetchDues(context.Context, settlement.LedgerQuery) ([]settlement.LedgerRow, error) {
	return f.rows, f.err
}

type fakeCapturer struct {
	err      error
	captured []settlement.SettlementSnapshot
}

func (f *fakeCapturer) OpenCapture(_ context.Context, snapshot settlement.SettlementSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.captured = append(f.captured, snapshot)
	return nil
}

type fakeCollector struct {
	requests []settlement.AdvanceRequest
}

func (f *fakeCollector) OpenAdvance(_ context.Context, req settlement.AdvanceRequest) error {
	f.requests = append(f.requests, req)
	return nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

type testAPI struct {
	t         *testing.T
	engine    *gin.Engine
	fetcher   *fakeFetcher
	capturer  *fakeCapturer
	collector *fakeCollector
	tenantID  uuid.UUID
	userID    uuid.UUID
	perms     []string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		t:         t,
		fetcher:   &fakeFetcher{},
		capturer:  &fakeCapturer{},
		collector: &fakeCollector{},
		tenantID:  uuid.New(),
		userID:    uuid.New(),
		perms: []string{
			middleware.PermSettlementRead,
			middleware.PermSettlementWrite,
			middleware.PermSettlementSettle,
		},
	}
	acks := cache.NewInMemoryIdempotencyStore(0)
	t.Cleanup(func() { _ = acks.Close() })

	svc := appsettlement.NewService(api.fetcher, api.capturer, api.collector,
		appsettlement.WithIdempotencyStore(acks),
	)
	h := NewSettlementHandler(svc)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.RequestIDKey, "req-test")
		if tenant := c.GetHeader("X-Test-Tenant"); tenant != "" {
			c.Set(middleware.JWTTenantIDKey, tenant)
		}
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(middleware.JWTUserIDKey, user)
		}
		if perms := c.GetHeader("X-Test-Permissions"); perms != "" {
			c.Set(middleware.JWTClaimsKey, &auth.Claims{Permissions: strings.Split(perms, ",")})
		}
		c.Next()
	})
	g := engine.Group("/settlement/sessions")
	g.POST("", h.OpenSession)
	g.GET("/:id", h.GetSession)
	g.DELETE("/:id", h.CloseSession)
	g.POST("/:id/customer", h.SelectCustomer)
	g.POST("/:id/refresh", h.Refresh)
	g.POST("/:id/items/:index/edit", h.BeginEdit)
	g.PUT("/:id/items/:index/edit", h.CommitEdit)
	g.DELETE("/:id/items/:index/edit", h.CancelEdit)
	g.POST("/:id/items/:index/edit/done", h.EndEdit)
	g.POST("/:id/selection/toggle", h.ToggleItem)
	g.POST("/:id/selection/all", h.SelectAll)
	g.DELETE("/:id/selection", h.ClearSelection)
	g.POST("/:id/proceed", h.Proceed)
	g.POST("/:id/return", h.ReturnFromCapture)
	g.POST("/:id/acknowledge", h.Acknowledge)
	g.PUT("/:id/advance", h.SetAdvanceMode)
	g.POST("/:id/advance/collect", h.RequestAdvance)
	api.engine = engine
	return api
}

func (a *testAPI) do(method, path string, body any) (int, apiResponse) {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Tenant", a.tenantID.String())
	req.Header.Set("X-Test-User", a.userID.String())
	req.Header.Set("X-Test-Permissions", strings.Join(a.perms, ","))

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func (a *testAPI) open() string {
	a.t.Helper()
	code, resp := a.do(http.MethodPost, "/settlement/sessions", gin.H{"company_id": 1})
	require.Equal(a.t, http.StatusCreated, code)
	var view settlement.SessionView
	require.NoError(a.t, json.Unmarshal(resp.Data, &view))
	return "/settlement/sessions/" + view.ID.String()
}

func invoiceRow(ref string, due int64) settlement.LedgerRow {
	return settlement.LedgerRow{
		ID:           uuid.New(),
		IsInvoice:    true,
		DocumentRef:  ref,
		DocumentDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		TotalValue:   decimal.NewFromInt(due),
		DueAmount:    decimal.NewFromInt(due),
	}
}

func decodeView(t *testing.T, resp apiResponse) settlement.SessionView {
	t.Helper()
	var view settlement.SessionView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	return view
}

func TestSettlementHandler_OpenSession(t *testing.T) {
	api := newTestAPI(t)

	t.Run("creates a browsing session", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/settlement/sessions", gin.H{"company_id": 7})
		assert.Equal(t, http.StatusCreated, code)
		assert.True(t, resp.Success)
		view := decodeView(t, resp)
		assert.Equal(t, int64(7), view.CompanyID)
		assert.Equal(t, settlement.GateBrowsing, view.State)
	})

	t.Run("company is required", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/settlement/sessions", gin.H{})
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-test", resp.Error.RequestID)
		require.NotEmpty(t, resp.Error.Details)
		assert.Equal(t, "company_id", resp.Error.Details[0].Field)
	})

	t.Run("malformed body", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, "/settlement/sessions", "{not json")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})
}

func TestSettlementHandler_TenantRequired(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/settlement/sessions", bytes.NewReader([]byte(`{"company_id":1}`)))
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	t.Run("user is required too", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/settlement/sessions", bytes.NewReader([]byte(`{"company_id":1}`)))
		req.Header.Set("X-Test-Tenant", api.tenantID.String())
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSettlementHandler_SessionLookup(t *testing.T) {
	api := newTestAPI(t)

	t.Run("unknown session", func(t *testing.T) {
		code, resp := api.do(http.MethodGet, "/settlement/sessions/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, dto.ErrCodeSessionNotFound, resp.Error.Code)
	})

	t.Run("invalid session id", func(t *testing.T) {
		code, resp := api.do(http.MethodGet, "/settlement/sessions/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("other tenant cannot see the session", func(t *testing.T) {
		path := api.open()
		api.tenantID = uuid.New()
		code, _ := api.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("another operator of the tenant cannot act on the session", func(t *testing.T) {
		owner := api.userID
		path := api.open()
		api.userID = uuid.New()
		code, resp := api.do(http.MethodPost, path+"/proceed", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, dto.ErrCodeSessionNotFound, resp.Error.Code)
		code, _ = api.do(http.MethodPost, path+"/acknowledge", gin.H{"snapshot_id": uuid.NewString()})
		assert.Equal(t, http.StatusNotFound, code)

		api.userID = owner
		code, resp = api.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, owner, decodeView(t, resp).OperatorID)
	})

	t.Run("close", func(t *testing.T) {
		path := api.open()
		code, _ := api.do(http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNoContent, code)

		code, _ = api.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestSettlementHandler_Fetch(t *testing.T) {
	t.Run("loads the customer's dues", func(t *testing.T) {
		api := newTestAPI(t)
		api.fetcher.rows = []settlement.LedgerRow{invoiceRow("INV-1", 100), invoiceRow("INV-2", 50)}
		path := api.open()

		code, resp := api.do(http.MethodPost, path+"/customer", gin.H{"customer_id": 42, "customer_ref": "C-42"})
		require.Equal(t, http.StatusOK, code)
		view := decodeView(t, resp)
		assert.Equal(t, int64(42), view.CustomerID)
		require.Len(t, view.Items, 2)
		assert.Equal(t, "INV-1", view.Items[0].DocumentRef)
	})

	t.Run("ledger failure maps to bad gateway", func(t *testing.T) {
		api := newTestAPI(t)
		api.fetcher.err = errors.New("connection refused")
		path := api.open()

		code, resp := api.do(http.MethodPost, path+"/customer", gin.H{"customer_id": 42})
		assert.Equal(t, http.StatusBadGateway, code)
		assert.Equal(t, dto.ErrCodeFetchFailed, resp.Error.Code)
	})

	t.Run("refresh without customer", func(t *testing.T) {
		api := newTestAPI(t)
		path := api.open()

		code, resp := api.do(http.MethodPost, path+"/refresh", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, dto.ErrCodeNoCustomer, resp.Error.Code)
	})
}

func TestSettlementHandler_Edit(t *testing.T) {
	api := newTestAPI(t)
	api.fetcher.rows = []settlement.LedgerRow{invoiceRow("INV-1", 100)}
	path := api.open()
	code, _ := api.do(http.MethodPost, path+"/customer", gin.H{"customer_id": 1})
	require.Equal(t, http.StatusOK, code)

	t.Run("commit outside edit mode", func(t *testing.T) {
		code, resp := api.do(http.MethodPut, path+"/items/0/edit", gin.H{"amount_to_pay": "10"})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, dto.ErrCodeNotInEdit, resp.Error.Code)
	})

	t.Run("rejected amount reports reason and item", func(t *testing.T) {
		code, _ := api.do(http.MethodPost, path+"/items/0/edit", nil)
		require.Equal(t, http.StatusOK, code)

		code, resp := api.do(http.MethodPut, path+"/items/0/edit", gin.H{"amount_to_pay": "150"})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeAmountRejected, resp.Error.Code)
		assert.Equal(t, string(settlement.RejectExceedsDue), resp.Error.Reason)
		require.NotNil(t, resp.Error.ItemIndex)
		assert.Equal(t, 0, *resp.Error.ItemIndex)
	})

	t.Run("non numeric input", func(t *testing.T) {
		code, resp := api.do(http.MethodPut, path+"/items/0/edit", gin.H{"amount_to_pay": "abc"})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, string(settlement.RejectNonNumeric), resp.Error.Reason)
	})

	t.Run("exponent notation is not a number", func(t *testing.T) {
		for _, raw := range []string{"1e999999999", "1e-2000000", "1E2"} {
			start := time.Now()
			code, resp := api.do(http.MethodPut, path+"/items/0/edit", gin.H{"amount_to_pay": raw})
			assert.Equal(t, http.StatusUnprocessableEntity, code, raw)
			require.NotNil(t, resp.Error)
			assert.Equal(t, string(settlement.RejectNonNumeric), resp.Error.Reason)
			assert.Less(t, time.Since(start), 500*time.Millisecond, raw)
		}

		code, resp := api.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, code)
		assert.True(t, decodeView(t, resp).Items[0].AmountToPay.Equal(decimal.NewFromInt(100)))
	})

	t.Run("more than four decimals", func(t *testing.T) {
		code, resp := api.do(http.MethodPut, path+"/items/0/edit", gin.H{"amount_to_pay": "10.00001"})
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, string(settlement.RejectPrecisionExceeded), resp.Error.Reason)
	})

	t.Run("accepted amount", func(t *testing.T) {
		code, resp := api.do(http.MethodPut, path+"/items/0/edit", gin.H{"amount_to_pay": "40"})
		require.Equal(t, http.StatusOK, code)
		view := decodeView(t, resp)
		assert.True(t, view.Items[0].AmountToPay.Equal(decimal.NewFromInt(40)))
	})

	t.Run("cancel restores the amount from before editing", func(t *testing.T) {
		code, resp := api.do(http.MethodDelete, path+"/items/0/edit", nil)
		require.Equal(t, http.StatusOK, code)
		view := decodeView(t, resp)
		assert.True(t, view.Items[0].AmountToPay.Equal(decimal.NewFromInt(100)))
	})

	t.Run("item index out of range", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, path+"/items/5/edit", nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, dto.ErrCodeItemNotFound, resp.Error.Code)
	})

	t.Run("negative index fails binding", func(t *testing.T) {
		code, _ := api.do(http.MethodPost, path+"/items/-1/edit", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestSettlementHandler_ProceedAndAcknowledge(t *testing.T) {
	api := newTestAPI(t)
	api.fetcher.rows = []settlement.LedgerRow{invoiceRow("INV-1", 100), invoiceRow("INV-2", 50)}
	path := api.open()
	code, resp := api.do(http.MethodPost, path+"/customer", gin.H{"customer_id": 9, "customer_ref": "C-9"})
	require.Equal(t, http.StatusOK, code)
	first := decodeView(t, resp).Items[0]

	code, resp = api.do(http.MethodPost, path+"/proceed", nil)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, dto.ErrCodeNothingToSettle, resp.Error.Code)

	code, resp = api.do(http.MethodPost, path+"/selection/toggle", gin.H{"item_id": first.ID.String()})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decodeView(t, resp).CanProceed)

	code, resp = api.do(http.MethodPost, path+"/proceed", nil)
	require.Equal(t, http.StatusOK, code)
	var snapshot settlement.SettlementSnapshot
	require.NoError(t, json.Unmarshal(resp.Data, &snapshot))
	assert.True(t, snapshot.TotalToPay.Equal(decimal.NewFromInt(100)))
	require.Len(t, api.capturer.captured, 1)
	assert.Equal(t, snapshot.ID, api.capturer.captured[0].ID)

	t.Run("session is locked under review", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, path+"/selection/all", nil)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, dto.ErrCodeSelectionLocked, resp.Error.Code)

		code, resp = api.do(http.MethodPost, path+"/refresh", nil)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, dto.ErrCodeSessionLocked, resp.Error.Code)
	})

	t.Run("acknowledging another snapshot", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, path+"/acknowledge", gin.H{"snapshot_id": uuid.NewString()})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, dto.ErrCodeSnapshotMismatch, resp.Error.Code)
	})

	t.Run("acknowledge completes the settlement once", func(t *testing.T) {
		code, _ := api.do(http.MethodPost, path+"/acknowledge", gin.H{"snapshot_id": snapshot.ID.String()})
		require.Equal(t, http.StatusOK, code)

		code, resp := api.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, settlement.GateSettled, decodeView(t, resp).State)

		code, resp = api.do(http.MethodPost, path+"/acknowledge", gin.H{"snapshot_id": snapshot.ID.String()})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, dto.ErrCodeAlreadyAcknowledged, resp.Error.Code)
	})
}

func TestSettlementHandler_CaptureFailure(t *testing.T) {
	api := newTestAPI(t)
	api.fetcher.rows = []settlement.LedgerRow{invoiceRow("INV-1", 100)}
	api.capturer.err = errors.New("gateway down")
	path := api.open()
	code, _ := api.do(http.MethodPost, path+"/customer", gin.H{"customer_id": 1})
	require.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, path+"/selection/all", nil)
	require.Equal(t, http.StatusOK, code)

	code, resp := api.do(http.MethodPost, path+"/proceed", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "gateway down")

	code, resp = api.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, settlement.GateBrowsing, decodeView(t, resp).State)
}

func TestSettlementHandler_ReturnFromCapture(t *testing.T) {
	api := newTestAPI(t)
	api.fetcher.rows = []settlement.LedgerRow{invoiceRow("INV-1", 100)}
	path := api.open()
	api.do(http.MethodPost, path+"/customer", gin.H{"customer_id": 1})
	api.do(http.MethodPost, path+"/selection/all", nil)

	code, _ := api.do(http.MethodPost, path+"/return", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code, "nothing to return from while browsing")

	code, _ = api.do(http.MethodPost, path+"/proceed", nil)
	require.Equal(t, http.StatusOK, code)

	code, resp := api.do(http.MethodPost, path+"/return", nil)
	require.Equal(t, http.StatusOK, code)
	view := decodeView(t, resp)
	assert.Equal(t, settlement.GateBrowsing, view.State)
	assert.True(t, view.CanProceed, "selection survives the round trip")
}

func TestSettlementHandler_Advance(t *testing.T) {
	api := newTestAPI(t)
	path := api.open()

	t.Run("enabled is required", func(t *testing.T) {
		code, resp := api.do(http.MethodPut, path+"/advance", gin.H{})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("collect outside advance mode", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, path+"/advance/collect", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, dto.ErrCodeAdvanceModeInactive, resp.Error.Code)
	})

	t.Run("collect in advance mode", func(t *testing.T) {
		code, resp := api.do(http.MethodPut, path+"/advance", gin.H{"enabled": true})
		require.Equal(t, http.StatusOK, code)
		assert.True(t, decodeView(t, resp).AdvanceMode)

		code, _ = api.do(http.MethodPost, path+"/customer", gin.H{"customer_id": 3, "customer_ref": "C-3"})
		require.Equal(t, http.StatusOK, code)

		code, resp = api.do(http.MethodPost, path+"/advance/collect", gin.H{"collect_payment": true})
		require.Equal(t, http.StatusOK, code)
		var req settlement.AdvanceRequest
		require.NoError(t, json.Unmarshal(resp.Data, &req))
		assert.Equal(t, "C-3", req.CustomerRef)
		require.Len(t, api.collector.requests, 1)
	})

	t.Run("collecting payment needs settle", func(t *testing.T) {
		api.perms = []string{middleware.PermSettlementRead, middleware.PermSettlementWrite}
		defer func() {
			api.perms = append(api.perms, middleware.PermSettlementSettle)
		}()

		code, resp := api.do(http.MethodPost, path+"/advance/collect", gin.H{"collect_payment": true})
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
		assert.Len(t, api.collector.requests, 1)

		code, resp = api.do(http.MethodPost, path+"/advance/collect", gin.H{"collect_payment": false})
		require.Equal(t, http.StatusOK, code)
		var req settlement.AdvanceRequest
		require.NoError(t, json.Unmarshal(resp.Data, &req))
		assert.False(t, req.CollectPayment)
		assert.Len(t, api.collector.requests, 2)
	})

	t.Run("proceed is unavailable in advance mode", func(t *testing.T) {
		code, resp := api.do(http.MethodPost, path+"/proceed", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, dto.ErrCodeAdvanceModeActive, resp.Error.Code)
	})
}

func TestSettlementHandler_ParseID(t *testing.T) {
	h := NewSettlementHandler(nil)

	t.Run("valid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		want := uuid.New()
		got, ok := h.parseID(c, want.String(), "Invalid session ID")
		assert.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("invalid id is a bad request, not a panic", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		assert.NotPanics(t, func() {
			_, ok := h.parseID(c, "not-a-uuid", "Invalid session ID")
			assert.False(t, ok)
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid session ID")
	})
}
