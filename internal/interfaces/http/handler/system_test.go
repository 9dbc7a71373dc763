package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func() error

func (f pingFunc) Ping() error { return f() }

func serveSystem(h *SystemHandler, route string, fn gin.HandlerFunc) (int, map[string]any) {
	engine := gin.New()
	engine.GET(route, fn)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, route, nil))

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body
}

func TestSystemHandler_Health(t *testing.T) {
	h := NewSystemHandler("1.2.3", nil, nil)
	code, body := serveSystem(h, "/health", h.Health)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
}

func TestSystemHandler_Ready(t *testing.T) {
	t.Run("all components up", func(t *testing.T) {
		h := NewSystemHandler("1.2.3", nil, map[string]Pinger{
			"database": pingFunc(func() error { return nil }),
		})
		code, body := serveSystem(h, "/ready", h.Ready)
		assert.Equal(t, http.StatusOK, code)
		data := body["data"].(map[string]any)
		assert.Equal(t, true, data["ready"])
	})

	t.Run("one component down", func(t *testing.T) {
		h := NewSystemHandler("1.2.3", nil, map[string]Pinger{
			"database": pingFunc(func() error { return nil }),
			"redis":    pingFunc(func() error { return errors.New("dial tcp: refused") }),
		})
		code, body := serveSystem(h, "/ready", h.Ready)
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, false, body["success"])

		data := body["data"].(map[string]any)
		components := data["components"].(map[string]any)
		assert.Equal(t, "ok", components["database"])
		assert.Equal(t, "dial tcp: refused", components["redis"])
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("1.2.3", func() int { return 5 }, nil)
	code, body := serveSystem(h, "/info", h.GetSystemInfo)
	require.Equal(t, http.StatusOK, code)

	data := body["data"].(map[string]any)
	assert.Equal(t, "1.2.3", data["version"])
	assert.EqualValues(t, 5, data["open_sessions"])
	assert.NotEmpty(t, data["go_version"])
}
