package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger is a dependency whose reachability is reported by readiness
type Pinger interface {
	Ping() error
}

// SystemHandler serves liveness, readiness and build information
type SystemHandler struct {
	BaseHandler
	startTime  time.Time
	version    string
	sessions   func() int
	components map[string]Pinger
}

// NewSystemHandler creates a SystemHandler. sessions reports the number
// of open settlement sessions and may be nil.
func NewSystemHandler(version string, sessions func() int, components map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		startTime:  time.Now(),
		version:    version,
		sessions:   sessions,
		components: components,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	GoVersion    string `json:"go_version"`
	Uptime       string `json:"uptime"`
	OpenSessions int    `json:"open_sessions"`
}

// ReadinessResponse reports the status of each dependency
type ReadinessResponse struct {
	Ready      bool              `json:"ready"`
	Components map[string]string `json:"components"`
}

// Health is the liveness check
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok"})
}

// Ready pings every dependency and answers 503 when one is down
func (h *SystemHandler) Ready(c *gin.Context) {
	resp := ReadinessResponse{Ready: true, Components: make(map[string]string, len(h.components))}
	for name, p := range h.components {
		if err := p.Ping(); err != nil {
			resp.Ready = false
			resp.Components[name] = err.Error()
			continue
		}
		resp.Components[name] = "ok"
	}

	if !resp.Ready {
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	h.Success(c, resp)
}

// GetSystemInfo godoc
// @Summary      System information
// @Description  Return version, uptime and the number of open settlement sessions
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "ERP Settlement API",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.sessions != nil {
		info.OpenSessions = h.sessions()
	}
	h.Success(c, info)
}
