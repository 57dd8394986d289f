// handlers_health.go - Health check handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthInfo describes the running service.
type HealthInfo struct {
	Version          string
	StorageBackend   string
	InferenceBackend string
	StartedAt        time.Time
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Storage       string `json:"storage"`
	Inference     string `json:"inference"`
	Subjects      int    `json:"subjects"`
	Events        int    `json:"events"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	info    HealthInfo
	catalog Catalog
	now     func() time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(info HealthInfo, c Catalog, now func() time.Time) HealthHandler {
	if info.StartedAt.IsZero() {
		info.StartedAt = now()
	}
	return &HealthHandlerImpl{info: info, catalog: c, now: now}
}

// HandleHealth reports the backends in use and the size of the catalog
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.info.Version,
		Storage:       h.info.StorageBackend,
		Inference:     h.info.InferenceBackend,
		UptimeSeconds: int64(h.now().Sub(h.info.StartedAt).Seconds()),
	}
	if h.catalog != nil {
		resp.Subjects = len(h.catalog.Subjects())
		resp.Events = len(h.catalog.Events())
	}
	return c.JSON(http.StatusOK, resp)
}
