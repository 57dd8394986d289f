// handlers_export.go - Calendar export handlers
package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/CamiloThisPunk/PlanUnsch/internal/export"
	"github.com/CamiloThisPunk/PlanUnsch/internal/notify"
	"github.com/CamiloThisPunk/PlanUnsch/internal/views"
)

// ExportHandlerImpl implements the ExportHandler interface
type ExportHandlerImpl struct {
	catalog  Catalog
	notifier notify.Sink
	now      func() time.Time
}

// NewExportHandler creates a new export handler
func NewExportHandler(c Catalog, notifier notify.Sink, now func() time.Time) ExportHandler {
	return &ExportHandlerImpl{catalog: c, notifier: notifier, now: now}
}

// HandleExport downloads every event as iCalendar (?format=ics, the default)
// or the upcoming events as a PDF table (?format=pdf).
func (h *ExportHandlerImpl) HandleExport(c echo.Context) error {
	now := h.now()
	switch format := c.QueryParam("format"); format {
	case "", "ics":
		data := export.ICS(h.catalog.Events(), now)
		h.notifier.Notify(notify.KindSuccess, "Calendar exported to .ics")
		return attachment(c, export.ICSContentType, export.ICSFileName, data)
	case "pdf":
		name := ""
		if profile, ok, err := h.catalog.Profile(); err == nil && ok {
			name = profile.Name
		}
		var buf bytes.Buffer
		if err := export.PDF(&buf, name, views.Upcoming(h.catalog.Events(), now), now); err != nil {
			return NewInternalError("failed to render pdf", err)
		}
		h.notifier.Notify(notify.KindSuccess, "Your event list has been exported to PDF.")
		return attachment(c, export.PDFContentType, export.PDFFileName(now), buf.Bytes())
	default:
		return NewBadRequestError(fmt.Sprintf("unsupported export format: %s", format), nil)
	}
}

func attachment(c echo.Context, contentType, name string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, contentType, data)
}
