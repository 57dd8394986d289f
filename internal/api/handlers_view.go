// handlers_view.go - Calendar and upcoming-list projections
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/CamiloThisPunk/PlanUnsch/internal/views"
)

const monthLayout = "2006-01"

// ViewHandlerImpl implements the ViewHandler interface
type ViewHandlerImpl struct {
	catalog Catalog
	now     func() time.Time
}

// NewViewHandler creates a new view handler
func NewViewHandler(c Catalog, now func() time.Time) ViewHandler {
	return &ViewHandlerImpl{catalog: c, now: now}
}

type calendarResponse struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Label string        `json:"label"`
	Prev  string        `json:"prev"`
	Next  string        `json:"next"`
	Weeks [][]views.Day `json:"weeks"`
}

// HandleCalendar returns the month grid for ?month=YYYY-MM (default: this month)
func (h *ViewHandlerImpl) HandleCalendar(c echo.Context) error {
	today := h.now()
	anchor := today
	if m := c.QueryParam("month"); m != "" {
		parsed, err := time.ParseInLocation(monthLayout, m, today.Location())
		if err != nil {
			return NewBadRequestError("month must be in YYYY-MM format", err)
		}
		anchor = parsed
	}

	grid := views.CalendarGrid(h.catalog.Events(), anchor, today)
	return c.JSON(http.StatusOK, calendarResponse{
		Year:  grid.Year,
		Month: int(grid.Month),
		Label: grid.Month.String() + " " + strconv.Itoa(grid.Year),
		Prev:  grid.Prev().Format(monthLayout),
		Next:  grid.Next().Format(monthLayout),
		Weeks: grid.Weeks(),
	})
}

// HandleUpcoming returns events dated today or later, soonest first.
// ?limit=N truncates the list.
func (h *ViewHandlerImpl) HandleUpcoming(c echo.Context) error {
	upcoming := views.Upcoming(h.catalog.Events(), h.now())
	if l := c.QueryParam("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			return NewValidationError("limit")
		}
		if limit < len(upcoming) {
			upcoming = upcoming[:limit]
		}
	}
	return c.JSON(http.StatusOK, upcoming)
}
