// handlers_event.go - Academic event handlers
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/CamiloThisPunk/PlanUnsch/internal/catalog"
	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
)

// EventHandlerImpl implements the EventHandler interface
type EventHandlerImpl struct {
	catalog   Catalog
	validator *validation.Validator
	now       func() time.Time
}

// NewEventHandler creates a new event handler
func NewEventHandler(c Catalog, v *validation.Validator, now func() time.Time) EventHandler {
	return &EventHandlerImpl{catalog: c, validator: v, now: now}
}

func (h *EventHandlerImpl) filtered(c echo.Context) []models.AcademicEvent {
	events := h.catalog.Events()
	subjectID := c.QueryParam("subjectId")
	if subjectID == "" {
		return events
	}
	out := make([]models.AcademicEvent, 0, len(events))
	for _, e := range events {
		if e.SubjectID == subjectID {
			out = append(out, e)
		}
	}
	return out
}

// HandleListEvents returns events in collection order, optionally for one subject
func (h *EventHandlerImpl) HandleListEvents(c echo.Context) error {
	return c.JSON(http.StatusOK, h.filtered(c))
}

// HandleListEventsMsgpack returns the same list encoded as msgpack
func (h *EventHandlerImpl) HandleListEventsMsgpack(c echo.Context) error {
	events := h.filtered(c)
	data, err := msgpack.Marshal(map[string]interface{}{
		"events": events,
		"total":  len(events),
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleCreateEvent adds a manual event. Date defaults to today and type to Assignment.
func (h *EventHandlerImpl) HandleCreateEvent(c echo.Context) error {
	var req eventRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	event, err := h.save(h.build(uuid.New().String(), req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, event)
}

// HandleUpdateEvent replaces an existing event in place
func (h *EventHandlerImpl) HandleUpdateEvent(c echo.Context) error {
	id := c.Param("id")
	if _, ok := h.catalog.Event(id); !ok {
		return NewNotFoundError("event", id)
	}
	var req eventRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	event, err := h.save(h.build(id, req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// HandleDeleteEvent removes an event; deleting a missing event succeeds
func (h *EventHandlerImpl) HandleDeleteEvent(c echo.Context) error {
	if err := h.catalog.DeleteEvent(c.Param("id")); err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return NewInternalError("failed to delete event", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// save writes the event through the catalog, which stamps the owning
// subject's current name and color.
func (h *EventHandlerImpl) save(event models.AcademicEvent) (models.AcademicEvent, error) {
	saved, err := h.catalog.SaveOwnedEvent(event)
	if errors.Is(err, catalog.ErrNotFound) {
		return models.AcademicEvent{}, NewNotFoundError("subject", event.SubjectID)
	}
	if err != nil {
		return models.AcademicEvent{}, NewInternalError("failed to save event", err)
	}
	return saved, nil
}

func (h *EventHandlerImpl) build(id string, req eventRequest) models.AcademicEvent {
	date := models.DateOf(h.now())
	if req.Date != "" {
		date = models.Date(req.Date)
	}
	kind := models.EventTypeAssignment
	if req.Type != "" {
		kind = models.EventType(req.Type)
	}

	return models.AcademicEvent{
		ID:        id,
		SubjectID: req.SubjectID,
		Title:     strings.TrimSpace(req.Title),
		Date:      date,
		Type:      kind,
	}
}
