// handlers_profile.go - Display identity handlers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
)

// ProfileHandlerImpl implements the ProfileHandler interface
type ProfileHandlerImpl struct {
	catalog   Catalog
	validator *validation.Validator
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(c Catalog, v *validation.Validator) ProfileHandler {
	return &ProfileHandlerImpl{catalog: c, validator: v}
}

// HandleGetProfile returns the stored profile, or 404 before the first login
func (h *ProfileHandlerImpl) HandleGetProfile(c echo.Context) error {
	profile, ok, err := h.catalog.Profile()
	if err != nil {
		return NewInternalError("failed to load profile", err)
	}
	if !ok {
		return NewNotFoundError("profile", "current")
	}
	return c.JSON(http.StatusOK, profile)
}

// HandlePutProfile records the display name and derives email and avatar from it
func (h *ProfileHandlerImpl) HandlePutProfile(c echo.Context) error {
	var req profileRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	profile, err := h.catalog.SetProfile(strings.TrimSpace(req.Name))
	if err != nil {
		return NewInternalError("failed to save profile", err)
	}
	return c.JSON(http.StatusOK, profile)
}

// HandleDeleteProfile logs out. Subjects and events are kept.
func (h *ProfileHandlerImpl) HandleDeleteProfile(c echo.Context) error {
	if err := h.catalog.ClearProfile(); err != nil {
		return NewInternalError("failed to clear profile", err)
	}
	return c.NoContent(http.StatusNoContent)
}
