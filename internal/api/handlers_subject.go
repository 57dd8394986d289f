// handlers_subject.go - Subject handlers
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/CamiloThisPunk/PlanUnsch/internal/catalog"
	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
)

// SubjectHandlerImpl implements the SubjectHandler interface
type SubjectHandlerImpl struct {
	catalog   Catalog
	validator *validation.Validator
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(c Catalog, v *validation.Validator) SubjectHandler {
	return &SubjectHandlerImpl{catalog: c, validator: v}
}

// HandleListSubjects returns every subject with its syllabus records
func (h *SubjectHandlerImpl) HandleListSubjects(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Subjects())
}

// HandleCreateSubject creates a subject with the next palette color
func (h *SubjectHandlerImpl) HandleCreateSubject(c echo.Context) error {
	var req subjectRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	subject, err := h.catalog.AddSubject(strings.TrimSpace(req.Name))
	if err != nil {
		return NewInternalError("failed to create subject", err)
	}
	return c.JSON(http.StatusCreated, subject)
}

// HandleRenameSubject renames a subject; its events follow
func (h *SubjectHandlerImpl) HandleRenameSubject(c echo.Context) error {
	id := c.Param("id")
	var req subjectRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	if err := h.catalog.RenameSubject(id, strings.TrimSpace(req.Name)); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return NewNotFoundError("subject", id)
		}
		return NewInternalError("failed to rename subject", err)
	}
	subject, _ := h.catalog.Subject(id)
	return c.JSON(http.StatusOK, subject)
}

// HandleDeleteSubject removes a subject and all of its events
func (h *SubjectHandlerImpl) HandleDeleteSubject(c echo.Context) error {
	id := c.Param("id")
	if err := h.catalog.DeleteSubject(id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return NewNotFoundError("subject", id)
		}
		return NewInternalError("failed to delete subject", err)
	}
	return c.NoContent(http.StatusNoContent)
}
