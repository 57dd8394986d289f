// requests.go - Request bodies and binding helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
)

type profileRequest struct {
	Name string `json:"name" validate:"required,notblank,max=120"`
}

type subjectRequest struct {
	Name string `json:"name" validate:"required,notblank,max=120"`
}

type base64UploadRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=255"`
	ContentType string `json:"contentType"`
	Data        string `json:"data" validate:"required,base64"`
}

// eventRequest is shared by create and update. Date and type are optional on create.
type eventRequest struct {
	SubjectID string `json:"subjectId" validate:"required"`
	Title     string `json:"title" validate:"required,notblank,max=200"`
	Date      string `json:"date" validate:"omitempty,isodate"`
	Type      string `json:"type" validate:"omitempty,category"`
}

// bindAndValidate decodes the body into req and validates it.
func bindAndValidate(c echo.Context, v *validation.Validator, req any) error {
	if err := c.Bind(req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := v.Struct(req); err != nil {
		return NewFieldsError(v.Errors(err))
	}
	return nil
}
