// handlers_syllabus.go - Syllabus upload and ingestion status handlers
package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/CamiloThisPunk/PlanUnsch/internal/ingest"
	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
)

// SyllabusHandlerImpl implements the SyllabusHandler interface
type SyllabusHandlerImpl struct {
	ingester  Ingester
	validator *validation.Validator
}

// NewSyllabusHandler creates a new syllabus handler
func NewSyllabusHandler(ing Ingester, v *validation.Validator) SyllabusHandler {
	return &SyllabusHandlerImpl{ingester: ing, validator: v}
}

// HandleUploadSyllabus accepts one or more multipart "file" parts and starts
// an ingestion for each. It answers 202 with the new syllabus records.
func (h *SyllabusHandlerImpl) HandleUploadSyllabus(c echo.Context) error {
	subjectID := c.Param("id")

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form", err)
	}
	headers := append(form.File["file"], form.File["files"]...)
	if len(headers) == 0 {
		return NewBadRequestError("no file provided", nil)
	}

	docs := make([]models.Document, 0, len(headers))
	for _, fh := range headers {
		doc, err := readDocument(fh)
		if err != nil {
			return NewBadRequestError(fmt.Sprintf("failed to read %s", fh.Filename), err)
		}
		docs = append(docs, doc)
	}

	return h.start(c, subjectID, docs)
}

// HandleUploadSyllabusBase64 accepts a file as base64 JSON
func (h *SyllabusHandlerImpl) HandleUploadSyllabusBase64(c echo.Context) error {
	subjectID := c.Param("id")

	var req base64UploadRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	return h.start(c, subjectID, []models.Document{{
		Name:        filepath.Base(strings.TrimSpace(req.Name)),
		ContentType: req.ContentType,
		Data:        decoded,
	}})
}

func (h *SyllabusHandlerImpl) start(c echo.Context, subjectID string, docs []models.Document) error {
	files := make([]models.SyllabusFile, 0, len(docs))
	for _, doc := range docs {
		file, err := h.ingester.Ingest(c.Request().Context(), subjectID, doc)
		if err != nil {
			if errors.Is(err, ingest.ErrSubjectNotFound) {
				return NewNotFoundError("subject", subjectID)
			}
			return NewInternalError("failed to start ingestion", err)
		}
		files = append(files, file)
	}
	return c.JSON(http.StatusAccepted, files)
}

// HandleGetIngestion returns the pipeline job for a syllabus record
func (h *SyllabusHandlerImpl) HandleGetIngestion(c echo.Context) error {
	id := c.Param("id")
	job, ok := h.ingester.Job(id)
	if !ok {
		return NewNotFoundError("ingestion", id)
	}
	return c.JSON(http.StatusOK, job)
}

func readDocument(fh *multipart.FileHeader) (models.Document, error) {
	src, err := fh.Open()
	if err != nil {
		return models.Document{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.Document{}, err
	}
	return models.Document{
		Name:        filepath.Base(fh.Filename),
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}
