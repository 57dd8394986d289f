// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/CamiloThisPunk/PlanUnsch/internal/ingest"
	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
	"github.com/CamiloThisPunk/PlanUnsch/internal/notify"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ProfileHandler handles the display identity
type ProfileHandler interface {
	HandleGetProfile(c echo.Context) error
	HandlePutProfile(c echo.Context) error
	HandleDeleteProfile(c echo.Context) error
}

// SubjectHandler handles subject operations
type SubjectHandler interface {
	HandleListSubjects(c echo.Context) error
	HandleCreateSubject(c echo.Context) error
	HandleRenameSubject(c echo.Context) error
	HandleDeleteSubject(c echo.Context) error
}

// SyllabusHandler handles syllabus uploads and ingestion status
type SyllabusHandler interface {
	HandleUploadSyllabus(c echo.Context) error
	HandleUploadSyllabusBase64(c echo.Context) error
	HandleGetIngestion(c echo.Context) error
}

// EventHandler handles academic event operations
type EventHandler interface {
	HandleListEvents(c echo.Context) error
	HandleListEventsMsgpack(c echo.Context) error
	HandleCreateEvent(c echo.Context) error
	HandleUpdateEvent(c echo.Context) error
	HandleDeleteEvent(c echo.Context) error
}

// ViewHandler serves derived calendar projections
type ViewHandler interface {
	HandleCalendar(c echo.Context) error
	HandleUpcoming(c echo.Context) error
}

// NotificationHandler serves notifications by polling
type NotificationHandler interface {
	HandleListNotifications(c echo.Context) error
}

// ExportHandler produces downloadable calendars
type ExportHandler interface {
	HandleExport(c echo.Context) error
}

// Catalog is the subset of catalog.Store used by the handlers.
type Catalog interface {
	AddSubject(name string) (models.Subject, error)
	RenameSubject(id, name string) error
	DeleteSubject(id string) error
	Subject(id string) (models.Subject, bool)
	Subjects() []models.Subject
	SaveOwnedEvent(event models.AcademicEvent) (models.AcademicEvent, error)
	DeleteEvent(id string) error
	Event(id string) (models.AcademicEvent, bool)
	Events() []models.AcademicEvent
	Profile() (models.Profile, bool, error)
	SetProfile(name string) (models.Profile, error)
	ClearProfile() error
}

// Ingester starts syllabus pipelines and reports on them.
// This allows mocking in tests
type Ingester interface {
	Ingest(ctx context.Context, subjectID string, doc models.Document) (models.SyllabusFile, error)
	Job(id string) (ingest.Job, bool)
}

// NotificationFeed is the read side of notify.Hub.
type NotificationFeed interface {
	Since(after int64) []notify.Notification
	Subscribe() (<-chan notify.Notification, func())
}
