// routes.go - Route registration helpers
package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/CamiloThisPunk/PlanUnsch/internal/logging"
	"github.com/CamiloThisPunk/PlanUnsch/internal/notify"
	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
)

var logger = logging.New("api")

// Dependencies holds all handler dependencies
type Dependencies struct {
	Catalog   Catalog
	Ingester  Ingester
	Feed      NotificationFeed
	Notifier  notify.Sink
	Validator *validation.Validator
	Version   string
	// Backend names reported by the health check
	StorageBackend   string
	InferenceBackend string
	StartedAt        time.Time
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// Handlers holds all handler instances
type Handlers struct {
	Health        HealthHandler
	Profile       ProfileHandler
	Subject       SubjectHandler
	Syllabus      SyllabusHandler
	Event         EventHandler
	View          ViewHandler
	Notification  NotificationHandler
	Notifications *WebSocketHandler
	Export        ExportHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.SinkFunc(func(notify.Kind, string) {})
	}
	return &Handlers{
		Health: NewHealthHandler(HealthInfo{
			Version:          deps.Version,
			StorageBackend:   deps.StorageBackend,
			InferenceBackend: deps.InferenceBackend,
			StartedAt:        deps.StartedAt,
		}, deps.Catalog, deps.Now),
		Profile:       NewProfileHandler(deps.Catalog, deps.Validator),
		Subject:       NewSubjectHandler(deps.Catalog, deps.Validator),
		Syllabus:      NewSyllabusHandler(deps.Ingester, deps.Validator),
		Event:         NewEventHandler(deps.Catalog, deps.Validator, deps.Now),
		View:          NewViewHandler(deps.Catalog, deps.Now),
		Notification:  NewNotificationHandler(deps.Feed),
		Notifications: NewWebSocketHandler(deps.Feed),
		Export:        NewExportHandler(deps.Catalog, deps.Notifier, deps.Now),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Profile
	apiGroup.GET("/profile", handlers.Profile.HandleGetProfile)
	apiGroup.PUT("/profile", handlers.Profile.HandlePutProfile)
	apiGroup.DELETE("/profile", handlers.Profile.HandleDeleteProfile)

	// Subjects and their syllabi
	subjectGroup := apiGroup.Group("/subjects")
	subjectGroup.GET("", handlers.Subject.HandleListSubjects)
	subjectGroup.POST("", handlers.Subject.HandleCreateSubject)
	subjectGroup.PUT("/:id", handlers.Subject.HandleRenameSubject)
	subjectGroup.DELETE("/:id", handlers.Subject.HandleDeleteSubject)
	subjectGroup.POST("/:id/syllabi", handlers.Syllabus.HandleUploadSyllabus)
	subjectGroup.POST("/:id/syllabi/base64", handlers.Syllabus.HandleUploadSyllabusBase64)

	apiGroup.GET("/ingestions/:id", handlers.Syllabus.HandleGetIngestion)

	// Events
	eventGroup := apiGroup.Group("/events")
	eventGroup.GET("", handlers.Event.HandleListEvents)
	eventGroup.GET("/msgpack", handlers.Event.HandleListEventsMsgpack)
	eventGroup.POST("", handlers.Event.HandleCreateEvent)
	eventGroup.PUT("/:id", handlers.Event.HandleUpdateEvent)
	eventGroup.DELETE("/:id", handlers.Event.HandleDeleteEvent)

	// Views
	apiGroup.GET("/views/calendar", handlers.View.HandleCalendar)
	apiGroup.GET("/views/upcoming", handlers.View.HandleUpcoming)

	// Notifications
	apiGroup.GET("/notifications", handlers.Notification.HandleListNotifications)
	apiGroup.GET("/ws/notifications", handlers.Notifications.HandleWebSocket)

	// Export
	apiGroup.GET("/export", handlers.Export.HandleExport)
}

// SetupMiddleware configures the error handler shared by every route.
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
