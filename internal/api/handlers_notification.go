// handlers_notification.go - Notification polling
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// NotificationHandlerImpl implements the NotificationHandler interface
type NotificationHandlerImpl struct {
	feed NotificationFeed
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(feed NotificationFeed) NotificationHandler {
	return &NotificationHandlerImpl{feed: feed}
}

// HandleListNotifications returns retained notifications newer than ?after=<id>
func (h *NotificationHandlerImpl) HandleListNotifications(c echo.Context) error {
	after, err := parseAfter(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.feed.Since(after))
}

func parseAfter(c echo.Context) (int64, error) {
	raw := c.QueryParam("after")
	if raw == "" {
		return 0, nil
	}
	after, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || after < 0 {
		return 0, NewValidationError("after")
	}
	return after, nil
}
