package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/waveline/notification-service/internal/models"
	"github.com/waveline/notification-service/internal/repositories"
	"github.com/waveline/notification-service/internal/service"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	svc *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.GET("/notifications/stats", h.GetStats)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/:id/unread", h.MarkAsUnread)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
	g.DELETE("/notifications", h.DeleteAllNotifications)
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread_only"))

	opts := models.ListOptions{
		Page:       page,
		Limit:      limit,
		UnreadOnly: unreadOnly,
		Ascending:  c.QueryParam("sort") == "asc",
	}
	if typeParam := c.QueryParam("type"); typeParam != "" {
		notifType := models.NotificationType(typeParam)
		if !notifType.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification type")
		}
		opts.Type = notifType
	}

	notifications, meta, err := h.svc.List(c.Request().Context(), currentUserID, opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": notifications,
		},
		"meta": meta,
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.svc.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// GetStats returns aggregate notification counts with a per-type breakdown
func (h *NotificationHandler) GetStats(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	stats, err := h.svc.Stats(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to aggregate notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": stats})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	n, err := h.svc.MarkAsRead(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update notification")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": n})
}

// MarkAsUnread clears a notification's read state
func (h *NotificationHandler) MarkAsUnread(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	n, err := h.svc.MarkAsUnread(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update notification")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": n})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	modified, err := h.svc.MarkAllAsRead(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"modified_count": modified}})
}

// DeleteNotification deletes a single notification
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.svc.Delete(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete notification")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"deleted": true}})
}

// DeleteAllNotifications deletes every notification for the current user
func (h *NotificationHandler) DeleteAllNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	deleted, err := h.svc.DeleteAll(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"deleted_count": deleted}})
}
