package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/waveline/notification-service/internal/models"
	"github.com/waveline/notification-service/internal/repositories"
	"github.com/waveline/notification-service/internal/service"
)

// PreferenceHandler handles notification preference HTTP requests
type PreferenceHandler struct {
	svc *service.NotificationService
}

// NewPreferenceHandler creates a new PreferenceHandler
func NewPreferenceHandler(svc *service.NotificationService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

// RegisterPreferenceRoutes registers preference routes
func (h *PreferenceHandler) RegisterPreferenceRoutes(g *echo.Group) {
	g.GET("/notifications/preferences", h.GetPreferences)
	g.PUT("/notifications/preferences", h.UpdatePreferences)
}

// GetPreferences returns the current user's preferences, creating defaults
// on first access
func (h *PreferenceHandler) GetPreferences(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	prefs, err := h.svc.GetPreferences(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load preferences")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": prefs})
}

// UpdatePreferences applies a partial preference update. Only supplied
// fields change; unknown notification-type keys are rejected.
func (h *PreferenceHandler) UpdatePreferences(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	prefs, err := h.svc.UpdatePreferences(currentUserID, &req)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidNotification) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update preferences")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": prefs})
}
