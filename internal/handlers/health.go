package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/waveline/notification-service/internal/broker"
	"github.com/waveline/notification-service/internal/consumers"
)

// HealthHandler exposes service health, including the state of every
// consumer binding and the pipeline counters.
type HealthHandler struct {
	registry   *broker.ConsumerRegistry
	dispatcher *consumers.Dispatcher
}

// NewHealthHandler creates a new HealthHandler. Either dependency may be nil
// in deployments that run only the read side.
func NewHealthHandler(registry *broker.ConsumerRegistry, dispatcher *consumers.Dispatcher) *HealthHandler {
	return &HealthHandler{registry: registry, dispatcher: dispatcher}
}

// HealthCheck reports service status plus consumer and pipeline state.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	resp := echo.Map{
		"status":  "ok",
		"service": "notification-service",
	}
	if h.registry != nil {
		resp["consumers"] = h.registry.Active()
	}
	if h.dispatcher != nil {
		resp["pipeline"] = h.dispatcher.Snapshot()
	}
	return c.JSON(http.StatusOK, resp)
}
