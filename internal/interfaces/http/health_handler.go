package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck comprueba una dependencia. Un error la marca como caída.
type HealthCheck func(ctx context.Context) error

// HealthHandler estado del servicio y de sus almacenes.
type HealthHandler struct {
	service string
	checks  map[string]HealthCheck
}

// NewHealthHandler construye el handler.
func NewHealthHandler(service string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{service: service, checks: checks}
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200
// @Router       /api/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := make(fiber.Map, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = "down"
			status = "degraded"
			continue
		}
		deps[name] = "up"
	}
	return c.JSON(fiber.Map{"status": status, "service": h.service, "dependencies": deps})
}
