package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-api/pkg/requestid"
)

// localRequestID clave que usa el middleware requestid de Fiber.
const localRequestID = "requestid"

// propagateRequestID copia el id de la solicitud al contexto de usuario para que la bitácora lo registre.
func propagateRequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(localRequestID).(string); ok && id != "" {
			c.SetUserContext(requestid.With(c.UserContext(), id))
		}
		return c.Next()
	}
}
