package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/application/usecase"
)

// LogHandler consulta de bitácoras (admin).
type LogHandler struct {
	logs LogLister
}

// NewLogHandler construye el handler.
func NewLogHandler(logs LogLister) *LogHandler {
	return &LogHandler{logs: logs}
}

// List godoc
// @Summary      Consultar bitácora
// @Tags         diagnostico
// @Produce      json
// @Security     BearerAuth
// @Param        source   path   string  true   "facturacion | sistema | db"
// @Param        limit    query  int     false  "máximo 1000 (100 por defecto)"
// @Param        level    query  string  false  "DEBUG | INFO | WARNING | ERROR | CRITICAL"
// @Param        module   query  string  false  "módulo"
// @Param        invoice  query  string  false  "identificador de factura"
// @Success      200  {object}  dto.LogListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/logs/{source} [get]
func (h *LogHandler) List(c *fiber.Ctx) error {
	var q dto.LogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	source := c.Params("source")
	if source == "mongo" {
		source = usecase.LogSourceBilling
	}
	out, err := h.logs.List(c.UserContext(), source, q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
