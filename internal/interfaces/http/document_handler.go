package http

import (
	"github.com/gofiber/fiber/v2"
)

// DocumentHandler diagnóstico del almacén de documentos (admin).
type DocumentHandler struct {
	stats DocumentStatsReader
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(stats DocumentStatsReader) *DocumentHandler {
	return &DocumentHandler{stats: stats}
}

// Stats godoc
// @Summary      Conteos del almacén de documentos
// @Tags         diagnostico
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.DocumentStatsResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/debug/documentos [get]
func (h *DocumentHandler) Stats(c *fiber.Ctx) error {
	out, err := h.stats.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
