package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/application/dto"
)

// InvoiceHandler emisión, cancelación, listado y descarga de facturas.
type InvoiceHandler struct {
	issuer    InvoiceIssuer
	cart      CartCanceller
	pending   PendingLister
	printable PrintableFetcher
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(issuer InvoiceIssuer, cart CartCanceller, pending PendingLister, printable PrintableFetcher) *InvoiceHandler {
	return &InvoiceHandler{issuer: issuer, cart: cart, pending: pending, printable: printable}
}

// Issue godoc
// @Summary      Emitir factura
// @Description  Asigna folio, genera XML y PDF y guarda la factura. Si algún almacenamiento falla la
// @Description  respuesta es "degraded" con la lista de advertencias.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueInvoiceRequest  true  "cliente y carrito"
// @Success      200   {object}  dto.IssueInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /generar-xml [post]
func (h *InvoiceHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.issuer.Issue(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(issueResponse(res))
}

func issueResponse(res *billing.IssueResult) dto.IssueInvoiceResponse {
	status := "success"
	if !res.Outcome.OK() {
		status = string(res.Outcome.Status)
	}
	out := dto.IssueInvoiceResponse{
		Status:        status,
		InvoiceID:     res.Identifier,
		Folio:         int64(res.Folio),
		Subtotal:      res.Subtotal,
		Tax:           res.Tax,
		Total:         res.Total,
		AmountInWords: res.AmountInWords,
		Stored:        res.InvoiceDBID != 0,
		Warnings:      res.Outcome.Reasons,
	}
	if res.PrintableName != "" {
		out.PrintableURL = fmt.Sprintf("/api/facturas/%s/pdf", res.Identifier)
	}
	return out
}

// CancelCart godoc
// @Summary      Registrar cancelación del carrito
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CancelCartRequest  false  "factura_uuid, motivo"
// @Success      200   {object}  dto.StatusResponse
// @Router       /api/carrito/cancelar [post]
func (h *InvoiceHandler) CancelCart(c *fiber.Ctx) error {
	var in dto.CancelCartRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	if err := h.cart.Cancel(c.UserContext(), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StatusResponse{Status: "success", Message: "Cancelación registrada"})
}

// ListPending godoc
// @Summary      Listar XML pendientes
// @Tags         facturas
// @Produce      json
// @Success      200  {array}  dto.PendingInvoiceResponse
// @Router       /api/facturas [get]
func (h *InvoiceHandler) ListPending(c *fiber.Ctx) error {
	out, err := h.pending.ListPending(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar PDF de la factura
// @Description  Recorre disco, almacén de documentos y regeneración; como último recurso entrega el recibo en texto.
// @Tags         facturas
// @Produce      application/pdf
// @Param        id   path  string  true  "Identificador (FAC-12)"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	a, err := h.printable.FetchPrintable(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, a.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", a.Filename))
	c.Set("X-Fuente", string(a.Source))
	return c.Send(a.Content)
}
