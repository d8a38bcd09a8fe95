package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssueInvoiceRequest body para POST /api/facturas (y las rutas heredadas /generar-xml, /pagar).
type IssueInvoiceRequest struct {
	Party PartyRequest      `json:"cliente" validate:"required"`
	Cart  []CartItemRequest `json:"carrito" validate:"required,min=1,dive"`
}

// PartyRequest datos del receptor.
type PartyRequest struct {
	Name  string `json:"nombre" validate:"required,max=200"`
	TaxID string `json:"nit" validate:"required,max=20"`
	Email string `json:"email,omitempty" validate:"omitempty,email,max=200"`
}

// CartItemRequest línea del carrito.
type CartItemRequest struct {
	Description string          `json:"nombre" validate:"required,max=200"`
	Quantity    int64           `json:"cantidad" validate:"min=1"`
	UnitPrice   decimal.Decimal `json:"precio"`
}

// IssueInvoiceResponse resultado de la emisión. Status es "success" o "degraded";
// en el segundo caso Warnings dice qué parte no se completó.
type IssueInvoiceResponse struct {
	Status        string          `json:"status"`
	InvoiceID     string          `json:"factura_id"`
	Folio         int64           `json:"folio"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"impuesto"`
	Total         decimal.Decimal `json:"total"`
	AmountInWords string          `json:"monto_letras"`
	Stored        bool            `json:"almacenada"`
	PrintableURL  string          `json:"pdf_url,omitempty"`
	Warnings      []string        `json:"advertencias,omitempty"`
}

// CancelCartRequest body para POST /api/carrito/cancelar.
type CancelCartRequest struct {
	InvoiceID string `json:"factura_uuid,omitempty" validate:"omitempty,max=40"`
	Reason    string `json:"motivo,omitempty" validate:"omitempty,max=200"`
	Items     int    `json:"carrito_items,omitempty" validate:"min=0"`
}

// StatusResponse respuesta simple de confirmación.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PendingInvoiceResponse XML pendiente listado en GET /api/facturas.
type PendingInvoiceResponse struct {
	File       string    `json:"archivo"`
	InvoiceID  string    `json:"factura_id"`
	Size       int64     `json:"bytes"`
	ModifiedAt time.Time `json:"modificado"`
}

// DocumentSummaryResponse fila del almacén de documentos en el diagnóstico.
type DocumentSummaryResponse struct {
	InvoiceID   string    `json:"uuid"`
	DBID        *int64    `json:"factura_db_id,omitempty"`
	HasExchange bool      `json:"tiene_xml"`
	HasBlob     bool      `json:"tiene_pdf"`
	HasBase64   bool      `json:"tiene_base64"`
	UpdatedAt   time.Time `json:"actualizado"`
}

// DocumentStatsResponse GET /api/debug/documentos.
type DocumentStatsResponse struct {
	Total        int64                     `json:"total"`
	WithExchange int64                     `json:"con_xml"`
	WithBlob     int64                     `json:"con_pdf"`
	WithBase64   int64                     `json:"con_base64"`
	Recent       []DocumentSummaryResponse `json:"ultimos"`
}
