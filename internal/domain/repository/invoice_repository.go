package repository

import (
	"context"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para la cabecera y sus líneas.
type InvoiceRepository interface {
	// Create inserta la cabecera y devuelve el id relacional.
	Create(ctx context.Context, invoice *entity.Invoice) (int64, error)
	// LinkParty asocia la factura con su receptor; repetir el vínculo no falla.
	LinkParty(ctx context.Context, invoiceID, partyID int64) error
	CreateLine(ctx context.Context, invoiceID int64, line *entity.LineItem) error
	// MaxFolio devuelve el mayor folio registrado (0 si no hay facturas).
	MaxFolio(ctx context.Context) (int64, error)
}
