package repository

import (
	"context"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TaxRepository tipos de impuesto y su asociación con facturas.
type TaxRepository interface {
	UpsertType(ctx context.Context, taxType string, rate decimal.Decimal) (int64, error)
	// LinkInvoice inserta el desglose (factura, tipo). Si ya existe no hace nada y devuelve false.
	LinkInvoice(ctx context.Context, invoiceID, taxTypeID int64, line entity.TaxLine) (bool, error)
}
