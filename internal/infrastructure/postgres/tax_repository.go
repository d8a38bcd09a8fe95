package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.TaxRepository = (*TaxRepo)(nil)

// TaxRepo tipos de impuesto y desglose por factura.
type TaxRepo struct {
	q Querier
}

// NewTaxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaxRepository(q Querier) *TaxRepo {
	return &TaxRepo{q: q}
}

// UpsertType devuelve el id del tipo (tipo, tasa), creándolo si no existe.
func (r *TaxRepo) UpsertType(ctx context.Context, taxType string, rate decimal.Decimal) (int64, error) {
	query := `
		INSERT INTO tax_types (type, rate)
		VALUES ($1, $2)
		ON CONFLICT (type, rate) DO UPDATE SET type = EXCLUDED.type
		RETURNING id`
	var id int64
	if err := r.q.QueryRow(ctx, query, taxType, rate).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert tax type: %w", err)
	}
	return id, nil
}

// LinkInvoice inserta el desglose; si el par (factura, tipo) ya existe no hace nada.
func (r *TaxRepo) LinkInvoice(ctx context.Context, invoiceID, taxTypeID int64, line entity.TaxLine) (bool, error) {
	query := `
		INSERT INTO invoice_taxes (invoice_id, tax_type_id, taxable_base, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (invoice_id, tax_type_id) DO NOTHING`
	tag, err := r.q.Exec(ctx, query, invoiceID, taxTypeID, line.Base, line.Amount)
	if err != nil {
		return false, fmt.Errorf("insert invoice tax: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
