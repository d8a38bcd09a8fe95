package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	db TxBeginner
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(db TxBeginner) *TxRunner {
	return &TxRunner{db: db}
}

// RunBilling inicia una transacción con los repos de facturación y hace Commit o Rollback.
// Cualquier error de fn deshace todas las filas escritas (cabecera, receptor, líneas, impuestos).
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	partyRepo repository.PartyRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	taxRepo repository.TaxRepository,
) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	partyRepo := NewPartyRepository(tx)
	productRepo := NewProductRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)
	taxRepo := NewTaxRepository(tx)

	if err := fn(partyRepo, productRepo, invoiceRepo, taxRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
