package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura. Un folio repetido devuelve domain.ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) (int64, error) {
	query := `
		INSERT INTO invoices (folio, identifier, prefix, type, status, issued_at, due_at, currency,
		                      payment_method, payment_means, payment_term, subtotal, tax, total, amount_in_words)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		int64(invoice.Folio), invoice.Identifier, invoice.Prefix, invoice.Type, invoice.Status,
		invoice.IssuedAt, invoice.DueAt, invoice.Currency,
		invoice.PaymentMethod, invoice.PaymentMeans, invoice.PaymentTerm,
		invoice.Subtotal, invoice.Tax, invoice.Total, invoice.AmountInWords,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: folio %d ya registrado", domain.ErrDuplicate, invoice.Folio)
		}
		return 0, fmt.Errorf("insert invoice: %w", err)
	}
	return id, nil
}

// LinkParty asocia la factura con su receptor.
func (r *InvoiceRepo) LinkParty(ctx context.Context, invoiceID, partyID int64) error {
	query := `
		INSERT INTO invoice_parties (invoice_id, party_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	if _, err := r.q.Exec(ctx, query, invoiceID, partyID); err != nil {
		return fmt.Errorf("link invoice party: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de detalle.
func (r *InvoiceRepo) CreateLine(ctx context.Context, invoiceID int64, line *entity.LineItem) error {
	query := `
		INSERT INTO invoice_lines (invoice_id, position, product_id, quantity, unit_price, subtotal, tax)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		invoiceID, line.Position, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal, line.Tax,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// MaxFolio devuelve el mayor folio registrado (0 sin facturas).
func (r *InvoiceRepo) MaxFolio(ctx context.Context) (int64, error) {
	var max int64
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(folio), 0) FROM invoices`).Scan(&max); err != nil {
		return 0, fmt.Errorf("max folio: %w", err)
	}
	return max, nil
}
