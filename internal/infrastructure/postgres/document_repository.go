package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo almacén de artefactos por identificador.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Upsert inserta o actualiza por identifier. Los campos nil conservan el valor guardado,
// así dos escrituras parciales dejan la unión de ambas.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *entity.InvoiceDocument) error {
	query := `
		INSERT INTO invoice_documents (identifier, invoice_id, exchange_text, printable_blob, printable_base64)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identifier) DO UPDATE SET
		    invoice_id       = COALESCE(EXCLUDED.invoice_id, invoice_documents.invoice_id),
		    exchange_text    = COALESCE(EXCLUDED.exchange_text, invoice_documents.exchange_text),
		    printable_blob   = COALESCE(EXCLUDED.printable_blob, invoice_documents.printable_blob),
		    printable_base64 = COALESCE(EXCLUDED.printable_base64, invoice_documents.printable_base64),
		    updated_at       = NOW()`
	var blob []byte
	if len(doc.PrintableBlob) > 0 {
		blob = doc.PrintableBlob
	}
	_, err := r.q.Exec(ctx, query, doc.Identifier, doc.InvoiceID, doc.ExchangeText, blob, doc.PrintableBase64)
	if err != nil {
		return fmt.Errorf("upsert invoice document: %w", err)
	}
	return nil
}

// GetByIdentifier devuelve domain.ErrNotFound si no hay fila.
func (r *DocumentRepo) GetByIdentifier(ctx context.Context, identifier string) (*entity.InvoiceDocument, error) {
	query := `
		SELECT id, identifier, invoice_id, exchange_text, printable_blob, printable_base64, created_at, updated_at
		FROM invoice_documents WHERE identifier = $1`
	var d entity.InvoiceDocument
	err := r.q.QueryRow(ctx, query, identifier).Scan(
		&d.ID, &d.Identifier, &d.InvoiceID, &d.ExchangeText, &d.PrintableBlob, &d.PrintableBase64,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice document: %w", err)
	}
	return &d, nil
}

// Counts conteos por tipo de artefacto guardado.
func (r *DocumentRepo) Counts(ctx context.Context) (*entity.DocumentStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(exchange_text),
		       COUNT(printable_blob),
		       COUNT(printable_base64)
		FROM invoice_documents`
	var s entity.DocumentStats
	if err := r.q.QueryRow(ctx, query).Scan(&s.Total, &s.WithExchange, &s.WithBlob, &s.WithBase64); err != nil {
		return nil, fmt.Errorf("count invoice documents: %w", err)
	}
	return &s, nil
}

// Recent últimas filas actualizadas, sin traer el contenido.
func (r *DocumentRepo) Recent(ctx context.Context, limit int) ([]entity.DocumentSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT identifier, invoice_id,
		       exchange_text IS NOT NULL,
		       printable_blob IS NOT NULL,
		       printable_base64 IS NOT NULL,
		       updated_at
		FROM invoice_documents
		ORDER BY updated_at DESC
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent invoice documents: %w", err)
	}
	defer rows.Close()

	var list []entity.DocumentSummary
	for rows.Next() {
		var s entity.DocumentSummary
		if err := rows.Scan(&s.Identifier, &s.InvoiceID, &s.HasExchange, &s.HasBlob, &s.HasBase64, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice document: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
