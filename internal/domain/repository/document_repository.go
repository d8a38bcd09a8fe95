package repository

import (
	"context"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// DocumentRepository almacén de artefactos por identificador de factura.
type DocumentRepository interface {
	// Upsert inserta o actualiza por Identifier; solo los campos no nil sobrescriben.
	Upsert(ctx context.Context, doc *entity.InvoiceDocument) error
	GetByIdentifier(ctx context.Context, identifier string) (*entity.InvoiceDocument, error)
	Counts(ctx context.Context) (*entity.DocumentStats, error)
	Recent(ctx context.Context, limit int) ([]entity.DocumentSummary, error)
}
