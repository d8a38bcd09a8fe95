package repository

import (
	"context"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// PartyRepository registro deduplicado de receptores por TaxID.
type PartyRepository interface {
	// Upsert crea el receptor si no existe y devuelve su id en ambos casos.
	Upsert(ctx context.Context, party *entity.Party) (int64, error)
}
