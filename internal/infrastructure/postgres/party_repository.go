package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo implementación de PartyRepository (usable con pool o tx).
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

// Upsert inserta el receptor o reutiliza el existente con el mismo tax_id.
// Los datos de un receptor ya registrado no se sobrescriben.
func (r *PartyRepo) Upsert(ctx context.Context, party *entity.Party) (int64, error) {
	query := `
		INSERT INTO parties (tax_id, doc_type, name, email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tax_id) DO UPDATE SET tax_id = EXCLUDED.tax_id
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		party.TaxID, party.DocType, party.Name, nullIfEmpty(party.Email),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert party: %w", err)
	}
	party.ID = id
	return id, nil
}
