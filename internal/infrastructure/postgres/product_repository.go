package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Upsert crea el producto por código o devuelve el id del existente. El precio guardado es el de la
// primera venta; las líneas conservan su propio precio unitario.
func (r *ProductRepo) Upsert(ctx context.Context, product *entity.Product) (int64, error) {
	query := `
		INSERT INTO products (code, description, price, default_tax_rate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query,
		product.Code, product.Description, product.Price, product.DefaultTaxRate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert product: %w", err)
	}
	product.ID = id
	return id, nil
}
