package repository

import (
	"context"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// ProductRepository catálogo de productos deduplicado por código.
type ProductRepository interface {
	Upsert(ctx context.Context, product *entity.Product) (int64, error)
}
