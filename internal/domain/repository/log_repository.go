package repository

import (
	"context"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// LogRepository destino consultable de la bitácora (tabla relacional o flujo documental).
type LogRepository interface {
	Insert(ctx context.Context, event *entity.LogEvent) error
	List(ctx context.Context, filter entity.LogFilter) ([]*entity.LogEvent, error)
}
