package billing

import (
	"context"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/application/validation"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// CartUseCase eventos del carrito que no generan factura.
type CartUseCase struct {
	events EventLogger
}

// NewCartUseCase construye el caso de uso.
func NewCartUseCase(events EventLogger) *CartUseCase {
	return &CartUseCase{events: events}
}

// Cancel registra que el cliente abandonó el proceso de facturación. No escribe nada más.
func (uc *CartUseCase) Cancel(ctx context.Context, in dto.CancelCartRequest) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	reason := in.Reason
	if reason == "" {
		reason = "usuario_cancela"
	}
	uc.events.Flow(ctx, entity.LevelInfo, in.InvoiceID, PhaseCancel, "carrito cancelado por usuario",
		map[string]any{"motivo": reason, "carrito_items": in.Items})
	return nil
}
