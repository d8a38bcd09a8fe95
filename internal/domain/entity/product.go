package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product catálogo mínimo derivado de las líneas facturadas. Code es la descripción normalizada.
type Product struct {
	ID             int64
	Code           string
	Description    string
	Price          decimal.Decimal
	DefaultTaxRate decimal.Decimal // porcentaje, ej. 19
	CreatedAt      time.Time
}
