package entity

import "github.com/shopspring/decimal"

// LineItem representa una línea de detalle de la factura.
type LineItem struct {
	Position    int
	ProductID   int64
	ProductCode string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal // Quantity * UnitPrice
	Tax         decimal.Decimal // Subtotal * tasa, redondeado por línea
}
