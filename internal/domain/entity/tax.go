package entity

import "github.com/shopspring/decimal"

// Tipos de impuesto.
const (
	TaxTypeIVA   = "IVA"
	TaxTypeRET   = "RET"
	TaxTypeINC   = "INC"
	TaxTypeOther = "IMP"
)

// TaxLine desglose de un impuesto de la factura. Se guarda una sola fila por (factura, tipo).
type TaxLine struct {
	Type   string
	Code   string          // código en el documento de intercambio (01, 02, 03...)
	Rate   decimal.Decimal // porcentaje
	Base   decimal.Decimal
	Amount decimal.Decimal
}
