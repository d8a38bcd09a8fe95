package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valores fijos de cabecera.
const (
	InvoiceStatusIssued  = "EMITIDA"
	InvoiceTypeSale      = "01" // tipo de comprobante: factura de venta
	PaymentMethodCash    = "1"  // contado
	PaymentMeansCash     = "10" // efectivo
	PaymentTermImmediate = "0"
)

// Issuer datos del emisor que se copian en cada documento de intercambio.
type Issuer struct {
	NIT              string
	Name             string
	BranchCode       string
	ResolutionNumber string
	ResolutionPrefix string
}

// Invoice es el registro canónico de una factura. Se construye una vez y no se modifica;
// solo sus artefactos derivados (XML, PDF) cambian.
type Invoice struct {
	ID            int64 // id relacional; 0 hasta que se persiste
	Folio         Folio
	Identifier    string
	Prefix        string
	Type          string
	Status        string
	IssuedAt      time.Time
	DueAt         time.Time
	Currency      string
	PaymentMethod string
	PaymentMeans  string
	PaymentTerm   string
	Issuer        Issuer
	Party         Party
	Lines         []LineItem
	TaxRate       decimal.Decimal // fracción, ej. 0.19
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	AmountInWords string
}

// TaxRatePercent devuelve la tasa como porcentaje (0.19 -> 19).
func (i *Invoice) TaxRatePercent() decimal.Decimal {
	return i.TaxRate.Mul(decimal.NewFromInt(100))
}
