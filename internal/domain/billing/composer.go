// Package billing contiene las reglas puras de composición de facturas: totales, impuesto por
// línea, monto en letras y código de producto. No depende de infraestructura.
package billing

import (
	"fmt"
	"time"

	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MoneyPrecision decimales con los que se redondea el impuesto de cada línea.
const MoneyPrecision = 2

// CartItem línea del carrito tal como llega del cliente.
type CartItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// ComposeInput datos necesarios para construir la factura canónica.
type ComposeInput struct {
	Folio    entity.Folio
	Prefix   string
	Issuer   entity.Issuer
	Party    entity.Party
	Items    []CartItem
	TaxRate  decimal.Decimal // fracción, ej. 0.19
	Currency string
	IssuedAt time.Time
	DueDays  int
}

// Compose construye la factura canónica. Es la única fuente de verdad de los totales:
// subtotal = Σ cantidad*precio, impuesto = Σ round(subtotal_línea*tasa), total = subtotal + impuesto.
// Los datos del receptor se validan antes de llamar a Compose.
func Compose(in ComposeInput) (*entity.Invoice, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}
	if in.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: tasa de impuesto negativa", domain.ErrInvalidInput)
	}

	inv := &entity.Invoice{
		Folio:         in.Folio,
		Identifier:    in.Folio.Identifier(in.Prefix),
		Prefix:        in.Prefix,
		Type:          entity.InvoiceTypeSale,
		Status:        entity.InvoiceStatusIssued,
		IssuedAt:      in.IssuedAt,
		DueAt:         in.IssuedAt.AddDate(0, 0, in.DueDays),
		Currency:      in.Currency,
		PaymentMethod: entity.PaymentMethodCash,
		PaymentMeans:  entity.PaymentMeansCash,
		PaymentTerm:   entity.PaymentTermImmediate,
		Issuer:        in.Issuer,
		Party:         in.Party,
		TaxRate:       in.TaxRate,
		Lines:         make([]entity.LineItem, 0, len(in.Items)),
	}

	subtotal := decimal.Zero
	tax := decimal.Zero
	for i, item := range in.Items {
		lineSubtotal := item.Quantity.Mul(item.UnitPrice)
		lineTax := lineSubtotal.Mul(in.TaxRate).Round(MoneyPrecision)
		inv.Lines = append(inv.Lines, entity.LineItem{
			Position:    i + 1,
			ProductCode: ProductCode(item.Description),
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    lineSubtotal,
			Tax:         lineTax,
		})
		subtotal = subtotal.Add(lineSubtotal)
		tax = tax.Add(lineTax)
	}

	inv.Subtotal = subtotal
	inv.Tax = tax
	inv.Total = subtotal.Add(tax)
	inv.AmountInWords = AmountInWords(inv.Total)
	return inv, nil
}
