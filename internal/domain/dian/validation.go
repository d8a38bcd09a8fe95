// Package dian contiene validaciones de dominio de la factura canónica antes de generar
// el documento de intercambio. Utiliza catálogos y reglas de pkg/dian.
package dian

import (
	"errors"
	"fmt"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/pkg/dian"
	"github.com/shopspring/decimal"
)

// ErrInvalidInvoice agrupa errores de validación de factura.
var ErrInvalidInvoice = errors.New("factura inválida")

// ValidateInvoice comprueba que la factura sea coherente: receptor completo, NIT con dígito de
// verificación cuando el tipo es 31 y totales iguales a la suma de las líneas.
func ValidateInvoice(invoice *entity.Invoice) error {
	if invoice == nil {
		return fmt.Errorf("%w: factura nula", ErrInvalidInvoice)
	}
	var errs []error

	if invoice.Party.Name == "" || invoice.Party.TaxID == "" {
		errs = append(errs, errors.New("el receptor requiere nombre y documento"))
	}
	if invoice.Party.DocType == dian.IdentificationTypeNIT {
		if err := dian.ValidateNITVerificationDigit(invoice.Party.TaxID); err != nil {
			errs = append(errs, fmt.Errorf("receptor NIT: %w", err))
		}
	}

	if len(invoice.Lines) == 0 {
		errs = append(errs, errors.New("la factura debe tener al menos una línea"))
	} else {
		sumSubtotal, sumTax := decimal.Zero, decimal.Zero
		for _, l := range invoice.Lines {
			if !l.Subtotal.Equal(l.Quantity.Mul(l.UnitPrice)) {
				errs = append(errs, fmt.Errorf("línea %d: subtotal %s no coincide con cantidad x precio", l.Position, l.Subtotal))
			}
			sumSubtotal = sumSubtotal.Add(l.Subtotal)
			sumTax = sumTax.Add(l.Tax)
		}
		if !invoice.Subtotal.Equal(sumSubtotal) {
			errs = append(errs, fmt.Errorf("subtotal (%s) no coincide con la suma de líneas (%s)", invoice.Subtotal, sumSubtotal))
		}
		if !invoice.Tax.Equal(sumTax) {
			errs = append(errs, fmt.Errorf("impuesto (%s) no coincide con la suma por línea (%s)", invoice.Tax, sumTax))
		}
		if !invoice.Total.Equal(sumSubtotal.Add(sumTax)) {
			errs = append(errs, fmt.Errorf("total (%s) no coincide con subtotal + impuesto (%s)", invoice.Total, sumSubtotal.Add(sumTax)))
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidInvoice}, errs...)...)
	}
	return nil
}
