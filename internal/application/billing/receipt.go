package billing

import (
	"fmt"
	"strings"

	domainbilling "github.com/jhoicas/facturacion-api/internal/domain/billing"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// RenderTextReceipt genera el recibo en texto plano que se guarda cuando el PDF no se pudo generar.
// Es el último recurso de la cadena de recuperación.
func RenderTextReceipt(inv *entity.Invoice) []byte {
	var b strings.Builder
	sep := strings.Repeat("-", 48)
	fmt.Fprintf(&b, "FACTURA DE COMPRA %s\n", inv.Identifier)
	fmt.Fprintf(&b, "%s - NIT %s\n", inv.Issuer.Name, inv.Issuer.NIT)
	fmt.Fprintf(&b, "Fecha: %s\n", inv.IssuedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Cliente: %s (%s)\n", inv.Party.Name, inv.Party.TaxID)
	if inv.Party.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", inv.Party.Email)
	}
	b.WriteString(sep + "\n")
	for _, l := range inv.Lines {
		fmt.Fprintf(&b, "%s x %s  %s\n", l.Quantity.String(), l.Description, domainbilling.FormatMoney(l.Subtotal))
	}
	b.WriteString(sep + "\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", domainbilling.FormatMoney(inv.Subtotal))
	fmt.Fprintf(&b, "IVA (%s%%): %s\n", inv.TaxRatePercent().StringFixed(0), domainbilling.FormatMoney(inv.Tax))
	fmt.Fprintf(&b, "TOTAL: %s\n", domainbilling.FormatMoney(inv.Total))
	fmt.Fprintf(&b, "%s\n", inv.AmountInWords)
	return []byte(b.String())
}
