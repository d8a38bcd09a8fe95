package pdf

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// invoiceView datos que se pintan en el PDF, leídos del documento de intercambio.
type invoiceView struct {
	Identifier    string
	IssuerNIT     string
	IssueDate     string
	IssueTime     string
	PartyName     string
	PartyTaxID    string
	PartyEmail    string
	Lines         []entity.ExchangeLine
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	TaxRate       decimal.Decimal // porcentaje
	AmountInWords string
}

// buildView arma el modelo de visualización. Si el documento no trae totales se recalculan desde
// las líneas con la tasa por defecto; si trae total pero no impuestos, el impuesto es total - base.
func buildView(doc *entity.ExchangeDocument, defaultRate decimal.Decimal) invoiceView {
	v := invoiceView{
		Identifier:    doc.Identifier,
		IssuerNIT:     doc.IssuerNIT,
		IssueDate:     doc.IssueDate,
		IssueTime:     doc.IssueTime,
		PartyName:     nonEmpty(doc.PartyName, "Cliente"),
		PartyTaxID:    doc.PartyTaxID,
		PartyEmail:    doc.PartyEmail,
		Lines:         doc.Lines,
		AmountInWords: doc.AmountInWords,
		TaxRate:       defaultRate,
	}
	if len(doc.Taxes) > 0 && !doc.Taxes[0].Rate.IsZero() {
		v.TaxRate = doc.Taxes[0].Rate
	}

	if !doc.Total.IsPositive() && len(doc.Lines) > 0 {
		base := decimal.Zero
		for _, l := range doc.Lines {
			base = base.Add(l.Amount)
		}
		v.Subtotal = base
		v.Tax = base.Mul(v.TaxRate).Div(decimal.NewFromInt(100)).Round(0)
		v.Total = base.Add(v.Tax)
		return v
	}

	v.Total = doc.Total
	switch {
	case !doc.TaxBase.IsZero():
		v.Subtotal = doc.TaxBase
	default:
		v.Subtotal = doc.Subtotal
	}
	if !doc.TaxTotal.IsZero() {
		v.Tax = doc.TaxTotal
	} else {
		v.Tax = v.Total.Sub(v.Subtotal)
	}
	return v
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
