package dian

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/pkg/dian"
)

var _ billing.ExchangeCodec = (*ExchangeCodec)(nil)

// Nombres de elementos del documento de intercambio. Son el contrato con el PDF y con el
// respaldo de impuestos al persistir; no cambiarlos sin migrar los XML pendientes.
const (
	elRoot    = "Factura"
	elHeader  = "Encabezado"
	elDetail  = "Detalle"
	elLine    = "Det"
	elTaxes   = "Impuestos"
	elTax     = "Imp"
	moneyFmt  = 2
	dateFmt   = "2006-01-02"
	timeFmt   = "15:04:05"
	docIndent = 2
)

// ExchangeCodec genera y lee el XML Factura/Encabezado/Detalle/Impuestos.
type ExchangeCodec struct{}

// NewExchangeCodec crea el codec.
func NewExchangeCodec() *ExchangeCodec {
	return &ExchangeCodec{}
}

// Render genera el XML UTF-8 de la factura. Misma factura, mismo XML.
func (c *ExchangeCodec) Render(inv *entity.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("dian: factura nil")
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(elRoot)

	// ---- Encabezado
	h := root.CreateElement(elHeader)
	partyNumber, partyDV := dian.SplitNIT(inv.Party.TaxID)
	text(h, "llavecomprobante", inv.Identifier)
	text(h, "nitemisor", inv.Issuer.NIT)
	text(h, "codSucursal", inv.Issuer.BranchCode)
	text(h, "noresolucion", inv.Issuer.ResolutionNumber)
	text(h, "prefijo", inv.Issuer.ResolutionPrefix)
	text(h, "folio", strconv.FormatInt(int64(inv.Folio), 10))
	text(h, "obligacionesfiscalesreceptor", dian.TaxLevelNoAplicaOtros)
	text(h, "paisreceptor", dian.CountryColombia)
	text(h, "moneda", inv.Currency)
	text(h, "metodopago", inv.PaymentMethod)
	text(h, "mediopago", inv.PaymentMeans)
	text(h, "terminospago", inv.PaymentTerm)
	text(h, "tipoOpera", dian.OperationStandard)
	text(h, "tipocomprobante", inv.Type)
	text(h, "totaldescuentos", money(decimal.Zero))
	text(h, "totalcargos", money(decimal.Zero))
	text(h, "totalimpuestosretenidos", money(decimal.Zero))
	text(h, "fecha", inv.IssuedAt.Format(dateFmt))
	text(h, "hora", inv.IssuedAt.Format(timeFmt))
	text(h, "fechavencimiento", inv.DueAt.Format(dateFmt))
	text(h, "tiporeceptor", receptorType(inv.Party.DocType))
	text(h, "nitreceptor", partyNumber)
	text(h, "tipoDocRec", inv.Party.DocType)
	text(h, "digitoverificacion", partyDV)
	text(h, "nombrereceptor", inv.Party.Name)
	text(h, "mailreceptor", inv.Party.Email)
	text(h, "subtotal", money(inv.Subtotal))
	text(h, "baseimpuesto", money(inv.Subtotal))
	text(h, "totalsindescuento", money(inv.Subtotal))
	text(h, "totalimpuestos", money(inv.Tax))
	text(h, "total", money(inv.Total))
	text(h, "montoletra", inv.AmountInWords)

	// ---- Detalle
	rate := inv.TaxRatePercent().StringFixed(moneyFmt)
	d := root.CreateElement(elDetail)
	for _, line := range inv.Lines {
		det := d.CreateElement(elLine)
		text(det, "idConcepto", strconv.Itoa(line.Position))
		text(det, "llaveComprobante", inv.Identifier)
		text(det, "unidadmedida", dian.UnitEach)
		text(det, "tasa", rate)
		text(det, "tipo", dian.TaxCodeIVA)
		text(det, "identificacionproductos", line.ProductCode)
		text(det, "impuestolinea", money(line.Tax))
		text(det, "baseimpuestos", money(line.Subtotal))
		text(det, "descripcion", line.Description)
		text(det, "cantidad", line.Quantity.String())
		text(det, "precioUnitario", money(line.UnitPrice))
		text(det, "importe", money(line.Subtotal))
	}

	// ---- Impuestos
	taxes := root.CreateElement(elTaxes)
	imp := taxes.CreateElement(elTax)
	text(imp, "idImpuesto", "1")
	text(imp, "llaveComprobante", inv.Identifier)
	text(imp, "tasa", rate)
	text(imp, "tipoImpuesto", dian.TaxCodeIVA)
	text(imp, "baseimpuestos", money(inv.Subtotal))
	text(imp, "importe", money(inv.Tax))

	doc.Indent(docIndent)
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("dian: escribir XML: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse lee un XML generado por Render (o uno degradado: sin Detalle o sin Impuestos).
// Acepta UTF-8 e ISO-8859-1. Los importes ilegibles se leen como cero.
func (c *ExchangeCodec) Parse(data []byte) (*entity.ExchangeDocument, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("dian: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != elRoot {
		return nil, fmt.Errorf("dian: raíz %s no encontrada", elRoot)
	}
	h := root.SelectElement(elHeader)
	if h == nil {
		return nil, fmt.Errorf("dian: %s no encontrado", elHeader)
	}

	out := &entity.ExchangeDocument{
		Identifier:    childText(h, "llavecomprobante"),
		Folio:         childText(h, "folio"),
		IssuerNIT:     childText(h, "nitemisor"),
		PartyTaxID:    joinNIT(childText(h, "nitreceptor"), childText(h, "digitoverificacion")),
		PartyName:     childText(h, "nombrereceptor"),
		PartyEmail:    childText(h, "mailreceptor"),
		Currency:      childText(h, "moneda"),
		IssueDate:     childText(h, "fecha"),
		IssueTime:     childText(h, "hora"),
		DueDate:       childText(h, "fechavencimiento"),
		Subtotal:      childDecimal(h, "subtotal"),
		TaxBase:       childDecimal(h, "baseimpuesto"),
		TaxTotal:      childDecimal(h, "totalimpuestos"),
		Total:         childDecimal(h, "total"),
		AmountInWords: childText(h, "montoletra"),
	}

	if d := root.SelectElement(elDetail); d != nil {
		for _, det := range d.SelectElements(elLine) {
			out.Lines = append(out.Lines, entity.ExchangeLine{
				ProductCode: childText(det, "identificacionproductos"),
				Description: childText(det, "descripcion"),
				Quantity:    childDecimal(det, "cantidad"),
				UnitPrice:   childDecimal(det, "precioUnitario"),
				Amount:      childDecimal(det, "importe"),
				Tax:         childDecimal(det, "impuestolinea"),
			})
		}
	}

	if taxes := root.SelectElement(elTaxes); taxes != nil {
		for _, imp := range taxes.SelectElements(elTax) {
			code := childText(imp, "tipoImpuesto")
			out.Taxes = append(out.Taxes, entity.TaxLine{
				Type:   dian.TaxTypeForCode(code),
				Code:   code,
				Rate:   childDecimal(imp, "tasa"),
				Base:   childDecimal(imp, "baseimpuestos"),
				Amount: childDecimal(imp, "importe"),
			})
		}
	}
	return out, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "":
		return input, nil
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("dian: charset no soportado %q", label)
	}
}

func text(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}

func childText(parent *etree.Element, tag string) string {
	if el := parent.SelectElement(tag); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

func childDecimal(parent *etree.Element, tag string) decimal.Decimal {
	s := strings.ReplaceAll(childText(parent, tag), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func money(d decimal.Decimal) string {
	return d.StringFixed(moneyFmt)
}

func joinNIT(number, dv string) string {
	if dv == "" {
		return number
	}
	return number + "-" + dv
}

func receptorType(docType string) string {
	if docType == dian.IdentificationTypeNIT {
		return "1" // persona jurídica
	}
	return "2"
}
