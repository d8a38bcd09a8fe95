// Package pdf genera la representación imprimible de la factura a partir del documento de
// intercambio (XML) y valida PDFs guardados antes de servirlos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: FACTURA DE COMPRA      │  N° Factura + Fecha + QR  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RECEPTOR: Nombre + NIT/CC + email                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Cant. | Valor | Subtotal                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / IVA / TOTAL + monto en letras          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/domain"
	dombilling "github.com/jhoicas/facturacion-api/internal/domain/billing"
)

var _ billing.PrintableRenderer = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.PrintableRenderer usando Maroto v2.
type MarotoPDFGenerator struct {
	codec       billing.ExchangeCodec
	defaultRate decimal.Decimal // porcentaje
	qrImagePath string
	rawFallback bool
}

// Option configura el generador.
type Option func(*MarotoPDFGenerator)

// WithQRImage imagen decorativa del encabezado. Si el archivo no existe se omite.
func WithQRImage(path string) Option {
	return func(g *MarotoPDFGenerator) { g.qrImagePath = path }
}

// WithRawTextFallback imprime como texto plano el contenido que no es un documento de intercambio,
// en lugar de fallar con domain.ErrRender.
func WithRawTextFallback() Option {
	return func(g *MarotoPDFGenerator) { g.rawFallback = true }
}

// NewMarotoPDFGenerator construye el generador. taxRate es fracción (0.19).
func NewMarotoPDFGenerator(codec billing.ExchangeCodec, taxRate decimal.Decimal, opts ...Option) *MarotoPDFGenerator {
	g := &MarotoPDFGenerator{
		codec:       codec,
		defaultRate: taxRate.Mul(decimal.NewFromInt(100)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Render genera el PDF desde el XML de intercambio y devuelve bytes y base64.
// Un XML ilegible es domain.ErrRender salvo con WithRawTextFallback.
func (g *MarotoPDFGenerator) Render(ctx context.Context, exchange []byte) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if len(exchange) == 0 {
		return nil, "", fmt.Errorf("%w: documento vacío", domain.ErrRender)
	}

	var m core.Maroto
	doc, err := g.codec.Parse(exchange)
	switch {
	case err != nil && !g.rawFallback:
		return nil, "", fmt.Errorf("%w: documento de intercambio ilegible: %v", domain.ErrRender, err)
	case err != nil:
		m = g.rawText(string(exchange))
	default:
		m = g.invoice(buildView(doc, g.defaultRate))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("%w: generar documento: %v", domain.ErrRender, err)
	}
	data := out.GetBytes()
	return data, base64.StdEncoding.EncodeToString(data), nil
}

func newDocument(title string, created time.Time) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(18).WithRightMargin(18).
		WithTopMargin(18).WithBottomMargin(18).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithCreationDate(created).
		Build()
	return maroto.New(cfg)
}

func (g *MarotoPDFGenerator) invoice(v invoiceView) core.Maroto {
	m := newDocument("Factura "+v.Identifier, issuedAt(v))

	m.AddRows(g.headerRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(receptorRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(v)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(v))
	if v.AmountInWords != "" {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Son: "+v.AmountInWords, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	return m
}

func (g *MarotoPDFGenerator) rawText(content string) core.Maroto {
	m := newDocument("Comprobante", time.Unix(0, 0).UTC())
	m.AddRows(row.New(10).Add(col.New(12).Add(
		text.New("COMPROBANTE", props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary}),
	)))
	for _, l := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		m.AddRows(row.New(4).Add(col.New(12).Add(
			text.New(l, props.Text{Family: "courier", Size: 7}),
		)))
	}
	return m
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y N° Factura + fecha (der). El QR va a la derecha si hay imagen;
// si no, un QR generado con el identificador y el total.
func (g *MarotoPDFGenerator) headerRow(v invoiceView) core.Row {
	var qr core.Component
	if g.qrImagePath != "" {
		if _, err := os.Stat(g.qrImagePath); err == nil {
			qr = image.NewFromFile(g.qrImagePath, props.Rect{Percent: 90, Center: true})
		}
	}
	if qr == nil && v.Identifier != "" {
		qr = code.NewQr(fmt.Sprintf("%s|%s|%s", v.Identifier, v.IssuerNIT, v.Total.StringFixed(2)), props.Rect{Percent: 90, Center: true})
	}

	left := col.New(5).Add(
		text.New("FACTURA DE COMPRA", props.Text{
			Style: fontstyle.Bold, Size: 16, Color: colorPrimary, Top: 4,
		}),
	)
	middle := col.New(4).Add(
		text.New("Factura No.: "+v.Identifier, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 4,
		}),
		text.New("Fecha: "+strings.TrimSpace(v.IssueDate+" "+v.IssueTime), props.Text{
			Size: 8, Align: align.Right, Top: 11, Color: colorGray,
		}),
	)
	right := col.New(3)
	if qr != nil {
		right.Add(qr)
	}
	return row.New(32).Add(left, middle, right)
}

// receptorRow: datos del cliente. El email puede venir vacío.
func receptorRow(v invoiceView) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("DATOS DEL CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New("Nombre: "+v.PartyName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("NIT/CC: %s   |   Email: %s",
				nonEmpty(v.PartyTaxID, "—"),
				nonEmpty(v.PartyEmail, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 6, align.Left),
		h("Cant.", 1, align.Center),
		h("Valor", 2, align.Right),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea de detalle.
func tableDetailRows(v invoiceView) []core.Row {
	result := make([]core.Row, 0, len(v.Lines))
	for _, d := range v.Lines {
		result = append(result, row.New(7).Add(
			col.New(6).Add(text.New(
				nonEmpty(d.Description, "Producto"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				d.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				dombilling.FormatMoney(d.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				dombilling.FormatMoney(d.Amount),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(v invoiceView) core.Row {
	label := func(s string, size float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: size, Align: align.Right, Right: 2})
	}
	value := func(s string, size float64) core.Component {
		return text.New(s, props.Text{Size: size, Align: align.Right, Right: 1})
	}
	grand := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 12, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 12,
		})
	}

	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 10),
			text.New(fmt.Sprintf("IVA (%s%%):", v.TaxRate.StringFixed(0)), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 6,
			}),
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Right: 2, Top: 12,
			}),
		),
		col.New(3).Add(
			value(dombilling.FormatMoney(v.Subtotal), 10),
			text.New(dombilling.FormatMoney(v.Tax), props.Text{Size: 10, Align: align.Right, Right: 1, Top: 6}),
			grand(dombilling.FormatMoney(v.Total)),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// issuedAt fecha de creación del PDF: la de emisión, para que el mismo XML dé el mismo documento.
func issuedAt(v invoiceView) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", v.IssueDate+" "+v.IssueTime); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", v.IssueDate); err == nil {
		return t
	}
	return time.Unix(0, 0).UTC()
}
