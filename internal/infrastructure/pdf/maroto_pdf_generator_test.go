package pdf_test

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/billing"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/dian"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/pdf"
)

func exchangeXML(t *testing.T) []byte {
	t.Helper()
	inv, err := billing.Compose(billing.ComposeInput{
		Folio:    7,
		Prefix:   "FAC",
		Issuer:   entity.Issuer{NIT: "22222222", Name: "Pizzeria", BranchCode: "Pizzeria 1"},
		Party:    entity.Party{TaxID: "1020304050", DocType: entity.DocTypeCC, Name: "Ana Pérez"},
		TaxRate:  decimal.RequireFromString("0.19"),
		Currency: "COP",
		IssuedAt: time.Date(2024, 5, 10, 14, 30, 5, 0, time.UTC),
		Items: []billing.CartItem{
			{Description: "Pizza Hawaiana", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(35000)},
		},
	})
	require.NoError(t, err)
	data, err := dian.NewExchangeCodec().Render(inv)
	require.NoError(t, err)
	return data
}

func TestMarotoPDFGenerator_RenderAndValidate(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator(dian.NewExchangeCodec(), decimal.RequireFromString("0.19"))

	data, b64, err := gen.Render(context.Background(), exchangeXML(t))
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF-", string(data[:5]))

	decoded, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)

	assert.NoError(t, pdf.NewValidator().Validate(data))
}

func TestMarotoPDFGenerator_MissingQRImageIsIgnored(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator(dian.NewExchangeCodec(), decimal.RequireFromString("0.19"),
		pdf.WithQRImage("/no/existe/qr.png"))

	data, _, err := gen.Render(context.Background(), exchangeXML(t))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(data[:5]))
}

func TestMarotoPDFGenerator_UnparsableExchange(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator(dian.NewExchangeCodec(), decimal.RequireFromString("0.19"))

	_, _, err := gen.Render(context.Background(), []byte("<Factura><Encabez"))
	assert.ErrorIs(t, err, domain.ErrRender)
}

func TestMarotoPDFGenerator_PlainTextFallback(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator(dian.NewExchangeCodec(), decimal.RequireFromString("0.19"), pdf.WithRawTextFallback())

	data, _, err := gen.Render(context.Background(), []byte("comprobante sin formato\nlinea 2"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(data[:5]))
}

func TestMarotoPDFGenerator_Empty(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator(dian.NewExchangeCodec(), decimal.RequireFromString("0.19"))

	_, _, err := gen.Render(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrRender)
}

func TestValidator_RejectsGarbage(t *testing.T) {
	v := pdf.NewValidator()
	assert.Error(t, v.Validate([]byte("no soy un pdf")))
	assert.Error(t, v.Validate([]byte("%PDF-1.4\ncorrupto")))
	assert.Error(t, v.Validate(nil))
}
