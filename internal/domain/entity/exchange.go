package entity

import "github.com/shopspring/decimal"

// ExchangeDocument es la lectura de un documento de intercambio (XML) ya generado.
// Puede venir degradado: sin líneas o sin desglose de impuestos.
type ExchangeDocument struct {
	Identifier    string
	Folio         string
	IssuerNIT     string
	PartyTaxID    string
	PartyName     string
	PartyEmail    string
	Currency      string
	IssueDate     string
	IssueTime     string
	DueDate       string
	Subtotal      decimal.Decimal
	TaxBase       decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
	AmountInWords string
	Lines         []ExchangeLine
	Taxes         []TaxLine
}

// ExchangeLine línea del documento de intercambio.
type ExchangeLine struct {
	ProductCode string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Tax         decimal.Decimal
}
