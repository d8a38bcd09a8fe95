package entity

import "time"

// Tipos de documento del receptor (catálogo DIAN).
const (
	DocTypeCC  = "13" // cédula de ciudadanía
	DocTypeNIT = "31"
)

// Party es el receptor de la factura. Se identifica por TaxID y no se duplica entre facturas.
type Party struct {
	ID        int64
	TaxID     string
	DocType   string
	Name      string
	Email     string
	CreatedAt time.Time
}
