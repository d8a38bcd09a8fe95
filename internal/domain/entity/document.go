package entity

import (
	"fmt"
	"strings"
	"time"
)

// PrintableEncoding define cómo se guarda el PDF en el almacén de documentos.
// Se fija al aprovisionar el esquema; no se consulta el tipo de la columna en tiempo de escritura.
type PrintableEncoding string

const (
	EncodingBinary PrintableEncoding = "binary"
	EncodingBase64 PrintableEncoding = "base64"
	EncodingBoth   PrintableEncoding = "both"
)

// ParsePrintableEncoding valida el valor configurado.
func ParsePrintableEncoding(s string) (PrintableEncoding, error) {
	switch e := PrintableEncoding(strings.ToLower(strings.TrimSpace(s))); e {
	case EncodingBinary, EncodingBase64, EncodingBoth:
		return e, nil
	case "":
		return EncodingBoth, nil
	default:
		return "", fmt.Errorf("codificación de documento desconocida: %q", s)
	}
}

func (e PrintableEncoding) StoresBinary() bool { return e == EncodingBinary || e == EncodingBoth }
func (e PrintableEncoding) StoresBase64() bool { return e == EncodingBase64 || e == EncodingBoth }

// InvoiceDocument une un identificador de factura con sus artefactos.
// En escrituras, un campo nil significa "no provisto" y no sobrescribe lo guardado.
type InvoiceDocument struct {
	ID              int64
	Identifier      string
	InvoiceID       *int64
	ExchangeText    *string
	PrintableBlob   []byte
	PrintableBase64 *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DocumentSummary fila resumida para diagnóstico.
type DocumentSummary struct {
	Identifier  string
	InvoiceID   *int64
	HasExchange bool
	HasBlob     bool
	HasBase64   bool
	UpdatedAt   time.Time
}

// DocumentStats conteos del almacén de documentos.
type DocumentStats struct {
	Total        int64
	WithExchange int64
	WithBlob     int64
	WithBase64   int64
	Recent       []DocumentSummary
}
