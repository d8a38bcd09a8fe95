package entity

import "fmt"

// Folio es el consecutivo de facturación. Nunca se reutiliza ni decrece.
type Folio int64

// Identifier devuelve el identificador público de la factura (prefijo-folio), ej. FAC-12.
func (f Folio) Identifier(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, int64(f))
}
