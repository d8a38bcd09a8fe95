// Package dian contiene catálogos y validaciones alineados al Anexo Técnico
// de Factura Electrónica de Venta DIAN (Colombia), limitados a lo que usa el documento de intercambio.
package dian

// =============================================================================
// Tabla 17 - Responsabilidad fiscal del receptor
// =============================================================================

const (
	TaxLevelNoAplicaOtros = "R-99-PN" // No Aplica - Otros
)

// =============================================================================
// Unidades, país, operación
// =============================================================================

const (
	UnitEach          = "EA"
	CountryColombia   = "CO"
	OperationStandard = "10" // Estándar
)

// =============================================================================
// Tabla 14 / 13 - Forma y medio de pago
// =============================================================================

const (
	PaymentFormContado    = "1"
	PaymentFormCredito    = "2"
	PaymentMethodEfectivo = "10"
	PaymentMethodTransfer = "47"
	PaymentMethodTCredito = "48"
	PaymentMethodTDebito  = "49"
)

// =============================================================================
// Tipos de impuesto en el documento de intercambio (<tipoImpuesto>)
// =============================================================================

const (
	TaxCodeIVA = "01"
	TaxCodeRET = "02"
	TaxCodeINC = "03"
)

var taxTypeByCode = map[string]string{
	TaxCodeIVA: "IVA",
	TaxCodeRET: "RET",
	TaxCodeINC: "INC",
}

// TaxTypeForCode traduce el código del documento al tipo de impuesto. Códigos desconocidos -> "IMP".
func TaxTypeForCode(code string) string {
	if t, ok := taxTypeByCode[code]; ok {
		return t
	}
	return "IMP"
}

// TaxCodeForType operación inversa; tipos desconocidos se escriben como IVA.
func TaxCodeForType(taxType string) string {
	for code, t := range taxTypeByCode {
		if t == taxType {
			return code
		}
	}
	return TaxCodeIVA
}

// =============================================================================
// Tabla 3 - Tipos de identificación
// =============================================================================

const (
	IdentificationTypeNIT = "31" // NIT - requiere dígito de verificación
	IdentificationTypeCC  = "13" // Cédula de ciudadanía
)
