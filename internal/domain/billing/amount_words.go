package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const wordsSuffix = " PESOS CON 00 CENTAVOS"

var (
	units = [...]string{"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE"}
	teens = [...]string{"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE",
		"DIECISEIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE"}
	twenties = [...]string{"VEINTE", "VEINTIUNO", "VEINTIDOS", "VEINTITRES", "VEINTICUATRO",
		"VEINTICINCO", "VEINTISEIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE"}
	tens     = [...]string{"", "", "", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA"}
	hundreds = [...]string{"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS",
		"SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS"}
)

// AmountInWords devuelve el monto en letras de la parte entera del total.
// Solo se deletrean valores menores a 1000; el resto cae en "CANTIDAD N", que es el
// comportamiento esperado y no un error.
func AmountInWords(total decimal.Decimal) string {
	n := total.IntPart()
	switch {
	case n < 0:
		return fmt.Sprintf("CANTIDAD %d%s", n, wordsSuffix)
	case n == 0:
		return "CERO" + wordsSuffix
	case n < 1000:
		return belowThousand(int(n)) + wordsSuffix
	default:
		return fmt.Sprintf("CANTIDAD %d%s", n, wordsSuffix)
	}
}

func belowThousand(n int) string {
	if n == 100 {
		return "CIEN"
	}
	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, hundreds[h])
	}
	if rest := n % 100; rest > 0 {
		parts = append(parts, belowHundred(rest))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int) string {
	switch {
	case n < 10:
		return units[n]
	case n < 20:
		return teens[n-10]
	case n < 30:
		return twenties[n-20]
	}
	word := tens[n/10]
	if u := n % 10; u > 0 {
		word += " Y " + units[u]
	}
	return word
}
