package billing_test

import (
	"testing"

	"github.com/jhoicas/facturacion-api/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	cases := map[string]string{
		"0":      "CERO PESOS CON 00 CENTAVOS",
		"7":      "SIETE PESOS CON 00 CENTAVOS",
		"15":     "QUINCE PESOS CON 00 CENTAVOS",
		"21":     "VEINTIUNO PESOS CON 00 CENTAVOS",
		"45":     "CUARENTA Y CINCO PESOS CON 00 CENTAVOS",
		"100":    "CIEN PESOS CON 00 CENTAVOS",
		"101":    "CIENTO UNO PESOS CON 00 CENTAVOS",
		"999.99": "NOVECIENTOS NOVENTA Y NUEVE PESOS CON 00 CENTAVOS",
		"1000":   "CANTIDAD 1000 PESOS CON 00 CENTAVOS",
		"92820":  "CANTIDAD 92820 PESOS CON 00 CENTAVOS",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, billing.AmountInWords(decimal.RequireFromString(in)))
		})
	}
}
