package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formatea un monto en pesos sin decimales y con punto de miles.
// Ej: 92820 -> "$92.820", -1500 -> "-$1.500".
func FormatMoney(d decimal.Decimal) string {
	s := d.Round(0).Abs().StringFixed(0)
	n := len(s)
	var b strings.Builder
	if d.Round(0).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
