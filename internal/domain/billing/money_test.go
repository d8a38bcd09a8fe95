package billing_test

import (
	"testing"

	"github.com/jhoicas/facturacion-api/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0", billing.FormatMoney(decimal.Zero))
	assert.Equal(t, "$950", billing.FormatMoney(decimal.NewFromInt(950)))
	assert.Equal(t, "$35.000", billing.FormatMoney(decimal.NewFromInt(35000)))
	assert.Equal(t, "$1.000.000", billing.FormatMoney(decimal.NewFromInt(1000000)))
	assert.Equal(t, "$92.821", billing.FormatMoney(decimal.RequireFromString("92820.50")))
	assert.Equal(t, "-$1.500", billing.FormatMoney(decimal.NewFromInt(-1500)))
}
