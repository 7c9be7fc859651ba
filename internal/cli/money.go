package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount as dollars with thousands separators,
// e.g. "$1,234.50" or "-$12.00".
func FormatMoney(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	whole := r.Truncate(0)
	cents := r.Sub(whole).StringFixed(2)[1:] // "0.50" -> ".50"
	return sign + "$" + humanize.Comma(whole.IntPart()) + cents
}
