// Package money holds the Naira helpers shared by order totals, message
// templates and the admin revenue figures.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is the decimal type used for every price and total.
type Amount = decimal.Decimal

const NairaSign = "₦"

func init() {
	// Totals travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

func Zero() Amount {
	return decimal.Zero
}

func FromInt(v int64) Amount {
	return decimal.NewFromInt(v)
}

func FromFloat(v float64) Amount {
	return decimal.NewFromFloat(v)
}

// LineTotal is price multiplied by quantity.
func LineTotal(price Amount, quantity int) Amount {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// FormatNaira renders an amount like ₦1,234,567 or ₦1,500.5. Kobo are
// rounded to two places and trailing zeros dropped.
func FormatNaira(amount Amount) string {
	return NairaSign + FormatGrouped(amount)
}

// FormatGrouped renders the amount with thousands separators and no sign.
func FormatGrouped(amount Amount) string {
	rounded := amount.Round(2)
	negative := rounded.IsNegative()
	text := rounded.Abs().String()

	intPart, frac, _ := strings.Cut(text, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
