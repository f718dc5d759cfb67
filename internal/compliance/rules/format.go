package rules

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatMoney renders an amount with thousands separators and two decimals,
// e.g. "BRL 20,000.00". Digits come from the decimal itself, never a float.
func formatMoney(currency string, amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if rest, ok := strings.CutPrefix(fixed, "-"); ok {
		sign, fixed = "-", rest
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	return currency + " " + sign + groupThousands(whole) + "." + frac
}

// groupThousands inserts separators into a run of decimal digits. Values
// beyond int64 are grouped by hand with the same separator.
func groupThousands(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return printer.Sprintf("%d", n)
	}
	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
