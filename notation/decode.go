package notation

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// denominations maps a trailing letter to its power of ten
var denominations = map[byte]int32{
	'T': 12,
	'B': 9,
	'M': 6,
	'K': 3,
}

// DecodeScaled converts denominated text such as "1.04B" to 1040000000.
// Text without a suffix is parsed as a plain number.
func DecodeScaled(text string) Value {
	s := stripGrouping(normalize(text))
	if s == "" {
		return Missing
	}

	exp, ok := denominations[s[len(s)-1]]
	if !ok {
		return parse(s)
	}

	d, err := parseDecimal(s[:len(s)-1])
	if err != nil {
		return Missing
	}
	return finite(d.Shift(exp))
}

// DecodeFloat strips thousands separators and parses the rest, ie. "1,234.56" -> 1234.56
func DecodeFloat(text string) Value {
	return parse(stripGrouping(normalize(text)))
}

// DecodePercent removes a trailing percent sign, ie. "7.08%" -> 7.08.
// Text without the sign is rejected rather than truncated.
func DecodePercent(text string) Value {
	s := normalize(text)
	if !strings.HasSuffix(s, "%") {
		return Missing
	}
	return DecodeFloat(strings.TrimSuffix(s, "%"))
}

var errNotPlain = errors.New("not a plain decimal number")

func parse(s string) Value {
	d, err := parseDecimal(s)
	if err != nil {
		return Missing
	}
	return finite(d)
}

// parseDecimal accepts only an optional sign, digits and a decimal point.
// Exponent notation never appears on quote pages and is rejected.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(s, "+")
	if !isPlain(s) {
		return decimal.Zero, errNotPlain
	}
	return decimal.NewFromString(s)
}

func isPlain(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// finite converts d, treating values beyond float64 range as missing
func finite(d decimal.Decimal) Value {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Missing
	}
	return Of(f)
}

// normalize trims whitespace and swaps the typographic minus for ASCII
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\u2212", "-")
	return strings.TrimSpace(text)
}

func stripGrouping(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
