// Package numeric converts loosely formatted spreadsheet figures into numbers.
//
// Spreadsheets mix comma and dot conventions, currency markers and
// non-breaking spaces. Parse applies one fixed policy:
//
//   - when both ',' and '.' occur, the rightmost one is the decimal separator
//     and the other is a thousands separator;
//   - when only one kind occurs, it is a decimal separator only if it occurs
//     once and is followed by exactly one or two digits; otherwise it is a
//     thousands separator and is removed.
//
// So "1.234" is 1234, "1,50" is 1.5, "1.234,56" and "1,234.56" are 1234.56.
package numeric

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// currencyRe matches the currency markers stripped before parsing. "Gs." must
// go before separator analysis because its dot is not a separator.
var currencyRe = regexp.MustCompile(`(?i)gs\.?|₲|\$|€|usd|pyg`)

// Parse converts v to a float. It accepts strings, floats and integers and
// reports false for anything it cannot read, including NaN and infinities.
// It never panics.
func Parse(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case string:
		return ParseText(t)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseText parses a textual figure using the separator policy described in
// the package documentation.
func ParseText(s string) (float64, bool) {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.TrimSpace(currencyRe.ReplaceAllString(s, ""))

	comma := strings.Contains(s, ",")
	dot := strings.Contains(s, ".")

	switch {
	case comma && dot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma:
		if intPart, frac, ok := decimalSplit(s, ","); ok {
			s = intPart + "." + frac
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dot:
		if _, _, ok := decimalSplit(s, "."); !ok {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)

	switch s {
	case "", "-", ".", "-.":
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

// decimalSplit reports whether sep occurs exactly once and is followed by one
// or two digits and nothing else.
func decimalSplit(s, sep string) (string, string, bool) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", false
	}
	frac := strings.TrimSpace(parts[1])
	if len(frac) < 1 || len(frac) > 2 {
		return "", "", false
	}
	for i := 0; i < len(frac); i++ {
		if frac[i] < '0' || frac[i] > '9' {
			return "", "", false
		}
	}
	return parts[0], frac, true
}

// ParseInt parses v and rounds the result half to even.
func ParseInt(v any) (int64, bool) {
	f, ok := Parse(v)
	if !ok {
		return 0, false
	}
	return RoundHalfEven(f), true
}

// RoundHalfEven rounds f to the nearest integer, ties to even (2.5 -> 2,
// 3.5 -> 4). It is the single rounding rule for money in this module.
func RoundHalfEven(f float64) int64 {
	return int64(math.RoundToEven(f))
}

// FormatThousands renders n with '.' as the thousands separator, the way
// guaraní amounts are printed: 1234567 -> "1.234.567".
func FormatThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	sb.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		sb.WriteByte('.')
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
