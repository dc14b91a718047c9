// Package normalize canonicalizes free-form cell text so that headers,
// descriptions and catalog keywords can be compared by plain equality.
//
// The canonical form is lower-case ASCII letters, digits and single spaces:
//
//	normalize.Text("  Descripción del Ítem ") == "descripcion del item"
//	normalize.Text("Precio Total (IVA incluido)") == "precio total iva incluido"
//
// Normalizing an already normalized string returns it unchanged.
package normalize

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Text returns the canonical form of s. It never fails; empty input yields
// the empty string.
func Text(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = StripMarks(s)

	var sb strings.Builder
	sb.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			pendingSpace = false
			sb.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return sb.String()
}

// StripMarks removes combining marks after canonical decomposition, turning
// "á" into "a" and "ñ" into "n". Other characters are kept.
func StripMarks(s string) string {
	// Transformers carry state, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Value normalizes a loosely typed cell value. Numbers are printed in their
// shortest form (1.0 becomes "1"); nil yields "".
func Value(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Text(t)
	case float64:
		return Text(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Tokens returns the whitespace separated tokens of the normalized text.
func Tokens(s string) []string {
	n := Text(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// Set returns the distinct members of tokens, keeping first-seen order.
func Set(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// All normalizes every entry of names, dropping the ones that normalize to
// the empty string.
func All(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if v := Text(n); v != "" {
			out = append(out, v)
		}
	}
	return out
}
