package font

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultWidth is used for glyphs missing from every width table, in 1000ths
// of an em.
const DefaultWidth = 500.0

// Face measures text set in one standard-14 font at one size.
type Face struct {
	Name string
	Size float64 // points

	widths   map[rune]float64
	fallback map[rune]float64
}

// NewFace returns a face for a standard-14 font name such as "Helvetica".
func NewFace(name string, size float64) (*Face, error) {
	widths, ok := standardFonts[name]
	if !ok {
		return nil, fmt.Errorf("font %q is not a standard font (want one of %s)", name, strings.Join(StandardNames(), ", "))
	}
	if size <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", size)
	}

	fallback := helveticaWidths
	if strings.HasPrefix(name, "Times") {
		fallback = timesWidths
	}
	return &Face{Name: name, Size: size, widths: widths, fallback: fallback}, nil
}

// WithSize returns f at another size. It returns f itself when the size is
// unchanged.
func (f *Face) WithSize(size float64) *Face {
	if size == f.Size || size <= 0 {
		return f
	}
	c := *f
	c.Size = size
	return &c
}

// IsStandard reports whether name is one of the standard-14 fonts.
func IsStandard(name string) bool {
	_, ok := standardFonts[name]
	return ok
}

// StandardNames returns the standard-14 font names, sorted.
func StandardNames() []string {
	names := make([]string, 0, len(standardFonts))
	for n := range standardFonts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GlyphWidth returns the width of r in 1000ths of an em. Accented letters
// take the width of their base letter, which matches the standard metrics
// for Latin-1.
func (f *Face) GlyphWidth(r rune) float64 {
	if w, ok := f.lookup(r); ok {
		return w
	}
	if d := norm.NFD.String(string(r)); d != string(r) {
		base, _ := utf8.DecodeRuneInString(d)
		if w, ok := f.lookup(base); ok {
			return w
		}
	}
	return DefaultWidth
}

func (f *Face) lookup(r rune) (float64, bool) {
	if w, ok := f.widths[r]; ok {
		return w, true
	}
	w, ok := f.fallback[r]
	return w, ok
}

// Units returns the width of s in 1000ths of an em.
func (f *Face) Units(s string) float64 {
	total := 0.0
	for _, r := range s {
		total += f.GlyphWidth(r)
	}
	return total
}

// Width returns the rendered width of s in points.
func (f *Face) Width(s string) float64 {
	return f.Units(s) * f.Size / 1000
}
