package overlay

import (
	"strings"
	"unicode/utf8"
)

// Measurer reports the rendered width of a string in points. *font.Face
// satisfies it.
type Measurer interface {
	Width(s string) float64
}

// Wrap splits text into lines no wider than maxWidth using greedy word
// accumulation: a line starts with one word and takes the following words
// while the line still fits. Words are never hyphenated, so a single word
// wider than maxWidth occupies a line on its own. A non-positive maxWidth
// disables wrapping. Blank text yields no lines.
func Wrap(text string, maxWidth float64, m Measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		if m.Width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = w
	}
	return append(lines, current)
}

// Truncate keeps the first maxLines lines. Dropped lines are not reported;
// blocks have a fixed area on the page. A non-positive maxLines keeps all.
func Truncate(lines []string, maxLines int) []string {
	if maxLines <= 0 || len(lines) <= maxLines {
		return lines
	}
	return lines[:maxLines]
}

// Clip cuts s to at most n runes. A non-positive n returns s unchanged.
func Clip(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
