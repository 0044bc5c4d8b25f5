// Package textlayout reflows text into lines that fit a pixel width budget.
// Width is delegated to a Measurer so callers can plug in real font metrics;
// without one, a conservative per-character estimate keeps wrapping usable.
package textlayout

import (
	"strings"
	"unicode/utf8"
)

// Measurer reports the rendered pixel width of a single line of text in the
// given font at the given size.
type Measurer interface {
	LineWidth(text, fontRef string, size int) float64
}

// EstimateMeasurer approximates width as characters times 0.65 of the font
// size. Overshoots for most proportional fonts, so wrapped lines stay inside
// the budget even without real metrics.
type EstimateMeasurer struct{}

func (EstimateMeasurer) LineWidth(text, _ string, size int) float64 {
	return float64(utf8.RuneCountInString(text)) * float64(size) * 0.65
}

// Wrap inserts line breaks so that no line's measured width exceeds budget
// and no word is split. Words are accumulated greedily; when adding a word
// overflows the budget, the line is closed and the word starts the next one.
// A single word wider than the budget still gets its own line, so output is
// produced for any input. A nil measurer uses EstimateMeasurer.
func Wrap(text, fontRef string, size int, budget float64, m Measurer) string {
	if m == nil {
		m = EstimateMeasurer{}
	}

	words := strings.Fields(text)
	var lines []string
	var current []string

	for _, word := range words {
		current = append(current, word)
		candidate := strings.Join(current, " ")
		if m.LineWidth(candidate, fontRef, size) > budget {
			current = current[:len(current)-1]
			if len(current) > 0 {
				lines = append(lines, strings.Join(current, " "))
			}
			current = []string{word}
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}

	return strings.Join(lines, "\n")
}
