package textlayout_test

import (
	"errors"
	"strings"
	"testing"

	"slidecast/internal/textlayout"
)

func TestWrapNeverSplitsWords(t *testing.T) {
	inputs := []string{
		"the quick brown fox jumps over the lazy dog",
		"one",
		"supercalifragilisticexpialidocious tiny words here",
		"a b c d e f g h i j k l m n o p",
		"",
	}
	budgets := []float64{50, 120, 400, 1000}

	for _, input := range inputs {
		for _, budget := range budgets {
			wrapped := textlayout.Wrap(input, "any", 48, budget, nil)

			got := strings.Fields(strings.ReplaceAll(wrapped, "\n", " "))
			want := strings.Fields(input)
			if len(got) != len(want) {
				t.Fatalf("word count changed for %q at budget %g: %v vs %v", input, budget, got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("word %d broken for %q at budget %g: %q vs %q", i, input, budget, got[i], want[i])
				}
			}
		}
	}
}

func TestWrapRespectsBudget(t *testing.T) {
	m := textlayout.EstimateMeasurer{}
	const size = 48
	const budget = 600.0

	wrapped := textlayout.Wrap("the quick brown fox jumps over the lazy dog again and again", "any", size, budget, m)
	for _, line := range strings.Split(wrapped, "\n") {
		if w := m.LineWidth(line, "any", size); w > budget {
			// A single over-wide word is the only permitted overflow.
			if strings.Contains(line, " ") {
				t.Errorf("line %q measures %g, over budget %g", line, w, budget)
			}
		}
	}
}

func TestWrapOverWideWordGetsOwnLine(t *testing.T) {
	wrapped := textlayout.Wrap("hi incomprehensibilities hi", "any", 48, 100, nil)
	lines := strings.Split(wrapped, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), wrapped)
	}
	if lines[1] != "incomprehensibilities" {
		t.Fatalf("middle line = %q", lines[1])
	}
}

type fixedMetrics struct{ perChar float64 }

func (f fixedMetrics) TextWidth(text string) float64 {
	return float64(len(text)) * f.perChar
}

func TestCachingMeasurerLoadsOnce(t *testing.T) {
	loads := 0
	loader := func(fontRef string, size int) (textlayout.FontMetrics, error) {
		loads++
		return fixedMetrics{perChar: 10}, nil
	}
	m := textlayout.NewCachingMeasurer(loader, 8)

	for i := 0; i < 5; i++ {
		if w := m.LineWidth("abcd", "font.ttf", 48); w != 40 {
			t.Fatalf("width = %g, want 40", w)
		}
	}
	if loads != 1 {
		t.Fatalf("loader ran %d times, want 1", loads)
	}

	m.LineWidth("abcd", "font.ttf", 32)
	if loads != 2 {
		t.Fatalf("different size should load again, loads = %d", loads)
	}
}

func TestCachingMeasurerFallsBackOnLoadError(t *testing.T) {
	loads := 0
	loader := func(fontRef string, size int) (textlayout.FontMetrics, error) {
		loads++
		return nil, errors.New("no such font")
	}
	m := textlayout.NewCachingMeasurer(loader, 8)

	want := textlayout.EstimateMeasurer{}.LineWidth("abcd", "missing.ttf", 48)
	for i := 0; i < 3; i++ {
		if w := m.LineWidth("abcd", "missing.ttf", 48); w != want {
			t.Fatalf("width = %g, want estimate %g", w, want)
		}
	}
	if loads != 1 {
		t.Fatalf("failure should be cached, loads = %d", loads)
	}
}
