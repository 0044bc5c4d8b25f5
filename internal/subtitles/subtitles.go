// Package subtitles parses SubRip (.srt) subtitle tracks into ordered timed
// cues. Parsing is lenient: blocks that do not match the numbered-block
// format are skipped with a debug log rather than failing the whole file.
package subtitles

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"slidecast/internal/logging"
	"slidecast/internal/services"
)

// Cue is one timed subtitle entry. Start and End are seconds from track
// origin; End is strictly after Start in well-formed input. Text has markup
// tags removed and embedded newlines collapsed to spaces.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// Duration returns the cue's on-screen time in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

var (
	blockSeparator = regexp.MustCompile(`\r?\n\s*\r?\n`)
	blockPattern   = regexp.MustCompile(`(?s)^(\d+)\s*\n(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*\n(.*)$`)
	markupTag      = regexp.MustCompile(`<[^>]+>`)
)

// Parser converts SubRip text into cues.
type Parser struct {
	logger *slog.Logger
}

// NewParser returns a parser that reports skipped blocks on logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Parser{logger: logging.NewComponentLogger(logger, "subtitles")}
}

// ParseFile reads and parses the subtitle file at path.
func (p *Parser) ParseFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "subtitles", "parse", fmt.Sprintf("read subtitle file %s", path), err)
	}
	return p.Parse(string(data)), nil
}

// Parse scans content block by block. Each block is an index line, a timing
// line `HH:MM:SS,mmm --> HH:MM:SS,mmm` (period accepted in place of the
// comma), and one or more text lines. Cues are returned in file order.
func (p *Parser) Parse(content string) []Cue {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\uFEFF")

	var cues []Cue
	for _, block := range blockSeparator.Split(content, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		match := blockPattern.FindStringSubmatch(block)
		if match == nil {
			p.logger.Debug("skipping malformed subtitle block",
				logging.String("block", truncate(block, 80)))
			continue
		}

		start := timestampSeconds(match[2], match[3], match[4], match[5])
		end := timestampSeconds(match[6], match[7], match[8], match[9])
		text := markupTag.ReplaceAllString(strings.TrimSpace(match[10]), "")
		text = strings.ReplaceAll(text, "\n", " ")

		cues = append(cues, Cue{Start: start, End: end, Text: text})
	}
	return cues
}

func timestampSeconds(h, m, s, ms string) float64 {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	millis, _ := strconv.Atoi(ms)
	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Serialize renders cues back to SubRip text. Used by tooling that rewrites
// normalized tracks alongside rendered output.
func Serialize(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, formatTimestamp(cue.Start), formatTimestamp(cue.End), cue.Text)
	}
	return b.String()
}

func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds*1000 + 0.5)
	h := totalMillis / 3600000
	m := totalMillis / 60000 % 60
	s := totalMillis / 1000 % 60
	ms := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
