// Package media inspects input files with ffprobe. The pipeline needs the
// audio duration to partition the timeline; everything else here exists so
// preflight can reject inputs ffmpeg would choke on later.
package media

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"slidecast/internal/services"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Channels  int    `json:"channels"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober runs ffprobe against media files.
type Prober struct {
	binary string
	run    commandRunner
}

// NewProber builds a prober using the given ffprobe binary name or path.
func NewProber(binary string) *Prober {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary, run: defaultRunner}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (p *Prober) WithCommandRunner(run commandRunner) {
	if run != nil {
		p.run = run
	}
}

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Inspect executes ffprobe against path and decodes the JSON response.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, "media", "inspect", "empty path", nil)
	}

	output, err := p.run(ctx, p.binary,
		"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "media", "inspect", "ffprobe failed for "+path, err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "media", "inspect", "parse ffprobe output", err)
	}
	return result, nil
}

// AudioDuration probes path and returns its duration in seconds. The
// container duration wins; the first audio stream's duration is the fallback
// for formats that omit it.
func (p *Prober) AudioDuration(ctx context.Context, path string) (float64, error) {
	result, err := p.Inspect(ctx, path)
	if err != nil {
		return 0, err
	}

	if d, ok := parseSeconds(result.Format.Duration); ok {
		return d, nil
	}
	for _, stream := range result.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			if d, ok := parseSeconds(stream.Duration); ok {
				return d, nil
			}
		}
	}
	return 0, services.Wrap(services.ErrExternalTool, "media", "inspect", "no duration reported for "+path, nil)
}

// HasAudioStream reports whether the result contains at least one audio stream.
func (r Result) HasAudioStream() bool {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return true
		}
	}
	return false
}

func parseSeconds(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return seconds, true
}
