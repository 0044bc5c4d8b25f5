package config

import (
	"fmt"
	"strconv"
	"strings"
)

var validTransitions = map[string]bool{
	"none":        true,
	"crossfade":   true,
	"fade":        true,
	"fadein":      true,
	"fadeout":     true,
	"slide_left":  true,
	"slide_right": true,
	"slide_up":    true,
	"slide_down":  true,
}

var validPositions = map[string]bool{
	"bottom": true,
	"center": true,
	"top":    true,
}

// Validate checks configuration invariants and returns the first violation found.
func (c *Config) Validate() error {
	if c.Paths.StagingDir == "" {
		return fmt.Errorf("paths.staging_dir is required")
	}
	if c.Paths.LogDir == "" {
		return fmt.Errorf("paths.log_dir is required")
	}
	if c.Paths.APIBind == "" {
		return fmt.Errorf("paths.api_bind is required")
	}

	if c.Render.FPS <= 0 {
		return fmt.Errorf("render.fps must be positive, got %d", c.Render.FPS)
	}
	if _, _, err := ParseResolution(c.Render.Resolution); err != nil {
		return fmt.Errorf("render.resolution: %w", err)
	}
	if !validTransitions[c.Render.TransitionType] {
		return fmt.Errorf("render.transition_type %q is not supported", c.Render.TransitionType)
	}
	if c.Render.TransitionDuration < 0 {
		return fmt.Errorf("render.transition_duration must not be negative, got %g", c.Render.TransitionDuration)
	}
	if c.Render.CRF < 0 || c.Render.CRF > 51 {
		return fmt.Errorf("render.crf must be between 0 and 51, got %d", c.Render.CRF)
	}
	if c.Render.Threads < 0 {
		return fmt.Errorf("render.threads must not be negative, got %d", c.Render.Threads)
	}

	if c.Subtitles.FontSize <= 0 {
		return fmt.Errorf("subtitles.font_size must be positive, got %d", c.Subtitles.FontSize)
	}
	if c.Subtitles.StrokeWidth < 0 {
		return fmt.Errorf("subtitles.stroke_width must not be negative, got %d", c.Subtitles.StrokeWidth)
	}
	if !validPositions[c.Subtitles.Position] {
		return fmt.Errorf("subtitles.position %q is not supported", c.Subtitles.Position)
	}
	if c.Subtitles.MaxTypewriterSteps <= 0 {
		return fmt.Errorf("subtitles.max_typewriter_steps must be positive, got %d", c.Subtitles.MaxTypewriterSteps)
	}

	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	return nil
}

// ParseResolution splits a WIDTHxHEIGHT string into its components.
func ParseResolution(value string) (width, height int, err error) {
	parts := strings.SplitN(value, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT, got %q", value)
	}
	width, err = strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", value)
	}
	height, err = strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", value)
	}
	return width, height, nil
}
