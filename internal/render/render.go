// Package render executes timeline plans with ffmpeg. The renderer encodes a
// silent video from the plan's filter graph while streaming frame progress to
// a callback; the muxer then attaches the audio track with the plan's offset.
package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/timeline"
)

// ProgressFunc receives (currentFrame, totalFrames) samples during encoding.
// Returning an error aborts the render.
type ProgressFunc func(current, total int) error

// Renderer turns a plan into a video file.
type Renderer interface {
	Render(ctx context.Context, plan *timeline.Plan, outputPath string, onProgress ProgressFunc) error
}

// Options selects the encoder settings for FFmpegRenderer.
type Options struct {
	Binary  string
	FPS     int
	Codec   string
	Preset  string
	CRF     int
	Threads int
}

// FFmpegRenderer renders plans by spawning ffmpeg with a generated
// filter_complex graph.
type FFmpegRenderer struct {
	opts   Options
	logger *slog.Logger
}

// NewFFmpegRenderer builds a renderer with the given encoder options.
func NewFFmpegRenderer(opts Options, logger *slog.Logger) *FFmpegRenderer {
	if strings.TrimSpace(opts.Binary) == "" {
		opts.Binary = "ffmpeg"
	}
	if opts.FPS <= 0 {
		opts.FPS = 24
	}
	if opts.Codec == "" {
		opts.Codec = "libx264"
	}
	if opts.Preset == "" {
		opts.Preset = "medium"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FFmpegRenderer{opts: opts, logger: logging.NewComponentLogger(logger, "render")}
}

// TotalFrames returns the frame count ffmpeg will produce for the plan.
func (r *FFmpegRenderer) TotalFrames(plan *timeline.Plan) int {
	return int(math.Ceil(plan.TotalDuration * float64(r.effectiveOptions(plan).FPS)))
}

// effectiveOptions applies the plan's frame rate override, when present.
func (r *FFmpegRenderer) effectiveOptions(plan *timeline.Plan) Options {
	opts := r.opts
	if plan != nil && plan.FPS > 0 {
		opts.FPS = plan.FPS
	}
	return opts
}

// Render encodes the plan to outputPath without audio. Frame progress parsed
// from ffmpeg's machine-readable progress stream is forwarded to onProgress;
// if the callback returns an error the process is killed and that error is
// returned unchanged so callers can distinguish cancellation from failure.
func (r *FFmpegRenderer) Render(ctx context.Context, plan *timeline.Plan, outputPath string, onProgress ProgressFunc) error {
	args, err := buildRenderArgs(plan, r.effectiveOptions(plan), outputPath)
	if err != nil {
		return err
	}
	totalFrames := r.TotalFrames(plan)

	cmd := exec.CommandContext(ctx, r.opts.Binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "encode", "open progress pipe", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debug("starting ffmpeg",
		logging.Int("total_frames", totalFrames),
		logging.Int("args", len(args)))

	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "encode", "start ffmpeg", err)
	}

	var abortErr error
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		frame, terminal, ok := parseProgressLine(line)
		if !ok {
			continue
		}
		if terminal {
			frame = totalFrames
		}
		if onProgress != nil {
			if cbErr := onProgress(frame, totalFrames); cbErr != nil {
				abortErr = cbErr
				_ = cmd.Process.Kill()
				break
			}
		}
	}

	waitErr := cmd.Wait()
	if abortErr != nil {
		return abortErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitErr != nil {
		return services.Wrap(services.ErrExternalTool, "render", "encode",
			"ffmpeg failed: "+tail(stderr.String(), 400), waitErr)
	}
	return nil
}

// parseProgressLine reads one key=value line from ffmpeg's -progress output.
// It reports the frame counter, and whether the line marks the end of the
// encode.
func parseProgressLine(line string) (frame int, terminal bool, ok bool) {
	switch {
	case strings.HasPrefix(line, "frame="):
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "frame=")))
		if err != nil {
			return 0, false, false
		}
		return n, false, true
	case line == "progress=end":
		return 0, true, true
	default:
		return 0, false, false
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// Mux combines a silent video with its audio track. audioOffset shifts the
// audio so narration starts after the intro; the video stream is copied, not
// re-encoded.
type Muxer struct {
	binary string
	run    muxRunner
}

type muxRunner func(ctx context.Context, name string, args ...string) error

// NewMuxer builds a muxer around the given ffmpeg binary.
func NewMuxer(binary string) *Muxer {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Muxer{binary: binary, run: defaultMuxRunner}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (m *Muxer) WithCommandRunner(run muxRunner) {
	if run != nil {
		m.run = run
	}
}

func defaultMuxRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, tail(string(output), 400))
	}
	return nil
}

// Mux writes videoPath plus audioPath to outputPath.
func (m *Muxer) Mux(ctx context.Context, videoPath, audioPath, outputPath string, audioOffset float64) error {
	args := BuildMuxArgs(videoPath, audioPath, outputPath, audioOffset)
	if err := m.run(ctx, m.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "mux", "combine audio and video", err)
	}
	return nil
}

// BuildMuxArgs assembles the ffmpeg invocation for the mux step.
func BuildMuxArgs(videoPath, audioPath, outputPath string, audioOffset float64) []string {
	args := []string{"-y", "-i", videoPath}
	if audioOffset > 0 {
		args = append(args, "-itsoffset", formatSeconds(audioOffset))
	}
	args = append(args,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-movflags", "+faststart",
		outputPath,
	)
	return args
}
