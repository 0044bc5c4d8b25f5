package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"slidecast/internal/config"
	"slidecast/internal/fonts"
	"slidecast/internal/logging"
	"slidecast/internal/media"
	"slidecast/internal/render"
	"slidecast/internal/subtitles"
	"slidecast/internal/timeline"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".gif": true, ".webp": true,
}

func newRenderCommand(configFlag *string) *cobra.Command {
	var (
		imagesDir  string
		audioPath  string
		outputPath string
		transition float64
		resolution string
		fps        int
		srtPath    string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a video locally without the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}

			images, err := collectImages(imagesDir)
			if err != nil {
				return err
			}
			if len(images) == 0 {
				return fmt.Errorf("no images found in %s", imagesDir)
			}

			width, height, err := config.ParseResolution(resolution)
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			prober := media.NewProber(cfg.FFprobeBinary())
			audioDuration, err := prober.AudioDuration(ctx, audioPath)
			if err != nil {
				return err
			}

			var cues []subtitles.Cue
			if srtPath != "" {
				resolved, err := resolveSubtitlePath(srtPath)
				if err != nil {
					return err
				}
				if resolved != "" {
					cues, err = subtitles.NewParser(logger).ParseFile(resolved)
					if err != nil {
						return err
					}
				}
			}

			fontPath, _ := fonts.Resolve(cfg.Subtitles.Font)
			plan, err := timeline.NewComposer(nil).Compose(timeline.Input{
				Images:        images,
				AudioPath:     audioPath,
				AudioDuration: audioDuration,
				Cues:          cues,
				Transition: timeline.Transition{
					Style:    cfg.Render.TransitionType,
					Duration: transition,
				},
				Subtitles: timeline.SubtitleOptions{
					Style: timeline.TextStyle{
						FontPath:    fontPath,
						FontSize:    cfg.Subtitles.FontSize,
						Color:       cfg.Subtitles.FontColor,
						StrokeColor: cfg.Subtitles.StrokeColor,
						StrokeWidth: cfg.Subtitles.StrokeWidth,
					},
					Position:       timeline.Anchor(cfg.Subtitles.Position),
					Typewriter:     cfg.Subtitles.Typewriter,
					MaxStepsPerCue: cfg.Subtitles.MaxTypewriterSteps,
				},
				Width:  width,
				Height: height,
				FPS:    fps,
			})
			if err != nil {
				return err
			}

			renderer := render.NewFFmpegRenderer(render.Options{
				Binary:  cfg.FFmpegBinary(),
				FPS:     cfg.Render.FPS,
				Codec:   cfg.Render.Codec,
				Preset:  cfg.Render.Preset,
				CRF:     cfg.Render.CRF,
				Threads: cfg.Render.Threads,
			}, logger)

			tempVideo := outputPath + ".video.tmp.mp4"
			defer os.Remove(tempVideo)

			start := time.Now()
			err = renderer.Render(ctx, plan, tempVideo, func(current, total int) error {
				fmt.Fprintf(cmd.OutOrStdout(), "\r%s", render.FormatProgress(current, total, time.Since(start)))
				return nil
			})
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			muxer := render.NewMuxer(cfg.FFmpegBinary())
			if err := muxer.Mux(ctx, tempVideo, audioPath, outputPath, plan.AudioOffset); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Video created: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&imagesDir, "images", "i", "", "Folder containing the slideshow images")
	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "Audio file (mp3, wav, ...)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "output.mp4", "Output video file")
	cmd.Flags().Float64VarP(&transition, "transition", "t", 0.5, "Transition duration in seconds")
	cmd.Flags().StringVarP(&resolution, "resolution", "r", "1080x1920", "Video resolution (WIDTHxHEIGHT)")
	cmd.Flags().IntVarP(&fps, "fps", "f", 24, "Frames per second")
	cmd.Flags().StringVarP(&srtPath, "subtitles", "s", "", "Subtitle .srt file or a folder containing one")
	_ = cmd.MarkFlagRequired("images")
	_ = cmd.MarkFlagRequired("audio")

	return cmd
}

// collectImages returns the image files in a folder, sorted by name.
func collectImages(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read images folder: %w", err)
	}
	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			images = append(images, filepath.Join(folder, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// resolveSubtitlePath accepts an .srt file directly or picks the first .srt
// inside a folder. A folder without any .srt yields "".
func resolveSubtitlePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("subtitles: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("read subtitles folder: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".srt") {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(path, names[0]), nil
}
