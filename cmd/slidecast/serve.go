package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"slidecast/internal/config"
	"slidecast/internal/history"
	"slidecast/internal/jobs"
	"slidecast/internal/logging"
	"slidecast/internal/media"
	"slidecast/internal/pipeline"
	"slidecast/internal/preflight"
	"slidecast/internal/render"
	"slidecast/internal/server"
	"slidecast/internal/timeline"
)

// evictAfter is how long terminal jobs stay visible in the live store before
// the janitor drops them. History keeps them beyond that.
const (
	evictAfter    = 24 * time.Hour
	evictInterval = time.Hour
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP job server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.NewForDir(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			results := preflight.RunAll(cfg)
			for _, result := range results {
				if result.Passed {
					logger.Info("preflight check passed",
						logging.String("check", result.Name), logging.String("detail", result.Detail))
				} else {
					logger.Error("preflight check failed",
						logging.String("check", result.Name), logging.String("detail", result.Detail))
				}
			}
			if !preflight.Passed(results) {
				return fmt.Errorf("preflight checks failed")
			}

			lock := flock.New(filepath.Join(cfg.Paths.StagingDir, "slidecast.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another slidecast server is already running")
			}
			defer lock.Unlock() //nolint:errcheck

			var archive *history.Archive
			if cfg.History.Enabled {
				archive, err = history.Open(cfg.History.Path)
				if err != nil {
					return fmt.Errorf("open history: %w", err)
				}
				defer archive.Close()
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			store := jobs.NewStore()
			registry := jobs.NewCancelRegistry()
			prober := media.NewProber(cfg.FFprobeBinary())
			renderer := render.NewFFmpegRenderer(render.Options{
				Binary:  cfg.FFmpegBinary(),
				FPS:     cfg.Render.FPS,
				Codec:   cfg.Render.Codec,
				Preset:  cfg.Render.Preset,
				CRF:     cfg.Render.CRF,
				Threads: cfg.Render.Threads,
			}, logger)
			muxer := render.NewMuxer(cfg.FFmpegBinary())
			orchestrator := pipeline.New(store, registry, prober, timeline.NewComposer(nil),
				renderer, muxer, archive, logger)

			srv := server.New(cfg, store, registry, orchestrator, archive, logger)
			if err := srv.Start(ctx); err != nil {
				return err
			}

			go runJanitor(ctx, store, logger)

			<-ctx.Done()
			logger.Info("shutting down")
			srv.Stop()
			return nil
		},
	}
}

func runJanitor(ctx context.Context, store *jobs.Store, logger *slog.Logger) {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := store.Evict(evictAfter); dropped > 0 {
				logger.Info("evicted finished jobs", logging.Int("count", dropped))
			}
		}
	}
}
