// Package pipeline drives a submitted job through its state machine:
// probe audio, compose the timeline, render, mux, finalize. Cancellation is
// cooperative and observed at checkpoints between phases and at every render
// progress sample; past the mux checkpoint the job always runs to completion.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"slidecast/internal/history"
	"slidecast/internal/jobs"
	"slidecast/internal/logging"
	"slidecast/internal/media"
	"slidecast/internal/render"
	"slidecast/internal/services"
	"slidecast/internal/subtitles"
	"slidecast/internal/timeline"
)

// Request is one job's full input.
type Request struct {
	JobID        string
	Images       []string
	AudioPath    string
	SubtitlePath string

	Width      int
	Height     int
	// FPS overrides the configured frame rate when positive.
	FPS        int
	Transition timeline.Transition
	Subtitles  timeline.SubtitleOptions
	Intro      *timeline.TitleOptions
	Outro      *timeline.TitleOptions

	// StagingDir holds the temporary silent video during the render phase.
	StagingDir string
	// OutputPath is where the finished video lands.
	OutputPath string
}

// Orchestrator owns the job state machine. One Run per job, each on its own
// goroutine; shared state lives in the store and the cancel registry.
type Orchestrator struct {
	store    *jobs.Store
	registry *jobs.CancelRegistry
	prober   *media.Prober
	composer *timeline.Composer
	renderer render.Renderer
	muxer    *render.Muxer
	archive  *history.Archive
	parser   *subtitles.Parser
	logger   *slog.Logger
}

// New wires an orchestrator. archive may be nil to disable history recording.
func New(
	store *jobs.Store,
	registry *jobs.CancelRegistry,
	prober *media.Prober,
	composer *timeline.Composer,
	renderer render.Renderer,
	muxer *render.Muxer,
	archive *history.Archive,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		store:    store,
		registry: registry,
		prober:   prober,
		composer: composer,
		renderer: renderer,
		muxer:    muxer,
		archive:  archive,
		parser:   subtitles.NewParser(logger),
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run executes one job to a terminal state. The job must already exist in
// the store and have a registered cancellation token.
func (o *Orchestrator) Run(ctx context.Context, req Request) {
	ctx = services.WithJobID(ctx, req.JobID)
	log := logging.WithContext(ctx, o.logger)
	token, _ := o.registry.Lookup(req.JobID)
	defer o.registry.Release(req.JobID)

	tempVideo := filepath.Join(req.StagingDir, req.JobID+"_temp_video.mp4")

	err := o.run(ctx, req, token, tempVideo, log)
	switch {
	case err == nil:
		o.finish(ctx, req.JobID, func(j *jobs.Job) {
			j.Status = jobs.StatusCompleted
			j.Progress = 100
			j.Message = "Video created successfully"
			j.OutputPath = req.OutputPath
		})
		log.Info("job completed", logging.String("output", req.OutputPath))
	case errors.Is(err, jobs.ErrCancelled) || errors.Is(err, context.Canceled):
		o.cleanup(tempVideo, req.OutputPath)
		o.finish(ctx, req.JobID, func(j *jobs.Job) {
			j.Status = jobs.StatusCancelled
			j.Progress = 0
			j.Message = "Process cancelled"
			j.RenderInfo = nil
		})
		log.Info("job cancelled")
	default:
		o.cleanup(tempVideo, req.OutputPath)
		o.finish(ctx, req.JobID, func(j *jobs.Job) {
			j.Status = jobs.StatusError
			j.Progress = 0
			j.Message = "Error: " + services.Message(err)
			j.RenderInfo = nil
		})
		log.Error("job failed", logging.Error(err))
	}
}

func (o *Orchestrator) run(ctx context.Context, req Request, token *jobs.Token, tempVideo string, log *slog.Logger) error {
	checkpoint := func() error {
		if token != nil && token.IsSet() {
			return jobs.ErrCancelled
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return nil
	}

	o.update(req.JobID, jobs.StatusProcessing, 0, "Starting processing...")
	if err := checkpoint(); err != nil {
		return err
	}

	o.update(req.JobID, jobs.StatusProcessing, 5, "Loading audio...")
	audioDuration, err := o.prober.AudioDuration(ctx, req.AudioPath)
	if err != nil {
		return err
	}
	log.Debug("audio probed", logging.Float64("duration_seconds", audioDuration))

	var cues []subtitles.Cue
	if req.SubtitlePath != "" {
		parsed, err := o.parser.ParseFile(req.SubtitlePath)
		if err != nil {
			return err
		}
		cues = parsed
		log.Debug("subtitles parsed", logging.Int("cues", len(cues)))
	}

	// Per-image composition checkpoints, linear from 10 to 60.
	for i := range req.Images {
		if err := checkpoint(); err != nil {
			return err
		}
		progress := 10 + int(float64(i)/float64(len(req.Images))*50)
		o.update(req.JobID, jobs.StatusProcessing, progress,
			fmt.Sprintf("Processing image %d/%d...", i+1, len(req.Images)))
	}

	o.update(req.JobID, jobs.StatusProcessing, 65, "Concatenating segments...")
	plan, err := o.composer.Compose(timeline.Input{
		Images:        req.Images,
		AudioPath:     req.AudioPath,
		AudioDuration: audioDuration,
		Cues:          cues,
		Transition:    req.Transition,
		Subtitles:     req.Subtitles,
		Intro:         req.Intro,
		Outro:         req.Outro,
		Width:         req.Width,
		Height:        req.Height,
		FPS:           req.FPS,
	})
	if err != nil {
		return err
	}

	if len(cues) > 0 {
		o.update(req.JobID, jobs.StatusProcessing, 70, "Adding subtitles...")
	}
	if err := checkpoint(); err != nil {
		return err
	}

	if req.Intro != nil {
		o.update(req.JobID, jobs.StatusProcessing, 77, "Creating intro...")
	}
	if req.Outro != nil {
		o.update(req.JobID, jobs.StatusProcessing, 78, "Creating outro...")
	}
	if req.Intro != nil || req.Outro != nil {
		o.update(req.JobID, jobs.StatusProcessing, 79, "Concatenating intro/outro...")
	}
	if err := checkpoint(); err != nil {
		return err
	}

	o.update(req.JobID, jobs.StatusProcessing, 80, "Starting render...")
	adapter := render.NewProgressAdapter(o.store, req.JobID, token)
	if err := o.renderer.Render(ctx, plan, tempVideo, adapter.OnSample); err != nil {
		return err
	}

	if err := checkpoint(); err != nil {
		return err
	}

	// Final checkpoint passed: the mux always runs to completion.
	o.update(req.JobID, jobs.StatusProcessing, 95, "Combining audio...")
	if err := o.muxer.Mux(context.WithoutCancel(ctx), tempVideo, req.AudioPath, req.OutputPath, plan.AudioOffset); err != nil {
		return err
	}

	if err := os.Remove(tempVideo); err != nil && !os.IsNotExist(err) {
		log.Debug("temp video cleanup failed", logging.Error(err))
	}
	return nil
}

func (o *Orchestrator) update(jobID string, status jobs.Status, progress int, message string) {
	_, _ = o.store.Update(jobID, func(j *jobs.Job) {
		j.Status = status
		j.Progress = progress
		j.Message = message
	})
}

func (o *Orchestrator) finish(ctx context.Context, jobID string, fn func(*jobs.Job)) {
	job, err := o.store.Update(jobID, fn)
	if err != nil {
		return
	}
	if o.archive != nil {
		if err := o.archive.RecordOutcome(context.WithoutCancel(ctx), job); err != nil {
			o.logger.Warn("history outcome not recorded",
				logging.String(logging.FieldJobID, jobID), logging.Error(err))
		}
	}
}

func (o *Orchestrator) cleanup(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			o.logger.Debug("cleanup failed", logging.String("path", path), logging.Error(err))
		}
	}
}
