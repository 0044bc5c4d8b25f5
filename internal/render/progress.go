package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"slidecast/internal/jobs"
)

const (
	progressBase = 80
	progressMax  = 95
	barWidth     = 20
)

// ProgressAdapter translates renderer frame samples into job store updates.
// It is the only writer to the job record during the encode phase. Each
// sample first checks the cancellation token; a set token aborts the render
// by returning jobs.ErrCancelled to the renderer.
type ProgressAdapter struct {
	store *jobs.Store
	jobID string
	token *jobs.Token

	start time.Time
	now   func() time.Time
}

// NewProgressAdapter builds an adapter for one job's render phase.
func NewProgressAdapter(store *jobs.Store, jobID string, token *jobs.Token) *ProgressAdapter {
	return &ProgressAdapter{
		store: store,
		jobID: jobID,
		token: token,
		now:   time.Now,
	}
}

// OnSample consumes one (currentFrame, totalFrames) sample. The first sample
// starts the speed clock.
func (a *ProgressAdapter) OnSample(current, total int) error {
	if a.token != nil && a.token.IsSet() {
		return jobs.ErrCancelled
	}

	if a.start.IsZero() {
		a.start = a.now()
	}

	fraction := 0.0
	if total > 0 {
		fraction = float64(current) / float64(total)
	}
	progress := progressBase + int(fraction*float64(progressMax-progressBase))

	elapsed := a.now().Sub(a.start).Seconds()
	fps := 0.0
	if elapsed > 0 {
		fps = float64(current) / elapsed
	}
	eta := 0.0
	if fps > 0 {
		eta = float64(total-current) / fps
	}

	message := renderMessage(current, total, fraction, fps, eta)
	info := &jobs.RenderInfo{
		CurrentFrame: current,
		TotalFrames:  total,
		FPSSpeed:     math.Round(fps*100) / 100,
		ETASeconds:   math.Round(eta*10) / 10,
		Percent:      math.Round(fraction*1000) / 10,
	}

	_, err := a.store.Update(a.jobID, func(j *jobs.Job) {
		j.Progress = progress
		j.Message = message
		j.RenderInfo = info
	})
	return err
}

// FormatProgress renders a progress line for current/total frames after
// elapsed encode time. Used for terminal display by the synchronous CLI
// render path.
func FormatProgress(current, total int, elapsed time.Duration) string {
	fraction := 0.0
	if total > 0 {
		fraction = float64(current) / float64(total)
	}
	fps := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		fps = float64(current) / secs
	}
	eta := 0.0
	if fps > 0 {
		eta = float64(total-current) / fps
	}
	return renderMessage(current, total, fraction, fps, eta)
}

func renderMessage(current, total int, fraction, fps, eta float64) string {
	filled := int(barWidth * fraction)
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	etaMin := int(eta) / 60
	etaSec := int(eta) % 60
	return fmt.Sprintf("Rendering: %d/%d [%s] %.0f%% | %.1f fps | ETA: %d:%02d",
		current, total, bar, fraction*100, fps, etaMin, etaSec)
}
