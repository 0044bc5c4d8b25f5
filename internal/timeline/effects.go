package timeline

// EffectKind names a declarative entry or exit effect evaluated by the
// renderer. Zoom is continuous and sampled per frame via ZoomInScale and
// ZoomOutScale rather than being a discrete on/off effect.
type EffectKind string

const (
	EffectFadeIn       EffectKind = "fade_in"
	EffectFadeOut      EffectKind = "fade_out"
	EffectCrossfadeIn  EffectKind = "crossfade_in"
	EffectCrossfadeOut EffectKind = "crossfade_out"
	EffectSlideIn      EffectKind = "slide_in"
	EffectSlideOut     EffectKind = "slide_out"
	EffectZoomIn       EffectKind = "zoom_in"
	EffectZoomOut      EffectKind = "zoom_out"
)

// Effect is one edge animation on a segment. Direction applies to slides and
// names where the motion comes from (entry) or goes to (exit).
type Effect struct {
	Kind      EffectKind
	Duration  float64
	Direction string
}

// transitionSpec is the policy for one transition style between images.
type transitionSpec struct {
	entry        *Effect
	exit         *Effect
	needsOverlap bool
}

// transitionFor maps a style name to its effect pair and overlap behavior.
// Unknown styles and "none" yield no effects and no overlap.
func transitionFor(style string, duration float64) transitionSpec {
	effect := func(kind EffectKind, direction string) *Effect {
		return &Effect{Kind: kind, Duration: duration, Direction: direction}
	}

	switch style {
	case "crossfade":
		return transitionSpec{entry: effect(EffectCrossfadeIn, ""), exit: effect(EffectCrossfadeOut, ""), needsOverlap: true}
	case "fade":
		return transitionSpec{entry: effect(EffectFadeIn, ""), exit: effect(EffectFadeOut, ""), needsOverlap: true}
	case "fadein":
		return transitionSpec{entry: effect(EffectFadeIn, "")}
	case "fadeout":
		return transitionSpec{exit: effect(EffectFadeOut, "")}
	case "slide_left":
		return transitionSpec{entry: effect(EffectSlideIn, "right"), exit: effect(EffectSlideOut, "left"), needsOverlap: true}
	case "slide_right":
		return transitionSpec{entry: effect(EffectSlideIn, "left"), exit: effect(EffectSlideOut, "right"), needsOverlap: true}
	case "slide_up":
		return transitionSpec{entry: effect(EffectSlideIn, "bottom"), exit: effect(EffectSlideOut, "top"), needsOverlap: true}
	case "slide_down":
		return transitionSpec{entry: effect(EffectSlideIn, "top"), exit: effect(EffectSlideOut, "bottom"), needsOverlap: true}
	default:
		return transitionSpec{}
	}
}

// ZoomInScale returns the render scale for a zoom entry at elapsed seconds t
// into the segment. Scale rises from 0.3 to 1.0 over the animation window.
func ZoomInScale(t, window float64) float64 {
	if window <= 0 || t >= window {
		return 1.0
	}
	if t < 0 {
		t = 0
	}
	return 0.3 + 0.7*t/window
}

// ZoomOutScale returns the render scale for a zoom exit at elapsed seconds t
// into a segment of the given duration. Scale falls from 1.0 to 0.3 over the
// final animation window.
func ZoomOutScale(t, duration, window float64) float64 {
	if window <= 0 {
		return 1.0
	}
	start := duration - window
	if t <= start {
		return 1.0
	}
	progress := (t - start) / window
	if progress > 1 {
		progress = 1
	}
	return 1.0 - 0.7*progress
}

// titleAnimationWindow bounds a title's entry/exit animation to one second or
// a third of the segment, whichever is shorter.
func titleAnimationWindow(duration float64) float64 {
	if duration/3 < 1.0 {
		return duration / 3
	}
	return 1.0
}

// titleEffect maps a title animation name to an effect descriptor. The
// "typewriter" entry animation is handled by keyframe generation, not here.
func titleEffect(name string, window float64, entry bool) *Effect {
	switch name {
	case "fade":
		if entry {
			return &Effect{Kind: EffectFadeIn, Duration: window}
		}
		return &Effect{Kind: EffectFadeOut, Duration: window}
	case "slide_left", "slide_right", "slide_top", "slide_bottom":
		direction := name[len("slide_"):]
		if entry {
			return &Effect{Kind: EffectSlideIn, Duration: window, Direction: direction}
		}
		return &Effect{Kind: EffectSlideOut, Duration: window, Direction: direction}
	case "zoom":
		if entry {
			return &Effect{Kind: EffectZoomIn, Duration: window}
		}
		return &Effect{Kind: EffectZoomOut, Duration: window}
	default:
		return nil
	}
}
