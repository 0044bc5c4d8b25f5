package timeline

import (
	"fmt"

	"slidecast/internal/services"
	"slidecast/internal/subtitles"
	"slidecast/internal/textlayout"
)

// Subtitle text keeps this many pixels of horizontal margin; titles keep a
// slightly wider one.
const (
	subtitleWidthMargin = 80
	titleWidthMargin    = 100
	bottomTextMargin    = 50

	defaultSubtitleRatio = 0.7
	titleRatio           = 0.6
	defaultMaxSteps      = 30
)

// Transition selects the style and length of the animation between images.
type Transition struct {
	Style    string
	Duration float64
}

// SubtitleOptions controls how cues are turned into text segments.
type SubtitleOptions struct {
	Style      TextStyle
	Position   Anchor
	Typewriter bool
	// Ratio is the fraction of each cue spent revealing text; the rest holds
	// the full text. Zero selects the default of 0.7.
	Ratio float64
	// MaxStepsPerCue bounds reveal keyframes per cue. Zero selects 30.
	MaxStepsPerCue int
}

// TitleOptions describes an intro or outro card.
type TitleOptions struct {
	Text         string
	Duration     float64
	Style        TextStyle
	Background   Background
	AnimationIn  string
	AnimationOut string
}

// Input is everything Compose needs to build a plan.
type Input struct {
	Images        []string
	AudioPath     string
	AudioDuration float64
	Cues          []subtitles.Cue
	Transition    Transition
	Subtitles     SubtitleOptions
	Intro         *TitleOptions
	Outro         *TitleOptions
	Width         int
	Height        int
	FPS           int
}

// Composer builds plans. The measurer drives text wrapping; nil falls back to
// the width estimate.
type Composer struct {
	measurer textlayout.Measurer
}

func NewComposer(measurer textlayout.Measurer) *Composer {
	return &Composer{measurer: measurer}
}

// Compose validates the input and lays out the full timeline: overlapped or
// back-to-back image segments over the audio body, subtitle keyframes, and
// silent intro/outro cards shifting the audio by AudioOffset.
func (c *Composer) Compose(in Input) (*Plan, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	introDuration := 0.0
	if in.Intro != nil {
		introDuration = in.Intro.Duration
	}
	outroDuration := 0.0
	if in.Outro != nil {
		outroDuration = in.Outro.Duration
	}
	bodyDuration := in.AudioDuration

	plan := &Plan{
		TotalDuration: introDuration + bodyDuration + outroDuration,
		AudioOffset:   introDuration,
		Width:         in.Width,
		Height:        in.Height,
		FPS:           in.FPS,
	}

	if in.Intro != nil {
		plan.Segments = append(plan.Segments, c.titleSegment(*in.Intro, 0, in.Width))
	}

	plan.Segments = append(plan.Segments, c.imageSegments(in, introDuration)...)
	plan.Segments = append(plan.Segments, c.subtitleSegments(in, introDuration)...)

	if in.Outro != nil {
		plan.Segments = append(plan.Segments, c.titleSegment(*in.Outro, introDuration+bodyDuration, in.Width))
	}

	return plan, nil
}

func validate(in Input) error {
	fail := func(msg string) error {
		return services.Wrap(services.ErrValidation, "timeline", "compose", msg, nil)
	}
	if len(in.Images) == 0 {
		return fail("at least one image is required")
	}
	if in.AudioPath == "" {
		return fail("audio source is required")
	}
	if in.AudioDuration <= 0 {
		return fail(fmt.Sprintf("audio duration must be positive, got %g", in.AudioDuration))
	}
	if in.Width <= 0 || in.Height <= 0 {
		return fail(fmt.Sprintf("resolution must be positive, got %dx%d", in.Width, in.Height))
	}
	if in.Transition.Duration < 0 {
		return fail(fmt.Sprintf("transition duration must not be negative, got %g", in.Transition.Duration))
	}
	return nil
}

// imageSegments partitions the audio duration equally across images. With an
// overlap transition, segment i starts at i*(perImage-transition) so adjacent
// images overlap by the transition length, and the layout is clamped to the
// audio duration. Effects are skipped when the per-image duration is too
// short to fit both edges.
func (c *Composer) imageSegments(in Input, offset float64) []VisualSegment {
	perImage := in.AudioDuration / float64(len(in.Images))
	spec := transitionFor(in.Transition.Style, in.Transition.Duration)

	applyEffects := (spec.entry != nil || spec.exit != nil) &&
		in.Transition.Duration > 0 &&
		perImage > in.Transition.Duration*2
	overlap := spec.needsOverlap && in.Transition.Duration > 0

	segments := make([]VisualSegment, 0, len(in.Images))
	for i, path := range in.Images {
		var start float64
		if overlap {
			start = float64(i) * (perImage - in.Transition.Duration)
		} else {
			start = float64(i) * perImage
		}

		duration := perImage
		if end := start + duration; end > in.AudioDuration {
			duration = in.AudioDuration - start
		}

		segment := VisualSegment{
			Kind:      KindImage,
			SourceRef: path,
			Start:     offset + start,
			Duration:  duration,
			Position:  Position{Anchor: AnchorCenter},
		}
		if applyEffects {
			segment.Entry = spec.entry
			segment.Exit = spec.exit
		}
		segments = append(segments, segment)
	}
	return segments
}

func (c *Composer) subtitleSegments(in Input, offset float64) []VisualSegment {
	opts := in.Subtitles
	if opts.Ratio <= 0 || opts.Ratio > 1 {
		opts.Ratio = defaultSubtitleRatio
	}
	if opts.MaxStepsPerCue <= 0 {
		opts.MaxStepsPerCue = defaultMaxSteps
	}
	if opts.Position == "" {
		opts.Position = AnchorBottom
	}

	budget := float64(in.Width - subtitleWidthMargin)
	position := Position{Anchor: opts.Position}
	if opts.Position == AnchorBottom {
		position.BottomMargin = bottomTextMargin
	}

	var segments []VisualSegment
	for _, cue := range in.Cues {
		if cue.Text == "" || cue.Duration() <= 0 {
			continue
		}

		segment := VisualSegment{
			Kind:     KindSubtitleText,
			Start:    offset + cue.Start,
			Duration: cue.Duration(),
			Position: position,
			Text:     cue.Text,
			Style:    opts.Style,
		}

		if opts.Typewriter {
			segment.Keyframes = c.revealKeyframes(cue.Text, segment.Start, cue.Duration(),
				opts.Ratio, opts.MaxStepsPerCue, opts.Style, budget)
		} else {
			segment.Keyframes = []TypewriterKeyframe{{
				Text:     c.wrap(cue.Text, opts.Style, budget),
				Start:    segment.Start,
				Duration: cue.Duration(),
			}}
		}

		segments = append(segments, segment)
	}
	return segments
}

// revealKeyframes builds the bounded typewriter sequence for one cue. The
// character step is len/maxSteps (at least 1), the final keyframe always
// reveals the complete text, and each partial string is re-wrapped because
// partial text wraps differently than the full string.
func (c *Composer) revealKeyframes(text string, start, duration, ratio float64, maxSteps int, style TextStyle, budget float64) []TypewriterKeyframe {
	runes := []rune(text)
	revealWindow := duration * ratio
	holdWindow := duration - revealWindow

	charStep := len(runes) / maxSteps
	if charStep < 1 {
		charStep = 1
	}

	var cuts []int
	for pos := charStep; pos < len(runes); pos += charStep {
		cuts = append(cuts, pos)
	}
	if len(cuts) == 0 || cuts[len(cuts)-1] != len(runes) {
		cuts = append(cuts, len(runes))
	}

	perStep := revealWindow / float64(len(cuts))
	keyframes := make([]TypewriterKeyframe, 0, len(cuts))
	for idx, cut := range cuts {
		stepDuration := perStep
		if idx == len(cuts)-1 {
			stepDuration += holdWindow
		}
		keyframes = append(keyframes, TypewriterKeyframe{
			Text:     c.wrap(string(runes[:cut]), style, budget),
			Start:    start + float64(idx)*perStep,
			Duration: stepDuration,
		})
	}
	return keyframes
}

func (c *Composer) titleSegment(opts TitleOptions, start float64, width int) VisualSegment {
	window := titleAnimationWindow(opts.Duration)
	budget := float64(width - titleWidthMargin)
	background := opts.Background

	segment := VisualSegment{
		Kind:       KindTitleText,
		Start:      start,
		Duration:   opts.Duration,
		Position:   Position{Anchor: AnchorCenter},
		Text:       opts.Text,
		Style:      opts.Style,
		Background: &background,
		Exit:       titleEffect(opts.AnimationOut, window, false),
	}

	if opts.AnimationIn == "typewriter" && opts.Text != "" {
		segment.Keyframes = c.titleKeyframes(opts, start, budget)
		return segment
	}

	segment.Entry = titleEffect(opts.AnimationIn, window, true)
	segment.Keyframes = []TypewriterKeyframe{{
		Text:     c.wrap(opts.Text, opts.Style, budget),
		Start:    start,
		Duration: opts.Duration,
	}}
	return segment
}

// titleKeyframes reveals a title one character at a time. Titles are short,
// so there is no step cap; the reveal window is 60% of the card.
func (c *Composer) titleKeyframes(opts TitleOptions, start float64, budget float64) []TypewriterKeyframe {
	runes := []rune(opts.Text)
	revealWindow := opts.Duration * titleRatio
	holdWindow := opts.Duration - revealWindow
	perChar := revealWindow / float64(len(runes))

	keyframes := make([]TypewriterKeyframe, 0, len(runes))
	for i := 1; i <= len(runes); i++ {
		stepDuration := perChar
		if i == len(runes) {
			stepDuration += holdWindow
		}
		keyframes = append(keyframes, TypewriterKeyframe{
			Text:     c.wrap(string(runes[:i]), opts.Style, budget),
			Start:    start + float64(i-1)*perChar,
			Duration: stepDuration,
		})
	}
	return keyframes
}

func (c *Composer) wrap(text string, style TextStyle, budget float64) string {
	return textlayout.Wrap(text, style.FontPath, style.FontSize, budget, c.measurer)
}
