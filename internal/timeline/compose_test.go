package timeline_test

import (
	"math"
	"strings"
	"testing"

	"slidecast/internal/services"
	"slidecast/internal/subtitles"
	"slidecast/internal/timeline"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func baseInput() timeline.Input {
	return timeline.Input{
		Images:        []string{"a.jpg", "b.jpg", "c.jpg"},
		AudioPath:     "audio.mp3",
		AudioDuration: 30,
		Width:         1080,
		Height:        1920,
	}
}

func imageSegments(plan *timeline.Plan) []timeline.VisualSegment {
	var out []timeline.VisualSegment
	for _, s := range plan.Segments {
		if s.Kind == timeline.KindImage {
			out = append(out, s)
		}
	}
	return out
}

func TestComposeValidatesInput(t *testing.T) {
	composer := timeline.NewComposer(nil)

	cases := []struct {
		name   string
		mutate func(*timeline.Input)
	}{
		{"no images", func(in *timeline.Input) { in.Images = nil }},
		{"no audio path", func(in *timeline.Input) { in.AudioPath = "" }},
		{"zero duration", func(in *timeline.Input) { in.AudioDuration = 0 }},
		{"negative duration", func(in *timeline.Input) { in.AudioDuration = -3 }},
		{"zero width", func(in *timeline.Input) { in.Width = 0 }},
		{"negative transition", func(in *timeline.Input) { in.Transition.Duration = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			tc.mutate(&in)
			_, err := composer.Compose(in)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !services.IsValidation(err) {
				t.Fatalf("error not tagged as validation: %v", err)
			}
		})
	}
}

func TestComposeCrossfadeOverlapLayout(t *testing.T) {
	in := baseInput()
	in.Transition = timeline.Transition{Style: "crossfade", Duration: 1}

	plan, err := timeline.NewComposer(nil).Compose(in)
	if err != nil {
		t.Fatal(err)
	}

	images := imageSegments(plan)
	if len(images) != 3 {
		t.Fatalf("got %d image segments, want 3", len(images))
	}
	wantStarts := []float64{0, 9, 18}
	for i, seg := range images {
		if !almostEqual(seg.Start, wantStarts[i]) {
			t.Errorf("segment %d start = %g, want %g", i, seg.Start, wantStarts[i])
		}
		if !almostEqual(seg.Duration, 10) {
			t.Errorf("segment %d duration = %g, want 10", i, seg.Duration)
		}
		if seg.Entry == nil || seg.Entry.Kind != timeline.EffectCrossfadeIn {
			t.Errorf("segment %d missing crossfade entry", i)
		}
		if seg.Exit == nil || seg.Exit.Kind != timeline.EffectCrossfadeOut {
			t.Errorf("segment %d missing crossfade exit", i)
		}
	}
	if !almostEqual(plan.TotalDuration, 30) {
		t.Errorf("total duration = %g, want 30", plan.TotalDuration)
	}
	if plan.AudioOffset != 0 {
		t.Errorf("audio offset = %g, want 0", plan.AudioOffset)
	}
}

func TestComposeBackToBackLayout(t *testing.T) {
	in := baseInput()
	in.Transition = timeline.Transition{Style: "none"}

	plan, err := timeline.NewComposer(nil).Compose(in)
	if err != nil {
		t.Fatal(err)
	}

	images := imageSegments(plan)
	var sum float64
	for i, seg := range images {
		if !almostEqual(seg.Start, float64(i)*10) {
			t.Errorf("segment %d start = %g, want %g", i, seg.Start, float64(i)*10)
		}
		if seg.Entry != nil || seg.Exit != nil {
			t.Errorf("segment %d should have no effects", i)
		}
		sum += seg.Duration
	}
	if !almostEqual(sum, 30) {
		t.Errorf("durations sum to %g, want 30", sum)
	}
}

func TestComposeSkipsEffectsWhenSegmentsTooShort(t *testing.T) {
	in := baseInput()
	in.AudioDuration = 5 // per image ~1.67s, not > 2*1s
	in.Transition = timeline.Transition{Style: "crossfade", Duration: 1}

	plan, err := timeline.NewComposer(nil).Compose(in)
	if err != nil {
		t.Fatal(err)
	}

	for i, seg := range imageSegments(plan) {
		if seg.Entry != nil || seg.Exit != nil {
			t.Errorf("segment %d should skip effects for short durations", i)
		}
	}
}

func TestComposeTypewriterKeyframes(t *testing.T) {
	in := baseInput()
	in.Cues = []subtitles.Cue{{Start: 0, End: 4, Text: "Hello world"}}
	in.Subtitles = timeline.SubtitleOptions{
		Typewriter: true,
		Style:      timeline.TextStyle{FontSize: 48},
	}

	plan, err := timeline.NewComposer(nil).Compose(in)
	if err != nil {
		t.Fatal(err)
	}

	var cue *timeline.VisualSegment
	for i := range plan.Segments {
		if plan.Segments[i].Kind == timeline.KindSubtitleText {
			cue = &plan.Segments[i]
		}
	}
	if cue == nil {
		t.Fatal("no subtitle segment produced")
	}

	// 11 characters, step 1, so 11 keyframes; reveal window 2.8s, hold 1.2s.
	if len(cue.Keyframes) != 11 {
		t.Fatalf("got %d keyframes, want 11", len(cue.Keyframes))
	}
	last := cue.Keyframes[len(cue.Keyframes)-1]
	if last.Text != "Hello world" {
		t.Errorf("final keyframe text = %q, want full text", last.Text)
	}
	wantLast := 2.8/11 + 1.2
	if !almostEqual(last.Duration, wantLast) {
		t.Errorf("final keyframe duration = %g, want %g", last.Duration, wantLast)
	}

	var sum float64
	for _, kf := range cue.Keyframes {
		sum += kf.Duration
	}
	if !almostEqual(sum, 4) {
		t.Errorf("keyframe durations sum to %g, want cue duration 4", sum)
	}
}

func TestComposeTypewriterStepCap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 12) // 120 chars
	in := baseInput()
	in.Cues = []subtitles.Cue{{Start: 1, End: 7, Text: text}}
	in.Subtitles = timeline.SubtitleOptions{
		Typewriter:     true,
		MaxStepsPerCue: 30,
		Style:          timeline.TextStyle{FontSize: 48},
	}

	plan, err := timeline.NewComposer(nil).Compose(in)
	if err != nil {
		t.Fatal(err)
	}

	for _, seg := range plan.Segments {
		if seg.Kind != timeline.KindSubtitleText {
			continue
		}
		// 120 chars at step 4 gives 30 keyframes.
		if len(seg.Keyframes) != 30 {
			t.Fatalf("got %d keyframes, want 30", len(seg.Keyframes))
		}
		final := seg.Keyframes[len(seg.Keyframes)-1]
		joined := strings.ReplaceAll(final.Text, "\n", " ")
		if strings.ReplaceAll(joined, " ", "") != text {
			t.Errorf("final keyframe does not reveal full text")
		}
	}
}

func TestComposeTypewriterDisabledSingleKeyframe(t *testing.T) {
	in := baseInput()
	in.Cues = []subtitles.Cue{{Start: 2, End: 5, Text: "static text"}}
	in.Subtitles = timeline.SubtitleOptions{Typewriter: false, Style: timeline.TextStyle{FontSize: 48}}

	plan, err := timeline.NewComposer(nil).Compose(in)
	if err != nil {
		t.Fatal(err)
	}

	for _, seg := range plan.Segments {
		if seg.Kind != timeline.KindSubtitleText {
			continue
		}
		if len(seg.Keyframes) != 1 {
			t.Fatalf("got %d keyframes, want 1", len(seg.Keyframes))
		}
		kf := seg.Keyframes[0]
		if !almostEqual(kf.Start, 2) || !almostEqual(kf.Duration, 3) {
			t.Errorf("keyframe timing = (%g, %g), want (2, 3)", kf.Start, kf.Duration)
		}
	}
}

func TestComposeSkipsEmptyCues(t *testing.T) {
	in := baseInput()
	in.Cues = []subtitles.Cue{
		{Start: 0, End: 2, Text: ""},
		{Start: 2, End: 4, Text: "kept"},
	}
	in.Subtitles = timeline.SubtitleOptions{Typewriter: true, Style: timeline.TextStyle{FontSize: 48}}

	plan, err := timeline.NewComposer(nil).Compose(in)
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for _, seg := range plan.Segments {
		if seg.Kind == timeline.KindSubtitleText {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("got %d subtitle segments, want 1", count)
	}
}

func TestComposeIntroOutroShiftsBody(t *testing.T) {
	in := baseInput()
	in.Cues = []subtitles.Cue{{Start: 0, End: 4, Text: "first words"}}
	in.Subtitles = timeline.SubtitleOptions{Typewriter: false, Style: timeline.TextStyle{FontSize: 48}}
	in.Intro = &timeline.TitleOptions{
		Text:     "My Video",
		Duration: 3,
		Style:    timeline.TextStyle{FontSize: 90},
	}
	in.Outro = &timeline.TitleOptions{
		Text:     "Thanks for watching",
		Duration: 2,
		Style:    timeline.TextStyle{FontSize: 90},
	}

	plan, err := timeline.NewComposer(nil).Compose(in)
	if err != nil {
		t.Fatal(err)
	}

	if !almostEqual(plan.TotalDuration, 35) {
		t.Errorf("total duration = %g, want 3+30+2", plan.TotalDuration)
	}
	if !almostEqual(plan.AudioOffset, 3) {
		t.Errorf("audio offset = %g, want intro duration 3", plan.AudioOffset)
	}

	var titles []timeline.VisualSegment
	for _, seg := range plan.Segments {
		switch seg.Kind {
		case timeline.KindTitleText:
			titles = append(titles, seg)
		case timeline.KindImage:
			if seg.Start < 3-epsilon {
				t.Errorf("image segment starts at %g, before intro ends", seg.Start)
			}
		case timeline.KindSubtitleText:
			if !almostEqual(seg.Start, 3) {
				t.Errorf("subtitle start = %g, want cue start shifted to 3", seg.Start)
			}
		}
	}
	if len(titles) != 2 {
		t.Fatalf("got %d title segments, want 2", len(titles))
	}
	if !almostEqual(titles[0].Start, 0) || !almostEqual(titles[0].Duration, 3) {
		t.Errorf("intro timing = (%g, %g)", titles[0].Start, titles[0].Duration)
	}
	if !almostEqual(titles[1].Start, 33) || !almostEqual(titles[1].Duration, 2) {
		t.Errorf("outro timing = (%g, %g), want (33, 2)", titles[1].Start, titles[1].Duration)
	}
}

func TestComposeTitleTypewriter(t *testing.T) {
	in := baseInput()
	in.Intro = &timeline.TitleOptions{
		Text:        "Hi!",
		Duration:    3,
		Style:       timeline.TextStyle{FontSize: 90},
		AnimationIn: "typewriter",
	}

	plan, err := timeline.NewComposer(nil).Compose(in)
	if err != nil {
		t.Fatal(err)
	}

	var title *timeline.VisualSegment
	for i := range plan.Segments {
		if plan.Segments[i].Kind == timeline.KindTitleText {
			title = &plan.Segments[i]
		}
	}
	if title == nil {
		t.Fatal("no title segment")
	}

	// One keyframe per character; reveal window 1.8s, hold 1.2s.
	if len(title.Keyframes) != 3 {
		t.Fatalf("got %d keyframes, want 3", len(title.Keyframes))
	}
	perChar := 1.8 / 3
	var sum float64
	for i, kf := range title.Keyframes {
		if !almostEqual(kf.Start, float64(i)*perChar) {
			t.Errorf("keyframe %d start = %g, want %g", i, kf.Start, float64(i)*perChar)
		}
		sum += kf.Duration
	}
	if !almostEqual(sum, 3) {
		t.Errorf("keyframe durations sum to %g, want 3", sum)
	}
}

func TestZoomScales(t *testing.T) {
	if got := timeline.ZoomInScale(0, 1); !almostEqual(got, 0.3) {
		t.Errorf("zoom in at t=0 = %g, want 0.3", got)
	}
	if got := timeline.ZoomInScale(0.5, 1); !almostEqual(got, 0.65) {
		t.Errorf("zoom in at midpoint = %g, want 0.65", got)
	}
	if got := timeline.ZoomInScale(2, 1); !almostEqual(got, 1.0) {
		t.Errorf("zoom in after window = %g, want 1.0", got)
	}

	if got := timeline.ZoomOutScale(0, 5, 1); !almostEqual(got, 1.0) {
		t.Errorf("zoom out before window = %g, want 1.0", got)
	}
	if got := timeline.ZoomOutScale(4.5, 5, 1); !almostEqual(got, 0.65) {
		t.Errorf("zoom out at midpoint = %g, want 0.65", got)
	}
	if got := timeline.ZoomOutScale(5, 5, 1); !almostEqual(got, 0.3) {
		t.Errorf("zoom out at end = %g, want 0.3", got)
	}
}
