// Package timeline turns images, an audio duration, subtitle cues, and
// optional intro/outro titles into a fully time-addressed plan. Every visual
// element carries an absolute start time and duration; the renderer only
// evaluates the plan, it never re-derives timing.
package timeline

// SegmentKind identifies what a VisualSegment draws.
type SegmentKind string

const (
	KindImage        SegmentKind = "image"
	KindSubtitleText SegmentKind = "subtitle-text"
	KindTitleText    SegmentKind = "title-text"
)

// Anchor is the vertical placement of a text segment.
type Anchor string

const (
	AnchorCenter Anchor = "center"
	AnchorBottom Anchor = "bottom"
	AnchorTop    Anchor = "top"
)

// Position places a segment on the frame. BottomMargin applies only to
// AnchorBottom and is measured in pixels up from the frame's lower edge.
type Position struct {
	Anchor       Anchor
	BottomMargin int
}

// TypewriterKeyframe is one reveal step of a subtitle or title cue. Text is
// the wrapped partial string shown from Start for Duration seconds. The final
// keyframe of a cue carries the full text and absorbs the hold remainder.
type TypewriterKeyframe struct {
	Text     string
	Start    float64
	Duration float64
}

// TextStyle carries the font and decoration applied to a text segment.
type TextStyle struct {
	FontPath    string
	FontSize    int
	Color       string
	StrokeColor string
	StrokeWidth int
}

// Background describes what a title segment draws behind its text: a solid
// color, or an image letterboxed over black.
type Background struct {
	Color     string
	ImagePath string
}

// VisualSegment is one positioned, timed element of the composition.
// Image segments reference a file via SourceRef. Text segments carry their
// full text plus the keyframe sequence that reveals it; a non-typewriter
// text segment has exactly one keyframe spanning its whole duration.
type VisualSegment struct {
	Kind      SegmentKind
	SourceRef string
	Start     float64
	Duration  float64
	Position  Position

	Entry *Effect
	Exit  *Effect

	Text       string
	Style      TextStyle
	Keyframes  []TypewriterKeyframe
	Background *Background
}

// End returns the segment's absolute end time.
func (s VisualSegment) End() float64 {
	return s.Start + s.Duration
}

// Plan is the composed, immutable output of Compose.
type Plan struct {
	// TotalDuration is intro + body + outro in seconds.
	TotalDuration float64
	// AudioOffset is the intro duration; the audio track starts this many
	// seconds into the final timeline. Intro and outro are silent.
	AudioOffset float64
	Width       int
	Height      int
	// FPS is the requested frame rate; zero defers to the renderer's default.
	FPS      int
	Segments []VisualSegment
}
