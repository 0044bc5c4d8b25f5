package render

import (
	"fmt"
	"strconv"
	"strings"

	"slidecast/internal/services"
	"slidecast/internal/timeline"
)

// buildRenderArgs assembles the full ffmpeg invocation for a plan: one
// looping input per image (plus one per title background image), a
// filter_complex graph that composites them over a black base, and drawtext
// filters for every text keyframe.
func buildRenderArgs(plan *timeline.Plan, opts Options, outputPath string) ([]string, error) {
	if plan == nil || len(plan.Segments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "render", "encode", "plan has no segments", nil)
	}

	var args []string
	args = append(args, "-y")

	// Inputs are allocated in segment order: every image segment and every
	// title with a background image consumes one input index.
	inputIndex := map[int]int{}
	next := 0
	for i, seg := range plan.Segments {
		switch {
		case seg.Kind == timeline.KindImage:
			args = append(args, "-loop", "1", "-t", formatSeconds(seg.Duration), "-i", seg.SourceRef)
			inputIndex[i] = next
			next++
		case seg.Kind == timeline.KindTitleText && seg.Background != nil && seg.Background.ImagePath != "":
			args = append(args, "-loop", "1", "-t", formatSeconds(seg.Duration), "-i", seg.Background.ImagePath)
			inputIndex[i] = next
			next++
		}
	}

	graph := buildFilterGraph(plan, opts.FPS, inputIndex)

	args = append(args,
		"-filter_complex", graph,
		"-map", "[vout]",
		"-r", strconv.Itoa(opts.FPS),
		"-c:v", opts.Codec,
		"-preset", opts.Preset,
		"-crf", strconv.Itoa(opts.CRF),
		"-pix_fmt", "yuv420p",
	)
	if opts.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(opts.Threads))
	}
	args = append(args,
		"-t", formatSeconds(plan.TotalDuration),
		"-an",
		"-progress", "pipe:1",
		"-nostats",
		"-loglevel", "error",
		outputPath,
	)
	return args, nil
}

func buildFilterGraph(plan *timeline.Plan, fps int, inputIndex map[int]int) string {
	var filters []string
	filters = append(filters, fmt.Sprintf("color=c=black:s=%dx%d:r=%d:d=%s[base]",
		plan.Width, plan.Height, fps, formatSeconds(plan.TotalDuration)))

	current := "[base]"
	overlayCount := 0

	for i, seg := range plan.Segments {
		switch seg.Kind {
		case timeline.KindImage:
			label := fmt.Sprintf("[img%d]", i)
			filters = append(filters, imageChain(seg, plan, inputIndex[i], label))
			out := fmt.Sprintf("[v%d]", overlayCount)
			filters = append(filters, overlayFilter(current, label, seg, plan, out))
			current = out
			overlayCount++
		case timeline.KindTitleText:
			label := fmt.Sprintf("[ttl%d]", i)
			chain, ok := titleBackgroundChain(seg, plan, inputIndex, i, label)
			if !ok {
				continue
			}
			filters = append(filters, chain)
			out := fmt.Sprintf("[v%d]", overlayCount)
			filters = append(filters, fmt.Sprintf("%s%soverlay=eof_action=pass:x=0:y=0%s", current, label, out))
			current = out
			overlayCount++
		}
	}

	// Text keyframes draw directly on the composited stream.
	var textFilters []string
	for _, seg := range plan.Segments {
		if seg.Kind != timeline.KindSubtitleText && seg.Kind != timeline.KindTitleText {
			continue
		}
		for _, kf := range seg.Keyframes {
			if strings.TrimSpace(kf.Text) == "" {
				continue
			}
			textFilters = append(textFilters, drawtextFilter(seg, kf))
		}
	}

	final := "format=yuv420p[vout]"
	if len(textFilters) > 0 {
		final = strings.Join(textFilters, ",") + "," + final
	}
	filters = append(filters, current+final)

	return strings.Join(filters, ";")
}

// imageChain scales and pads one image input to the plan resolution, applies
// edge fades, and shifts its timestamps to the segment start.
func imageChain(seg timeline.VisualSegment, plan *timeline.Plan, input int, outLabel string) string {
	parts := []string{
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", plan.Width, plan.Height),
		fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", plan.Width, plan.Height),
		"setsar=1",
		"format=rgba",
	}
	if fade := fadeFilter(seg.Entry, true, seg.Duration); fade != "" {
		parts = append(parts, fade)
	}
	if fade := fadeFilter(seg.Exit, false, seg.Duration); fade != "" {
		parts = append(parts, fade)
	}
	parts = append(parts, fmt.Sprintf("setpts=PTS-STARTPTS+%s/TB", formatSeconds(seg.Start)))
	return fmt.Sprintf("[%d:v]%s%s", input, strings.Join(parts, ","), outLabel)
}

// titleBackgroundChain produces the title card background: a solid color, or
// an image letterboxed over black. Reports false when the title has no
// drawable background (text-only titles render via drawtext alone).
func titleBackgroundChain(seg timeline.VisualSegment, plan *timeline.Plan, inputIndex map[int]int, segIdx int, outLabel string) (string, bool) {
	bg := seg.Background
	if bg == nil {
		return "", false
	}

	shift := fmt.Sprintf("setpts=PTS-STARTPTS+%s/TB", formatSeconds(seg.Start))

	if bg.ImagePath != "" {
		input, ok := inputIndex[segIdx]
		if !ok {
			return "", false
		}
		return fmt.Sprintf("[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,setsar=1,%s%s",
			input, plan.Width, plan.Height, plan.Width, plan.Height, shift, outLabel), true
	}

	color := bg.Color
	if color == "" {
		return "", false
	}
	return fmt.Sprintf("color=c=%s:s=%dx%d:d=%s,%s%s",
		colorValue(color), plan.Width, plan.Height, formatSeconds(seg.Duration), shift, outLabel), true
}

// fadeFilter renders fade and crossfade edges as alpha fades. Slides and
// zooms are positional and handled by the overlay expression instead.
func fadeFilter(effect *timeline.Effect, entry bool, segDuration float64) string {
	if effect == nil {
		return ""
	}
	switch effect.Kind {
	case timeline.EffectFadeIn, timeline.EffectCrossfadeIn:
		if !entry {
			return ""
		}
		return fmt.Sprintf("fade=t=in:st=0:d=%s:alpha=1", formatSeconds(effect.Duration))
	case timeline.EffectFadeOut, timeline.EffectCrossfadeOut:
		if entry {
			return ""
		}
		return fmt.Sprintf("fade=t=out:st=%s:d=%s:alpha=1",
			formatSeconds(segDuration-effect.Duration), formatSeconds(effect.Duration))
	default:
		return ""
	}
}

func overlayFilter(in, img string, seg timeline.VisualSegment, plan *timeline.Plan, out string) string {
	x := slideExpr(seg, "x")
	y := slideExpr(seg, "y")
	return fmt.Sprintf("%s%soverlay=eof_action=pass:x='%s':y='%s':enable='between(t,%s,%s)'%s",
		in, img, x, y,
		formatSeconds(seg.Start), formatSeconds(seg.End()), out)
}

// slideExpr builds the overlay position expression for one axis. Slide
// entries move the image from off-screen to rest over the effect window;
// slide exits reverse that during the final window. All other effects keep
// the image at the origin.
func slideExpr(seg timeline.VisualSegment, axis string) string {
	full := "W"
	if axis == "y" {
		full = "H"
	}

	rest := "0"
	expr := rest

	if e := seg.Entry; e != nil && e.Kind == timeline.EffectSlideIn && slideAxis(e.Direction) == axis {
		from := slideOrigin(e.Direction, full)
		// Linear travel from off-screen to 0 over the entry window.
		expr = fmt.Sprintf("if(lt(t-%s,%s),%s*(1-(t-%s)/%s),%s)",
			formatSeconds(seg.Start), formatSeconds(e.Duration),
			from, formatSeconds(seg.Start), formatSeconds(e.Duration), expr)
	}
	if e := seg.Exit; e != nil && e.Kind == timeline.EffectSlideOut && slideAxis(e.Direction) == axis {
		to := slideOrigin(e.Direction, full)
		exitStart := seg.End() - e.Duration
		expr = fmt.Sprintf("if(gt(t,%s),%s*((t-%s)/%s),%s)",
			formatSeconds(exitStart), to,
			formatSeconds(exitStart), formatSeconds(e.Duration), expr)
	}
	return expr
}

func slideAxis(direction string) string {
	switch direction {
	case "top", "bottom":
		return "y"
	default:
		return "x"
	}
}

func slideOrigin(direction, full string) string {
	switch direction {
	case "left", "top":
		return "-" + full
	default:
		return full
	}
}

func drawtextFilter(seg timeline.VisualSegment, kf timeline.TypewriterKeyframe) string {
	style := seg.Style

	parts := []string{
		"fontfile=" + escapeFilterValue(style.FontPath),
		"text='" + escapeDrawtext(kf.Text) + "'",
		"fontsize=" + fontSizeValue(seg, style.FontSize),
		"fontcolor=" + colorValue(style.Color),
	}
	if style.StrokeWidth > 0 {
		parts = append(parts,
			"bordercolor="+colorValue(style.StrokeColor),
			"borderw="+strconv.Itoa(style.StrokeWidth))
	}
	parts = append(parts,
		"x=(w-text_w)/2",
		"y="+anchorYExpr(seg.Position),
		fmt.Sprintf("enable='between(t,%s,%s)'", formatSeconds(kf.Start), formatSeconds(kf.Start+kf.Duration)),
	)
	return "drawtext=" + strings.Join(parts, ":")
}

// fontSizeValue renders zoom entries and exits as a time-dependent fontsize
// expression mirroring the plan's continuous scale functions.
func fontSizeValue(seg timeline.VisualSegment, base int) string {
	entryZoom := seg.Entry != nil && seg.Entry.Kind == timeline.EffectZoomIn
	exitZoom := seg.Exit != nil && seg.Exit.Kind == timeline.EffectZoomOut
	if !entryZoom && !exitZoom {
		return strconv.Itoa(base)
	}

	scale := "1"
	if entryZoom {
		w := formatSeconds(seg.Entry.Duration)
		start := formatSeconds(seg.Start)
		scale = fmt.Sprintf("if(lt(t-%s,%s),0.3+0.7*(t-%s)/%s,%s)", start, w, start, w, scale)
	}
	if exitZoom {
		w := formatSeconds(seg.Exit.Duration)
		exitStart := formatSeconds(seg.End() - seg.Exit.Duration)
		scale = fmt.Sprintf("if(gt(t,%s),1-0.7*(t-%s)/%s,%s)", exitStart, exitStart, w, scale)
	}
	return fmt.Sprintf("'%d*%s'", base, scale)
}

func anchorYExpr(pos timeline.Position) string {
	switch pos.Anchor {
	case timeline.AnchorBottom:
		margin := pos.BottomMargin
		if margin <= 0 {
			margin = 50
		}
		return fmt.Sprintf("h-text_h-%d", margin)
	case timeline.AnchorTop:
		return "50"
	default:
		return "(h-text_h)/2"
	}
}

// escapeDrawtext escapes text for a single-quoted drawtext value. The quoted
// section protects colons and commas; embedded quotes close the section,
// emit an escaped quote, and reopen it. Newlines survive and produce line
// breaks in the rendered text.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `'\''`,
	)
	return replacer.Replace(text)
}

// escapeFilterValue escapes a path used as a filter option value.
func escapeFilterValue(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
	)
	return replacer.Replace(value)
}

// colorValue normalizes hex colors to ffmpeg's 0xRRGGBB form and passes
// named colors through.
func colorValue(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return "white"
	}
	if strings.HasPrefix(color, "#") {
		return "0x" + strings.TrimPrefix(color, "#")
	}
	return color
}

// formatSeconds renders a duration with enough precision for frame-accurate
// timing without trailing noise.
func formatSeconds(seconds float64) string {
	s := strconv.FormatFloat(seconds, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
