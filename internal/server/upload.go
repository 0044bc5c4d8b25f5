package server

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"slidecast/internal/api"
	"slidecast/internal/config"
	"slidecast/internal/fileutil"
	"slidecast/internal/fonts"
	"slidecast/internal/logging"
	"slidecast/internal/pipeline"
	"slidecast/internal/timeline"
)

// multipartMemoryLimit is how much of an upload is held in memory before
// spilling to temporary files.
const multipartMemoryLimit = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	jobID := uuid.NewString()
	jobFolder := filepath.Join(s.cfg.Paths.StagingDir, jobID)

	req, imageCount, hasSubtitles, err := s.buildRequest(r, jobID, jobFolder)
	if err != nil {
		fileutil.RemoveTreeQuiet(jobFolder, s.logger)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.store.Create(jobID)
	if err != nil {
		fileutil.RemoveTreeQuiet(jobFolder, s.logger)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.registry.Register(jobID)

	if s.archive != nil {
		if err := s.archive.RecordSubmission(r.Context(), job, imageCount, hasSubtitles); err != nil {
			s.logger.Warn("history submission not recorded",
				logging.String(logging.FieldJobID, jobID), logging.Error(err))
		}
	}

	s.logger.Info("job submitted",
		logging.String(logging.FieldJobID, jobID),
		logging.Int("images", imageCount),
		logging.Bool("subtitles", hasSubtitles))

	go func() {
		s.runner.Run(s.baseCtx, req)
		fileutil.RemoveTreeQuiet(jobFolder, s.logger)
	}()

	s.writeJSON(w, http.StatusOK, api.SubmitResponse{JobID: jobID})
}

func (s *Server) buildRequest(r *http.Request, jobID, jobFolder string) (pipeline.Request, int, bool, error) {
	var req pipeline.Request

	images, err := s.saveImages(r, jobFolder)
	if err != nil {
		return req, 0, false, err
	}

	audioPath, err := saveFormFile(r, "audio", jobFolder, "")
	if err != nil {
		return req, 0, false, err
	}
	if len(images) == 0 || audioPath == "" {
		return req, 0, false, fmt.Errorf("images and audio are required")
	}

	srtPath, err := saveFormFile(r, "srt", jobFolder, "")
	if err != nil {
		return req, 0, false, err
	}

	resolution := formString(r, "resolution", s.cfg.Render.Resolution)
	width, height, err := config.ParseResolution(resolution)
	if err != nil {
		return req, 0, false, fmt.Errorf("resolution: %w", err)
	}

	fps, err := formInt(r, "fps", s.cfg.Render.FPS)
	if err != nil {
		return req, 0, false, err
	}
	if fps <= 0 {
		return req, 0, false, fmt.Errorf("fps must be positive")
	}
	transitionDuration, err := formFloat(r, "transition", s.cfg.Render.TransitionDuration)
	if err != nil {
		return req, 0, false, err
	}
	if transitionDuration < 0 {
		return req, 0, false, fmt.Errorf("transition must not be negative")
	}

	subtitles, err := s.subtitleOptions(r)
	if err != nil {
		return req, 0, false, err
	}
	intro, err := s.titleOptions(r, "intro", jobFolder)
	if err != nil {
		return req, 0, false, err
	}
	outro, err := s.titleOptions(r, "outro", jobFolder)
	if err != nil {
		return req, 0, false, err
	}

	req = pipeline.Request{
		JobID:        jobID,
		Images:       images,
		AudioPath:    audioPath,
		SubtitlePath: srtPath,
		Width:        width,
		Height:       height,
		Transition: timeline.Transition{
			Style:    formString(r, "transition_type", s.cfg.Render.TransitionType),
			Duration: transitionDuration,
		},
		Subtitles:  subtitles,
		Intro:      intro,
		Outro:      outro,
		FPS:        fps,
		StagingDir: s.cfg.Paths.StagingDir,
		OutputPath: filepath.Join(s.cfg.Paths.StagingDir, jobID+".mp4"),
	}
	return req, len(images), srtPath != "", nil
}

// saveImages stores every uploaded image and returns their paths in the
// order given by the image_order field. Names absent from the order field
// keep their upload order.
func (s *Server) saveImages(r *http.Request, jobFolder string) ([]string, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	saved := make(map[string]string)
	var uploadOrder []string
	for _, header := range r.MultipartForm.File["images"] {
		if header.Filename == "" {
			continue
		}
		path, err := savePart(header, filepath.Join(jobFolder, sanitizeFilename(header.Filename)))
		if err != nil {
			return nil, err
		}
		saved[header.Filename] = path
		uploadOrder = append(uploadOrder, header.Filename)
	}

	var paths []string
	for _, name := range strings.Split(formString(r, "image_order", ""), ",") {
		if path, ok := saved[strings.TrimSpace(name)]; ok {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		for _, name := range uploadOrder {
			paths = append(paths, saved[name])
		}
	}
	return paths, nil
}

func (s *Server) subtitleOptions(r *http.Request) (timeline.SubtitleOptions, error) {
	var opts timeline.SubtitleOptions

	fontPath, _ := fonts.Resolve(formString(r, "subtitle_font", s.cfg.Subtitles.Font))
	size, err := formInt(r, "subtitle_size", s.cfg.Subtitles.FontSize)
	if err != nil {
		return opts, err
	}
	if size <= 0 {
		return opts, fmt.Errorf("subtitle_size must be positive")
	}
	strokeWidth, err := formInt(r, "subtitle_stroke_width", s.cfg.Subtitles.StrokeWidth)
	if err != nil {
		return opts, err
	}

	opts = timeline.SubtitleOptions{
		Style: timeline.TextStyle{
			FontPath:    fontPath,
			FontSize:    size,
			Color:       formString(r, "subtitle_color", s.cfg.Subtitles.FontColor),
			StrokeColor: formString(r, "subtitle_stroke_color", s.cfg.Subtitles.StrokeColor),
			StrokeWidth: strokeWidth,
		},
		Position:       parseAnchor(formString(r, "subtitle_position", s.cfg.Subtitles.Position)),
		Typewriter:     formBool(r, "subtitle_typewriter", s.cfg.Subtitles.Typewriter),
		MaxStepsPerCue: s.cfg.Subtitles.MaxTypewriterSteps,
	}
	return opts, nil
}

// titleOptions parses the intro_* or outro_* field group. A blank text field
// means no card.
func (s *Server) titleOptions(r *http.Request, prefix, jobFolder string) (*timeline.TitleOptions, error) {
	text := strings.TrimSpace(formString(r, prefix+"_text", ""))
	if text == "" {
		return nil, nil
	}

	duration, err := formFloat(r, prefix+"_duration", 5)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%s_duration must be positive", prefix)
	}
	size, err := formInt(r, prefix+"_size", 80)
	if err != nil {
		return nil, err
	}

	fontPath, _ := fonts.Resolve(formString(r, prefix+"_font", s.cfg.Subtitles.Font))
	bgImage, err := saveFormFile(r, prefix+"_bg_image", jobFolder, prefix+"_bg_")
	if err != nil {
		return nil, err
	}

	return &timeline.TitleOptions{
		Text:     text,
		Duration: duration,
		Style: timeline.TextStyle{
			FontPath: fontPath,
			FontSize: size,
			Color:    formString(r, prefix+"_color", "#ffffff"),
		},
		Background: timeline.Background{
			Color:     formString(r, prefix+"_bg_color", "#000000"),
			ImagePath: bgImage,
		},
		AnimationIn:  formString(r, prefix+"_animation_in", "none"),
		AnimationOut: formString(r, prefix+"_animation_out", "none"),
	}, nil
}

// saveFormFile stores a single optional file field. Returns "" when the
// field is absent or empty.
func saveFormFile(r *http.Request, field, jobFolder, namePrefix string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 || headers[0].Filename == "" {
		return "", nil
	}
	header := headers[0]
	return savePart(header, filepath.Join(jobFolder, namePrefix+sanitizeFilename(header.Filename)))
}

func savePart(header *multipart.FileHeader, path string) (string, error) {
	part, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer part.Close()

	if _, err := fileutil.SaveStream(part, path); err != nil {
		return "", err
	}
	return path, nil
}

// sanitizeFilename keeps the base name and replaces anything outside a safe
// character set, so uploaded names cannot escape the job folder.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 || b.String() == "." || b.String() == ".." {
		return "upload"
	}
	return b.String()
}

func parseAnchor(value string) timeline.Anchor {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "top":
		return timeline.AnchorTop
	case "center":
		return timeline.AnchorCenter
	default:
		return timeline.AnchorBottom
	}
}

func formString(r *http.Request, key, fallback string) string {
	if value := r.FormValue(key); value != "" {
		return value
	}
	return fallback
}

func formInt(r *http.Request, key string, fallback int) (int, error) {
	value := r.FormValue(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return parsed, nil
}

func formFloat(r *http.Request, key string, fallback float64) (float64, error) {
	value := r.FormValue(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, value)
	}
	return parsed, nil
}

func formBool(r *http.Request, key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(r.FormValue(key)))
	if value == "" {
		return fallback
	}
	return value == "true" || value == "1"
}
