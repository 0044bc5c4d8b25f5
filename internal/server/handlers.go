package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"slidecast/internal/api"
	"slidecast/internal/fonts"
	"slidecast/internal/jobs"
	"slidecast/internal/logging"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := pathID(r, "/api/status/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	job, err := s.store.Get(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromJob(job))
}

// handleProgress streams job state as server-sent events until the job
// reaches a terminal status or the client disconnects. An unknown id yields
// a single not_found event.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := pathID(r, "/api/progress/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(s.progressInterval)
	defer ticker.Stop()

	for {
		job, err := s.store.Get(id)
		if err != nil {
			writeEvent(w, api.JobStatus{Status: "not_found", Message: "Job not found"})
			flusher.Flush()
			return
		}
		writeEvent(w, api.FromJob(job))
		flusher.Flush()
		if job.Status.Terminal() {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writeEvent(w http.ResponseWriter, payload api.JobStatus) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := pathID(r, "/api/cancel/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	job, err := s.store.Get(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	if job.Status != jobs.StatusQueued && job.Status != jobs.StatusProcessing {
		s.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{
			Error:  "job cannot be cancelled",
			Status: string(job.Status),
		})
		return
	}

	if !s.registry.Cancel(id) {
		s.writeError(w, http.StatusInternalServerError, "cancellation token not found")
		return
	}
	_, _ = s.store.Update(id, func(j *jobs.Job) {
		j.Message = "Cancelling..."
	})

	s.logger.Info("cancellation requested", logging.String(logging.FieldJobID, id))
	s.writeJSON(w, http.StatusOK, api.CancelResponse{Success: true, Message: "Cancellation requested"})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := pathID(r, "/api/download/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	job, err := s.store.Get(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != jobs.StatusCompleted || job.OutputPath == "" {
		s.writeError(w, http.StatusBadRequest, "video not available")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="video.mp4"`)
	http.ServeFile(w, r, job.OutputPath)
}

// handleJobs lists live jobs; with ?all=1 it merges archived history entries
// that are no longer in memory.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	live := s.store.List()
	summaries := make([]api.JobSummary, 0, len(live))
	seen := make(map[string]bool, len(live))
	for _, job := range live {
		summaries = append(summaries, api.SummaryFromJob(job))
		seen[job.ID] = true
	}

	includeAll := r.URL.Query().Get("all") == "1" || strings.EqualFold(r.URL.Query().Get("all"), "true")
	if includeAll && s.archive != nil {
		entries, err := s.archive.List(r.Context(), 0)
		if err != nil {
			s.logger.Warn("history listing failed", logging.Error(err))
		} else {
			for _, entry := range entries {
				if seen[entry.JobID] {
					continue
				}
				summaries = append(summaries, api.SummaryFromHistory(entry))
			}
		}
	}

	s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: summaries})
}

func (s *Server) handleFonts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	catalog := fonts.List()
	listing := make([]api.Font, 0, len(catalog))
	for _, font := range catalog {
		listing = append(listing, api.FromFont(font))
	}
	s.writeJSON(w, http.StatusOK, api.FontListResponse{Fonts: listing})
}
