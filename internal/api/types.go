// Package api defines the wire types shared by the HTTP server and the CLI
// client. Field names use snake_case to stay compatible with existing
// frontend consumers of the upload/progress endpoints.
package api

import "encoding/json"

const dateTimeFormat = "2006-01-02T15:04:05Z"

// SubmitResponse acknowledges an accepted upload.
type SubmitResponse struct {
	JobID string `json:"job_id"`
}

// RenderInfo is the encoder telemetry block attached to status and progress
// payloads during the render phase.
type RenderInfo struct {
	CurrentFrame int     `json:"current_frame"`
	TotalFrames  int     `json:"total_frames"`
	FPSSpeed     float64 `json:"fps_speed"`
	ETASeconds   float64 `json:"eta_seconds"`
	Percent      float64 `json:"percent"`
}

// JobStatus is one job's observable state.
type JobStatus struct {
	Status     string      `json:"status"`
	Progress   int         `json:"progress"`
	Message    string      `json:"message"`
	RenderInfo *RenderInfo `json:"render_info,omitempty"`
}

// JobSummary is one row of the jobs listing. Source distinguishes live jobs
// from archived history entries.
type JobSummary struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	Message    string `json:"message"`
	OutputPath string `json:"output_path,omitempty"`
	Source     string `json:"source"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// JobListResponse wraps the jobs listing.
type JobListResponse struct {
	Jobs []JobSummary `json:"jobs"`
}

// CancelResponse acknowledges a cancellation request.
type CancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Font is one entry of the font catalog listing.
type Font struct {
	Name      string `json:"name"`
	Display   string `json:"display"`
	Installed bool   `json:"installed"`
}

// FontListResponse wraps the font catalog.
type FontListResponse struct {
	Fonts []Font `json:"fonts"`
}

// ErrorResponse is the uniform error payload. Status carries the job's
// current state on cancel conflicts.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

// Decode unmarshals a payload into dst, for CLI-side response handling.
func Decode(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}
