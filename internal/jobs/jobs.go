// Package jobs holds the process-wide job table and per-job cancellation
// signals. Live job state is in-memory only; a finished job survives until
// process exit or explicit eviction by the retention sweep.
package jobs

import (
	"time"
)

// Status is a job lifecycle state. Completed, Error, and Cancelled are
// terminal; a terminal job is never mutated again.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// RenderInfo is the renderer telemetry attached to a job during the encode
// phase.
type RenderInfo struct {
	CurrentFrame int
	TotalFrames  int
	FPSSpeed     float64
	ETASeconds   float64
	Percent      float64
}

// Job is one submission's full observable state.
type Job struct {
	ID         string
	Status     Status
	Progress   int
	Message    string
	RenderInfo *RenderInfo
	OutputPath string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a deep copy safe to hand to readers.
func (j *Job) Clone() *Job {
	copied := *j
	if j.RenderInfo != nil {
		info := *j.RenderInfo
		copied.RenderInfo = &info
	}
	return &copied
}
