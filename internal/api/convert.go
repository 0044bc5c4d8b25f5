package api

import (
	"slidecast/internal/fonts"
	"slidecast/internal/history"
	"slidecast/internal/jobs"
)

// FromJob converts a job snapshot to its status representation.
func FromJob(job *jobs.Job) JobStatus {
	if job == nil {
		return JobStatus{}
	}
	dto := JobStatus{
		Status:   string(job.Status),
		Progress: job.Progress,
		Message:  job.Message,
	}
	if info := job.RenderInfo; info != nil {
		dto.RenderInfo = &RenderInfo{
			CurrentFrame: info.CurrentFrame,
			TotalFrames:  info.TotalFrames,
			FPSSpeed:     info.FPSSpeed,
			ETASeconds:   info.ETASeconds,
			Percent:      info.Percent,
		}
	}
	return dto
}

// SummaryFromJob converts a live job to a listing row.
func SummaryFromJob(job *jobs.Job) JobSummary {
	if job == nil {
		return JobSummary{}
	}
	dto := JobSummary{
		JobID:      job.ID,
		Status:     string(job.Status),
		Progress:   job.Progress,
		Message:    job.Message,
		OutputPath: job.OutputPath,
		Source:     "live",
	}
	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		dto.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// SummaryFromHistory converts an archived entry to a listing row.
func SummaryFromHistory(entry history.Entry) JobSummary {
	dto := JobSummary{
		JobID:      entry.JobID,
		Status:     string(entry.Status),
		Message:    entry.Message,
		OutputPath: entry.OutputPath,
		Source:     "history",
	}
	if entry.Status == jobs.StatusCompleted {
		dto.Progress = 100
	}
	if !entry.SubmittedAt.IsZero() {
		dto.CreatedAt = entry.SubmittedAt.UTC().Format(dateTimeFormat)
	}
	if entry.FinishedAt != nil {
		dto.UpdatedAt = entry.FinishedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromFont converts a catalog entry to its API representation.
func FromFont(font fonts.Font) Font {
	return Font{
		Name:      font.Name,
		Display:   font.Display,
		Installed: font.Installed(),
	}
}
