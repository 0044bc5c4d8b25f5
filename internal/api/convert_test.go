package api_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"slidecast/internal/api"
	"slidecast/internal/history"
	"slidecast/internal/jobs"
)

func TestFromJobIncludesRenderInfo(t *testing.T) {
	job := &jobs.Job{
		ID:       "j",
		Status:   jobs.StatusProcessing,
		Progress: 87,
		Message:  "Rendering",
		RenderInfo: &jobs.RenderInfo{
			CurrentFrame: 100,
			TotalFrames:  200,
			FPSSpeed:     10.5,
			ETASeconds:   9.5,
			Percent:      50,
		},
	}

	dto := api.FromJob(job)
	payload, err := json.Marshal(dto)
	if err != nil {
		t.Fatal(err)
	}
	body := string(payload)
	for _, want := range []string{
		`"status":"processing"`,
		`"progress":87`,
		`"render_info"`,
		`"current_frame":100`,
		`"fps_speed":10.5`,
		`"eta_seconds":9.5`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("payload missing %s: %s", want, body)
		}
	}
}

func TestFromJobOmitsRenderInfoWhenAbsent(t *testing.T) {
	payload, err := json.Marshal(api.FromJob(&jobs.Job{ID: "j", Status: jobs.StatusQueued}))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(payload), "render_info") {
		t.Errorf("render_info should be omitted: %s", payload)
	}
}

func TestSummaryFromJob(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	job := &jobs.Job{
		ID:         "j",
		Status:     jobs.StatusCompleted,
		Progress:   100,
		OutputPath: "/tmp/out.mp4",
		CreatedAt:  created,
		UpdatedAt:  created.Add(time.Minute),
	}

	dto := api.SummaryFromJob(job)
	if dto.Source != "live" {
		t.Errorf("source = %q", dto.Source)
	}
	if dto.CreatedAt != "2026-08-01T12:00:00Z" {
		t.Errorf("created_at = %q", dto.CreatedAt)
	}
	if dto.OutputPath != "/tmp/out.mp4" {
		t.Errorf("output_path = %q", dto.OutputPath)
	}
}

func TestSummaryFromHistory(t *testing.T) {
	finished := time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC)
	entry := history.Entry{
		JobID:       "old",
		Status:      jobs.StatusCompleted,
		Message:     "Video created",
		SubmittedAt: finished.Add(-time.Hour),
		FinishedAt:  &finished,
	}

	dto := api.SummaryFromHistory(entry)
	if dto.Source != "history" {
		t.Errorf("source = %q", dto.Source)
	}
	if dto.Progress != 100 {
		t.Errorf("completed history entry should report 100, got %d", dto.Progress)
	}
	if dto.UpdatedAt != "2026-08-02T09:30:00Z" {
		t.Errorf("updated_at = %q", dto.UpdatedAt)
	}
}
