package jobs_test

import (
	"sync"
	"testing"
	"time"

	"slidecast/internal/jobs"
	"slidecast/internal/services"
)

func TestCreateAndGet(t *testing.T) {
	store := jobs.NewStore()

	job, err := store.Create("job-1")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != jobs.StatusQueued || job.Progress != 0 {
		t.Fatalf("new job = %s/%d, want queued/0", job.Status, job.Progress)
	}

	got, err := store.Get("job-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "job-1" {
		t.Fatalf("id = %q", got.ID)
	}

	if _, err := store.Create("job-1"); !services.IsValidation(err) {
		t.Fatalf("duplicate create should be a validation error, got %v", err)
	}
	if _, err := store.Get("missing"); !services.IsNotFound(err) {
		t.Fatalf("missing get should be not-found, got %v", err)
	}
}

func TestUpdateProgressIsMonotonic(t *testing.T) {
	store := jobs.NewStore()
	if _, err := store.Create("j"); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Update("j", func(j *jobs.Job) { j.Progress = 40 }); err != nil {
		t.Fatal(err)
	}
	got, err := store.Update("j", func(j *jobs.Job) { j.Progress = 20 })
	if err != nil {
		t.Fatal(err)
	}
	if got.Progress != 40 {
		t.Fatalf("progress regressed to %d, want 40", got.Progress)
	}
}

func TestUpdateTerminalResetAllowed(t *testing.T) {
	store := jobs.NewStore()
	if _, err := store.Create("j"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update("j", func(j *jobs.Job) { j.Progress = 70 }); err != nil {
		t.Fatal(err)
	}

	got, err := store.Update("j", func(j *jobs.Job) {
		j.Status = jobs.StatusCancelled
		j.Progress = 0
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != jobs.StatusCancelled || got.Progress != 0 {
		t.Fatalf("got %s/%d, want cancelled/0", got.Status, got.Progress)
	}
}

func TestUpdateIgnoredAfterTerminal(t *testing.T) {
	store := jobs.NewStore()
	if _, err := store.Create("j"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update("j", func(j *jobs.Job) {
		j.Status = jobs.StatusCompleted
		j.Progress = 100
	}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Update("j", func(j *jobs.Job) {
		j.Status = jobs.StatusProcessing
		j.Progress = 10
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != jobs.StatusCompleted || got.Progress != 100 {
		t.Fatalf("terminal job mutated: %s/%d", got.Status, got.Progress)
	}
}

func TestConcurrentUpdatesStayMonotonic(t *testing.T) {
	store := jobs.NewStore()
	if _, err := store.Create("j"); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for p := 1; p <= 100; p++ {
		wg.Add(1)
		go func(progress int) {
			defer wg.Done()
			_, _ = store.Update("j", func(j *jobs.Job) {
				j.Progress = progress
			})
		}(p)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		last := 0
		for i := 0; i < 200; i++ {
			job, err := store.Get("j")
			if err != nil {
				t.Error(err)
				return
			}
			if job.Progress < last {
				t.Errorf("observed regression %d -> %d", last, job.Progress)
				return
			}
			last = job.Progress
		}
	}()

	wg.Wait()
	<-done
}

func TestListNewestFirst(t *testing.T) {
	store := jobs.NewStore()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.Create(id); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	list := store.List()
	if len(list) != 3 {
		t.Fatalf("got %d jobs", len(list))
	}
	if list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("order = %s,%s,%s, want c,b,a", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestEvictOnlyTerminal(t *testing.T) {
	store := jobs.NewStore()
	if _, err := store.Create("live"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create("done"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update("done", func(j *jobs.Job) { j.Status = jobs.StatusCompleted }); err != nil {
		t.Fatal(err)
	}

	if dropped := store.Evict(0); dropped != 1 {
		t.Fatalf("dropped %d, want 1", dropped)
	}
	if _, err := store.Get("live"); err != nil {
		t.Fatalf("live job evicted: %v", err)
	}
	if _, err := store.Get("done"); !services.IsNotFound(err) {
		t.Fatal("terminal job should be gone")
	}
}
