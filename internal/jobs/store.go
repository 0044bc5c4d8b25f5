package jobs

import (
	"sort"
	"sync"
	"time"

	"slidecast/internal/services"
)

// Store is the in-memory job table. A per-job mutex serializes updates to a
// single record without blocking unrelated jobs; the store-level mutex only
// guards the table itself. Writers go through Update, which enforces the
// terminal-state and monotonic-progress invariants.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
	now     func() time.Time
}

type record struct {
	mu  sync.Mutex
	job *Job
}

// NewStore builds an empty job table.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*record),
		now:     time.Now,
	}
}

// Create registers a new queued job with zero progress.
func (s *Store) Create(id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; exists {
		return nil, services.Wrap(services.ErrValidation, "jobs", "create", "job id already exists: "+id, nil)
	}

	now := s.now()
	job := &Job{
		ID:        id,
		Status:    StatusQueued,
		Progress:  0,
		Message:   "Queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.records[id] = &record{job: job}
	return job.Clone(), nil
}

// Get returns a snapshot of one job.
func (s *Store) Get(id string) (*Job, error) {
	rec, err := s.record(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.job.Clone(), nil
}

// Update applies fn to the job under its lock. Terminal jobs are left
// untouched and progress never decreases while the job stays live; a
// transition into a terminal state may reset progress (cancellation and
// errors report 0). Returns the post-update snapshot.
func (s *Store) Update(id string, fn func(*Job)) (*Job, error) {
	rec, err := s.record(id)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.job.Status.Terminal() {
		return rec.job.Clone(), nil
	}

	before := rec.job.Progress
	fn(rec.job)

	if !rec.job.Status.Terminal() && rec.job.Progress < before {
		rec.job.Progress = before
	}
	rec.job.UpdatedAt = s.now()
	return rec.job.Clone(), nil
}

// List returns snapshots of all jobs, newest first.
func (s *Store) List() []*Job {
	s.mu.RLock()
	recs := make([]*record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	out := make([]*Job, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, rec.job.Clone())
		rec.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Evict removes terminal jobs older than maxAge and returns how many were
// dropped. Live jobs are never evicted.
func (s *Store) Evict(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, rec := range s.records {
		rec.mu.Lock()
		expired := rec.job.Status.Terminal() && rec.job.UpdatedAt.Before(cutoff)
		rec.mu.Unlock()
		if expired {
			delete(s.records, id)
			dropped++
		}
	}
	return dropped
}

func (s *Store) record(id string) (*record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "jobs", "lookup", "unknown job id: "+id, nil)
	}
	return rec, nil
}
