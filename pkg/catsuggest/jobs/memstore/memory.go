package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/jobs"
	"github.com/cognicore/catsuggest/pkg/catsuggest/progress"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// Store is an in-memory implementation of jobs.Store
type Store struct {
	mu   sync.RWMutex
	jobs map[string]jobs.Job
	now  func() time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		jobs: make(map[string]jobs.Job),
		now:  time.Now,
	}
}

// Close implements jobs.Store.
func (s *Store) Close() error { return nil }

// Create implements jobs.Store.
func (s *Store) Create(ctx context.Context, id string, req jobs.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; ok {
		return fmt.Errorf("job %s already exists: %w", id, internalerr.ErrInvalidInput)
	}
	now := s.now()
	s.jobs[id] = jobs.Job{
		ID:        id,
		State:     jobs.StatePending,
		Request:   copyRequest(req),
		Progress:  progress.State{Total: progress.Total},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

// Get implements jobs.Store.
func (s *Store) Get(ctx context.Context, id string) (jobs.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return jobs.Job{}, fmt.Errorf("job %s: %w", id, internalerr.ErrNotFound)
	}
	j.Request = copyRequest(j.Request)
	j.Result = append([]sample.Entry(nil), j.Result...)
	return j, nil
}

// Report implements jobs.Store.
func (s *Store) Report(ctx context.Context, id string, p progress.State) error {
	return s.update(id, func(j *jobs.Job) {
		if j.State.Done() {
			return
		}
		j.State = jobs.StateProgress
		j.Progress = p
	})
}

// Complete implements jobs.Store.
func (s *Store) Complete(ctx context.Context, id string, result []sample.Entry, dropped, duplicates int, p progress.State) error {
	return s.update(id, func(j *jobs.Job) {
		j.State = jobs.StateSuccess
		j.Result = append([]sample.Entry(nil), result...)
		j.Dropped = dropped
		j.Duplicates = duplicates
		j.Progress = p
	})
}

// Fail implements jobs.Store.
func (s *Store) Fail(ctx context.Context, id string, cause string) error {
	return s.update(id, func(j *jobs.Job) {
		j.State = jobs.StateFailure
		j.Error = cause
	})
}

func (s *Store) update(id string, fn func(*jobs.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, internalerr.ErrNotFound)
	}
	fn(&j)
	j.UpdatedAt = s.now()
	s.jobs[id] = j
	return nil
}

func copyRequest(r jobs.Request) jobs.Request {
	r.Keywords = append([]string(nil), r.Keywords...)
	return r
}
