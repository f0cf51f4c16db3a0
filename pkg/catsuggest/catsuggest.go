// Package catsuggest runs category suggestion jobs on a pool of workers and
// records their progress and results in a job store.
package catsuggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/jobs"
	"github.com/cognicore/catsuggest/pkg/catsuggest/pipeline"
	"github.com/cognicore/catsuggest/pkg/catsuggest/progress"
)

// Runner executes one job
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, obs *progress.Observer) (*pipeline.Result, error)
}

// Options configures a Service
type Options struct {
	Runner Runner
	Store  jobs.Store

	// Workers is the number of jobs run at once; defaults to 1.
	Workers int
	// QueueSize bounds the jobs waiting for a worker.
	QueueSize int
	// JobTimeout limits one run; zero means no limit.
	JobTimeout time.Duration
}

// Service is the suggestion job queue
type Service struct {
	runner  Runner
	store   jobs.Store
	ids     *jobs.IDs
	timeout time.Duration

	queue  chan pipeline.Request
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a Service and starts its workers
func New(opts Options) (*Service, error) {
	if opts.Runner == nil || opts.Store == nil {
		return nil, fmt.Errorf("%w: service needs a runner and a store", internalerr.ErrInvalidConfig)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		runner:  opts.Runner,
		store:   opts.Store,
		ids:     jobs.NewIDs(),
		timeout: opts.JobTimeout,
		queue:   make(chan pipeline.Request, opts.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < opts.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s, nil
}

// Close stops the workers, fails queued jobs and closes the store.
// Running jobs are cancelled.
func (s *Service) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		// wait for submitters still inside their enqueue select
		s.mu.Lock()
		s.mu.Unlock()
		s.wg.Wait()

		for drained := false; !drained; {
			select {
			case req := <-s.queue:
				s.fail(req.JobID, "service shut down before the job started")
			default:
				drained = true
			}
		}
		err = s.store.Close()
	})
	return err
}

// Submit records a new job and queues it. The returned id is valid even when
// the request is rejected: the job is then stored as failed.
func (s *Service) Submit(ctx context.Context, keywords []string, limit int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: service is closed", internalerr.ErrPrecondition)
	}

	var cleaned []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}

	id := s.ids.New()
	req := jobs.Request{Keywords: cleaned, Limit: limit}
	if err := s.store.Create(ctx, id, req); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	if len(cleaned) == 0 {
		err := fmt.Errorf("%w: at least one keyword is required", internalerr.ErrInvalidInput)
		s.fail(id, err.Error())
		return id, err
	}
	if limit < 0 {
		err := fmt.Errorf("%w: limit must not be negative", internalerr.ErrInvalidInput)
		s.fail(id, err.Error())
		return id, err
	}

	select {
	case s.queue <- pipeline.Request{JobID: id, Keywords: cleaned, Limit: limit}:
		slog.Info("catsuggest: job queued", "job", id, "keywords", cleaned)
		return id, nil
	case <-ctx.Done():
		s.fail(id, ctx.Err().Error())
		return id, ctx.Err()
	case <-s.ctx.Done():
		s.fail(id, "service shut down before the job started")
		return id, fmt.Errorf("%w: service is closed", internalerr.ErrPrecondition)
	}
}

// Status returns the stored state of a job
func (s *Service) Status(ctx context.Context, id string) (jobs.Job, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case req := <-s.queue:
			if s.ctx.Err() != nil {
				s.fail(req.JobID, "service shut down before the job started")
				return
			}
			s.run(req)
		}
	}
}

func (s *Service) run(req pipeline.Request) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	obs := progress.New(jobs.Reporter{
		Store: s.store,
		ID:    req.JobID,
		OnError: func(err error) {
			slog.Warn("catsuggest: progress not stored", "job", req.JobID, "err", err)
		},
	})

	start := time.Now()
	res, err := s.runSafely(ctx, req, obs)
	if err != nil {
		slog.Warn("catsuggest: job failed", "job", req.JobID, "err", err, "elapsed", time.Since(start))
		s.fail(req.JobID, err.Error())
		return
	}

	slog.Info("catsuggest: job done", "job", req.JobID, "entries", len(res.Entries), "dropped", res.Dropped, "duplicates", res.Duplicates, "elapsed", time.Since(start))
	if err := s.store.Complete(context.Background(), req.JobID, res.Entries, res.Dropped, res.Duplicates, obs.Snapshot()); err != nil {
		slog.Error("catsuggest: result not stored", "job", req.JobID, "err", err)
	}
}

// runSafely turns a panicking run into a failed job
func (s *Service) runSafely(ctx context.Context, req pipeline.Request, obs *progress.Observer) (res *pipeline.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("job panicked: %v", r)
		}
	}()
	res, err = s.runner.Run(ctx, req, obs)
	if err == nil && res == nil {
		err = fmt.Errorf("%w: runner returned no result", internalerr.ErrPrecondition)
	}
	return res, err
}

func (s *Service) fail(id, cause string) {
	if err := s.store.Fail(context.Background(), id, cause); err != nil {
		slog.Error("catsuggest: failure not stored", "job", id, "err", err)
	}
}
