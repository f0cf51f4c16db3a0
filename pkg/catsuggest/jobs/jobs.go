// Package jobs records the state, progress and result of suggestion jobs so
// they can be polled while a worker runs them.
package jobs

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/catsuggest/pkg/catsuggest/progress"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// State is the externally visible job state
type State string

const (
	StatePending  State = "PENDING"
	StateProgress State = "PROGRESS"
	StateSuccess  State = "SUCCESS"
	StateFailure  State = "FAILURE"
)

// Done reports whether the state is terminal
func (s State) Done() bool {
	return s == StateSuccess || s == StateFailure
}

// Request is a submitted suggestion task
type Request struct {
	Keywords []string `json:"keywords"`
	Limit    int      `json:"limit"`
}

// Job is the stored record of one request
type Job struct {
	ID       string         `json:"id"`
	State    State          `json:"state"`
	Request  Request        `json:"request"`
	Progress progress.State `json:"progress"`
	Result   []sample.Entry `json:"result,omitempty"`
	Dropped  int            `json:"dropped"`
	// Duplicates counts images left out as copies of another candidate.
	Duplicates int       `json:"duplicates"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Store persists jobs. Implementations are safe for concurrent use; a reader
// always sees a complete record.
type Store interface {
	Close() error

	Create(ctx context.Context, id string, req Request) error
	Get(ctx context.Context, id string) (Job, error)

	// Report records progress. It is ignored once the job is done.
	Report(ctx context.Context, id string, p progress.State) error
	Complete(ctx context.Context, id string, result []sample.Entry, dropped, duplicates int, p progress.State) error
	Fail(ctx context.Context, id string, cause string) error
}

// IDs generates monotonically increasing ULIDs
type IDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDs creates an ID generator
func NewIDs() *IDs {
	return &IDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a fresh job ID
func (g *IDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Now(), g.entropy).String()
}

// Reporter publishes progress of one job into a store
type Reporter struct {
	Store Store
	ID    string
	// OnError receives store failures; progress publication never blocks the job on them.
	OnError func(error)
}

// Report implements progress.Reporter
func (r Reporter) Report(p progress.State) {
	if err := r.Store.Report(context.Background(), r.ID, p); err != nil && r.OnError != nil {
		r.OnError(err)
	}
}
