// Package progress aggregates the progress of pipeline stages into a single
// 0..100 value and publishes it.
package progress

import (
	"sync"
)

// Total is the aggregate value of a finished run
const Total = 100

// State is the last published progress
type State struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Status  string `json:"status,omitempty"`
}

// Reporter receives every newly published state. Implementations must be
// safe for concurrent use with readers of the published value.
type Reporter interface {
	Report(State)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(State)

func (f ReporterFunc) Report(s State) { f(s) }

// Stage is the slice [Start, End] of the aggregate a sub-task fills
type Stage struct {
	Start int
	End   int
}

// Observer tracks the aggregate of one run. The aggregate never decreases:
// an update below the current value is ignored.
type Observer struct {
	mu       sync.Mutex
	state    State
	reporter Reporter
}

// New creates an observer at 0/100 publishing to r (which may be nil)
func New(r Reporter) *Observer {
	return &Observer{
		state:    State{Total: Total},
		reporter: r,
	}
}

// Update maps the sub-task progress current/total into stage and publishes
// the resulting aggregate. It reports whether a new value was published.
func (o *Observer) Update(current, total int, stage Stage) bool {
	return o.publish(stage.Value(current, total), "", false)
}

// Advance publishes value directly, for example a stage boundary
func (o *Observer) Advance(value int) bool {
	return o.publish(value, "", false)
}

// SetStatus publishes a status message without moving the aggregate
func (o *Observer) SetStatus(status string) {
	o.publish(0, status, true)
}

// Snapshot returns the last published state
func (o *Observer) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Observer) publish(value int, status string, statusOnly bool) bool {
	o.mu.Lock()
	next := o.state
	if statusOnly {
		if status == next.Status {
			o.mu.Unlock()
			return false
		}
		next.Status = status
	} else {
		value = clamp(value, 0, Total)
		if value <= next.Current {
			o.mu.Unlock()
			return false
		}
		next.Current = value
	}
	o.state = next
	r := o.reporter
	// Report under the lock so reporters see states in publication order.
	if r != nil {
		r.Report(next)
	}
	o.mu.Unlock()
	return true
}

// Value maps current/total into the stage range
func (s Stage) Value(current, total int) int {
	if total <= 0 {
		return s.Start
	}
	current = clamp(current, 0, total)
	return s.Start + (s.End-s.Start)*current/total
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
