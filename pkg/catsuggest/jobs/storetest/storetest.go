// Package storetest holds the behaviour every jobs.Store must share.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/jobs"
	"github.com/cognicore/catsuggest/pkg/catsuggest/progress"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// Run exercises st through a job's whole lifecycle
func Run(t *testing.T, st jobs.Store) {
	t.Helper()
	ctx := context.Background()

	if err := st.Create(ctx, "job-1", jobs.Request{Keywords: []string{"road", "sign"}, Limit: 3}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	j, err := st.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if j.State != jobs.StatePending {
		t.Errorf("Expected PENDING, got %s", j.State)
	}
	if j.Progress.Total != progress.Total || j.Progress.Current != 0 {
		t.Errorf("Unexpected initial progress %+v", j.Progress)
	}
	if len(j.Request.Keywords) != 2 || j.Request.Limit != 3 {
		t.Errorf("Request not stored: %+v", j.Request)
	}

	if err := st.Report(ctx, "job-1", progress.State{Current: 40, Total: 100, Status: "downloading"}); err != nil {
		t.Fatalf("Report: %v", err)
	}
	j, _ = st.Get(ctx, "job-1")
	if j.State != jobs.StateProgress || j.Progress.Current != 40 || j.Progress.Status != "downloading" {
		t.Errorf("Progress not stored: %s %+v", j.State, j.Progress)
	}

	entries := []sample.Entry{
		{Thumbnail: "t1", Image: "i1", Label: "sign", Title: "Stop"},
		{Thumbnail: "t2", Image: "i2", Label: "map", Title: "Atlas"},
	}
	final := progress.State{Current: 100, Total: 100, Status: "1 sample dropped"}
	if err := st.Complete(ctx, "job-1", entries, 1, 2, final); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// a late report must not reopen a finished job
	if err := st.Report(ctx, "job-1", progress.State{Current: 99, Total: 100}); err != nil {
		t.Fatalf("late Report: %v", err)
	}

	j, err = st.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if j.State != jobs.StateSuccess {
		t.Errorf("Expected SUCCESS, got %s", j.State)
	}
	if j.Progress != final {
		t.Errorf("Expected %+v, got %+v", final, j.Progress)
	}
	if j.Dropped != 1 || j.Duplicates != 2 || len(j.Result) != 2 || j.Result[1] != entries[1] {
		t.Errorf("Result not stored: %d %d %+v", j.Dropped, j.Duplicates, j.Result)
	}

	if err := st.Create(ctx, "job-2", jobs.Request{}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := st.Fail(ctx, "job-2", "invalid input: at least one keyword is required"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	j, _ = st.Get(ctx, "job-2")
	if j.State != jobs.StateFailure || j.Error == "" {
		t.Errorf("Failure not stored: %s %q", j.State, j.Error)
	}

	if _, err := st.Get(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := st.Report(ctx, "missing", progress.State{}); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on Report, got %v", err)
	}
	if err := st.Fail(ctx, "missing", "x"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on Fail, got %v", err)
	}
}
