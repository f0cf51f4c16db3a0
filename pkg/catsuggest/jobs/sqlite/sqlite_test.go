package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cognicore/catsuggest/pkg/catsuggest/jobs"
	"github.com/cognicore/catsuggest/pkg/catsuggest/jobs/storetest"
	"github.com/cognicore/catsuggest/pkg/catsuggest/progress"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "jobs.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()

	storetest.Run(t, st)
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "jobs.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := st.Create(ctx, "job", jobs.Request{Keywords: []string{"map"}, Limit: 2}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := st.Complete(ctx, "job", nil, 0, 0, progress.State{Current: 100, Total: 100}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	j, err := st.Get(ctx, "job")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if j.State != jobs.StateSuccess || j.Request.Keywords[0] != "map" {
		t.Errorf("Job not persisted: %+v", j)
	}
	if j.Result == nil || len(j.Result) != 0 {
		t.Errorf("Expected empty non-nil result, got %#v", j.Result)
	}
	if j.CreatedAt.IsZero() {
		t.Error("CreatedAt not persisted")
	}
}
