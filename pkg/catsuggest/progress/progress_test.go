package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) Report(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func TestStageValue(t *testing.T) {
	s := Stage{Start: 20, End: 40}

	assert.Equal(t, 20, s.Value(0, 10))
	assert.Equal(t, 30, s.Value(5, 10))
	assert.Equal(t, 40, s.Value(10, 10))
	assert.Equal(t, 40, s.Value(12, 10))
	assert.Equal(t, 20, s.Value(3, 0))
}

func TestUpdatePublishes(t *testing.T) {
	rec := &recorder{}
	o := New(rec)

	assert.Equal(t, State{Total: 100}, o.Snapshot())
	require.True(t, o.Update(1, 2, Stage{Start: 0, End: 50}))

	assert.Equal(t, State{Current: 25, Total: 100}, o.Snapshot())
	assert.Equal(t, []State{{Current: 25, Total: 100}}, rec.states)
}

func TestMonotonic(t *testing.T) {
	rec := &recorder{}
	o := New(rec)

	stages := []Stage{{0, 20}, {20, 45}, {45, 75}, {75, 80}, {80, 90}, {90, 95}, {95, 100}}
	for _, st := range stages {
		for i := 0; i <= 4; i++ {
			o.Update(i, 4, st)
		}
	}
	// late and out-of-order updates never lower the aggregate
	assert.False(t, o.Update(1, 4, stages[0]))
	assert.False(t, o.Advance(50))

	require.NotEmpty(t, rec.states)
	for i := 1; i < len(rec.states); i++ {
		assert.GreaterOrEqual(t, rec.states[i].Current, rec.states[i-1].Current)
	}
	assert.Equal(t, 100, o.Snapshot().Current)
}

func TestAdvanceClamps(t *testing.T) {
	o := New(nil)

	assert.True(t, o.Advance(150))
	assert.Equal(t, 100, o.Snapshot().Current)
	assert.False(t, o.Advance(-1))
}

func TestSetStatus(t *testing.T) {
	rec := &recorder{}
	o := New(rec)
	o.Advance(30)

	o.SetStatus("1 sample dropped")
	o.SetStatus("1 sample dropped")

	assert.Equal(t, State{Current: 30, Total: 100, Status: "1 sample dropped"}, o.Snapshot())
	assert.Len(t, rec.states, 2)
}

func TestConcurrentSnapshot(t *testing.T) {
	o := New(ReporterFunc(func(State) {}))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i <= 100; i++ {
			o.Advance(i)
		}
	}()
	go func() {
		defer wg.Done()
		last := 0
		for i := 0; i < 1000; i++ {
			s := o.Snapshot()
			assert.Equal(t, 100, s.Total)
			assert.GreaterOrEqual(t, s.Current, last)
			last = s.Current
		}
	}()
	wg.Wait()
}
