package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/catsuggest/pkg/catsuggest/feature"
	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// byURL returns a fixed single value per sample URL and fails for "bad"
type byURL struct {
	name   string
	values map[string]float64
}

func (b byURL) Name() string   { return b.name }
func (b byURL) Keys() []string { return []string{"v"} }
func (b byURL) Extract(s *sample.Sample) ([]float64, error) {
	if s.URL == "bad" {
		return nil, &feature.ExtractionError{Extractor: b.name, Sample: s.URL, Err: errors.New("unreadable")}
	}
	return []float64{b.values[s.URL]}, nil
}

func twoExtractors(t *testing.T) *feature.Set {
	t.Helper()
	set, err := feature.NewSet(
		byURL{name: "a", values: map[string]float64{"1": 1, "2": 2, "3": 3}},
		byURL{name: "b", values: map[string]float64{"1": 10, "2": 20, "3": 30}},
	)
	require.NoError(t, err)
	return set
}

func TestReadShape(t *testing.T) {
	samples := []sample.Sample{{URL: "1"}, {URL: "2"}, {URL: "3"}}

	d, err := Read(context.Background(), samples, twoExtractors(t), false, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, d.Len())
	for _, row := range d.Matrix {
		assert.Len(t, row, 2)
	}
	assert.Equal(t, []string{"a.v", "b.v"}, d.Keys)
	assert.Equal(t, []float64{2, 20}, d.Matrix[1])
	assert.Empty(t, d.Dropped)
}

func TestReadDropsFailures(t *testing.T) {
	samples := []sample.Sample{{URL: "1"}, {URL: "bad"}, {URL: "3"}}

	var calls []int
	d, err := Read(context.Background(), samples, twoExtractors(t), false, func(done, total int) {
		assert.Equal(t, 3, total)
		calls = append(calls, done)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, d.Len())
	require.Len(t, d.Dropped, 1)
	assert.Equal(t, "bad", d.Dropped[0].Sample)
	// rows stay aligned with samples
	assert.Equal(t, "3", d.Samples[1].URL)
	assert.Equal(t, []float64{3, 30}, d.Matrix[1])
	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestReadAllFail(t *testing.T) {
	samples := []sample.Sample{{URL: "bad"}, {URL: "bad"}}

	d, err := Read(context.Background(), samples, twoExtractors(t), false, nil)
	assert.ErrorIs(t, err, internalerr.ErrNoSamples)
	assert.ErrorIs(t, err, internalerr.ErrExtraction)
	assert.Len(t, d.Dropped, 2)
}

func TestReadEmpty(t *testing.T) {
	d, err := Read(context.Background(), nil, twoExtractors(t), false, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
}

func TestReadLabeled(t *testing.T) {
	samples := []sample.Sample{{URL: "1", Label: "map"}, {URL: "2"}}

	d, err := Read(context.Background(), samples, twoExtractors(t), true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"map"}, d.Labels())
	require.Len(t, d.Dropped, 1)
	assert.Equal(t, "label", d.Dropped[0].Extractor)
}

func TestReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Read(ctx, []sample.Sample{{URL: "1"}}, twoExtractors(t), false, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalize(t *testing.T) {
	d := &Dataset{Keys: []string{"x", "y"}, Matrix: [][]float64{{1, 10}, {3, 30}}}
	require.NoError(t, d.SetStatistics([]float64{2, 20}, []float64{1, 10}))

	require.NoError(t, d.Normalize())
	assert.Equal(t, [][]float64{{-1, -1}, {1, 1}}, d.Matrix)
}

func TestNormalizeZeroStd(t *testing.T) {
	d := &Dataset{Keys: []string{"x", "y"}, Matrix: [][]float64{{5, 7}, {9, 7}}}
	require.NoError(t, d.SetStatistics([]float64{0, 0}, []float64{1, 0}))

	require.NoError(t, d.Normalize())
	assert.Equal(t, [][]float64{{5, 0}, {9, 0}}, d.Matrix)
}

func TestNormalizeWithoutStatistics(t *testing.T) {
	d := &Dataset{Keys: []string{"x"}, Matrix: [][]float64{{1}}}

	err := d.Normalize()
	assert.ErrorIs(t, err, internalerr.ErrNormalizationPrecondition)
	assert.Equal(t, [][]float64{{1}}, d.Matrix)
}

func TestNormalizeTwice(t *testing.T) {
	d := &Dataset{Keys: []string{"x"}, Matrix: [][]float64{{4}, {8}}}
	require.NoError(t, d.SetStatistics([]float64{2}, []float64{2}))
	require.NoError(t, d.Normalize())
	assert.Equal(t, [][]float64{{1}, {3}}, d.Matrix)

	// Re-applying the same stats normalizes the already normalized values again
	require.NoError(t, d.Normalize())
	assert.Equal(t, [][]float64{{-0.5}, {0.5}}, d.Matrix)

	// Different stats shift and scale predictably: (x - 1) / 0.5
	require.NoError(t, d.SetStatistics([]float64{1}, []float64{0.5}))
	require.NoError(t, d.Normalize())
	assert.Equal(t, [][]float64{{-3}, {-1}}, d.Matrix)
}

func TestSetStatisticsMismatch(t *testing.T) {
	d := &Dataset{Keys: []string{"x", "y"}}
	assert.ErrorIs(t, d.SetStatistics([]float64{0}, []float64{1}), internalerr.ErrSchemaMismatch)
}

func TestStatistics(t *testing.T) {
	d := &Dataset{Keys: []string{"x", "y"}, Matrix: [][]float64{{1, 5}, {3, 5}}}

	st, err := d.Statistics()
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, st.Means)
	assert.Equal(t, []float64{1, 0}, st.Stds)

	_, err = (&Dataset{Keys: []string{"x"}}).Statistics()
	assert.ErrorIs(t, err, internalerr.ErrNoSamples)
}

func TestStatisticsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	st := &Statistics{Keys: []string{"a.v", "b.v"}, Means: []float64{1, 2}, Stds: []float64{0.5, 0}}
	require.NoError(t, SaveStatistics(path, st))

	loaded, err := LoadStatistics(path)
	require.NoError(t, err)
	assert.Equal(t, st, loaded)

	d := &Dataset{Keys: []string{"a.v", "b.v"}, Matrix: [][]float64{{2, 9}}}
	require.NoError(t, loaded.Apply(d))
	require.NoError(t, d.Normalize())
	assert.Equal(t, [][]float64{{2, 0}}, d.Matrix)
}

func TestStatisticsCheck(t *testing.T) {
	st := &Statistics{Means: []float64{0, 0}, Stds: []float64{1, 1}}
	assert.NoError(t, st.Check([]string{"a", "b"}))
	assert.ErrorIs(t, st.Check([]string{"a"}), internalerr.ErrSchemaMismatch)

	st.Keys = []string{"b", "a"}
	assert.ErrorIs(t, st.Check([]string{"a", "b"}), internalerr.ErrSchemaMismatch)

	st = &Statistics{Means: []float64{0}, Stds: []float64{-1}}
	assert.ErrorIs(t, st.Check([]string{"a"}), internalerr.ErrInvalidConfig)
}
