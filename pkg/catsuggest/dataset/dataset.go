package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/cognicore/catsuggest/pkg/catsuggest/feature"
	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// Dataset holds samples and their feature matrix. Samples[i] belongs to
// Matrix[i]; the two are only ever appended together.
type Dataset struct {
	Samples []sample.Sample
	Matrix  [][]float64
	Keys    []string

	// Dropped lists samples whose extraction failed during Read.
	Dropped []*feature.ExtractionError

	means []float64
	stds  []float64
}

// ProgressFunc is called after each sample with the number handled so far
type ProgressFunc func(done, total int)

// Read extracts a row per sample with the extractor set. Failing samples are
// recorded in Dropped and skipped. If every sample fails, Read returns
// ErrNoSamples together with the dataset so callers can inspect Dropped.
// With labeled set, samples without a label count as failures.
func Read(ctx context.Context, samples []sample.Sample, set *feature.Set, labeled bool, progress ProgressFunc) (*Dataset, error) {
	d := &Dataset{Keys: set.Keys()}

	for i := range samples {
		if err := ctx.Err(); err != nil {
			return d, err
		}

		s := samples[i]
		if labeled && strings.TrimSpace(s.Label) == "" {
			d.Dropped = append(d.Dropped, &feature.ExtractionError{
				Extractor: "label",
				Sample:    s.URL,
				Err:       errors.New("sample label is required"),
			})
		} else if row, err := set.Extract(&s); err != nil {
			var xerr *feature.ExtractionError
			if !errors.As(err, &xerr) {
				return d, err
			}
			d.Dropped = append(d.Dropped, xerr)
		} else {
			d.Samples = append(d.Samples, s)
			d.Matrix = append(d.Matrix, row)
		}

		if progress != nil {
			progress(i+1, len(samples))
		}
	}

	if len(samples) > 0 && len(d.Samples) == 0 {
		causes := make([]error, len(d.Dropped))
		for i, x := range d.Dropped {
			causes[i] = x
		}
		return d, fmt.Errorf("%w: all %d samples failed extraction: %w",
			internalerr.ErrNoSamples, len(samples), errors.Join(causes...))
	}
	return d, nil
}

// Len is the number of rows
func (d *Dataset) Len() int {
	return len(d.Matrix)
}

// Labels returns the ground-truth label of every row
func (d *Dataset) Labels() []string {
	out := make([]string, len(d.Samples))
	for i, s := range d.Samples {
		out[i] = s.Label
	}
	return out
}

// SetStatistics sets the per-column means and standard deviations
func (d *Dataset) SetStatistics(means, stds []float64) error {
	if len(means) != len(d.Keys) || len(stds) != len(d.Keys) {
		return fmt.Errorf("%w: %d columns, %d means, %d stds",
			internalerr.ErrSchemaMismatch, len(d.Keys), len(means), len(stds))
	}
	d.means = append([]float64(nil), means...)
	d.stds = append([]float64(nil), stds...)
	return nil
}

// Normalize standardizes the matrix in place: (x - mean) / std.
// Columns whose std is zero become 0.
func (d *Dataset) Normalize() error {
	if d.means == nil || d.stds == nil {
		return internalerr.ErrNormalizationPrecondition
	}
	for _, row := range d.Matrix {
		for j := range row {
			if d.stds[j] == 0 {
				row[j] = 0
				continue
			}
			row[j] = (row[j] - d.means[j]) / d.stds[j]
		}
	}
	return nil
}

// Statistics computes the population mean and standard deviation of every
// column, for writing a statistics file from a training corpus.
func (d *Dataset) Statistics() (*Statistics, error) {
	if d.Len() == 0 {
		return nil, internalerr.ErrNoSamples
	}

	st := &Statistics{
		Keys:  append([]string(nil), d.Keys...),
		Means: make([]float64, len(d.Keys)),
		Stds:  make([]float64, len(d.Keys)),
	}
	column := make([]float64, d.Len())
	for j := range d.Keys {
		for i, row := range d.Matrix {
			column[i] = row[j]
		}
		mean, err := stats.Mean(column)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", d.Keys[j], err)
		}
		std, err := stats.StandardDeviationPopulation(column)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", d.Keys[j], err)
		}
		st.Means[j], st.Stds[j] = mean, std
	}
	return st, nil
}
