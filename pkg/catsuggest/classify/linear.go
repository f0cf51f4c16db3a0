package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
)

// LinearModel is the persisted form of a one-vs-rest linear classifier
type LinearModel struct {
	Columns []string    `json:"columns"`
	Labels  []string    `json:"labels"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// Linear scores each label as w·x + b and predicts the best one.
// Ties go to the label listed first.
type Linear struct {
	model LinearModel
}

// NewLinear validates a model and wraps it as a Classifier
func NewLinear(m LinearModel) (*Linear, error) {
	if len(m.Labels) == 0 {
		return nil, fmt.Errorf("%w: model has no labels", internalerr.ErrClassifierLoad)
	}
	if len(m.Columns) == 0 {
		return nil, fmt.Errorf("%w: model has no columns", internalerr.ErrClassifierLoad)
	}
	if len(m.Weights) != len(m.Labels) || len(m.Bias) != len(m.Labels) {
		return nil, fmt.Errorf("%w: %d labels, %d weight rows, %d biases",
			internalerr.ErrClassifierLoad, len(m.Labels), len(m.Weights), len(m.Bias))
	}
	for i, w := range m.Weights {
		if len(w) != len(m.Columns) {
			return nil, fmt.Errorf("%w: weights for %q have %d values for %d columns",
				internalerr.ErrClassifierLoad, m.Labels[i], len(w), len(m.Columns))
		}
	}
	return &Linear{model: m}, nil
}

// LoadLinear reads a model file
func LoadLinear(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrClassifierLoad, err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", internalerr.ErrClassifierLoad, path, err)
	}
	return NewLinear(m)
}

// Columns returns a copy of the feature columns the model was trained on
func (l *Linear) Columns() []string { return append([]string(nil), l.model.Columns...) }

// Labels returns a copy of the model's labels in score order
func (l *Linear) Labels() []string { return append([]string(nil), l.model.Labels...) }

// Predict labels each row with its highest-scoring class. Ties go to the
// earlier label. A row of the wrong width is ErrSchemaMismatch.
func (l *Linear) Predict(ctx context.Context, rows [][]float64) ([]string, error) {
	out := make([]string, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(row) != len(l.model.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns",
				internalerr.ErrSchemaMismatch, i, len(row), len(l.model.Columns))
		}
		best, bestScore := 0, 0.0
		for k, w := range l.model.Weights {
			score := l.model.Bias[k]
			for j, x := range row {
				score += w[j] * x
			}
			if k == 0 || score > bestScore {
				best, bestScore = k, score
			}
		}
		out[i] = l.model.Labels[best]
	}
	return out, nil
}
