// Package classify loads the externally trained classifier and applies it to
// normalized feature matrices.
package classify

import (
	"context"
	"fmt"
	"slices"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
)

// Classifier predicts one label per normalized feature row
type Classifier interface {
	// Columns is the feature column order the model was trained on.
	Columns() []string
	// Labels lists every label the model can predict.
	Labels() []string
	Predict(ctx context.Context, rows [][]float64) ([]string, error)
}

// CheckSchema fails when the classifier expects other columns than keys
func CheckSchema(c Classifier, keys []string) error {
	if !slices.Equal(c.Columns(), keys) {
		return fmt.Errorf("%w: classifier columns %v, extractors produce %v",
			internalerr.ErrSchemaMismatch, c.Columns(), keys)
	}
	return nil
}

// CheckLabels fails when the classifier can predict a label outside known.
// An empty known list accepts every label.
func CheckLabels(c Classifier, known []string) error {
	if len(known) == 0 {
		return nil
	}
	for _, l := range c.Labels() {
		if !slices.Contains(known, l) {
			return fmt.Errorf("%w: classifier label %q is not a known category", internalerr.ErrSchemaMismatch, l)
		}
	}
	return nil
}
