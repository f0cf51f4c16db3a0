// Package feature defines the extractors that turn a sample into a numeric
// feature vector, and the ordered set that concatenates them into one row.
package feature

import (
	"fmt"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// Extractor produces a fixed-length vector for a sample.
// Implementations hold only read-only configuration and must be safe for
// concurrent use.
type Extractor interface {
	// Name is a stable identifier, used as column prefix.
	Name() string
	// Keys names the components; its length never changes.
	Keys() []string
	// Extract returns len(Keys()) values or an *ExtractionError.
	Extract(s *sample.Sample) ([]float64, error)
}

// ExtractionError reports that one extractor could not handle one sample
type ExtractionError struct {
	Extractor string
	Sample    string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extractor %s: sample %s: %v", e.Extractor, e.Sample, e.Err)
}

// Unwrap returns both the cause and ErrExtraction so errors.Is matches either.
func (e *ExtractionError) Unwrap() []error {
	return []error{internalerr.ErrExtraction, e.Err}
}

func newError(x Extractor, s *sample.Sample, err error) *ExtractionError {
	return &ExtractionError{Extractor: x.Name(), Sample: sampleID(s), Err: err}
}

func sampleID(s *sample.Sample) string {
	switch {
	case s.URL != "":
		return s.URL
	case s.Path != "":
		return s.Path
	default:
		return s.Title
	}
}
