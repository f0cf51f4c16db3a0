package feature

import (
	"errors"
	"fmt"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// Set is an ordered list of extractors whose outputs are concatenated
type Set struct {
	extractors []Extractor
	keys       []string
}

// NewSet creates a set; extractor names must be unique
func NewSet(extractors ...Extractor) (*Set, error) {
	if len(extractors) == 0 {
		return nil, fmt.Errorf("%w: no extractors configured", internalerr.ErrInvalidConfig)
	}

	s := &Set{extractors: extractors}
	seen := make(map[string]struct{}, len(extractors))
	for _, x := range extractors {
		if _, dup := seen[x.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate extractor %q", internalerr.ErrInvalidConfig, x.Name())
		}
		seen[x.Name()] = struct{}{}
		for _, k := range x.Keys() {
			s.keys = append(s.keys, x.Name()+"."+k)
		}
	}
	return s, nil
}

// Names returns the extractor names in order
func (s *Set) Names() []string {
	names := make([]string, len(s.extractors))
	for i, x := range s.extractors {
		names[i] = x.Name()
	}
	return names
}

// Keys returns the column names of a full row
func (s *Set) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Width is the length of a full row
func (s *Set) Width() int {
	return len(s.keys)
}

// Extract runs every extractor in order and concatenates the results.
// The first failure is returned as *ExtractionError.
func (s *Set) Extract(smp *sample.Sample) ([]float64, error) {
	row := make([]float64, 0, len(s.keys))
	for _, x := range s.extractors {
		values, err := x.Extract(smp)
		if err != nil {
			var xerr *ExtractionError
			if errors.As(err, &xerr) {
				return nil, xerr
			}
			return nil, newError(x, smp, err)
		}
		if len(values) != len(x.Keys()) {
			return nil, newError(x, smp, fmt.Errorf("%w: got %d values for %d keys",
				internalerr.ErrSchemaMismatch, len(values), len(x.Keys())))
		}
		row = append(row, values...)
	}
	return row, nil
}
