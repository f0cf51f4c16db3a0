package feature

import (
	"fmt"
	"sort"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/vocab"
)

// Resources holds the shared, read-only inputs extractors may need
type Resources struct {
	Vocabulary *vocab.Vocabulary
}

// Factory creates an extractor from shared resources
type Factory func(res Resources) (Extractor, error)

var factories = map[string]Factory{
	WordsName: func(res Resources) (Extractor, error) {
		if res.Vocabulary == nil {
			return nil, fmt.Errorf("%w: words extractor needs a vocabulary", internalerr.ErrInvalidConfig)
		}
		return NewWords(res.Vocabulary), nil
	},
	SizeName:  func(Resources) (Extractor, error) { return NewSize(), nil },
	ColorName: func(Resources) (Extractor, error) { return NewColor(), nil },
	ExifName:  func(Resources) (Extractor, error) { return NewExif(), nil },
}

// Available lists the extractor names that can be configured
func Available() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates the extractor set for the configured names, in that order
func Build(names []string, res Resources) (*Set, error) {
	extractors := make([]Extractor, 0, len(names))
	for _, name := range names {
		f, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown extractor %q (available: %v)", internalerr.ErrInvalidConfig, name, Available())
		}
		x, err := f(res)
		if err != nil {
			return nil, err
		}
		extractors = append(extractors, x)
	}
	return NewSet(extractors...)
}
