// Package source finds candidate images for keywords and downloads them
// into a job's working directory.
package source

import (
	"context"

	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// Searcher finds up to limit candidate images matching all keywords
type Searcher interface {
	Search(ctx context.Context, keywords []string, limit int) ([]sample.Sample, error)
}

// SearcherFunc adapts a function to Searcher
type SearcherFunc func(ctx context.Context, keywords []string, limit int) ([]sample.Sample, error)

func (f SearcherFunc) Search(ctx context.Context, keywords []string, limit int) ([]sample.Sample, error) {
	return f(ctx, keywords, limit)
}
