package feature

import (
	"errors"

	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
	"github.com/cognicore/catsuggest/pkg/catsuggest/vocab"
)

// WordsName identifies the word extractor
const WordsName = "words"

var errNoMetadata = errors.New("metadata not found")

// Words scores sample text against vocabulary buckets. Each component is the
// number of occurrences of the bucket's terms in the preprocessed text.
type Words struct {
	vocabulary *vocab.Vocabulary
}

// NewWords creates a word extractor over a loaded vocabulary
func NewWords(v *vocab.Vocabulary) *Words {
	return &Words{vocabulary: v}
}

// Name returns "words"
func (w *Words) Name() string { return WordsName }

// Keys returns the sorted bucket names
func (w *Words) Keys() []string { return w.vocabulary.Buckets() }

// Extract counts the tokens of the URL basename, title and description per
// vocabulary bucket. A sample without metadata is an error.
func (w *Words) Extract(s *sample.Sample) ([]float64, error) {
	if !s.HasMetadata() {
		return nil, newError(w, s, errNoMetadata)
	}
	tokens := w.vocabulary.Preprocessor().Tokenize(s.Text())
	return w.vocabulary.BucketCounts(tokens), nil
}
