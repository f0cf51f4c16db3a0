package vocab

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cognicore/catsuggest/pkg/catsuggest/ingest"
	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
)

// Params is the persisted words configuration
type Params struct {
	Vocabulary map[string][]string `json:"vocabulary"`
	Stopwords  string              `json:"stopwords"`
}

// FromParams builds a vocabulary from its persisted form
func FromParams(p Params) (*Vocabulary, error) {
	if len(p.Vocabulary) == 0 {
		return nil, fmt.Errorf("%w: vocabulary has no buckets", internalerr.ErrInvalidConfig)
	}
	return New(p.Vocabulary, ingest.ParseStopwords(p.Stopwords))
}

// Load reads a words configuration file
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return FromParams(p)
}

// Save writes the vocabulary and its stopword setting to path
func Save(path string, v *Vocabulary) error {
	data, err := json.MarshalIndent(v.Params(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
