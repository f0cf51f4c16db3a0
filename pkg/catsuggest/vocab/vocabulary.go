package vocab

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/catsuggest/pkg/catsuggest/ingest"
	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
)

// Vocabulary maps bucket names (categories) to the terms that count towards them.
// It is read-only once constructed and safe for concurrent use.
type Vocabulary struct {
	buckets   []string            // sorted bucket names
	members   map[string][]string // bucket -> terms, in persisted order
	terms     []string            // sorted union of all bucket terms
	termIndex map[string]int      // term -> index into terms
	termOf    [][]int             // term index -> bucket indices containing it
	pre       *ingest.Preprocessor
}

// New creates a vocabulary from bucket term lists. Duplicate terms inside a
// bucket are dropped; empty bucket names or terms are invalid.
func New(buckets map[string][]string, stopwords *ingest.Stopwords) (*Vocabulary, error) {
	v := &Vocabulary{
		members:   make(map[string][]string, len(buckets)),
		termIndex: make(map[string]int),
		pre:       ingest.NewPreprocessor(stopwords),
	}

	for name, terms := range buckets {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: empty bucket name", internalerr.ErrInvalidInput)
		}
		seen := make(map[string]struct{}, len(terms))
		list := make([]string, 0, len(terms))
		for _, term := range terms {
			if strings.TrimSpace(term) == "" {
				return nil, fmt.Errorf("%w: empty term in bucket %q", internalerr.ErrInvalidInput, name)
			}
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			list = append(list, term)
			v.termIndex[term] = -1
		}
		v.members[name] = list
		v.buckets = append(v.buckets, name)
	}
	sort.Strings(v.buckets)

	v.terms = make([]string, 0, len(v.termIndex))
	for term := range v.termIndex {
		v.terms = append(v.terms, term)
	}
	sort.Strings(v.terms)
	for i, term := range v.terms {
		v.termIndex[term] = i
	}

	v.termOf = make([][]int, len(v.terms))
	for b, name := range v.buckets {
		for _, term := range v.members[name] {
			i := v.termIndex[term]
			v.termOf[i] = append(v.termOf[i], b)
		}
	}

	return v, nil
}

// Buckets returns the sorted bucket names
func (v *Vocabulary) Buckets() []string {
	return append([]string(nil), v.buckets...)
}

// BucketTerms returns the terms of one bucket in their stored order
func (v *Vocabulary) BucketTerms(bucket string) []string {
	return append([]string(nil), v.members[bucket]...)
}

// Terms returns the flat, sorted, deduplicated term list
func (v *Vocabulary) Terms() []string {
	return append([]string(nil), v.terms...)
}

// Stopwords returns the stopwords the vocabulary was built with
func (v *Vocabulary) Stopwords() *ingest.Stopwords {
	return v.pre.Stopwords()
}

// Preprocessor returns the text preprocessor matching this vocabulary
func (v *Vocabulary) Preprocessor() *ingest.Preprocessor {
	return v.pre
}

// Count vectorizes tokens against the flat term list. Unknown tokens are ignored.
func (v *Vocabulary) Count(tokens []string) []int {
	counts := make([]int, len(v.terms))
	for _, tok := range tokens {
		if i, ok := v.termIndex[tok]; ok {
			counts[i]++
		}
	}
	return counts
}

// BucketCounts sums term counts per bucket, in sorted bucket order
func (v *Vocabulary) BucketCounts(tokens []string) []float64 {
	out := make([]float64, len(v.buckets))
	for i, n := range v.Count(tokens) {
		if n == 0 {
			continue
		}
		for _, b := range v.termOf[i] {
			out[b] += float64(n)
		}
	}
	return out
}

// Params returns the persisted form of the vocabulary
func (v *Vocabulary) Params() Params {
	buckets := make(map[string][]string, len(v.members))
	for name, terms := range v.members {
		buckets[name] = append([]string(nil), terms...)
	}
	return Params{
		Vocabulary: buckets,
		Stopwords:  v.pre.Stopwords().Setting(),
	}
}
