package vocab

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cognicore/catsuggest/pkg/catsuggest/ingest"
	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// DefaultLimit is the default number of terms kept per bucket
const DefaultLimit = 20

// TermScore is a term with its bucket-specific score
type TermScore struct {
	Term  string
	Score float64
}

// Build creates a vocabulary from a labeled corpus, keeping the top limit
// terms of each label bucket.
func Build(samples []sample.Sample, pre *ingest.Preprocessor, limit int) (*Vocabulary, error) {
	scores, err := Score(samples, pre, limit)
	if err != nil {
		return nil, err
	}
	return FromScores(scores, pre.Stopwords())
}

// FromScores creates a vocabulary from ranked bucket terms
func FromScores(scores map[string][]TermScore, stopwords *ingest.Stopwords) (*Vocabulary, error) {
	buckets := make(map[string][]string, len(scores))
	for name, ranked := range scores {
		terms := make([]string, len(ranked))
		for i, ts := range ranked {
			terms[i] = ts.Term
		}
		buckets[name] = terms
	}
	return New(buckets, stopwords)
}

// Score preprocesses the corpus, groups documents by label and ranks the
// terms of each label bucket by Rescore, keeping the top limit terms.
func Score(samples []sample.Sample, pre *ingest.Preprocessor, limit int) (map[string][]TermScore, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty corpus", internalerr.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	documents := make(map[string][][]string)
	var all [][]string
	for i := range samples {
		s := &samples[i]
		label := strings.TrimSpace(s.Label)
		if label == "" {
			return nil, fmt.Errorf("%w: sample %d (%s) has no label", internalerr.ErrInvalidInput, i, s.URL)
		}
		tokens := pre.Tokenize(s.Text())
		documents[label] = append(documents[label], tokens)
		all = append(all, tokens)
	}

	overall := Frequencies(all)

	scores := make(map[string][]TermScore, len(documents))
	for label, docs := range documents {
		rescored, err := Rescore(Frequencies(docs), overall)
		if err != nil {
			return nil, fmt.Errorf("bucket %q: %w", label, err)
		}
		scores[label] = top(rescored, limit)
	}
	return scores, nil
}

// Frequencies returns each term's share of all term occurrences in docs
func Frequencies(docs [][]string) map[string]float64 {
	counts := make(map[string]int)
	total := 0
	for _, doc := range docs {
		for _, tok := range doc {
			counts[tok]++
			total++
		}
	}

	freqs := make(map[string]float64, len(counts))
	for term, n := range counts {
		freqs[term] = float64(n) / float64(total)
	}
	return freqs
}

// Rescore weights bucket frequencies against the overall corpus:
// score = freq / (1 - overall). Every bucket term must appear in overall.
// A term holding the entire overall mass scores +Inf.
func Rescore(freqs, overall map[string]float64) (map[string]float64, error) {
	out := make(map[string]float64, len(freqs))
	for term, f := range freqs {
		if f < 0 || f > 1 {
			return nil, fmt.Errorf("%w: frequency %v of %q out of range", internalerr.ErrPrecondition, f, term)
		}
		o, ok := overall[term]
		if !ok {
			return nil, fmt.Errorf("%w: term %q missing from overall frequencies", internalerr.ErrPrecondition, term)
		}
		if o < 0 || o > 1 {
			return nil, fmt.Errorf("%w: overall frequency %v of %q out of range", internalerr.ErrPrecondition, o, term)
		}
		if o >= 1 {
			out[term] = math.Inf(1)
			continue
		}
		out[term] = f / (1 - o)
	}
	return out, nil
}

// top sorts by descending score, ties by term, and truncates to limit
func top(scores map[string]float64, limit int) []TermScore {
	ranked := make([]TermScore, 0, len(scores))
	for term, s := range scores {
		ranked = append(ranked, TermScore{Term: term, Score: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Term < ranked[j].Term
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
