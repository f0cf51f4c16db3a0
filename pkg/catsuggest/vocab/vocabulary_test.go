package vocab

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/catsuggest/pkg/catsuggest/ingest"
	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
)

func testVocabulary(t *testing.T) *Vocabulary {
	t.Helper()
	v, err := New(map[string][]string{
		"plant":  {"tree"},
		"animal": {"cat", "dog"},
	}, ingest.ParseStopwords("english"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return v
}

func TestVocabularyOrder(t *testing.T) {
	v := testVocabulary(t)

	if got := v.Buckets(); !reflect.DeepEqual(got, []string{"animal", "plant"}) {
		t.Errorf("Buckets should be sorted, got %v", got)
	}
	if got := v.Terms(); !reflect.DeepEqual(got, []string{"cat", "dog", "tree"}) {
		t.Errorf("Terms should be sorted union, got %v", got)
	}
}

func TestVocabularyBucketCounts(t *testing.T) {
	v := testVocabulary(t)

	tokens := v.Preprocessor().Tokenize("a cat and a dog")
	got := v.BucketCounts(tokens)

	if !reflect.DeepEqual(got, []float64{2, 0}) {
		t.Errorf("Expected [2 0], got %v", got)
	}
}

func TestVocabularyUnknownTermsIgnored(t *testing.T) {
	v := testVocabulary(t)

	counts := v.Count([]string{"cat", "zebra", "cat", "tree"})
	if !reflect.DeepEqual(counts, []int{2, 0, 1}) {
		t.Errorf("Expected [2 0 1], got %v", counts)
	}
}

func TestVocabularySharedTerm(t *testing.T) {
	v, err := New(map[string][]string{
		"map":   {"europ", "border"},
		"flag":  {"europ"},
		"chart": {"line", "line"},
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := v.BucketTerms("chart"); len(got) != 1 {
		t.Errorf("Duplicate terms should collapse, got %v", got)
	}

	got := v.BucketCounts([]string{"europ", "europ"})
	// chart, flag, map
	if !reflect.DeepEqual(got, []float64{0, 2, 2}) {
		t.Errorf("Shared term should count in every bucket, got %v", got)
	}
}

func TestVocabularyInvalid(t *testing.T) {
	if _, err := New(map[string][]string{"": {"x"}}, nil); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Empty bucket name should be invalid, got %v", err)
	}
	if _, err := New(map[string][]string{"a": {" "}}, nil); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Empty term should be invalid, got %v", err)
	}
}
