package ingest

import (
	"reflect"
	"testing"
)

func TestParseStopwordsEnglish(t *testing.T) {
	s := ParseStopwords("english")

	if !s.Contains("the") {
		t.Error("'the' should be a stopword")
	}
	if s.Contains("cat") {
		t.Error("'cat' should not be a stopword")
	}
	if s.Setting() != EnglishSetting {
		t.Errorf("Expected setting %q, got %q", EnglishSetting, s.Setting())
	}
}

func TestParseStopwordsNone(t *testing.T) {
	for _, setting := range []string{"", "none", " NONE "} {
		if s := ParseStopwords(setting); s.Len() != 0 {
			t.Errorf("Setting %q should give no stopwords, got %d", setting, s.Len())
		}
	}
}

func TestParseStopwordsList(t *testing.T) {
	s := ParseStopwords("Foo, bar ,baz")

	expected := []string{"bar", "baz", "foo"}
	if !reflect.DeepEqual(s.All(), expected) {
		t.Errorf("Expected %v, got %v", expected, s.All())
	}

	// The setting must round-trip to the same set
	again := ParseStopwords(s.Setting())
	if !reflect.DeepEqual(again.All(), expected) {
		t.Errorf("Round trip changed stopwords: %v", again.All())
	}
}
