package ingest

import (
	"sort"
	"strings"
)

// EnglishSetting is the stopword setting selecting the built-in English list
const EnglishSetting = "english"

// Stopwords is an immutable stopword set together with the setting it was
// parsed from. The setting is persisted next to a vocabulary.
type Stopwords struct {
	setting string
	words   map[string]struct{}
}

// NoStopwords returns an empty set
func NoStopwords() *Stopwords {
	return &Stopwords{words: map[string]struct{}{}}
}

// NewStopwords creates a stopword set from an explicit word list.
// Its setting is the sorted comma-separated list.
func NewStopwords(words []string) *Stopwords {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	s := &Stopwords{words: set}
	s.setting = strings.Join(s.All(), ",")
	return s
}

// ParseStopwords reads a stopword setting: "english" for the built-in list,
// "" or "none" for no stopwords, otherwise a comma-separated word list.
func ParseStopwords(setting string) *Stopwords {
	trimmed := strings.TrimSpace(setting)
	switch strings.ToLower(trimmed) {
	case "", "none":
		return NoStopwords()
	case EnglishSetting:
		s := NewStopwords(englishStopwords)
		s.setting = EnglishSetting
		return s
	}
	return NewStopwords(strings.Split(trimmed, ","))
}

// Setting returns the string that ParseStopwords maps back to this set
func (s *Stopwords) Setting() string {
	return s.setting
}

// Contains reports whether word is a stopword. Words are compared lowercased.
func (s *Stopwords) Contains(word string) bool {
	_, ok := s.words[strings.ToLower(word)]
	return ok
}

// Len returns the number of stopwords
func (s *Stopwords) Len() int {
	return len(s.words)
}

// All returns the stopwords in sorted order
func (s *Stopwords) All() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

var englishStopwords = []string{
	"a", "about", "above", "across", "after", "afterwards", "again", "against",
	"all", "almost", "alone", "along", "already", "also", "although", "always",
	"am", "among", "amongst", "an", "and", "another", "any", "anyhow", "anyone",
	"anything", "anyway", "anywhere", "are", "around", "as", "at", "back", "be",
	"became", "because", "become", "becomes", "been", "before", "beforehand",
	"behind", "being", "below", "beside", "besides", "between", "beyond", "both",
	"but", "by", "can", "cannot", "could", "did", "do", "does", "done", "down",
	"due", "during", "each", "eg", "either", "else", "elsewhere", "enough", "etc",
	"even", "ever", "every", "everyone", "everything", "everywhere", "except",
	"few", "for", "former", "formerly", "from", "further", "had", "has", "have",
	"he", "hence", "her", "here", "hereafter", "hereby", "herein", "hers",
	"herself", "him", "himself", "his", "how", "however", "ie", "if", "in",
	"indeed", "into", "is", "it", "its", "itself", "just", "last", "latter",
	"least", "less", "ltd", "many", "may", "me", "meanwhile", "might", "more",
	"moreover", "most", "mostly", "much", "must", "my", "myself", "namely",
	"neither", "never", "nevertheless", "next", "no", "nobody", "none", "noone",
	"nor", "not", "nothing", "now", "nowhere", "of", "off", "often", "on", "once",
	"one", "only", "onto", "or", "other", "others", "otherwise", "our", "ours",
	"ourselves", "out", "over", "own", "per", "perhaps", "please", "rather",
	"same", "seem", "seemed", "seeming", "seems", "several", "she", "should",
	"since", "so", "some", "somehow", "someone", "something", "sometime",
	"sometimes", "somewhere", "still", "such", "than", "that", "the", "their",
	"them", "themselves", "then", "thence", "there", "thereafter", "thereby",
	"therefore", "therein", "thereupon", "these", "they", "this", "those",
	"though", "through", "throughout", "thru", "thus", "to", "together", "too",
	"toward", "towards", "under", "until", "up", "upon", "us", "very", "via",
	"was", "we", "well", "were", "what", "whatever", "when", "whence", "whenever",
	"where", "whereafter", "whereas", "whereby", "wherein", "whereupon",
	"wherever", "whether", "which", "while", "whither", "who", "whoever", "whole",
	"whom", "whose", "why", "will", "with", "within", "without", "would", "yet",
	"you", "your", "yours", "yourself", "yourselves",
}
