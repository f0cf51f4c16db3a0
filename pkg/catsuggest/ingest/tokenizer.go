package ingest

import (
	"regexp"
	"strings"
	"unicode"

	porterstemmer "github.com/kiteco/go-porterstemmer"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// wordPattern matches an optional capital followed by at least two lowercase letters.
// "RedCat" yields "Red" and "Cat"; digits and single letters are dropped.
var wordPattern = regexp.MustCompile(`[A-Z]?[a-z]{2,}`)

// Preprocessor turns sample text into normalized, stemmed tokens.
// The same Preprocessor settings must be used when building a vocabulary and
// when extracting word features from it, otherwise term counts drift.
type Preprocessor struct {
	stopwords *Stopwords
}

// NewPreprocessor creates a preprocessor that drops the given stopwords
func NewPreprocessor(stopwords *Stopwords) *Preprocessor {
	if stopwords == nil {
		stopwords = NoStopwords()
	}
	return &Preprocessor{stopwords: stopwords}
}

// Stopwords returns the stopword set in use
func (p *Preprocessor) Stopwords() *Stopwords {
	return p.stopwords
}

// Tokenize folds accents, splits text into words, stems and lowercases them
// and removes stopwords.
func (p *Preprocessor) Tokenize(text string) []string {
	text = foldAccents(text)

	var tokens []string
	for _, chunk := range wordPattern.FindAllString(text, -1) {
		word := p.processToken(chunk)
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// Document returns the tokens of text joined by single spaces
func (p *Preprocessor) Document(text string) string {
	return strings.Join(p.Tokenize(text), " ")
}

func (p *Preprocessor) processToken(chunk string) string {
	word := strings.ToLower(porterstemmer.StemString(strings.ToLower(chunk)))
	if len(word) < 2 {
		return ""
	}
	if p.stopwords.Contains(word) {
		return ""
	}
	return word
}

// foldAccents decomposes text and removes combining marks, so "café" becomes "cafe".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
