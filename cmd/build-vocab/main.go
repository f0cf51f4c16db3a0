package main

import (
	"log"
	"sort"

	arg "github.com/alexflint/go-arg"

	"github.com/cognicore/catsuggest/internal/corpus"
	"github.com/cognicore/catsuggest/pkg/catsuggest/config"
	"github.com/cognicore/catsuggest/pkg/catsuggest/ingest"
	"github.com/cognicore/catsuggest/pkg/catsuggest/vocab"
)

func main() {
	args := struct {
		Corpus    string `arg:"required" help:"labeled samples, one JSON object per line"`
		Out       string `arg:"required" help:"words file to write"`
		Limit     int    `help:"terms kept per label"`
		Stopwords string `help:"stopword setting: english, none or a comma-separated list"`
		Stoplist  string `help:"YAML stoplist with additional terms"`
		Verbose   bool   `arg:"-v" help:"log every kept term with its score"`
	}{
		Limit:     vocab.DefaultLimit,
		Stopwords: ingest.EnglishSetting,
	}
	arg.MustParse(&args)

	samples, err := corpus.LoadFromJSONL(args.Corpus)
	if err != nil {
		log.Fatal("Failed to load corpus:", err)
	}
	log.Printf("Loaded %d samples from %s", len(samples), args.Corpus)

	stopwords, err := config.LoadStopwords(args.Stopwords, args.Stoplist)
	if err != nil {
		log.Fatal(err)
	}

	scores, err := vocab.Score(samples, ingest.NewPreprocessor(stopwords), args.Limit)
	if err != nil {
		log.Fatal("Failed to score terms:", err)
	}

	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		terms := scores[label]
		log.Printf("%s: %d terms", label, len(terms))
		if args.Verbose {
			for _, ts := range terms {
				log.Printf("  %-20s %.4f", ts.Term, ts.Score)
			}
		}
	}

	v, err := vocab.FromScores(scores, stopwords)
	if err != nil {
		log.Fatal("Failed to build vocabulary:", err)
	}
	if err := vocab.Save(args.Out, v); err != nil {
		log.Fatal("Failed to save vocabulary:", err)
	}
	log.Printf("Wrote %d terms in %d buckets to %s", len(v.Terms()), len(v.Buckets()), args.Out)
}
