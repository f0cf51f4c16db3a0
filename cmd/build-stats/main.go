package main

import (
	"context"
	"log"

	arg "github.com/alexflint/go-arg"

	"github.com/cognicore/catsuggest/internal/corpus"
	"github.com/cognicore/catsuggest/pkg/catsuggest/config"
	"github.com/cognicore/catsuggest/pkg/catsuggest/dataset"
)

func main() {
	args := struct {
		Config string `arg:"required" help:"service configuration file"`
		Corpus string `arg:"required" help:"labeled samples with local image paths"`
		Out    string `help:"statistics file to write (default: the configured dataset path)"`
	}{}
	arg.MustParse(&args)

	cfg, err := config.Load(args.Config)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if args.Out == "" {
		args.Out = cfg.Dataset
	}

	loader := config.Loader{Config: cfg}
	set, _, err := loader.LoadFeatures()
	if err != nil {
		log.Fatal(err)
	}

	samples, err := corpus.LoadFromJSONL(args.Corpus)
	if err != nil {
		log.Fatal("Failed to load corpus:", err)
	}
	log.Printf("Loaded %d samples from %s", len(samples), args.Corpus)

	ds, err := dataset.Read(context.Background(), samples, set, true, func(done, total int) {
		if done%100 == 0 || done == total {
			log.Printf("Extracted %d/%d", done, total)
		}
	})
	if err != nil {
		log.Fatal("Failed to read dataset:", err)
	}
	for _, x := range ds.Dropped {
		log.Printf("Dropped: %v", x)
	}

	st, err := ds.Statistics()
	if err != nil {
		log.Fatal(err)
	}
	if err := dataset.SaveStatistics(args.Out, st); err != nil {
		log.Fatal("Failed to save statistics:", err)
	}
	log.Printf("Wrote statistics for %d columns over %d samples (%v) to %s",
		set.Width(), ds.Len(), corpus.Labels(ds.Labels()), args.Out)
}
