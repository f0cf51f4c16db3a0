package config

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/cognicore/catsuggest/pkg/catsuggest/classify"
	"github.com/cognicore/catsuggest/pkg/catsuggest/dataset"
	"github.com/cognicore/catsuggest/pkg/catsuggest/feature"
	"github.com/cognicore/catsuggest/pkg/catsuggest/ingest"
	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/jobs"
	"github.com/cognicore/catsuggest/pkg/catsuggest/jobs/memstore"
	"github.com/cognicore/catsuggest/pkg/catsuggest/jobs/sqlite"
	"github.com/cognicore/catsuggest/pkg/catsuggest/pipeline"
	"github.com/cognicore/catsuggest/pkg/catsuggest/source"
	"github.com/cognicore/catsuggest/pkg/catsuggest/vocab"
)

// Loader loads all configured artifacts and constructs components
type Loader struct {
	Config *Config

	// HTTPClient is used for search and downloads; nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// Components holds all loaded runtime components
type Components struct {
	Vocabulary *vocab.Vocabulary
	Features   *feature.Set
	Statistics *dataset.Statistics
	Classifier classify.Classifier
	Searcher   source.Searcher
	Downloader *source.Downloader
	Labels     []string
}

// LoadFeatures builds the configured extractor set. The words file is only
// read when the words extractor is configured.
func (l *Loader) LoadFeatures() (*feature.Set, *vocab.Vocabulary, error) {
	var res feature.Resources
	if slices.Contains(l.Config.Extractors, feature.WordsName) {
		if l.Config.Words == "" {
			return nil, nil, fmt.Errorf("%w: words extractor configured without a words file", internalerr.ErrInvalidConfig)
		}
		v, err := vocab.Load(l.Config.Words)
		if err != nil {
			return nil, nil, fmt.Errorf("load words: %w", err)
		}
		res.Vocabulary = v
	}

	set, err := feature.Build(l.Config.Extractors, res)
	if err != nil {
		return nil, nil, fmt.Errorf("build extractors: %w", err)
	}
	return set, res.Vocabulary, nil
}

// Load reads every artifact and checks that they agree on the feature
// columns and labels
func (l *Loader) Load() (*Components, error) {
	cfg := l.Config
	comp := &Components{Labels: append([]string(nil), cfg.Labels...)}

	set, v, err := l.LoadFeatures()
	if err != nil {
		return nil, err
	}
	comp.Features = set
	comp.Vocabulary = v
	keys := set.Keys()

	// Load statistics
	st, err := dataset.LoadStatistics(cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("load statistics: %w", err)
	}
	if err := st.Check(keys); err != nil {
		return nil, fmt.Errorf("statistics %s: %w", cfg.Dataset, err)
	}
	comp.Statistics = st

	// Load classifier
	clf, err := classify.LoadLinear(cfg.Classifier)
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	if err := classify.CheckSchema(clf, keys); err != nil {
		return nil, fmt.Errorf("classifier %s: %w", cfg.Classifier, err)
	}
	if err := classify.CheckLabels(clf, cfg.Labels); err != nil {
		return nil, fmt.Errorf("classifier %s: %w", cfg.Classifier, err)
	}
	comp.Classifier = clf

	searcher, err := source.NewCommons(source.CommonsConfig{
		Endpoint:   cfg.Search.Endpoint,
		ThumbWidth: cfg.Search.ThumbWidth,
		CacheSize:  cfg.Search.CacheSize,
		Timeout:    cfg.Search.Timeout,
		HTTPClient: l.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create searcher: %w", err)
	}
	comp.Searcher = searcher
	comp.Downloader = &source.Downloader{
		Concurrency: cfg.DownloadConcurrency,
		HTTPClient:  l.HTTPClient,
		Dedup:       cfg.Dedup,
	}

	return comp, nil
}

// Pipeline assembles the loaded components into a pipeline
func (c *Components) Pipeline(cfg *Config) (*pipeline.Pipeline, error) {
	return pipeline.New(pipeline.Pipeline{
		Searcher:    c.Searcher,
		Downloader:  c.Downloader,
		Features:    c.Features,
		Statistics:  c.Statistics,
		Classifier:  c.Classifier,
		DownloadDir: cfg.DownloadDir,
		Limit:       cfg.DefaultLimit,
	})
}

// OpenStore opens the configured job store
func (l *Loader) OpenStore(ctx context.Context) (jobs.Store, error) {
	if l.Config.Database == "" {
		return memstore.New(), nil
	}
	st, err := sqlite.OpenSQLite(ctx, l.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	return st, nil
}

// LoadStopwords resolves a stopword setting plus an optional stoplist file
// into one set
func LoadStopwords(setting, stoplistPath string) (*ingest.Stopwords, error) {
	sw := ingest.ParseStopwords(setting)
	if stoplistPath == "" {
		return sw, nil
	}
	sl, err := LoadStoplist(stoplistPath)
	if err != nil {
		return nil, fmt.Errorf("load stoplist: %w", err)
	}
	return ingest.NewStopwords(append(sw.All(), sl.Terms...)), nil
}
