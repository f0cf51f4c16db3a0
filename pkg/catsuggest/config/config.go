package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
)

// DefaultLabels is the display order of the category labels
var DefaultLabels = []string{
	"sign", "chart", "architecture", "drawn", "painting", "social",
	"portrait", "screenshot", "flag", "vehicles", "logo", "document",
	"object", "scheme", "map", "icon", "landscape", "scenery",
}

// Config is the service configuration file
type Config struct {
	DownloadDir string `yaml:"download_dir"`
	Classifier  string `yaml:"classifier"`
	Dataset     string `yaml:"dataset"`
	Words       string `yaml:"words"`
	Stoplist    string `yaml:"stoplist"`

	// Database is the sqlite job store path; empty keeps jobs in memory.
	Database string `yaml:"database"`

	Workers             int           `yaml:"workers"`
	QueueSize           int           `yaml:"queue_size"`
	DownloadConcurrency int           `yaml:"download_concurrency"`
	DefaultLimit        int           `yaml:"default_limit"`
	JobTimeout          time.Duration `yaml:"job_timeout"`

	// Dedup leaves out candidate images identical to an earlier one.
	Dedup bool `yaml:"dedup"`

	Extractors []string `yaml:"extractors"`
	Search     Search   `yaml:"search"`
	Labels     []string `yaml:"labels"`
	Listen     string   `yaml:"listen"`
}

// Search configures the candidate image search
type Search struct {
	Endpoint   string        `yaml:"endpoint"`
	ThumbWidth int           `yaml:"thumb_width"`
	CacheSize  int           `yaml:"cache_size"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Default returns the configuration used for keys a file leaves out
func Default() *Config {
	return &Config{
		DownloadDir:         "downloads",
		Classifier:          "classifier/classifier.json",
		Dataset:             "classifier/dataset.json",
		Words:               "classifier/words.json",
		Workers:             2,
		QueueSize:           64,
		DownloadConcurrency: 4,
		DefaultLimit:        5,
		JobTimeout:          5 * time.Minute,
		Extractors:          []string{"words", "size", "color", "exif"},
		Search: Search{
			Endpoint:   "https://commons.wikimedia.org/w/api.php",
			ThumbWidth: 200,
			CacheSize:  256,
			Timeout:    15 * time.Second,
		},
		Labels: append([]string(nil), DefaultLabels...),
		Listen: ":8080",
	}
}

// Load reads a YAML configuration file over the defaults. Relative paths in
// the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", internalerr.ErrInvalidConfig, path, err)
	}
	cfg.resolve(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) resolve(base string) {
	for _, p := range []*string{&c.DownloadDir, &c.Classifier, &c.Dataset, &c.Words, &c.Stoplist, &c.Database} {
		if *p == "" || *p == ":memory:" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(base, *p)
	}
}

// Validate checks values that have no usable default
func (c *Config) Validate() error {
	switch {
	case c.DownloadDir == "":
		return fmt.Errorf("%w: download_dir is required", internalerr.ErrInvalidConfig)
	case c.Classifier == "" || c.Dataset == "":
		return fmt.Errorf("%w: classifier and dataset paths are required", internalerr.ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", internalerr.ErrInvalidConfig, c.Workers)
	case c.QueueSize < 0:
		return fmt.Errorf("%w: queue_size must not be negative", internalerr.ErrInvalidConfig)
	case c.DownloadConcurrency <= 0:
		return fmt.Errorf("%w: download_concurrency must be positive", internalerr.ErrInvalidConfig)
	case c.DefaultLimit <= 0:
		return fmt.Errorf("%w: default_limit must be positive", internalerr.ErrInvalidConfig)
	case c.JobTimeout < 0:
		return fmt.Errorf("%w: job_timeout must not be negative", internalerr.ErrInvalidConfig)
	case len(c.Extractors) == 0:
		return fmt.Errorf("%w: at least one extractor is required", internalerr.ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Labels))
	for _, l := range c.Labels {
		if l == "" || seen[l] {
			return fmt.Errorf("%w: labels must be unique and non-empty (%q)", internalerr.ErrInvalidConfig, l)
		}
		seen[l] = true
	}
	return nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
