package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
)

func TestLoadStoplist(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "stoplist.yaml")

	content := `terms:
  - jpg
  - file
  - commons
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatalf("Failed to load stoplist: %v", err)
	}

	if len(sl.Terms) != 3 {
		t.Errorf("Expected 3 terms, got %d", len(sl.Terms))
	}
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "catsuggest.yaml")

	content := `download_dir: tmp/downloads
classifier: model/classifier.json
database: /var/lib/catsuggest/jobs.db
workers: 3
job_timeout: 90s
dedup: true
extractors: [words, size]
search:
  thumb_width: 320
  timeout: 5s
labels: [sign, map]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DownloadDir != filepath.Join(tmpDir, "tmp/downloads") {
		t.Errorf("download_dir not resolved against config dir: %s", cfg.DownloadDir)
	}
	if cfg.Classifier != filepath.Join(tmpDir, "model/classifier.json") {
		t.Errorf("classifier not resolved: %s", cfg.Classifier)
	}
	if cfg.Dataset != filepath.Join(tmpDir, "classifier/dataset.json") {
		t.Errorf("default dataset not resolved: %s", cfg.Dataset)
	}
	if cfg.Database != "/var/lib/catsuggest/jobs.db" {
		t.Errorf("absolute path changed: %s", cfg.Database)
	}
	if cfg.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", cfg.Workers)
	}
	if !cfg.Dedup {
		t.Error("dedup not parsed")
	}
	if cfg.JobTimeout != 90*time.Second {
		t.Errorf("Expected 90s timeout, got %v", cfg.JobTimeout)
	}
	if cfg.Search.ThumbWidth != 320 || cfg.Search.Timeout != 5*time.Second {
		t.Errorf("search not parsed: %+v", cfg.Search)
	}
	if cfg.Search.Endpoint == "" || cfg.Search.CacheSize != 256 {
		t.Errorf("search defaults lost: %+v", cfg.Search)
	}
	if len(cfg.Extractors) != 2 || cfg.Extractors[1] != "size" {
		t.Errorf("Unexpected extractors %v", cfg.Extractors)
	}
	if len(cfg.Labels) != 2 {
		t.Errorf("Expected 2 labels, got %v", cfg.Labels)
	}
	if cfg.DefaultLimit != 5 {
		t.Errorf("default_limit default lost: %d", cfg.DefaultLimit)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"workers":    "workers: 0\n",
		"labels":     "labels: [sign, sign]\n",
		"extractors": "extractors: []\n",
		"syntax":     "workers: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catsuggest.yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := Load("/nonexistent/catsuggest.yaml"); err == nil {
		t.Error("Should error on nonexistent config")
	}
}

func TestDefaultLabels(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if len(cfg.Labels) != 18 || cfg.Labels[0] != "sign" || cfg.Labels[17] != "scenery" {
		t.Errorf("Unexpected default labels %v", cfg.Labels)
	}
}
