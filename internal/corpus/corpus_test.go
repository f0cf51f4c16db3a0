package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.jsonl")

	content := `{"url": "https://x.org/Stop_sign.jpg", "title": "Stop sign", "label": "sign", "path": "images/1.jpg"}
not json

{"url": "https://x.org/Atlas.png", "title": "World atlas", "label": "map", "path": "/abs/2.png"}
{"url": "https://x.org/Unlabeled.png", "title": "No label"}
{"url": "https://x.org/Road_sign.jpg", "description": "<b>Yield</b>", "label": "sign"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	samples, err := LoadFromJSONL(path)
	if err != nil {
		t.Fatalf("LoadFromJSONL: %v", err)
	}

	if len(samples) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(samples))
	}
	if samples[0].Path != filepath.Join(dir, "images/1.jpg") {
		t.Errorf("relative path not resolved: %s", samples[0].Path)
	}
	if samples[1].Path != "/abs/2.png" {
		t.Errorf("absolute path changed: %s", samples[1].Path)
	}

	var labels []string
	for _, s := range samples {
		labels = append(labels, s.Label)
	}
	counts := Labels(labels)
	if counts["sign"] != 2 || counts["map"] != 1 {
		t.Errorf("Unexpected label counts %v", counts)
	}
}

func TestLoadFromJSONLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	if err := os.WriteFile(path, []byte("\n\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromJSONL(path); err == nil {
		t.Error("Should error on a corpus without samples")
	}
}

func TestLoadFromJSONLMissing(t *testing.T) {
	if _, err := LoadFromJSONL("/nonexistent/corpus.jsonl"); err == nil {
		t.Error("Should error on nonexistent file")
	}
}
