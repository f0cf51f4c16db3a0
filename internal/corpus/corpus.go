// Package corpus reads labeled training samples from JSONL files.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

const maxLine = 1 << 20

// LoadFromJSONL loads samples, one JSON object per line. Malformed lines and
// samples failing validation are skipped with a warning. Relative sample
// paths are resolved against the file's directory.
func LoadFromJSONL(path string) ([]sample.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	base := filepath.Dir(path)
	var samples []sample.Sample

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var s sample.Sample
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			slog.Warn("corpus: skipping malformed JSON", "file", path, "line", line, "err", err)
			continue
		}
		if err := s.Validate(); err != nil {
			slog.Warn("corpus: skipping sample", "file", path, "line", line, "err", err)
			continue
		}
		if s.Path != "" && !filepath.IsAbs(s.Path) {
			s.Path = filepath.Join(base, s.Path)
		}
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("no valid samples found in %s", path)
	}
	return samples, nil
}

// Labels counts occurrences of each label
func Labels(labels []string) map[string]int {
	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}
