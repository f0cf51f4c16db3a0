package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
)

// Statistics are the training-time column means and standard deviations.
// Keys is optional in files written by older tools; when present it pins the
// column order the statistics were computed for.
type Statistics struct {
	Keys  []string  `json:"keys,omitempty"`
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// Check verifies the statistics fit the given column list
func (s *Statistics) Check(keys []string) error {
	if len(s.Means) != len(keys) || len(s.Stds) != len(keys) {
		return fmt.Errorf("%w: statistics have %d means and %d stds for %d columns",
			internalerr.ErrSchemaMismatch, len(s.Means), len(s.Stds), len(keys))
	}
	if len(s.Keys) > 0 && !slices.Equal(s.Keys, keys) {
		return fmt.Errorf("%w: statistics columns %v, extractors produce %v",
			internalerr.ErrSchemaMismatch, s.Keys, keys)
	}
	for i, std := range s.Stds {
		if std < 0 {
			return fmt.Errorf("%w: negative std for column %d", internalerr.ErrInvalidConfig, i)
		}
	}
	return nil
}

// Apply sets the statistics on d after checking them against its columns
func (s *Statistics) Apply(d *Dataset) error {
	if err := s.Check(d.Keys); err != nil {
		return err
	}
	return d.SetStatistics(s.Means, s.Stds)
}

// LoadStatistics reads a statistics file
func LoadStatistics(path string) (*Statistics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Statistics
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, nil
}

// SaveStatistics writes a statistics file
func SaveStatistics(path string, s *Statistics) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
