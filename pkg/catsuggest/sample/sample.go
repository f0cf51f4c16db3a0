package sample

import (
	"errors"
	"path"
	"strings"
)

// Sample is one fetched image candidate together with its text metadata
type Sample struct {
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Label is the ground-truth category. Only set for training corpora.
	Label string `json:"label,omitempty"`

	// Path is the local copy of the image once downloaded.
	Path string `json:"path,omitempty"`
}

// HasMetadata reports whether the sample carries any text to extract words from
func (s *Sample) HasMetadata() bool {
	return strings.TrimSpace(s.URL) != "" ||
		strings.TrimSpace(s.Title) != "" ||
		strings.TrimSpace(s.Description) != ""
}

// Basename returns the last URL path element without its extension.
// "https://x.org/a/Red_cat.jpg" yields "Red_cat".
func (s *Sample) Basename() string {
	u := s.URL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	base := u[strings.LastIndex(u, "/")+1:]
	return strings.TrimSuffix(base, path.Ext(base))
}

// Text returns the raw text used for word features: basename, title and description
func (s *Sample) Text() string {
	return strings.Join([]string{s.Basename(), s.Title, s.Description}, " ")
}

// Validate checks the fields required for training samples
func (s *Sample) Validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return errors.New("sample URL is required")
	}
	if strings.TrimSpace(s.Label) == "" {
		return errors.New("sample label is required")
	}
	return nil
}

// Entry is one classified sample as returned to the caller
type Entry struct {
	Thumbnail string `json:"thumbnail"`
	Image     string `json:"image"`
	Label     string `json:"label"`
	Title     string `json:"title"`
}
