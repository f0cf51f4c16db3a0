package sample

import "testing"

func TestBasename(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://upload.wikimedia.org/a/b/Red_cat.jpg", "Red_cat"},
		{"https://example.org/img/tree.PNG?width=200", "tree"},
		{"archive.tar.gz", "archive.tar"},
		{"", ""},
		{"https://example.org/", ""},
	}

	for _, tt := range tests {
		s := Sample{URL: tt.url}
		if got := s.Basename(); got != tt.want {
			t.Errorf("Basename(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	s := Sample{
		URL:         "https://example.org/Cat_photo.jpg",
		Title:       "A cat",
		Description: "sitting on a mat",
	}

	want := "Cat_photo A cat sitting on a mat"
	if got := s.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestHasMetadata(t *testing.T) {
	if (&Sample{}).HasMetadata() {
		t.Error("Empty sample should have no metadata")
	}
	if (&Sample{Path: "/tmp/x.jpg"}).HasMetadata() {
		t.Error("Local path alone is not text metadata")
	}
	if !(&Sample{Title: "cat"}).HasMetadata() {
		t.Error("Title should count as metadata")
	}
}

func TestValidate(t *testing.T) {
	if err := (&Sample{URL: "u"}).Validate(); err == nil {
		t.Error("Missing label should fail validation")
	}
	if err := (&Sample{Label: "map"}).Validate(); err == nil {
		t.Error("Missing URL should fail validation")
	}
	if err := (&Sample{URL: "u", Label: "map"}).Validate(); err != nil {
		t.Errorf("Valid sample rejected: %v", err)
	}
}
