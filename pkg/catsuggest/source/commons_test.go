package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
)

const commonsFixture = `{
  "batchcomplete": true,
  "query": {
    "pages": [
      {"pageid": 2, "ns": 6, "title": "File:Dog in park.jpg", "index": 2,
       "imageinfo": [{"url": "https://upload.example/Dog_in_park.jpg", "thumburl": "https://upload.example/thumb/Dog_in_park.jpg",
                      "extmetadata": {"ImageDescription": {"value": "A <b>dog</b> playing<script>x()</script>"}}}]},
      {"pageid": 1, "ns": 6, "title": "File:Cat.png", "index": 1,
       "imageinfo": [{"url": "https://upload.example/Cat.png", "extmetadata": {}}]},
      {"pageid": 3, "ns": 6, "title": "File:Missing.jpg", "index": 3}
    ]
  }
}`

func TestCommonsSearch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "cat dog", r.URL.Query().Get("gsrsearch"))
		assert.Equal(t, "6", r.URL.Query().Get("gsrnamespace"))
		assert.Equal(t, "5", r.URL.Query().Get("gsrlimit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(commonsFixture))
	}))
	defer srv.Close()

	c, err := NewCommons(CommonsConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	samples, err := c.Search(context.Background(), []string{"cat", "dog"}, 5)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, "Cat", samples[0].Title)
	assert.Equal(t, "https://upload.example/Cat.png", samples[0].Thumbnail)
	assert.Equal(t, "Dog in park", samples[1].Title)
	assert.Equal(t, "https://upload.example/thumb/Dog_in_park.jpg", samples[1].Thumbnail)
	assert.Equal(t, "A dog playing", samples[1].Description)

	// second call is served from the cache
	again, err := c.Search(context.Background(), []string{"cat", "dog"}, 5)
	require.NoError(t, err)
	assert.Equal(t, samples, again)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCommonsSearchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewCommons(CommonsConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), []string{"cat"}, 5)
	assert.ErrorIs(t, err, internalerr.ErrExternalFetch)

	_, err = c.Search(context.Background(), nil, 5)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = c.Search(context.Background(), []string{"cat"}, 0)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestCommonsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"code": "badvalue", "info": "bad"}}`))
	}))
	defer srv.Close()

	c, err := NewCommons(CommonsConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), []string{"cat"}, 5)
	assert.ErrorIs(t, err, internalerr.ErrExternalFetch)
}

func TestStripHTML(t *testing.T) {
	tests := map[string]string{
		"plain":                                "plain",
		"<p>Red <i>cat</i></p>\n<p>on mat</p>": "Red cat on mat",
		"a<style>p{}</style>b":                 "a b",
		"":                                     "",
		"Tom &amp; Jerry":                      "Tom & Jerry",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripHTML(in), "input %q", in)
	}
}
