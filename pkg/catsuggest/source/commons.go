package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// DefaultCommonsEndpoint is the Wikimedia Commons API
const DefaultCommonsEndpoint = "https://commons.wikimedia.org/w/api.php"

const (
	defaultThumbWidth = 200
	defaultCacheSize  = 256
	defaultTimeout    = 15 * time.Second
	userAgent         = "catsuggest/1.0 (category suggestions)"
)

// CommonsConfig configures the Commons searcher. Zero values use defaults.
type CommonsConfig struct {
	Endpoint   string
	ThumbWidth int
	CacheSize  int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Commons searches Wikimedia Commons file pages. Results are cached per
// keyword list and limit.
type Commons struct {
	cfg   CommonsConfig
	cache *lru.Cache[string, []sample.Sample]
}

// NewCommons creates a Commons searcher
func NewCommons(cfg CommonsConfig) (*Commons, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultCommonsEndpoint
	}
	if cfg.ThumbWidth <= 0 {
		cfg.ThumbWidth = defaultThumbWidth
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	cache, err := lru.New[string, []sample.Sample](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Commons{cfg: cfg, cache: cache}, nil
}

type commonsResponse struct {
	Query struct {
		Pages []commonsPage `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type commonsPage struct {
	Title     string `json:"title"`
	Index     int    `json:"index"`
	ImageInfo []struct {
		URL         string `json:"url"`
		ThumbURL    string `json:"thumburl"`
		ExtMetadata map[string]struct {
			Value any `json:"value"`
		} `json:"extmetadata"`
	} `json:"imageinfo"`
}

// Search implements Searcher
func (c *Commons) Search(ctx context.Context, keywords []string, limit int) ([]sample.Sample, error) {
	query := strings.TrimSpace(strings.Join(keywords, " "))
	if query == "" {
		return nil, fmt.Errorf("%w: no keywords", internalerr.ErrInvalidInput)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", internalerr.ErrInvalidInput)
	}

	key := query + "\x00" + strconv.Itoa(limit)
	if cached, ok := c.cache.Get(key); ok {
		return append([]sample.Sample(nil), cached...), nil
	}

	samples, err := c.fetch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: commons search %q: %w", internalerr.ErrExternalFetch, query, err)
	}
	slog.Debug("source: commons search", "query", query, "results", len(samples))

	c.cache.Add(key, samples)
	return append([]sample.Sample(nil), samples...), nil
}

func (c *Commons) fetch(ctx context.Context, query string, limit int) ([]sample.Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrnamespace", "6")
	params.Set("gsrlimit", strconv.Itoa(limit))
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|extmetadata")
	params.Set("iiextmetadatafilter", "ImageDescription|ObjectName")
	params.Set("iiurlwidth", strconv.Itoa(c.cfg.ThumbWidth))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed commonsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("api error %s: %s", parsed.Error.Code, parsed.Error.Info)
	}

	pages := parsed.Query.Pages
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	var samples []sample.Sample
	for _, p := range pages {
		if len(p.ImageInfo) == 0 || p.ImageInfo[0].URL == "" {
			continue
		}
		info := p.ImageInfo[0]
		s := sample.Sample{
			URL:       info.URL,
			Thumbnail: info.ThumbURL,
			Title:     fileTitle(p.Title),
		}
		if s.Thumbnail == "" {
			s.Thumbnail = s.URL
		}
		if d, ok := info.ExtMetadata["ImageDescription"]; ok {
			if str, ok := d.Value.(string); ok {
				s.Description = StripHTML(str)
			}
		}
		samples = append(samples, s)
		if len(samples) == limit {
			break
		}
	}
	return samples, nil
}

// fileTitle turns "File:Red cat.jpg" into "Red cat"
func fileTitle(title string) string {
	title = strings.TrimPrefix(title, "File:")
	return strings.TrimSuffix(title, path.Ext(title))
}

// StripHTML returns the text content of an HTML fragment with whitespace collapsed
func StripHTML(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isHidden(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isHidden(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHidden(tag []byte) bool {
	switch string(tag) {
	case "script", "style":
		return true
	}
	return false
}
