package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

const (
	defaultConcurrency = 4
	defaultMaxBytes    = 5 << 20
	defaultFileTimeout = 20 * time.Second
)

// Downloader fetches sample thumbnails into a directory
type Downloader struct {
	Concurrency int
	MaxBytes    int64
	Timeout     time.Duration
	HTTPClient  *http.Client

	// Dedup drops images identical to an earlier one in the same batch.
	Dedup bool
}

func (d *Downloader) defaults() Downloader {
	out := *d
	if out.Concurrency <= 0 {
		out.Concurrency = defaultConcurrency
	}
	if out.MaxBytes <= 0 {
		out.MaxBytes = defaultMaxBytes
	}
	if out.Timeout <= 0 {
		out.Timeout = defaultFileTimeout
	}
	if out.HTTPClient == nil {
		out.HTTPClient = http.DefaultClient
	}
	return out
}

// Download stores each sample's image under dir and returns the samples in
// input order with Path set. With Dedup, exact duplicates are left out.
// progress, if set, is called after every file. Any failed download aborts
// the batch with ErrExternalFetch wrapping its cause.
func (d *Downloader) Download(ctx context.Context, samples []sample.Sample, dir string, progress func(done, total int)) ([]sample.Sample, error) {
	if len(samples) == 0 {
		return nil, nil
	}
	cfg := d.defaults()

	results := make([]*sample.Sample, len(samples))
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i := range samples {
		i := i
		g.Go(func() error {
			s := samples[i]
			target := filepath.Join(dir, fmt.Sprintf("%03d", i))
			p, err := cfg.fetch(gctx, s, target)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				slog.Warn("source: download failed", "url", s.URL, "err", err)
				return fmt.Errorf("%w: download %s: %w", internalerr.ErrExternalFetch, s.URL, err)
			}
			s.Path = p
			results[i] = &s

			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(samples))
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := make([]sample.Sample, 0, len(results))
	var seen []fingerprint
	for _, s := range results {
		if cfg.Dedup {
			fp, ok := newFingerprint(s.Path)
			if ok && fp.duplicateOf(seen) {
				slog.Debug("source: duplicate dropped", "url", s.URL)
				continue
			}
			if ok {
				seen = append(seen, fp)
			}
		}
		kept = append(kept, *s)
	}
	return kept, nil
}

// fetch downloads one image to target plus an extension from its content type
func (d Downloader) fetch(ctx context.Context, s sample.Sample, target string) (string, error) {
	src := s.Thumbnail
	if src == "" {
		src = s.URL
	}

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("not an image: %q", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.MaxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > d.MaxBytes {
		return "", fmt.Errorf("image larger than %d bytes", d.MaxBytes)
	}

	path := target + extensionFor(ct)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}

// fingerprint identifies an image for duplicate detection. The difference
// hash is a cheap filter; pixels are compared only when hashes are equal.
type fingerprint struct {
	hash *goimagehash.ImageHash
	img  image.Image
}

// newFingerprint reports ok=false when the file cannot be decoded; such
// files are kept and left to the extractors to judge.
func newFingerprint(path string) (fingerprint, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fingerprint{}, false
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fingerprint{}, false
	}
	h, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return fingerprint{}, false
	}
	return fingerprint{hash: h, img: img}, true
}

func (fp fingerprint) duplicateOf(seen []fingerprint) bool {
	for _, other := range seen {
		if dist, err := fp.hash.Distance(other.hash); err == nil && dist == 0 && samePixels(fp.img, other.img) {
			return true
		}
	}
	return false
}

func samePixels(a, b image.Image) bool {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return false
	}
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			r1, g1, b1, a1 := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, a2 := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				return false
			}
		}
	}
	return true
}
