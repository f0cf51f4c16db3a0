package feature

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// Names of the image extractors
const (
	SizeName  = "size"
	ColorName = "color"
)

var errNoFile = errors.New("sample has no local image")

// Size reports image dimensions and aspect ratio
type Size struct{}

// NewSize creates a size extractor
func NewSize() *Size { return &Size{} }

// Name returns "size"
func (*Size) Name() string { return SizeName }

// Keys returns width, height and aspect
func (*Size) Keys() []string { return []string{"width", "height", "aspect"} }

// Extract decodes only the image header of the downloaded file
func (x *Size) Extract(s *sample.Sample) ([]float64, error) {
	if s.Path == "" {
		return nil, newError(x, s, errNoFile)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, newError(x, s, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, newError(x, s, fmt.Errorf("decode config: %w", err))
	}
	if cfg.Height == 0 {
		return nil, newError(x, s, errors.New("zero height image"))
	}
	w, h := float64(cfg.Width), float64(cfg.Height)
	return []float64{w, h, w / h}, nil
}

// maxColorSamples bounds the number of pixels inspected per image
const maxColorSamples = 64 * 64

// grayTolerance is the largest channel spread (0..1) still counted as gray
const grayTolerance = 0.06

// Color reports mean brightness, mean saturation and the share of gray pixels.
// Drawings, charts and scans tend to be brighter and grayer than photographs.
type Color struct{}

// NewColor creates a color extractor
func NewColor() *Color { return &Color{} }

// Name returns "color"
func (*Color) Name() string { return ColorName }

// Keys returns brightness, saturation and grayscale
func (*Color) Keys() []string { return []string{"brightness", "saturation", "grayscale"} }

// Extract returns the mean brightness and saturation over a grid of sampled
// pixels, plus the fraction of those pixels that are gray. All values are in
// [0, 1].
func (x *Color) Extract(s *sample.Sample) ([]float64, error) {
	if s.Path == "" {
		return nil, newError(x, s, errNoFile)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, newError(x, s, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, newError(x, s, fmt.Errorf("decode: %w", err))
	}
	return colorStats(img), nil
}

func colorStats(img image.Image) []float64 {
	b := img.Bounds()
	if b.Empty() {
		return []float64{0, 0, 0}
	}

	step := int(math.Ceil(math.Sqrt(float64(b.Dx()*b.Dy()) / maxColorSamples)))
	if step < 1 {
		step = 1
	}

	var brightness, saturation, gray, n float64
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, _ := img.At(x, y).RGBA()
			rf, gf, bf := float64(r)/0xffff, float64(g)/0xffff, float64(bl)/0xffff
			hi := math.Max(rf, math.Max(gf, bf))
			lo := math.Min(rf, math.Min(gf, bf))

			brightness += hi
			if hi > 0 {
				saturation += (hi - lo) / hi
			}
			if hi-lo <= grayTolerance {
				gray++
			}
			n++
		}
	}
	return []float64{brightness / n, saturation / n, gray / n}
}
