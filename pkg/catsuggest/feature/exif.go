package feature

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bep/imagemeta"

	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
)

// ExifName identifies the EXIF extractor
const ExifName = "exif"

// exifTags maps the EXIF tags we look at to their component index
var exifTags = map[string]int{
	"Make":         0,
	"Model":        0,
	"ExposureTime": 1,
	"FNumber":      1,
	"Software":     2,
}

// Exif reports whether camera, exposure and software tags are present.
// Camera photographs usually carry the first two; rendered images and
// screenshots at most the last.
type Exif struct{}

// NewExif creates an EXIF extractor
func NewExif() *Exif { return &Exif{} }

// Name returns "exif"
func (*Exif) Name() string { return ExifName }

// Keys returns camera, exposure and software. Each is 1 when the image
// carries a matching tag.
func (*Exif) Keys() []string { return []string{"camera", "exposure", "software"} }

// Extract yields zeros for images without EXIF and for formats that cannot
// carry it. A missing file or a corrupt metadata block is an error.
func (x *Exif) Extract(s *sample.Sample) ([]float64, error) {
	if s.Path == "" {
		return nil, newError(x, s, errNoFile)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, newError(x, s, err)
	}
	defer f.Close()

	out := make([]float64, 3)
	format, ok, err := sniffFormat(f)
	if err != nil {
		return nil, newError(x, s, err)
	}
	if !ok {
		// GIF, BMP and other formats carry no EXIF block
		return out, nil
	}

	err = imagemeta.Decode(imagemeta.Options{
		R:           f,
		ImageFormat: format,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			_, ok := exifTags[ti.Tag]
			return ok
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if i, ok := exifTags[ti.Tag]; ok && fmt.Sprint(ti.Value) != "" {
				out[i] = 1
			}
			return nil
		},
	})
	if err != nil {
		return nil, newError(x, s, fmt.Errorf("read exif: %w", err))
	}
	return out, nil
}

// sniffFormat detects the image container from its first bytes and rewinds r.
// ok is false for formats imagemeta cannot read.
func sniffFormat(r io.ReadSeeker) (format imagemeta.ImageFormat, ok bool, err error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return format, false, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return format, false, err
	}

	switch http.DetectContentType(head[:n]) {
	case "image/jpeg":
		return imagemeta.JPEG, true, nil
	case "image/png":
		return imagemeta.PNG, true, nil
	case "image/webp":
		return imagemeta.WebP, true, nil
	}
	// DetectContentType does not know TIFF
	if n >= 4 && (string(head[:4]) == "II*\x00" || string(head[:4]) == "MM\x00*") {
		return imagemeta.TIFF, true, nil
	}
	return format, false, nil
}
