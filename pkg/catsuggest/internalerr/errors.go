package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound                  = errors.New("not found")
	ErrInvalidInput              = errors.New("invalid input")
	ErrInvalidConfig             = errors.New("invalid configuration")
	ErrPrecondition              = errors.New("precondition failed")
	ErrExtraction                = errors.New("feature extraction failed")
	ErrNoSamples                 = errors.New("no usable samples")
	ErrNormalizationPrecondition = errors.New("normalization statistics not set")
	ErrSchemaMismatch            = errors.New("feature schema mismatch")
	ErrExternalFetch             = errors.New("external fetch failed")
	ErrClassifierLoad            = errors.New("classifier load failed")
)
