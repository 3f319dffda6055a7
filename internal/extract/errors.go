// ABOUTME: Extraction error kinds
// ABOUTME: Sentinels for the extractor plus a classifier used by logs, metrics and HTTP
package extract

import (
	"context"
	"errors"

	"github.com/hippolingua/hippolingua/internal/blob"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

var (
	// ErrProcessing wraps failures of the trim, speed, repeat and encode stages
	ErrProcessing = errors.New("audio processing failed")

	// ErrInvalidParameter reports request values that cannot be clamped
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Error kinds returned by Kind
const (
	KindOK                = "ok"
	KindNotFound          = "not_found"
	KindUnavailable       = "unavailable"
	KindUnsupportedFormat = "unsupported_format"
	KindCorruptData       = "corrupt_data"
	KindInvalidParameter  = "invalid_parameter"
	KindProcessing        = "processing"
	KindCanceled          = "canceled"
	KindTimeout           = "timeout"
	KindInternal          = "internal"
)

// Kind classifies err into one of the Kind* strings
func Kind(err error) string {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrInvalidParameter):
		return KindInvalidParameter
	case errors.Is(err, blob.ErrNotFound):
		return KindNotFound
	case errors.Is(err, blob.ErrUnavailable):
		return KindUnavailable
	case errors.Is(err, audio.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, audio.ErrCorruptData):
		return KindCorruptData
	case errors.Is(err, ErrProcessing):
		return KindProcessing
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindInternal
	}
}
