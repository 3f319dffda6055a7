// ABOUTME: Decoder interface definition
// ABOUTME: Common interface and container factory for all audio decoders
package decode

import (
	"fmt"

	"github.com/hippolingua/hippolingua/pkg/audio"
)

// Decoder decodes a complete encoded blob into a PCM segment
type Decoder interface {
	// Decode converts encoded audio data to an interleaved PCM segment
	Decode(data []byte) (*audio.Segment, error)

	// Close releases decoder resources
	Close() error
}

// New returns a decoder for the given container
func New(c audio.Container) (Decoder, error) {
	format := audio.Format{Codec: string(c)}

	switch c {
	case audio.MP3:
		return NewMP3(format)
	case audio.WAV:
		return NewWAV(format)
	case audio.FLAC:
		return NewFLAC(format)
	case audio.OGG:
		return NewOgg(format)
	default:
		return nil, fmt.Errorf("no decoder for %q: %w", c, audio.ErrUnsupportedFormat)
	}
}

// corrupt wraps a library error so callers can match audio.ErrCorruptData
func corrupt(codec string, err error) error {
	return fmt.Errorf("%s decode failed: %w: %v", codec, audio.ErrCorruptData, err)
}
