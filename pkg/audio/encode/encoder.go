// ABOUTME: Encoder interface definition
// ABOUTME: Common interface and container factory for all audio encoders
package encode

import (
	"fmt"

	"github.com/hippolingua/hippolingua/pkg/audio"
)

// Encoder encodes a PCM segment to a complete blob in its target format
type Encoder interface {
	// Encode converts a segment to encoded audio data
	Encode(seg *audio.Segment) ([]byte, error)

	// Close releases encoder resources
	Close() error
}

// New returns an encoder for the given container
func New(c audio.Container) (Encoder, error) {
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
		return nil, fmt.Errorf("no encoder for %q: %w", c, audio.ErrUnsupportedFormat)
	}
}

func checkSegment(seg *audio.Segment) error {
	if seg == nil {
		return fmt.Errorf("nil segment")
	}
	return seg.Format.Validate()
}

// toInt16 narrows 24-bit range samples to 16-bit
func toInt16(samples []int32) []int16 {
	pcm := make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = audio.SampleToInt16(s)
	}
	return pcm
}
