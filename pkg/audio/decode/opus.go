// ABOUTME: Opus packet decoder
// ABOUTME: Decodes individual Opus packets to 48 kHz segments
package decode

import (
	"fmt"

	"github.com/hippolingua/hippolingua/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// OpusSampleRate is the rate all Opus streams decode at
const OpusSampleRate = 48000

// maxOpusFrame is 120 ms at 48 kHz, the longest Opus packet duration
const maxOpusFrame = 5760

// OpusDecoder decodes single Opus packets
type OpusDecoder struct {
	decoder *opus.Decoder
	format  audio.Format
	pcm16   []int16
}

// NewOpus creates a new Opus packet decoder
func NewOpus(format audio.Format) (Decoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus decoder: %s", format.Codec)
	}

	if format.SampleRate == 0 {
		format.SampleRate = OpusSampleRate
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	dec, err := opus.NewDecoder(format.SampleRate, format.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus decoder: %w", err)
	}

	format.BitDepth = 16
	return &OpusDecoder{
		decoder: dec,
		format:  format,
		pcm16:   make([]int16, maxOpusFrame*format.Channels),
	}, nil
}

// Decode converts one Opus packet to a segment
func (d *OpusDecoder) Decode(data []byte) (*audio.Segment, error) {
	n, err := d.decoder.Decode(data, d.pcm16)
	if err != nil {
		return nil, corrupt("opus", err)
	}

	// Opus is always 16-bit
	actualSamples := n * d.format.Channels
	pcm32 := make([]int32, actualSamples)
	for i := 0; i < actualSamples; i++ {
		pcm32[i] = audio.SampleFromInt16(d.pcm16[i])
	}
	return &audio.Segment{Format: d.format, Samples: pcm32}, nil
}

// Close releases decoder resources
func (d *OpusDecoder) Close() error {
	return nil
}
