// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE integer PCM to segments via go-audio/wav
package decode

import (
	"bytes"
	"fmt"

	"github.com/go-audio/wav"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag
const wavFormatPCM = 1

// WAVDecoder decodes WAV audio
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV(format audio.Format) (Decoder, error) {
	if format.Codec != string(audio.WAV) {
		return nil, fmt.Errorf("invalid codec for WAV decoder: %s", format.Codec)
	}
	return &WAVDecoder{}, nil
}

// Decode converts WAV bytes to a segment. 8, 16, 24 and 32-bit integer PCM are supported.
func (d *WAVDecoder) Decode(data []byte) (*audio.Segment, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, corrupt("wav", fmt.Errorf("not a valid RIFF/WAVE file"))
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, corrupt("wav", err)
	}

	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("wav format tag %d: %w", decoder.WavAudioFormat, audio.ErrUnsupportedFormat)
	}

	bitDepth := int(decoder.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("wav bit depth %d: %w", bitDepth, audio.ErrUnsupportedFormat)
	}

	format := audio.Format{
		Codec:      string(audio.WAV),
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   bitDepth,
	}
	if err := format.Validate(); err != nil {
		return nil, corrupt("wav", err)
	}

	n := len(buf.Data) / format.Channels * format.Channels
	samples := make([]int32, n)
	for i, v := range buf.Data[:n] {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		samples[i] = audio.SampleFromBits(int32(v), bitDepth)
	}

	return &audio.Segment{Format: format, Samples: samples}, nil
}

// Close releases decoder resources
func (d *WAVDecoder) Close() error {
	return nil
}
