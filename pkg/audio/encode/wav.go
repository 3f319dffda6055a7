// ABOUTME: WAV audio encoder
// ABOUTME: Encodes segments to 16-bit PCM RIFF/WAVE via go-audio/wav
package encode

import (
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

const (
	wavBitDepth  = 16
	wavFormatPCM = 1
)

// WAVEncoder encodes WAV audio
type WAVEncoder struct{}

// NewWAV creates a new WAV encoder
func NewWAV(format audio.Format) (Encoder, error) {
	if format.Codec != string(audio.WAV) {
		return nil, fmt.Errorf("invalid codec for WAV encoder: %s", format.Codec)
	}
	return &WAVEncoder{}, nil
}

// Encode converts a segment to WAV bytes
func (e *WAVEncoder) Encode(seg *audio.Segment) ([]byte, error) {
	if err := checkSegment(seg); err != nil {
		return nil, err
	}

	data := make([]int, len(seg.Samples))
	for i, s := range seg.Samples {
		data[i] = int(audio.SampleToInt16(s))
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: seg.Format.Channels,
			SampleRate:  seg.Format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}

	out := &writeSeeker{}
	enc := wav.NewEncoder(out, seg.Format.SampleRate, wavBitDepth, seg.Format.Channels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("wav encode error: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav finalize error: %w", err)
	}

	return out.Bytes(), nil
}

// Close releases resources
func (e *WAVEncoder) Close() error {
	return nil
}
