// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes whole MP3 files to stereo 16-bit segments via go-mp3
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

// go-mp3 always produces interleaved stereo s16le
const (
	mp3Channels = 2
	mp3BitDepth = 16
)

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3(format audio.Format) (Decoder, error) {
	if format.Codec != string(audio.MP3) {
		return nil, fmt.Errorf("invalid codec for MP3 decoder: %s", format.Codec)
	}
	return &MP3Decoder{}, nil
}

// Decode converts MP3 bytes to a segment
func (d *MP3Decoder) Decode(data []byte) (*audio.Segment, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, corrupt("mp3", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, corrupt("mp3", err)
	}

	format := audio.Format{
		Codec:      string(audio.MP3),
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
		BitDepth:   mp3BitDepth,
	}
	if err := format.Validate(); err != nil {
		return nil, corrupt("mp3", err)
	}

	// drop a trailing partial frame
	frameBytes := mp3Channels * 2
	raw = raw[:len(raw)/frameBytes*frameBytes]

	return &audio.Segment{Format: format, Samples: samplesFromS16LE(raw)}, nil
}

// Close releases decoder resources
func (d *MP3Decoder) Close() error {
	return nil
}

func samplesFromS16LE(data []byte) []int32 {
	numSamples := len(data) / 2
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}
	return samples
}
