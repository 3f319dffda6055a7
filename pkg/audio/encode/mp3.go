// ABOUTME: MP3 audio encoder
// ABOUTME: Encodes segments to MP3 with the pure-Go shine encoder
package encode

import (
	"bytes"
	"fmt"

	"github.com/braheezy/shine-mp3/pkg/mp3"
	"github.com/hippolingua/hippolingua/pkg/audio"
	"github.com/hippolingua/hippolingua/pkg/audio/resample"
)

// fallbackMP3Rate is used when the segment rate is not an MPEG-1 rate
const fallbackMP3Rate = 44100

// mp3FrameSize is the MPEG-1 layer III frame length in sample frames.
// shine reads whole frames from its input, so the PCM handed to it is
// padded to a multiple of this.
const mp3FrameSize = 1152

// mp3Channels is the channel count handed to shine. Its Write strides by
// two channels per frame regardless of the configured mode, so mono is
// duplicated to stereo.
const mp3Channels = 2

// MPEG-1 sample rates. Lower rates round-trip poorly through go-mp3 and
// are resampled to fallbackMP3Rate.
var mp3Rates = map[int]bool{
	32000: true, 44100: true, 48000: true,
}

// MP3Encoder encodes MP3 audio
type MP3Encoder struct{}

// NewMP3 creates a new MP3 encoder
func NewMP3(format audio.Format) (Encoder, error) {
	if format.Codec != string(audio.MP3) {
		return nil, fmt.Errorf("invalid codec for MP3 encoder: %s", format.Codec)
	}
	return &MP3Encoder{}, nil
}

// Encode converts a segment to MP3 bytes. Output is always stereo and
// ends with up to one frame of trailing silence.
func (e *MP3Encoder) Encode(seg *audio.Segment) ([]byte, error) {
	if err := checkSegment(seg); err != nil {
		return nil, err
	}
	if seg.Format.Channels > 2 {
		return nil, fmt.Errorf("mp3 supports at most 2 channels, got %d: %w", seg.Format.Channels, audio.ErrUnsupportedFormat)
	}

	if !mp3Rates[seg.Format.SampleRate] {
		converted, err := resample.Convert(seg, fallbackMP3Rate)
		if err != nil {
			return nil, fmt.Errorf("mp3 resample: %w", err)
		}
		seg = converted
	}

	var out bytes.Buffer
	if len(seg.Samples) == 0 {
		return out.Bytes(), nil
	}

	enc := mp3.NewEncoder(seg.Format.SampleRate, mp3Channels)
	if err := enc.Write(&out, mp3PCM(seg)); err != nil {
		return nil, fmt.Errorf("mp3 encode error: %w", err)
	}

	return out.Bytes(), nil
}

// Close releases resources
func (e *MP3Encoder) Close() error {
	return nil
}

// mp3PCM returns interleaved stereo int16 samples zero-padded to whole
// MP3 frames.
func mp3PCM(seg *audio.Segment) []int16 {
	frames := seg.Frames()
	padded := (frames + mp3FrameSize - 1) / mp3FrameSize * mp3FrameSize
	pcm := make([]int16, padded*mp3Channels)

	if seg.Format.Channels == 1 {
		for i := 0; i < frames; i++ {
			s := audio.SampleToInt16(seg.Samples[i])
			pcm[2*i] = s
			pcm[2*i+1] = s
		}
		return pcm
	}

	copy(pcm, toInt16(seg.Samples[:frames*mp3Channels]))
	return pcm
}
