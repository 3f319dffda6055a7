// ABOUTME: FLAC audio encoder
// ABOUTME: Encodes segments to FLAC with verbatim subframes via mewkiz/flac
package encode

import (
	"bytes"
	"fmt"

	"github.com/hippolingua/hippolingua/pkg/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const flacBlockSize = 4096

// FLACEncoder encodes FLAC audio
type FLACEncoder struct{}

// NewFLAC creates a new FLAC encoder
func NewFLAC(format audio.Format) (Encoder, error) {
	if format.Codec != string(audio.FLAC) {
		return nil, fmt.Errorf("invalid codec for FLAC encoder: %s", format.Codec)
	}
	return &FLACEncoder{}, nil
}

// Encode converts a segment to FLAC bytes at the segment's bit depth (16 or 24)
func (e *FLACEncoder) Encode(seg *audio.Segment) ([]byte, error) {
	if err := checkSegment(seg); err != nil {
		return nil, err
	}

	var channels frame.Channels
	switch seg.Format.Channels {
	case 1:
		channels = frame.ChannelsMono
	case 2:
		channels = frame.ChannelsLR
	default:
		return nil, fmt.Errorf("flac output supports 1 or 2 channels, got %d: %w", seg.Format.Channels, audio.ErrUnsupportedFormat)
	}

	bitDepth := 16
	if seg.Format.BitDepth == 24 {
		bitDepth = 24
	}

	nch := seg.Format.Channels
	nframes := seg.Frames()

	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(seg.Format.SampleRate),
		NChannels:     uint8(nch),
		BitsPerSample: uint8(bitDepth),
		NSamples:      uint64(nframes),
	}

	var out bytes.Buffer
	enc, err := flac.NewEncoder(&out, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create flac encoder: %w", err)
	}

	for num, start := 0, 0; start < nframes; num, start = num+1, start+flacBlockSize {
		n := nframes - start
		if n > flacBlockSize {
			n = flacBlockSize
		}

		subframes := make([]*frame.Subframe, nch)
		for ch := 0; ch < nch; ch++ {
			samples := make([]int32, n)
			for i := 0; i < n; i++ {
				samples[i] = audio.SampleToBits(seg.Samples[(start+i)*nch+ch], bitDepth)
			}
			subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  n,
			}
		}

		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(seg.Format.SampleRate),
				Channels:          channels,
				BitsPerSample:     uint8(bitDepth),
				Num:               uint64(num),
			},
			Subframes: subframes,
		}
		if err := enc.WriteFrame(f); err != nil {
			return nil, fmt.Errorf("flac encode error: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("flac finalize error: %w", err)
	}

	return out.Bytes(), nil
}

// Close releases resources
func (e *FLACEncoder) Close() error {
	return nil
}
