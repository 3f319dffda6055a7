// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes whole FLAC streams to segments via mewkiz/flac
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hippolingua/hippolingua/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC(format audio.Format) (Decoder, error) {
	if format.Codec != string(audio.FLAC) {
		return nil, fmt.Errorf("invalid codec for FLAC decoder: %s", format.Codec)
	}
	return &FLACDecoder{}, nil
}

// Decode converts FLAC bytes to a segment, scaling samples to 24-bit range
func (d *FLACDecoder) Decode(data []byte) (*audio.Segment, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, corrupt("flac", err)
	}
	defer stream.Close()

	info := stream.Info
	format := audio.Format{
		Codec:      string(audio.FLAC),
		SampleRate: int(info.SampleRate),
		Channels:   int(info.NChannels),
		BitDepth:   int(info.BitsPerSample),
	}
	if err := format.Validate(); err != nil {
		return nil, corrupt("flac", err)
	}

	samples := make([]int32, 0, int(info.NSamples)*format.Channels)
	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, corrupt("flac", err)
		}

		if len(f.Subframes) != format.Channels {
			return nil, corrupt("flac", fmt.Errorf("frame has %d subframes, stream has %d channels", len(f.Subframes), format.Channels))
		}

		// interleave subframes
		for i := 0; i < int(f.BlockSize); i++ {
			for _, sub := range f.Subframes {
				samples = append(samples, audio.SampleFromBits(sub.Samples[i], format.BitDepth))
			}
		}
	}

	return &audio.Segment{Format: format, Samples: samples}, nil
}

// Close releases decoder resources
func (d *FLACDecoder) Close() error {
	return nil
}
