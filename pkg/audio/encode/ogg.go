// ABOUTME: Ogg Opus audio encoder
// ABOUTME: Encodes segments to 48 kHz Opus packets muxed with pion's oggwriter
package encode

import (
	"bytes"
	"fmt"

	"github.com/hippolingua/hippolingua/pkg/audio"
	"github.com/hippolingua/hippolingua/pkg/audio/resample"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
)

// OggEncoder encodes Ogg Opus audio
type OggEncoder struct{}

// NewOgg creates a new Ogg encoder
func NewOgg(format audio.Format) (Encoder, error) {
	if format.Codec != string(audio.OGG) {
		return nil, fmt.Errorf("invalid codec for Ogg encoder: %s", format.Codec)
	}
	return &OggEncoder{}, nil
}

// Encode converts a segment to Ogg Opus bytes, resampling to 48 kHz when needed
func (e *OggEncoder) Encode(seg *audio.Segment) ([]byte, error) {
	if err := checkSegment(seg); err != nil {
		return nil, err
	}
	if seg.Format.Channels > 2 {
		return nil, fmt.Errorf("ogg output supports at most 2 channels, got %d: %w", seg.Format.Channels, audio.ErrUnsupportedFormat)
	}

	if seg.Format.SampleRate != opusSampleRate {
		converted, err := resample.Convert(seg, opusSampleRate)
		if err != nil {
			return nil, fmt.Errorf("ogg resample: %w", err)
		}
		seg = converted
	}

	channels := seg.Format.Channels
	packets, err := NewOpus(audio.Format{Codec: "opus", SampleRate: opusSampleRate, Channels: channels})
	if err != nil {
		return nil, err
	}
	defer packets.Close()

	var out bytes.Buffer
	writer, err := oggwriter.NewWith(&out, opusSampleRate, uint16(channels))
	if err != nil {
		return nil, fmt.Errorf("failed to create ogg writer: %w", err)
	}

	frameLen := packets.FrameSize() * channels
	frame := make([]int32, frameLen)
	timestamp := uint32(0)

	for start := 0; start < len(seg.Samples); start += frameLen {
		// zero-pad the final frame
		n := copy(frame, seg.Samples[start:])
		for i := n; i < frameLen; i++ {
			frame[i] = 0
		}

		payload, err := packets.EncodeFrame(frame)
		if err != nil {
			return nil, err
		}

		timestamp += uint32(packets.FrameSize())
		pkt := &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				SequenceNumber: uint16(start / frameLen),
				Timestamp:      timestamp,
			},
			Payload: payload,
		}
		if err := writer.WriteRTP(pkt); err != nil {
			return nil, fmt.Errorf("ogg write error: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("ogg finalize error: %w", err)
	}

	return out.Bytes(), nil
}

// Close releases resources
func (e *OggEncoder) Close() error {
	return nil
}
