// ABOUTME: Opus packet encoder
// ABOUTME: Encodes fixed 20 ms PCM frames to individual Opus packets
package encode

import (
	"fmt"

	"github.com/hippolingua/hippolingua/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

const (
	// opusSampleRate is the rate Ogg Opus output is produced at
	opusSampleRate = 48000

	// maxOpusPacket is the largest packet the encoder may emit
	maxOpusPacket = 4000

	opusBitrate = 96000
)

// OpusEncoder encodes Opus packets
type OpusEncoder struct {
	encoder    *opus.Encoder
	sampleRate int
	channels   int
	frameSize  int // samples per channel in one packet
	packet     []byte
}

// NewOpus creates a new Opus packet encoder
func NewOpus(format audio.Format) (*OpusEncoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus encoder: %s", format.Codec)
	}

	encoder, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}
	if err := encoder.SetBitrate(opusBitrate); err != nil {
		return nil, fmt.Errorf("failed to set opus bitrate: %w", err)
	}

	return &OpusEncoder{
		encoder:    encoder,
		sampleRate: format.SampleRate,
		channels:   format.Channels,
		frameSize:  format.SampleRate / 50, // 20ms frame
		packet:     make([]byte, maxOpusPacket),
	}, nil
}

// FrameSize returns the number of samples per channel in one packet
func (e *OpusEncoder) FrameSize() int {
	return e.frameSize
}

// EncodeFrame converts exactly one frame of interleaved samples to an Opus packet
func (e *OpusEncoder) EncodeFrame(samples []int32) ([]byte, error) {
	if len(samples) != e.frameSize*e.channels {
		return nil, fmt.Errorf("opus frame must be %d samples, got %d", e.frameSize*e.channels, len(samples))
	}

	n, err := e.encoder.Encode(toInt16(samples), e.packet)
	if err != nil {
		return nil, fmt.Errorf("opus encode error: %w", err)
	}

	out := make([]byte, n)
	copy(out, e.packet[:n])
	return out, nil
}

// Close releases resources
func (e *OpusEncoder) Close() error {
	return nil
}
