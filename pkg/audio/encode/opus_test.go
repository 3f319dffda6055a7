// ABOUTME: Unit tests for Opus packet encoder
// ABOUTME: Tests frame sizing and packet encoding
package encode

import (
	"strings"
	"testing"

	"github.com/hippolingua/hippolingua/pkg/audio"
)

func TestNewOpus(t *testing.T) {
	tests := []struct {
		name        string
		format      audio.Format
		errContains string
	}{
		{
			name:   "valid Opus 48kHz stereo",
			format: audio.Format{Codec: "opus", SampleRate: 48000, Channels: 2, BitDepth: 16},
		},
		{
			name:   "valid Opus 48kHz mono",
			format: audio.Format{Codec: "opus", SampleRate: 48000, Channels: 1, BitDepth: 16},
		},
		{
			name:        "invalid codec",
			format:      audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16},
			errContains: "invalid codec",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoder, err := NewOpus(tt.format)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("NewOpus() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewOpus() unexpected error = %v", err)
			}
			defer encoder.Close()

			if encoder.FrameSize() != 960 {
				t.Errorf("expected 960 samples per channel, got %d", encoder.FrameSize())
			}
		})
	}
}

func TestOpusEncoder_EncodeFrame(t *testing.T) {
	encoder, err := NewOpus(audio.Format{Codec: "opus", SampleRate: 48000, Channels: 2, BitDepth: 16})
	if err != nil {
		t.Fatalf("NewOpus() failed: %v", err)
	}
	defer encoder.Close()

	tests := []struct {
		name    string
		samples []int32
	}{
		{"pattern", func() []int32 {
			s := make([]int32, 960*2)
			for i := range s {
				s[i] = int32((i % 1000) * 8388)
			}
			return s
		}()},
		{"silence", make([]int32, 960*2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := encoder.EncodeFrame(tt.samples)
			if err != nil {
				t.Fatalf("EncodeFrame() failed: %v", err)
			}
			if len(output) == 0 {
				t.Error("EncodeFrame() returned empty output")
			}
			if len(output) > maxOpusPacket {
				t.Errorf("EncodeFrame() output size %d exceeds max Opus packet size %d", len(output), maxOpusPacket)
			}
		})
	}
}

func TestOpusEncoder_RejectsShortFrame(t *testing.T) {
	encoder, err := NewOpus(audio.Format{Codec: "opus", SampleRate: 48000, Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatalf("NewOpus() failed: %v", err)
	}

	if _, err := encoder.EncodeFrame(make([]int32, 100)); err == nil {
		t.Error("expected error for short frame")
	}
}
