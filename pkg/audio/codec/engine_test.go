// ABOUTME: Tests for the codec engine
// ABOUTME: Covers trim bounds, speed scaling, concat and decode error kinds
package codec

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hippolingua/hippolingua/pkg/audio"
)

// ramp returns a segment whose samples count up from zero
func ramp(rate, channels int, d time.Duration) *audio.Segment {
	frames := audio.DurationToFrames(d, rate)
	samples := make([]int32, frames*channels)
	for i := range samples {
		samples[i] = int32(i)
	}
	return &audio.Segment{
		Format:  audio.Format{Codec: "wav", SampleRate: rate, Channels: channels, BitDepth: 16},
		Samples: samples,
	}
}

func TestTrim(t *testing.T) {
	e := New()
	seg := ramp(1000, 2, 10*time.Second)

	tests := []struct {
		name           string
		start, end     time.Duration
		expectedFrames int
		firstSample    int32
	}{
		{"middle", 2 * time.Second, 5 * time.Second, 3000, 4000},
		{"whole", 0, 10 * time.Second, 10000, 0},
		{"empty", 3 * time.Second, 3 * time.Second, 0, 0},
		{"end past duration", 9 * time.Second, 20 * time.Second, 1000, 18000},
		{"rounded to nearest frame", 1400 * time.Microsecond, 2600 * time.Microsecond, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Trim(seg, tt.start, tt.end)
			if err != nil {
				t.Fatalf("trim failed: %v", err)
			}
			if out.Frames() != tt.expectedFrames {
				t.Fatalf("expected %d frames, got %d", tt.expectedFrames, out.Frames())
			}
			if tt.expectedFrames > 0 && out.Samples[0] != tt.firstSample {
				t.Errorf("expected first sample %d, got %d", tt.firstSample, out.Samples[0])
			}
		})
	}
}

func TestTrimDoesNotAlias(t *testing.T) {
	e := New()
	seg := ramp(1000, 1, time.Second)

	out, err := e.Trim(seg, 0, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("trim failed: %v", err)
	}
	out.Samples[0] = -1
	if seg.Samples[0] != 0 {
		t.Error("trim output aliases its input")
	}
}

func TestTrimRejectsDegenerateInput(t *testing.T) {
	e := New()
	seg := ramp(1000, 1, time.Second)

	if _, err := e.Trim(seg, -time.Second, time.Second); err == nil {
		t.Error("expected error for negative start")
	}
	if _, err := e.Trim(seg, 2*time.Second, time.Second); err == nil {
		t.Error("expected error for end before start")
	}
	bad := &audio.Segment{Format: audio.Format{SampleRate: 1000}}
	if _, err := e.Trim(bad, 0, time.Second); err == nil {
		t.Error("expected error for zero channels")
	}
}

func TestChangeSpeed(t *testing.T) {
	e := New()
	seg := ramp(8000, 2, 4*time.Second)

	tests := []struct {
		name     string
		factor   float64
		expected time.Duration
	}{
		{"double", 2.0, 2 * time.Second},
		{"half", 0.5, 8 * time.Second},
		{"unchanged", 1.0, 4 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.ChangeSpeed(seg, tt.factor)
			if err != nil {
				t.Fatalf("change speed failed: %v", err)
			}
			if out.Duration() != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, out.Duration())
			}
			if out.Format != seg.Format {
				t.Errorf("format changed: %+v", out.Format)
			}
		})
	}

	if _, err := e.ChangeSpeed(seg, 0); err == nil {
		t.Error("expected error for zero factor")
	}
}

func TestConcat(t *testing.T) {
	e := New()
	seg := ramp(1000, 1, 250*time.Millisecond)

	out, err := e.Concat(seg, 3)
	if err != nil {
		t.Fatalf("concat failed: %v", err)
	}
	if out.Duration() != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %v", out.Duration())
	}
	for i := 0; i < 3; i++ {
		if out.Samples[i*250] != 0 {
			t.Errorf("copy %d does not start at the segment start", i)
		}
	}

	if _, err := e.Concat(seg, 0); err == nil {
		t.Error("expected error for zero repeat count")
	}
}

func TestDecodeErrors(t *testing.T) {
	e := New()

	_, err := e.Decode(context.Background(), []byte("garbage"), audio.Container("aac"))
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	_, err = e.Decode(context.Background(), []byte("garbage bytes"), audio.FLAC)
	if !errors.Is(err, audio.ErrCorruptData) {
		t.Errorf("expected ErrCorruptData, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Decode(ctx, []byte("garbage"), audio.WAV)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEncodeDecodeWAV(t *testing.T) {
	e := New()
	seg := ramp(8000, 1, 500*time.Millisecond)

	data, err := e.Encode(seg, audio.WAV)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	out, err := e.Decode(context.Background(), data, audio.WAV)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.Duration() != seg.Duration() {
		t.Errorf("expected %v, got %v", seg.Duration(), out.Duration())
	}

	if _, err := e.Encode(seg, audio.Container("aac")); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
