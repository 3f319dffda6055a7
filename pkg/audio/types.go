// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats, decoded segments and sample conversions
package audio

import (
	"fmt"
	"math"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes a decoded audio stream
type Format struct {
	Codec      string // container the stream was decoded from or will be encoded to
	SampleRate int
	Channels   int
	BitDepth   int // bit depth of the source; samples are always held in 24-bit range
}

// Validate reports whether the format can describe PCM audio
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	return nil
}

// Segment is decoded, interleaved PCM audio
type Segment struct {
	Format  Format
	Samples []int32 // interleaved, 24-bit range
}

// Frames returns the number of sample frames (samples per channel)
func (s *Segment) Frames() int {
	if s.Format.Channels <= 0 {
		return 0
	}
	return len(s.Samples) / s.Format.Channels
}

// Duration returns the playback length of the segment
func (s *Segment) Duration() time.Duration {
	if s.Format.SampleRate <= 0 {
		return 0
	}
	return FramesToDuration(s.Frames(), s.Format.SampleRate)
}

// Clone returns a deep copy of the segment
func (s *Segment) Clone() *Segment {
	samples := make([]int32, len(s.Samples))
	copy(samples, s.Samples)
	return &Segment{Format: s.Format, Samples: samples}
}

// FramesToDuration converts a frame count at sampleRate to a duration
func FramesToDuration(frames, sampleRate int) time.Duration {
	return time.Duration(float64(frames) * float64(time.Second) / float64(sampleRate))
}

// DurationToFrames converts a duration to the nearest frame index at sampleRate
func DurationToFrames(d time.Duration, sampleRate int) int {
	return int(math.Round(d.Seconds() * float64(sampleRate)))
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// SampleFromBits scales a sample of the given bit depth to 24-bit range
func SampleFromBits(sample int32, bitDepth int) int32 {
	switch {
	case bitDepth == 24:
		return sample
	case bitDepth < 24:
		return sample << (24 - bitDepth)
	default:
		return sample >> (bitDepth - 24)
	}
}

// SampleToBits scales a 24-bit range sample to the given bit depth
func SampleToBits(sample int32, bitDepth int) int32 {
	switch {
	case bitDepth == 24:
		return sample
	case bitDepth < 24:
		return sample >> (24 - bitDepth)
	default:
		return sample << (bitDepth - 24)
	}
}

// SampleFromFloat converts a [-1, 1] float sample to 24-bit range with clipping
func SampleFromFloat(f float64) int32 {
	v := math.Round(f * Max24Bit)
	if v > Max24Bit {
		return Max24Bit
	}
	if v < Min24Bit {
		return Min24Bit
	}
	return int32(v)
}

// SampleToFloat converts a 24-bit range sample to a [-1, 1] float
func SampleToFloat(sample int32) float64 {
	return float64(sample) / float64(-Min24Bit)
}
