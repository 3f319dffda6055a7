// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Container, Format, Segment types and sample conversion functions
// Package audio provides the fundamental audio types shared by the codec,
// extraction and storage layers.
//
// This package defines:
//   - Container: the closed set of file containers the service handles (mp3, wav, ogg, flac)
//   - Format: describes a decoded stream (sample rate, channels, bit depth)
//   - Segment: decoded, interleaved PCM audio owned by a single request
//
// Samples are always int32 values in 24-bit range, whatever the source bit
// depth, so every transform and encoder works on one representation.
//
// Example:
//
//	c, err := audio.ContainerFromPath("en/lesson1.mp3")
//	seg := &audio.Segment{
//	    Format:  audio.Format{Codec: string(c), SampleRate: 44100, Channels: 2, BitDepth: 16},
//	    Samples: samples,
//	}
//	fmt.Println(seg.Duration())
package audio
