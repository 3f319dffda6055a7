// ABOUTME: Audio encoder package for encoding segments to container formats
// ABOUTME: Provides Encoder interface and implementations for WAV, MP3, FLAC and Ogg Opus
// Package encode provides whole-segment audio encoders.
//
// Supports: WAV (16-bit PCM), MP3 (shine), FLAC (verbatim subframes at
// 16 or 24 bits) and Ogg Opus (48 kHz, 20 ms packets).
//
// All encoders accept an audio.Segment with int32 samples in 24-bit range.
// Encoders that only accept certain sample rates resample first.
//
// Example:
//
//	encoder, err := encode.New(audio.WAV)
//	data, err := encoder.Encode(seg)
package encode
