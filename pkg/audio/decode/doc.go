// ABOUTME: Audio decoder package for multiple container support
// ABOUTME: Provides Decoder interface and implementations for MP3, WAV, FLAC and Ogg
// Package decode provides whole-blob audio decoders.
//
// Supports: MP3, WAV (8/16/24/32-bit integer PCM), FLAC, Ogg Vorbis
// and Ogg Opus.
//
// All decoders implement the Decoder interface and output an audio.Segment
// with int32 samples in 24-bit range. Malformed input is reported with an
// error wrapping audio.ErrCorruptData.
//
// Example:
//
//	decoder, err := decode.New(audio.FLAC)
//	seg, err := decoder.Decode(data)
package decode
