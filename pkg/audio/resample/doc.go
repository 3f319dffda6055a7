// ABOUTME: Audio resampling package
// ABOUTME: Linear speed stretching and high-quality sample rate conversion
// Package resample changes the rate or speed of PCM audio.
//
// Stretch uses linear interpolation and are deterministic:
// the same input and factor always produce the same output. Convert uses
// a windowed-sinc resampler for rate changes that must preserve pitch
// and quality, such as feeding a 48 kHz Opus encoder.
//
// Example:
//
//	faster := resample.Stretch(seg.Samples, seg.Format.Channels, 1.5)
//	opusReady, err := resample.Convert(seg, 48000)
package resample
