// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the Output interface and an oto implementation
// Package output plays decoded audio through the local sound device.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(seg.Format.SampleRate, seg.Format.Channels)
//	err = output.Play(ctx, out, seg)
package output
