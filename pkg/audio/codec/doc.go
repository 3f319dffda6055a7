// ABOUTME: Codec engine package
// ABOUTME: Decode, trim, speed, concat and encode operations over PCM segments
// Package codec ties the decode, resample and encode packages together
// behind a single Engine.
//
// Every Engine operation returns a new Segment; inputs are never modified
// or aliased. Positions are time.Duration values converted to frame
// indices with rounding.
//
// Example:
//
//	e := codec.New()
//	seg, err := e.Decode(ctx, data, audio.MP3)
//	seg, err = e.Trim(seg, 2*time.Second, 5*time.Second)
//	seg, err = e.ChangeSpeed(seg, 1.5)
//	out, err := e.Encode(seg, audio.WAV)
package codec
