// ABOUTME: Codec error kinds
// ABOUTME: Sentinel errors shared by decoders, encoders and the codec engine
package audio

import "errors"

var (
	// ErrUnsupportedFormat reports a container outside the supported set,
	// on input or requested output
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrCorruptData reports a decode failure on well-formed-looking bytes
	ErrCorruptData = errors.New("corrupt audio data")
)
