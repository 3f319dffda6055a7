// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for playback backends and a segment player
package output

import (
	"context"
	"fmt"

	"github.com/hippolingua/hippolingua/pkg/audio"
)

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write outputs audio samples (blocks until written)
	Write(samples []int32) error

	// Drain blocks until everything written has been heard
	Drain(ctx context.Context) error

	// Close releases output resources
	Close() error
}

// chunkFrames is how many frames Play hands to the device per write
const chunkFrames = 2048

// Play writes seg to out in chunks and waits for playback to finish.
// out must already be open with seg's format.
func Play(ctx context.Context, out Output, seg *audio.Segment) error {
	if err := seg.Format.Validate(); err != nil {
		return err
	}

	step := chunkFrames * seg.Format.Channels
	for i := 0; i < len(seg.Samples); i += step {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+step, len(seg.Samples))
		if err := out.Write(seg.Samples[i:end]); err != nil {
			return fmt.Errorf("playback write failed: %w", err)
		}
	}
	return out.Drain(ctx)
}
