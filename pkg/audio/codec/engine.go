// ABOUTME: Codec engine implementation
// ABOUTME: Whole-segment decode, trim, speed change, concat and encode
package codec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hippolingua/hippolingua/pkg/audio"
	"github.com/hippolingua/hippolingua/pkg/audio/decode"
	"github.com/hippolingua/hippolingua/pkg/audio/encode"
	"github.com/hippolingua/hippolingua/pkg/audio/resample"
)

// Engine performs codec operations. It holds no per-call state and is
// safe for concurrent use; decoders and encoders are created per call.
type Engine struct{}

// New creates a codec engine
func New() *Engine {
	return &Engine{}
}

// Decode decodes a complete blob of the given container
func (e *Engine) Decode(ctx context.Context, data []byte, c audio.Container) (*audio.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoder, err := decode.New(c)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	seg, err := decoder.Decode(data)
	if err != nil {
		if errors.Is(err, audio.ErrUnsupportedFormat) || errors.Is(err, audio.ErrCorruptData) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", audio.ErrCorruptData, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return seg, nil
}

// Trim returns the part of seg between start and end. Callers clamp the
// bounds first; end past the segment is cut to its length.
func (e *Engine) Trim(seg *audio.Segment, start, end time.Duration) (*audio.Segment, error) {
	if err := seg.Format.Validate(); err != nil {
		return nil, err
	}
	if start < 0 || end < start {
		return nil, fmt.Errorf("invalid trim range [%v, %v]", start, end)
	}

	frames := seg.Frames()
	first := clampFrame(audio.DurationToFrames(start, seg.Format.SampleRate), frames)
	last := clampFrame(audio.DurationToFrames(end, seg.Format.SampleRate), frames)

	ch := seg.Format.Channels
	samples := make([]int32, (last-first)*ch)
	copy(samples, seg.Samples[first*ch:last*ch])

	return &audio.Segment{Format: seg.Format, Samples: samples}, nil
}

// ChangeSpeed plays seg back factor times faster. Duration becomes
// duration/factor and pitch shifts with it. Callers clamp the factor.
func (e *Engine) ChangeSpeed(seg *audio.Segment, factor float64) (*audio.Segment, error) {
	if err := seg.Format.Validate(); err != nil {
		return nil, err
	}
	if factor <= 0 {
		return nil, fmt.Errorf("invalid speed factor: %v", factor)
	}

	return &audio.Segment{
		Format:  seg.Format,
		Samples: resample.Stretch(seg.Samples, seg.Format.Channels, factor),
	}, nil
}

// Concat joins times copies of seg end to end
func (e *Engine) Concat(seg *audio.Segment, times int) (*audio.Segment, error) {
	if err := seg.Format.Validate(); err != nil {
		return nil, err
	}
	if times < 1 {
		return nil, fmt.Errorf("invalid repeat count: %d", times)
	}

	samples := make([]int32, 0, len(seg.Samples)*times)
	for i := 0; i < times; i++ {
		samples = append(samples, seg.Samples...)
	}

	return &audio.Segment{Format: seg.Format, Samples: samples}, nil
}

// Encode encodes seg to the given container
func (e *Engine) Encode(seg *audio.Segment, c audio.Container) ([]byte, error) {
	encoder, err := encode.New(c)
	if err != nil {
		return nil, err
	}
	defer encoder.Close()

	data, err := encoder.Encode(seg)
	if err != nil {
		return nil, fmt.Errorf("%s encode: %w", c, err)
	}
	return data, nil
}

func clampFrame(f, frames int) int {
	if f < 0 {
		return 0
	}
	if f > frames {
		return frames
	}
	return f
}
