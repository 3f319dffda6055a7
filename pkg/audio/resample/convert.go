// ABOUTME: High-quality sample rate conversion
// ABOUTME: Wraps tphakala/go-audio-resampling for whole-segment rate changes
package resample

import (
	"fmt"

	"github.com/hippolingua/hippolingua/pkg/audio"
	resampling "github.com/tphakala/go-audio-resampling"
)

// Convert returns seg resampled to rate. Used where an encoder only
// accepts a fixed set of rates.
func Convert(seg *audio.Segment, rate int) (*audio.Segment, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("invalid target sample rate: %d", rate)
	}
	if err := seg.Format.Validate(); err != nil {
		return nil, err
	}

	format := seg.Format
	format.SampleRate = rate

	if seg.Format.SampleRate == rate {
		out := seg.Clone()
		out.Format = format
		return out, nil
	}

	if len(seg.Samples) == 0 {
		return &audio.Segment{Format: format, Samples: []int32{}}, nil
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(seg.Format.SampleRate),
		OutputRate: float64(rate),
		Channels:   seg.Format.Channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	input := make([]float64, len(seg.Samples))
	for i, s := range seg.Samples {
		input[i] = audio.SampleToFloat(s)
	}

	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}

	n := len(output) / format.Channels * format.Channels
	samples := make([]int32, n)
	for i, v := range output[:n] {
		samples[i] = audio.SampleFromFloat(v)
	}

	return &audio.Segment{Format: format, Samples: samples}, nil
}
