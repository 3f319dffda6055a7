// ABOUTME: Linear speed stretching for whole sample buffers
// ABOUTME: Changes playback speed at a fixed sample rate using linear interpolation
package resample

import "math"

// Stretch plays input back factor times faster without changing the
// sample rate. Duration scales by 1/factor and pitch shifts with it.
// Output length is round(inputFrames / factor) frames; the final input
// frame is held past the end of the buffer.
func Stretch(input []int32, channels int, factor float64) []int32 {
	inputFrames := len(input) / channels
	if factor == 1.0 {
		out := make([]int32, inputFrames*channels)
		copy(out, input)
		return out
	}
	if inputFrames == 0 {
		return []int32{}
	}

	outputFrames := int(math.Round(float64(inputFrames) / factor))
	output := make([]int32, outputFrames*channels)

	last := inputFrames - 1
	for i := 0; i < outputFrames; i++ {
		pos := float64(i) * factor
		idx := int(pos)
		frac := pos - float64(idx)
		if idx >= last {
			idx, frac = last, 0
		}
		next := idx + 1
		if next > last {
			next = last
		}
		for ch := 0; ch < channels; ch++ {
			a := input[idx*channels+ch]
			b := input[next*channels+ch]
			output[i*channels+ch] = int32(float64(a)*(1.0-frac) + float64(b)*frac)
		}
	}

	return output
}
