// ABOUTME: Synthetic tone source for development and debugging
// ABOUTME: Resolves every id to a generated 440Hz sine WAV
package blob

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hippolingua/hippolingua/pkg/audio"
	"github.com/hippolingua/hippolingua/pkg/audio/encode"
)

const (
	toneSampleRate = 44100
	toneChannels   = 2
	toneFrequency  = 440.0 // A4 note
)

// ToneSource answers every id with the same generated tone
type ToneSource struct {
	duration time.Duration
	data     []byte
}

// NewTone renders a tone of the given length once
func NewTone(duration time.Duration) (*ToneSource, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("invalid tone duration: %v", duration)
	}

	frames := audio.DurationToFrames(duration, toneSampleRate)
	samples := make([]int32, frames*toneChannels)
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(toneSampleRate)
		v := audio.SampleFromFloat(0.5 * math.Sin(2*math.Pi*toneFrequency*t)) // 50% volume
		samples[i*2] = v
		samples[i*2+1] = v
	}

	enc, err := encode.NewWAV(audio.Format{Codec: string(audio.WAV)})
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	data, err := enc.Encode(&audio.Segment{
		Format:  audio.Format{Codec: string(audio.WAV), SampleRate: toneSampleRate, Channels: toneChannels, BitDepth: 16},
		Samples: samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render tone: %w", err)
	}

	return &ToneSource{duration: duration, data: data}, nil
}

// Resolve returns a copy of the tone
func (s *ToneSource) Resolve(ctx context.Context, id string) (*Blob, error) {
	data := make([]byte, len(s.data))
	copy(data, s.data)

	return &Blob{Asset: s.asset(id), Data: data, Origin: OriginFallback}, nil
}

// Stat describes the tone
func (s *ToneSource) Stat(ctx context.Context, id string) (*Asset, error) {
	a := s.asset(id)
	return &a, nil
}

func (s *ToneSource) asset(id string) Asset {
	a := newAsset(id, id)
	a.Format = audio.WAV
	a.ContentType = audio.WAV.ContentType()
	a.Size = int64(len(s.data))
	a.URL = "tone://" + id
	a.Metadata = map[string]string{
		"title":  "Test Tone",
		"source": "tone",
	}
	return a
}

var _ Source = (*ToneSource)(nil)
