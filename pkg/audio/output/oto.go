// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams 16-bit PCM to the sound device with software volume
package output

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hippolingua/hippolingua/internal/logging"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

// drainPoll is how often Drain checks whether the player went idle
const drainPoll = 10 * time.Millisecond

// Oto plays audio through the ebitengine oto library. oto allows one
// context per process, so an Oto is opened once with a fixed format.
type Oto struct {
	device *oto.Context
	player *oto.Player
	stream *io.PipeWriter

	sampleRate int
	channels   int

	volume int
	muted  bool
}

// NewOto creates a new Oto output at full volume
func NewOto() *Oto {
	return &Oto{volume: 100}
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int) error {
	if o.device != nil {
		if o.sampleRate == sampleRate && o.channels == channels {
			return nil
		}
		return fmt.Errorf("output already open at %dHz %dch, cannot switch to %dHz %dch",
			o.sampleRate, o.channels, sampleRate, channels)
	}

	device, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	// The player pulls from the pipe; Write blocks until it has read.
	r, w := io.Pipe()
	o.device = device
	o.stream = w
	o.player = device.NewPlayer(r)
	o.player.Play()
	o.sampleRate, o.channels = sampleRate, channels

	logging.L().Debug("audio output initialized",
		slog.Int("sample_rate", sampleRate),
		slog.Int("channels", channels))
	return nil
}

// Write outputs audio samples (blocks until written)
func (o *Oto) Write(samples []int32) error {
	if o.device == nil {
		return fmt.Errorf("output not initialized")
	}
	if o.stream == nil {
		return fmt.Errorf("output already drained")
	}

	if _, err := o.stream.Write(toPCM16(samples, o.gain())); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}
	return nil
}

// Drain ends the stream and waits until the player has gone idle
func (o *Oto) Drain(ctx context.Context) error {
	if o.device == nil {
		return fmt.Errorf("output not initialized")
	}
	if o.stream != nil {
		o.stream.Close()
		o.stream = nil
	}

	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	for o.player.IsPlaying() {
		select {
		case <-ctx.Done():
			o.player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	if o.stream != nil {
		o.stream.Close()
		o.stream = nil
	}
	if o.player != nil {
		_ = o.player.Close()
		o.player = nil
	}
	if o.device == nil {
		return nil
	}
	err := o.device.Suspend()
	o.device = nil
	return err
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	o.volume = max(0, min(100, volume))
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.muted = muted
}

// GetVolume returns current volume
func (o *Oto) GetVolume() int {
	return o.volume
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	return o.muted
}

func (o *Oto) gain() float64 {
	if o.muted {
		return 0
	}
	return float64(o.volume) / 100
}

// toPCM16 scales 24-bit range samples by gain and packs them as 16-bit little-endian
func toPCM16(samples []int32, gain float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		scaled := int32(max(audio.Min24Bit, min(audio.Max24Bit, float64(s)*gain)))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(audio.SampleToInt16(scaled)))
	}
	return out
}
