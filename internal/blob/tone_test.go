// ABOUTME: Tests for the synthetic tone source
// ABOUTME: Checks the generated WAV decodes to the configured length
package blob

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippolingua/hippolingua/pkg/audio"
	"github.com/hippolingua/hippolingua/pkg/audio/decode"
)

func TestToneResolve(t *testing.T) {
	src, err := NewTone(2 * time.Second)
	require.NoError(t, err)

	b, err := src.Resolve(context.Background(), "en/anything.mp3")
	require.NoError(t, err)
	assert.Equal(t, OriginFallback, b.Origin)
	assert.Equal(t, audio.WAV, b.Format)
	assert.Equal(t, "en", b.Language)

	dec, err := decode.New(audio.WAV)
	require.NoError(t, err)
	seg, err := dec.Decode(b.Data)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, seg.Duration())
	assert.Equal(t, 2, seg.Format.Channels)
}

func TestToneReturnsCopies(t *testing.T) {
	src, err := NewTone(100 * time.Millisecond)
	require.NoError(t, err)

	a, err := src.Resolve(context.Background(), "x")
	require.NoError(t, err)
	a.Data[0] = 'X'

	b, err := src.Resolve(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, byte('R'), b.Data[0])
}

func TestToneRejectsZeroDuration(t *testing.T) {
	_, err := NewTone(0)
	assert.Error(t, err)
}
