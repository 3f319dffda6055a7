// ABOUTME: Tests for the badger blob cache
// ABOUTME: Uses in-memory badger and a counting source
package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippolingua/hippolingua/pkg/audio"
)

type countingSource struct {
	mu     sync.Mutex
	calls  int
	origin Origin
	err    error
	puts   int
}

func (s *countingSource) Resolve(_ context.Context, id string) (*Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &Blob{
		Asset:  Asset{ID: id, Key: "audio/" + id, Format: audio.MP3, Metadata: map[string]string{"title": "t"}},
		Data:   []byte("ID3 payload"),
		Origin: s.origin,
	}, nil
}

func (s *countingSource) Stat(_ context.Context, id string) (*Asset, error) {
	return &Asset{ID: id}, nil
}

func (s *countingSource) Put(_ context.Context, id string, r io.Reader, _ PutOptions) (*Asset, error) {
	s.puts++
	return &Asset{ID: id}, nil
}

func newTestCache(t *testing.T, next Source, ttl time.Duration) *Cached {
	t.Helper()
	c, err := NewCached(next, CacheOptions{InMemory: true, TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { c.db.Close() })
	return c
}

func TestCachedHit(t *testing.T) {
	src := &countingSource{origin: OriginStore}
	c := newTestCache(t, src, 0)
	ctx := context.Background()

	first, err := c.Resolve(ctx, "en/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, OriginStore, first.Origin)

	second, err := c.Resolve(ctx, "en/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, OriginCache, second.Origin)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, "audio/en/a.mp3", second.Key)
	assert.Equal(t, audio.MP3, second.Format)
	assert.Equal(t, "t", second.Metadata["title"])
	assert.Equal(t, 1, src.calls)
}

func TestCachedSkipsFallback(t *testing.T) {
	src := &countingSource{origin: OriginFallback}
	c := newTestCache(t, src, 0)

	for i := 0; i < 3; i++ {
		b, err := c.Resolve(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, OriginFallback, b.Origin)
	}
	assert.Equal(t, 3, src.calls)
}

func TestCachedPropagatesErrors(t *testing.T) {
	src := &countingSource{err: ErrNotFound}
	c := newTestCache(t, src, 0)

	_, err := c.Resolve(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCachedPutInvalidates(t *testing.T) {
	src := &countingSource{origin: OriginStore}
	c := newTestCache(t, src, 0)
	ctx := context.Background()

	_, err := c.Resolve(ctx, "a")
	require.NoError(t, err)

	_, err = c.Put(ctx, "a", strings.NewReader("new"), PutOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, src.puts)

	b, err := c.Resolve(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, OriginStore, b.Origin)
	assert.Equal(t, 2, src.calls)
}

func TestCachedPutRequiresStore(t *testing.T) {
	tone, err := NewTone(time.Millisecond * 10)
	require.NoError(t, err)
	c := newTestCache(t, tone, 0)

	_, err = c.Put(context.Background(), "a", strings.NewReader(""), PutOptions{})
	assert.Error(t, err)
}

func TestNewCachedRequiresDir(t *testing.T) {
	_, err := NewCached(&countingSource{}, CacheOptions{})
	assert.Error(t, err)
}
