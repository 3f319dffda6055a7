// ABOUTME: Tests for the GCS blob store
// ABOUTME: Drives GCSStore through an in-memory bucket fake
package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippolingua/hippolingua/pkg/audio"
)

type fakeBucket struct {
	objects map[string]*gcsObject
	data    map[string][]byte
	err     error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string]*gcsObject{}, data: map[string][]byte{}}
}

func (f *fakeBucket) add(key string, data []byte) {
	f.objects[key] = &gcsObject{Name: key, Size: int64(len(data))}
	f.data[key] = data
}

func (f *fakeBucket) Attrs(_ context.Context, key string) (*gcsObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	obj, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotExist
	}
	return obj, nil
}

func (f *fakeBucket) Read(_ context.Context, key string) ([]byte, error) {
	data, ok := f.data[key]
	if !ok {
		return nil, storage.ErrObjectNotExist
	}
	return data, nil
}

func (f *fakeBucket) List(_ context.Context, prefix string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeBucket) Write(_ context.Context, key string, r io.Reader, opts PutOptions) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = &gcsObject{Name: key, Size: int64(len(data)), ContentType: opts.ContentType, Metadata: opts.Metadata}
	f.data[key] = data
	return nil
}

func newTestGCS(bucket *fakeBucket) *GCSStore {
	return &GCSStore{bucket: bucket, name: "hippo", prefix: "audio"}
}

func TestGCSResolve(t *testing.T) {
	bucket := newFakeBucket()
	bucket.add("audio/ja/hello.flac", []byte("fLaC"))
	store := newTestGCS(bucket)

	b, err := store.Resolve(context.Background(), "ja/hello.flac")
	require.NoError(t, err)
	assert.Equal(t, audio.FLAC, b.Format)
	assert.Equal(t, "ja", b.Language)
	assert.Equal(t, "gs://hippo/audio/ja/hello.flac", b.URL)
	assert.Equal(t, OriginStore, b.Origin)
}

func TestGCSResolveByPrefix(t *testing.T) {
	bucket := newFakeBucket()
	bucket.add("audio/song.ogg", []byte("OggS"))
	bucket.add("audio/song.json", []byte("{}"))
	store := newTestGCS(bucket)

	b, err := store.Resolve(context.Background(), "song")
	require.NoError(t, err)
	assert.Equal(t, "audio/song.ogg", b.Key)
}

func TestGCSErrors(t *testing.T) {
	bucket := newFakeBucket()
	store := newTestGCS(bucket)

	_, err := store.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	bucket.err = errors.New("dial tcp: i/o timeout")
	_, err = store.Stat(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, store.Ping(context.Background()), ErrUnavailable)
}

func TestGCSContextErrorsAreNotUnavailable(t *testing.T) {
	bucket := newFakeBucket()
	store := newTestGCS(bucket)

	bucket.err = context.DeadlineExceeded
	_, err := store.Resolve(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrUnavailable)

	bucket.err = errors.New("transport closed")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Stat(ctx, "slow")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, store.Ping(ctx), context.Canceled)
}

func TestGCSPut(t *testing.T) {
	bucket := newFakeBucket()
	store := newTestGCS(bucket)

	asset, err := store.Put(context.Background(), "es/hola.mp3", strings.NewReader("ID3"), PutOptions{ContentType: "audio/mp3"})
	require.NoError(t, err)
	assert.Equal(t, "audio/es/hola.mp3", asset.Key)
	assert.Equal(t, "audio/mp3", bucket.objects["audio/es/hola.mp3"].ContentType)

	stat, err := store.Stat(context.Background(), "es/hola.mp3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stat.Size)
	assert.NoError(t, store.Close())
}
