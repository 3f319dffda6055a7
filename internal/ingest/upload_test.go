// ABOUTME: Tests for audio upload
// ABOUTME: Uses a local store in a temp dir
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippolingua/hippolingua/internal/blob"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestAssetID(t *testing.T) {
	tests := []struct {
		path, lang, want string
	}{
		{"/tmp/hello.mp3", "", "hello.mp3"},
		{"/tmp/hello.mp3", "en", "en/hello.mp3"},
		{"/tmp/good night.wav", "ja-JP", "ja/good_night.wav"},
	}
	for _, tt := range tests {
		got, err := AssetID(tt.path, tt.lang)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := AssetID("/tmp/hello.mp3", "xx")
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	store, err := blob.NewLocal(t.TempDir(), "audio")
	require.NoError(t, err)
	ctx := context.Background()

	path := writeTemp(t, "song.wav", rampWAV(t))
	asset, err := NewUploader(store, 100, nil).Upload(ctx, path, UploadOptions{Language: "fr"})
	require.NoError(t, err)
	assert.Equal(t, "fr/song.wav", asset.ID)
	assert.Equal(t, "audio/wav", asset.ContentType)

	b, err := store.Resolve(ctx, "fr/song.wav")
	require.NoError(t, err)
	assert.Equal(t, rampWAV(t), b.Data)
}

func TestUploadExplicitID(t *testing.T) {
	store, err := blob.NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	path := writeTemp(t, "song.wav", rampWAV(t))
	asset, err := NewUploader(store, 0, nil).Upload(context.Background(), path, UploadOptions{ID: "stories/one.wav"})
	require.NoError(t, err)
	assert.Equal(t, "stories/one.wav", asset.ID)
}

func TestUploadRejects(t *testing.T) {
	store, err := blob.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("unknown extension", func(t *testing.T) {
		path := writeTemp(t, "notes.txt", []byte("hi"))
		_, err := NewUploader(store, 0, nil).Upload(ctx, path, UploadOptions{})
		assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)
	})

	t.Run("format not enabled", func(t *testing.T) {
		path := writeTemp(t, "song.wav", rampWAV(t))
		_, err := NewUploader(store, 0, []audio.Container{audio.MP3}).Upload(ctx, path, UploadOptions{})
		assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)
	})

	t.Run("too large", func(t *testing.T) {
		path := writeTemp(t, "big.wav", make([]byte, 2<<20))
		_, err := NewUploader(store, 1, nil).Upload(ctx, path, UploadOptions{})
		assert.ErrorContains(t, err, "limit")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewUploader(store, 0, nil).Upload(ctx, filepath.Join(t.TempDir(), "gone.wav"), UploadOptions{})
		assert.Error(t, err)
	})
}
