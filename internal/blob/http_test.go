// ABOUTME: Tests for the HTTP blob source
// ABOUTME: Serves fixtures from an httptest server
package blob

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippolingua/hippolingua/pkg/audio"
)

func newAudioServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ko/annyeong.mp3":
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Header().Set("Last-Modified", "Wed, 21 Oct 2015 07:28:00 GMT")
			if r.Method == http.MethodGet {
				w.Write([]byte("ID3xyz"))
			}
		case "/broken.mp3":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPResolve(t *testing.T) {
	srv := newAudioServer(t)
	src, err := NewHTTP(srv.URL+"/", nil)
	require.NoError(t, err)

	b, err := src.Resolve(context.Background(), "ko/annyeong.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3xyz"), b.Data)
	assert.Equal(t, audio.MP3, b.Format)
	assert.Equal(t, "audio/mpeg", b.ContentType)
	assert.Equal(t, "ko", b.Language)
	assert.Equal(t, 2015, b.LastModified.Year())
	assert.Equal(t, srv.URL+"/ko/annyeong.mp3", b.URL)
}

func TestHTTPStat(t *testing.T) {
	srv := newAudioServer(t)
	src, err := NewHTTP(srv.URL, nil)
	require.NoError(t, err)

	a, err := src.Stat(context.Background(), "ko/annyeong.mp3")
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", a.ContentType)
}

func TestHTTPErrors(t *testing.T) {
	srv := newAudioServer(t)
	src, err := NewHTTP(srv.URL, nil)
	require.NoError(t, err)

	_, err = src.Resolve(context.Background(), "missing.mp3")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.Resolve(context.Background(), "broken.mp3")
	assert.ErrorIs(t, err, ErrUnavailable)

	srv.Close()
	_, err = src.Resolve(context.Background(), "ko/annyeong.mp3")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewHTTPRejectsEmptyURL(t *testing.T) {
	_, err := NewHTTP("", nil)
	assert.Error(t, err)
}
