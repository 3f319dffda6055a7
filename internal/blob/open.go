// ABOUTME: Blob source factory
// ABOUTME: Builds the configured backend and optional cache from plain options
package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hippolingua/hippolingua/internal/logging"
)

// Backend names accepted by Open
const (
	BackendS3    = "s3"
	BackendGCS   = "gcs"
	BackendLocal = "local"
	BackendHTTP  = "http"
	BackendTone  = "tone"
)

// Options selects and configures a backend
type Options struct {
	Backend string
	Bucket  string
	Prefix  string

	// GCS
	CredentialsPath string

	// S3
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string

	// local
	LocalDir string

	// http
	BaseURL string

	// tone
	ToneDuration time.Duration

	// Cache wraps the backend when CacheEnabled is set
	CacheEnabled bool
	Cache        CacheOptions
}

// Pinger is implemented by stores that can check their own reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Open builds the source described by opts
func Open(ctx context.Context, opts Options) (Source, error) {
	var (
		src Source
		err error
	)

	switch opts.Backend {
	case BackendS3:
		client := NewS3Client(S3Options{
			Region:          opts.Region,
			Endpoint:        opts.Endpoint,
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
		})
		src = NewS3(client, opts.Bucket, opts.Prefix)
	case BackendGCS:
		src, err = NewGCS(ctx, GCSOptions{
			Bucket:          opts.Bucket,
			Prefix:          opts.Prefix,
			CredentialsPath: opts.CredentialsPath,
		})
	case BackendLocal:
		src, err = NewLocal(opts.LocalDir, opts.Prefix)
	case BackendHTTP:
		src, err = NewHTTP(opts.BaseURL, nil)
	case BackendTone:
		src, err = NewTone(opts.ToneDuration)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	logging.L().Info("blob source ready",
		slog.String("backend", opts.Backend),
		slog.String("bucket", opts.Bucket),
		slog.String("prefix", opts.Prefix),
		slog.Bool("cache", opts.CacheEnabled))

	// Synthetic sources gain nothing from caching
	if !opts.CacheEnabled || opts.Backend == BackendTone {
		return src, nil
	}

	cached, err := NewCached(src, opts.Cache)
	if err != nil {
		Close(src)
		return nil, err
	}
	return cached, nil
}

// Close releases resources held by src, if any
func Close(src Source) error {
	if closer, ok := src.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Ping checks reachability when src supports it
func Ping(ctx context.Context, src Source) error {
	if c, ok := src.(*Cached); ok {
		src = c.next
	}
	if p, ok := src.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
