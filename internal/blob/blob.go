// ABOUTME: Blob source abstraction for stored audio assets
// ABOUTME: Defines Source/Store interfaces, asset types, errors and key resolution
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/hippolingua/hippolingua/internal/language"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

var (
	// ErrNotFound means no object matches the asset id
	ErrNotFound = errors.New("asset not found")

	// ErrUnavailable means the backing store could not be reached
	ErrUnavailable = errors.New("storage unavailable")
)

// unavailable marks err as a backend failure. Failures caused by ctx
// ending keep the context error instead, so callers can tell a canceled
// or timed out request from an outage.
func unavailable(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// Origin records where a blob's bytes came from
type Origin string

const (
	OriginStore    Origin = "store"
	OriginCache    Origin = "cache"
	OriginFallback Origin = "fallback"
)

// Asset describes a stored audio object
type Asset struct {
	ID           string
	Key          string // full object key in the backing store
	Format       audio.Container
	Size         int64
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
	Language     string
	URL          string
}

// Blob is an asset together with its bytes
type Blob struct {
	Asset
	Data   []byte
	Origin Origin
}

// Source resolves asset ids to bytes
type Source interface {
	// Resolve fetches the asset's bytes
	Resolve(ctx context.Context, id string) (*Blob, error)

	// Stat returns the asset's metadata without fetching its bytes
	Stat(ctx context.Context, id string) (*Asset, error)
}

// PutOptions carries object attributes for uploads
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Store is a Source that also accepts uploads
type Store interface {
	Source

	// Put writes r under id, replacing any existing object
	Put(ctx context.Context, id string, r io.Reader, opts PutOptions) (*Asset, error)
}

// joinKey builds the object key for id under prefix
func joinKey(prefix, id string) string {
	id = strings.TrimPrefix(id, "/")
	if prefix == "" {
		return id
	}
	return strings.TrimSuffix(prefix, "/") + "/" + id
}

// pickKey returns the first key, in lexical order, with a supported
// container extension. Used when no object has the exact key.
func pickKey(keys []string) (string, bool) {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	for _, k := range sorted {
		if _, err := audio.ContainerFromPath(k); err == nil {
			return k, true
		}
	}
	return "", false
}

// newAsset fills the derived fields of an asset
func newAsset(id, key string) Asset {
	a := Asset{
		ID:       id,
		Key:      key,
		Language: language.FromAssetID(id),
	}
	if c, err := audio.ContainerFromPath(key); err == nil {
		a.Format = c
		a.ContentType = c.ContentType()
	}
	return a
}

// detectFormat sets the container from the key or, failing that, the bytes
func detectFormat(a *Asset, data []byte) {
	if c, err := audio.Detect(a.Key, data); err == nil {
		a.Format = c
		if a.ContentType == "" || a.ContentType == "application/octet-stream" {
			a.ContentType = c.ContentType()
		}
	}
}
