// ABOUTME: Audio upload to the configured store
// ABOUTME: Names assets <lang>/<name>.<ext> and sets the content type from the container
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hippolingua/hippolingua/internal/blob"
	"github.com/hippolingua/hippolingua/internal/language"
	"github.com/hippolingua/hippolingua/internal/logging"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

// UploadOptions controls how a file is stored
type UploadOptions struct {
	ID       string // explicit asset id; derived from Language and the file name when empty
	Language string
	Metadata map[string]string
}

// Uploader writes local audio files to a blob store
type Uploader struct {
	store    blob.Store
	maxBytes int64
	formats  []audio.Container
}

// NewUploader creates an uploader. maxSizeMB <= 0 disables the size limit.
func NewUploader(store blob.Store, maxSizeMB int, formats []audio.Container) *Uploader {
	if len(formats) == 0 {
		formats = audio.Containers
	}
	return &Uploader{
		store:    store,
		maxBytes: int64(maxSizeMB) << 20,
		formats:  formats,
	}
}

// Upload stores the file at path and returns the stored asset
func (u *Uploader) Upload(ctx context.Context, path string, opts UploadOptions) (*blob.Asset, error) {
	container, err := audio.ContainerFromPath(path)
	if err != nil {
		return nil, err
	}
	if !supported(u.formats, container) {
		return nil, fmt.Errorf("%w: %s", audio.ErrUnsupportedFormat, container)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if u.maxBytes > 0 && info.Size() > u.maxBytes {
		return nil, fmt.Errorf("%s is %d bytes, above the %d byte limit", path, info.Size(), u.maxBytes)
	}

	id := opts.ID
	if id == "" {
		id, err = AssetID(path, opts.Language)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	asset, err := u.store.Put(ctx, id, f, blob.PutOptions{
		ContentType: container.ContentType(),
		Metadata:    opts.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", id, err)
	}

	logging.L().Info("uploaded audio",
		slog.String("file", path),
		slog.String("id", id),
		slog.String("url", asset.URL),
		slog.Int64("bytes", info.Size()))
	return asset, nil
}

// AssetID derives <lang>/<name>.<ext> from a file path. The language may be
// a code or a locale; an empty language yields <name>.<ext>.
func AssetID(path, lang string) (string, error) {
	name := filepath.Base(path)
	if lang == "" {
		return name, nil
	}
	l, ok := language.Lookup(lang)
	if !ok {
		return "", fmt.Errorf("unsupported language %q", lang)
	}
	return l.Code + "/" + strings.ReplaceAll(name, " ", "_"), nil
}

func supported(formats []audio.Container, c audio.Container) bool {
	for _, f := range formats {
		if f == c {
			return true
		}
	}
	return false
}
