// ABOUTME: Local directory blob store
// ABOUTME: Serves and stores assets as files under a root directory
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore keeps assets at <root>/<prefix>/<id>
type LocalStore struct {
	root   string
	prefix string
}

// NewLocal creates a local store rooted at dir, creating it if needed
func NewLocal(dir, prefix string) (*LocalStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{root: abs, prefix: prefix}, nil
}

// Ping checks that the root directory is still accessible
func (l *LocalStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(l.root); err != nil {
		return fmt.Errorf("local store %s: %w: %w", l.root, ErrUnavailable, err)
	}
	return nil
}

// resolve turns an object key into a filesystem path that cannot leave root
func (l *LocalStore) resolve(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(path.Clean("/"+key)))
}

// Resolve reads the asset's file
func (l *LocalStore) Resolve(ctx context.Context, id string) (*Blob, error) {
	key, info, err := l.find(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.resolve(key))
	if err != nil {
		return nil, l.wrap(key, err)
	}

	asset := l.asset(id, key, info)
	asset.Size = int64(len(data))
	detectFormat(&asset, data)

	return &Blob{Asset: asset, Data: data, Origin: OriginStore}, nil
}

// Stat returns the asset's file metadata
func (l *LocalStore) Stat(ctx context.Context, id string) (*Asset, error) {
	key, info, err := l.find(id)
	if err != nil {
		return nil, err
	}
	asset := l.asset(id, key, info)
	return &asset, nil
}

// Put writes r to <root>/<prefix>/<id>, creating parent directories
func (l *LocalStore) Put(ctx context.Context, id string, r io.Reader, opts PutOptions) (*Asset, error) {
	key := joinKey(l.prefix, id)
	full := l.resolve(key)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("local mkdir %s: %w: %w", key, ErrUnavailable, err)
	}
	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("local create %s: %w: %w", key, ErrUnavailable, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("local write %s: %w: %w", key, ErrUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("local close %s: %w: %w", key, ErrUnavailable, err)
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, l.wrap(key, err)
	}
	asset := l.asset(id, key, info)
	if opts.ContentType != "" {
		asset.ContentType = opts.ContentType
	}
	asset.Metadata = opts.Metadata
	return &asset, nil
}

// find returns the exact file when it exists, otherwise the first sibling
// whose name starts with the id's base name and has a supported extension
func (l *LocalStore) find(id string) (string, fs.FileInfo, error) {
	key := joinKey(l.prefix, id)
	full := l.resolve(key)

	info, err := os.Stat(full)
	if err == nil && !info.IsDir() {
		return key, info, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", nil, l.wrap(key, err)
	}

	// list everything under the key, as an object store prefix listing would
	var keys []string
	dir := filepath.Dir(full)
	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return nil
		}
		k := filepath.ToSlash(rel)
		if strings.HasPrefix(k, key) {
			keys = append(keys, k)
		}
		return nil
	})
	if walkErr != nil {
		return "", nil, l.wrap(key, walkErr)
	}

	found, ok := pickKey(keys)
	if !ok {
		return "", nil, fmt.Errorf("local %s: %w", id, ErrNotFound)
	}

	info, err = os.Stat(l.resolve(found))
	if err != nil {
		return "", nil, l.wrap(found, err)
	}
	return found, info, nil
}

func (l *LocalStore) asset(id, key string, info fs.FileInfo) Asset {
	a := newAsset(id, key)
	a.URL = "file://" + filepath.ToSlash(l.resolve(key))
	a.Size = info.Size()
	a.LastModified = info.ModTime()
	return a
}

func (l *LocalStore) wrap(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local %s: %w", key, ErrNotFound)
	}
	return fmt.Errorf("local %s: %w: %w", key, ErrUnavailable, err)
}

var _ Store = (*LocalStore)(nil)
