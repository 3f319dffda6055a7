// ABOUTME: Google Cloud Storage blob store
// ABOUTME: Resolves and uploads assets in a GCS bucket
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// gcsObject is the subset of object attributes GCSStore reads
type gcsObject struct {
	Name        string
	Size        int64
	ContentType string
	Updated     time.Time
	Metadata    map[string]string
}

// gcsBucket abstracts the bucket operations used by GCSStore
type gcsBucket interface {
	Attrs(ctx context.Context, key string) (*gcsObject, error)
	Read(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Write(ctx context.Context, key string, r io.Reader, opts PutOptions) error
}

// GCSOptions configures a GCS store
type GCSOptions struct {
	Bucket          string
	Prefix          string
	CredentialsPath string // service account key; empty uses application default credentials
}

// GCSStore resolves assets stored under <prefix>/<id> in a GCS bucket
type GCSStore struct {
	bucket gcsBucket
	client *storage.Client
	name   string
	prefix string
}

// NewGCS connects to Cloud Storage
func NewGCS(ctx context.Context, opts GCSOptions) (*GCSStore, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsPath != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsPath))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w: %w", ErrUnavailable, err)
	}

	return &GCSStore{
		bucket: &gcsHandle{bucket: client.Bucket(opts.Bucket)},
		client: client,
		name:   opts.Bucket,
		prefix: opts.Prefix,
	}, nil
}

// Resolve fetches the asset's bytes
func (s *GCSStore) Resolve(ctx context.Context, id string) (*Blob, error) {
	obj, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.bucket.Read(ctx, obj.Name)
	if err != nil {
		return nil, s.wrap(ctx, "read", obj.Name, err)
	}

	asset := s.asset(id, obj)
	asset.Size = int64(len(data))
	detectFormat(&asset, data)

	return &Blob{Asset: asset, Data: data, Origin: OriginStore}, nil
}

// Stat returns the asset's metadata
func (s *GCSStore) Stat(ctx context.Context, id string) (*Asset, error) {
	obj, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	asset := s.asset(id, obj)
	return &asset, nil
}

// Put uploads r under <prefix>/<id>
func (s *GCSStore) Put(ctx context.Context, id string, r io.Reader, opts PutOptions) (*Asset, error) {
	key := joinKey(s.prefix, id)
	if err := s.bucket.Write(ctx, key, r, opts); err != nil {
		return nil, fmt.Errorf("gcs write %s: %w", key, unavailable(ctx, err))
	}

	asset := s.asset(id, &gcsObject{Name: key, ContentType: opts.ContentType, Metadata: opts.Metadata})
	return &asset, nil
}

// Ping checks that the bucket is reachable
func (s *GCSStore) Ping(ctx context.Context) error {
	if _, err := s.bucket.List(ctx, joinKey(s.prefix, "")); err != nil {
		return fmt.Errorf("gcs bucket %s: %w", s.name, unavailable(ctx, err))
	}
	return nil
}

// Close releases the storage client
func (s *GCSStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *GCSStore) find(ctx context.Context, id string) (*gcsObject, error) {
	key := joinKey(s.prefix, id)

	obj, err := s.bucket.Attrs(ctx, key)
	if err == nil {
		return obj, nil
	}
	if !errors.Is(err, storage.ErrObjectNotExist) {
		return nil, s.wrap(ctx, "attrs", key, err)
	}

	keys, err := s.bucket.List(ctx, key)
	if err != nil {
		return nil, s.wrap(ctx, "list", key, err)
	}
	found, ok := pickKey(keys)
	if !ok {
		return nil, fmt.Errorf("gcs %s: %w", id, ErrNotFound)
	}

	obj, err = s.bucket.Attrs(ctx, found)
	if err != nil {
		return nil, s.wrap(ctx, "attrs", found, err)
	}
	return obj, nil
}

func (s *GCSStore) asset(id string, obj *gcsObject) Asset {
	a := newAsset(id, obj.Name)
	a.URL = fmt.Sprintf("gs://%s/%s", s.name, obj.Name)
	a.Size = obj.Size
	if obj.ContentType != "" {
		a.ContentType = obj.ContentType
	}
	a.LastModified = obj.Updated
	a.Metadata = obj.Metadata
	return a
}

func (s *GCSStore) wrap(ctx context.Context, op, key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs %s %s: %w", op, key, ErrNotFound)
	}
	return fmt.Errorf("gcs %s %s: %w", op, key, unavailable(ctx, err))
}

// gcsHandle adapts a storage.BucketHandle to gcsBucket
type gcsHandle struct {
	bucket *storage.BucketHandle
}

func (h *gcsHandle) Attrs(ctx context.Context, key string) (*gcsObject, error) {
	attrs, err := h.bucket.Object(key).Attrs(ctx)
	if err != nil {
		return nil, err
	}
	return &gcsObject{
		Name:        attrs.Name,
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Updated:     attrs.Updated,
		Metadata:    attrs.Metadata,
	}, nil
}

func (h *gcsHandle) Read(ctx context.Context, key string) ([]byte, error) {
	r, err := h.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (h *gcsHandle) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	it := h.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, attrs.Name)
	}
}

func (h *gcsHandle) Write(ctx context.Context, key string, r io.Reader, opts PutOptions) error {
	w := h.bucket.Object(key).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.Metadata = opts.Metadata
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

var _ Store = (*GCSStore)(nil)
