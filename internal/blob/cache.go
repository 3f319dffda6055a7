// ABOUTME: Badger-backed caching decorator for blob sources
// ABOUTME: Stores resolved blobs locally; cache failures are logged and bypassed
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hippolingua/hippolingua/internal/logging"
	"github.com/hippolingua/hippolingua/internal/metrics"
)

const cacheKeyPrefix = "blob/"

// CacheOptions configures the blob cache
type CacheOptions struct {
	// Dir is the badger data directory. Required unless InMemory is set.
	Dir string

	// InMemory keeps the cache in memory only
	InMemory bool

	// TTL expires entries after the given duration. Zero keeps them forever.
	TTL time.Duration
}

// Cached wraps a Source with a local badger cache
type Cached struct {
	next Source
	db   *badger.DB
	ttl  time.Duration
}

type cacheEntry struct {
	Asset Asset  `msgpack:"asset"`
	Data  []byte `msgpack:"data"`
}

// NewCached opens the cache and wraps next
func NewCached(next Source, opts CacheOptions) (*Cached, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("cache directory is required")
	}

	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	return &Cached{next: next, db: db, ttl: opts.TTL}, nil
}

// Resolve serves the blob from the cache, falling through to the wrapped source
func (c *Cached) Resolve(ctx context.Context, id string) (*Blob, error) {
	if b, ok := c.get(id); ok {
		metrics.RecordCacheLookup("hit")
		return b, nil
	}
	metrics.RecordCacheLookup("miss")

	b, err := c.next.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	// Synthetic data is never cached
	if b.Origin == OriginStore {
		c.set(id, b)
	}
	return b, nil
}

// Stat passes through to the wrapped source
func (c *Cached) Stat(ctx context.Context, id string) (*Asset, error) {
	return c.next.Stat(ctx, id)
}

// Put forwards to the wrapped store and drops any cached copy
func (c *Cached) Put(ctx context.Context, id string, r io.Reader, opts PutOptions) (*Asset, error) {
	store, ok := c.next.(Store)
	if !ok {
		return nil, fmt.Errorf("source does not accept uploads")
	}

	asset, err := store.Put(ctx, id, r, opts)
	if err != nil {
		return nil, err
	}
	c.invalidate(id)
	return asset, nil
}

// Close closes the cache database and the wrapped source when it holds resources
func (c *Cached) Close() error {
	err := c.db.Close()
	if closer, ok := c.next.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}

func (c *Cached) get(id string) (*Blob, bool) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKeyPrefix + id))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logging.L().Warn("cache read failed", slog.String("id", id), slog.Any("error", err))
		}
		return nil, false
	}

	var entry cacheEntry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		logging.L().Warn("cache entry corrupt", slog.String("id", id), slog.Any("error", err))
		c.invalidate(id)
		return nil, false
	}

	return &Blob{Asset: entry.Asset, Data: entry.Data, Origin: OriginCache}, true
}

func (c *Cached) set(id string, b *Blob) {
	raw, err := msgpack.Marshal(cacheEntry{Asset: b.Asset, Data: b.Data})
	if err != nil {
		logging.L().Warn("cache encode failed", slog.String("id", id), slog.Any("error", err))
		return
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(cacheKeyPrefix+id), raw)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		logging.L().Warn("cache write failed", slog.String("id", id), slog.Any("error", err))
	}
}

func (c *Cached) invalidate(id string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(cacheKeyPrefix + id))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		logging.L().Warn("cache invalidate failed", slog.String("id", id), slog.Any("error", err))
	}
}

// badgerLogger routes badger's own logging to slog at low levels
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...any)   { logging.L().Error(fmt.Sprintf(f, v...), "component", "cache") }
func (badgerLogger) Warningf(f string, v ...any) { logging.L().Warn(fmt.Sprintf(f, v...), "component", "cache") }
func (badgerLogger) Infof(f string, v ...any)    { logging.L().Debug(fmt.Sprintf(f, v...), "component", "cache") }
func (badgerLogger) Debugf(f string, v ...any)   { logging.L().Debug(fmt.Sprintf(f, v...), "component", "cache") }

var (
	_ Source = (*Cached)(nil)
	_ Store  = (*Cached)(nil)
)
