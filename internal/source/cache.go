package source

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"sales-dashboard/internal/models"
)

const cacheVersion = "v1"

type cacheEntry struct {
	Records   []models.SalesRecord
	FetchedAt time.Time
}

type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Stale   int64 `json:"stale"`
}

// Cached keeps fetched records in memory for ttl and snapshots them to dir.
// When the wrapped fetcher fails, the last known records for the query are
// served instead, from memory or from the snapshot.
type Cached struct {
	next   Fetcher
	ttl    time.Duration
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	stale  atomic.Int64
}

// NewCached wraps next. An empty dir disables snapshots.
func NewCached(next Fetcher, ttl time.Duration, dir string, logger *slog.Logger) *Cached {
	return &Cached{
		next:    next,
		ttl:     ttl,
		dir:     dir,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cached) Fetch(ctx context.Context, q models.Query) ([]models.SalesRecord, error) {
	key := q.Key()

	if entry, ok := c.lookup(key); ok && c.now().Sub(entry.FetchedAt) < c.ttl {
		c.hits.Add(1)
		return entry.Records, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.refresh(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.SalesRecord), nil
}

func (c *Cached) refresh(ctx context.Context, q models.Query) ([]models.SalesRecord, error) {
	key := q.Key()

	records, err := c.next.Fetch(ctx, q)
	if err == nil {
		entry := cacheEntry{Records: records, FetchedAt: c.now()}
		c.store(key, entry)
		if err := c.saveSnapshot(key, entry); err != nil {
			c.logger.Warn("failed to save cache snapshot", "query", key, "error", err)
		}
		return records, nil
	}

	if entry, ok := c.lookup(key); ok {
		c.stale.Add(1)
		c.logger.Warn("serving stale records", "query", key, "fetched_at", entry.FetchedAt, "error", err)
		return entry.Records, nil
	}

	if entry, snapErr := c.loadSnapshot(key); snapErr == nil {
		c.store(key, entry)
		c.stale.Add(1)
		c.logger.Warn("serving records from snapshot", "query", key, "fetched_at", entry.FetchedAt, "error", err)
		return entry.Records, nil
	}

	return nil, err
}

func (c *Cached) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()

	return CacheStats{
		Entries: entries,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Stale:   c.stale.Load(),
	}
}

func (c *Cached) lookup(key string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

func (c *Cached) store(key string, entry cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

func (c *Cached) snapshotFilename(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.gob", key, cacheVersion))
}

func (c *Cached) saveSnapshot(key string, entry cacheEntry) error {
	if c.dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	// Snapshots are replaced by rename, never written in place.
	tmp, err := os.CreateTemp(c.dir, key+"_*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(entry); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.snapshotFilename(key))
}

func (c *Cached) loadSnapshot(key string) (cacheEntry, error) {
	if c.dir == "" {
		return cacheEntry{}, os.ErrNotExist
	}

	file, err := os.Open(c.snapshotFilename(key))
	if err != nil {
		return cacheEntry{}, err
	}
	defer file.Close()

	var entry cacheEntry
	if err := gob.NewDecoder(file).Decode(&entry); err != nil {
		return cacheEntry{}, err
	}
	return entry, nil
}
