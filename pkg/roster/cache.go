package roster

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheKey identifies a cached projection.
type CacheKey struct {
	WeddingID uint
	View      string
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%d/%s", k.WeddingID, k.View)
}

// Projection is a schema with its dense rows.
type Projection struct {
	Schema  Schema `json:"schema"`
	Rows    []Row  `json:"rows"`
	version uint64
	loaded  time.Time
}

// LoadFunc reads a projection from the store.
type LoadFunc func(ctx context.Context) (Schema, []Row, error)

// Cache holds the latest projection per key. Entries are replaced, never mutated in place, so a
// Projection returned by the cache stays valid after later edits. Entries older than maxAge are
// reloaded, which bounds how long a lost invalidation leaves a view stale. Zero keeps entries until
// they are invalidated.
type Cache struct {
	mu      sync.Mutex
	entries map[CacheKey]Projection
	// epochs advance on every invalidation so loads started before one are not cached
	epochs  map[CacheKey]uint64
	version uint64
	loads   singleflight.Group
	maxAge  time.Duration
	now     func() time.Time
}

func NewCache(maxAge time.Duration) *Cache {
	return &Cache{
		entries: make(map[CacheKey]Projection),
		epochs:  make(map[CacheKey]uint64),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

func (c *Cache) Get(key CacheKey) (Projection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[key]
	if ok && c.maxAge > 0 && c.now().Sub(p.loaded) > c.maxAge {
		delete(c.entries, key)
		return Projection{}, false
	}
	return p, ok
}

// Load returns the cached projection or reads it with load. Concurrent loads of the same key are
// collapsed into one, so load doesn't see the cancellation of the caller that started it.
func (c *Cache) Load(ctx context.Context, key CacheKey, load LoadFunc) (Projection, error) {
	if p, ok := c.Get(key); ok {
		return p, nil
	}

	v, err, _ := c.loads.Do(key.String(), func() (any, error) {
		c.mu.Lock()
		epoch := c.epochs[key]
		c.epochs[key] = epoch
		c.mu.Unlock()

		schema, rows, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return Projection{}, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		p := c.newProjection(schema, rows)
		if c.epochs[key] == epoch {
			c.entries[key] = p
		}
		return p, nil
	})
	if err != nil {
		return Projection{}, err
	}
	return v.(Projection), nil
}

// Put replaces the entry for key.
func (c *Cache) Put(key CacheKey, schema Schema, rows []Row) Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.newProjection(schema, rows)
	c.entries[key] = p
	return p
}

func (c *Cache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.epochs[key]++
}

// InvalidateWedding drops every view of a wedding.
func (c *Cache) InvalidateWedding(weddingID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.WeddingID == weddingID {
			delete(c.entries, key)
		}
	}
	for key := range c.epochs {
		if key.WeddingID == weddingID {
			c.epochs[key]++
		}
	}
}

func (c *Cache) newProjection(schema Schema, rows []Row) Projection {
	c.version++
	return Projection{Schema: schema, Rows: rows, version: c.version, loaded: c.now()}
}

// updateRow replaces one row of the entry, provided the entry is still the one identified by version.
func (c *Cache) updateRow(key CacheKey, version uint64, recordID uint, update func(Row) Row) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[key]
	if !ok || p.version != version {
		return false
	}
	i := slices.IndexFunc(p.Rows, func(r Row) bool { return r.ID == recordID })
	if i < 0 {
		return false
	}
	rows := slices.Clone(p.Rows)
	rows[i] = update(rows[i])
	p.Rows = rows
	c.entries[key] = p
	return true
}
