// Package cache is the bounded result cache of the formatter: LRU eviction by
// count, TTL expiry on access and on a background sweep.
package cache

import (
	"cmp"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	DefaultMaxSize         = 1000
	DefaultTTL             = 5 * time.Minute
	DefaultCleanupInterval = time.Minute

	// entryOverhead is the fixed per-entry cost of the size estimate.
	entryOverhead = 100
	// defaultCompactRatio is the load factor Compact shrinks to by default.
	defaultCompactRatio = 0.8
)

// Config sets the limits of a Cache. Zero fields take the defaults; a
// negative CleanupInterval disables the background sweep.
type Config struct {
	MaxSize         int
	TTL             time.Duration
	CleanupInterval time.Duration
	Clock           clock.Clock
	Logger          *zap.SugaredLogger
}

type entry struct {
	value        string
	created      time.Time
	lastAccessed time.Time
	accessCount  int
	size         int
	ttl          time.Duration
	// seq orders entries by last touch; the smallest is the LRU victim.
	seq uint64
}

// Cache maps string keys to string values. It is safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	maxSize   int
	ttl       time.Duration
	clock     clock.Clock
	log       *zap.SugaredLogger
	seq       uint64
	memory    int
	hits      int64
	misses    int64
	evictions int64

	stop     chan struct{}
	done     chan struct{}
	disposed sync.Once
}

// New creates a cache and starts its sweep goroutine. Call Dispose to stop it.
func New(cfg Config) *Cache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	c := &Cache{
		entries: make(map[string]*entry),
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		clock:   cfg.Clock,
		log:     cfg.Logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go c.sweepLoop(c.clock.Ticker(cfg.CleanupInterval))
	} else {
		close(c.done)
	}
	return c
}

// EstimateSize approximates the memory held by one entry.
func EstimateSize(key, value string) int {
	return (len(key)+len(value))*2 + entryOverhead
}

func (c *Cache) expired(e *entry, now time.Time) bool {
	ttl := e.ttl
	if ttl <= 0 {
		ttl = c.ttl
	}
	return now.Sub(e.created) > ttl
}

func (c *Cache) touch(e *entry) {
	c.seq++
	e.seq = c.seq
}

func (c *Cache) removeLocked(key string, e *entry) {
	delete(c.entries, key)
	c.memory -= e.size
}

// Get returns the live value of key. An expired entry is removed and counts
// as a miss.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}
	now := c.clock.Now()
	if c.expired(e, now) {
		c.removeLocked(key, e)
		c.misses++
		return "", false
	}
	e.lastAccessed = now
	e.accessCount++
	c.touch(e)
	c.hits++
	return e.value, true
}

// Has reports whether key holds a live entry without counting an access.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && !c.expired(e, c.clock.Now())
}

// Set stores value under key with the cache-wide TTL.
func (c *Cache) Set(key, value string) { c.SetWithTTL(key, value, 0) }

// SetWithTTL stores value under key; ttl <= 0 means the cache-wide TTL.
// A new key at capacity evicts the least recently accessed entry first.
func (c *Cache) SetWithTTL(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	size := EstimateSize(key, value)
	if e, ok := c.entries[key]; ok {
		c.memory += size - e.size
		e.value, e.size, e.ttl = value, size, ttl
		e.created, e.lastAccessed = now, now
		c.touch(e)
		return
	}
	if len(c.entries) >= c.maxSize {
		c.evictLRULocked()
	}
	e := &entry{value: value, created: now, lastAccessed: now, size: size, ttl: ttl}
	c.touch(e)
	c.entries[key] = e
	c.memory += size
}

func (c *Cache) evictLRULocked() {
	var victim string
	var oldest *entry
	for k, e := range c.entries {
		if oldest == nil || e.seq < oldest.seq {
			victim, oldest = k, e
		}
	}
	if oldest != nil {
		c.removeLocked(victim, oldest)
		c.evictions++
	}
}

// Delete removes key; it reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok {
		c.removeLocked(key, e)
	}
	return ok
}

// Clear drops every entry; counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.memory = 0
	c.mu.Unlock()
}

// Size returns the number of stored entries, expired ones not yet swept included.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// MemoryUsage returns the summed size estimate of the stored entries.
func (c *Cache) MemoryUsage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory
}

// Keys returns the stored keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()
	slices.Sort(keys)
	return keys
}

// Sweep removes every expired entry and returns how many went.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	now := c.clock.Now()
	removed := 0
	for k, e := range c.entries {
		if c.expired(e, now) {
			c.removeLocked(k, e)
			removed++
		}
	}
	c.mu.Unlock()
	if removed > 0 {
		c.log.Debugw("expired cache entries removed", "count", removed)
	}
	return removed
}

func (c *Cache) sweepLoop(t *clock.Ticker) {
	defer close(c.done)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.Sweep()
		}
	}
}

// Dispose stops the sweep, waits for it to exit and clears the cache. It is
// safe to call more than once.
func (c *Cache) Dispose() {
	c.disposed.Do(func() {
		close(c.stop)
		<-c.done
		c.Clear()
	})
}

// Compact evicts the least important entries until at most target remain.
// target <= 0 means 80% of the capacity. It returns the number removed.
func (c *Cache) Compact(target int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if target <= 0 {
		target = int(math.Floor(float64(c.maxSize) * defaultCompactRatio))
	}
	if len(c.entries) <= target {
		return 0
	}
	now := c.clock.Now()
	type scored struct {
		key   string
		e     *entry
		score float64
	}
	all := make([]scored, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, scored{key: k, e: e, score: importance(e, now)})
	}
	slices.SortFunc(all, func(a, b scored) int {
		if d := cmp.Compare(a.score, b.score); d != 0 {
			return d
		}
		return cmp.Compare(a.e.seq, b.e.seq)
	})
	n := len(c.entries) - target
	for _, s := range all[:n] {
		c.removeLocked(s.key, s.e)
		c.evictions++
	}
	return n
}

// importance blends access count, recency and youth; higher is kept longer.
func importance(e *entry, now time.Time) float64 {
	access := float64(e.accessCount) * 10
	recency := math.Max(0, 100-now.Sub(e.lastAccessed).Seconds())
	youth := math.Max(0, 50-now.Sub(e.created).Minutes())
	return access + recency + youth
}

// HotEntry describes a frequently read entry.
type HotEntry struct {
	Key          string    `json:"key"`
	AccessCount  int       `json:"accessCount"`
	LastAccessed time.Time `json:"lastAccessed"`
	Size         int       `json:"size"`
}

// HotEntries returns up to limit entries by descending access count.
func (c *Cache) HotEntries(limit int) []HotEntry {
	if limit <= 0 {
		limit = 10
	}
	c.mu.Lock()
	out := make([]HotEntry, 0, len(c.entries))
	for k, e := range c.entries {
		out = append(out, HotEntry{Key: k, AccessCount: e.accessCount, LastAccessed: e.lastAccessed, Size: e.size})
	}
	c.mu.Unlock()
	slices.SortFunc(out, func(a, b HotEntry) int {
		if d := cmp.Compare(b.AccessCount, a.AccessCount); d != 0 {
			return d
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out[:min(limit, len(out))]
}

// WarmEntry is one preloaded value.
type WarmEntry struct {
	Key   string
	Value string
	TTL   time.Duration
}

// Warm preloads entries through the normal Set path.
func (c *Cache) Warm(entries []WarmEntry) {
	for _, we := range entries {
		c.SetWithTTL(we.Key, we.Value, we.TTL)
	}
}
