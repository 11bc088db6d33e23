package cache

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotSchema is bumped whenever Snapshot changes shape.
const snapshotSchema uint16 = 1

// ErrSchemaMismatch is returned when decoding a snapshot of another schema.
var ErrSchemaMismatch = errors.New("cache: snapshot schema mismatch")

// SnapshotEntry is one exported entry.
type SnapshotEntry struct {
	Key          string        `msgpack:"key"`
	Value        string        `msgpack:"value"`
	Created      time.Time     `msgpack:"created"`
	LastAccessed time.Time     `msgpack:"last_accessed"`
	AccessCount  int           `msgpack:"access_count"`
	TTL          time.Duration `msgpack:"ttl,omitempty"`
}

// Snapshot is the persisted form of a cache.
type Snapshot struct {
	Schema  uint16          `msgpack:"schema"`
	Entries []SnapshotEntry `msgpack:"entries"`
	Stats   Stats           `msgpack:"stats"`
}

// Export copies every stored entry, oldest access first.
func (c *Cache) Export() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	type ordered struct {
		seq uint64
		se  SnapshotEntry
	}
	tmp := make([]ordered, 0, len(c.entries))
	for k, e := range c.entries {
		tmp = append(tmp, ordered{seq: e.seq, se: SnapshotEntry{
			Key:          k,
			Value:        e.value,
			Created:      e.created,
			LastAccessed: e.lastAccessed,
			AccessCount:  e.accessCount,
			TTL:          e.ttl,
		}})
	}
	slices.SortFunc(tmp, func(a, b ordered) int { return cmp.Compare(a.seq, b.seq) })
	snap := Snapshot{Schema: snapshotSchema, Entries: make([]SnapshotEntry, len(tmp)), Stats: c.statsLocked()}
	for i, o := range tmp {
		snap.Entries[i] = o.se
	}
	return snap
}

// Import replaces the contents with snap. Entries already expired are
// skipped; entries past capacity evict the least recently used. It returns
// the number of entries held afterwards.
func (c *Cache) Import(snap Snapshot) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry, len(snap.Entries))
	c.memory = 0
	now := c.clock.Now()
	for _, se := range snap.Entries {
		e := &entry{
			value:        se.Value,
			created:      se.Created,
			lastAccessed: se.LastAccessed,
			accessCount:  se.AccessCount,
			size:         EstimateSize(se.Key, se.Value),
			ttl:          se.TTL,
		}
		if c.expired(e, now) {
			continue
		}
		if old, ok := c.entries[se.Key]; ok {
			c.removeLocked(se.Key, old)
		} else if len(c.entries) >= c.maxSize {
			c.evictLRULocked()
		}
		c.touch(e)
		c.entries[se.Key] = e
		c.memory += e.size
	}
	return len(c.entries)
}

// Encode writes snap as msgpack.
func (snap Snapshot) Encode(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("cache: encode snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a msgpack snapshot written by Encode.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("cache: decode snapshot: %w", err)
	}
	if snap.Schema != snapshotSchema {
		return Snapshot{}, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, snap.Schema, snapshotSchema)
	}
	return snap, nil
}
