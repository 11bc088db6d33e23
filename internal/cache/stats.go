package cache

import (
	"math"
	"time"
)

// Stats is a snapshot of cache counters. HitRate is a percentage rounded to
// two decimals.
type Stats struct {
	Size        int     `json:"size" msgpack:"size"`
	MaxSize     int     `json:"maxSize" msgpack:"max_size"`
	Hits        int64   `json:"hits" msgpack:"hits"`
	Misses      int64   `json:"misses" msgpack:"misses"`
	Evictions   int64   `json:"evictions" msgpack:"evictions"`
	HitRate     float64 `json:"hitRate" msgpack:"hit_rate"`
	MemoryUsage int     `json:"memoryUsage" msgpack:"memory_usage"`
}

// DetailedStats adds per-entry aggregates to Stats.
type DetailedStats struct {
	Stats
	AvgEntrySize int            `json:"avgEntrySize"`
	AvgAge       time.Duration  `json:"avgAge"`
	Oldest       time.Time      `json:"oldest"`
	Newest       time.Time      `json:"newest"`
	AccessCounts map[string]int `json:"accessCounts"`
}

func (c *Cache) statsLocked() Stats {
	s := Stats{
		Size:        len(c.entries),
		MaxSize:     c.maxSize,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		MemoryUsage: c.memory,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = math.Round(float64(c.hits)/float64(total)*100*100) / 100
	}
	return s
}

// Stats returns the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}

// DetailedStats returns the counters plus entry ages and access counts.
func (c *Cache) DetailedStats() DetailedStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := DetailedStats{Stats: c.statsLocked(), AccessCounts: make(map[string]int, len(c.entries))}
	if len(c.entries) == 0 {
		return d
	}
	now := c.clock.Now()
	var age time.Duration
	for k, e := range c.entries {
		d.AccessCounts[k] = e.accessCount
		age += now.Sub(e.created)
		if d.Oldest.IsZero() || e.created.Before(d.Oldest) {
			d.Oldest = e.created
		}
		if e.created.After(d.Newest) {
			d.Newest = e.created
		}
	}
	n := len(c.entries)
	d.AvgEntrySize = int(math.Round(float64(c.memory) / float64(n)))
	d.AvgAge = age / time.Duration(n)
	return d
}

// ResetStats zeroes hit, miss and eviction counters.
func (c *Cache) ResetStats() {
	c.mu.Lock()
	c.hits, c.misses, c.evictions = 0, 0, 0
	c.mu.Unlock()
}
