package cache

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newTestCache(t *testing.T, max int) (*Cache, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	c := New(Config{MaxSize: max, TTL: time.Minute, CleanupInterval: -1, Clock: mock})
	t.Cleanup(c.Dispose)
	return c, mock
}

func TestGetSetAndLazyExpiry(t *testing.T) {
	c, mock := newTestCache(t, 10)
	c.Set("k", "value")
	size := EstimateSize("k", "value")
	assert.Equal(t, (1+5)*2+100, size)
	assert.Equal(t, size, c.MemoryUsage())

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "value", got)
	assert.True(t, c.Has("k"))

	mock.Add(time.Minute)
	_, ok = c.Get("k")
	assert.True(t, ok, "an entry exactly at its TTL is still live")

	mock.Add(time.Second)
	assert.False(t, c.Has("k"))
	assert.Equal(t, 1, c.Size(), "Has does not remove")
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Size())
	assert.Zero(t, c.MemoryUsage(), "expiry releases the entry's size")

	s := c.Stats()
	assert.Equal(t, int64(2), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.InDelta(t, 66.67, s.HitRate, 1e-9)
}

func TestPerEntryTTL(t *testing.T) {
	c, mock := newTestCache(t, 10)
	c.SetWithTTL("short", "v", time.Second)
	c.SetWithTTL("long", "v", time.Hour)
	mock.Add(2 * time.Minute)
	assert.False(t, c.Has("short"))
	assert.True(t, c.Has("long"))
}

func TestUpdateAdjustsMemory(t *testing.T) {
	c, _ := newTestCache(t, 10)
	c.Set("k", "a")
	c.Set("k", "abcdef")
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, EstimateSize("k", "abcdef"), c.MemoryUsage())
	assert.True(t, c.Delete("k"))
	assert.False(t, c.Delete("k"))
	assert.Zero(t, c.MemoryUsage())
}

func TestEvictsLeastRecentlyAccessed(t *testing.T) {
	c, mock := newTestCache(t, 3)
	for _, k := range []string{"a", "b", "c"} {
		c.Set(k, k)
		mock.Add(time.Second)
	}
	_, _ = c.Get("a")
	c.Set("d", "d")

	assert.Equal(t, []string{"a", "c", "d"}, c.Keys())
	assert.Equal(t, int64(1), c.Stats().Evictions)

	total := 0
	for _, k := range c.Keys() {
		total += EstimateSize(k, k)
	}
	assert.Equal(t, total, c.MemoryUsage())
}

func TestSweepRemovesExpired(t *testing.T) {
	c, mock := newTestCache(t, 10)
	c.Set("old", "v")
	mock.Add(30 * time.Second)
	c.Set("new", "v")
	mock.Add(45 * time.Second)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, []string{"new"}, c.Keys())
	assert.Equal(t, EstimateSize("new", "v"), c.MemoryUsage())
}

func TestBackgroundSweepAndDispose(t *testing.T) {
	mock := clock.NewMock()
	c := New(Config{TTL: time.Second, CleanupInterval: time.Minute, Clock: mock})
	c.Set("k", "v")
	mock.Add(2 * time.Minute)
	require.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)

	c.Set("k", "v")
	c.Dispose()
	c.Dispose()
	assert.Zero(t, c.Size())
}

func TestCompactDropsLowestScores(t *testing.T) {
	c, mock := newTestCache(t, 10)
	for i := range 10 {
		c.Set(fmt.Sprintf("k%d", i), "v")
	}
	for range 3 {
		_, _ = c.Get("k0")
		_, _ = c.Get("k9")
	}
	mock.Add(10 * time.Second)

	assert.Equal(t, 2, c.Compact(0), "default target is 80% of capacity")
	assert.Equal(t, 8, c.Size())
	assert.True(t, c.Has("k0"))
	assert.True(t, c.Has("k9"))

	assert.Equal(t, 6, c.Compact(2))
	assert.ElementsMatch(t, []string{"k0", "k9"}, c.Keys())
	assert.Zero(t, c.Compact(5), "already under target")
	assert.Equal(t, int64(8), c.Stats().Evictions)
}

func TestImportanceScore(t *testing.T) {
	now := time.Unix(10_000, 0)
	e := &entry{accessCount: 2, created: now.Add(-10 * time.Minute), lastAccessed: now.Add(-30 * time.Second)}
	assert.InDelta(t, 20+70+40, importance(e, now), 1e-9)

	stale := &entry{created: now.Add(-2 * time.Hour), lastAccessed: now.Add(-time.Hour)}
	assert.Zero(t, importance(stale, now))
}

func TestHotEntriesAndWarm(t *testing.T) {
	c, _ := newTestCache(t, 10)
	c.Warm([]WarmEntry{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "c", Value: "3", TTL: time.Hour}})
	for range 3 {
		_, _ = c.Get("b")
	}
	_, _ = c.Get("c")

	hot := c.HotEntries(2)
	require.Len(t, hot, 2)
	assert.Equal(t, "b", hot[0].Key)
	assert.Equal(t, 3, hot[0].AccessCount)
	assert.Equal(t, "c", hot[1].Key)
	assert.Len(t, c.HotEntries(0), 3)
}

func TestDetailedStats(t *testing.T) {
	c, mock := newTestCache(t, 10)
	c.Set("a", "x")
	mock.Add(20 * time.Second)
	c.Set("b", "y")
	_, _ = c.Get("a")

	d := c.DetailedStats()
	assert.Equal(t, 2, d.Size)
	assert.Equal(t, EstimateSize("a", "x"), d.AvgEntrySize)
	assert.Equal(t, 10*time.Second, d.AvgAge)
	assert.True(t, d.Oldest.Before(d.Newest))
	assert.Equal(t, map[string]int{"a": 1, "b": 0}, d.AccessCounts)

	c.ResetStats()
	assert.Zero(t, c.Stats().Hits)
}

func TestExportImportRoundTrip(t *testing.T) {
	src, mock := newTestCache(t, 10)
	src.Set("keep", "formatted")
	src.SetWithTTL("brief", "gone soon", 10*time.Second)
	_, _ = src.Get("keep")

	var buf bytes.Buffer
	require.NoError(t, src.Export().Encode(&buf))

	mock.Add(20 * time.Second)
	snap, err := DecodeSnapshot(&buf)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 2)

	dst := New(Config{MaxSize: 10, TTL: time.Minute, CleanupInterval: -1, Clock: mock})
	t.Cleanup(dst.Dispose)
	dst.Set("stale", "replaced by import")
	assert.Equal(t, 1, dst.Import(snap), "expired entries are skipped")
	v, ok := dst.Get("keep")
	require.True(t, ok)
	assert.Equal(t, "formatted", v)
	assert.Equal(t, EstimateSize("keep", "formatted"), dst.MemoryUsage())
	assert.Equal(t, 2, dst.HotEntries(1)[0].AccessCount, "access counts survive the trip")
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(&Snapshot{Schema: 99}))
	_, err := DecodeSnapshot(&buf)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	_, err = DecodeSnapshot(bytes.NewReader([]byte{0xc1}))
	assert.Error(t, err)
}
