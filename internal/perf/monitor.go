// Package perf collects timing and cache counters of the formatting pipeline.
package perf

import (
	"cmp"
	"fmt"
	"math"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Thresholds of Recommendations.
const (
	SlowOperation     = 100 * time.Millisecond
	LowHitRatePercent = 50.0
	FrequentOperation = 1000
	HighMemoryDelta   = 50 << 20

	slowestKept = 10
)

// Monitor is what the orchestrator reports to. Recorder and NoOp implement it.
type Monitor interface {
	StartTiming(operation string) string
	EndTiming(id string) time.Duration
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
	Stats() Stats
	DetailedReport() DetailedReport
	Recommendations() []string
	LiveStats() LiveStats
	Reset()
}

// OperationStats aggregates the finished timings of one operation.
type OperationStats struct {
	Operation string        `json:"operation"`
	Count     int           `json:"count"`
	Total     time.Duration `json:"total"`
	Min       time.Duration `json:"min"`
	Max       time.Duration `json:"max"`
	Avg       time.Duration `json:"avg"`
}

// Stats is a snapshot of the counters. Operations are ordered by total time.
type Stats struct {
	TotalOperations int              `json:"totalOperations"`
	Operations      []OperationStats `json:"operations"`
	CacheHits       int              `json:"cacheHits"`
	CacheMisses     int              `json:"cacheMisses"`
	CacheHitRate    float64          `json:"cacheHitRate"`
	HitsByType      map[string]int   `json:"hitsByType"`
	MissesByType    map[string]int   `json:"missesByType"`
}

// TimingRecord is one finished timing.
type TimingRecord struct {
	Operation string        `json:"operation"`
	Duration  time.Duration `json:"duration"`
	Started   time.Time     `json:"started"`
}

// MemoryUsage compares the heap against the baseline taken at creation or
// the last Reset.
type MemoryUsage struct {
	Baseline uint64 `json:"baseline"`
	Current  uint64 `json:"current"`
	Delta    int64  `json:"delta"`
}

// DetailedReport extends Stats with the slowest timings and heap usage.
type DetailedReport struct {
	Stats
	TotalDuration time.Duration  `json:"totalDuration"`
	Slowest       []TimingRecord `json:"slowest"`
	Memory        MemoryUsage    `json:"memory"`
}

// LiveStats is the cheap view for status lines.
type LiveStats struct {
	ActiveTimings    int           `json:"activeTimings"`
	TotalOperations  int           `json:"totalOperations"`
	Uptime           time.Duration `json:"uptime"`
	CacheHitRate     float64       `json:"cacheHitRate"`
	AvgOperationTime time.Duration `json:"avgOperationTime"`
}

type opCounter struct {
	count         int
	total, lo, hi time.Duration
}

type pending struct {
	operation string
	start     time.Time
}

// Recorder is the stock Monitor. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	clock    clock.Clock
	started  time.Time
	baseline uint64

	active    map[string]pending
	ops       map[string]*opCounter
	finished  int
	totalTime time.Duration
	slowest   []TimingRecord

	hits, misses int
	hitsByType   map[string]int
	missesByType map[string]int
}

// NewRecorder creates a Recorder; a nil clock means wall time.
func NewRecorder(clk clock.Clock) *Recorder {
	if clk == nil {
		clk = clock.New()
	}
	r := &Recorder{clock: clk}
	r.resetLocked()
	return r
}

func (r *Recorder) resetLocked() {
	r.started = r.clock.Now()
	r.baseline = heapInUse()
	r.active = make(map[string]pending)
	r.ops = make(map[string]*opCounter)
	r.finished, r.totalTime, r.slowest = 0, 0, nil
	r.hits, r.misses = 0, 0
	r.hitsByType = make(map[string]int)
	r.missesByType = make(map[string]int)
}

// StartTiming opens a timing for operation and returns its id.
func (r *Recorder) StartTiming(operation string) string {
	id := operation + "-" + uuid.NewString()
	r.mu.Lock()
	r.active[id] = pending{operation: operation, start: r.clock.Now()}
	r.mu.Unlock()
	return id
}

// EndTiming closes the timing id and returns its duration; an unknown id
// yields 0.
func (r *Recorder) EndTiming(id string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.active[id]
	if !ok {
		return 0
	}
	delete(r.active, id)
	d := r.clock.Since(p.start)

	c := r.ops[p.operation]
	if c == nil {
		c = &opCounter{lo: d, hi: d}
		r.ops[p.operation] = c
	}
	c.count++
	c.total += d
	c.lo = min(c.lo, d)
	c.hi = max(c.hi, d)
	r.finished++
	r.totalTime += d
	r.keepSlowest(TimingRecord{Operation: p.operation, Duration: d, Started: p.start})
	return d
}

func (r *Recorder) keepSlowest(rec TimingRecord) {
	i, _ := slices.BinarySearchFunc(r.slowest, rec, func(a, b TimingRecord) int { return cmp.Compare(b.Duration, a.Duration) })
	if i >= slowestKept {
		return
	}
	r.slowest = slices.Insert(r.slowest, i, rec)
	if len(r.slowest) > slowestKept {
		r.slowest = r.slowest[:slowestKept]
	}
}

func (r *Recorder) RecordCacheHit(cacheType string) {
	r.mu.Lock()
	r.hits++
	r.hitsByType[cacheType]++
	r.mu.Unlock()
}

func (r *Recorder) RecordCacheMiss(cacheType string) {
	r.mu.Lock()
	r.misses++
	r.missesByType[cacheType]++
	r.mu.Unlock()
}

func hitRate(hits, misses int) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(total)*100*100) / 100
}

func (r *Recorder) statsLocked() Stats {
	s := Stats{
		TotalOperations: r.finished,
		CacheHits:       r.hits,
		CacheMisses:     r.misses,
		CacheHitRate:    hitRate(r.hits, r.misses),
		HitsByType:      make(map[string]int, len(r.hitsByType)),
		MissesByType:    make(map[string]int, len(r.missesByType)),
		Operations:      make([]OperationStats, 0, len(r.ops)),
	}
	for k, v := range r.hitsByType {
		s.HitsByType[k] = v
	}
	for k, v := range r.missesByType {
		s.MissesByType[k] = v
	}
	for name, c := range r.ops {
		s.Operations = append(s.Operations, OperationStats{
			Operation: name,
			Count:     c.count,
			Total:     c.total,
			Min:       c.lo,
			Max:       c.hi,
			Avg:       c.total / time.Duration(c.count),
		})
	}
	slices.SortFunc(s.Operations, func(a, b OperationStats) int {
		if d := cmp.Compare(b.Total, a.Total); d != 0 {
			return d
		}
		return cmp.Compare(a.Operation, b.Operation)
	})
	return s
}

// Stats returns a snapshot of the counters.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statsLocked()
}

// DetailedReport returns Stats plus the slowest timings and heap usage.
func (r *Recorder) DetailedReport() DetailedReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := heapInUse()
	return DetailedReport{
		Stats:         r.statsLocked(),
		TotalDuration: r.totalTime,
		Slowest:       slices.Clone(r.slowest),
		Memory:        MemoryUsage{Baseline: r.baseline, Current: cur, Delta: int64(cur) - int64(r.baseline)},
	}
}

// Recommendations turns the counters into tuning hints.
func (r *Recorder) Recommendations() []string {
	rep := r.DetailedReport()
	var out []string
	if rep.CacheHits+rep.CacheMisses > 0 && rep.CacheHitRate < LowHitRatePercent {
		out = append(out, "Consider increasing cache size or adjusting cache strategy - low hit rate detected")
	}
	var slow []string
	frequent := false
	for _, op := range rep.Operations {
		if op.Avg > SlowOperation {
			slow = append(slow, op.Operation)
		}
		if op.Count > FrequentOperation {
			frequent = true
		}
	}
	if len(slow) > 0 {
		out = append(out, fmt.Sprintf("Optimize slow operations: %s", strings.Join(slow, ", ")))
	}
	if rep.Memory.Delta > HighMemoryDelta {
		out = append(out, "High memory usage detected - consider implementing memory cleanup")
	}
	if frequent {
		out = append(out, "Consider caching results for frequently called operations")
	}
	return out
}

// LiveStats returns the running totals.
func (r *Recorder) LiveStats() LiveStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	ls := LiveStats{
		ActiveTimings:   len(r.active),
		TotalOperations: r.finished,
		Uptime:          r.clock.Since(r.started),
		CacheHitRate:    hitRate(r.hits, r.misses),
	}
	if r.finished > 0 {
		ls.AvgOperationTime = r.totalTime / time.Duration(r.finished)
	}
	return ls
}

// Reset clears every counter and restarts the uptime clock.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.resetLocked()
	r.mu.Unlock()
}

func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapInuse
}

// NoOp records nothing.
type NoOp struct{}

func (NoOp) StartTiming(string) string      { return "" }
func (NoOp) EndTiming(string) time.Duration { return 0 }
func (NoOp) RecordCacheHit(string)          {}
func (NoOp) RecordCacheMiss(string)         {}
func (NoOp) Stats() Stats                   { return Stats{} }
func (NoOp) DetailedReport() DetailedReport { return DetailedReport{} }
func (NoOp) Recommendations() []string      { return nil }
func (NoOp) LiveStats() LiveStats           { return LiveStats{} }
func (NoOp) Reset()                         {}

var (
	_ Monitor = (*Recorder)(nil)
	_ Monitor = NoOp{}
)
