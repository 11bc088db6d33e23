package perf

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lpcfmt"

// Collector exposes a Recorder's counters to Prometheus. Values are read at
// scrape time; nothing is double-booked.
type Collector struct {
	rec *Recorder

	opsTotal   *prometheus.Desc
	opsSeconds *prometheus.Desc
	hits       *prometheus.Desc
	misses     *prometheus.Desc
	active     *prometheus.Desc
}

// NewCollector wraps rec.
func NewCollector(rec *Recorder) *Collector {
	return &Collector{
		rec: rec,
		opsTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "operations_total"),
			"Finished timed operations.",
			[]string{"operation"}, nil,
		),
		opsSeconds: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "operation_duration_seconds_total"),
			"Total time spent per operation.",
			[]string{"operation"}, nil,
		),
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "hits_total"),
			"Cache hits by cache type.",
			[]string{"type"}, nil,
		),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "misses_total"),
			"Cache misses by cache type.",
			[]string{"type"}, nil,
		),
		active: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "active_timings"),
			"Timings started and not yet ended.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.opsTotal
	ch <- c.opsSeconds
	ch <- c.hits
	ch <- c.misses
	ch <- c.active
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.rec.Stats()
	for _, op := range s.Operations {
		ch <- prometheus.MustNewConstMetric(c.opsTotal, prometheus.CounterValue, float64(op.Count), op.Operation)
		ch <- prometheus.MustNewConstMetric(c.opsSeconds, prometheus.CounterValue, op.Total.Seconds(), op.Operation)
	}
	for typ, n := range s.HitsByType {
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(n), typ)
	}
	for typ, n := range s.MissesByType {
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(n), typ)
	}
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(c.rec.LiveStats().ActiveTimings))
}

var _ prometheus.Collector = (*Collector)(nil)
