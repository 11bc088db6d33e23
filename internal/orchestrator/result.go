package orchestrator

import (
	"slices"
	"time"

	"lpcfmt/internal/perf"
)

// FallbackStrategy is the StrategyApplied of a degraded result.
const FallbackStrategy = "fallback"

// Stats describes one call.
type Stats struct {
	NodesProcessed int      `json:"nodesProcessed"`
	CacheHits      int      `json:"cacheHits"`
	CacheMisses    int      `json:"cacheMisses"`
	FormattersUsed []string `json:"formattersUsed"`
	// ErrorsFixed counts the formatter failures the walk recovered from.
	ErrorsFixed      int  `json:"errorsFixed"`
	ValidationScore  *int `json:"validationScore,omitempty"`
	ValidationErrors *int `json:"validationErrors,omitempty"`
}

// Result is what Format returns. It is never mutated after return.
type Result struct {
	FormattedText   string        `json:"formattedText"`
	Success         bool          `json:"success"`
	Errors          []string      `json:"errors"`
	Stats           Stats         `json:"stats"`
	StrategyApplied string        `json:"strategyApplied"`
	Duration        time.Duration `json:"duration"`
	RequestID       string        `json:"requestId"`
	// Cached is set when the result came from the result cache.
	Cached  bool        `json:"cached,omitempty"`
	Timings perf.Report `json:"timings"`
}

// clone returns a copy that shares no slices or pointers with r.
func (r Result) clone() Result {
	r.Errors = slices.Clone(r.Errors)
	r.Stats.FormattersUsed = slices.Clone(r.Stats.FormattersUsed)
	r.Stats.ValidationScore = cloneInt(r.Stats.ValidationScore)
	r.Stats.ValidationErrors = cloneInt(r.Stats.ValidationErrors)
	r.Timings.Phases = slices.Clone(r.Timings.Phases)
	return r
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
