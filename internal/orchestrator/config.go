package orchestrator

import (
	"time"

	"github.com/benbjohnson/clock"

	"lpcfmt/internal/format"
	"lpcfmt/internal/strategy"
)

// AutoStrategy as Config.DefaultStrategy lets the manager pick a strategy
// per request.
const AutoStrategy = "auto"

// Config tunes an Orchestrator.
type Config struct {
	// DefaultStrategy applies to requests that name no strategy.
	DefaultStrategy string

	EnableCache     bool
	CacheTTL        time.Duration
	MaxCacheSize    int
	CleanupInterval time.Duration

	EnablePerformanceMonitoring bool

	// MaxNodeCount caps the walk below any larger Options.MaxNodeCount;
	// text longer than MaxNodeCount*100 bytes is rejected up front.
	MaxNodeCount int
	Timeout      time.Duration

	EnableValidation bool
	// EnforceValidation makes a failed verdict fail the result; otherwise
	// the verdict only lands in the stats.
	EnforceValidation   bool
	StrictValidation    bool
	MaxValidationErrors int
	MinQualityScore     int

	Events Events
	Clock  clock.Clock
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		DefaultStrategy:             AutoStrategy,
		EnableCache:                 true,
		CacheTTL:                    5 * time.Minute,
		MaxCacheSize:                1000,
		CleanupInterval:             time.Minute,
		EnablePerformanceMonitoring: true,
		MaxNodeCount:                format.DefaultMaxNodes,
		Timeout:                     5 * time.Second,
		EnableValidation:            true,
		MaxValidationErrors:         10,
		MinQualityScore:             70,
	}
}

// Events are optional hooks fired along the pipeline. They run on the
// calling goroutine and must not block.
type Events struct {
	OnFormatStart     func(req *format.Request)
	OnFormatEnd       func(res Result)
	OnFormatError     func(err error, fctx *format.Context)
	OnCacheHit        func(key string)
	OnCacheMiss       func(key string)
	OnStrategyApplied func(s strategy.Strategy)
}

func (e Events) formatStart(req *format.Request) {
	if e.OnFormatStart != nil {
		e.OnFormatStart(req)
	}
}

func (e Events) formatEnd(res Result) {
	if e.OnFormatEnd != nil {
		e.OnFormatEnd(res)
	}
}

func (e Events) formatError(err error, fctx *format.Context) {
	if e.OnFormatError != nil {
		e.OnFormatError(err, fctx)
	}
}

func (e Events) cacheHit(key string) {
	if e.OnCacheHit != nil {
		e.OnCacheHit(key)
	}
}

func (e Events) cacheMiss(key string) {
	if e.OnCacheMiss != nil {
		e.OnCacheMiss(key)
	}
}

func (e Events) strategyApplied(s strategy.Strategy) {
	if e.OnStrategyApplied != nil {
		e.OnStrategyApplied(s)
	}
}
