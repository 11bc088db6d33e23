// Package orchestrator is the entry point of the formatting pipeline: it
// checks the request, consults the result cache, picks and applies a
// strategy, walks the tree, validates the output and degrades to the
// original text on any failure.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"lpcfmt/internal/cache"
	"lpcfmt/internal/format"
	"lpcfmt/internal/perf"
	"lpcfmt/internal/router"
	"lpcfmt/internal/strategy"
	"lpcfmt/internal/validate"
	"lpcfmt/internal/visitor"
)

// bytesPerNode converts MaxNodeCount into the accepted text length.
const bytesPerNode = 100

// Cache types reported to the monitor.
const (
	resultCacheType = "formatting-result"
	itemCacheType   = "incremental-item"
)

var (
	// ErrInvalidRequest rejects a request before any work is done.
	ErrInvalidRequest = errors.New("orchestrator: invalid formatting request")
	// ErrTooLarge rejects text above the node budget.
	ErrTooLarge = errors.New("orchestrator: file too large for formatting")
	// ErrValidation fails a result whose verdict failed under enforcement.
	ErrValidation = errors.New("orchestrator: formatted text failed validation")
)

// Orchestrator runs formatting requests. It is safe for concurrent use as
// long as every call gets its own format.Context.
type Orchestrator struct {
	cfg        Config
	log        *zap.SugaredLogger
	clock      clock.Clock
	strategies *strategy.Manager
	router     *router.Router
	validator  *validate.Validator
	monitor    perf.Monitor
	cache      *cache.Cache
	flight     singleflight.Group
}

// New wires an orchestrator. Call Dispose when done to stop the cache sweep.
func New(cfg Config, log *zap.SugaredLogger) *Orchestrator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.MaxNodeCount <= 0 {
		cfg.MaxNodeCount = format.DefaultMaxNodes
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = AutoStrategy
	}
	o := &Orchestrator{
		cfg:        cfg,
		log:        log,
		clock:      cfg.Clock,
		strategies: strategy.NewManager(log.Named("strategy")),
		router:     router.New(log.Named("router")),
		validator: validate.New(validate.Config{
			StrictMode:      cfg.StrictValidation,
			MaxErrors:       cfg.MaxValidationErrors,
			MinQualityScore: cfg.MinQualityScore,
			Timeout:         validate.DefaultConfig().Timeout,
		}).WithClock(cfg.Clock),
		monitor: perf.NoOp{},
	}
	if cfg.EnablePerformanceMonitoring {
		o.monitor = perf.NewRecorder(cfg.Clock)
	}
	if cfg.EnableCache {
		o.cache = cache.New(cache.Config{
			MaxSize:         cfg.MaxCacheSize,
			TTL:             cfg.CacheTTL,
			CleanupInterval: cfg.CleanupInterval,
			Clock:           cfg.Clock,
			Logger:          log.Named("cache"),
		})
	}
	return o
}

// flightResult is what a collapsed run hands to the callers that joined it.
type flightResult struct {
	res Result
	// canceled reports that the leader's own context was done.
	canceled bool
}

// Format runs req on a fresh context. Identical concurrent requests share
// one run when the result cache is on; a caller that joined a run canceled
// by its leader's context runs again on its own.
func (o *Orchestrator) Format(ctx context.Context, req *format.Request) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	key, keyErr := o.cacheKey(req)
	if keyErr != nil || o.cache == nil {
		return o.run(ctx, req, nil, key, keyErr)
	}
	led := false
	v, _, _ := o.flight.Do(key, func() (any, error) {
		led = true
		res := o.run(ctx, req, nil, key, nil)
		return flightResult{res: res, canceled: ctx.Err() != nil}, nil
	})
	fr := v.(flightResult)
	if led {
		return fr.res
	}
	if fr.canceled && !fr.res.Success && ctx.Err() == nil {
		o.log.Debugw("in-flight twin was canceled, running again", "key", key)
		return o.run(ctx, req, nil, key, nil)
	}
	o.log.Debugw("request collapsed into an in-flight twin", "key", key)
	res := fr.res.clone()
	res.RequestID = uuid.NewString()
	o.cfg.Events.formatStart(req)
	o.cfg.Events.formatEnd(res)
	return res
}

// FormatWith runs req on a caller-owned context. fctx must not be used by
// another call at the same time; nil builds one from req.Options.
func (o *Orchestrator) FormatWith(ctx context.Context, req *format.Request, fctx *format.Context) Result {
	key, err := o.cacheKey(req)
	return o.run(ctx, req, fctx, key, err)
}

// call carries the per-request state of run.
type call struct {
	id     string
	req    *format.Request
	fctx   *format.Context
	key    string
	log    *zap.SugaredLogger
	timer  *perf.Timer
	stats  Stats
	chosen strategy.Strategy
}

func (o *Orchestrator) run(ctx context.Context, req *format.Request, fctx *format.Context, key string, keyErr error) (res Result) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := o.clock.Now()
	total := o.monitor.StartTiming("total-formatting")
	c := &call{id: uuid.NewString(), req: req, fctx: fctx, key: key, timer: perf.NewTimer(o.monitor)}
	c.log = o.log.With("request", c.id)

	defer func() {
		if p := recover(); p != nil {
			c.log.Errorw("formatting panicked", "panic", p)
			res = o.fail(c, fmt.Errorf("panic: %v", p))
		}
		res.RequestID = c.id
		res.Duration = o.clock.Since(start)
		res.Timings = c.timer.Report()
		o.monitor.EndTiming(total)
		o.cfg.Events.formatEnd(res)
	}()

	o.cfg.Events.formatStart(req)

	step := c.timer.Begin("validate-request")
	err := o.validateRequest(req)
	c.timer.End(step, "")
	if err == nil {
		err = keyErr
	}
	if err != nil {
		return o.fail(c, err)
	}

	if cached, ok := o.lookup(c); ok {
		return cached
	}

	if c.fctx == nil {
		if c.fctx, err = format.NewContext(req.Options); err != nil {
			return o.fail(c, err)
		}
	}
	if c.fctx.Source == nil {
		c.fctx.Source = req.File
	}
	if lim := o.cfg.MaxNodeCount; lim < c.fctx.Core.MaxNodes() {
		c.fctx.Core.SetMaxNodes(lim)
	}

	if err := o.applyStrategy(c); err != nil {
		return o.fail(c, err)
	}

	text, err := o.execute(ctx, c)
	if err != nil {
		return o.fail(c, err)
	}

	res = Result{
		FormattedText:   text,
		Success:         true,
		Errors:          c.fctx.Errors.Errors(),
		StrategyApplied: c.chosen.Name(),
	}
	if err := o.validateResult(ctx, c, &res); err != nil {
		return o.fail(c, err)
	}
	res.Stats = c.stats
	o.store(c, res)
	return res
}

// validateRequest rejects a request before any work: text and tree are
// required and the text must fit the node budget.
func (o *Orchestrator) validateRequest(req *format.Request) error {
	switch {
	case req == nil:
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	case req.Text == "" || req.Tree == nil:
		return fmt.Errorf("%w: missing text or tree", ErrInvalidRequest)
	case req.Mode != "" && !req.Mode.Valid():
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	case req.Mode == format.ModeSelection && req.Selection == nil:
		return fmt.Errorf("%w: selection mode needs a selection range", ErrInvalidRequest)
	case len(req.Text) > o.cfg.MaxNodeCount*bytesPerNode:
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(req.Text), o.cfg.MaxNodeCount*bytesPerNode)
	}
	if !o.validator.ValidateParseTree(req.Tree) {
		return fmt.Errorf("%w: malformed parse tree", ErrInvalidRequest)
	}
	return nil
}

func hash(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

func optionsHash(opts format.Options) (string, error) {
	raw, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("orchestrator: encode options: %w", err)
	}
	return hash(raw), nil
}

func strategyOrAuto(id string) string {
	if id == "" {
		return AutoStrategy
	}
	return id
}

// cacheKey fingerprints a request: text, options, mode and strategy. A
// selection request also carries its range.
func (o *Orchestrator) cacheKey(req *format.Request) (string, error) {
	if req == nil {
		return "", nil
	}
	oh, err := optionsHash(req.Options)
	if err != nil {
		return "", err
	}
	mode := req.Mode
	if mode == "" {
		mode = format.ModeFull
	}
	parts := []string{hash([]byte(req.Text)), oh, string(mode), strategyOrAuto(req.Strategy)}
	if mode == format.ModeSelection {
		parts = append(parts, selectionKey(req.Selection))
	}
	return strings.Join(parts, "-"), nil
}

func selectionKey(sel *format.Selection) string {
	if sel == nil {
		return "none"
	}
	return fmt.Sprintf("%d:%d", sel.Start, sel.End)
}

// lookup serves a cached result. A payload that does not decode is dropped
// and counts as a miss.
func (o *Orchestrator) lookup(c *call) (Result, bool) {
	if o.cache == nil {
		return Result{}, false
	}
	step := c.timer.Begin("cache-lookup")
	defer c.timer.End(step, "")
	if raw, ok := o.cache.Get(c.key); ok {
		var res Result
		err := json.Unmarshal([]byte(raw), &res)
		if err == nil {
			o.monitor.RecordCacheHit(resultCacheType)
			o.cfg.Events.cacheHit(c.key)
			res.Cached = true
			res.Stats.CacheHits, res.Stats.CacheMisses = 1, 0
			return res, true
		}
		c.log.Warnw("dropping corrupt cache entry", "key", c.key, "error", err)
		o.cache.Delete(c.key)
	}
	o.monitor.RecordCacheMiss(resultCacheType)
	o.cfg.Events.cacheMiss(c.key)
	c.stats.CacheMisses++
	return Result{}, false
}

// store caches successful results only.
func (o *Orchestrator) store(c *call, res Result) {
	if o.cache == nil || !res.Success {
		return
	}
	step := c.timer.Begin("cache-store")
	defer c.timer.End(step, "")
	raw, err := json.Marshal(res)
	if err != nil {
		c.log.Warnw("cannot cache result", "error", err)
		return
	}
	o.cache.Set(c.key, string(raw))
}

func (o *Orchestrator) selectStrategy(req *format.Request) (strategy.Strategy, error) {
	if req.Strategy != "" {
		return o.strategies.Lookup(req.Strategy)
	}
	if o.cfg.DefaultStrategy != AutoStrategy {
		return o.strategies.Lookup(o.cfg.DefaultStrategy)
	}
	return o.strategies.SelectBest(req), nil
}

func (o *Orchestrator) applyStrategy(c *call) error {
	step := c.timer.Begin("strategy")
	s, err := o.selectStrategy(c.req)
	if err != nil {
		c.timer.End(step, "")
		return err
	}
	c.fctx.StrategyID = s.Name()
	if err := s.Apply(c.fctx, c.req); err != nil {
		c.timer.End(step, s.Name())
		return fmt.Errorf("strategy %s: %w", s.Name(), err)
	}
	c.timer.End(step, s.Name())
	c.chosen = s
	o.cfg.Events.strategyApplied(s)
	c.log.Debugw("strategy applied", "strategy", s.Name(), "mode", c.req.Mode)
	return nil
}

// execute walks the tree the way the request mode asks for.
func (o *Orchestrator) execute(ctx context.Context, c *call) (string, error) {
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}
	step := c.timer.Begin("core-formatting")
	v := visitor.New(ctx, c.fctx, o.router, c.log.Named("visitor"))

	var hook visitor.ItemHook
	switch c.req.Mode {
	case format.ModeQuick:
		c.fctx.Quick = true
	case format.ModeSelection:
		sel, err := newSelection(c.req)
		if err != nil {
			c.timer.End(step, "")
			return "", err
		}
		hook = sel
	case format.ModeIncremental:
		if o.cache != nil {
			hook = &itemMemo{o: o, c: c}
		}
	}

	text := v.Walk(c.req.Tree, hook)
	vs := v.Stats()
	c.stats.NodesProcessed = vs.NodesVisited
	c.stats.FormattersUsed = vs.FormattersUsed
	c.stats.ErrorsFixed = c.fctx.Errors.Count()
	c.timer.End(step, fmt.Sprintf("%d nodes", vs.NodesVisited))
	if err := v.Err(); err != nil {
		return "", err
	}
	return text, nil
}

// validateResult scores the output. Quick mode and a disabled validator
// skip it.
func (o *Orchestrator) validateResult(ctx context.Context, c *call, res *Result) error {
	if !o.cfg.EnableValidation || c.req.Mode == format.ModeQuick {
		return nil
	}
	step := c.timer.Begin("validate-result")
	verdict := o.validator.Validate(ctx, validate.Input{
		Original:  c.req.Text,
		Formatted: res.FormattedText,
		Tree:      c.req.Tree,
		Context:   c.fctx,
	})
	c.timer.End(step, fmt.Sprintf("score %d", verdict.Score))
	score, issues := verdict.Score, verdict.Stats.IssuesFound
	c.stats.ValidationScore, c.stats.ValidationErrors = &score, &issues
	if verdict.Passed {
		return nil
	}
	c.log.Infow("validation failed", "score", score, "severity", verdict.Severity, "issues", verdict.Messages)
	if o.cfg.EnforceValidation || !res.Success {
		res.Errors = append(res.Errors, verdict.Messages...)
		return fmt.Errorf("%w: score %d, severity %s", ErrValidation, score, verdict.Severity)
	}
	return nil
}

// fail builds the fallback result: the original text, unformatted, with the
// collected errors and the cause.
func (o *Orchestrator) fail(c *call, err error) Result {
	var errs []string
	if c.fctx != nil {
		errs = c.fctx.Errors.Errors()
	}
	errs = append(errs, "Formatting failed: "+err.Error())
	text := ""
	if c.req != nil {
		text = c.req.Text
	}
	c.log.Warnw("formatting failed, returning original text", "error", err)
	o.cfg.Events.formatError(err, c.fctx)
	return Result{
		FormattedText:   text,
		Success:         false,
		Errors:          errs,
		Stats:           c.stats,
		StrategyApplied: FallbackStrategy,
	}
}

// RegisterStrategy admits a custom or replacement strategy.
func (o *Orchestrator) RegisterStrategy(s strategy.Strategy) error {
	return o.strategies.Register(s)
}

// RegisterRoute adds or replaces the route of a node kind.
func (o *Orchestrator) RegisterRoute(rt router.Route) error {
	return o.router.RegisterRoute(rt)
}

// Strategies exposes the strategy registry.
func (o *Orchestrator) Strategies() *strategy.Manager { return o.strategies }

// Router exposes the route table.
func (o *Orchestrator) Router() *router.Router { return o.router }

// Validator exposes the rule engine.
func (o *Orchestrator) Validator() *validate.Validator { return o.validator }

// Monitor exposes the performance monitor.
func (o *Orchestrator) Monitor() perf.Monitor { return o.monitor }

// Cache returns the result cache, nil when caching is off.
func (o *Orchestrator) Cache() *cache.Cache { return o.cache }

// GetPerformanceStats returns the monitor's counters.
func (o *Orchestrator) GetPerformanceStats() perf.Stats { return o.monitor.Stats() }

// GetCacheStats returns the result cache counters; zero when caching is off.
func (o *Orchestrator) GetCacheStats() cache.Stats {
	if o.cache == nil {
		return cache.Stats{}
	}
	return o.cache.Stats()
}

// ClearCache drops every cached result and route.
func (o *Orchestrator) ClearCache() {
	if o.cache != nil {
		o.cache.Clear()
	}
	o.router.ClearCache()
}

// Dispose stops the cache sweep and drops all cached state.
func (o *Orchestrator) Dispose() {
	if o.cache != nil {
		o.cache.Dispose()
		o.cache.Clear()
	}
	o.router.ClearCache()
	o.monitor.Reset()
}
