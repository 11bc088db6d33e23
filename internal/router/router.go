package router

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"lpcfmt/internal/format"
	"lpcfmt/internal/tree"
)

// DefaultCacheSize bounds the route cache.
const DefaultCacheSize = 1024

// defaultStrategyID keys routes of a context with no strategy applied.
const defaultStrategyID = "default"

// ErrInvalidRoute is returned by RegisterRoute for a route that cannot be dispatched.
var ErrInvalidRoute = errors.New("router: invalid route")

// Condition narrows a route to the nodes it accepts.
type Condition func(n *tree.Node, ctx *format.Context) bool

// Route binds one node kind to a category formatter operation.
type Route struct {
	Kind          tree.NodeKind
	Category      format.Category
	Operation     format.Operation
	Cacheable     bool
	EstimatedCost int
	Condition     Condition
}

func (r Route) String() string {
	return r.Category.String() + "." + r.Operation.String()
}

// RouteUsage is one row of the most-used table.
type RouteUsage struct {
	Kind  tree.NodeKind `json:"kind"`
	Count int           `json:"count"`
}

// Stats is a snapshot of router counters.
type Stats struct {
	TotalRequests    int          `json:"totalRequests"`
	CacheHits        int          `json:"cacheHits"`
	CacheMisses      int          `json:"cacheMisses"`
	CacheHitRate     float64      `json:"cacheHitRate"`
	CacheSize        int          `json:"cacheSize"`
	RegisteredRoutes int          `json:"registeredRoutes"`
	AvgEstimatedCost float64      `json:"avgEstimatedCost"`
	TotalRoutes      int          `json:"totalRoutes"`
	SuccessfulRoutes int          `json:"successfulRoutes"`
	FailedRoutes     int          `json:"failedRoutes"`
	SuccessRate      float64      `json:"successRate"`
	MostUsedRoutes   []RouteUsage `json:"mostUsedRoutes"`
}

// Router maps node kinds to formatter operations and caches the decisions per
// strategy. It is safe for concurrent use.
type Router struct {
	mu     sync.Mutex
	routes map[tree.NodeKind]Route
	cache  *lru.Cache[string, Route]
	deps   map[format.Category][]format.Category
	log    *zap.SugaredLogger

	requests   int
	hits       int
	misses     int
	total      int
	successful int
	failed     int
	usage      map[tree.NodeKind]int
}

// New builds a router with the stock route table and dependency graph.
// A nil logger disables logging.
func New(log *zap.SugaredLogger) *Router {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cache, err := lru.New[string, Route](DefaultCacheSize)
	if err != nil {
		panic(fmt.Sprintf("router: route cache: %v", err))
	}
	r := &Router{
		routes: make(map[tree.NodeKind]Route, len(defaultRoutes)),
		cache:  cache,
		deps:   make(map[format.Category][]format.Category),
		log:    log,
		usage:  make(map[tree.NodeKind]int),
	}
	for _, rt := range defaultRoutes {
		r.routes[rt.Kind] = rt
	}
	r.addDependency(format.CategoryStatement, format.CategoryExpression)
	r.addDependency(format.CategoryDeclaration, format.CategoryExpression)
	r.addDependency(format.CategoryBlock, format.CategoryStatement)
	r.addDependency(format.CategoryBlock, format.CategoryDeclaration)
	r.addDependency(format.CategoryBlock, format.CategoryExpression)
	r.addDependency(format.CategoryBlock, format.CategoryLiteral)
	return r
}

func cacheKey(kind tree.NodeKind, strategyID string) string {
	if strategyID == "" {
		strategyID = defaultStrategyID
	}
	return kind.String() + "-" + strategyID
}

// Route resolves the operation for n. A cached decision is returned without
// re-checking the condition; a route whose condition rejects n counts as a
// failure and yields false.
func (r *Router) Route(n *tree.Node, ctx *format.Context) (Route, bool) {
	if n == nil {
		return Route{}, false
	}
	kind := n.Kind()
	strategyID := ""
	if ctx != nil {
		strategyID = ctx.StrategyID
	}
	key := cacheKey(kind, strategyID)

	r.mu.Lock()
	r.requests++
	r.total++
	if rt, ok := r.cache.Get(key); ok {
		r.hits++
		r.usage[kind]++
		r.mu.Unlock()
		return rt, true
	}
	r.misses++
	rt, ok := r.routes[kind]
	r.mu.Unlock()

	if !ok {
		r.fail(kind, "no route")
		return Route{}, false
	}
	// conditions run outside the lock: they may inspect the context freely.
	if rt.Condition != nil && !rt.Condition(n, ctx) {
		r.fail(kind, "condition rejected node")
		return Route{}, false
	}

	r.mu.Lock()
	if rt.Cacheable {
		r.cache.Add(key, rt)
	}
	r.successful++
	r.usage[kind]++
	r.mu.Unlock()
	return rt, true
}

func (r *Router) fail(kind tree.NodeKind, why string) {
	r.mu.Lock()
	r.failed++
	r.mu.Unlock()
	r.log.Debugw("route miss", "kind", kind.String(), "reason", why)
}

// RegisterRoute adds or replaces the route of rt.Kind and drops its cached
// decisions.
func (r *Router) RegisterRoute(rt Route) error {
	if rt.Kind == tree.KindInvalid || rt.Kind == tree.Terminal {
		return fmt.Errorf("%w: kind %s", ErrInvalidRoute, rt.Kind)
	}
	if rt.Operation == format.OpInvalid {
		return fmt.Errorf("%w: no operation for %s", ErrInvalidRoute, rt.Kind)
	}
	r.mu.Lock()
	r.routes[rt.Kind] = rt
	r.invalidateLocked(rt.Kind)
	r.mu.Unlock()
	r.log.Debugw("route registered", "kind", rt.Kind.String(), "target", rt.String())
	return nil
}

// RemoveRoute drops the route of kind; it reports whether one existed.
func (r *Router) RemoveRoute(kind tree.NodeKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[kind]; !ok {
		return false
	}
	delete(r.routes, kind)
	r.invalidateLocked(kind)
	return true
}

// Lookup returns the registered route of kind without touching counters.
func (r *Router) Lookup(kind tree.NodeKind) (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routes[kind]
	return rt, ok
}

// AllRoutes returns the route table ordered by kind.
func (r *Router) AllRoutes() []Route {
	r.mu.Lock()
	out := make([]Route, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt)
	}
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b Route) int { return cmp.Compare(a.Kind, b.Kind) })
	return out
}

// InvalidateCache drops the cached decisions of kind under every strategy.
func (r *Router) InvalidateCache(kind tree.NodeKind) {
	r.mu.Lock()
	r.invalidateLocked(kind)
	r.mu.Unlock()
}

func (r *Router) invalidateLocked(kind tree.NodeKind) {
	prefix := kind.String() + "-"
	for _, key := range r.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			r.cache.Remove(key)
		}
	}
}

// ClearCache drops every cached decision.
func (r *Router) ClearCache() {
	r.mu.Lock()
	r.cache.Purge()
	r.mu.Unlock()
}

// CacheSize returns the number of cached decisions.
func (r *Router) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}

func (r *Router) addDependency(dependent, dependency format.Category) {
	r.deps[dependent] = append(r.deps[dependent], dependency)
}

// AddDependency records that dependent formats children through dependency.
func (r *Router) AddDependency(dependent, dependency format.Category) {
	r.mu.Lock()
	r.addDependency(dependent, dependency)
	r.mu.Unlock()
}

// Dependencies lists the categories cat delegates to.
func (r *Router) Dependencies(cat format.Category) []format.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.deps[cat])
}

// HasCyclicDependencies reports whether the dependency graph has a cycle.
func (r *Router) HasCyclicDependencies() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	visited := make(map[format.Category]bool)
	onStack := make(map[format.Category]bool)
	var visit func(format.Category) bool
	visit = func(c format.Category) bool {
		if onStack[c] {
			return true
		}
		if visited[c] {
			return false
		}
		visited[c] = true
		onStack[c] = true
		for _, d := range r.deps[c] {
			if visit(d) {
				return true
			}
		}
		onStack[c] = false
		return false
	}
	for _, c := range format.Categories() {
		if visit(c) {
			return true
		}
	}
	return false
}

// Stats returns a snapshot of the counters.
func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stats{
		TotalRequests:    r.requests,
		CacheHits:        r.hits,
		CacheMisses:      r.misses,
		CacheSize:        r.cache.Len(),
		RegisteredRoutes: len(r.routes),
		TotalRoutes:      r.total,
		SuccessfulRoutes: r.successful,
		FailedRoutes:     r.failed,
	}
	if r.requests > 0 {
		s.CacheHitRate = float64(r.hits) / float64(r.requests)
	}
	if r.total > 0 {
		s.SuccessRate = float64(r.successful) / float64(r.total)
	}
	cost := 0
	for _, rt := range r.routes {
		cost += rt.EstimatedCost
	}
	if len(r.routes) > 0 {
		s.AvgEstimatedCost = float64(cost) / float64(len(r.routes))
	}
	s.MostUsedRoutes = make([]RouteUsage, 0, len(r.usage))
	for k, c := range r.usage {
		s.MostUsedRoutes = append(s.MostUsedRoutes, RouteUsage{Kind: k, Count: c})
	}
	slices.SortFunc(s.MostUsedRoutes, func(a, b RouteUsage) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	if len(s.MostUsedRoutes) > 10 {
		s.MostUsedRoutes = s.MostUsedRoutes[:10]
	}
	return s
}

// ResetStats zeroes the counters; the route cache is kept.
func (r *Router) ResetStats() {
	r.mu.Lock()
	r.requests, r.hits, r.misses = 0, 0, 0
	r.total, r.successful, r.failed = 0, 0, 0
	r.usage = make(map[tree.NodeKind]int)
	r.mu.Unlock()
}
