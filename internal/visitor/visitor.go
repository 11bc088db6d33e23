// Package visitor walks a syntax tree and dispatches every non-terminal to the
// category formatter the router names for it.
package visitor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"lpcfmt/internal/format"
	"lpcfmt/internal/router"
	"lpcfmt/internal/tree"
)

// checkEvery is how many non-terminals are visited between deadline checks.
const checkEvery = 256

// NodeLimitMessage is recorded once when the walk hits the node ceiling.
const NodeLimitMessage = "Node limit exceeded, stopping formatting to prevent infinite recursion"

var (
	// ErrNodeLimit stops a walk that visited more non-terminals than allowed.
	ErrNodeLimit = errors.New("visitor: node limit exceeded")
	// ErrCanceled stops a walk whose context was canceled or timed out.
	ErrCanceled = errors.New("visitor: walk canceled")
)

// Router resolves the formatter operation of a node.
type Router interface {
	Route(n *tree.Node, ctx *format.Context) (router.Route, bool)
}

// Stats is a snapshot of walk counters.
type Stats struct {
	NodesVisited       int      `json:"nodesVisited"`
	RoutingAttempts    int      `json:"routingAttempts"`
	SuccessfulRoutings int      `json:"successfulRoutings"`
	FailedRoutings     int      `json:"failedRoutings"`
	SuccessRate        float64  `json:"successRate"`
	FailureRate        float64  `json:"failureRate"`
	Errors             int      `json:"errors"`
	FormattersUsed     []string `json:"formattersUsed"`
}

// Visitor is the tree walker bound to one formatting context. Like the
// context, it backs a single call.
type Visitor struct {
	ctx    context.Context
	fctx   *format.Context
	router Router
	log    *zap.SugaredLogger

	attempts   int
	successful int
	failed     int
	used       [8]bool
	stopped    error

	items map[*tree.Node]struct{}
	hook  ItemHook
}

// ItemHook lets a caller serve top-level items without walking them, and
// observe the text of the ones that were walked.
type ItemHook interface {
	Before(item *tree.Node) (string, bool)
	After(item *tree.Node, text string)
}

// New binds a visitor to fctx; formatters reach it through fctx.Visit.
// The walk stops early when ctx is done.
func New(ctx context.Context, fctx *format.Context, r Router, log *zap.SugaredLogger) *Visitor {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	v := &Visitor{ctx: ctx, fctx: fctx, router: r, log: log}
	fctx.BindVisitor(v)
	return v
}

// Err reports why the walk stopped early, if it did.
func (v *Visitor) Err() error { return v.stopped }

// Walk formats a whole tree. Children of root are top-level items: the
// deadline is checked before each of them and the item hook, if any, sees
// them.
func (v *Visitor) Walk(root *tree.Node, hook ItemHook) string {
	if root == nil {
		return ""
	}
	v.hook = hook
	v.items = make(map[*tree.Node]struct{}, root.ChildCount())
	for _, ch := range root.NonTerminals() {
		v.items[ch] = struct{}{}
	}
	defer func() { v.items, v.hook = nil, nil }()
	return v.Visit(root)
}

// Visit formats n and its subtree.
func (v *Visitor) Visit(n *tree.Node) string {
	if n == nil || v.stopped != nil {
		return ""
	}
	if n.IsTerminal() {
		return format.TerminalText(n)
	}
	if _, ok := v.items[n]; ok {
		return v.visitItem(n)
	}
	return v.visit(n)
}

func (v *Visitor) visitItem(n *tree.Node) string {
	if err := v.ctx.Err(); err != nil {
		v.cancel(err)
		return ""
	}
	if v.hook != nil {
		if text, ok := v.hook.Before(n); ok {
			return text
		}
	}
	out := v.visit(n)
	if v.hook != nil && v.stopped == nil {
		v.hook.After(n, out)
	}
	return out
}

func (v *Visitor) visit(n *tree.Node) (out string) {
	if !v.admit() {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			out = v.recoverText(n, fmt.Errorf("%v", r))
		}
	}()
	return v.routeAndFormat(n)
}

// admit counts n against the ceiling and polls the deadline.
func (v *Visitor) admit() bool {
	core := v.fctx.Core
	if !core.CheckNodeLimit() {
		v.stop(ErrNodeLimit, NodeLimitMessage)
		return false
	}
	if core.NodeCount()%checkEvery == 0 {
		if err := v.ctx.Err(); err != nil {
			v.cancel(err)
			return false
		}
	}
	return true
}

func (v *Visitor) cancel(cause error) {
	v.stop(fmt.Errorf("%w: %w", ErrCanceled, cause), "Formatting timed out: "+cause.Error())
}

func (v *Visitor) stop(err error, msg string) {
	v.stopped = err
	v.fctx.AddError(msg, nil)
	v.log.Warnw("walk stopped", "reason", err, "nodes", v.fctx.Core.NodeCount())
}

func (v *Visitor) routeAndFormat(n *tree.Node) string {
	v.attempts++
	if v.router != nil {
		if rt, ok := v.router.Route(n, v.fctx); ok {
			v.successful++
			return v.invoke(n, rt)
		}
	}
	v.failed++
	return v.visitDefault(n)
}

// invoke runs the routed operation; any error or panic is recorded and the
// subtree falls back to child concatenation.
func (v *Visitor) invoke(n *tree.Node, rt router.Route) string {
	f := v.fctx.Formatter(rt.Category)
	if f == nil {
		v.fctx.AddError("Formatter not found: "+rt.Category.String(), n)
		return v.visitDefault(n)
	}
	out, err := v.call(f, rt.Operation, n)
	if err != nil {
		if v.stopped != nil {
			return ""
		}
		v.fctx.AddError(fmt.Sprintf("Error in %s: %v", rt, err), n)
		v.log.Debugw("formatter failed", "route", rt.String(), "error", err)
		return v.visitDefault(n)
	}
	if int(rt.Category) < len(v.used) {
		v.used[rt.Category] = true
	}
	return out
}

func (v *Visitor) call(f format.CategoryFormatter, op format.Operation, n *tree.Node) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f.Format(op, n)
}

// visitDefault concatenates the visited children.
func (v *Visitor) visitDefault(n *tree.Node) string {
	var sb strings.Builder
	for _, ch := range n.Children() {
		sb.WriteString(v.Visit(ch))
	}
	return sb.String()
}

// recoverText is the last resort for a node whose walk blew up: every
// terminal's text, trimmed and space-joined.
func (v *Visitor) recoverText(n *tree.Node, cause error) string {
	v.fctx.AddError(fmt.Sprintf("Error visiting %s: %v", n.Kind(), cause), n)
	v.log.Errorw("visit failed, extracting text", "kind", n.Kind().String(), "error", cause)
	var parts []string
	for _, t := range n.TerminalTexts() {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// NodeCount returns the number of non-terminals visited so far.
func (v *Visitor) NodeCount() int { return v.fctx.Core.NodeCount() }

// ResetNodeCount zeroes the node counter and clears an early stop.
func (v *Visitor) ResetNodeCount() {
	v.fctx.Core.ResetNodeCount()
	v.stopped = nil
}

// Stats returns a snapshot of the counters.
func (v *Visitor) Stats() Stats {
	s := Stats{
		NodesVisited:       v.NodeCount(),
		RoutingAttempts:    v.attempts,
		SuccessfulRoutings: v.successful,
		FailedRoutings:     v.failed,
		Errors:             v.fctx.Errors.Count(),
	}
	if v.attempts > 0 {
		s.SuccessRate = float64(v.successful) / float64(v.attempts)
		s.FailureRate = float64(v.failed) / float64(v.attempts)
	}
	for _, cat := range format.Categories() {
		if v.used[cat] {
			s.FormattersUsed = append(s.FormattersUsed, cat.String())
		}
	}
	slices.Sort(s.FormattersUsed)
	return s
}

// ResetStats zeroes the routing counters and the node counter.
func (v *Visitor) ResetStats() {
	v.attempts, v.successful, v.failed = 0, 0, 0
	v.used = [8]bool{}
	v.ResetNodeCount()
}
