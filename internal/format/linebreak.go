package format

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"lpcfmt/internal/tree"
)

// WrapContext names the construct whose element list is being laid out.
type WrapContext uint8

const (
	WrapDefault WrapContext = iota
	WrapParameters
	WrapArguments
	WrapArray
	WrapMapping
	WrapExpressions
)

// LineBreakManager decides where lines break. It reads the walk's Layout, so
// strategy adjustments are visible without reconfiguration.
type LineBreakManager struct {
	layout *Layout
	indent *IndentManager
}

func NewLineBreakManager(layout *Layout, indent *IndentManager) *LineBreakManager {
	return &LineBreakManager{layout: layout, indent: indent}
}

func (lb *LineBreakManager) maxLine() int {
	if lb.layout.MaxLineLength > 0 {
		return lb.layout.MaxLineLength
	}
	return 100
}

// EstimateLineLength is the display width of text at the current indentation
// plus a penalty for operator density.
func (lb *LineBreakManager) EstimateLineLength(text string) int {
	ops := strings.Count(text, "+") + strings.Count(text, "-") + strings.Count(text, "*") +
		strings.Count(text, "/") + strings.Count(text, "=") + strings.Count(text, "<") +
		strings.Count(text, ">") + strings.Count(text, "!") + strings.Count(text, "&") +
		strings.Count(text, "|")
	indent := 0
	if lb.indent != nil {
		indent = lb.indent.Level() * lb.indent.Size()
	}
	return runewidth.StringWidth(text) + indent + min(ops*2, 10)
}

// ShouldWrap reports whether elements joined by sep would overflow threshold
// columns. A threshold <= 0 means 80% of the maximum line length.
func (lb *LineBreakManager) ShouldWrap(elements []string, sep string, threshold int) bool {
	if len(elements) <= 1 {
		return false
	}
	if len(elements) > 5 {
		return true
	}
	if threshold <= 0 {
		threshold = lb.maxLine() * 8 / 10
	}
	return lb.EstimateLineLength(strings.Join(elements, sep)) > threshold
}

// TooLong reports whether text, placed at the current indentation, runs past
// the maximum line length. Only the longest line counts.
func (lb *LineBreakManager) TooLong(text string) bool {
	indent := 0
	if lb.indent != nil {
		indent = lb.indent.Level() * lb.indent.Size()
	}
	for line := range strings.SplitSeq(text, "\n") {
		if runewidth.StringWidth(line)+indent > lb.maxLine() {
			return true
		}
	}
	return false
}

// ShouldWrapInContext applies the per-construct element-count rules.
func (lb *LineBreakManager) ShouldWrapInContext(ctx WrapContext, count int) bool {
	switch ctx {
	case WrapParameters:
		return count > 3 || count*15+20 > lb.maxLine()*7/10
	case WrapArguments, WrapExpressions:
		return count > 4
	case WrapArray:
		return count > lb.layout.ArrayWrapThreshold
	case WrapMapping:
		t := lb.layout.MappingWrapThreshold
		return t >= 0 && count > t
	default:
		return count > 5
	}
}

// StatementSeparator returns the separator between two adjacent top-level
// items: one newline, plus a blank line around functions, after an include
// group and after a block of variables.
func (lb *LineBreakManager) StatementSeparator(cur, next *tree.Node) string {
	sep := "\n"
	is := func(n *tree.Node, k tree.NodeKind) bool { return n != nil && n.Kind() == k }
	switch {
	case is(cur, tree.FunctionDef) || is(next, tree.FunctionDef):
		sep += "\n"
	case is(cur, tree.IncludeStatement) && !is(next, tree.IncludeStatement):
		sep += "\n"
	case is(cur, tree.VariableDecl) && !is(next, tree.VariableDecl) && !is(next, tree.IncludeStatement):
		sep += "\n"
	}
	return sep
}

// MinBlankLines is the number of blank lines StatementSeparator asks for.
func (lb *LineBreakManager) MinBlankLines(cur, next *tree.Node) int {
	return len(lb.StatementSeparator(cur, next)) - 1
}
