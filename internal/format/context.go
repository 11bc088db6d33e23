package format

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"lpcfmt/internal/source"
	"lpcfmt/internal/tree"
)

// Visitor walks a subtree and returns its formatted text.
type Visitor interface {
	Visit(n *tree.Node) string
}

// CategoryFormatter formats the node kinds of one category. Format returns
// ErrUnsupported for operations the category does not own.
type CategoryFormatter interface {
	Category() Category
	Operations() []Operation
	Format(op Operation, n *tree.Node) (string, error)
}

// Context carries everything one walk reads and mutates. A Context backs
// exactly one formatting call and is never shared.
type Context struct {
	Options Options
	Layout  Layout
	Indent  *IndentManager
	Lines   *LineBreakManager
	Errors  ErrorCollector
	Core    *Core

	// StrategyID names the strategy applied to this context; routes are
	// cached per strategy.
	StrategyID string
	// Quick disables wrapping decisions.
	Quick bool
	// Source backs verbatim copies of unparsed regions.
	Source *source.File

	visitor    Visitor
	formatters [categoryCount]CategoryFormatter
}

// NewContext builds a fresh context from a private copy of opts, with the
// five stock category formatters installed.
func NewContext(opts Options) (*Context, error) {
	var own Options
	if err := deepcopy.Copy(&own, &opts); err != nil {
		return nil, fmt.Errorf("format: copy options: %w", err)
	}
	if own.MaxNodeCount <= 0 {
		own.MaxNodeCount = DefaultMaxNodes
	}
	ctx := &Context{
		Options: own,
		Layout:  LayoutFromOptions(own),
		Errors:  NewCollector(DefaultMaxErrors),
	}
	ctx.Indent = NewIndentManager(own)
	ctx.Lines = NewLineBreakManager(&ctx.Layout, ctx.Indent)
	ctx.Core = NewCore(&ctx.Layout, &ctx.Options)
	for _, f := range NewFormatters(ctx) {
		ctx.SetFormatter(f)
	}
	return ctx, nil
}

// SyncLayout pushes Layout changes made by a strategy into the indent manager.
func (c *Context) SyncLayout() {
	c.Indent.Configure(c.Layout.IndentSize, c.Layout.UseTabs)
}

// BindVisitor installs the walker formatters use for child nodes.
func (c *Context) BindVisitor(v Visitor) { c.visitor = v }

// SetFormatter fills the slot of f's category.
func (c *Context) SetFormatter(f CategoryFormatter) {
	if f == nil {
		return
	}
	if cat := f.Category(); cat < categoryCount {
		c.formatters[cat] = f
	}
}

// Formatter returns the formatter of cat, or nil when the slot is empty.
func (c *Context) Formatter(cat Category) CategoryFormatter {
	if cat >= categoryCount {
		return nil
	}
	return c.formatters[cat]
}

// Visit formats a child node through the bound visitor. Without one, it
// concatenates terminal text.
func (c *Context) Visit(n *tree.Node) string {
	if n == nil {
		return ""
	}
	if c.visitor != nil {
		return c.visitor.Visit(n)
	}
	if n.IsTerminal() {
		return TerminalText(n)
	}
	w := NewWriter(c.Source)
	for _, ch := range n.Children() {
		w.WriteString(c.Visit(ch))
	}
	return w.String()
}

// AddError records msg against n's kind.
func (c *Context) AddError(msg string, n *tree.Node) {
	where := ""
	if n != nil {
		where = n.Kind().String()
	}
	c.Errors.AddError(msg, where)
}

// unit is one level of relative indentation.
func (c *Context) unit() string { return c.Indent.Unit() }

// nested formats fn one level deeper and indents the result.
func (c *Context) nested(fn func() string) string {
	return IndentLines(c.Indent.WithIndent(1, fn), c.unit())
}
