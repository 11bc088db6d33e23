package format

import (
	"strings"

	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// LiteralFormatter lays out array and mapping literals, inline or one
// element per line.
type LiteralFormatter struct {
	ctx *Context
}

func (f *LiteralFormatter) Category() Category { return CategoryLiteral }

func (f *LiteralFormatter) Operations() []Operation {
	return []Operation{OpMappingLiteral, OpArrayLiteral}
}

func (f *LiteralFormatter) Format(op Operation, n *tree.Node) (string, error) {
	if err := checkKind(op, n); err != nil {
		return "", err
	}
	switch op {
	case OpMappingLiteral:
		return f.mapping(n), nil
	case OpArrayLiteral:
		return f.array(n), nil
	}
	return "", unsupported(f.Category(), op)
}

func (f *LiteralFormatter) mapping(n *tree.Node) string {
	ctx := f.ctx
	kids := n.Children()
	open := TerminalText(n.Child(0))
	end := len(kids)
	for end > 1 && kids[end-1].IsTerminal() && (kids[end-1].Is(token.RBracket) || kids[end-1].Is(token.RParen)) {
		end--
	}
	start := 1
	if !n.Child(0).Is(token.MappingOpen) {
		open, start = "", 0
	}
	var items []string
	w := NewWriter(ctx.Source)
	for _, ch := range kids[start:end] {
		switch {
		case ch.Is(token.Comma):
			w.WriteString(TerminalText(ch))
			items = append(items, w.String())
			w = NewWriter(ctx.Source)
		case ch.Kind() == tree.MappingPair:
			w.WriteString(f.pair(ch))
		default:
			w.WriteString(ctx.Visit(ch))
		}
	}
	if w.Len() > 0 {
		items = append(items, w.String())
	}
	closeLead, closeText := f.closers(kids[end:])
	if closeLead != "" {
		items = append(items, closeLead)
	}
	if len(items) == 0 {
		return trimNL(open) + closeText
	}
	inline := trimNL(open) + ctx.joinInline(items) + closeText
	if !f.expand(WrapMapping, len(items), inline, items) {
		return inline
	}
	return ctx.multiline(open, items, closeText)
}

// pair renders key : value, plus any further ; values.
func (f *LiteralFormatter) pair(n *tree.Node) string {
	ctx := f.ctx
	w := NewWriter(ctx.Source)
	for _, ch := range n.Children() {
		switch {
		case ch.Is(token.Colon):
			w.WriteString(ctx.op(ch, false))
		case ch.Is(token.Semicolon):
			w.WriteString(TerminalText(ch))
			w.Space()
		default:
			w.WriteString(ctx.Visit(ch))
		}
	}
	return w.String()
}

func (f *LiteralFormatter) array(n *tree.Node) string {
	ctx := f.ctx
	open := ""
	if first := n.Child(0); first.Is(token.ArrayOpen) {
		open = TerminalText(first)
	}
	var items []string
	var elems int
	mappings := true
	var tail []*tree.Node
	for _, ch := range n.Children() {
		switch {
		case ch.Kind() == tree.ExpressionList:
			items = ctx.listItems(ch.Children())
			for _, e := range ch.Children() {
				if e.IsTerminal() && (e.Is(token.Comma) || e.Is(token.DotDotDot)) {
					continue
				}
				elems++
				mappings = mappings && e.Kind() == tree.MappingLiteral
			}
		case ch.Is(token.RBrace) || ch.Is(token.RParen):
			tail = append(tail, ch)
		}
	}
	closeLead, closeText := f.closers(tail)
	if closeLead != "" {
		items = append(items, closeLead)
	}
	if len(items) == 0 {
		return trimNL(open) + closeText
	}
	inline := trimNL(open) + ctx.joinInline(items) + closeText
	wc := WrapArray
	if mappings && elems > 0 {
		switch ctx.Options.ArrayOfMappingFormat {
		case MappingExpanded:
			if !ctx.Quick {
				return ctx.multiline(open, items, closeText)
			}
		case MappingCompact:
			wc = WrapDefault
		default:
			if !ctx.Quick && !ctx.Layout.PreferSingleLine && elems > 2 {
				return ctx.multiline(open, items, closeText)
			}
		}
	}
	if !f.expand(wc, elems, inline, items) {
		return inline
	}
	return ctx.multiline(open, items, closeText)
}

// closers joins the closing tokens; comments in front of the first one are
// returned separately so they stay inside the literal.
func (f *LiteralFormatter) closers(tail []*tree.Node) (lead, text string) {
	var sb strings.Builder
	for i, t := range tail {
		l, rest := splitLeading(t)
		if i == 0 {
			lead = trimNL(l)
		} else {
			sb.WriteString(l)
		}
		sb.WriteString(rest)
	}
	return lead, sb.String()
}

// expand decides between the inline and the one-per-line layout.
func (f *LiteralFormatter) expand(wc WrapContext, count int, inline string, items []string) bool {
	ctx := f.ctx
	if ctx.Quick {
		return false
	}
	for _, it := range items[:len(items)-1] {
		if strings.Contains(it, "\n") {
			return true
		}
	}
	if ctx.Layout.PreferSingleLine || wc == WrapDefault {
		return ctx.Lines.TooLong(inline)
	}
	return ctx.Lines.ShouldWrapInContext(wc, count) || ctx.Lines.TooLong(inline)
}
