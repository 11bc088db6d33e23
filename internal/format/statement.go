package format

import (
	"strings"

	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// StatementFormatter lays out control flow, jumps and expression statements.
type StatementFormatter struct {
	ctx *Context
}

func (f *StatementFormatter) Category() Category { return CategoryStatement }

func (f *StatementFormatter) Operations() []Operation {
	out := make([]Operation, 0, OpExprStatement-OpIfStatement+1)
	for op := OpIfStatement; op <= OpExprStatement; op++ {
		out = append(out, op)
	}
	return out
}

func (f *StatementFormatter) Format(op Operation, n *tree.Node) (string, error) {
	if err := checkKind(op, n); err != nil {
		return "", err
	}
	switch op {
	case OpIfStatement, OpWhileStatement, OpForStatement, OpDoWhileStatement, OpForeachStatement:
		return f.control(n), nil
	case OpSwitchStatement:
		return f.switchStatement(n), nil
	case OpSwitchSection:
		return f.section(n), nil
	case OpBreakStatement, OpContinueStatement, OpReturnStatement:
		return f.jump(n), nil
	case OpExprStatement:
		w := NewWriter(f.ctx.Source)
		for _, ch := range n.Children() {
			w.WriteString(f.ctx.Visit(ch))
		}
		return w.String(), nil
	}
	return "", unsupported(f.Category(), op)
}

type controlState struct {
	inHeader   bool
	headerDone bool
	expectBody bool
	afterElse  bool
	prevBlock  bool
}

// control handles if/else, while, do-while, for and foreach.
func (f *StatementFormatter) control(n *tree.Node) string {
	ctx := f.ctx
	w := NewWriter(ctx.Source)
	kids := n.Children()
	var st controlState
	for i, ch := range kids {
		if i == 0 {
			w.WriteString(TerminalText(ch))
			st.expectBody = ch.Is(token.KwDo)
			continue
		}
		switch {
		case ch.Is(token.LParen) && !st.inHeader && !st.headerDone:
			w.MaybeSpace(ctx.Layout.SpaceAfterKeywords)
			w.WriteString(TerminalText(ch))
			st.inHeader = true
		case ch.Is(token.RParen) && st.inHeader:
			w.WriteString(TerminalText(ch))
			st.inHeader, st.headerDone = false, true
			st.expectBody = n.Kind() != tree.DoWhileStatement
		case ch.Is(token.Semicolon) && st.inHeader:
			w.WriteString(TerminalText(ch))
			if next := n.Child(i + 1); next != nil && !next.Is(token.Semicolon) && !next.Is(token.RParen) {
				w.MaybeSpace(ctx.Layout.SpaceAfterSemicolon)
			}
		case ch.Is(token.Comma) && st.inHeader:
			w.WriteString(TerminalText(ch))
			w.MaybeSpace(ctx.Layout.SpaceAfterComma)
		case (ch.Is(token.KwIn) || ch.Is(token.Colon)) && st.inHeader:
			w.Space()
			w.WriteString(TerminalText(ch))
			w.Space()
		case ch.Is(token.KwElse) || ch.Is(token.KwWhile):
			if st.prevBlock && !ctx.Layout.BracesOnNewLine {
				w.Space()
			} else {
				w.Newline()
			}
			w.WriteString(TerminalText(ch))
			st.afterElse = ch.Is(token.KwElse)
			st.expectBody = st.afterElse
			st.headerDone = false
		case !ch.IsTerminal() && st.expectBody:
			f.body(w, ch, st.afterElse)
			st.prevBlock = ch.Kind() == tree.Block
			st.expectBody = false
		default:
			w.WriteString(ctx.Visit(ch))
		}
	}
	return w.String()
}

// body places the statement controlled by a keyword or header.
func (f *StatementFormatter) body(w *Writer, stmt *tree.Node, afterElse bool) {
	ctx := f.ctx
	switch {
	case stmt.Kind() == tree.Block:
		if ctx.Layout.BracesOnNewLine {
			w.Newline()
		} else {
			w.Space()
		}
		w.WriteString(ctx.Visit(stmt))
	case stmt.Kind() == tree.IfStatement && afterElse:
		w.Space()
		w.WriteString(ctx.Visit(stmt))
	case stmt.Kind() == tree.EmptyStatement:
		w.WriteString(ctx.Visit(stmt))
	default:
		w.Newline()
		w.WriteVerbatim(ctx.nested(func() string { return trimNL(ctx.Visit(stmt)) }))
	}
}

func (f *StatementFormatter) switchStatement(n *tree.Node) string {
	ctx := f.ctx
	w := NewWriter(ctx.Source)
	kids := n.Children()
	for i, ch := range kids {
		if !ch.Is(token.LBrace) {
			switch {
			case i == 0:
				w.WriteString(TerminalText(ch))
			case ch.Is(token.LParen):
				w.MaybeSpace(ctx.Layout.SpaceAfterKeywords)
				w.WriteString(TerminalText(ch))
			default:
				w.WriteString(ctx.Visit(ch))
			}
			continue
		}
		rest := kids[i+1:]
		var closer *tree.Node
		if len(rest) > 0 && rest[len(rest)-1].Is(token.RBrace) {
			closer = rest[len(rest)-1]
			rest = rest[:len(rest)-1]
		}
		if ctx.Layout.BracesOnNewLine {
			w.Newline()
		} else {
			w.Space()
		}
		indent := ctx.Options.SwitchCaseAlignment != CaseAlign
		w.WriteString(ctx.braced(ch, rest, closer, indent))
		break
	}
	return w.String()
}

// section renders case labels one per line and the statements under them one
// level deeper.
func (f *StatementFormatter) section(n *tree.Node) string {
	ctx := f.ctx
	var labels []string
	var stmts []*tree.Node
	for _, ch := range n.Children() {
		if ch.Kind() == tree.CaseLabel && len(stmts) == 0 {
			labels = append(labels, trimNL(f.caseLabel(ch)))
			continue
		}
		stmts = append(stmts, ch)
	}
	out := strings.Join(labels, "\n")
	if len(stmts) == 0 {
		return out
	}
	body := ctx.nested(func() string { return ctx.joinStatements(stmts) })
	if out == "" {
		return body
	}
	return out + "\n" + body
}

func (f *StatementFormatter) caseLabel(n *tree.Node) string {
	w := NewWriter(f.ctx.Source)
	for i, ch := range n.Children() {
		switch {
		case i == 0:
			w.WriteString(TerminalText(ch))
		case ch.Is(token.Colon), ch.Is(token.DotDot):
			w.WriteString(TerminalText(ch))
		default:
			if n.Child(i - 1).Is(token.KwCase) {
				w.Space()
			}
			w.WriteString(f.ctx.Visit(ch))
		}
	}
	return w.String()
}

// jump renders return, break and continue.
func (f *StatementFormatter) jump(n *tree.Node) string {
	w := NewWriter(f.ctx.Source)
	for i, ch := range n.Children() {
		if i > 0 && !ch.Is(token.Semicolon) {
			w.Space()
		}
		w.WriteString(f.ctx.Visit(ch))
	}
	return w.String()
}
