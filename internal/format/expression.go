package format

import (
	"strings"

	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// ExpressionFormatter lays out operators, calls, member access and closures.
type ExpressionFormatter struct {
	ctx *Context
}

func (f *ExpressionFormatter) Category() Category { return CategoryExpression }

func (f *ExpressionFormatter) Operations() []Operation {
	out := make([]Operation, 0, OpCatchExpression-OpAssignmentExpression+1)
	for op := OpAssignmentExpression; op <= OpCatchExpression; op++ {
		out = append(out, op)
	}
	return out
}

func (f *ExpressionFormatter) Format(op Operation, n *tree.Node) (string, error) {
	if err := checkKind(op, n); err != nil {
		return "", err
	}
	switch op {
	case OpAdditiveExpression, OpMultiplicativeExpression, OpEqualityExpression,
		OpRelationalExpression, OpBitwiseAndExpression, OpBitwiseOrExpression,
		OpBitwiseXorExpression, OpShiftExpression:
		return f.binary(n, false), nil
	case OpLogicalAndExpression, OpLogicalOrExpression:
		return f.binary(n, true), nil
	case OpAssignmentExpression:
		return f.assignment(n), nil
	case OpExpression:
		return f.expression(n), nil
	case OpExpressionList:
		return f.ctx.joinInline(f.ctx.listItems(n.Children())), nil
	case OpConditionalExpression:
		return f.conditional(n), nil
	case OpUnaryExpression:
		return f.unary(n), nil
	case OpPostfixExpression, OpCastExpression, OpParenExpression, OpCallExpression,
		OpMemberCallExpression, OpIndexExpression, OpCatchExpression:
		return f.tight(n), nil
	case OpClosureExpression:
		return f.closure(n), nil
	}
	return "", unsupported(f.Category(), op)
}

// binary renders an operand/operator chain. Long logical chains break after
// each operator with the continuation one level deeper.
func (f *ExpressionFormatter) binary(n *tree.Node, breakable bool) string {
	ctx := f.ctx
	var operands, ops []string
	for i, ch := range n.Children() {
		if i%2 == 1 && ch.IsTerminal() {
			ops = append(ops, ctx.op(ch, false))
			continue
		}
		operands = append(operands, ctx.Visit(ch))
	}
	w := NewWriter(ctx.Source)
	for i, operand := range operands {
		if i > 0 && i-1 < len(ops) {
			w.WriteString(ops[i-1])
		}
		w.WriteString(operand)
	}
	inline := w.String()
	if !breakable || ctx.Quick || len(operands) < 3 || !ctx.Lines.TooLong(inline) {
		return inline
	}
	var sb strings.Builder
	sb.WriteString(operands[0])
	for i := 1; i < len(operands); i++ {
		if i-1 < len(ops) {
			sb.WriteString(trimRightSpace(ops[i-1]))
		}
		sb.WriteString("\n" + ctx.unit() + strings.TrimLeft(operands[i], " "))
	}
	return sb.String()
}

func (f *ExpressionFormatter) assignment(n *tree.Node) string {
	w := NewWriter(f.ctx.Source)
	for _, ch := range n.Children() {
		if ch.IsTerminal() && ch.TokenKind().IsAssignOp() {
			w.WriteString(f.ctx.op(ch, true))
			continue
		}
		w.WriteString(f.ctx.Visit(ch))
	}
	return w.String()
}

// expression covers comma expressions, scope access and adjacent strings.
func (f *ExpressionFormatter) expression(n *tree.Node) string {
	w := NewWriter(f.ctx.Source)
	tight := true
	for _, ch := range n.Children() {
		switch {
		case ch.Is(token.Comma):
			w.WriteString(TerminalText(ch))
			tight = !f.ctx.Layout.SpaceAfterComma
		case ch.Is(token.ColonColon):
			w.WriteString(TerminalText(ch))
			tight = true
		default:
			if !tight {
				w.Space()
			}
			w.WriteString(f.ctx.Visit(ch))
			tight = false
		}
	}
	return w.String()
}

func (f *ExpressionFormatter) conditional(n *tree.Node) string {
	w := NewWriter(f.ctx.Source)
	for _, ch := range n.Children() {
		if ch.Is(token.Question) || ch.Is(token.Colon) {
			w.WriteString(f.ctx.op(ch, false))
			continue
		}
		w.WriteString(f.ctx.Visit(ch))
	}
	return w.String()
}

func (f *ExpressionFormatter) unary(n *tree.Node) string {
	w := NewWriter(f.ctx.Source)
	prev := ""
	for _, ch := range n.Children() {
		text := f.ctx.Visit(ch)
		// "- -x" must not collapse into "--x"
		if prev != "" && text != "" && strings.ContainsAny(prev[len(prev)-1:], "+-&") && text[0] == prev[len(prev)-1] {
			w.WriteByte(' ')
		}
		w.WriteString(text)
		prev = text
	}
	return w.String()
}

// tight concatenates children without spaces; commas get the configured
// space and argument lists may wrap.
func (f *ExpressionFormatter) tight(n *tree.Node) string {
	w := NewWriter(f.ctx.Source)
	for _, ch := range n.Children() {
		switch {
		case ch.Is(token.Comma):
			w.WriteString(TerminalText(ch))
			w.MaybeSpace(f.ctx.Layout.SpaceAfterComma)
		case ch.Is(token.LParen) && f.ctx.Layout.SpaceBeforeOpenParen && n.Kind() == tree.CallExpression && w.Len() > 0:
			w.Space()
			w.WriteString(TerminalText(ch))
		case ch.Kind() == tree.ExpressionList:
			w.WriteString(f.arguments(ch, w.String()))
		default:
			w.WriteString(f.ctx.Visit(ch))
		}
	}
	return w.String()
}

// arguments lays out a call's argument list. It breaks one argument per line
// only when the call does not fit.
func (f *ExpressionFormatter) arguments(list *tree.Node, head string) string {
	ctx := f.ctx
	items := ctx.listItems(list.Children())
	inline := ctx.joinInline(items)
	if ctx.Quick || len(items) < 2 {
		return inline
	}
	lines := strings.Split(head+inline+")", "\n")
	if !ctx.Lines.TooLong(lines[len(lines)-1]) {
		return inline
	}
	body := ctx.Indent.WithIndent(1, func() string { return joinLines(items) })
	return "\n" + IndentLines(body, ctx.unit()) + "\n"
}

func (f *ExpressionFormatter) closure(n *tree.Node) string {
	first := n.Child(0)
	if first.Is(token.KwFunction) {
		w := NewWriter(f.ctx.Source)
		w.WriteString(TerminalText(first))
		for _, ch := range n.Children()[1:] {
			if ch.Kind() == tree.Block {
				w.Space()
			}
			w.WriteString(f.ctx.Visit(ch))
		}
		return w.String()
	}
	w := NewWriter(f.ctx.Source)
	for _, ch := range n.Children() {
		switch {
		case ch.Is(token.ClosureOpen):
			w.WriteString(TerminalText(ch))
		case ch.Is(token.ClosureClose):
			w.Space()
			w.WriteString(TerminalText(ch))
		default:
			w.Space()
			w.WriteString(f.ctx.Visit(ch))
		}
	}
	return w.String()
}
