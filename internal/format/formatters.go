package format

import (
	"fmt"

	"lpcfmt/internal/tree"
)

// NewFormatters returns the five stock category formatters bound to ctx.
func NewFormatters(ctx *Context) []CategoryFormatter {
	return []CategoryFormatter{
		&ExpressionFormatter{ctx: ctx},
		&StatementFormatter{ctx: ctx},
		&LiteralFormatter{ctx: ctx},
		&DeclarationFormatter{ctx: ctx},
		&BlockFormatter{ctx: ctx},
	}
}

// checkKind guards an operation against a node of the wrong kind.
func checkKind(op Operation, n *tree.Node) error {
	if n == nil {
		return errNilNode
	}
	if n.Kind() != op.Kind() {
		return fmt.Errorf("format: %s got %s node", op, n.Kind())
	}
	return nil
}

func unsupported(cat Category, op Operation) error {
	return fmt.Errorf("%w: %s has no %s", ErrUnsupported, cat, op)
}

// op renders an operator terminal with its configured spacing and comments.
func (c *Context) op(n *tree.Node, assignment bool) string {
	lead, _ := splitLeading(n)
	trail := trailingText(n)
	text := c.Core.FormatOperator(n.Token().Text, assignment)
	if trail != "" {
		text = trimRightSpace(text)
	}
	return lead + text + trail
}

// keyword renders a keyword terminal followed by a space when the layout
// asks for one.
func (c *Context) keyword(n *tree.Node) string {
	text := TerminalText(n)
	if c.Layout.SpaceAfterKeywords && trailingText(n) == "" {
		text += " "
	}
	return text
}

func trimRightSpace(s string) string {
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}
	return s
}
