package tree

import (
	"strings"

	"lpcfmt/internal/source"
	"lpcfmt/internal/token"
)

// Node is the formatter's read-only view of one syntax tree node.
type Node struct {
	kind     NodeKind
	tok      token.Token
	children []*Node
	span     source.Span
	// trailing holds comments that sat on the same line right after the token.
	trailing []token.Trivia
}

// NewTerminal wraps a token as a leaf.
func NewTerminal(tok token.Token) *Node {
	return &Node{kind: Terminal, tok: tok, span: tok.Span}
}

// NewNode builds a non-terminal; nil children are skipped.
func NewNode(kind NodeKind, children ...*Node) *Node {
	n := &Node{kind: kind, children: make([]*Node, 0, len(children))}
	for _, c := range children {
		n.Append(c)
	}
	return n
}

// Append adds c as the last child and widens the span.
func (n *Node) Append(c *Node) {
	if c == nil {
		return
	}
	if len(n.children) == 0 && n.span.Empty() {
		n.span = c.span
	} else {
		n.span = n.span.Cover(c.span)
	}
	n.children = append(n.children, c)
}

func (n *Node) Kind() NodeKind { return n.kind }

func (n *Node) IsTerminal() bool { return n.kind == Terminal }

// IsError reports whether the parser gave up on this node.
func (n *Node) IsError() bool { return n.kind == Error }

func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child or nil when i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *Node) Children() []*Node { return n.children }

func (n *Node) Span() source.Span { return n.span }

// Token returns the token of a terminal; non-terminals return the zero token.
func (n *Node) Token() token.Token { return n.tok }

// TokenKind is Token().Kind, or token.Invalid for non-terminals.
func (n *Node) TokenKind() token.Kind {
	if !n.IsTerminal() {
		return token.Invalid
	}
	return n.tok.Kind
}

// Is reports whether n is a terminal of token kind k.
func (n *Node) Is(k token.Kind) bool {
	return n != nil && n.IsTerminal() && n.tok.Kind == k
}

// Text returns the token text of a terminal. For a non-terminal it joins the
// text of all descendant terminals with single spaces.
func (n *Node) Text() string {
	if n.IsTerminal() {
		return n.tok.Text
	}
	return strings.Join(n.TerminalTexts(), " ")
}

// TerminalTexts lists the token text of every descendant terminal in order.
func (n *Node) TerminalTexts() []string {
	var out []string
	n.Walk(func(c *Node) bool {
		if c.IsTerminal() && c.tok.Text != "" {
			out = append(out, c.tok.Text)
		}
		return true
	})
	return out
}

// SetTrailing records same-line comments that follow the terminal.
func (n *Node) SetTrailing(tv []token.Trivia) { n.trailing = tv }

// LeadingComments returns comments that precede a terminal.
func (n *Node) LeadingComments() []token.Trivia { return n.tok.Comments() }

// TrailingComments returns same-line comments after a terminal.
func (n *Node) TrailingComments() []token.Trivia { return n.trailing }

// Walk visits n and its descendants depth-first; fn returning false skips the subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node) bool {
		total++
		return true
	})
	return total
}

// FirstTerminal returns the leftmost terminal descendant, or nil.
func (n *Node) FirstTerminal() *Node {
	if n == nil || n.IsTerminal() {
		return n
	}
	for _, c := range n.children {
		if t := c.FirstTerminal(); t != nil {
			return t
		}
	}
	return nil
}

// LastTerminal returns the rightmost terminal descendant, or nil.
func (n *Node) LastTerminal() *Node {
	if n == nil || n.IsTerminal() {
		return n
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if t := n.children[i].LastTerminal(); t != nil {
			return t
		}
	}
	return nil
}

// BlankLinesBefore reports the empty lines in the source before the node.
func (n *Node) BlankLinesBefore() int {
	if t := n.FirstTerminal(); t != nil {
		return t.tok.BlankLinesBefore()
	}
	return 0
}

// ChildByKind returns the first direct child of kind k.
func (n *Node) ChildByKind(k NodeKind) *Node {
	for _, c := range n.children {
		if c.kind == k {
			return c
		}
	}
	return nil
}

// ChildrenByKind returns every direct child of kind k.
func (n *Node) ChildrenByKind(k NodeKind) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == k {
			out = append(out, c)
		}
	}
	return out
}

// TerminalOf returns the first direct terminal child with token kind k.
func (n *Node) TerminalOf(k token.Kind) *Node {
	for _, c := range n.children {
		if c.Is(k) {
			return c
		}
	}
	return nil
}

// NonTerminals returns the direct children that are not terminals.
func (n *Node) NonTerminals() []*Node {
	var out []*Node
	for _, c := range n.children {
		if !c.IsTerminal() {
			out = append(out, c)
		}
	}
	return out
}

// HasErrors reports whether any node in the subtree is an Error node.
func (n *Node) HasErrors() bool {
	found := false
	n.Walk(func(c *Node) bool {
		if c.IsError() {
			found = true
		}
		return !found
	})
	return found
}
