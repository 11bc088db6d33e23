package tree

import (
	"lpcfmt/internal/token"
)

// Foreign is the minimal shape of a syntax tree produced elsewhere, for example
// by a generated parser.
type Foreign interface {
	KindName() string
	IsTerminal() bool
	Text() string
	ChildCount() int
	Child(i int) Foreign
}

// Adapt converts a foreign tree into Node values, classifying each node once.
// Unknown non-terminal kinds become Opaque; names ending in "Context" are
// accepted with the suffix removed.
func Adapt(f Foreign) *Node {
	if f == nil {
		return nil
	}
	if f.IsTerminal() {
		return NewTerminal(classifyToken(f.Text()))
	}
	n := NewNode(foreignKind(f.KindName()))
	for i := range f.ChildCount() {
		n.Append(Adapt(f.Child(i)))
	}
	return n
}

func foreignKind(name string) NodeKind {
	if k, ok := ParseKind(name); ok && k != Terminal {
		return k
	}
	const suffix = "Context"
	if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
		if k, ok := ParseKind(name[:len(name)-len(suffix)]); ok && k != Terminal {
			return k
		}
	}
	return Opaque
}

func classifyToken(text string) token.Token {
	kind := token.Ident
	if k, ok := token.LookupKeyword(text); ok {
		kind = k
	} else if k, ok := token.LookupPunct(text); ok {
		kind = k
	} else if text != "" {
		switch c := text[0]; {
		case c == '"':
			kind = token.StringLit
		case c == '\'':
			kind = token.CharLit
		case c == '#':
			kind = token.Directive
		case c >= '0' && c <= '9':
			kind = token.IntLit
		}
	}
	return token.Token{Kind: kind, Text: text}
}
