package token

import (
	"strings"

	"lpcfmt/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, character or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, CharLit:
		return true
	default:
		return false
	}
}

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind > keywordEnd
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind > keywordBegin && t.Kind < keywordEnd
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// Comments returns the comment trivia preceding the token.
func (t Token) Comments() []Trivia {
	var out []Trivia
	for _, tv := range t.Leading {
		if tv.IsComment() {
			out = append(out, tv)
		}
	}
	return out
}

// BlankLinesBefore returns how many empty lines separate the token from the previous one.
func (t Token) BlankLinesBefore() int {
	best := 0
	run := 0
	for _, tv := range t.Leading {
		switch tv.Kind {
		case TriviaNewline:
			run += strings.Count(tv.Text, "\n")
		case TriviaSpace:
		default:
			run = 0
		}
		if run-1 > best {
			best = run - 1
		}
	}
	return best
}
