package token_test

import (
	"testing"

	"lpcfmt/internal/source"
	"lpcfmt/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{token.IntLit, token.FloatLit, token.StringLit, token.CharLit}
	for _, k := range lits {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwInt, token.Plus, token.LParen}
	for _, k := range non {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsPunctOrOp(t *testing.T) {
	ops := []token.Kind{
		token.Plus, token.ShrAssign, token.EqEq, token.Arrow, token.ArrayOpen,
		token.MappingOpen, token.ClosureOpen, token.ClosureClose, token.Hash,
	}
	for _, k := range ops {
		if !tok(k).IsPunctOrOp() {
			t.Fatalf("%v should be punct/op", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwIf, token.IntLit, token.Directive}
	for _, k := range non {
		if tok(k).IsPunctOrOp() {
			t.Fatalf("%v must NOT be punct/op", k)
		}
	}
}

func TestIsKeyword(t *testing.T) {
	for _, k := range []token.Kind{token.KwIf, token.KwForeach, token.KwMapping, token.KwNomask, token.KwRef} {
		if !tok(k).IsKeyword() {
			t.Fatalf("%v should be keyword", k)
		}
	}
	if tok(token.Ident).IsKeyword() || tok(token.Plus).IsKeyword() {
		t.Fatalf("ident and operators are not keywords")
	}
}

func TestKindClassifiers(t *testing.T) {
	if !token.KwMixed.IsTypeKeyword() || token.KwStatic.IsTypeKeyword() {
		t.Fatalf("type keyword classification is off")
	}
	if !token.KwNosave.IsModifier() || token.KwVoid.IsModifier() {
		t.Fatalf("modifier classification is off")
	}
	if !token.ShlAssign.IsAssignOp() || token.EqEq.IsAssignOp() {
		t.Fatalf("assign op classification is off")
	}
	if got := token.Arrow.String(); got != "'->'" {
		t.Fatalf("Arrow.String() = %q", got)
	}
}

func TestBlankLinesBefore(t *testing.T) {
	tk := token.Token{Leading: []token.Trivia{
		{Kind: token.TriviaNewline, Text: "\n\n\n"},
		{Kind: token.TriviaLineComment, Text: "// x"},
		{Kind: token.TriviaNewline, Text: "\n"},
	}}
	if got := tk.BlankLinesBefore(); got != 2 {
		t.Fatalf("BlankLinesBefore = %d, want 2", got)
	}
	if got := len(tk.Comments()); got != 1 {
		t.Fatalf("Comments = %d, want 1", got)
	}
}
