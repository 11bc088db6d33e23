package lexer_test

import (
	"fmt"
	"strings"
	"testing"

	"lpcfmt/internal/diag"
	"lpcfmt/internal/lexer"
	"lpcfmt/internal/source"
	"lpcfmt/internal/token"
)

// testReporter собирает все диагностики, полученные от лексера
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary})
}

func (r *testReporter) messages() []string {
	out := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		out = append(out, fmt.Sprintf("[%s] %s: %s", d.Code.ID(), d.Severity, d.Message))
	}
	return out
}

func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.c", []byte(input)))
	reporter := &testReporter{}
	return lexer.New(file, lexer.Options{Reporter: reporter}), reporter
}

func kindsOf(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			break
		}
		out = append(out, tok.Kind)
	}
	return out
}

func expectTokens(t *testing.T, input string, expected ...token.Kind) []token.Token {
	t.Helper()
	lx, reporter := makeTestLexer(input)
	tokens := lx.All()
	got := kindsOf(tokens)
	if len(got) != len(expected) {
		t.Fatalf("input %q: got %v, want %v (errors: %v)", input, got, expected, reporter.messages())
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("input %q: token %d = %v (%q), want %v", input, i, got[i], tokens[i].Text, expected[i])
		}
	}
	return tokens
}

func TestOperatorsGreedy(t *testing.T) {
	expectTokens(t, "a <<= b >> c", token.Ident, token.ShlAssign, token.Ident, token.Shr, token.Ident)
	expectTokens(t, "ob->query()", token.Ident, token.Arrow, token.Ident, token.LParen, token.RParen)
	expectTokens(t, "x[1..2]", token.Ident, token.LBracket, token.IntLit, token.DotDot, token.IntLit, token.RBracket)
	expectTokens(t, "i++ && --j", token.Ident, token.PlusPlus, token.AndAnd, token.MinusMinus, token.Ident)
}

func TestLiteralOpeners(t *testing.T) {
	expectTokens(t, "({ 1, 2 })",
		token.ArrayOpen, token.IntLit, token.Comma, token.IntLit, token.RBrace, token.RParen)
	expectTokens(t, `([ "a" : 1 ])`,
		token.MappingOpen, token.StringLit, token.Colon, token.IntLit, token.RBracket, token.RParen)
	expectTokens(t, "(: $1 + 1 :)",
		token.ClosureOpen, token.Dollar, token.IntLit, token.Plus, token.IntLit, token.ClosureClose)
	expectTokens(t, "(::create())",
		token.LParen, token.ColonColon, token.Ident, token.LParen, token.RParen, token.RParen)
}

func TestKeywordsAndTypes(t *testing.T) {
	expectTokens(t, "private static mapping *m;",
		token.KwPrivate, token.KwStatic, token.KwMapping, token.Star, token.Ident, token.Semicolon)
	expectTokens(t, "foreach (string k, mixed v in m)",
		token.KwForeach, token.LParen, token.KwString, token.Ident, token.Comma,
		token.KwMixed, token.Ident, token.KwIn, token.Ident, token.RParen)
}

func TestNumbers(t *testing.T) {
	cases := map[string]token.Kind{
		"42":     token.IntLit,
		"0x1F":   token.IntLit,
		"0b101":  token.IntLit,
		"1.5":    token.FloatLit,
		".5":     token.FloatLit,
		"1e-3":   token.FloatLit,
		"3.0e+2": token.FloatLit,
		"12abc":  token.Invalid,
	}
	for input, want := range cases {
		lx, _ := makeTestLexer(input)
		tok := lx.Next()
		if tok.Kind != want || tok.Text != input {
			t.Errorf("%q: got %v %q, want %v", input, tok.Kind, tok.Text, want)
		}
	}
}

func TestStringsAndChars(t *testing.T) {
	tokens := expectTokens(t, `write("a \"q\" b\n"); c = 'x';`,
		token.Ident, token.LParen, token.StringLit, token.RParen, token.Semicolon,
		token.Ident, token.Assign, token.CharLit, token.Semicolon)
	if tokens[2].Text != `"a \"q\" b\n"` {
		t.Fatalf("string text = %q", tokens[2].Text)
	}

	lx, rep := makeTestLexer("\"open\nx")
	if tok := lx.Next(); tok.Kind != token.Invalid {
		t.Fatalf("want Invalid, got %v", tok.Kind)
	}
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexUnterminatedString {
		t.Fatalf("diagnostics = %v", rep.messages())
	}
}

func TestDirectives(t *testing.T) {
	src := "#include <std.h>\n#define LONG(x) \\\n  ((x) + 1)  \nint a; # not a directive"
	lx, _ := makeTestLexer(src)
	tokens := lx.All()
	if tokens[0].Kind != token.Directive || tokens[0].Text != "#include <std.h>" {
		t.Fatalf("tok0 = %v %q", tokens[0].Kind, tokens[0].Text)
	}
	if tokens[1].Kind != token.Directive || !strings.HasSuffix(tokens[1].Text, "((x) + 1)") {
		t.Fatalf("tok1 = %v %q", tokens[1].Kind, tokens[1].Text)
	}
	last := tokens[len(tokens)-5]
	if last.Kind != token.Hash {
		t.Fatalf("mid-line '#' must be punctuation, got %v", last.Kind)
	}
}

func TestCommentsBecomeLeadingTrivia(t *testing.T) {
	lx, rep := makeTestLexer("// head\n/* block */ int x; /* open")
	tok := lx.Next()
	if tok.Kind != token.KwInt {
		t.Fatalf("first significant token = %v", tok.Kind)
	}
	comments := tok.Comments()
	if len(comments) != 2 || comments[0].Text != "// head" || comments[1].Text != "/* block */" {
		t.Fatalf("comments = %+v", comments)
	}
	lx.Next()
	lx.Next()
	eof := lx.Next()
	if eof.Kind != token.EOF || len(eof.Comments()) != 1 {
		t.Fatalf("trailing comment must attach to EOF: %+v", eof)
	}
	if len(rep.diagnostics) != 1 || rep.diagnostics[0].Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("diagnostics = %v", rep.messages())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	if p := lx.Peek(); p.Text != "a" {
		t.Fatalf("peek = %q", p.Text)
	}
	if n := lx.Next(); n.Text != "a" {
		t.Fatalf("next = %q", n.Text)
	}
	if n := lx.Next(); n.Text != "b" {
		t.Fatalf("next = %q", n.Text)
	}
	if n := lx.Next(); n.Kind != token.EOF {
		t.Fatalf("want EOF, got %v", n.Kind)
	}
	if n := lx.Next(); n.Kind != token.EOF {
		t.Fatalf("EOF must be sticky, got %v", n.Kind)
	}
}
