package lexer

import (
	"lpcfmt/internal/diag"
	"lpcfmt/internal/token"
)

// scanOperatorOrPunct is greedy: three-byte spellings first, then two, then one.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()

	// "(::" is a call through the parent scope, not a closure opener
	if lx.cursor.Peek() == '(' && lx.cursor.PeekAt(1) == ':' && lx.cursor.PeekAt(2) == ':' {
		lx.cursor.Bump()
		return lx.emit(token.LParen, start)
	}

	for n := uint32(3); n >= 1; n-- {
		buf := make([]byte, 0, 3)
		for i := range n {
			b := lx.cursor.PeekAt(i)
			if b == 0 {
				break
			}
			buf = append(buf, b)
		}
		if len(buf) != int(n) {
			continue
		}
		if k, ok := token.LookupPunct(string(buf)); ok {
			for range n {
				lx.cursor.Bump()
			}
			return lx.emit(k, start)
		}
	}

	lx.cursor.Bump()
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnknownChar, tok.Span, "unknown character")
	return tok
}

// scanDirective consumes a preprocessor line, following backslash continuations.
// A trailing comment stays part of the directive text.
func (lx *Lexer) scanDirective() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\\' && lx.cursor.PeekAt(1) == '\n' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			continue
		}
		if b == '\n' {
			break
		}
		lx.cursor.Bump()
	}
	tok := lx.emit(token.Directive, start)
	// trailing spaces are trivia, not directive text
	for len(tok.Text) > 0 && isSpace(tok.Text[len(tok.Text)-1]) {
		tok.Text = tok.Text[:len(tok.Text)-1]
		tok.Span.End--
	}
	return tok
}
