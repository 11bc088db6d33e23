package lexer

import (
	"lpcfmt/internal/diag"
	"lpcfmt/internal/token"
)

// Поддержка: 0, 123, 0x1F, 0b101, 1.5, .5, 1e-3, 1.0e+10.
// "1..2" is a range, not a float.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		switch lx.cursor.PeekAt(1) {
		case 'x', 'X':
			lx.cursor.Bump()
			lx.cursor.Bump()
			for isHex(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			return lx.finishNumber(kind, start)
		case 'b', 'B':
			lx.cursor.Bump()
			lx.cursor.Bump()
			for b := lx.cursor.Peek(); b == '0' || b == '1'; b = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			return lx.finishNumber(kind, start)
		}
	}

	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}

	if lx.cursor.Peek() == '.' && lx.cursor.PeekAt(1) != '.' {
		kind = token.FloatLit
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
			lx.cursor.Bump()
		}
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		kind = token.FloatLit
		lx.cursor.Bump()
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			tok := lx.emit(token.Invalid, start)
			lx.errLex(diag.LexBadNumber, tok.Span, "expected digit after exponent")
			return tok
		}
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	return lx.finishNumber(kind, start)
}

// finishNumber rejects identifier characters glued to the literal ("12abc").
func (lx *Lexer) finishNumber(kind token.Kind, start Mark) token.Token {
	if !isIdentContinueByte(lx.cursor.Peek()) {
		return lx.emit(kind, start)
	}
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexBadNumber, tok.Span, "malformed number literal")
	return tok
}
