package parser

import (
	"lpcfmt/internal/diag"
	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// parseExpression: выражение с запятой: a = 1, b = 2.
func (p *Parser) parseExpression() *tree.Node {
	first := p.parseAssignment()
	if !p.at(token.Comma) {
		return first
	}
	n := tree.NewNode(tree.Expression, first)
	for p.at(token.Comma) {
		n.Append(p.advance())
		n.Append(p.parseAssignment())
	}
	return n
}

// parseAssignment: правоассоциативное присваивание.
func (p *Parser) parseAssignment() *tree.Node {
	if bad := p.enter(); bad != nil {
		return bad
	}
	defer p.leave()
	lhs := p.parseConditional()
	if !p.peek().Kind.IsAssignOp() {
		return lhs
	}
	op := p.advance()
	return tree.NewNode(tree.AssignmentExpression, lhs, op, p.parseAssignment())
}

func (p *Parser) parseConditional() *tree.Node {
	if bad := p.enter(); bad != nil {
		return bad
	}
	defer p.leave()
	cond := p.parseBinary(0)
	if !p.at(token.Question) {
		return cond
	}
	n := tree.NewNode(tree.ConditionalExpression, cond, p.advance())
	n.Append(p.parseAssignment())
	n.Append(p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in conditional expression"))
	n.Append(p.parseConditional())
	return n
}

func (p *Parser) parseBinary(level int) *tree.Node {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}
	lv := binaryLevels[level]
	left := p.parseBinary(level + 1)
	if !lv.has(p.peek().Kind) {
		return left
	}
	n := tree.NewNode(lv.kind, left)
	for lv.has(p.peek().Kind) {
		n.Append(p.advance())
		n.Append(p.parseBinary(level + 1))
	}
	return n
}

func (p *Parser) parseUnary() *tree.Node {
	if bad := p.enter(); bad != nil {
		return bad
	}
	defer p.leave()
	switch k := p.peek().Kind; {
	case isUnaryOp(k):
		op := p.advance()
		return tree.NewNode(tree.UnaryExpression, op, p.parseUnary())
	case k == token.LParen && p.looksLikeCast():
		n := tree.NewNode(tree.CastExpression, p.advance())
		n.Append(p.parseTypeSpec(true))
		n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after cast type"))
		n.Append(p.parseUnary())
		return n
	}
	return p.parsePostfix()
}

// looksLikeCast: '(' type '*'* ')': без побочных эффектов.
func (p *Parser) looksLikeCast() bool {
	i := 1
	switch k := p.peekAt(i).Kind; {
	case k == token.KwFunction && p.peekAt(i+1).Kind == token.LParen:
		return false
	case k.IsTypeKeyword():
		i++
	case (k == token.KwClass || k == token.KwStruct) && p.peekAt(i+1).Kind == token.Ident:
		i += 2
	default:
		return false
	}
	for p.peekAt(i).Kind == token.Star {
		i++
	}
	return p.peekAt(i).Kind == token.RParen
}

func (p *Parser) parsePostfix() *tree.Node {
	base := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case token.LParen:
			base = p.parseCallArgs(tree.NewNode(tree.CallExpression, base))
		case token.Arrow:
			n := tree.NewNode(tree.MemberCallExpression, base, p.advance())
			if p.at(token.LParen) {
				// ob->(fname)(args)
				n.Append(p.parsePrimary())
			} else {
				n.Append(p.expect(token.Ident, diag.SynExpectIdentifier, "expected method name after '->'"))
			}
			if p.at(token.LParen) {
				n = p.parseCallArgs(n)
			}
			base = n
		case token.Dot:
			if p.peekAt(1).Kind != token.Ident {
				return base
			}
			n := tree.NewNode(tree.MemberCallExpression, base, p.advance(), p.advance())
			if p.at(token.LParen) {
				n = p.parseCallArgs(n)
			}
			base = n
		case token.LBracket:
			base = p.parseIndex(base)
		case token.PlusPlus, token.MinusMinus:
			base = tree.NewNode(tree.PostfixExpression, base, p.advance())
		default:
			return base
		}
	}
}

// parseCallArgs дописывает '(' args ')' в узел вызова.
func (p *Parser) parseCallArgs(n *tree.Node) *tree.Node {
	n.Append(p.advance())
	if !p.at(token.RParen) {
		n.Append(p.parseExpressionList(token.RParen))
	}
	n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close argument list"))
	return n
}

// parseExpressionList: элементы через запятую до closer; допускает
// висячую запятую и '...' после элемента.
func (p *Parser) parseExpressionList(closer token.Kind) *tree.Node {
	list := tree.NewNode(tree.ExpressionList)
	for !p.at(closer) && !p.atEOF() {
		start := p.pos
		list.Append(p.parseAssignment())
		p.eatInto(list, token.DotDotDot)
		if p.pos == start {
			break
		}
		if !p.at(token.Comma) {
			break
		}
		list.Append(p.advance())
	}
	return list
}

// parseIndex: a[i], a[i..j], a[<1], a[i..], m[k, 1].
func (p *Parser) parseIndex(base *tree.Node) *tree.Node {
	n := tree.NewNode(tree.IndexExpression, base, p.advance())
	p.eatInto(n, token.Lt)
	if !p.atOr(token.DotDot, token.RBracket) {
		n.Append(p.parseExpression())
	}
	if p.at(token.DotDot) {
		n.Append(p.advance())
		p.eatInto(n, token.Lt)
		if !p.at(token.RBracket) {
			n.Append(p.parseExpression())
		}
	}
	n.Append(p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"))
	return n
}

func (p *Parser) parsePrimary() *tree.Node {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		id := p.advance()
		if p.at(token.ColonColon) && p.peekAt(1).Kind == token.Ident {
			return tree.NewNode(tree.Expression, id, p.advance(), p.advance())
		}
		return id
	case token.ColonColon:
		n := tree.NewNode(tree.Expression, p.advance())
		n.Append(p.expect(token.Ident, diag.SynExpectIdentifier, "expected identifier after '::'"))
		return n
	case token.IntLit, token.FloatLit, token.CharLit:
		return p.advance()
	case token.StringLit:
		return p.parseStrings()
	case token.LParen:
		n := tree.NewNode(tree.ParenExpression, p.advance())
		n.Append(p.parseExpression())
		n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"))
		return n
	case token.ArrayOpen:
		return p.parseArrayLiteral()
	case token.MappingOpen:
		return p.parseMappingLiteral()
	case token.ClosureOpen:
		n := tree.NewNode(tree.ClosureExpression, p.advance())
		if !p.at(token.ClosureClose) {
			n.Append(p.parseExpression())
		}
		n.Append(p.expect(token.ClosureClose, diag.SynUnclosedParen, "expected ':)' to close closure"))
		return n
	case token.KwFunction:
		if p.peekAt(1).Kind == token.LParen {
			n := tree.NewNode(tree.ClosureExpression, p.advance())
			n.Append(p.parseParameterList())
			if p.at(token.LBrace) {
				n.Append(p.parseBlock())
			} else {
				p.err(diag.SynUnexpectedToken, "expected '{' after function parameters")
			}
			return n
		}
	case token.KwCatch:
		n := tree.NewNode(tree.CatchExpression, p.advance())
		n.Append(p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after catch"))
		n.Append(p.parseExpression())
		n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close catch"))
		return n
	case token.KwNew:
		n := tree.NewNode(tree.CallExpression, p.advance())
		if !p.at(token.LParen) {
			return n
		}
		n.Append(p.advance())
		if p.atOr(token.KwClass, token.KwStruct) {
			n.Append(p.parseTypeSpec(true))
			if p.at(token.Comma) {
				n.Append(p.advance())
				n.Append(p.parseExpressionList(token.RParen))
			}
		} else if !p.at(token.RParen) {
			n.Append(p.parseExpressionList(token.RParen))
		}
		n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close new()"))
		return n
	}

	p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
	switch tok.Kind {
	case token.RParen, token.RBracket, token.RBrace, token.Semicolon, token.Comma,
		token.ClosureClose, token.Colon, token.EOF, token.Directive:
		// закрывающий токен оставляем вызывающему
		return tree.NewNode(tree.Error)
	}
	return tree.NewNode(tree.Error, p.advance())
}

// Соседние строковые литералы склеиваются компилятором; держим их вместе.
func (p *Parser) parseStrings() *tree.Node {
	first := p.advance()
	if !p.at(token.StringLit) {
		return first
	}
	n := tree.NewNode(tree.Expression, first)
	for p.at(token.StringLit) {
		n.Append(p.advance())
	}
	return n
}
