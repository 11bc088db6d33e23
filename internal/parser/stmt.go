package parser

import (
	"lpcfmt/internal/diag"
	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

func (p *Parser) parseBlock() *tree.Node {
	n := tree.NewNode(tree.Block, p.advance())
	for !p.atOr(token.RBrace, token.EOF) {
		start := p.pos
		n.Append(p.parseStatement())
		if p.pos == start {
			n.Append(p.skipOne())
		}
	}
	n.Append(p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close block"))
	return n
}

func (p *Parser) parseStatement() *tree.Node {
	if bad := p.enter(); bad != nil {
		return bad
	}
	defer p.leave()
	switch p.peek().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwDo:
		return p.parseDoWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwForeach:
		return p.parseForeach()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwBreak:
		return p.parseJump(tree.BreakStatement)
	case token.KwContinue:
		return p.parseJump(tree.ContinueStatement)
	case token.KwReturn:
		n := tree.NewNode(tree.ReturnStatement, p.advance())
		if !p.at(token.Semicolon) {
			n.Append(p.parseExpression())
		}
		n.Append(p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after return"))
		return n
	case token.Semicolon:
		return tree.NewNode(tree.EmptyStatement, p.advance())
	case token.Directive:
		return p.parseDirective()
	}
	if p.atLocalDecl() {
		return p.parseDeclaration(false)
	}
	return p.parseExprStatement()
}

// atLocalDecl: начинается ли здесь объявление локальной переменной.
func (p *Parser) atLocalDecl() bool {
	k := p.peek().Kind
	switch {
	case k == token.KwFunction && p.peekAt(1).Kind == token.LParen:
		return false
	case k.IsTypeKeyword() || k.IsModifier():
		return true
	case (k == token.KwClass || k == token.KwStruct) && p.peekAt(1).Kind == token.Ident:
		return true
	}
	return p.identTypeAhead(false)
}

func (p *Parser) parseExprStatement() *tree.Node {
	n := tree.NewNode(tree.ExprStatement, p.parseExpression())
	n.Append(p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after expression"))
	return n
}

func (p *Parser) parseJump(kind tree.NodeKind) *tree.Node {
	n := tree.NewNode(kind, p.advance())
	n.Append(p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after "+kind.String()))
	return n
}

// parseParenCond: '(' expr ')'
func (p *Parser) parseParenCond(n *tree.Node, what string) {
	n.Append(p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after "+what))
	n.Append(p.parseExpression())
	n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after "+what+" condition"))
}

// parseBody: тело управляющей конструкции; пустое тело на EOF не разбираем.
func (p *Parser) parseBody(n *tree.Node) {
	if p.atOr(token.EOF, token.RBrace) {
		p.err(diag.SynUnexpectedToken, "expected statement, got "+describe(p.peek()))
		return
	}
	n.Append(p.parseStatement())
}

func (p *Parser) parseIf() *tree.Node {
	n := tree.NewNode(tree.IfStatement, p.advance())
	p.parseParenCond(n, "if")
	p.parseBody(n)
	if p.at(token.KwElse) {
		n.Append(p.advance())
		p.parseBody(n)
	}
	return n
}

func (p *Parser) parseWhile() *tree.Node {
	n := tree.NewNode(tree.WhileStatement, p.advance())
	p.parseParenCond(n, "while")
	p.parseBody(n)
	return n
}

func (p *Parser) parseDoWhile() *tree.Node {
	n := tree.NewNode(tree.DoWhileStatement, p.advance())
	p.parseBody(n)
	n.Append(p.expect(token.KwWhile, diag.SynUnexpectedToken, "expected 'while' after do body"))
	p.parseParenCond(n, "do-while")
	n.Append(p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after do-while"))
	return n
}

// parseFor: for ( [init] ; [cond] ; [update] ) body
func (p *Parser) parseFor() *tree.Node {
	n := tree.NewNode(tree.ForStatement, p.advance())
	n.Append(p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after for"))
	if !p.at(token.Semicolon) {
		if p.atLocalDecl() {
			mods := p.parseModifiers()
			typ := p.parseTypeSpec(false)
			if typ == nil && p.identTypeAhead(false) {
				typ = tree.NewNode(tree.TypeSpec, p.advance())
			}
			n.Append(p.parseVariableRest(tree.VariableDecl, mods, typ, p.parseStars(), false))
		} else {
			n.Append(p.parseExpression())
		}
	}
	n.Append(p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' in for header"))
	if !p.at(token.Semicolon) {
		n.Append(p.parseExpression())
	}
	n.Append(p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' in for header"))
	if !p.at(token.RParen) {
		n.Append(p.parseExpression())
	}
	n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close for header"))
	p.parseBody(n)
	return n
}

// parseForeach: foreach ( [type] a [, [type] b] in|: expr ) body
func (p *Parser) parseForeach() *tree.Node {
	n := tree.NewNode(tree.ForeachStatement, p.advance())
	n.Append(p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after foreach"))
	for !p.atOr(token.KwIn, token.Colon, token.RParen, token.EOF) {
		start := p.pos
		n.Append(p.parseParameter())
		if p.pos == start || !p.at(token.Comma) {
			break
		}
		n.Append(p.advance())
	}
	if p.atOr(token.KwIn, token.Colon) {
		n.Append(p.advance())
	} else {
		p.err(diag.SynUnexpectedToken, "expected 'in' in foreach header")
	}
	n.Append(p.parseExpression())
	n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close foreach header"))
	p.parseBody(n)
	return n
}

func (p *Parser) parseSwitch() *tree.Node {
	n := tree.NewNode(tree.SwitchStatement, p.advance())
	p.parseParenCond(n, "switch")
	if !p.at(token.LBrace) {
		p.err(diag.SynUnexpectedToken, "expected '{' after switch")
		return n
	}
	n.Append(p.advance())
	for !p.atOr(token.RBrace, token.EOF) {
		start := p.pos
		n.Append(p.parseSwitchSection())
		if p.pos == start {
			n.Append(p.skipOne())
		}
	}
	n.Append(p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close switch"))
	return n
}

// parseSwitchSection: один или несколько case-меток и операторы под ними.
func (p *Parser) parseSwitchSection() *tree.Node {
	sec := tree.NewNode(tree.SwitchSection)
	for p.atOr(token.KwCase, token.KwDefault) {
		sec.Append(p.parseCaseLabel())
	}
	for !p.atOr(token.KwCase, token.KwDefault, token.RBrace, token.EOF) {
		start := p.pos
		sec.Append(p.parseStatement())
		if p.pos == start {
			sec.Append(p.skipOne())
		}
	}
	if sec.ChildCount() == 0 {
		return nil
	}
	return sec
}

// parseCaseLabel: case expr [.. expr] : | default :
func (p *Parser) parseCaseLabel() *tree.Node {
	n := tree.NewNode(tree.CaseLabel, p.advance())
	if n.Child(0).Is(token.KwCase) {
		if !p.at(token.DotDot) {
			n.Append(p.parseConditional())
		}
		if p.at(token.DotDot) {
			n.Append(p.advance())
			if !p.at(token.Colon) {
				n.Append(p.parseConditional())
			}
		}
	}
	n.Append(p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after case label"))
	return n
}
