package parser

import (
	"strings"

	"lpcfmt/internal/diag"
	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

func (p *Parser) parseTopItem() *tree.Node {
	switch p.peek().Kind {
	case token.Directive:
		return p.parseDirective()
	case token.Semicolon:
		return tree.NewNode(tree.EmptyStatement, p.advance())
	case token.KwInherit:
		return p.parseInherit(nil)
	case token.KwClass, token.KwStruct:
		if p.peekAt(1).Kind == token.Ident && p.peekAt(2).Kind == token.LBrace {
			return p.parseStructDef()
		}
	case token.RBrace:
		return p.skipOne()
	}
	if p.peek().Kind.IsModifier() {
		i := 0
		for p.peekAt(i).Kind.IsModifier() {
			i++
		}
		if p.peekAt(i).Kind == token.KwInherit {
			return p.parseInherit(p.parseModifiers())
		}
	}
	return p.parseDeclaration(true)
}

// parseDirective: строка препроцессора целиком, #include выделяем отдельно.
func (p *Parser) parseDirective() *tree.Node {
	leaf := p.advance()
	if isInclude(leaf.Token().Text) {
		return tree.NewNode(tree.IncludeStatement, leaf)
	}
	return tree.NewNode(tree.Directive, leaf)
}

func isInclude(text string) bool {
	rest := strings.TrimLeft(strings.TrimPrefix(text, "#"), " \t")
	return strings.HasPrefix(rest, "include")
}

// parseInherit: [modifiers] inherit "path";
func (p *Parser) parseInherit(mods *tree.Node) *tree.Node {
	n := tree.NewNode(tree.InheritStatement, mods, p.advance())
	n.Append(p.parseConditional())
	n.Append(p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after inherit"))
	return n
}

func (p *Parser) parseModifiers() *tree.Node {
	if !p.peek().Kind.IsModifier() {
		return nil
	}
	n := tree.NewNode(tree.Modifiers)
	for p.peek().Kind.IsModifier() {
		n.Append(p.advance())
	}
	return n
}

// parseTypeSpec разбирает встроенный тип или class/struct Name.
// Возвращает nil, если тип здесь не начинается.
func (p *Parser) parseTypeSpec(withStars bool) *tree.Node {
	var n *tree.Node
	switch k := p.peek().Kind; {
	case k.IsTypeKeyword():
		n = tree.NewNode(tree.TypeSpec, p.advance())
	case (k == token.KwClass || k == token.KwStruct) && p.peekAt(1).Kind == token.Ident:
		n = tree.NewNode(tree.TypeSpec, p.advance(), p.advance())
	default:
		return nil
	}
	for withStars && p.at(token.Star) {
		n.Append(p.advance())
	}
	return n
}

// identTypeAhead: имя пользовательского типа перед именем объявления.
// Внутри тел функций признаём только форму "Type name".
func (p *Parser) identTypeAhead(top bool) bool {
	if !p.at(token.Ident) {
		return false
	}
	if p.peekAt(1).Kind == token.Ident {
		return true
	}
	if !top {
		return false
	}
	i := 1
	for p.peekAt(i).Kind == token.Star {
		i++
	}
	return i > 1 && p.peekAt(i).Kind == token.Ident
}

func (p *Parser) parseStars() []*tree.Node {
	var stars []*tree.Node
	for p.at(token.Star) {
		stars = append(stars, p.advance())
	}
	return stars
}

// parseDeclaration: [modifiers] [type] {'*'} name ( '(' params ')' body | declarators ';' )
func (p *Parser) parseDeclaration(top bool) *tree.Node {
	mods := p.parseModifiers()
	typ := p.parseTypeSpec(false)
	if typ == nil && p.identTypeAhead(top) {
		typ = tree.NewNode(tree.TypeSpec, p.advance())
	}
	stars := p.parseStars()

	if !p.at(token.Ident) {
		p.err(diag.SynExpectIdentifier, "expected declaration name, got "+describe(p.peek()))
		prefix := append([]*tree.Node{mods, typ}, stars...)
		return p.recoverTo(top, prefix...)
	}
	if p.peekAt(1).Kind == token.LParen {
		return p.parseFunctionRest(mods, typ, stars)
	}
	return p.parseVariableRest(tree.VariableDecl, mods, typ, stars, true)
}

func (p *Parser) parseFunctionRest(mods, typ *tree.Node, stars []*tree.Node) *tree.Node {
	if len(stars) > 0 {
		if typ == nil {
			typ = tree.NewNode(tree.TypeSpec)
		}
		for _, s := range stars {
			typ.Append(s)
		}
	}
	n := tree.NewNode(tree.FunctionDef, mods, typ, p.advance())
	n.Append(p.parseParameterList())
	switch {
	case p.at(token.LBrace):
		n.Append(p.parseBlock())
	case p.at(token.Semicolon):
		// прототип
		n.Append(p.advance())
	default:
		p.err(diag.SynUnexpectedToken, "expected function body or ';', got "+describe(p.peek()))
	}
	return n
}

func (p *Parser) parseParameterList() *tree.Node {
	n := tree.NewNode(tree.ParameterList, p.advance())
	for !p.atOr(token.RParen, token.EOF) {
		start := p.pos
		n.Append(p.parseParameter())
		if p.pos == start {
			break
		}
		if !p.at(token.Comma) {
			break
		}
		n.Append(p.advance())
	}
	n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close parameter list"))
	return n
}

// parseParameter: [modifiers] [type] {'*'} [name] ['...'] [default]
func (p *Parser) parseParameter() *tree.Node {
	n := tree.NewNode(tree.Parameter, p.parseModifiers())
	typ := p.parseTypeSpec(false)
	if typ == nil && p.at(token.Ident) {
		if k := p.peekAt(1).Kind; k == token.Ident || k == token.Star {
			typ = tree.NewNode(tree.TypeSpec, p.advance())
		}
	}
	n.Append(typ)
	for _, s := range p.parseStars() {
		n.Append(s)
	}
	p.eatInto(n, token.Ident)
	p.eatInto(n, token.DotDotDot)
	if p.atOr(token.Assign, token.Colon) {
		n.Append(p.advance())
		n.Append(p.parseAssignment())
	}
	if n.ChildCount() == 0 {
		return nil
	}
	return n
}

// parseVariableRest дочитывает declarators после типа; kind: VariableDecl
// или StructMember.
func (p *Parser) parseVariableRest(kind tree.NodeKind, mods, typ *tree.Node, stars []*tree.Node, semi bool) *tree.Node {
	n := tree.NewNode(kind, mods, typ)
	n.Append(p.parseDeclarator(stars))
	for p.at(token.Comma) {
		n.Append(p.advance())
		n.Append(p.parseDeclarator(p.parseStars()))
	}
	if semi {
		n.Append(p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after declaration"))
	}
	return n
}

func (p *Parser) parseDeclarator(stars []*tree.Node) *tree.Node {
	n := tree.NewNode(tree.VariableDeclarator, stars...)
	n.Append(p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name"))
	if p.at(token.Assign) {
		n.Append(p.advance())
		n.Append(p.parseAssignment())
	}
	return n
}

// parseStructDef: class Name { members } [;]
func (p *Parser) parseStructDef() *tree.Node {
	kind := tree.StructDef
	if p.at(token.KwClass) {
		kind = tree.ClassDef
	}
	n := tree.NewNode(kind, p.advance(), p.advance())

	list := tree.NewNode(tree.StructMemberList, p.advance())
	for !p.atOr(token.RBrace, token.EOF) {
		start := p.pos
		list.Append(p.parseStructMember())
		if p.pos == start {
			list.Append(p.skipOne())
		}
	}
	list.Append(p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close "+kind.String()))
	n.Append(list)
	p.eatInto(n, token.Semicolon)
	return n
}

func (p *Parser) parseStructMember() *tree.Node {
	mods := p.parseModifiers()
	typ := p.parseTypeSpec(false)
	if typ == nil && p.identTypeAhead(true) {
		typ = tree.NewNode(tree.TypeSpec, p.advance())
	}
	if typ == nil {
		if mods != nil {
			p.err(diag.SynUnexpectedToken, "expected member type, got "+describe(p.peek()))
			return p.recoverTo(false, mods)
		}
		return nil
	}
	return p.parseVariableRest(tree.StructMember, mods, typ, p.parseStars(), true)
}
