package parser

import (
	"fmt"

	"lpcfmt/internal/diag"
	"lpcfmt/internal/source"
	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// advance: съедает текущий токен и возвращает его листом дерева.
// На EOF позиция не двигается.
func (p *Parser) advance() *tree.Node {
	tok := p.peek()
	leaf := tree.NewTerminal(tok)
	if tok.Kind == token.EOF {
		return leaf
	}
	leaf.SetTrailing(p.trailing[p.pos])
	p.lastSpan = tok.Span
	p.pos++
	return leaf
}

// eat съедает токен k, если он текущий; иначе nil.
func (p *Parser) eat(k token.Kind) *tree.Node {
	if p.at(k) {
		return p.advance()
	}
	return nil
}

// getDiagnosticSpan: лучший span для диагностики: на EOF указываем
// сразу после последнего съеденного токена.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет: репортим и возвращаем nil;
// NewNode пропускает nil, так что узел просто остаётся без этого листа.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) *tree.Node {
	if p.at(k) {
		return p.advance()
	}
	p.err(code, msg)
	return nil
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Reporter == nil {
		return false
	}
	if p.opts.Enough() && sev == diag.SevError && p.opts.CurrentErrors > p.opts.MaxErrors {
		return false // достигли максимального количества ошибок
	}
	p.opts.Reporter.Report(code, sev, sp, msg)
	return true
}

// skipOne оборачивает текущий токен в Error-узел. Гарантирует прогресс
// в циклах, которые иначе застряли бы.
func (p *Parser) skipOne() *tree.Node {
	if p.atEOF() {
		return nil
	}
	p.err(diag.SynUnexpectedToken, "unexpected "+describe(p.peek()))
	return tree.NewNode(tree.Error, p.advance())
}

// recoverTo съедает токены до ';' или до закрытия текущего '{...}' и
// складывает их в Error-узел вместе с уже разобранным префиксом.
// На верхнем уровне лишняя '}' съедается, внутри блока: остаётся блоку.
func (p *Parser) recoverTo(top bool, prefix ...*tree.Node) *tree.Node {
	node := tree.NewNode(tree.Error, prefix...)
	depth := 0
	for !p.atEOF() {
		switch p.peek().Kind {
		case token.Directive:
			if depth == 0 {
				return node
			}
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				if top {
					node.Append(p.advance())
				}
				return node
			}
			depth--
			node.Append(p.advance())
			if depth == 0 && top {
				p.eatInto(node, token.Semicolon)
				return node
			}
			continue
		case token.Semicolon:
			if depth == 0 {
				node.Append(p.advance())
				return node
			}
		}
		node.Append(p.advance())
	}
	return node
}

// maxNesting ограничивает вложенность выражений и операторов.
const maxNesting = 1000

// enter отмечает вход в рекурсивное правило. За пределом maxNesting
// возвращает Error-узел с пропущенным хвостом уровня, и правило должно
// вернуть его вместо разбора; иначе nil, и правило обязано вызвать leave.
func (p *Parser) enter() *tree.Node {
	if p.depth >= maxNesting {
		return p.skipNested()
	}
	p.depth++
	return nil
}

func (p *Parser) leave() { p.depth-- }

// skipNested съедает токены до закрывающей скобки текущего уровня, ';'
// или EOF. Закрывающая скобка остаётся объемлющему правилу.
func (p *Parser) skipNested() *tree.Node {
	if !p.tooDeep {
		p.tooDeep = true
		p.err(diag.SynTooDeep, fmt.Sprintf("nesting deeper than %d levels", maxNesting))
	}
	node := tree.NewNode(tree.Error)
	open := 0
	for !p.atEOF() {
		switch p.peek().Kind {
		case token.LParen, token.LBrace, token.LBracket, token.ClosureOpen:
			open++
		case token.ArrayOpen, token.MappingOpen:
			open += 2
		case token.RParen, token.RBrace, token.RBracket, token.ClosureClose:
			if open == 0 {
				return node
			}
			open--
		case token.Semicolon:
			if open == 0 {
				return node
			}
		}
		node.Append(p.advance())
	}
	return node
}

func (p *Parser) eatInto(n *tree.Node, k token.Kind) {
	if leaf := p.eat(k); leaf != nil {
		n.Append(leaf)
	}
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident:
		return "identifier " + tok.Text
	}
	if tok.Text != "" {
		return "'" + tok.Text + "'"
	}
	return tok.Kind.String()
}
