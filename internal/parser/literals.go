package parser

import (
	"lpcfmt/internal/diag"
	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// parseArrayLiteral: ({ a, b, c })
func (p *Parser) parseArrayLiteral() *tree.Node {
	n := tree.NewNode(tree.ArrayLiteral, p.advance())
	if !p.at(token.RBrace) {
		n.Append(p.parseExpressionList(token.RBrace))
	}
	n.Append(p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close array literal"))
	n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after '}' in array literal"))
	return n
}

// parseMappingLiteral: ([ k : v, k2 : v1 ; v2 ])
func (p *Parser) parseMappingLiteral() *tree.Node {
	n := tree.NewNode(tree.MappingLiteral, p.advance())
	for !p.atOr(token.RBracket, token.EOF) {
		start := p.pos
		n.Append(p.parseMappingPair())
		if p.pos == start {
			break
		}
		if !p.at(token.Comma) {
			break
		}
		n.Append(p.advance())
	}
	n.Append(p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close mapping literal"))
	n.Append(p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after ']' in mapping literal"))
	return n
}

func (p *Parser) parseMappingPair() *tree.Node {
	pair := tree.NewNode(tree.MappingPair, p.parseConditional())
	if !p.at(token.Colon) {
		p.err(diag.SynUnexpectedToken, "expected ':' in mapping pair")
		return pair
	}
	pair.Append(p.advance())
	pair.Append(p.parseAssignment())
	// многозначные mapping: k : v1 ; v2
	for p.at(token.Semicolon) {
		pair.Append(p.advance())
		pair.Append(p.parseAssignment())
	}
	return pair
}
