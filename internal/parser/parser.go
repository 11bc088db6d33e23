package parser

import (
	"slices"

	"lpcfmt/internal/diag"
	"lpcfmt/internal/lexer"
	"lpcfmt/internal/source"
	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Root *tree.Node
	File *source.File
	Bag  *diag.Bag
	// Errors counts syntax errors, including the ones past MaxErrors.
	Errors uint
}

// Parser: состояние парсера на один файл
type Parser struct {
	file     *source.File
	toks     []token.Token    // весь поток токенов, последний всегда EOF
	trailing [][]token.Trivia // комментарии до конца строки после токена i
	pos      int
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
	depth    int         // текущая вложенность рекурсивных правил
	tooDeep  bool        // SynTooDeep уже выдан
}

// ParseFile: входная точка для разбора одного файла.
// Лексер создаётся здесь же и пишет в тот же Reporter.
func ParseFile(file *source.File, opts Options) Result {
	lx := lexer.New(file, lexer.Options{Reporter: opts.Reporter})
	toks := lx.All()
	p := Parser{
		file:     file,
		toks:     toks,
		trailing: splitTrailing(toks),
		opts:     opts,
		lastSpan: source.Span{File: file.ID},
	}

	root := p.parseProgram()
	var bag *diag.Bag
	if br, ok := opts.Reporter.(diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{
		Root:   root,
		File:   file,
		Bag:    bag,
		Errors: p.opts.CurrentErrors,
	}
}

// ParseText parses an in-memory buffer. Diagnostics are collected into a
// fresh bag of the given capacity.
func ParseText(name, text string, maxDiagnostics int) Result {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(text))
	bag := diag.NewBag(maxDiagnostics)
	return ParseFile(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
}

// splitTrailing moves comments that sit on the same line after a token out
// of the next token's leading trivia.
func splitTrailing(toks []token.Token) [][]token.Trivia {
	trail := make([][]token.Trivia, len(toks))
	for i := 1; i < len(toks); i++ {
		lead := toks[i].Leading
		cut := 0
		for cut < len(lead) && lead[cut].Kind != token.TriviaNewline {
			cut++
		}
		var comments []token.Trivia
		for _, tv := range lead[:cut] {
			if tv.IsComment() {
				comments = append(comments, tv)
			}
		}
		if len(comments) == 0 {
			continue
		}
		trail[i-1] = comments
		toks[i].Leading = lead[cut:]
	}
	return trail
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

func (p *Parser) atEOF() bool {
	return p.at(token.EOF)
}

func (p *Parser) parseProgram() *tree.Node {
	prog := tree.NewNode(tree.Program)
	for !p.atEOF() {
		start := p.pos
		prog.Append(p.parseTopItem())
		if p.pos == start {
			prog.Append(p.skipOne())
		}
	}
	// комментарии в хвосте файла висят на EOF
	if eof := p.peek(); len(eof.Comments()) > 0 {
		prog.Append(tree.NewTerminal(eof))
	}
	return prog
}
