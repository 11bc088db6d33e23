package format

import (
	"cmp"
	"slices"
	"strings"

	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// BlockFormatter lays out braces, whole files, unparsed regions and
// preprocessor lines.
type BlockFormatter struct {
	ctx *Context
}

func (f *BlockFormatter) Category() Category { return CategoryBlock }

func (f *BlockFormatter) Operations() []Operation {
	return []Operation{OpBlock, OpProgram, OpErrorNode, OpDirective}
}

func (f *BlockFormatter) Format(op Operation, n *tree.Node) (string, error) {
	if err := checkKind(op, n); err != nil {
		return "", err
	}
	switch op {
	case OpBlock:
		open, inner, cl := brackets(n, token.LBrace, token.RBrace)
		return f.ctx.braced(open, inner, cl, true), nil
	case OpProgram:
		return f.program(n), nil
	case OpErrorNode:
		return f.errorNode(n), nil
	case OpDirective:
		return trimRightSpace(TerminalText(n.Child(0))), nil
	}
	return "", unsupported(f.Category(), op)
}

// program joins top-level items. Items are separated by the blank lines the
// source had, never fewer than the separator rules ask for, never more than
// MaxEmptyLines.
func (f *BlockFormatter) program(n *tree.Node) string {
	ctx := f.ctx
	var items []*tree.Node
	var eof *tree.Node
	for _, ch := range n.Children() {
		if ch.Is(token.EOF) {
			eof = ch
			continue
		}
		items = append(items, ch)
	}
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = trimNL(ctx.Visit(it))
	}
	f.sortIncludes(items, texts)

	limit := max(ctx.Layout.MaxEmptyLines, 0)
	var sb strings.Builder
	for i, text := range texts {
		if i > 0 {
			blanks := max(items[i].BlankLinesBefore(), ctx.Lines.MinBlankLines(items[i-1], items[i]))
			blanks = f.inheritBlanks(items[i-1], items[i], blanks)
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat("\n", min(blanks, limit)))
		}
		sb.WriteString(text)
	}
	if eof != nil {
		if tail := trimNL(leadingText(eof)); tail != "" {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
				sb.WriteString(strings.Repeat("\n", min(eof.BlankLinesBefore(), limit)))
			}
			sb.WriteString(tail)
		}
	}
	return f.finish(sb.String())
}

// inheritBlanks applies InheritanceStatementStyle to the gap after an
// inherit line.
func (f *BlockFormatter) inheritBlanks(prev, next *tree.Node, blanks int) int {
	style := f.ctx.Options.InheritanceStatementStyle
	if style == "" || style == InheritAuto || prev.Kind() != tree.InheritStatement {
		return blanks
	}
	switch {
	case next.Kind() == tree.InheritStatement:
		return 0
	case style == InheritGrouped:
		return 1
	}
	return blanks
}

// finish applies the whole-file options.
func (f *BlockFormatter) finish(out string) string {
	o := f.ctx.Options
	if o.TrimTrailingWhitespace {
		lines := strings.Split(out, "\n")
		for i, l := range lines {
			lines[i] = strings.TrimRight(l, " \t")
		}
		out = strings.Join(lines, "\n")
	}
	out = strings.TrimRight(out, "\n")
	if o.InsertFinalNewline && out != "" {
		out += "\n"
	}
	return out
}

// sortIncludes reorders each run of adjacent #include lines that has no
// blank lines or comments inside.
func (f *BlockFormatter) sortIncludes(items []*tree.Node, texts []string) {
	mode := f.ctx.Options.IncludeStatementSorting
	if mode == IncludeKeep || mode == "" {
		return
	}
	for start := 0; start < len(items); {
		if items[start].Kind() != tree.IncludeStatement {
			start++
			continue
		}
		end := start + 1
		for end < len(items) && items[end].Kind() == tree.IncludeStatement && items[end].BlankLinesBefore() == 0 {
			end++
		}
		run := texts[start:end]
		if !slices.ContainsFunc(run, func(s string) bool { return !strings.HasPrefix(s, "#") || strings.Contains(s, "\n") }) {
			slices.SortStableFunc(run, func(a, b string) int { return compareIncludes(mode, a, b) })
		}
		start = end
	}
}

func compareIncludes(mode IncludeSorting, a, b string) int {
	pa, pb := includePath(a), includePath(b)
	if mode == IncludeSystemFirst {
		sa, sb := strings.HasPrefix(pa, "<"), strings.HasPrefix(pb, "<")
		if sa != sb {
			if sa {
				return -1
			}
			return 1
		}
	}
	return cmp.Compare(strings.Trim(pa, `<>"`), strings.Trim(pb, `<>"`))
}

func includePath(text string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "#"))
	return strings.TrimSpace(strings.TrimPrefix(rest, "include"))
}

// errorNode copies an unparsed region verbatim, comments around it included.
func (f *BlockFormatter) errorNode(n *tree.Node) string {
	text := VerbatimText(n, f.ctx.Source)
	if text == "" || !f.ctx.Layout.DebugComments {
		return text
	}
	lead, _ := splitLeading(n.FirstTerminal())
	return lead + "/* lpcfmt: unparsed */ " + strings.TrimPrefix(text, lead)
}
