package format

import (
	"strings"

	"lpcfmt/internal/source"
	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// TerminalText is the token text of a terminal together with the comments
// attached to it. A line comment always ends its line; a block comment keeps
// the line break it had in the source.
func TerminalText(n *tree.Node) string {
	if n == nil {
		return ""
	}
	return leadingText(n) + n.Token().Text + trailingText(n)
}

// splitLeading separates the comments in front of a terminal from the
// terminal itself and its trailing comments.
func splitLeading(n *tree.Node) (comments, rest string) {
	if n == nil {
		return "", ""
	}
	return leadingText(n), n.Token().Text + trailingText(n)
}

func leadingText(n *tree.Node) string {
	lead := n.Token().Leading
	var sb strings.Builder
	for i, tv := range lead {
		if !tv.IsComment() {
			continue
		}
		sb.WriteString(strings.TrimRight(tv.Text, "\r\n"))
		if tv.Kind == token.TriviaLineComment || newlineFollows(lead[i+1:]) {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func newlineFollows(rest []token.Trivia) bool {
	for _, tv := range rest {
		switch tv.Kind {
		case token.TriviaNewline:
			return true
		case token.TriviaSpace:
		default:
			return false
		}
	}
	return false
}

func trailingText(n *tree.Node) string {
	trail := n.TrailingComments()
	if len(trail) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, tv := range trail {
		sb.WriteByte(' ')
		sb.WriteString(strings.TrimRight(tv.Text, "\r\n"))
	}
	if trail[len(trail)-1].Kind == token.TriviaLineComment {
		sb.WriteByte('\n')
	}
	return sb.String()
}

// hasComments reports whether any terminal under n carries a comment.
func hasComments(n *tree.Node) bool {
	found := false
	n.Walk(func(c *tree.Node) bool {
		if c.IsTerminal() && (len(c.LeadingComments()) > 0 || len(c.TrailingComments()) > 0) {
			found = true
		}
		return !found
	})
	return found
}

// trimNL drops trailing line breaks and blanks.
func trimNL(s string) string { return strings.TrimRight(s, " \t\r\n") }

// listItems renders a comma separated run of children. Each item keeps its
// own comma and the comments around it; '...' sticks to its element.
func (c *Context) listItems(children []*tree.Node) []string {
	var items []string
	w := NewWriter(c.Source)
	for _, ch := range children {
		switch {
		case ch.Is(token.Comma):
			w.WriteString(TerminalText(ch))
			items = append(items, w.String())
			w = NewWriter(c.Source)
		case ch.Is(token.DotDotDot):
			w.WriteString(TerminalText(ch))
		default:
			w.WriteString(c.Visit(ch))
		}
	}
	if w.Len() > 0 {
		items = append(items, w.String())
	}
	return items
}

// joinInline lays items out on one line.
func (c *Context) joinInline(items []string) string {
	w := NewWriter(c.Source)
	for i, it := range items {
		if i > 0 {
			w.MaybeSpace(c.Layout.SpaceAfterComma)
		}
		w.WriteString(it)
	}
	return w.String()
}

// joinLines puts every item on its own line.
func joinLines(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = trimNL(it)
	}
	return strings.Join(lines, "\n")
}

// multiline is open, the items one level deeper, then close on its own line.
func (c *Context) multiline(open string, items []string, close string) string {
	body := c.Indent.WithIndent(1, func() string { return joinLines(items) })
	return trimNL(open) + "\n" + IndentLines(body, c.unit()) + "\n" + close
}

// joinStatements separates statements by one newline plus the blank lines
// the source had, capped at MaxEmptyLines.
func (c *Context) joinStatements(stmts []*tree.Node) string {
	var sb strings.Builder
	for i, s := range stmts {
		text := trimNL(c.Visit(s))
		if i > 0 {
			sb.WriteByte('\n')
			blanks := min(s.BlankLinesBefore(), max(c.Layout.MaxEmptyLines, 0))
			sb.WriteString(strings.Repeat("\n", blanks))
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// braced renders open, the statements nested one level, and close. Comments
// in front of close stay inside the body. An empty body collapses to "{}".
func (c *Context) braced(open *tree.Node, stmts []*tree.Node, close *tree.Node, indent bool) string {
	openText := TerminalText(open)
	closeLead, closeText := splitLeading(close)
	body := c.Indent.WithIndent(1, func() string { return c.joinStatements(stmts) })
	if closeLead = trimNL(closeLead); closeLead != "" {
		if body != "" {
			body += "\n"
		}
		body += closeLead
	}
	if body == "" && !strings.HasSuffix(openText, "\n") {
		return openText + closeText
	}
	if indent {
		body = IndentLines(body, c.unit())
	}
	if body == "" {
		return trimNL(openText) + "\n" + closeText
	}
	return trimNL(openText) + "\n" + body + "\n" + closeText
}

// brackets returns the first child if it is the open token and the last
// child if it is the close token, plus everything between.
func brackets(n *tree.Node, open, close token.Kind) (o *tree.Node, inner []*tree.Node, cl *tree.Node) {
	kids := n.Children()
	if len(kids) > 0 && kids[0].Is(open) {
		o = kids[0]
		kids = kids[1:]
	}
	if len(kids) > 0 && kids[len(kids)-1].Is(close) {
		cl = kids[len(kids)-1]
		kids = kids[:len(kids)-1]
	}
	return o, kids, cl
}

// VerbatimText returns the source text of n as written, with the comments
// attached to its first and last terminals. Without a source file it falls
// back to space-joined terminal text.
func VerbatimText(n *tree.Node, sf *source.File) string {
	first, last := n.FirstTerminal(), n.LastTerminal()
	if first == nil {
		return ""
	}
	w := NewWriter(sf)
	lead, _ := splitLeading(first)
	w.WriteString(lead)
	if !w.CopySpan(n.Span()) {
		w.WriteString(strings.Join(n.TerminalTexts(), " "))
	}
	w.WriteString(trailingText(last))
	return w.String()
}
