package format

import "strings"

// IndentContext selects the extra indentation of a construct.
type IndentContext uint8

const (
	IndentDefault IndentContext = iota
	IndentCase
	IndentNested
	IndentParameter
	IndentExpression
)

// IndentManager tracks the nesting level of a walk and renders indentation.
type IndentManager struct {
	level        int
	size         int
	tabSize      int
	useTabs      bool
	caseIndent   bool
	nestedIndent int
}

func NewIndentManager(o Options) *IndentManager {
	im := &IndentManager{
		tabSize:      max(o.TabSize, 1),
		caseIndent:   o.SwitchCaseAlignment != CaseAlign,
		nestedIndent: o.NestedStructureIndent,
	}
	im.Configure(o.IndentSize, !o.InsertSpaces)
	return im
}

// Configure replaces the unit size and the tab policy. Strategies call it
// before the walk.
func (im *IndentManager) Configure(size int, useTabs bool) {
	if size <= 0 {
		size = 4
	}
	im.size = size
	im.useTabs = useTabs
}

func (im *IndentManager) Level() int { return im.level }

func (im *IndentManager) Size() int { return im.size }

func (im *IndentManager) UsesTabs() bool { return im.useTabs }

func (im *IndentManager) Increase(delta int) { im.level += max(0, delta) }

func (im *IndentManager) Decrease(delta int) { im.level = max(0, im.level-delta) }

func (im *IndentManager) Set(level int) { im.level = max(0, level) }

func (im *IndentManager) Reset() { im.level = 0 }

// Indent renders level units; tabs absorb whole tab stops, spaces fill the rest.
func (im *IndentManager) Indent(level int) string {
	width := max(0, level*im.size)
	if !im.useTabs {
		return strings.Repeat(" ", width)
	}
	return strings.Repeat("\t", width/im.tabSize) + strings.Repeat(" ", width%im.tabSize)
}

// Current renders the current level.
func (im *IndentManager) Current() string { return im.Indent(im.level) }

// Unit is one level of indentation.
func (im *IndentManager) Unit() string {
	if im.useTabs {
		return "\t"
	}
	return strings.Repeat(" ", im.size)
}

// ContextLevel returns the level for a construct in the given context.
func (im *IndentManager) ContextLevel(ctx IndentContext) int {
	level := im.level
	switch ctx {
	case IndentCase:
		if im.caseIndent {
			level++
		}
	case IndentNested:
		level += im.nestedIndent / im.size
	case IndentParameter, IndentExpression:
		level++
	}
	return max(0, level)
}

func (im *IndentManager) ContextIndent(ctx IndentContext) string {
	return im.Indent(im.ContextLevel(ctx))
}

// WithIndent runs fn one or more levels deeper.
func (im *IndentManager) WithIndent(delta int, fn func() string) string {
	im.Increase(delta)
	defer im.Decrease(delta)
	return fn()
}

// LineLevel infers the level of an existing line.
func (im *IndentManager) LineLevel(line string) int {
	width := 0
	for _, ch := range line {
		switch ch {
		case ' ':
			width++
		case '\t':
			width += im.tabSize
		default:
			return width / im.size
		}
	}
	return width / im.size
}

// IndentLines prefixes every line of text with prefix. Empty lines stay empty,
// continuation lines of a multi-line block comment and lines following a
// backslash continuation are copied untouched.
func IndentLines(text, prefix string) string {
	if text == "" || prefix == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	inComment := false
	continued := false
	for i, line := range lines {
		verbatim := inComment || continued
		if !verbatim && strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
		inComment = scanCommentState(line, inComment)
		continued = !inComment && strings.HasSuffix(line, "\\")
	}
	return strings.Join(lines, "\n")
}

// scanCommentState reports whether a block comment is still open after line.
func scanCommentState(line string, open bool) bool {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case open:
			if ch == '*' && i+1 < len(line) && line[i+1] == '/' {
				open = false
				i++
			}
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '/' && i+1 < len(line):
			switch line[i+1] {
			case '/':
				return false
			case '*':
				open = true
				i++
			}
		}
	}
	return open
}
