package format

import (
	"strings"

	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

// DeclarationFormatter lays out functions, variables, types, classes and the
// include/inherit lines.
type DeclarationFormatter struct {
	ctx *Context
}

func (f *DeclarationFormatter) Category() Category { return CategoryDeclaration }

func (f *DeclarationFormatter) Operations() []Operation {
	out := make([]Operation, 0, OpInheritStatement-OpFunctionDef+1)
	for op := OpFunctionDef; op <= OpInheritStatement; op++ {
		out = append(out, op)
	}
	return out
}

func (f *DeclarationFormatter) Format(op Operation, n *tree.Node) (string, error) {
	if err := checkKind(op, n); err != nil {
		return "", err
	}
	switch op {
	case OpFunctionDef:
		return f.function(n), nil
	case OpVariableDecl, OpStructMember:
		return f.variable(n), nil
	case OpParameter:
		return f.parameter(n), nil
	case OpParameterList:
		return f.parameters(n), nil
	case OpTypeSpec:
		return f.typeSpec(n), nil
	case OpStructDef, OpClassDef:
		return f.structDef(n), nil
	case OpStructMemberList:
		open, inner, cl := brackets(n, token.LBrace, token.RBrace)
		return f.ctx.braced(open, inner, cl, true), nil
	case OpIncludeStatement:
		return f.include(n), nil
	case OpInheritStatement:
		return f.inherit(n), nil
	}
	return "", unsupported(f.Category(), op)
}

// modifiers renders a Modifiers node in canonical order. Comments of the
// modifier tokens are kept in front and behind.
func (f *DeclarationFormatter) modifiers(n *tree.Node) string {
	var names []string
	var lead, trail strings.Builder
	for _, m := range n.Children() {
		l, _ := splitLeading(m)
		lead.WriteString(l)
		trail.WriteString(trailingText(m))
		names = append(names, m.Token().Text)
	}
	return lead.String() + f.ctx.Core.FormatModifiers(names) + trail.String()
}

// starred joins a type, the stars of a declarator and its name according to
// SpaceAfterTypeBeforeStar and StarSpacePosition.
func (f *DeclarationFormatter) starred(typ string, stars []*tree.Node, name string) string {
	o := f.ctx.Options
	var sb strings.Builder
	sb.WriteString(typ)
	if len(stars) == 0 {
		if typ != "" && name != "" {
			sb.WriteByte(' ')
		}
		sb.WriteString(name)
		return sb.String()
	}
	spaceBefore := o.SpaceAfterTypeBeforeStar || o.StarSpacePosition != StarAfter
	spaceAfter := o.StarSpacePosition == StarBoth || (!o.SpaceAfterTypeBeforeStar && o.StarSpacePosition == StarAfter)
	if typ != "" && spaceBefore {
		sb.WriteByte(' ')
	}
	for _, s := range stars {
		sb.WriteString(TerminalText(s))
	}
	if name != "" && spaceAfter {
		sb.WriteByte(' ')
	}
	sb.WriteString(name)
	return sb.String()
}

// head renders optional modifiers and type as the prefix of a declaration.
func (f *DeclarationFormatter) head(mods, typ *tree.Node) string {
	var parts []string
	if mods != nil {
		parts = append(parts, trimRightSpace(f.modifiers(mods)))
	}
	if typ != nil {
		parts = append(parts, f.ctx.Visit(typ))
	}
	w := NewWriter(f.ctx.Source)
	for i, p := range parts {
		if i > 0 {
			w.Space()
		}
		w.WriteString(p)
	}
	return w.String()
}

func (f *DeclarationFormatter) function(n *tree.Node) string {
	ctx := f.ctx
	w := NewWriter(ctx.Source)
	var mods, typ *tree.Node
	for _, ch := range n.Children() {
		switch {
		case ch.Kind() == tree.Modifiers:
			mods = ch
		case ch.Kind() == tree.TypeSpec:
			typ = ch
		case ch.Is(token.Ident):
			head := f.head(mods, typ)
			w.WriteString(head)
			if head != "" && !strings.HasSuffix(head, "*") && !strings.HasSuffix(head, "\n") {
				w.Space()
			} else if strings.HasSuffix(head, "*") && f.starSpaceAfter() {
				w.Space()
			}
			w.WriteString(TerminalText(ch))
		case ch.Kind() == tree.ParameterList:
			w.MaybeSpace(ctx.Layout.SpaceBeforeOpenParen)
			w.WriteString(ctx.Visit(ch))
		case ch.Kind() == tree.Block:
			if ctx.Layout.BracesOnNewLine {
				w.Newline()
			} else {
				w.Space()
			}
			w.WriteString(ctx.Visit(ch))
		default:
			w.WriteString(ctx.Visit(ch))
		}
	}
	return w.String()
}

func (f *DeclarationFormatter) starSpaceAfter() bool {
	o := f.ctx.Options
	return o.StarSpacePosition == StarBoth || (!o.SpaceAfterTypeBeforeStar && o.StarSpacePosition == StarAfter)
}

// variable renders a VariableDecl or StructMember.
func (f *DeclarationFormatter) variable(n *tree.Node) string {
	ctx := f.ctx
	w := NewWriter(ctx.Source)
	var mods, typ *tree.Node
	first := true
	for _, ch := range n.Children() {
		switch {
		case ch.Kind() == tree.Modifiers:
			mods = ch
		case ch.Kind() == tree.TypeSpec:
			typ = ch
		case ch.Kind() == tree.VariableDeclarator:
			head := ""
			if first {
				head = f.head(mods, typ)
				first = false
			}
			w.WriteString(f.declarator(ch, head))
		case ch.Is(token.Comma):
			w.WriteString(TerminalText(ch))
			w.MaybeSpace(ctx.Layout.SpaceAfterComma)
		default:
			if first && (mods != nil || typ != nil) {
				w.WriteString(f.head(mods, typ))
				first = false
			}
			w.WriteString(ctx.Visit(ch))
		}
	}
	if first && (mods != nil || typ != nil) {
		w.WriteString(f.head(mods, typ))
	}
	return w.String()
}

// declarator renders stars, name and initializer, prefixed by head.
func (f *DeclarationFormatter) declarator(n *tree.Node, head string) string {
	ctx := f.ctx
	var stars []*tree.Node
	name := ""
	w := NewWriter(ctx.Source)
	named := false
	for _, ch := range n.Children() {
		switch {
		case ch.Is(token.Star) && !named:
			stars = append(stars, ch)
		case ch.Is(token.Ident) && !named:
			name = TerminalText(ch)
			named = true
			w.WriteString(f.starred(head, stars, name))
		case ch.Is(token.Assign):
			if !named {
				w.WriteString(f.starred(head, stars, ""))
				named = true
			}
			w.WriteString(ctx.op(ch, true))
		default:
			w.WriteString(ctx.Visit(ch))
		}
	}
	if !named {
		w.WriteString(f.starred(head, stars, name))
	}
	return w.String()
}

func (f *DeclarationFormatter) parameter(n *tree.Node) string {
	ctx := f.ctx
	w := NewWriter(ctx.Source)
	var mods, typ *tree.Node
	var stars []*tree.Node
	named := false
	flush := func(name string) {
		w.WriteString(f.starred(f.head(mods, typ), stars, name))
		named = true
	}
	for _, ch := range n.Children() {
		switch {
		case ch.Kind() == tree.Modifiers:
			mods = ch
		case ch.Kind() == tree.TypeSpec:
			typ = ch
		case ch.Is(token.Star) && !named:
			stars = append(stars, ch)
		case ch.Is(token.Ident) && !named:
			flush(TerminalText(ch))
		case ch.Is(token.DotDotDot):
			if !named {
				flush("")
			}
			w.WriteString(TerminalText(ch))
		case ch.Is(token.Assign) || ch.Is(token.Colon):
			if !named {
				flush("")
			}
			w.WriteString(ctx.op(ch, ch.Is(token.Assign)))
		default:
			w.WriteString(ctx.Visit(ch))
		}
	}
	if !named {
		flush("")
	}
	return w.String()
}

// parameters lays out a parameter list; it wraps one per line when the list
// is longer than ParamWrapThreshold and does not fit.
func (f *DeclarationFormatter) parameters(n *tree.Node) string {
	ctx := f.ctx
	open, inner, cl := brackets(n, token.LParen, token.RParen)
	items := ctx.listItems(inner)
	openText, closeText := TerminalText(open), TerminalText(cl)
	inline := openText + ctx.joinInline(items) + closeText
	if ctx.Quick || len(items) <= max(ctx.Layout.ParamWrapThreshold, 1) {
		return inline
	}
	if !ctx.Lines.TooLong(inline) {
		return inline
	}
	return ctx.multiline(openText, items, closeText)
}

func (f *DeclarationFormatter) typeSpec(n *tree.Node) string {
	var words []string
	var stars []*tree.Node
	for _, ch := range n.Children() {
		if ch.Is(token.Star) {
			stars = append(stars, ch)
			continue
		}
		words = append(words, trimRightSpace(f.ctx.Visit(ch)))
	}
	return f.starred(strings.Join(words, " "), stars, "")
}

func (f *DeclarationFormatter) structDef(n *tree.Node) string {
	ctx := f.ctx
	w := NewWriter(ctx.Source)
	for i, ch := range n.Children() {
		switch {
		case ch.Kind() == tree.StructMemberList:
			if ctx.Layout.BracesOnNewLine {
				w.Newline()
			} else {
				w.Space()
			}
			w.WriteString(ctx.Visit(ch))
		case ch.Is(token.Semicolon):
			w.WriteString(TerminalText(ch))
		default:
			if i > 0 {
				w.Space()
			}
			w.WriteString(ctx.Visit(ch))
		}
	}
	return w.String()
}

// include normalizes the spacing of an #include line.
func (f *DeclarationFormatter) include(n *tree.Node) string {
	tok := n.Child(0)
	if tok == nil {
		return ""
	}
	lead, _ := splitLeading(tok)
	return lead + NormalizeInclude(tok.Token().Text) + trailingText(tok)
}

// NormalizeInclude rewrites "#  include   <x>" as "#include <x>".
func NormalizeInclude(text string) string {
	if strings.Contains(text, "\\\n") {
		return strings.TrimRight(text, " \t")
	}
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "#"))
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "include"))
	return "#include " + rest
}

func (f *DeclarationFormatter) inherit(n *tree.Node) string {
	ctx := f.ctx
	w := NewWriter(ctx.Source)
	for _, ch := range n.Children() {
		switch {
		case ch.Kind() == tree.Modifiers:
			w.WriteString(trimRightSpace(f.modifiers(ch)))
			w.Space()
		case ch.Is(token.KwInherit):
			w.WriteString(TerminalText(ch))
			w.Space()
		default:
			w.WriteString(ctx.Visit(ch))
		}
	}
	return w.String()
}
