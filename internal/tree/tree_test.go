package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpcfmt/internal/source"
	"lpcfmt/internal/token"
)

func term(kind token.Kind, text string, start uint32) *Node {
	return NewTerminal(token.Token{
		Kind: kind,
		Text: text,
		Span: source.Span{Start: start, End: start + uint32(len(text))},
	})
}

func TestNodeBasics(t *testing.T) {
	expr := NewNode(AdditiveExpression,
		term(token.Ident, "a", 0),
		term(token.Plus, "+", 2),
		nil,
		term(token.IntLit, "1", 4),
	)
	stmt := NewNode(ExprStatement, expr, term(token.Semicolon, ";", 5))

	assert.Equal(t, 2, stmt.ChildCount())
	assert.Equal(t, 3, expr.ChildCount(), "nil children are skipped")
	assert.Equal(t, "a + 1 ;", stmt.Text())
	assert.Equal(t, source.Span{Start: 0, End: 6}, stmt.Span())
	assert.Equal(t, 6, stmt.Count())
	assert.Nil(t, stmt.Child(5))
	assert.Equal(t, "a", stmt.FirstTerminal().Text())
	assert.Equal(t, ";", stmt.LastTerminal().Text())
	assert.True(t, expr.TerminalOf(token.Plus).Is(token.Plus))
	assert.Equal(t, token.Invalid, expr.TokenKind())
	assert.False(t, stmt.HasErrors())

	stmt.Append(NewNode(Error, term(token.Invalid, "@", 7)))
	assert.True(t, stmt.HasErrors())
}

func TestKindNames(t *testing.T) {
	for _, k := range Kinds() {
		name := k.String()
		require.NotEqual(t, "Invalid", name, "kind %d has no name", k)
		back, ok := ParseKind(name)
		require.True(t, ok)
		require.Equal(t, k, back)
	}
	_, ok := ParseKind("NoSuchKind")
	assert.False(t, ok)
}

type fakeNode struct {
	kind     string
	text     string
	children []*fakeNode
}

func (f *fakeNode) KindName() string    { return f.kind }
func (f *fakeNode) IsTerminal() bool    { return f.kind == "" }
func (f *fakeNode) Text() string        { return f.text }
func (f *fakeNode) ChildCount() int     { return len(f.children) }
func (f *fakeNode) Child(i int) Foreign { return f.children[i] }

func TestAdaptForeignTree(t *testing.T) {
	foreign := &fakeNode{kind: "IfStatementContext", children: []*fakeNode{
		{text: "if"},
		{text: "("},
		{kind: "MysteryContext", children: []*fakeNode{{text: "x"}}},
		{text: ")"},
		{kind: "Block", children: []*fakeNode{{text: "{"}, {text: "}"}}},
	}}
	n := Adapt(foreign)
	require.Equal(t, IfStatement, n.Kind())
	assert.Equal(t, token.KwIf, n.Child(0).TokenKind())
	assert.Equal(t, Opaque, n.Child(2).Kind())
	assert.Equal(t, Block, n.Child(4).Kind())
	assert.Equal(t, token.LBrace, n.Child(4).Child(0).TokenKind())
}
