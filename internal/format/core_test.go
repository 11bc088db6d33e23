package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpcfmt/internal/tree"
)

func TestIndentManager(t *testing.T) {
	opts := DefaultOptions()
	im := NewIndentManager(opts)
	assert.Equal(t, "    ", im.Unit())
	im.Increase(2)
	assert.Equal(t, 2, im.Level())
	assert.Equal(t, "        ", im.Current())
	im.Decrease(5)
	assert.Equal(t, 0, im.Level(), "level never goes negative")

	got := im.WithIndent(1, func() string { return im.Current() })
	assert.Equal(t, "    ", got)
	assert.Equal(t, 0, im.Level(), "WithIndent restores the level")

	assert.Equal(t, 1, im.ContextLevel(IndentCase))
	assert.Equal(t, 1, im.ContextLevel(IndentNested))
	assert.Equal(t, 1, im.ContextLevel(IndentParameter))
	assert.Equal(t, 0, im.ContextLevel(IndentDefault))
	assert.Equal(t, 2, im.LineLevel("\t    x"))

	opts.InsertSpaces = false
	opts.IndentSize = 2
	tabs := NewIndentManager(opts)
	assert.Equal(t, "\t  ", tabs.Indent(3))
	assert.Equal(t, "\t", tabs.Unit())

	opts.SwitchCaseAlignment = CaseAlign
	assert.Equal(t, 0, NewIndentManager(opts).ContextLevel(IndentCase))
}

func TestIndentLines(t *testing.T) {
	in := "a;\n\n/* one\n   two */\nb;\n#define X \\\n  1\nc;"
	want := "  a;\n\n  /* one\n   two */\n  b;\n  #define X \\\n  1\n  c;"
	assert.Equal(t, want, IndentLines(in, "  "))

	quoted := "s = \"/*\";\nx;"
	assert.Equal(t, "\ts = \"/*\";\n\tx;", IndentLines(quoted, "\t"))
}

func TestLineBreakManager(t *testing.T) {
	layout := LayoutFromOptions(DefaultOptions())
	lb := NewLineBreakManager(&layout, nil)

	assert.Equal(t, 7, lb.EstimateLineLength("a + b"))
	assert.False(t, lb.ShouldWrap([]string{"only"}, ", ", 0))
	assert.True(t, lb.ShouldWrap(strings.Fields("a b c d e f"), ", ", 0))
	assert.True(t, lb.ShouldWrap([]string{strings.Repeat("x", 50), strings.Repeat("y", 50)}, ", ", 0))

	assert.True(t, lb.ShouldWrapInContext(WrapParameters, 4))
	assert.False(t, lb.ShouldWrapInContext(WrapArguments, 4))
	assert.True(t, lb.ShouldWrapInContext(WrapArray, 6))
	assert.True(t, lb.ShouldWrapInContext(WrapMapping, 4))
	assert.False(t, lb.ShouldWrapInContext(WrapMapping, 3))

	layout.MappingWrapThreshold = -1
	assert.False(t, lb.ShouldWrapInContext(WrapMapping, 100), "compact mappings never wrap by count")

	fn := tree.NewNode(tree.FunctionDef)
	inc := tree.NewNode(tree.IncludeStatement)
	decl := tree.NewNode(tree.VariableDecl)
	assert.Equal(t, "\n\n", lb.StatementSeparator(decl, fn))
	assert.Equal(t, "\n", lb.StatementSeparator(inc, inc))
	assert.Equal(t, "\n\n", lb.StatementSeparator(inc, decl))
	assert.Equal(t, "\n", lb.StatementSeparator(decl, decl))
	assert.Equal(t, 1, lb.MinBlankLines(decl, nil))
}

func TestCoreOperators(t *testing.T) {
	opts := DefaultOptions()
	layout := LayoutFromOptions(opts)
	core := NewCore(&layout, &opts)

	assert.Equal(t, "->", core.FormatOperator("->", false))
	assert.Equal(t, "::", core.FormatOperator("::", false))
	assert.Equal(t, " + ", core.FormatOperator("+", false))
	assert.Equal(t, " += ", core.FormatOperator("+=", false))

	layout.SpaceAroundOperators = false
	assert.Equal(t, "<=", core.FormatOperator("<=", false), "'<=' is a comparison, not an assignment")
	assert.Equal(t, " = ", core.FormatOperator("=", true))
	layout.SpaceAfterComma = false
	assert.Equal(t, ",", core.FormatComma())

	assert.Equal(t, "public static nomask varargs", core.FormatModifiers([]string{"varargs", "nomask", "static", "public"}))
	assert.Empty(t, core.FormatModifiers(nil))
}

func TestCoreNodeLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxNodeCount = 3
	layout := LayoutFromOptions(opts)
	core := NewCore(&layout, &opts)
	for range 3 {
		require.True(t, core.CheckNodeLimit())
	}
	assert.True(t, core.AtNodeLimit())
	assert.False(t, core.CheckNodeLimit())
	assert.Equal(t, 4, core.NodeCount())
	core.ResetNodeCount()
	assert.Zero(t, core.NodeCount())
	core.SetMaxNodes(0)
	assert.Equal(t, DefaultMaxNodes, core.MaxNodes())
}

func TestCollector(t *testing.T) {
	c := NewCollector(2)
	assert.Equal(t, "No errors found.", c.Report())
	c.AddError("first", "")
	c.AddError("second", "IfStatement")
	c.AddError("dropped", "")
	assert.Equal(t, 2, c.Count())
	assert.True(t, c.Full())
	assert.Equal(t, []string{"first", "second (context: IfStatement)"}, c.Errors())
	assert.Equal(t, []string{"second (context: IfStatement)"}, c.Recent(1))
	assert.Contains(t, c.Report(), "1. first")
	assert.Contains(t, c.Report(), "error limit (2)")
	c.Clear()
	assert.False(t, c.HasErrors())
}

func TestOperationNames(t *testing.T) {
	assert.Equal(t, "formatIfStatement", OpIfStatement.String())
	assert.Equal(t, "formatErrorNode", OpErrorNode.String())
	assert.Equal(t, "BlockFormatter", CategoryBlock.String())
	for op := OpInvalid + 1; op < opCount; op++ {
		back, ok := ParseOperation(op.String())
		require.True(t, ok, op.String())
		assert.Equal(t, op, back)
		byKind, ok := OperationFor(op.Kind())
		require.True(t, ok)
		assert.Equal(t, op, byKind)
	}
	_, ok := OperationFor(tree.CaseLabel)
	assert.False(t, ok, "case labels are laid out by their section")
}

func TestWriter(t *testing.T) {
	w := NewWriter(nil)
	w.Space()
	w.WriteString("a")
	w.Space()
	w.Space()
	w.WriteString("b")
	w.Newline()
	w.WriteString("   c")
	w.MaybeSpace(false)
	assert.Equal(t, "a b\nc", w.String())
	assert.False(t, w.CopyRange(0, 10), "no source attached")
}
