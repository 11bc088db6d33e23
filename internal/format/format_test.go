package format

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpcfmt/internal/parser"
	"lpcfmt/internal/tree"
)

// directVisitor dispatches by node kind to whichever formatter owns the
// operation; it stands in for the routed walker.
type directVisitor struct {
	ctx    *Context
	owners map[Operation]CategoryFormatter
}

func newDirectVisitor(ctx *Context) *directVisitor {
	v := &directVisitor{ctx: ctx, owners: make(map[Operation]CategoryFormatter)}
	for _, cat := range Categories() {
		f := ctx.Formatter(cat)
		for _, op := range f.Operations() {
			v.owners[op] = f
		}
	}
	return v
}

func (v *directVisitor) Visit(n *tree.Node) string {
	if n.IsTerminal() {
		return TerminalText(n)
	}
	if op, ok := OperationFor(n.Kind()); ok {
		if f := v.owners[op]; f != nil {
			if s, err := f.Format(op, n); err == nil {
				return s
			}
		}
	}
	w := NewWriter(v.ctx.Source)
	for _, ch := range n.Children() {
		w.WriteString(v.Visit(ch))
	}
	return w.String()
}

func formatSource(t *testing.T, src string, mutate func(*Options)) string {
	t.Helper()
	res := parser.ParseText("test.c", src, 100)
	require.Zero(t, res.Errors, "source should parse cleanly")
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	ctx, err := NewContext(opts)
	require.NoError(t, err)
	ctx.Source = res.File
	ctx.BindVisitor(newDirectVisitor(ctx))
	return ctx.Visit(res.Root)
}

func TestFormatDeclarations(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"spaced assignment", "int x=1;", "int x = 1;\n"},
		{"array pointer", "int *a=({1,2,3});", "int *a = ({1, 2, 3});\n"},
		{"several declarators", "string a,*b;", "string a, *b;\n"},
		{"compact mapping", `mapping m=(["a":1,"b":2]);`, "mapping m = ([\"a\" : 1, \"b\" : 2]);\n"},
		{
			"expanded mapping",
			`mapping m=(["a":1,"b":2,"c":3,"d":4]);`,
			"mapping m = ([\n    \"a\" : 1,\n    \"b\" : 2,\n    \"c\" : 3,\n    \"d\" : 4\n]);\n",
		},
		{"modifier order", "static private void f(){}", "private static void f() {}\n"},
		{"inherit", "private   inherit \"/std/room\" ;", "private inherit \"/std/room\";\n"},
		{"empty array", "mixed *a=({});", "mixed *a = ({});\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatSource(t, tc.src, nil))
		})
	}
}

func TestFormatFunctionBody(t *testing.T) {
	got := formatSource(t, "int add(int a,int b){return a+b;}", nil)
	assert.Equal(t, "int add(int a, int b) {\n    return a + b;\n}\n", got)
}

func TestFormatControlFlow(t *testing.T) {
	got := formatSource(t, "void f(){if(a)b();else{c();}for(i=0;i<10;i++)x++;while(y);}", nil)
	want := "void f() {\n" +
		"    if (a)\n" +
		"        b();\n" +
		"    else {\n" +
		"        c();\n" +
		"    }\n" +
		"    for (i = 0; i < 10; i++)\n" +
		"        x++;\n" +
		"    while (y);\n" +
		"}\n"
	assert.Equal(t, want, got)
}

func TestFormatSwitch(t *testing.T) {
	src := "void f(int x){switch(x){case 1:y();break;default:z();}}"
	want := "void f(int x) {\n" +
		"    switch (x) {\n" +
		"        case 1:\n" +
		"            y();\n" +
		"            break;\n" +
		"        default:\n" +
		"            z();\n" +
		"    }\n" +
		"}\n"
	assert.Equal(t, want, formatSource(t, src, nil))

	aligned := formatSource(t, src, func(o *Options) { o.SwitchCaseAlignment = CaseAlign })
	assert.Contains(t, aligned, "    switch (x) {\n    case 1:\n        y();\n")
}

func TestFormatKeepsComments(t *testing.T) {
	got := formatSource(t, "// header\nint x; // note\nint y;\n/* tail */\n", nil)
	assert.Equal(t, "// header\nint x; // note\nint y;\n/* tail */\n", got)
}

func TestFormatSeparatesTopLevelItems(t *testing.T) {
	got := formatSource(t, "int x;\nvoid f(){}\n\n\n\n\nvoid g(){}", nil)
	assert.Equal(t, "int x;\n\nvoid f() {}\n\n\nvoid g() {}\n", got)
}

func TestFormatSortsIncludes(t *testing.T) {
	src := "#include \"b.h\"\n#  include <z.h>\n#include <a.h>\nint x;\n"
	got := formatSource(t, src, nil)
	assert.Equal(t, "#include <a.h>\n#include <z.h>\n#include \"b.h\"\n\nint x;\n", got)

	kept := formatSource(t, src, func(o *Options) { o.IncludeStatementSorting = IncludeKeep })
	assert.Equal(t, "#include \"b.h\"\n#include <z.h>\n#include <a.h>\n\nint x;\n", kept)
}

func TestFormatWrapsLongParameterLists(t *testing.T) {
	src := "void f(int alpha,int beta,int gamma,int delta,int epsilon){}"
	got := formatSource(t, src, func(o *Options) { o.MaxLineLength = 40 })
	want := "void f(\n" +
		"    int alpha,\n" +
		"    int beta,\n" +
		"    int gamma,\n" +
		"    int delta,\n" +
		"    int epsilon\n" +
		") {}\n"
	assert.Equal(t, want, got)
}

func TestFormatUsesTabs(t *testing.T) {
	got := formatSource(t, "void f(){x();}", func(o *Options) { o.InsertSpaces = false })
	assert.Equal(t, "void f() {\n\tx();\n}\n", got)
}

func TestFormatCopiesErrorNodes(t *testing.T) {
	res := parser.ParseText("bad.c", "int = 5;\nint y;\n", 100)
	require.NotZero(t, res.Errors)
	ctx, err := NewContext(DefaultOptions())
	require.NoError(t, err)
	ctx.Source = res.File
	ctx.BindVisitor(newDirectVisitor(ctx))
	got := ctx.Visit(res.Root)
	assert.Contains(t, got, "int = 5;")
	assert.Contains(t, got, "int y;")
}

func TestFormatterRejectsForeignOperations(t *testing.T) {
	ctx, err := NewContext(DefaultOptions())
	require.NoError(t, err)
	block := tree.NewNode(tree.Block)

	_, err = ctx.Formatter(CategoryLiteral).Format(OpBlock, block)
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = ctx.Formatter(CategoryBlock).Format(OpProgram, block)
	assert.Error(t, err, "kind mismatch must be reported")

	_, err = ctx.Formatter(CategoryBlock).Format(OpBlock, nil)
	assert.Error(t, err)
}

func TestNewContextCopiesOptions(t *testing.T) {
	opts := DefaultOptions()
	ctx, err := NewContext(opts)
	require.NoError(t, err)
	opts.FunctionModifierOrder[0] = "nomask"
	assert.Equal(t, "public", ctx.Options.FunctionModifierOrder[0])

	other, err := NewContext(opts)
	require.NoError(t, err)
	assert.NotSame(t, ctx.Core, other.Core)
	for _, cat := range Categories() {
		require.NotNil(t, ctx.Formatter(cat), cat.String())
		assert.Equal(t, cat, ctx.Formatter(cat).Category())
	}
}

func TestFormatInheritanceStyle(t *testing.T) {
	src := "inherit \"/std/a\";\n\n\ninherit \"/std/b\";\n\n\n\nint x;\n"
	cases := []struct {
		style InheritStyle
		want  string
	}{
		{InheritAuto, "inherit \"/std/a\";\n\n\ninherit \"/std/b\";\n\n\nint x;\n"},
		{InheritSingleLine, "inherit \"/std/a\";\ninherit \"/std/b\";\n\n\nint x;\n"},
		{InheritGrouped, "inherit \"/std/a\";\ninherit \"/std/b\";\n\nint x;\n"},
	}
	for _, tc := range cases {
		t.Run(string(tc.style), func(t *testing.T) {
			got := formatSource(t, src, func(o *Options) { o.InheritanceStatementStyle = tc.style })
			assert.Equal(t, tc.want, got)
		})
	}
}
