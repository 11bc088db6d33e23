package parser

import (
	"fmt"
	"strings"
	"testing"

	"lpcfmt/internal/diag"
	"lpcfmt/internal/source"
	"lpcfmt/internal/token"
	"lpcfmt/internal/tree"
)

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func parseOK(t *testing.T, src string) *tree.Node {
	t.Helper()
	res := ParseText("test.c", src, 100)
	if res.Errors != 0 || res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(res.Bag))
	}
	return res.Root
}

func parseWithLimit(src string, bag *diag.Bag, limit uint) Result {
	fs := source.NewFileSet()
	id := fs.AddVirtual("limit.c", []byte(src))
	return ParseFile(fs.Get(id), Options{MaxErrors: limit, Reporter: diag.BagReporter{Bag: bag}})
}

func findFirst(root *tree.Node, kind tree.NodeKind) *tree.Node {
	var found *tree.Node
	root.Walk(func(n *tree.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind() == kind {
			found = n
			return false
		}
		return true
	})
	return found
}

func kindsOf(nodes []*tree.Node) []tree.NodeKind {
	out := make([]tree.NodeKind, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind()
	}
	return out
}

func TestParseFunctionDef(t *testing.T) {
	root := parseOK(t, "int add(int a, int b) {\n    return a + b;\n}\n")
	if root.ChildCount() != 1 || root.Child(0).Kind() != tree.FunctionDef {
		t.Fatalf("want one FunctionDef, got %v", kindsOf(root.Children()))
	}
	fn := root.Child(0)
	params := fn.ChildByKind(tree.ParameterList)
	if got := len(params.ChildrenByKind(tree.Parameter)); got != 2 {
		t.Fatalf("want 2 parameters, got %d", got)
	}
	ret := findFirst(fn, tree.ReturnStatement)
	if ret == nil {
		t.Fatal("return statement not found")
	}
	if ret.Child(1).Kind() != tree.AdditiveExpression {
		t.Errorf("return operand = %s, want AdditiveExpression", ret.Child(1).Kind())
	}
}

func TestParsePrecedence(t *testing.T) {
	root := parseOK(t, "void f() { x = 1 + 2 * 3 - 4; }")
	asg := findFirst(root, tree.AssignmentExpression)
	if asg == nil {
		t.Fatal("assignment not found")
	}
	sum := asg.Child(2)
	if sum.Kind() != tree.AdditiveExpression {
		t.Fatalf("rhs = %s, want AdditiveExpression", sum.Kind())
	}
	// 1 + (2*3) - 4 одной цепочкой
	if sum.ChildCount() != 5 {
		t.Fatalf("chain has %d children, want 5", sum.ChildCount())
	}
	if sum.Child(2).Kind() != tree.MultiplicativeExpression {
		t.Errorf("middle operand = %s, want MultiplicativeExpression", sum.Child(2).Kind())
	}
}

func TestParseLiterals(t *testing.T) {
	root := parseOK(t, `mapping m = ([ "a" : 1, "b" : 2 ]);
int *a = ({ 1, 2, 3 });
`)
	m := findFirst(root, tree.MappingLiteral)
	if m == nil {
		t.Fatal("mapping literal not found")
	}
	if got := len(m.ChildrenByKind(tree.MappingPair)); got != 2 {
		t.Errorf("mapping pairs = %d, want 2", got)
	}
	arr := findFirst(root, tree.ArrayLiteral)
	if arr == nil {
		t.Fatal("array literal not found")
	}
	list := arr.ChildByKind(tree.ExpressionList)
	if list == nil || list.ChildCount() != 5 {
		t.Fatalf("array elements malformed: %v", arr.Text())
	}
	decl := root.Child(1).ChildByKind(tree.VariableDeclarator)
	if !decl.Child(0).Is(token.Star) {
		t.Errorf("declarator should start with '*', got %q", decl.Child(0).Text())
	}
}

func TestParseTopLevelDirectives(t *testing.T) {
	root := parseOK(t, "#include <globals.h>\n#define X 1\ninherit \"/std/room\";\nprivate inherit ROOM;\n")
	want := []tree.NodeKind{tree.IncludeStatement, tree.Directive, tree.InheritStatement, tree.InheritStatement}
	got := kindsOf(root.Children())
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if root.Child(3).Child(0).Kind() != tree.Modifiers {
		t.Errorf("private inherit should keep modifiers")
	}
}

func TestParseComments(t *testing.T) {
	root := parseOK(t, "// header\nint x; // note\nint y;\n// tail\n")
	first := root.Child(0)
	if got := first.FirstTerminal().LeadingComments(); len(got) != 1 || got[0].Text != "// header" {
		t.Errorf("leading comments = %v", got)
	}
	semi := first.LastTerminal()
	if got := semi.TrailingComments(); len(got) != 1 || got[0].Text != "// note" {
		t.Errorf("trailing comments = %v", got)
	}
	if got := root.Child(1).FirstTerminal().LeadingComments(); len(got) != 0 {
		t.Errorf("second declaration should not own the trailing comment, got %v", got)
	}
	last := root.Child(root.ChildCount() - 1)
	if !last.Is(token.EOF) {
		t.Fatalf("tail comment should hang on EOF, last child is %s", last.Kind())
	}
}

func TestParseSwitch(t *testing.T) {
	root := parseOK(t, `void f(int x) {
    switch (x) {
    case 1:
    case 2:
        y();
        break;
    case 3..5:
        break;
    default:
        z();
    }
}`)
	sw := findFirst(root, tree.SwitchStatement)
	if sw == nil {
		t.Fatal("switch not found")
	}
	sections := sw.ChildrenByKind(tree.SwitchSection)
	if len(sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(sections))
	}
	if got := len(sections[0].ChildrenByKind(tree.CaseLabel)); got != 2 {
		t.Errorf("first section labels = %d, want 2", got)
	}
	if sections[1].Child(0).TerminalOf(token.DotDot) == nil {
		t.Errorf("range label lost its '..'")
	}
}

func TestParseStatements(t *testing.T) {
	root := parseOK(t, `void f() {
    foreach (string k, mixed v in m) { write(k); }
    for (int i = 0; i < 10; i++) ;
    do { i--; } while (i > 0);
    if (a) b(); else if (c) d(); else { e(); }
    while (1) break;
}`)
	for _, k := range []tree.NodeKind{
		tree.ForeachStatement, tree.ForStatement, tree.DoWhileStatement,
		tree.IfStatement, tree.WhileStatement, tree.BreakStatement, tree.PostfixExpression,
	} {
		if findFirst(root, k) == nil {
			t.Errorf("%s not found", k)
		}
	}
	fe := findFirst(root, tree.ForeachStatement)
	if got := len(fe.ChildrenByKind(tree.Parameter)); got != 2 {
		t.Errorf("foreach vars = %d, want 2", got)
	}
	loop := findFirst(root, tree.ForStatement)
	if loop.ChildByKind(tree.VariableDecl) == nil {
		t.Errorf("for init should be a declaration")
	}
}

func TestParseExpressions(t *testing.T) {
	root := parseOK(t, `void f() {
    x = (int)y;
    g = (: foo :);
    h = function(int a) { return a; };
    n = ob->query_name();
    s = arr[1..<2];
    t = c ? "a" "b" : ::create();
}`)
	for _, k := range []tree.NodeKind{
		tree.CastExpression, tree.ClosureExpression, tree.MemberCallExpression,
		tree.IndexExpression, tree.ConditionalExpression,
	} {
		if findFirst(root, k) == nil {
			t.Errorf("%s not found", k)
		}
	}
	mc := findFirst(root, tree.MemberCallExpression)
	if mc.ChildCount() != 5 {
		t.Errorf("member call children = %d (%s), want 5", mc.ChildCount(), mc.Text())
	}
	cond := findFirst(root, tree.ConditionalExpression)
	if cond.Child(2).Kind() != tree.Expression {
		t.Errorf("adjacent strings should be grouped, got %s", cond.Child(2).Kind())
	}
}

func TestParseClassDef(t *testing.T) {
	root := parseOK(t, "class point {\n    int x, y;\n    string label;\n}\n")
	cls := root.Child(0)
	if cls.Kind() != tree.ClassDef {
		t.Fatalf("kind = %s, want ClassDef", cls.Kind())
	}
	members := cls.ChildByKind(tree.StructMemberList).ChildrenByKind(tree.StructMember)
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
	if got := len(members[0].ChildrenByKind(tree.VariableDeclarator)); got != 2 {
		t.Errorf("first member declarators = %d, want 2", got)
	}
}

func TestParseRecovers(t *testing.T) {
	res := ParseText("bad.c", "int = 5;\nint y;\n", 100)
	if res.Errors == 0 {
		t.Fatal("expected a syntax error")
	}
	got := kindsOf(res.Root.Children())
	want := []tree.NodeKind{tree.Error, tree.VariableDecl}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("kinds = %v, want %v (%s)", got, want, diagnosticsSummary(res.Bag))
	}
	if !res.Root.HasErrors() {
		t.Errorf("HasErrors should report the error node")
	}
}

func TestParseGarbageTerminates(t *testing.T) {
	for _, src := range []string{")))}}}", "void f() { x = ;", "int f(", "({ ([ (:", "switch"} {
		res := ParseText("junk.c", src, 100)
		if res.Errors == 0 {
			t.Errorf("%q: expected errors", src)
		}
	}
}

func TestMaxErrorsCapsReports(t *testing.T) {
	bag := diag.NewBag(100)
	res := parseWithLimit(strings.Repeat("int = 1;\n", 20), bag, 3)
	if res.Errors < 3 {
		t.Fatalf("errors = %d, want at least 3", res.Errors)
	}
	if bag.Len() > 3 {
		t.Errorf("bag holds %d diagnostics, want at most 3", bag.Len())
	}
}

func TestParseDeepNestingIsBounded(t *testing.T) {
	const n = 200000
	cases := map[string]string{
		"parens":  "int x = " + strings.Repeat("(", n) + "1" + strings.Repeat(")", n) + ";\nint y;\n",
		"unary":   "int x = " + strings.Repeat("!", n) + "1;\nint y;\n",
		"blocks":  "void f() " + strings.Repeat("{", n) + strings.Repeat("}", n) + "\nint y;\n",
		"assigns": "void f() { " + strings.Repeat("a = ", n) + "1; }\nint y;\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			res := ParseText("deep.c", src, 100)
			if res.Errors == 0 {
				t.Fatal("expected a nesting error")
			}
			if !strings.Contains(diagnosticsSummary(res.Bag), "nesting deeper than") {
				t.Errorf("diagnostics = %s", diagnosticsSummary(res.Bag))
			}
			items := res.Root.NonTerminals()
			if len(items) == 0 || items[len(items)-1].Kind() != tree.VariableDecl {
				t.Fatalf("parsing did not resume after the deep item: %v", kindsOf(items))
			}
			if findFirst(res.Root, tree.Error) == nil {
				t.Errorf("the skipped tail should land in an Error node")
			}
		})
	}
}

func TestParseModerateNestingIsClean(t *testing.T) {
	src := "int x = " + strings.Repeat("(", 200) + "1" + strings.Repeat(")", 200) + ";\n"
	parseOK(t, src)
}
