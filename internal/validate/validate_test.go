package validate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpcfmt/internal/format"
	"lpcfmt/internal/parser"
)

type ruleFunc struct {
	name     string
	priority int
	check    func(Input) (Outcome, error)
}

func (r ruleFunc) Name() string                    { return r.name }
func (r ruleFunc) Description() string             { return "test rule " + r.name }
func (r ruleFunc) Priority() int                   { return r.priority }
func (r ruleFunc) Check(in Input) (Outcome, error) { return r.check(in) }

func checkRule(t *testing.T, name string, in Input) Outcome {
	t.Helper()
	for _, r := range Builtin() {
		if r.Name() == name {
			out, err := r.Check(in)
			require.NoError(t, err)
			return out
		}
	}
	t.Fatalf("no rule %s", name)
	return Outcome{}
}

func TestSyntaxValidity(t *testing.T) {
	out := checkRule(t, RuleSyntaxValidity, Input{Original: "}", Formatted: "{{{"})
	assert.False(t, out.Passed)
	assert.Equal(t, Critical, out.Severity)
	assert.Zero(t, out.Score)
	assert.Equal(t, []string{"Unmatched braces: 3 open, 0 close"}, out.Messages)

	ok := checkRule(t, RuleSyntaxValidity, Input{Formatted: "int *a = ({1, 2});\nmapping m = ([\"{\" : 1]); // }\n"})
	assert.True(t, ok.Passed, ok.Messages)
	assert.Equal(t, 100, ok.Score)
}

func TestParseTreeIntegrity(t *testing.T) {
	out := checkRule(t, RuleParseTreeIntegrity, Input{})
	assert.False(t, out.Passed)
	assert.Zero(t, out.Score)

	clean := parser.ParseText("ok.c", "int x;", 10)
	assert.True(t, checkRule(t, RuleParseTreeIntegrity, Input{Tree: clean.Root}).Passed)

	bad := parser.ParseText("bad.c", "int = 5;\nint y;\n", 10)
	out = checkRule(t, RuleParseTreeIntegrity, Input{Tree: bad.Root})
	assert.False(t, out.Passed)
	assert.Equal(t, Error, out.Severity)
	assert.Less(t, out.Score, 100)
	require.Len(t, out.Messages, 1)
	assert.Contains(t, out.Messages[0], "error nodes")
}

func TestCodeInjection(t *testing.T) {
	kept := checkRule(t, RuleCodeInjection, Input{Original: `exec("ls");`, Formatted: `exec("ls");`})
	assert.True(t, kept.Passed, "patterns already in the input are not flagged")

	added := checkRule(t, RuleCodeInjection, Input{Original: "int x;", Formatted: "int x; eval(y);"})
	assert.False(t, added.Passed)
	assert.Equal(t, Error, added.Severity)
	assert.Zero(t, added.Score)
	assert.Len(t, added.Messages, 2, "pattern and size change")

	grown := checkRule(t, RuleCodeInjection, Input{Original: "int x;", Formatted: "int x;\n\n\n\n\n\n\n\n"})
	assert.Equal(t, 70, grown.Score)
	assert.Contains(t, grown.Messages[0], "Significant size change detected")
}

func TestIndentationConsistency(t *testing.T) {
	good := "void f() {\n    x();\n    if (a) {\n        y();\n    }\n}\n"
	assert.True(t, checkRule(t, RuleIndentation, Input{Formatted: good}).Passed)

	comment := "/* head\n   body */\nvoid f() {\n    x();\n}\n#define X \\\n  1\n"
	assert.True(t, checkRule(t, RuleIndentation, Input{Formatted: comment}).Passed)

	mixed := "void f() {\n    x();\n\ty();\n      z();\n}\n"
	out := checkRule(t, RuleIndentation, Input{Formatted: mixed})
	assert.False(t, out.Passed)
	assert.Equal(t, Warning, out.Severity)
	assert.Equal(t, 70, out.Score)
	assert.Contains(t, out.Messages[0], "Line 3: Mixed spaces and tabs")
}

func TestCommentPreservation(t *testing.T) {
	orig := "// head\nint x; /* note */\n"
	assert.True(t, checkRule(t, RuleCommentPreservation, Input{Original: orig, Formatted: "// head\nint x;   /* note */\n"}).Passed)

	out := checkRule(t, RuleCommentPreservation, Input{Original: orig, Formatted: "// head\nint x;\n"})
	assert.False(t, out.Passed)
	assert.Equal(t, 60, out.Score)
	assert.Equal(t, []string{
		"Comment count mismatch: original 2, formatted 1",
		"Missing comments: 1 comments lost",
	}, out.Messages)

	nfd := "// cafe\u0301\n"
	nfc := "// caf\u00e9\n"
	assert.True(t, checkRule(t, RuleCommentPreservation, Input{Original: nfd, Formatted: nfc}).Passed)
}

func TestWhitespaceNormalization(t *testing.T) {
	out := checkRule(t, RuleWhitespace, Input{Formatted: "a;  \n\n\n\n\nb;\n"})
	assert.False(t, out.Passed)
	assert.Equal(t, 88, out.Score)
	assert.Equal(t, []string{"Found trailing spaces on 1 lines", "Found 2 excessive blank lines"}, out.Messages)
	assert.True(t, checkRule(t, RuleWhitespace, Input{Formatted: "a;\n\n\nb;\n"}).Passed)
}

func TestLineBreakConsistency(t *testing.T) {
	assert.True(t, checkRule(t, RuleLineBreaks, Input{Formatted: "a\r\nb\r\n"}).Passed)
	out := checkRule(t, RuleLineBreaks, Input{Formatted: "a\r\nb\nc\rd"})
	assert.False(t, out.Passed)
	assert.Equal(t, 80, out.Score)
	assert.Equal(t, []string{"Inconsistent line endings: 1 CRLF, 1 LF, 1 CR"}, out.Messages)
}

func TestBracePositionConsistency(t *testing.T) {
	same := "void f() {\n}\nvoid g() {\n    int *a = ({1});\n}\n"
	assert.True(t, checkRule(t, RuleBracePosition, Input{Formatted: same}).Passed)

	mixed := "void f() {\n}\nvoid g()\n{\n}\n"
	out := checkRule(t, RuleBracePosition, Input{Formatted: mixed})
	assert.False(t, out.Passed)
	assert.Equal(t, 85, out.Score)
}

func TestOperatorSpacing(t *testing.T) {
	out := checkRule(t, RuleOperatorSpacing, Input{Formatted: "x=a+b;\ny = -1;\nz = o->f(i);\n"})
	assert.Equal(t, []string{
		"Line 1: Missing spaces around '=' operator",
		"Line 1: Missing spaces around '+' operator",
	}, out.Messages)
	assert.Equal(t, 90, out.Score)

	ctx, err := format.NewContext(format.DefaultOptions())
	require.NoError(t, err)
	ctx.Layout.SpaceAroundOperators = false
	assert.True(t, checkRule(t, RuleOperatorSpacing, Input{Formatted: "x=a+b;", Context: ctx}).Passed)
}

func TestValidateAggregates(t *testing.T) {
	src := "int x=1;"
	res := parser.ParseText("x.c", src, 10)
	v := New(DefaultConfig())
	got := v.Validate(context.Background(), Input{Original: src, Formatted: "int x = 1;\n", Tree: res.Root})
	assert.True(t, got.Passed, got.Messages)
	assert.Equal(t, Info, got.Severity)
	assert.Equal(t, 100, got.Score)
	assert.Equal(t, 9, got.Stats.RulesChecked)
	assert.Equal(t, 9, got.Stats.RulesPassed)

	broken := v.Validate(context.Background(), Input{Original: "}", Formatted: "{{{", Tree: res.Root})
	assert.False(t, broken.Passed)
	assert.Equal(t, Critical, broken.Severity)
	assert.Contains(t, broken.Messages, "[syntax-validity] Unmatched braces: 3 open, 0 close")
}

func TestValidateRuleFailures(t *testing.T) {
	v := New(Config{MaxErrors: 10, EnabledRules: []string{"boom", RuleLineBreaks}})
	v.RegisterRule(ruleFunc{name: "boom", priority: 200, check: func(Input) (Outcome, error) { panic("kaput") }})
	got := v.Validate(context.Background(), Input{Formatted: "a\n"})
	assert.Equal(t, []string{"Rule boom failed: panic: kaput"}, got.Messages)
	assert.Equal(t, Error, got.Severity)
	assert.Equal(t, 1, got.Stats.RulesChecked)
	assert.Equal(t, 1, got.Stats.IssuesFound)
	assert.Equal(t, 100, got.Score, "failed rules do not count towards the mean")
	assert.True(t, got.Passed)

	v.UpdateConfig(Config{StrictMode: true, MaxErrors: 10, EnabledRules: []string{"boom"}})
	assert.False(t, v.Validate(context.Background(), Input{}).Passed)
}

func TestValidateOrderAndLists(t *testing.T) {
	var order []string
	rec := func(name string, prio, score int) Rule {
		return ruleFunc{name: name, priority: prio, check: func(Input) (Outcome, error) {
			order = append(order, name)
			return Outcome{Passed: score == 100, Severity: Warning, Score: score, Messages: []string{"low"}}, nil
		}}
	}
	v := New(Config{MaxErrors: 10, MinQualityScore: 70, DisabledRules: []string{"c"}})
	for _, r := range Builtin() {
		require.True(t, v.UnregisterRule(r.Name()))
	}
	assert.False(t, v.UnregisterRule(RuleSyntaxValidity))
	v.RegisterRule(rec("a", 1, 40))
	v.RegisterRule(rec("b", 9, 100))
	v.RegisterRule(rec("c", 5, 0))

	got := v.Validate(context.Background(), Input{})
	assert.Equal(t, []string{"b", "a"}, order)
	assert.Equal(t, 70, got.Score)
	assert.Equal(t, Warning, got.Severity)
	assert.True(t, got.Passed)
	assert.Equal(t, []string{"[a] low"}, got.Messages)

	names := make([]string, 0, 3)
	for _, r := range v.Rules() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"b", "c", "a"}, names)

	cfg := v.Config()
	cfg.DisabledRules[0] = "b"
	assert.Equal(t, []string{"c"}, v.Config().DisabledRules)
}

func TestValidateTimeout(t *testing.T) {
	clk := clock.NewMock()
	v := New(Config{MaxErrors: 10, Timeout: time.Second, EnabledRules: []string{"slow", RuleSyntaxValidity}}).WithClock(clk)
	v.RegisterRule(ruleFunc{name: "slow", priority: 500, check: func(Input) (Outcome, error) {
		clk.Add(2 * time.Second)
		return Outcome{Passed: true, Score: 100}, nil
	}})
	got := v.Validate(context.Background(), Input{Formatted: "{"})
	assert.Equal(t, 1, got.Stats.RulesChecked)
	require.Len(t, got.Messages, 1)
	assert.True(t, strings.HasPrefix(got.Messages[0], "Validation stopped after 1 rules"))
	assert.Equal(t, Error, got.Severity)
	assert.Equal(t, 2*time.Second, got.Stats.Duration)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Zero(t, v.Validate(ctx, Input{}).Stats.RulesChecked)
}

func TestValidateParseTree(t *testing.T) {
	v := New(DefaultConfig())
	assert.False(t, v.ValidateParseTree(nil))
	assert.True(t, v.ValidateParseTree(parser.ParseText("x.c", "void f(){}", 10).Root))
}
