package strategy

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"lpcfmt/internal/format"
)

func newFormatContext(t *testing.T, mutate func(*format.Options)) *format.Context {
	t.Helper()
	opts := format.DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	ctx, err := format.NewContext(opts)
	require.NoError(t, err)
	return ctx
}

func request(text string) *format.Request {
	return &format.Request{Text: text, Mode: format.ModeFull, Options: format.DefaultOptions()}
}

type fixed struct {
	name       string
	typ        Type
	priority   float64
	applicable bool
	apply      func(*format.Context) error
}

func (f fixed) Name() string                      { return f.name }
func (f fixed) Type() Type                        { return f.typ }
func (f fixed) Description() string               { return "test strategy " + f.name }
func (f fixed) Priority() float64                 { return f.priority }
func (f fixed) IsApplicable(*format.Request) bool { return f.applicable }

func (f fixed) Apply(ctx *format.Context, _ *format.Request) error {
	if f.apply != nil {
		return f.apply(ctx)
	}
	return nil
}

func TestSelectBestPrefersPriority(t *testing.T) {
	m := NewManager(nil)
	got := m.SelectBest(request("int x=1;"))
	assert.Equal(t, TypeStandard, got.Type(), "Standard outranks Compact on small inputs")

	require.NoError(t, m.Register(fixed{name: "loud", typ: TypeCustom, priority: 90, applicable: true}))
	require.NoError(t, m.Register(fixed{name: "shy", typ: TypeCustom, priority: 99, applicable: false}))
	assert.Equal(t, "loud", m.SelectBest(request("")).Name())

	for _, s := range m.all() {
		if s.IsApplicable(request("")) {
			assert.LessOrEqual(t, s.Priority(), m.SelectBest(request("")).Priority())
		}
	}
}

func TestSelectBestFallsBackToStandard(t *testing.T) {
	m := NewManager(nil)
	never := fixed{name: "Never", typ: TypeCompact, priority: 10}
	require.NoError(t, m.Register(never))
	require.NoError(t, m.Register(fixed{name: "Never", typ: TypeStandard, priority: 10}))
	require.NoError(t, m.Register(fixed{name: "Never", typ: TypeDebug, priority: 10}))
	assert.Equal(t, "Never", m.SelectBest(request("x")).Name(), "registered Standard replacement is the fallback")
}

func TestCompactApplicability(t *testing.T) {
	c := Compact{}
	assert.True(t, c.IsApplicable(request("short")))

	long := strings.Repeat(strings.Repeat("x", 80)+"\n", 100)
	assert.False(t, c.IsApplicable(request(long)))

	short := strings.Repeat("x = 1;\n", 1000)
	assert.True(t, c.IsApplicable(request(short)))
}

func TestLookupAndRegistry(t *testing.T) {
	m := NewManager(nil)
	s, err := m.Lookup("compact")
	require.NoError(t, err)
	assert.Equal(t, "Compact", s.Name())

	_, err = m.Get("fancy")
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
	_, err = m.Lookup("fancy")
	assert.True(t, errors.Is(err, ErrUnknownStrategy))

	require.NoError(t, m.Register(fixed{name: "fancy", typ: TypeCustom, priority: 10}))
	s, err = m.Lookup("fancy")
	require.NoError(t, err)
	assert.Equal(t, TypeCustom, s.Type())
	assert.Len(t, m.AvailableStrategies(), 4)

	assert.True(t, m.RemoveCustomStrategy("fancy"))
	assert.False(t, m.RemoveCustomStrategy("fancy"))
	assert.Len(t, m.AvailableStrategies(), 3)
}

func TestValidateStrategy(t *testing.T) {
	m := NewManager(nil)
	assert.True(t, m.ValidateStrategy(Standard{}).Valid)

	cases := []struct {
		name string
		s    Strategy
		want string
	}{
		{"no name", fixed{typ: TypeCustom, priority: 1}, "valid name"},
		{"bad type", fixed{name: "x", typ: "weird", priority: 1}, "valid type"},
		{"priority too high", fixed{name: "x", typ: TypeCustom, priority: 101}, "between 0 and 100"},
		{"negative priority", fixed{name: "x", typ: TypeCustom, priority: -1}, "between 0 and 100"},
		{"NaN priority", fixed{name: "x", typ: TypeCustom, priority: math.NaN()}, "between 0 and 100"},
		{"infinite priority", fixed{name: "x", typ: TypeCustom, priority: math.Inf(1)}, "between 0 and 100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := m.ValidateStrategy(tc.s)
			assert.False(t, v.Valid)
			require.NotEmpty(t, v.Errors)
			assert.Contains(t, strings.Join(v.Errors, "; "), tc.want)
		})
	}

	err := m.Register(fixed{typ: TypeCustom, priority: 1})
	assert.True(t, errors.Is(err, ErrInvalidStrategy))
}

func TestStandardApply(t *testing.T) {
	ctx := newFormatContext(t, func(o *format.Options) {
		o.IndentSize = 2
		o.MaxLineLength = 0
		o.ArrayLiteralWrapThreshold = 0
		o.MappingLiteralFormat = ""
	})
	require.NoError(t, Standard{}.Apply(ctx, request("")))
	assert.Equal(t, 2, ctx.Layout.IndentSize)
	assert.Equal(t, "  ", ctx.Indent.Unit(), "indent manager follows the layout")
	assert.Equal(t, 120, ctx.Layout.MaxLineLength)
	assert.Equal(t, 3, ctx.Layout.ArrayWrapThreshold)
	assert.Equal(t, 2, ctx.Layout.MappingWrapThreshold)
	assert.Equal(t, 4, ctx.Layout.ParamWrapThreshold)
	assert.True(t, ctx.Layout.SpaceAroundAssignment)
}

func TestCompactApply(t *testing.T) {
	ctx := newFormatContext(t, nil)
	require.NoError(t, Compact{}.Apply(ctx, request("")))
	l := ctx.Layout
	assert.Equal(t, 2, l.IndentSize)
	assert.Equal(t, 140, l.MaxLineLength)
	assert.Equal(t, 8, l.ArrayWrapThreshold)
	assert.Equal(t, 5, l.MappingWrapThreshold)
	assert.Equal(t, 6, l.ParamWrapThreshold)
	assert.True(t, l.PreferSingleLine)
	assert.False(t, l.SpaceAfterSemicolon)
	assert.LessOrEqual(t, l.MaxEmptyLines, 1)

	compactMappings := newFormatContext(t, func(o *format.Options) { o.MappingLiteralFormat = format.MappingCompact })
	require.NoError(t, Compact{}.Apply(compactMappings, request("")))
	assert.Equal(t, -1, compactMappings.Layout.MappingWrapThreshold, "explicit mapping format is kept")
}

func TestDebugApplyLogsErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := newFormatContext(t, func(o *format.Options) { o.IndentSize = 2 })
	d := Debug{Log: zap.New(core).Sugar()}
	require.NoError(t, d.Apply(ctx, request("")))
	require.NoError(t, d.Apply(ctx, request("")))

	assert.Equal(t, 4, ctx.Layout.IndentSize)
	assert.True(t, ctx.Layout.BracesOnNewLine)
	assert.True(t, ctx.Layout.DebugComments)

	ctx.AddError("bad node", nil)
	assert.Equal(t, 1, ctx.Errors.Count(), "the decorator is installed once")
	assert.Equal(t, 1, logs.FilterMessage("formatting error").Len())
}

func TestCompositeOrderAndPriority(t *testing.T) {
	var order []string
	mark := func(name string, indent int) func(*format.Context) error {
		return func(ctx *format.Context) error {
			order = append(order, name)
			ctx.Layout.IndentSize = indent
			return nil
		}
	}
	low := fixed{name: "low", typ: TypeCustom, priority: 20, applicable: true, apply: mark("low", 8)}
	high := fixed{name: "high", typ: TypeCustom, priority: 80, applicable: true, apply: mark("high", 3)}
	off := fixed{name: "off", typ: TypeCustom, priority: 50, apply: mark("off", 1)}

	c := NewManager(nil).CreateComposite("mix", low, off, high)
	assert.InDelta(t, 50.0, c.Priority(), 1e-9)
	assert.True(t, c.IsApplicable(request("")))
	assert.Equal(t, "Composite strategy: high + off + low", c.Description())

	ctx := newFormatContext(t, nil)
	require.NoError(t, c.Apply(ctx, request("")))
	assert.Equal(t, []string{"high", "low"}, order)
	assert.Equal(t, 8, ctx.Layout.IndentSize, "the last applied member wins")

	failing := NewComposite("broken", fixed{name: "bad", typ: TypeCustom, priority: 1, applicable: true,
		apply: func(*format.Context) error { return errors.New("nope") }})
	assert.ErrorContains(t, failing.Apply(ctx, request("")), "member bad")
	assert.Zero(t, NewComposite("empty").Priority())
	assert.False(t, NewComposite("empty").IsApplicable(request("")))
}
