package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpcfmt/internal/diag"
	"lpcfmt/internal/driver"
	"lpcfmt/internal/orchestrator"
	"lpcfmt/internal/perf"
	"lpcfmt/internal/source"
	"lpcfmt/internal/version"
)

func sampleResults() []driver.FormatResult {
	return []driver.FormatResult{
		{Path: "a.c", Changed: true, Diff: driver.Diff("a.c", "int x=1;\n", "int x = 1;\n"),
			Outcome: orchestrator.Result{StrategyApplied: "Standard", Timings: perf.Report{TotalMS: 1.5}}},
		{Path: "b.c"},
		{Path: "c.c", Skipped: true},
		{Path: "d.c", Err: errors.New("boom")},
	}
}

func TestRenderFmtText(t *testing.T) {
	var out bytes.Buffer
	hasErrors, hasChanges := renderFmtText(&out, sampleResults(), false, false)
	assert.True(t, hasErrors)
	assert.True(t, hasChanges)
	assert.Equal(t, "reformatted a.c\n", out.String())

	out.Reset()
	renderFmtText(&out, sampleResults(), true, false)
	assert.Equal(t, "a.c\n", out.String())

	out.Reset()
	renderFmtText(&out, sampleResults(), true, true)
	assert.Empty(t, out.String())
}

func TestRenderFmtDiffPlain(t *testing.T) {
	var out bytes.Buffer
	_, hasChanges := renderFmtDiff(&out, sampleResults(), false)
	assert.True(t, hasChanges)
	assert.Contains(t, out.String(), "-int x=1;\n+int x = 1;\n")
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestRenderFmtJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderFmtJSON(&out, sampleResults(), true))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, "a.c", got[0]["path"])
	assert.Equal(t, true, got[0]["changed"])
	assert.Equal(t, "Standard", got[0]["strategy"])
	assert.Equal(t, true, got[2]["skipped"])
	assert.Equal(t, "boom", got[3]["error"])
}

func TestRenderFmtStdout(t *testing.T) {
	var out bytes.Buffer
	results := []driver.FormatResult{{Path: "a.c", Formatted: []byte("int x;\n")}, {Path: "e.c", Skipped: true}}
	assert.False(t, renderFmtStdout(&out, results))
	assert.Equal(t, "int x;\n", out.String())
}

func TestPrintTimings(t *testing.T) {
	var out bytes.Buffer
	res := sampleResults()
	res[0].Outcome.Timings.Phases = []perf.PhaseReport{{Name: "core-formatting", DurationMS: 1.25}}
	printTimings(&out, res)
	assert.Equal(t, "a.c: 1.50 ms core-formatting=1.25\n", out.String())
}

func TestPrintDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("room.c", []byte("int x;\nint ?y;\n")))
	bag := diag.NewBag(4)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.Code(1001),
		Message:  "unexpected character",
		Primary:  source.Span{File: file.ID, Start: 11, End: 12},
	})
	var out bytes.Buffer
	printDiagnostics(&out, bag, file, false)
	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "room.c:2:5: ERROR LEX1001: unexpected character", lines[0])
	assert.Equal(t, "    int ?y;", lines[1])
	assert.Equal(t, "        ^", lines[2])
}

func TestSourceLine(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.c", []byte("one\ntwo\nthree")))
	assert.Equal(t, "one", sourceLine(file, 1))
	assert.Equal(t, "two", sourceLine(file, 2))
	assert.Equal(t, "three", sourceLine(file, 3))
	assert.Empty(t, sourceLine(file, 9))
	assert.Empty(t, sourceLine(file, 0))
}

func TestVersionPayload(t *testing.T) {
	var out bytes.Buffer
	opts := versionOptions{showHash: true}
	require.NoError(t, renderVersionJSON(&out, versionInfoFixture(), opts))
	assert.Contains(t, out.String(), `"tool": "lpcfmt"`)
	assert.Contains(t, out.String(), `"git_commit": "unknown"`)
	assert.NotContains(t, out.String(), "build_date")
}

func versionInfoFixture() version.Info {
	return version.Info{Version: "1.2.3"}
}
