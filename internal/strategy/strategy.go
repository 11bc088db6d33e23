// Package strategy holds named layout bundles and the registry that picks one
// per formatting call.
package strategy

import (
	"strings"

	"lpcfmt/internal/format"
)

// Type tags a strategy. Custom strategies are keyed by name, the others by
// type.
type Type string

const (
	TypeCompact  Type = "compact"
	TypeStandard Type = "standard"
	TypeDebug    Type = "debug"
	TypeCustom   Type = "custom"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeCompact, TypeStandard, TypeDebug, TypeCustom:
		return true
	}
	return false
}

// Strategy adjusts the layout of a formatting context before the walk.
type Strategy interface {
	Name() string
	Type() Type
	Description() string
	// Apply mutates fctx in place. Later strategies overwrite earlier ones.
	Apply(fctx *format.Context, req *format.Request) error
	IsApplicable(req *format.Request) bool
	// Priority is in [0,100]; higher wins auto-selection.
	Priority() float64
}

// Standard is the default strategy: user settings with conventional fallbacks.
type Standard struct{}

func (Standard) Name() string        { return "Standard" }
func (Standard) Type() Type          { return TypeStandard }
func (Standard) Priority() float64   { return 50 }
func (Standard) Description() string { return "Standard formatting with balanced readability and conventional spacing" }

func (Standard) IsApplicable(*format.Request) bool { return true }

func (Standard) Apply(fctx *format.Context, _ *format.Request) error {
	o, l := &fctx.Options, &fctx.Layout
	l.IndentSize = orDefault(o.IndentSize, 4)
	l.UseTabs = !o.InsertSpaces
	l.SpaceAroundOperators = true
	l.SpaceAroundAssignment = true
	l.SpaceAfterComma = true
	l.SpaceAfterKeywords = true
	l.BracesOnNewLine = false
	l.MaxLineLength = orDefault(o.MaxLineLength, 120)
	l.ArrayWrapThreshold = orDefault(o.ArrayLiteralWrapThreshold, 3)
	l.ParamWrapThreshold = orDefault(o.ParameterWrapThreshold, 4)
	if o.MappingLiteralFormat == "" {
		l.MappingWrapThreshold = 2
	}
	l.PreferSingleLine = false
	fctx.SyncLayout()
	return nil
}

// Compact keeps code dense: narrow indentation, long lines, high wrap
// thresholds.
type Compact struct{}

// compactTextLimit is the size below which any input suits the compact style.
const compactTextLimit = 5000

func (Compact) Name() string        { return "Compact" }
func (Compact) Type() Type          { return TypeCompact }
func (Compact) Priority() float64   { return 30 }
func (Compact) Description() string { return "Compact formatting with minimal whitespace and single-line preference" }

// IsApplicable accepts small inputs, and larger ones made mostly of short lines.
func (Compact) IsApplicable(req *format.Request) bool {
	if len(req.Text) < compactTextLimit {
		return true
	}
	var lines, short int
	for line := range strings.SplitSeq(req.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines++
		if len(line) < 50 {
			short++
		}
	}
	return lines > 0 && float64(short)/float64(lines) > 0.6
}

func (Compact) Apply(fctx *format.Context, _ *format.Request) error {
	o, l := &fctx.Options, &fctx.Layout
	l.IndentSize = min(orDefault(o.IndentSize, 4), 2)
	l.UseTabs = !o.InsertSpaces
	l.SpaceAroundOperators = true
	l.SpaceAroundAssignment = true
	l.SpaceAfterComma = true
	l.SpaceAfterSemicolon = false
	l.SpaceAfterKeywords = true
	l.SpaceBeforeOpenParen = false
	l.BracesOnNewLine = false
	l.MaxLineLength = max(orDefault(o.MaxLineLength, 120), 140)
	l.MaxEmptyLines = min(l.MaxEmptyLines, 1)
	l.ArrayWrapThreshold = 8
	l.ParamWrapThreshold = 6
	if o.MappingLiteralFormat == format.MappingAuto || o.MappingLiteralFormat == "" {
		l.MappingWrapThreshold = 5
	}
	l.PreferSingleLine = true
	fctx.SyncLayout()
	return nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
